package ticketquery

import "sort"

// IDSet is a set of ticket ids.
type IDSet struct {
	m map[uint]struct{}
}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...uint) IDSet {
	s := IDSet{m: make(map[uint]struct{}, len(ids))}
	for _, id := range ids {
		s.m[id] = struct{}{}
	}
	return s
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int { return len(s.m) }

// Contains reports whether id is in the set.
func (s IDSet) Contains(id uint) bool {
	_, ok := s.m[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []uint {
	out := make([]uint, 0, len(s.m))
	for id := range s.m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Intersect returns the ids present in every set. No sets yields an empty set.
func Intersect(sets ...IDSet) IDSet {
	if len(sets) == 0 {
		return NewIDSet()
	}
	smallest := 0
	for i := range sets {
		if sets[i].Len() < sets[smallest].Len() {
			smallest = i
		}
	}
	out := NewIDSet()
	for id := range sets[smallest].m {
		keep := true
		for i := range sets {
			if i != smallest && !sets[i].Contains(id) {
				keep = false
				break
			}
		}
		if keep {
			out.m[id] = struct{}{}
		}
	}
	return out
}

// Union returns the ids present in any set.
func Union(sets ...IDSet) IDSet {
	out := NewIDSet()
	for _, s := range sets {
		for id := range s.m {
			out.m[id] = struct{}{}
		}
	}
	return out
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
