package ticketquery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gotrs-io/gotrs-desk/internal/models"
)

// TimeRange is an inclusive instant range.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Filter is a validated listing request.
type Filter struct {
	CompanyID uint
	UserID    uint

	Search string
	Page   int
	Status string

	CreatedIn *TimeRange
	UpdatedIn *TimeRange

	ShowAll            bool
	WithUnreadMessages bool
	IsGroup            *bool

	QueueIDs      []uint
	TagIDs        []uint
	UserIDs       []uint
	ContactIDs    []uint
	ConnectionIDs []uint
}

// ValidationError lists the request fields that could not be parsed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := e.FieldNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid ticket filter: " + strings.Join(parts, "; ")
}

// FieldNames returns the failing field names in sorted order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDate accepts a calendar date, a local date-time or an RFC3339 instant
// and returns it expressed in loc.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date", value)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Millisecond), t.Location())
}

// dayRange spans the local calendar day of t. Bounds are returned in UTC so
// stores comparing stored UTC timestamps see the same instants.
func dayRange(t time.Time) *TimeRange {
	return &TimeRange{From: startOfDay(t).UTC(), To: endOfDay(t).UTC()}
}

func parseFlag(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", value)
}

// ParsePage returns the 1-based page number; anything unusable, including
// pages past MaxPage, is page 1.
func ParsePage(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > MaxPage {
		return 1
	}
	return n
}

// ParseFilter validates req into a Filter. Calendar days are interpreted in
// loc. All malformed fields are reported together in a *ValidationError.
func ParseFilter(req models.TicketListRequest, loc *time.Location) (Filter, error) {
	if loc == nil {
		loc = time.UTC
	}
	verr := &ValidationError{}

	f := Filter{
		CompanyID:     req.CompanyID,
		UserID:        req.UserID,
		Search:        strings.ToLower(strings.TrimSpace(req.SearchParam)),
		Page:          ParsePage(req.PageNumber),
		Status:        strings.TrimSpace(req.Status),
		QueueIDs:      uniqueIDs(req.QueueIDs),
		TagIDs:        uniqueIDs(req.Tags),
		UserIDs:       uniqueIDs(req.Users),
		ContactIDs:    uniqueIDs(req.Contacts),
		ConnectionIDs: uniqueIDs(req.Connections),
	}

	flags := []struct {
		name  string
		value string
		set   func(bool)
	}{
		{"showAll", req.ShowAll, func(v bool) { f.ShowAll = v }},
		{"withUnreadMessages", req.WithUnreadMessages, func(v bool) { f.WithUnreadMessages = v }},
		{"isGroup", req.IsGroup, func(v bool) { f.IsGroup = &v }},
	}
	for _, flag := range flags {
		if strings.TrimSpace(flag.value) == "" {
			continue
		}
		v, err := parseFlag(flag.value)
		if err != nil {
			verr.add(flag.name, err.Error())
			continue
		}
		flag.set(v)
	}

	if req.Date != "" {
		if t, err := parseDate(req.Date, loc); err != nil {
			verr.add("date", err.Error())
		} else {
			f.CreatedIn = dayRange(t)
		}
	}

	var start, end time.Time
	var startErr, endErr error
	if req.DateStart != "" {
		if start, startErr = parseDate(req.DateStart, loc); startErr != nil {
			verr.add("dateStart", startErr.Error())
		}
	}
	if req.DateEnd != "" {
		if end, endErr = parseDate(req.DateEnd, loc); endErr != nil {
			verr.add("dateEnd", endErr.Error())
		}
	}
	switch {
	case startErr != nil || endErr != nil:
	case req.DateStart != "" && req.DateEnd == "":
		verr.add("dateEnd", "required when dateStart is set")
	case req.DateStart == "" && req.DateEnd != "":
		verr.add("dateStart", "required when dateEnd is set")
	case req.DateStart != "":
		if startOfDay(start).After(endOfDay(end)) {
			verr.add("dateEnd", "must not be before dateStart")
		} else {
			f.UpdatedIn = &TimeRange{From: startOfDay(start).UTC(), To: endOfDay(end).UTC()}
		}
	}

	// updatedAt narrows to a single day and takes precedence over the range.
	if req.UpdatedAt != "" {
		if t, err := parseDate(req.UpdatedAt, loc); err != nil {
			verr.add("updatedAt", err.Error())
		} else {
			f.UpdatedIn = dayRange(t)
		}
	}

	if len(verr.Fields) > 0 {
		return Filter{}, verr
	}
	return f, nil
}
