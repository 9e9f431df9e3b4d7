package models

// Agent profiles. Anything other than ProfileAdmin is a standard agent.
const (
	ProfileAdmin = "admin"
	ProfileUser  = "user"
)

// User is an agent of a company.
type User struct {
	ID        uint   `json:"id" db:"id"`
	CompanyID uint   `json:"companyId" db:"company_id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	Profile   string `json:"profile" db:"profile"`

	// QueueIDs lists the queues the agent is permitted to see.
	QueueIDs []uint `json:"queueIds,omitempty" db:"-"`
}

// IsAdmin reports whether the agent has the administrator profile.
func (u *User) IsAdmin() bool {
	return u.Profile == ProfileAdmin
}

// CanSeeQueue reports whether queueID is one of the agent's permitted queues.
func (u *User) CanSeeQueue(queueID uint) bool {
	for _, id := range u.QueueIDs {
		if id == queueID {
			return true
		}
	}
	return false
}
