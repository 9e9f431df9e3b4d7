package models

import (
	"time"
)

// Ticket statuses used by the listing engine. The lifecycle owning them lives
// outside this module; unknown values pass through untouched.
const (
	TicketStatusOpen    = "open"
	TicketStatusPending = "pending"
	TicketStatusClosed  = "closed"
)

// Ticket is a support conversation owned by exactly one company.
type Ticket struct {
	ID             uint      `json:"id" db:"id"`
	CompanyID      uint      `json:"companyId" db:"company_id"`
	ContactID      uint      `json:"contactId" db:"contact_id"`
	UserID         *uint     `json:"userId" db:"user_id"`   // assigned agent
	QueueID        *uint     `json:"queueId" db:"queue_id"` // nil = unassigned queue
	WhatsappID     *uint     `json:"whatsappId" db:"whatsapp_id"`
	Status         string    `json:"status" db:"status"`
	IsGroup        bool      `json:"isGroup" db:"is_group"`
	UnreadMessages int       `json:"unreadMessages" db:"unread_messages"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// Joined fields
	Contact  *Contact      `json:"contact,omitempty"`
	Queue    *QueueSummary `json:"queue"`
	User     *UserSummary  `json:"user"`
	Tags     []Tag         `json:"tags"`
	Whatsapp *Whatsapp     `json:"whatsapp"`
}

// Contact holds the public fields of a ticket's contact.
type Contact struct {
	ID                 uint   `json:"id" db:"id"`
	Name               string `json:"name" db:"name"`
	Number             string `json:"number" db:"number"`
	Email              string `json:"email" db:"email"`
	ProfilePicURL      string `json:"profilePicUrl" db:"profile_pic_url"`
	AcceptAudioMessage bool   `json:"acceptAudioMessage" db:"accept_audio_message"`
	Active             bool   `json:"active" db:"active"`
}

// QueueSummary is the queue projection returned with a ticket.
type QueueSummary struct {
	ID    uint   `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Color string `json:"color" db:"color"`
}

// UserSummary is the assigned agent projection returned with a ticket.
type UserSummary struct {
	ID   uint   `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Tag labels tickets through the ticket_tags relation.
type Tag struct {
	ID    uint   `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Color string `json:"color" db:"color"`
}

// Whatsapp is the channel connection a ticket arrived through.
type Whatsapp struct {
	ID            uint   `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	ExpiresTicket int    `json:"expiresTicket" db:"expires_ticket"`
}

// IsPending reports whether the ticket waits for an agent.
func (t *Ticket) IsPending() bool {
	return t.Status == TicketStatusPending
}

// IsUnassignedQueue reports whether the ticket has no queue.
func (t *Ticket) IsUnassignedQueue() bool {
	return t.QueueID == nil
}

// AssignedTo reports whether the ticket is assigned to the given agent.
func (t *Ticket) AssignedTo(userID uint) bool {
	return t.UserID != nil && *t.UserID == userID
}

// HasTag reports whether the hydrated tag list contains tagID.
func (t *Ticket) HasTag(tagID uint) bool {
	for _, tag := range t.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}
