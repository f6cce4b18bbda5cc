// Package model defines the core domain types for the campus event portal.
package model

import "time"

// Role classifies an account for authorization purposes.
type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// Account represents a person using the portal. Accounts are created and
// authenticated by the external account service; this core only reads them.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	USN       string    `json:"usn,omitempty"`
	Semester  int       `json:"semester,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Event represents a scheduled campus activity. Event metadata is managed by
// the external catalog service; the admission controller treats it as
// read-only input.
type Event struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Venue           string     `json:"venue"`
	ScheduledStart  time.Time  `json:"scheduled_start"`
	Deadline        *time.Time `json:"registration_deadline,omitempty"`
	MaxParticipants int        `json:"max_participants"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

// EffectiveCutoff returns the instant after which registration closes: the
// registration deadline if one is set, otherwise the scheduled start.
func (e *Event) EffectiveCutoff() time.Time {
	if e.Deadline != nil {
		return *e.Deadline
	}
	return e.ScheduledStart
}

// RegistrationOpen reports whether a registration attempt at the given instant
// falls strictly before the effective cutoff.
func (e *Event) RegistrationOpen(now time.Time) bool {
	return now.Before(e.EffectiveCutoff())
}

// Registration binds one account to one event. Registrations are never
// physically deleted; cancellation is a status, preserving the audit trail.
type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	AccountID string    `json:"account_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the registration counts toward event capacity.
func (r *Registration) Active() bool {
	return r.Status.Active()
}

// RosterEntry is a registration joined with the registrant's account details,
// as shown on the organizer roster.
type RosterEntry struct {
	RegistrationID string    `json:"registration_id"`
	AccountID      string    `json:"account_id"`
	Name           string    `json:"name"`
	USN            string    `json:"usn,omitempty"`
	Semester       int       `json:"semester,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ErrorResponse is the standard JSON error envelope. CurrentStatus is set only
// for invalid-transition rejections so the caller can explain why.
type ErrorResponse struct {
	Error         string `json:"error"`
	CurrentStatus Status `json:"current_status,omitempty"`
}
