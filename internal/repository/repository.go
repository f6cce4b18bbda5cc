// Package repository defines the persistence contracts for the registration
// ledger and the read-only event catalog, with PostgreSQL and in-memory
// implementations.
package repository

import (
	"context"
	"time"

	"github.com/campusconnect/event-portal/internal/model"
)

// EventCatalog reads event records. Event metadata is owned by the external
// catalog service; this core never writes it.
type EventCatalog interface {
	// GetByID returns the event or model.ErrEventNotFound.
	GetByID(ctx context.Context, id string) (*model.Event, error)

	// List returns all events ordered by scheduled start.
	List(ctx context.Context) ([]model.Event, error)
}

// RegistrationLedger is the shared registration store. Implementations must
// serialize Register per event so the duplicate and capacity checks cannot
// interleave with the insert, and must make Transition a single atomic
// compare-and-set on the current status.
type RegistrationLedger interface {
	// Register atomically verifies that the account holds no active
	// registration for the event and that active registrations are below the
	// event's capacity, then inserts a new registration with status
	// registered. Returns model.ErrAlreadyRegistered, model.ErrEventFull,
	// model.ErrEventNotFound, or model.ErrTransientConflict on contention.
	Register(ctx context.Context, eventID, accountID string, now time.Time) (*model.Registration, error)

	// GetByID returns the registration or model.ErrRegistrationNotFound.
	GetByID(ctx context.Context, id string) (*model.Registration, error)

	// Transition moves the registration from status from to status to.
	// If the registration is in any other state it returns
	// *model.InvalidTransitionError carrying the current status.
	Transition(ctx context.Context, id string, from, to model.Status) (*model.Registration, error)

	// ListByEvent returns every registration for the event joined with the
	// registrant's account details, ordered by creation time.
	ListByEvent(ctx context.Context, eventID string) ([]model.RosterEntry, error)

	// ListByAccount returns every registration held by the account, ordered
	// by creation time.
	ListByAccount(ctx context.Context, accountID string) ([]model.Registration, error)
}
