package service

import (
	"context"

	"github.com/campusconnect/event-portal/internal/auth"
	"github.com/campusconnect/event-portal/internal/model"
	"github.com/campusconnect/event-portal/internal/repository"
)

// AttendanceService enacts registration status transitions and serves
// role-scoped roster queries.
type AttendanceService struct {
	catalog repository.EventCatalog
	ledger  repository.RegistrationLedger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(catalog repository.EventCatalog, ledger repository.RegistrationLedger) *AttendanceService {
	return &AttendanceService{catalog: catalog, ledger: ledger}
}

// MarkAttended transitions a registration from registered to attended.
// Repeated calls are rejected with the current status rather than silently
// accepted, so double-marking stays observable; callers wanting idempotence
// must check first.
func (s *AttendanceService) MarkAttended(ctx context.Context, caller auth.Identity, registrationID string) (*model.Registration, error) {
	if err := auth.Authorize(caller, auth.ActionMarkAttendance, "").Err(); err != nil {
		return nil, err
	}
	return s.ledger.Transition(ctx, registrationID, model.StatusRegistered, model.StatusAttended)
}

// Cancel transitions a registration from registered to cancelled. The owning
// student may cancel their own registration; organizers and admins may cancel
// any. The freed slot becomes visible to subsequent admissions immediately,
// because capacity is counted over active registrations.
func (s *AttendanceService) Cancel(ctx context.Context, caller auth.Identity, registrationID string) (*model.Registration, error) {
	reg, err := s.ledger.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionCancelRegistration, reg.AccountID).Err(); err != nil {
		return nil, err
	}
	return s.ledger.Transition(ctx, registrationID, model.StatusRegistered, model.StatusCancelled)
}

// ListForEvent returns the full roster for an event. Organizer or admin only.
func (s *AttendanceService) ListForEvent(ctx context.Context, caller auth.Identity, eventID string) ([]model.RosterEntry, error) {
	if err := auth.Authorize(caller, auth.ActionListEventRegistrations, "").Err(); err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.ledger.ListByEvent(ctx, eventID)
}

// ListForAccount returns the registrations held by an account. Students see
// only their own; admins may inspect any account.
func (s *AttendanceService) ListForAccount(ctx context.Context, caller auth.Identity, accountID string) ([]model.Registration, error) {
	if err := auth.Authorize(caller, auth.ActionListOwnRegistrations, accountID).Err(); err != nil {
		return nil, err
	}
	return s.ledger.ListByAccount(ctx, accountID)
}
