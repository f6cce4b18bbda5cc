// Package service implements the admission controller and the attendance
// state machine on top of the authorization gate and the registration ledger.
package service

import (
	"context"
	"time"

	"github.com/campusconnect/event-portal/internal/auth"
	"github.com/campusconnect/event-portal/internal/model"
	"github.com/campusconnect/event-portal/internal/repository"
)

// AdmissionService decides whether a registration attempt succeeds and, if
// so, creates it atomically.
type AdmissionService struct {
	catalog repository.EventCatalog
	ledger  repository.RegistrationLedger
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(catalog repository.EventCatalog, ledger repository.RegistrationLedger) *AdmissionService {
	return &AdmissionService{catalog: catalog, ledger: ledger}
}

// Register runs the admission checks in order — event exists, caller is a
// student, cutoff not passed, no duplicate, capacity available — and creates
// the registration. The first failing check wins. The duplicate and capacity
// checks execute atomically with the insert inside the ledger, so concurrent
// attempts for the same event cannot interleave between check and write.
func (s *AdmissionService) Register(ctx context.Context, caller auth.Identity, eventID string, now time.Time) (*model.Registration, error) {
	event, err := s.catalog.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := auth.Authorize(caller, auth.ActionCreateRegistration, "").Err(); err != nil {
		return nil, err
	}

	if !event.RegistrationOpen(now) {
		return nil, model.ErrDeadlinePassed
	}

	return s.ledger.Register(ctx, eventID, caller.AccountID, now)
}

// GetEvent returns a single event from the catalog.
func (s *AdmissionService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return s.catalog.GetByID(ctx, id)
}

// ListEvents returns all events from the catalog.
func (s *AdmissionService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.catalog.List(ctx)
}
