package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/campusconnect/event-portal/internal/auth"
	"github.com/campusconnect/event-portal/internal/model"
	"github.com/campusconnect/event-portal/internal/repository"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func student(id string) auth.Identity {
	return auth.Identity{AccountID: id, Role: model.RoleStudent}
}

func organizer(id string) auth.Identity {
	return auth.Identity{AccountID: id, Role: model.RoleOrganizer}
}

func admin(id string) auth.Identity {
	return auth.Identity{AccountID: id, Role: model.RoleAdmin}
}

type fixture struct {
	catalog    *repository.MemoryCatalog
	ledger     *repository.MemoryLedger
	admission  *AdmissionService
	attendance *AttendanceService
}

func newFixture() *fixture {
	catalog := repository.NewMemoryCatalog()
	ledger := repository.NewMemoryLedger(catalog)
	return &fixture{
		catalog:    catalog,
		ledger:     ledger,
		admission:  NewAdmissionService(catalog, ledger),
		attendance: NewAttendanceService(catalog, ledger),
	}
}

// addEvent seeds an event starting tomorrow with no explicit deadline.
func (f *fixture) addEvent(id string, capacity int) model.Event {
	e := model.Event{
		ID:              id,
		Title:           "Tech Talk",
		Venue:           "Auditorium",
		ScheduledStart:  testNow.Add(24 * time.Hour),
		MaxParticipants: capacity,
		CreatedBy:       "admin-1",
		CreatedAt:       testNow.Add(-48 * time.Hour),
	}
	f.catalog.Put(e)
	return e
}

func (f *fixture) activeCount(t *testing.T, eventID string) int {
	t.Helper()
	roster, err := f.ledger.ListByEvent(context.Background(), eventID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	n := 0
	for _, entry := range roster {
		if entry.Status.Active() {
			n++
		}
	}
	return n
}

func TestRegisterSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addEvent("ev-1", 10)

	reg, err := f.admission.Register(context.Background(), student("stu-1"), "ev-1", testNow)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Status != model.StatusRegistered {
		t.Errorf("new registration status = %s, want registered", reg.Status)
	}
	if reg.EventID != "ev-1" || reg.AccountID != "stu-1" {
		t.Errorf("registration references wrong (event, account): %+v", reg)
	}
	if reg.ID == "" {
		t.Error("registration must get an id")
	}
}

func TestRegisterEventNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.admission.Register(context.Background(), student("stu-1"), "no-such-event", testNow)
	if !errors.Is(err, model.ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestRegisterForbiddenForNonStudents(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addEvent("ev-1", 10)

	for _, caller := range []auth.Identity{organizer("org-1"), admin("adm-1")} {
		_, err := f.admission.Register(context.Background(), caller, "ev-1", testNow)
		if !errors.Is(err, model.ErrForbidden) {
			t.Errorf("%s register: err = %v, want ErrForbidden", caller.Role, err)
		}
	}
	if n := f.activeCount(t, "ev-1"); n != 0 {
		t.Errorf("forbidden attempts must create no records, roster size %d", n)
	}
}

func TestRegisterDeadlinePassed(t *testing.T) {
	t.Parallel()

	f := newFixture()
	e := f.addEvent("ev-1", 10)
	deadline := testNow.Add(-time.Hour)
	e.Deadline = &deadline
	f.catalog.Put(e)

	_, err := f.admission.Register(context.Background(), student("stu-1"), "ev-1", testNow)
	if !errors.Is(err, model.ErrDeadlinePassed) {
		t.Fatalf("err = %v, want ErrDeadlinePassed", err)
	}
	if n := f.activeCount(t, "ev-1"); n != 0 {
		t.Errorf("late attempts must create no records, roster size %d", n)
	}
}

// Without an explicit deadline the scheduled start is the cutoff.
func TestRegisterAfterStartWithoutDeadline(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addEvent("ev-1", 10)

	late := testNow.Add(25 * time.Hour)
	_, err := f.admission.Register(context.Background(), student("stu-1"), "ev-1", late)
	if !errors.Is(err, model.ErrDeadlinePassed) {
		t.Fatalf("err = %v, want ErrDeadlinePassed", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addEvent("ev-1", 10)
	ctx := context.Background()

	if _, err := f.admission.Register(ctx, student("stu-1"), "ev-1", testNow); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := f.admission.Register(ctx, student("stu-1"), "ev-1", testNow)
	if !errors.Is(err, model.ErrAlreadyRegistered) {
		t.Fatalf("second Register err = %v, want ErrAlreadyRegistered", err)
	}
	if n := f.activeCount(t, "ev-1"); n != 1 {
		t.Errorf("roster size = %d, want 1", n)
	}
}

// The cancel-frees-capacity scenario: capacity 2, A and B fill it, C bounces,
// A cancels, C gets the freed slot.
func TestCancelFreesCapacity(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addEvent("ev-1", 2)
	ctx := context.Background()

	regA, err := f.admission.Register(ctx, student("stu-a"), "ev-1", testNow)
	if err != nil {
		t.Fatalf("A Register: %v", err)
	}
	if _, err := f.admission.Register(ctx, student("stu-b"), "ev-1", testNow); err != nil {
		t.Fatalf("B Register: %v", err)
	}

	_, err = f.admission.Register(ctx, student("stu-c"), "ev-1", testNow)
	if !errors.Is(err, model.ErrEventFull) {
		t.Fatalf("C Register err = %v, want ErrEventFull", err)
	}
	if n := f.activeCount(t, "ev-1"); n != 2 {
		t.Fatalf("roster size after rejection = %d, want 2", n)
	}

	if _, err := f.attendance.Cancel(ctx, student("stu-a"), regA.ID); err != nil {
		t.Fatalf("A Cancel: %v", err)
	}
	if n := f.activeCount(t, "ev-1"); n != 1 {
		t.Fatalf("active roster after cancel = %d, want 1", n)
	}

	if _, err := f.admission.Register(ctx, student("stu-c"), "ev-1", testNow); err != nil {
		t.Fatalf("C re-Register after freed slot: %v", err)
	}
	if n := f.activeCount(t, "ev-1"); n != 2 {
		t.Fatalf("final active roster = %d, want 2", n)
	}
}

// A cancelled registration does not block re-registration by the same student.
func TestReRegisterAfterOwnCancel(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addEvent("ev-1", 5)
	ctx := context.Background()

	reg, err := f.admission.Register(ctx, student("stu-1"), "ev-1", testNow)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := f.attendance.Cancel(ctx, student("stu-1"), reg.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := f.admission.Register(ctx, student("stu-1"), "ev-1", testNow); err != nil {
		t.Fatalf("re-Register after cancel: %v", err)
	}
}

// N simultaneous attempts against capacity K: exactly K succeed, N-K get
// EventFull, and the roster never exceeds K.
func TestConcurrentRegistrations(t *testing.T) {
	t.Parallel()

	const capacity = 10
	const attempts = 50

	f := newFixture()
	f.addEvent("ev-1", capacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.admission.Register(ctx, student(fmt.Sprintf("stu-%d", i)), "ev-1", testNow)
		}()
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, model.ErrEventFull):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != capacity {
		t.Errorf("successes = %d, want %d", succeeded, capacity)
	}
	if full != attempts-capacity {
		t.Errorf("EventFull rejections = %d, want %d", full, attempts-capacity)
	}
	if n := f.activeCount(t, "ev-1"); n != capacity {
		t.Errorf("final roster size = %d, want %d", n, capacity)
	}
}

// Registrations for different events do not contend for the same slots.
func TestRegisterIndependentEvents(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addEvent("ev-1", 1)
	f.addEvent("ev-2", 1)
	ctx := context.Background()

	if _, err := f.admission.Register(ctx, student("stu-1"), "ev-1", testNow); err != nil {
		t.Fatalf("Register ev-1: %v", err)
	}
	if _, err := f.admission.Register(ctx, student("stu-1"), "ev-2", testNow); err != nil {
		t.Fatalf("Register ev-2: %v", err)
	}
}
