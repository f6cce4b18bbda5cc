package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusconnect/event-portal/internal/model"
)

// MemoryCatalog is an in-memory EventCatalog for tests and local development.
type MemoryCatalog struct {
	mu     sync.RWMutex
	events map[string]model.Event
}

// NewMemoryCatalog constructs an empty MemoryCatalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{events: make(map[string]model.Event)}
}

// Put stores or replaces an event.
func (c *MemoryCatalog) Put(e model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[e.ID] = e
}

// GetByID returns the event or model.ErrEventNotFound.
func (c *MemoryCatalog) GetByID(ctx context.Context, id string) (*model.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	return &e, nil
}

// List returns all events ordered by scheduled start.
func (c *MemoryCatalog) List(ctx context.Context) ([]model.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	events := make([]model.Event, 0, len(c.events))
	for _, e := range c.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].ScheduledStart.Before(events[j].ScheduledStart)
	})
	return events, nil
}

// MemoryLedger is an in-memory RegistrationLedger. Register serializes per
// event with a dedicated mutex, so attempts for the same event queue up while
// attempts for different events run in parallel, mirroring the row lock the
// postgres ledger takes.
type MemoryLedger struct {
	catalog *MemoryCatalog

	mu         sync.RWMutex
	regs       map[string]*model.Registration
	order      []string
	accounts   map[string]model.Account
	eventLocks sync.Map // eventID -> *sync.Mutex
}

// NewMemoryLedger constructs a MemoryLedger reading capacities from catalog.
func NewMemoryLedger(catalog *MemoryCatalog) *MemoryLedger {
	return &MemoryLedger{
		catalog:  catalog,
		regs:     make(map[string]*model.Registration),
		accounts: make(map[string]model.Account),
	}
}

// PutAccount stores account details used to build roster entries.
func (l *MemoryLedger) PutAccount(a model.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[a.ID] = a
}

func (l *MemoryLedger) eventLock(eventID string) *sync.Mutex {
	lock, _ := l.eventLocks.LoadOrStore(eventID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Register implements the per-event check-then-insert atomically.
func (l *MemoryLedger) Register(ctx context.Context, eventID, accountID string, now time.Time) (*model.Registration, error) {
	event, err := l.catalog.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	active := 0
	for _, r := range l.regs {
		if r.EventID != eventID || !r.Active() {
			continue
		}
		if r.AccountID == accountID {
			return nil, model.ErrAlreadyRegistered
		}
		active++
	}
	if active >= event.MaxParticipants {
		return nil, model.ErrEventFull
	}

	reg := &model.Registration{
		ID:        uuid.New().String(),
		EventID:   eventID,
		AccountID: accountID,
		Status:    model.StatusRegistered,
		CreatedAt: now.UTC(),
	}
	l.regs[reg.ID] = reg
	l.order = append(l.order, reg.ID)
	cp := *reg
	return &cp, nil
}

// GetByID returns a copy of the registration or model.ErrRegistrationNotFound.
func (l *MemoryLedger) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.regs[id]
	if !ok {
		return nil, model.ErrRegistrationNotFound
	}
	cp := *r
	return &cp, nil
}

// Transition compare-and-sets the registration status under the ledger lock.
func (l *MemoryLedger) Transition(ctx context.Context, id string, from, to model.Status) (*model.Registration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.regs[id]
	if !ok {
		return nil, model.ErrRegistrationNotFound
	}
	if r.Status != from {
		return nil, &model.InvalidTransitionError{Current: r.Status, Requested: to}
	}
	r.Status = to
	cp := *r
	return &cp, nil
}

// ListByEvent returns the roster in registration order.
func (l *MemoryLedger) ListByEvent(ctx context.Context, eventID string) ([]model.RosterEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var roster []model.RosterEntry
	for _, id := range l.order {
		r := l.regs[id]
		if r.EventID != eventID {
			continue
		}
		a := l.accounts[r.AccountID]
		roster = append(roster, model.RosterEntry{
			RegistrationID: r.ID,
			AccountID:      r.AccountID,
			Name:           a.Name,
			USN:            a.USN,
			Semester:       a.Semester,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt,
		})
	}
	return roster, nil
}

// ListByAccount returns the account's registrations in registration order.
func (l *MemoryLedger) ListByAccount(ctx context.Context, accountID string) ([]model.Registration, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var regs []model.Registration
	for _, id := range l.order {
		r := l.regs[id]
		if r.AccountID == accountID {
			regs = append(regs, *r)
		}
	}
	return regs, nil
}
