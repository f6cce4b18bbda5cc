package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusconnect/event-portal/internal/model"
)

// PostgresEventCatalog reads events with pgx.
type PostgresEventCatalog struct {
	db *pgxpool.Pool
}

// NewPostgresEventCatalog constructs a PostgresEventCatalog.
func NewPostgresEventCatalog(db *pgxpool.Pool) *PostgresEventCatalog {
	return &PostgresEventCatalog{db: db}
}

const eventColumns = `id, title, description, venue, scheduled_start,
	registration_deadline, max_participants, created_by, created_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Venue, &e.ScheduledStart,
		&e.Deadline, &e.MaxParticipants, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID returns a single event or model.ErrEventNotFound.
func (c *PostgresEventCatalog) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(c.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// List returns all events ordered by scheduled start ascending.
func (c *PostgresEventCatalog) List(ctx context.Context) ([]model.Event, error) {
	rows, err := c.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY scheduled_start ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// PostgresLedger persists registrations with pgx.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a PostgresLedger.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Register performs a concurrency-safe registration inside a transaction.
//
// A naive count-then-insert is a race: two transactions can both read a free
// slot before either writes. SELECT ... FOR UPDATE takes a row-level
// exclusive lock on the event row, so concurrent attempts for the same event
// queue up behind one another while attempts for different events proceed in
// parallel. The partial unique index on (event_id, account_id) backstops the
// duplicate check.
func (l *PostgresLedger) Register(ctx context.Context, eventID, accountID string, now time.Time) (reg *model.Registration, err error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			err = mapPgError(err)
		}
	}()

	// Lock the event row. Every other registration attempt for this event
	// blocks here until we commit or roll back.
	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT max_participants FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	// Duplicate check: any non-cancelled registration blocks a new one.
	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations
		 WHERE event_id = $1 AND account_id = $2 AND status <> 'cancelled'`,
		eventID, accountID,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dupCount > 0 {
		return nil, model.ErrAlreadyRegistered
	}

	// Capacity is counted dynamically over active rows, so a cancellation
	// frees its slot without any compensating write.
	var active int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations
		 WHERE event_id = $1 AND status <> 'cancelled'`,
		eventID,
	).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("count active registrations: %w", err)
	}
	if active >= capacity {
		return nil, model.ErrEventFull
	}

	reg = &model.Registration{
		ID:        uuid.New().String(),
		EventID:   eventID,
		AccountID: accountID,
		Status:    model.StatusRegistered,
		CreatedAt: now.UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, event_id, account_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		reg.ID, reg.EventID, reg.AccountID, reg.Status, reg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// GetByID returns the registration or model.ErrRegistrationNotFound.
func (l *PostgresLedger) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	var r model.Registration
	err := l.db.QueryRow(ctx,
		`SELECT id, event_id, account_id, status, created_at
		 FROM registrations WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.EventID, &r.AccountID, &r.Status, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &r, nil
}

// Transition is a single-row compare-and-set: the update only matches when
// the registration is still in the expected state, so concurrent transitions
// cannot both win.
func (l *PostgresLedger) Transition(ctx context.Context, id string, from, to model.Status) (*model.Registration, error) {
	var r model.Registration
	err := l.db.QueryRow(ctx,
		`UPDATE registrations SET status = $1
		 WHERE id = $2 AND status = $3
		 RETURNING id, event_id, account_id, status, created_at`,
		to, id, from,
	).Scan(&r.ID, &r.EventID, &r.AccountID, &r.Status, &r.CreatedAt)
	if err == nil {
		return &r, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapPgError(fmt.Errorf("transition registration: %w", err))
	}

	// The compare-and-set missed: either the row is gone or it is no longer
	// in the expected state. Report which, with the current status.
	current, getErr := l.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, &model.InvalidTransitionError{Current: current.Status, Requested: to}
}

// ListByEvent returns the roster for an event, ordered by registration time.
func (l *PostgresLedger) ListByEvent(ctx context.Context, eventID string) ([]model.RosterEntry, error) {
	rows, err := l.db.Query(ctx,
		`SELECT r.id, r.account_id, a.name, COALESCE(a.usn, ''),
		        COALESCE(a.semester, 0), r.status, r.created_at
		 FROM registrations r
		 JOIN accounts a ON a.id = r.account_id
		 WHERE r.event_id = $1
		 ORDER BY r.created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var roster []model.RosterEntry
	for rows.Next() {
		var e model.RosterEntry
		if err := rows.Scan(&e.RegistrationID, &e.AccountID, &e.Name, &e.USN,
			&e.Semester, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		roster = append(roster, e)
	}
	return roster, rows.Err()
}

// ListByAccount returns all registrations held by an account, ordered by
// registration time.
func (l *PostgresLedger) ListByAccount(ctx context.Context, accountID string) ([]model.Registration, error) {
	rows, err := l.db.Query(ctx,
		`SELECT id, event_id, account_id, status, created_at
		 FROM registrations
		 WHERE account_id = $1
		 ORDER BY created_at ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations by account: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var r model.Registration
		if err := rows.Scan(&r.ID, &r.EventID, &r.AccountID, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

// mapPgError translates storage-level error codes into domain errors:
// a unique violation on the active-registration index means a concurrent
// duplicate, and serialization/deadlock failures are transient contention the
// caller may retry.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return model.ErrAlreadyRegistered
	case "40001", "40P01":
		return model.ErrTransientConflict
	}
	return err
}
