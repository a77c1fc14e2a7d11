package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"eventsphere/internal/model"
)

var (
	ErrOrganizerNotFound     = errors.New("organizer not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrEventNotFound         = errors.New("event not found")
	ErrSlugTaken             = errors.New("event slug already used by organizer")
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrTicketTaken           = errors.New("ticket code already issued for event")
	ErrAlreadyCheckedIn      = errors.New("already checked in")
)

const uniqueViolation = "23505"

// AdmitFunc decides, under the event row lock, whether one more participant
// may join given the number already registered.
type AdmitFunc func(e *model.Event, registered int) error

// ApplyFunc mutates a locked participant row. Returning an error aborts the
// transaction and is passed back unchanged.
type ApplyFunc func(p *model.Participant) error

type Repository interface {
	CreateOrganizer(ctx context.Context, o *model.Organizer) error
	GetOrganizerByEmail(ctx context.Context, email string) (*model.Organizer, error)
	GetOrganizerByID(ctx context.Context, id string) (*model.Organizer, error)

	CreateEvent(ctx context.Context, e *model.Event) error
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*model.Event, error)
	GetOrganizerEventBySlug(ctx context.Context, organizerID, slug string) (*model.Event, error)
	ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	SetEventStatus(ctx context.Context, id string, status model.EventStatus) error
	DeleteEventTx(ctx context.Context, id string) error

	CreateParticipantTx(ctx context.Context, p *model.Participant, admit AdmitFunc) error
	GetParticipant(ctx context.Context, eventID, ticketCode string) (*model.Participant, error)
	GetParticipantByPhone(ctx context.Context, eventID, phone string) (*model.Participant, error)
	ListParticipants(ctx context.Context, eventID string, status model.ParticipantStatus) ([]model.Participant, error)
	ParticipantStats(ctx context.Context, eventID string) (model.ParticipantStats, error)
	UpdateParticipantTx(ctx context.Context, eventID, ticketCode string, apply ApplyFunc) (*model.Participant, error)
	CheckInTx(ctx context.Context, c *model.CheckIn, apply ApplyFunc) (*model.Participant, error)
	RemoveCheckInTx(ctx context.Context, eventID, ticketCode string, apply ApplyFunc) (*model.Participant, error)

	Ping(ctx context.Context) error
	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) Ping(ctx context.Context) error {
	return r.db.Master.PingContext(ctx)
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Int("files", len(files)).Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// violatedConstraint returns the constraint name of a unique violation.
func violatedConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

func rollback(tx *sql.Tx, err error) error {
	_ = tx.Rollback()
	return err
}

func recoverRollback(tx *sql.Tx) {
	if p := recover(); p != nil {
		_ = tx.Rollback()
		panic(p)
	}
}
