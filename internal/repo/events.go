package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventsphere/internal/model"
)

const eventColumns = `id, organizer_id, organization_name, name, slug, description, type, status, venue,
	start_date, end_date, registration_deadline, registration_fee, max_participants, requires_approval,
	upi_id, sub_events, contact_email, contact_phone, guidelines, enable_certificates,
	enable_meal_preferences, allowed_colleges, blocked_colleges, total_registrations, created_at, updated_at`

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) error {
	subEvents, err := marshalSubEvents(e.SubEvents)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.OrganizerID, e.OrganizationName, e.Name, e.Slug, e.Description, e.Type, e.Status, e.Venue,
		e.StartDate, e.EndDate, e.RegistrationDeadline, e.RegistrationFee, nullInt(e.MaxParticipants), e.RequiresApproval,
		e.UPIID, subEvents, e.ContactEmail, e.ContactPhone, pq.Array(nonNil(e.Guidelines)), e.EnableCertificates,
		e.EnableMealPreferences, pq.Array(nonNil(e.AllowedColleges)), pq.Array(nonNil(e.BlockedColleges)),
		e.TotalRegistrations, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if c, ok := violatedConstraint(err); ok && c == "events_organizer_slug_key" {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *repository) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// GetEventBySlug prefers a published event when several organizers share
// a slug.
func (r *repository) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + ` FROM events
		WHERE slug = $1
		ORDER BY (status = 'published') DESC, created_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, slug)
	return scanEvent(row)
}

// GetOrganizerEventBySlug is unambiguous: slugs are unique per organizer.
func (r *repository) GetOrganizerEventBySlug(ctx context.Context, organizerID, slug string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = $1 AND slug = $2`,
		organizerID, slug)
	return scanEvent(row)
}

func (r *repository) ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var (
		conds []string
		args  []any
	)
	if f.OrganizerID != "" {
		args = append(args, f.OrganizerID)
		conds = append(conds, fmt.Sprintf("organizer_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	if f.OrganizerID != "" {
		query += ` ORDER BY created_at DESC`
	} else {
		query += ` ORDER BY start_date DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	subEvents, err := marshalSubEvents(e.SubEvents)
	if err != nil {
		return err
	}

	query := `
		UPDATE events SET
			name = $2, slug = $3, description = $4, type = $5, venue = $6,
			start_date = $7, end_date = $8, registration_deadline = $9, registration_fee = $10,
			max_participants = $11, requires_approval = $12, upi_id = $13, sub_events = $14,
			contact_email = $15, contact_phone = $16, guidelines = $17, enable_certificates = $18,
			enable_meal_preferences = $19, allowed_colleges = $20, blocked_colleges = $21, updated_at = $22
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Slug, e.Description, e.Type, e.Venue,
		e.StartDate, e.EndDate, e.RegistrationDeadline, e.RegistrationFee,
		nullInt(e.MaxParticipants), e.RequiresApproval, e.UPIID, subEvents,
		e.ContactEmail, e.ContactPhone, pq.Array(nonNil(e.Guidelines)), e.EnableCertificates,
		e.EnableMealPreferences, pq.Array(nonNil(e.AllowedColleges)), pq.Array(nonNil(e.BlockedColleges)), e.UpdatedAt,
	)
	if err != nil {
		if c, ok := violatedConstraint(err); ok && c == "events_organizer_slug_key" {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	return expectOne(res, ErrEventNotFound)
}

func (r *repository) SetEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return expectOne(res, ErrEventNotFound)
}

// DeleteEventTx removes the event with all of its participants and check-ins.
func (r *repository) DeleteEventTx(ctx context.Context, id string) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer recoverRollback(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM checkins WHERE event_id = $1`, id); err != nil {
		return rollback(tx, fmt.Errorf("failed to delete check-ins: %w", err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE event_id = $1`, id); err != nil {
		return rollback(tx, fmt.Errorf("failed to delete participants: %w", err))
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return rollback(tx, fmt.Errorf("failed to delete event: %w", err))
	}
	if err := expectOne(res, ErrEventNotFound); err != nil {
		return rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	r.log.Info().Str("event_id", id).Msg("event deleted")
	return nil
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var (
		e         model.Event
		maxPart   sql.NullInt64
		subEvents []byte
	)
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.OrganizationName, &e.Name, &e.Slug, &e.Description, &e.Type, &e.Status, &e.Venue,
		&e.StartDate, &e.EndDate, &e.RegistrationDeadline, &e.RegistrationFee, &maxPart, &e.RequiresApproval,
		&e.UPIID, &subEvents, &e.ContactEmail, &e.ContactPhone, pq.Array(&e.Guidelines), &e.EnableCertificates,
		&e.EnableMealPreferences, pq.Array(&e.AllowedColleges), pq.Array(&e.BlockedColleges),
		&e.TotalRegistrations, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	if maxPart.Valid {
		v := int(maxPart.Int64)
		e.MaxParticipants = &v
	}
	if len(subEvents) > 0 {
		if err := json.Unmarshal(subEvents, &e.SubEvents); err != nil {
			return nil, fmt.Errorf("failed to decode sub events: %w", err)
		}
	}
	return &e, nil
}

func marshalSubEvents(s []model.SubEvent) ([]byte, error) {
	if s == nil {
		s = []model.SubEvent{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sub events: %w", err)
	}
	return b, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil || *v <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
