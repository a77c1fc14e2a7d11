package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventsphere/internal/model"
)

const participantColumns = `id, event_id, ticket_code, name, email, phone, college, course, year,
	selected_sub_events, meal_preference, status, payment_status, checked_in_at, checked_in_by,
	registered_at, updated_at`

// CreateParticipantTx inserts p while holding the event row lock. The
// duplicate check runs before admit so a repeated registration is reported
// as such even when the event is full.
func (r *repository) CreateParticipantTx(ctx context.Context, p *model.Participant, admit AdmitFunc) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer recoverRollback(tx)

	e, err := scanEvent(tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, p.EventID))
	if err != nil {
		return rollback(tx, err)
	}

	var dup int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE event_id = $1 AND (phone = $2 OR email = $3)`,
		p.EventID, p.Phone, p.Email,
	).Scan(&dup)
	if err != nil {
		return rollback(tx, fmt.Errorf("failed to check duplicates: %w", err))
	}
	if dup > 0 {
		return rollback(tx, ErrDuplicateRegistration)
	}

	// Same count that total_registrations is set to below, rejected rows included.
	var registered int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE event_id = $1`, p.EventID,
	).Scan(&registered)
	if err != nil {
		return rollback(tx, fmt.Errorf("failed to count participants: %w", err))
	}
	if err := admit(e, registered); err != nil {
		return rollback(tx, err)
	}

	query := `
		INSERT INTO participants (` + participantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = tx.ExecContext(ctx, query,
		p.ID, p.EventID, p.TicketCode, p.Name, p.Email, p.Phone, p.College, p.Course, p.Year,
		pq.Array(nonNil(p.SelectedSubEvents)), p.MealPreference, p.Status, p.PaymentStatus,
		p.CheckedInAt, p.CheckedInBy, p.RegisteredAt, p.UpdatedAt,
	)
	if err != nil {
		if c, ok := violatedConstraint(err); ok {
			switch c {
			case "participants_event_ticket_key":
				return rollback(tx, ErrTicketTaken)
			case "participants_event_phone_key", "participants_event_email_key":
				return rollback(tx, ErrDuplicateRegistration)
			}
		}
		return rollback(tx, fmt.Errorf("failed to insert participant: %w", err))
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET total_registrations = (SELECT COUNT(*) FROM participants WHERE event_id = $1), updated_at = NOW()
		WHERE id = $1
	`, p.EventID)
	if err != nil {
		return rollback(tx, fmt.Errorf("failed to update registration count: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	r.log.Info().
		Str("event_id", p.EventID).
		Str("ticket_code", p.TicketCode).
		Str("status", string(p.Status)).
		Msg("participant registered")
	return nil
}

func (r *repository) GetParticipant(ctx context.Context, eventID, ticketCode string) (*model.Participant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE event_id = $1 AND ticket_code = $2`,
		eventID, ticketCode)
	return scanParticipant(row)
}

// GetParticipantByPhone expects a normalized phone; (event, phone) is unique.
func (r *repository) GetParticipantByPhone(ctx context.Context, eventID, phone string) (*model.Participant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE event_id = $1 AND phone = $2`,
		eventID, phone)
	return scanParticipant(row)
}

func (r *repository) ListParticipants(ctx context.Context, eventID string, status model.ParticipantStatus) ([]model.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE event_id = $1`
	args := []any{eventID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY registered_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := make([]model.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

func (r *repository) ParticipantStats(ctx context.Context, eventID string) (model.ParticipantStats, error) {
	var stats model.ParticipantStats

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM participants WHERE event_id = $1 GROUP BY status`, eventID)
	if err != nil {
		return stats, fmt.Errorf("failed to query participant stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status model.ParticipantStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return stats, fmt.Errorf("failed to scan participant stats: %w", err)
		}
		stats.Total += n
		switch status {
		case model.StatusPending:
			stats.Pending = n
		case model.StatusApproved:
			stats.Approved = n
		case model.StatusRejected:
			stats.Rejected = n
		case model.StatusCheckedIn:
			stats.CheckedIn = n
		}
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("failed to iterate participant stats: %w", err)
	}
	return stats, nil
}

// UpdateParticipantTx locks the participant, lets apply mutate it and
// persists the status fields.
func (r *repository) UpdateParticipantTx(ctx context.Context, eventID, ticketCode string, apply ApplyFunc) (*model.Participant, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer recoverRollback(tx)

	p, err := lockParticipant(ctx, tx, eventID, ticketCode)
	if err != nil {
		return nil, rollback(tx, err)
	}
	if err := apply(p); err != nil {
		return nil, rollback(tx, err)
	}
	if err := saveParticipantStatus(ctx, tx, p); err != nil {
		return nil, rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}
	return p, nil
}

// CheckInTx records c and moves the participant to checked-in in one
// transaction. The unique check-in row per ticket guards against two
// stations admitting the same ticket.
func (r *repository) CheckInTx(ctx context.Context, c *model.CheckIn, apply ApplyFunc) (*model.Participant, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer recoverRollback(tx)

	p, err := lockParticipant(ctx, tx, c.EventID, c.TicketCode)
	if err != nil {
		return nil, rollback(tx, err)
	}
	if err := apply(p); err != nil {
		return nil, rollback(tx, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkins (id, event_id, ticket_code, checked_in_by, checked_in_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.EventID, c.TicketCode, c.CheckedInBy, c.CheckedInAt, c.Notes)
	if err != nil {
		if con, ok := violatedConstraint(err); ok && con == "checkins_event_ticket_key" {
			return nil, rollback(tx, ErrAlreadyCheckedIn)
		}
		return nil, rollback(tx, fmt.Errorf("failed to insert check-in: %w", err))
	}

	if err := saveParticipantStatus(ctx, tx, p); err != nil {
		return nil, rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}

	r.log.Info().
		Str("event_id", c.EventID).
		Str("ticket_code", c.TicketCode).
		Str("by", c.CheckedInBy).
		Msg("participant checked in")
	return p, nil
}

// RemoveCheckInTx deletes the check-in record and lets apply restore the
// participant.
func (r *repository) RemoveCheckInTx(ctx context.Context, eventID, ticketCode string, apply ApplyFunc) (*model.Participant, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer recoverRollback(tx)

	p, err := lockParticipant(ctx, tx, eventID, ticketCode)
	if err != nil {
		return nil, rollback(tx, err)
	}
	if err := apply(p); err != nil {
		return nil, rollback(tx, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM checkins WHERE event_id = $1 AND ticket_code = $2`, eventID, ticketCode); err != nil {
		return nil, rollback(tx, fmt.Errorf("failed to delete check-in: %w", err))
	}
	if err := saveParticipantStatus(ctx, tx, p); err != nil {
		return nil, rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}

	r.log.Info().Str("event_id", eventID).Str("ticket_code", ticketCode).Msg("check-in removed")
	return p, nil
}

func lockParticipant(ctx context.Context, tx *sql.Tx, eventID, ticketCode string) (*model.Participant, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE event_id = $1 AND ticket_code = $2 FOR UPDATE`,
		eventID, ticketCode)
	return scanParticipant(row)
}

func saveParticipantStatus(ctx context.Context, tx *sql.Tx, p *model.Participant) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE participants
		SET status = $1, payment_status = $2, checked_in_at = $3, checked_in_by = $4, updated_at = $5
		WHERE id = $6
	`, p.Status, p.PaymentStatus, p.CheckedInAt, p.CheckedInBy, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return nil
}

func scanParticipant(row rowScanner) (*model.Participant, error) {
	var (
		p           model.Participant
		checkedInAt sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.EventID, &p.TicketCode, &p.Name, &p.Email, &p.Phone, &p.College, &p.Course, &p.Year,
		pq.Array(&p.SelectedSubEvents), &p.MealPreference, &p.Status, &p.PaymentStatus, &checkedInAt, &p.CheckedInBy,
		&p.RegisteredAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		p.CheckedInAt = &t
	}
	return &p, nil
}
