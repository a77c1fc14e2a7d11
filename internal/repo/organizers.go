package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventsphere/internal/model"
)

const organizerColumns = `id, email, password_hash, organization_name, contact_person, phone, created_at, updated_at`

func (r *repository) CreateOrganizer(ctx context.Context, o *model.Organizer) error {
	query := `
		INSERT INTO organizers (` + organizerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.Email, o.PasswordHash, o.OrganizationName, o.ContactPerson, o.Phone, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if c, ok := violatedConstraint(err); ok && c == "organizers_email_key" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert organizer: %w", err)
	}
	return nil
}

func (r *repository) GetOrganizerByEmail(ctx context.Context, email string) (*model.Organizer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE email = $1`, email)
	return scanOrganizer(row)
}

func (r *repository) GetOrganizerByID(ctx context.Context, id string) (*model.Organizer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE id = $1`, id)
	return scanOrganizer(row)
}

func scanOrganizer(row rowScanner) (*model.Organizer, error) {
	var o model.Organizer
	if err := row.Scan(
		&o.ID, &o.Email, &o.PasswordHash, &o.OrganizationName, &o.ContactPerson, &o.Phone, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizerNotFound
		}
		return nil, fmt.Errorf("failed to scan organizer: %w", err)
	}
	return &o, nil
}
