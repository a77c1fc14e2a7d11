package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"eventsphere/internal/apperr"
	"eventsphere/internal/model"
)

func setupMockRepo(t *testing.T) (*repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	return &repository{db: &dbpg.DB{Master: db}, log: &log}, mock
}

var eventColumnNames = []string{
	"id", "organizer_id", "organization_name", "name", "slug", "description", "type", "status", "venue",
	"start_date", "end_date", "registration_deadline", "registration_fee", "max_participants", "requires_approval",
	"upi_id", "sub_events", "contact_email", "contact_phone", "guidelines", "enable_certificates",
	"enable_meal_preferences", "allowed_colleges", "blocked_colleges", "total_registrations", "created_at", "updated_at",
}

var participantColumnNames = []string{
	"id", "event_id", "ticket_code", "name", "email", "phone", "college", "course", "year",
	"selected_sub_events", "meal_preference", "status", "payment_status", "checked_in_at", "checked_in_by",
	"registered_at", "updated_at",
}

func eventRow(maxParticipants any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(eventColumnNames).AddRow(
		"ev-1", "org-1", "Tech Club", "TechFest 2026", "techfest-2026", "", "tech-fest", "published", "Hall A",
		now, now, now.Add(24*time.Hour), 0, maxParticipants, false,
		"", []byte(`[{"name":"Coding","description":"code"}]`), "", "", []byte("{}"), true,
		false, []byte("{}"), []byte("{}"), 0, now, now,
	)
}

func participantRow(status model.ParticipantStatus, checkedInAt any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(participantColumnNames).AddRow(
		"p-1", "ev-1", "TEC-AB12C", "JANE DOE", "jane@x.com", "9876543210", "XYZ", "CS", "2",
		[]byte("{Coding}"), "", string(status), "paid", checkedInAt, "",
		now, now,
	)
}

func newParticipant() *model.Participant {
	now := time.Now()
	return &model.Participant{
		ID: "p-1", EventID: "ev-1", TicketCode: "TEC-AB12C",
		Name: "JANE DOE", Email: "jane@x.com", Phone: "9876543210",
		College: "XYZ", Course: "CS", Year: "2",
		Status: model.StatusApproved, PaymentStatus: model.PaymentPaid,
		RegisteredAt: now, UpdatedAt: now,
	}
}

func admitAll(*model.Event, int) error { return nil }

func TestCreateParticipantTx_Success(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM events WHERE id = \$1 FOR UPDATE`).
		WithArgs("ev-1").
		WillReturnRows(eventRow(nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participants WHERE event_id = \$1 AND \(phone`).
		WithArgs("ev-1", "9876543210", "jane@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participants WHERE event_id = \$1$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectExec(`INSERT INTO participants`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE events\s+SET total_registrations`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen int
	err := r.CreateParticipantTx(context.Background(), newParticipant(), func(e *model.Event, registered int) error {
		assert.Equal(t, "techfest-2026", e.Slug)
		assert.True(t, e.HasSubEvent("coding"))
		seen = registered
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateParticipantTx_EventNotFound(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM events WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(eventColumnNames))
	mock.ExpectRollback()

	err := r.CreateParticipantTx(context.Background(), newParticipant(), admitAll)

	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateParticipantTx_Duplicate(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM events WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(eventRow(int64(1)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participants WHERE event_id = \$1 AND \(phone`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := r.CreateParticipantTx(context.Background(), newParticipant(), admitAll)

	assert.ErrorIs(t, err, ErrDuplicateRegistration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateParticipantTx_AdmitRejects(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM events WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(eventRow(int64(2)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participants WHERE event_id = \$1 AND \(phone`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participants WHERE event_id = \$1$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	full := apperr.Policy("full")
	err := r.CreateParticipantTx(context.Background(), newParticipant(), func(e *model.Event, registered int) error {
		require.NotNil(t, e.MaxParticipants)
		if registered >= *e.MaxParticipants {
			return full
		}
		return nil
	})

	assert.ErrorIs(t, err, full)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateParticipantTx_MapsUniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"participants_event_ticket_key", ErrTicketTaken},
		{"participants_event_phone_key", ErrDuplicateRegistration},
		{"participants_event_email_key", ErrDuplicateRegistration},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			r, mock := setupMockRepo(t)

			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT .+ FROM events WHERE id = \$1 FOR UPDATE`).
				WillReturnRows(eventRow(nil))
			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participants WHERE event_id = \$1 AND \(phone`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participants WHERE event_id = \$1$`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectExec(`INSERT INTO participants`).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})
			mock.ExpectRollback()

			err := r.CreateParticipantTx(context.Background(), newParticipant(), admitAll)

			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCheckInTx_Success(t *testing.T) {
	r, mock := setupMockRepo(t)
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM participants WHERE event_id = \$1 AND ticket_code = \$2 FOR UPDATE`).
		WithArgs("ev-1", "TEC-AB12C").
		WillReturnRows(participantRow(model.StatusApproved, nil))
	mock.ExpectExec(`INSERT INTO checkins`).
		WithArgs("c-1", "ev-1", "TEC-AB12C", "org-1", at, "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE participants`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c := &model.CheckIn{ID: "c-1", EventID: "ev-1", TicketCode: "TEC-AB12C", CheckedInBy: "org-1", CheckedInAt: at}
	p, err := r.CheckInTx(context.Background(), c, func(p *model.Participant) error {
		assert.Equal(t, []string{"Coding"}, p.SelectedSubEvents)
		p.Status = model.StatusCheckedIn
		p.CheckedInAt = &at
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusCheckedIn, p.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInTx_ApplyErrorRollsBack(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM participants WHERE event_id = \$1 AND ticket_code = \$2 FOR UPDATE`).
		WillReturnRows(participantRow(model.StatusPending, nil))
	mock.ExpectRollback()

	notApproved := apperr.Policy("not approved")
	_, err := r.CheckInTx(context.Background(), &model.CheckIn{EventID: "ev-1", TicketCode: "TEC-AB12C"},
		func(*model.Participant) error { return notApproved })

	assert.ErrorIs(t, err, notApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInTx_ConcurrentStation(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM participants`).
		WillReturnRows(participantRow(model.StatusApproved, nil))
	mock.ExpectExec(`INSERT INTO checkins`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "checkins_event_ticket_key"})
	mock.ExpectRollback()

	_, err := r.CheckInTx(context.Background(), &model.CheckIn{EventID: "ev-1", TicketCode: "TEC-AB12C"},
		func(*model.Participant) error { return nil })

	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInTx_UnknownTicket(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM participants`).
		WillReturnRows(sqlmock.NewRows(participantColumnNames))
	mock.ExpectRollback()

	_, err := r.CheckInTx(context.Background(), &model.CheckIn{EventID: "ev-1", TicketCode: "TEC-ZZZZZ"},
		func(*model.Participant) error { return nil })

	assert.ErrorIs(t, err, ErrParticipantNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveCheckInTx(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM participants`).
		WillReturnRows(participantRow(model.StatusCheckedIn, time.Now()))
	mock.ExpectExec(`DELETE FROM checkins WHERE event_id = \$1 AND ticket_code = \$2`).
		WithArgs("ev-1", "TEC-AB12C").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE participants`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := r.RemoveCheckInTx(context.Background(), "ev-1", "TEC-AB12C", func(p *model.Participant) error {
		require.NotNil(t, p.CheckedInAt)
		p.Status = model.StatusApproved
		p.CheckedInAt = nil
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, p.Status)
	assert.Nil(t, p.CheckedInAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateParticipantTx_CommitFailure(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM participants`).
		WillReturnRows(participantRow(model.StatusPending, nil))
	mock.ExpectExec(`UPDATE participants`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	_, err := r.UpdateParticipantTx(context.Background(), "ev-1", "TEC-AB12C", func(p *model.Participant) error {
		p.Status = model.StatusApproved
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEventTx(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM checkins WHERE event_id = \$1`).WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM participants WHERE event_id = \$1`).WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.DeleteEventTx(context.Background(), "ev-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEventTx_Missing(t *testing.T) {
	r, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM checkins`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM participants`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM events`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, r.DeleteEventTx(context.Background(), "ev-1"), ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViolatedConstraint(t *testing.T) {
	c, ok := violatedConstraint(&pq.Error{Code: "23505", Constraint: "organizers_email_key"})
	assert.True(t, ok)
	assert.Equal(t, "organizers_email_key", c)

	_, ok = violatedConstraint(&pq.Error{Code: "23503"})
	assert.False(t, ok)
	_, ok = violatedConstraint(errors.New("boom"))
	assert.False(t, ok)
}
