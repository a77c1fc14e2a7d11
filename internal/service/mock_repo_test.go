package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"eventsphere/internal/model"
	"eventsphere/internal/repo"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrganizer(ctx context.Context, o *model.Organizer) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockRepository) GetOrganizerByEmail(ctx context.Context, email string) (*model.Organizer, error) {
	args := m.Called(ctx, email)
	if o := args.Get(0); o != nil {
		return o.(*model.Organizer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetOrganizerByID(ctx context.Context, id string) (*model.Organizer, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*model.Organizer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CreateEvent(ctx context.Context, e *model.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRepository) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	args := m.Called(ctx, id)
	if e := args.Get(0); e != nil {
		return e.(*model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	args := m.Called(ctx, slug)
	if e := args.Get(0); e != nil {
		return e.(*model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetOrganizerEventBySlug(ctx context.Context, organizerID, slug string) (*model.Event, error) {
	args := m.Called(ctx, organizerID, slug)
	if e := args.Get(0); e != nil {
		return e.(*model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	args := m.Called(ctx, f)
	if e := args.Get(0); e != nil {
		return e.([]model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateEvent(ctx context.Context, e *model.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRepository) SetEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockRepository) DeleteEventTx(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) CreateParticipantTx(ctx context.Context, p *model.Participant, admit repo.AdmitFunc) error {
	return m.Called(ctx, p, admit).Error(0)
}

func (m *MockRepository) GetParticipant(ctx context.Context, eventID, ticketCode string) (*model.Participant, error) {
	args := m.Called(ctx, eventID, ticketCode)
	if p := args.Get(0); p != nil {
		return p.(*model.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetParticipantByPhone(ctx context.Context, eventID, phone string) (*model.Participant, error) {
	args := m.Called(ctx, eventID, phone)
	if p := args.Get(0); p != nil {
		return p.(*model.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListParticipants(ctx context.Context, eventID string, status model.ParticipantStatus) ([]model.Participant, error) {
	args := m.Called(ctx, eventID, status)
	if p := args.Get(0); p != nil {
		return p.([]model.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ParticipantStats(ctx context.Context, eventID string) (model.ParticipantStats, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(model.ParticipantStats), args.Error(1)
}

func (m *MockRepository) UpdateParticipantTx(ctx context.Context, eventID, ticketCode string, apply repo.ApplyFunc) (*model.Participant, error) {
	args := m.Called(ctx, eventID, ticketCode, apply)
	if p := args.Get(0); p != nil {
		return p.(*model.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CheckInTx(ctx context.Context, c *model.CheckIn, apply repo.ApplyFunc) (*model.Participant, error) {
	args := m.Called(ctx, c, apply)
	if p := args.Get(0); p != nil {
		return p.(*model.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) RemoveCheckInTx(ctx context.Context, eventID, ticketCode string, apply repo.ApplyFunc) (*model.Participant, error) {
	args := m.Called(ctx, eventID, ticketCode, apply)
	if p := args.Get(0); p != nil {
		return p.(*model.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository) MigrateUp(dir string) error {
	return m.Called(dir).Error(0)
}

func (m *MockRepository) MigrateDown(dir string) error {
	return m.Called(dir).Error(0)
}

type published struct {
	body  []byte
	delay int
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (n *recordingNotifier) Publish(message []byte, delaySeconds int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, published{body: message, delay: delaySeconds})
	return n.err
}

func (n *recordingNotifier) messages() []published {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]published(nil), n.sent...)
}
