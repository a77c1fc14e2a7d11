package handler

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"eventsphere/internal/auth"
	"eventsphere/internal/dto"
	"eventsphere/internal/model"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Signup(ctx context.Context, req dto.SignupRequest) (*model.Organizer, error) {
	args := m.Called(ctx, req)
	if o := args.Get(0); o != nil {
		return o.(*model.Organizer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.LoginResponse), args.Error(1)
}

func (m *MockService) Session(ctx context.Context, actor auth.Actor) (*model.Organizer, error) {
	args := m.Called(ctx, actor)
	if o := args.Get(0); o != nil {
		return o.(*model.Organizer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) CreateEvent(ctx context.Context, actor auth.Actor, req dto.CreateEventRequest) (*model.Event, error) {
	args := m.Called(ctx, actor, req)
	if e := args.Get(0); e != nil {
		return e.(*model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) GetEvent(ctx context.Context, idOrSlug string, actor *auth.Actor) (*model.Event, error) {
	args := m.Called(ctx, idOrSlug, actor)
	if e := args.Get(0); e != nil {
		return e.(*model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ListEvents(ctx context.Context, q dto.ListEventsQuery, actor *auth.Actor) ([]model.Event, error) {
	args := m.Called(ctx, q, actor)
	if e := args.Get(0); e != nil {
		return e.([]model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) UpdateEvent(ctx context.Context, actor auth.Actor, id string, req dto.UpdateEventRequest) (*model.Event, error) {
	args := m.Called(ctx, actor, id, req)
	if e := args.Get(0); e != nil {
		return e.(*model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) SetEventStatus(ctx context.Context, actor auth.Actor, id string, status model.EventStatus) (*model.Event, error) {
	args := m.Called(ctx, actor, id, status)
	if e := args.Get(0); e != nil {
		return e.(*model.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) DeleteEvent(ctx context.Context, actor auth.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockService) Register(ctx context.Context, eventID string, req dto.RegisterRequest) (dto.RegisterResponse, error) {
	args := m.Called(ctx, eventID, req)
	return args.Get(0).(dto.RegisterResponse), args.Error(1)
}

func (m *MockService) ListParticipants(ctx context.Context, actor auth.Actor, eventID, status string) (dto.ParticipantListResponse, error) {
	args := m.Called(ctx, actor, eventID, status)
	return args.Get(0).(dto.ParticipantListResponse), args.Error(1)
}

func (m *MockService) Decide(ctx context.Context, actor auth.Actor, eventID, ticketCode, action string) (dto.DecisionResponse, error) {
	args := m.Called(ctx, actor, eventID, ticketCode, action)
	return args.Get(0).(dto.DecisionResponse), args.Error(1)
}

func (m *MockService) CheckIn(ctx context.Context, actor auth.Actor, eventID, ticketCode, notes string) (*model.Participant, error) {
	args := m.Called(ctx, actor, eventID, ticketCode, notes)
	if p := args.Get(0); p != nil {
		return p.(*model.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) RemoveCheckIn(ctx context.Context, actor auth.Actor, eventID, ticketCode string) (*model.Participant, error) {
	args := m.Called(ctx, actor, eventID, ticketCode)
	if p := args.Get(0); p != nil {
		return p.(*model.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) GetCertificate(ctx context.Context, eventID, ticketCode string) (dto.CertificateResponse, error) {
	args := m.Called(ctx, eventID, ticketCode)
	return args.Get(0).(dto.CertificateResponse), args.Error(1)
}

func (m *MockService) GetCertificateByPhone(ctx context.Context, eventID, phone string) (dto.CertificateResponse, error) {
	args := m.Called(ctx, eventID, phone)
	return args.Get(0).(dto.CertificateResponse), args.Error(1)
}

func (m *MockService) TicketQR(ctx context.Context, eventID, ticketCode string) ([]byte, error) {
	args := m.Called(ctx, eventID, ticketCode)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) OpenScan(ctx context.Context, actor auth.Actor, eventID string) (dto.ScanResponse, error) {
	args := m.Called(ctx, actor, eventID)
	return args.Get(0).(dto.ScanResponse), args.Error(1)
}

func (m *MockService) ScanState(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error) {
	args := m.Called(ctx, actor, eventID, sessionID)
	return args.Get(0).(dto.ScanResponse), args.Error(1)
}

func (m *MockService) ScanFrame(ctx context.Context, actor auth.Actor, eventID, sessionID string, frame io.Reader) (dto.ScanResponse, error) {
	args := m.Called(ctx, actor, eventID, sessionID, frame)
	return args.Get(0).(dto.ScanResponse), args.Error(1)
}

func (m *MockService) ScanCode(ctx context.Context, actor auth.Actor, eventID, sessionID, code string) (dto.ScanResponse, error) {
	args := m.Called(ctx, actor, eventID, sessionID, code)
	return args.Get(0).(dto.ScanResponse), args.Error(1)
}

func (m *MockService) ConfirmScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error) {
	args := m.Called(ctx, actor, eventID, sessionID)
	return args.Get(0).(dto.ScanResponse), args.Error(1)
}

func (m *MockService) DeclineScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error) {
	args := m.Called(ctx, actor, eventID, sessionID)
	return args.Get(0).(dto.ScanResponse), args.Error(1)
}

func (m *MockService) CloseScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) error {
	return m.Called(ctx, actor, eventID, sessionID).Error(0)
}

func (m *MockService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
