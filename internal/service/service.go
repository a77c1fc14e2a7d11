package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eventsphere/internal/apperr"
	"eventsphere/internal/auth"
	"eventsphere/internal/dto"
	"eventsphere/internal/model"
	"eventsphere/internal/repo"
	"eventsphere/internal/scanner"
)

const (
	DefaultTicketAttempts = 5
	DefaultReminderLead   = 24 * time.Hour

	// x-delay is an int32 number of milliseconds.
	maxPublishDelay = 24 * 24 * time.Hour
)

type Service interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*model.Organizer, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Session(ctx context.Context, actor auth.Actor) (*model.Organizer, error)

	CreateEvent(ctx context.Context, actor auth.Actor, req dto.CreateEventRequest) (*model.Event, error)
	GetEvent(ctx context.Context, idOrSlug string, actor *auth.Actor) (*model.Event, error)
	ListEvents(ctx context.Context, q dto.ListEventsQuery, actor *auth.Actor) ([]model.Event, error)
	UpdateEvent(ctx context.Context, actor auth.Actor, id string, req dto.UpdateEventRequest) (*model.Event, error)
	SetEventStatus(ctx context.Context, actor auth.Actor, id string, status model.EventStatus) (*model.Event, error)
	DeleteEvent(ctx context.Context, actor auth.Actor, id string) error

	Register(ctx context.Context, eventID string, req dto.RegisterRequest) (dto.RegisterResponse, error)
	ListParticipants(ctx context.Context, actor auth.Actor, eventID, status string) (dto.ParticipantListResponse, error)
	Decide(ctx context.Context, actor auth.Actor, eventID, ticketCode, action string) (dto.DecisionResponse, error)
	CheckIn(ctx context.Context, actor auth.Actor, eventID, ticketCode, notes string) (*model.Participant, error)
	RemoveCheckIn(ctx context.Context, actor auth.Actor, eventID, ticketCode string) (*model.Participant, error)
	GetCertificate(ctx context.Context, eventID, ticketCode string) (dto.CertificateResponse, error)
	GetCertificateByPhone(ctx context.Context, eventID, phone string) (dto.CertificateResponse, error)
	TicketQR(ctx context.Context, eventID, ticketCode string) ([]byte, error)

	OpenScan(ctx context.Context, actor auth.Actor, eventID string) (dto.ScanResponse, error)
	ScanState(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error)
	ScanFrame(ctx context.Context, actor auth.Actor, eventID, sessionID string, frame io.Reader) (dto.ScanResponse, error)
	ScanCode(ctx context.Context, actor auth.Actor, eventID, sessionID, code string) (dto.ScanResponse, error)
	ConfirmScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error)
	DeclineScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error)
	CloseScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) error

	Ping(ctx context.Context) error
}

// Notifier publishes a queue message, optionally delayed.
type Notifier interface {
	Publish(message []byte, delaySeconds int) error
}

type Options struct {
	TicketAttempts int
	ReminderLead   time.Duration
	QRSize         int
}

type service struct {
	repo     repo.Repository
	log      *zerolog.Logger
	notifier Notifier
	tokens   *auth.Manager
	scans    *scanner.Registry
	opts     Options
	now      func() time.Time
}

// NewService wires the domain operations. notifier may be nil, in which
// case no notifications are sent.
func NewService(
	repo repo.Repository,
	logger *zerolog.Logger,
	notifier Notifier,
	tokens *auth.Manager,
	scans *scanner.Registry,
	opts Options,
) Service {
	if opts.TicketAttempts <= 0 {
		opts.TicketAttempts = DefaultTicketAttempts
	}
	if opts.ReminderLead <= 0 {
		opts.ReminderLead = DefaultReminderLead
	}
	return &service{
		repo:     repo,
		log:      logger,
		notifier: notifier,
		tokens:   tokens,
		scans:    scans,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// storeErr maps repository errors onto apperr kinds. Errors that already
// carry a kind pass through.
func (s *service) storeErr(err error) error {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, repo.ErrEventNotFound):
		return apperr.NotFound("event not found")
	case errors.Is(err, repo.ErrParticipantNotFound):
		return apperr.NotFound("participant not found")
	case errors.Is(err, repo.ErrOrganizerNotFound):
		return apperr.NotFound("organizer not found")
	case errors.Is(err, repo.ErrDuplicateRegistration):
		return apperr.Conflict("already registered")
	case errors.Is(err, repo.ErrAlreadyCheckedIn):
		return apperr.Conflict("already checked in")
	case errors.Is(err, repo.ErrSlugTaken):
		return apperr.Conflict("you already have an event with this name")
	case errors.Is(err, repo.ErrEmailTaken):
		return apperr.Conflict("email already registered")
	}
	s.log.Error().Err(err).Msg("store operation failed")
	return apperr.Internal(err)
}

// loadEvent resolves a UUID or a slug.
func (s *service) loadEvent(ctx context.Context, idOrSlug string) (*model.Event, error) {
	var (
		e   *model.Event
		err error
	)
	if _, perr := uuid.Parse(idOrSlug); perr == nil {
		e, err = s.repo.GetEventByID(ctx, idOrSlug)
	} else {
		e, err = s.repo.GetEventBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, s.storeErr(err)
	}
	return e, nil
}

// resolveEvent looks a slug up among the organizer's own events first, so
// another organizer's published event with the same slug does not shadow it.
func (s *service) resolveEvent(ctx context.Context, organizerID, idOrSlug string) (*model.Event, error) {
	if _, perr := uuid.Parse(idOrSlug); perr != nil && organizerID != "" {
		e, err := s.repo.GetOrganizerEventBySlug(ctx, organizerID, idOrSlug)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, repo.ErrEventNotFound) {
			return nil, s.storeErr(err)
		}
	}
	return s.loadEvent(ctx, idOrSlug)
}

func (s *service) ownedEvent(ctx context.Context, actor auth.Actor, idOrSlug string) (*model.Event, error) {
	e, err := s.resolveEvent(ctx, actor.OrganizerID, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !e.OwnedBy(actor.OrganizerID) {
		return nil, apperr.Forbidden("not the event organizer")
	}
	return e, nil
}

func (s *service) notify(msg dto.NotificationMessage, delay time.Duration) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal notification")
		return
	}
	if err := s.notifier.Publish(payload, int(delay/time.Second)); err != nil {
		s.log.Warn().Err(err).
			Str("kind", string(msg.Kind)).
			Str("event_id", msg.EventID).
			Msg("failed to publish notification")
	}
}

func participantMessage(kind dto.NotificationKind, e *model.Event, p *model.Participant) dto.NotificationMessage {
	return dto.NotificationMessage{
		Kind:       kind,
		EventID:    e.ID,
		EventName:  e.Name,
		Venue:      e.Venue,
		StartsAt:   e.StartDate,
		TicketCode: p.TicketCode,
		Name:       p.Name,
		Email:      p.Email,
	}
}

// scheduleReminder queues the pre-event reminder. Delays past the broker
// limit are skipped; the reminder for a rescheduled event is recognised
// by its start time when delivered.
func (s *service) scheduleReminder(e *model.Event) {
	if e.Status != model.EventPublished {
		return
	}
	delay := e.StartDate.Add(-s.opts.ReminderLead).Sub(s.now())
	if delay <= 0 || delay > maxPublishDelay {
		s.log.Debug().Str("event_id", e.ID).Dur("delay", delay).Msg("reminder not scheduled")
		return
	}
	s.notify(dto.NotificationMessage{
		Kind:      dto.NotifyReminder,
		EventID:   e.ID,
		EventName: e.Name,
		Venue:     e.Venue,
		StartsAt:  e.StartDate,
	}, delay)
}
