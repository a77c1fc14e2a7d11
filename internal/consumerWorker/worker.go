package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"eventsphere/internal/dto"
	"eventsphere/internal/model"
	"eventsphere/internal/repo"
)

type Consumer interface {
	Consume(handler func([]byte) error) error
}

type Sender interface {
	Send(msg dto.NotificationMessage) error
}

// Participants is the part of the repository the worker reads when fanning
// out reminders.
type Participants interface {
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	ListParticipants(ctx context.Context, eventID string, status model.ParticipantStatus) ([]model.Participant, error)
}

type Reader struct {
	rmq    Consumer
	repo   Participants
	mail   Sender
	log    *zerolog.Logger
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq Consumer, repo Participants, mail Sender, log *zerolog.Logger) *Reader {
	return &Reader{
		rmq:  rmq,
		repo: repo,
		mail: mail,
		log:  log,
		done: make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.log.Info().Msg("notification reader started")

	go func() {
		defer close(r.done)

		if err := r.rmq.Consume(func(body []byte) error {
			return r.handle(cctx, body)
		}); err != nil {
			r.log.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		r.log.Info().Msg("notification reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

// handle processes one queue message. Only storage failures are returned,
// which requeues the message; malformed payloads and mail failures are
// logged and dropped.
func (r *Reader) handle(ctx context.Context, body []byte) error {
	var msg dto.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		r.log.Error().Err(err).Str("body", string(body)).Msg("failed to unmarshal notification")
		return nil
	}

	r.log.Info().
		Str("kind", string(msg.Kind)).
		Str("event_id", msg.EventID).
		Str("ticket_code", msg.TicketCode).
		Msg("received notification")

	if msg.Kind == dto.NotifyReminder {
		return r.remind(ctx, msg)
	}
	r.deliver(msg)
	return nil
}

// remind sends the reminder to every approved participant, provided the
// event is still published and has not been moved since it was scheduled.
func (r *Reader) remind(ctx context.Context, msg dto.NotificationMessage) error {
	e, err := r.repo.GetEventByID(ctx, msg.EventID)
	if errors.Is(err, repo.ErrEventNotFound) {
		r.log.Info().Str("event_id", msg.EventID).Msg("event gone, reminder dropped")
		return nil
	}
	if err != nil {
		r.log.Error().Err(err).Str("event_id", msg.EventID).Msg("failed to load event for reminder")
		return err
	}
	if e.Status != model.EventPublished || !sameSecond(e.StartDate, msg.StartsAt) {
		r.log.Info().
			Str("event_id", e.ID).
			Str("status", string(e.Status)).
			Msg("stale reminder dropped")
		return nil
	}

	participants, err := r.repo.ListParticipants(ctx, e.ID, model.StatusApproved)
	if err != nil {
		r.log.Error().Err(err).Str("event_id", e.ID).Msg("failed to list participants for reminder")
		return err
	}
	for _, p := range participants {
		r.deliver(dto.NotificationMessage{
			Kind:       dto.NotifyReminder,
			EventID:    e.ID,
			EventName:  e.Name,
			Venue:      e.Venue,
			StartsAt:   e.StartDate,
			TicketCode: p.TicketCode,
			Name:       p.Name,
			Email:      p.Email,
		})
	}
	r.log.Info().Str("event_id", e.ID).Int("recipients", len(participants)).Msg("reminder sent")
	return nil
}

func (r *Reader) deliver(msg dto.NotificationMessage) {
	if err := r.mail.Send(msg); err != nil {
		r.log.Warn().
			Err(err).
			Str("kind", string(msg.Kind)).
			Str("ticket_code", msg.TicketCode).
			Msg("failed to send notification email")
	}
}

func sameSecond(a, b time.Time) bool {
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}
