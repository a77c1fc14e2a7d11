package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"eventsphere/internal/apperr"
	"eventsphere/internal/auth"
	"eventsphere/internal/dto"
	"eventsphere/internal/lifecycle"
	"eventsphere/internal/model"
	"eventsphere/internal/repo"
	"eventsphere/internal/ticket"
)

// Register admits one attendee. Input checks run first, then the event
// rules, then duplicate and capacity checks under the event lock. A ticket
// code collision is retried with a fresh code.
func (s *service) Register(ctx context.Context, eventID string, req dto.RegisterRequest) (dto.RegisterResponse, error) {
	if strings.TrimSpace(eventID) == "" {
		return dto.RegisterResponse{}, apperr.Validation("event id required")
	}

	r := lifecycle.Registrant{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		College:           req.College,
		Course:            req.Course,
		Year:              req.Year,
		SelectedSubEvents: req.SelectedSubEvents,
		MealPreference:    req.MealPreference,
	}
	if err := lifecycle.ValidateRegistrant(r); err != nil {
		return dto.RegisterResponse{}, err
	}
	r = lifecycle.Normalize(r)

	e, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.RegisterResponse{}, err
	}
	now := s.now()
	if err := lifecycle.CheckEventPolicy(e, r, now); err != nil {
		return dto.RegisterResponse{}, err
	}

	prefix := ticket.PrefixFromSlug(e.Slug)
	admit := func(locked *model.Event, registered int) error {
		if err := lifecycle.CheckEventPolicy(locked, r, now); err != nil {
			return err
		}
		return lifecycle.CheckCapacity(locked, registered)
	}

	for attempt := 1; attempt <= s.opts.TicketAttempts; attempt++ {
		code, err := ticket.Generate(prefix, ticket.DefaultLength)
		if err != nil {
			return dto.RegisterResponse{}, apperr.Internal(err)
		}

		p := &model.Participant{
			ID:                uuid.NewString(),
			EventID:           e.ID,
			TicketCode:        code,
			Name:              r.Name,
			Email:             r.Email,
			Phone:             r.Phone,
			College:           r.College,
			Course:            r.Course,
			Year:              r.Year,
			SelectedSubEvents: r.SelectedSubEvents,
			MealPreference:    r.MealPreference,
			Status:            lifecycle.InitialStatus(e),
			PaymentStatus:     lifecycle.InitialPayment(e),
			RegisteredAt:      now,
			UpdatedAt:         now,
		}

		err = s.repo.CreateParticipantTx(ctx, p, admit)
		if errors.Is(err, repo.ErrTicketTaken) {
			s.log.Warn().Str("event_id", e.ID).Int("attempt", attempt).Msg("ticket code collision, regenerating")
			continue
		}
		if err != nil {
			return dto.RegisterResponse{}, s.storeErr(err)
		}

		resp := dto.RegisterResponse{
			TicketCode:    p.TicketCode,
			Status:        p.Status,
			PaymentStatus: p.PaymentStatus,
			PaymentURL:    e.PaymentURL(),
		}
		msg := participantMessage(dto.NotifyRegistered, e, p)
		msg.PaymentURL = resp.PaymentURL
		s.notify(msg, 0)
		return resp, nil
	}

	return dto.RegisterResponse{}, apperr.Internal(
		fmt.Errorf("no free ticket code for event %s after %d attempts", e.ID, s.opts.TicketAttempts))
}

func (s *service) ListParticipants(ctx context.Context, actor auth.Actor, eventID, status string) (dto.ParticipantListResponse, error) {
	filter := model.ParticipantStatus(status)
	switch filter {
	case "", model.StatusPending, model.StatusApproved, model.StatusRejected, model.StatusCheckedIn:
	default:
		return dto.ParticipantListResponse{}, apperr.Validation("invalid participant status")
	}

	e, err := s.ownedEvent(ctx, actor, eventID)
	if err != nil {
		return dto.ParticipantListResponse{}, err
	}

	participants, err := s.repo.ListParticipants(ctx, e.ID, filter)
	if err != nil {
		return dto.ParticipantListResponse{}, s.storeErr(err)
	}
	stats, err := s.repo.ParticipantStats(ctx, e.ID)
	if err != nil {
		return dto.ParticipantListResponse{}, s.storeErr(err)
	}
	return dto.ParticipantListResponse{Participants: participants, Stats: stats}, nil
}

func (s *service) Decide(ctx context.Context, actor auth.Actor, eventID, ticketCode, action string) (dto.DecisionResponse, error) {
	act, err := lifecycle.ParseDecision(strings.ToLower(strings.TrimSpace(action)))
	if err != nil {
		return dto.DecisionResponse{}, err
	}
	e, err := s.ownedEvent(ctx, actor, eventID)
	if err != nil {
		return dto.DecisionResponse{}, err
	}

	code := ticket.Normalize(ticketCode)
	changed := false
	p, err := s.repo.UpdateParticipantTx(ctx, e.ID, code, func(p *model.Participant) error {
		prev := p.Status
		if err := lifecycle.Apply(p, act, actor.OrganizerID, s.now()); err != nil {
			return err
		}
		changed = p.Status != prev
		return nil
	})
	if err != nil {
		return dto.DecisionResponse{}, s.storeErr(err)
	}

	if changed {
		s.log.Info().Str("event_id", e.ID).Str("ticket_code", code).Str("status", string(p.Status)).Msg("participant decided")
		kind := dto.NotifyApproved
		if p.Status == model.StatusRejected {
			kind = dto.NotifyRejected
		}
		s.notify(participantMessage(kind, e, p), 0)
	}
	return dto.DecisionResponse{TicketCode: p.TicketCode, Status: p.Status}, nil
}

func (s *service) CheckIn(ctx context.Context, actor auth.Actor, eventID, ticketCode, notes string) (*model.Participant, error) {
	e, err := s.ownedEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	code := ticket.Normalize(ticketCode)
	if !ticket.Valid(code) {
		return nil, apperr.Validation("invalid ticket code")
	}

	now := s.now()
	c := &model.CheckIn{
		ID:          uuid.NewString(),
		EventID:     e.ID,
		TicketCode:  code,
		CheckedInBy: actor.OrganizerID,
		CheckedInAt: now,
		Notes:       strings.TrimSpace(notes),
	}
	p, err := s.repo.CheckInTx(ctx, c, func(p *model.Participant) error {
		return lifecycle.Apply(p, lifecycle.ActionCheckIn, actor.OrganizerID, now)
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	s.notify(participantMessage(dto.NotifyCheckedIn, e, p), 0)
	return p, nil
}

func (s *service) RemoveCheckIn(ctx context.Context, actor auth.Actor, eventID, ticketCode string) (*model.Participant, error) {
	e, err := s.ownedEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}

	code := ticket.Normalize(ticketCode)
	p, err := s.repo.RemoveCheckInTx(ctx, e.ID, code, func(p *model.Participant) error {
		return lifecycle.Apply(p, lifecycle.ActionUndoCheckIn, actor.OrganizerID, s.now())
	})
	if err != nil {
		return nil, s.storeErr(err)
	}
	return p, nil
}

// GetCertificate is public: the ticket code is the attendee's credential.
func (s *service) GetCertificate(ctx context.Context, eventID, ticketCode string) (dto.CertificateResponse, error) {
	e, p, err := s.participant(ctx, eventID, ticketCode)
	if err != nil {
		return dto.CertificateResponse{}, err
	}
	return certificate(e, p)
}

// GetCertificateByPhone serves attendees who lost their ticket code. The
// phone is matched in the same normalized form it was stored in.
func (s *service) GetCertificateByPhone(ctx context.Context, eventID, phone string) (dto.CertificateResponse, error) {
	normalized := lifecycle.NormalizePhone(phone)
	if len(normalized) != 10 {
		return dto.CertificateResponse{}, apperr.NotFound("participant not found")
	}
	e, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.CertificateResponse{}, err
	}
	p, err := s.repo.GetParticipantByPhone(ctx, e.ID, normalized)
	if err != nil {
		return dto.CertificateResponse{}, s.storeErr(err)
	}
	return certificate(e, p)
}

func certificate(e *model.Event, p *model.Participant) (dto.CertificateResponse, error) {
	if p.Status != model.StatusCheckedIn || p.CheckedInAt == nil {
		return dto.CertificateResponse{}, apperr.Policy("not eligible")
	}
	return dto.CertificateResponse{
		Name:             p.Name,
		College:          p.College,
		Course:           p.Course,
		TicketCode:       p.TicketCode,
		CheckedInAt:      *p.CheckedInAt,
		EventName:        e.Name,
		Venue:            e.Venue,
		OrganizationName: e.OrganizationName,
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
	}, nil
}

func (s *service) TicketQR(ctx context.Context, eventID, ticketCode string) ([]byte, error) {
	_, p, err := s.participant(ctx, eventID, ticketCode)
	if err != nil {
		return nil, err
	}
	png, err := ticket.EncodePNG(p.TicketCode, s.opts.QRSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return png, nil
}

func (s *service) participant(ctx context.Context, eventID, ticketCode string) (*model.Event, *model.Participant, error) {
	code := ticket.Normalize(ticketCode)
	if !ticket.Valid(code) {
		return nil, nil, apperr.NotFound("participant not found")
	}
	e, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.repo.GetParticipant(ctx, e.ID, code)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}
	return e, p, nil
}
