package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"eventsphere/internal/apperr"
	"eventsphere/internal/auth"
	"eventsphere/internal/dto"
	"eventsphere/internal/model"
)

func (s *service) CreateEvent(ctx context.Context, actor auth.Actor, req dto.CreateEventRequest) (*model.Event, error) {
	now := s.now()
	e := &model.Event{
		ID:                    uuid.NewString(),
		OrganizerID:           actor.OrganizerID,
		OrganizationName:      actor.OrganizationName,
		Name:                  strings.TrimSpace(req.Name),
		Description:           req.Description,
		Type:                  req.Type,
		Status:                model.EventPublished,
		Venue:                 strings.TrimSpace(req.Venue),
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		RegistrationDeadline:  req.RegistrationDeadline,
		RegistrationFee:       req.RegistrationFee,
		MaxParticipants:       req.MaxParticipants,
		RequiresApproval:      req.RequiresApproval,
		UPIID:                 strings.TrimSpace(req.UPIID),
		SubEvents:             req.SubEvents,
		ContactEmail:          strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		ContactPhone:          strings.TrimSpace(req.ContactPhone),
		Guidelines:            req.Guidelines,
		EnableCertificates:    req.EnableCertificates,
		EnableMealPreferences: req.EnableMealPreferences,
		AllowedColleges:       req.AllowedColleges,
		BlockedColleges:       req.BlockedColleges,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if e.ContactEmail == "" {
		e.ContactEmail = actor.Email
	}
	e.Slug = slug.Make(e.Name)
	if err := validateEvent(e); err != nil {
		return nil, err
	}

	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, s.storeErr(err)
	}

	s.log.Info().Str("event_id", e.ID).Str("slug", e.Slug).Msg("event created")
	s.scheduleReminder(e)
	return e, nil
}

func validateEvent(e *model.Event) error {
	switch {
	case e.Slug == "":
		return apperr.Validation("event name must contain letters or digits")
	case !e.Type.Known():
		return apperr.Validation("invalid event type")
	case e.EndDate.Before(e.StartDate):
		return apperr.Validation("end date is before start date")
	case e.RegistrationDeadline.After(e.EndDate):
		return apperr.Validation("registration deadline is after end date")
	case e.RegistrationFee < 0:
		return apperr.Validation("registration fee cannot be negative")
	}
	for _, se := range e.SubEvents {
		if strings.TrimSpace(se.Name) == "" {
			return apperr.Validation("sub-event name required")
		}
	}
	return nil
}

// GetEvent shows published events to anyone and other states only to the
// organizer.
func (s *service) GetEvent(ctx context.Context, idOrSlug string, actor *auth.Actor) (*model.Event, error) {
	var organizerID string
	if actor != nil {
		organizerID = actor.OrganizerID
	}
	e, err := s.resolveEvent(ctx, organizerID, idOrSlug)
	if err != nil {
		return nil, err
	}
	if e.Status == model.EventPublished {
		return e, nil
	}
	if actor == nil {
		return nil, apperr.Unauthenticated("login required")
	}
	if !e.OwnedBy(actor.OrganizerID) {
		return nil, apperr.Forbidden("not the event organizer")
	}
	return e, nil
}

func (s *service) ListEvents(ctx context.Context, q dto.ListEventsQuery, actor *auth.Actor) ([]model.Event, error) {
	f := model.EventFilter{Type: model.EventType(q.Type)}
	if f.Type != "" && !f.Type.Known() {
		return nil, apperr.Validation("invalid event type")
	}

	switch {
	case q.MyEvents:
		if actor == nil {
			return nil, apperr.Unauthenticated("login required")
		}
		f.OrganizerID = actor.OrganizerID
	case q.OrganizerID != "":
		if _, err := uuid.Parse(q.OrganizerID); err != nil {
			return []model.Event{}, nil
		}
		f.OrganizerID = q.OrganizerID
	}

	// Other organizers' unpublished events stay hidden.
	if actor != nil && f.OrganizerID == actor.OrganizerID {
		f.Status = model.EventStatus(q.Status)
	} else {
		f.Status = model.EventPublished
	}

	events, err := s.repo.ListEvents(ctx, f)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return events, nil
}

func (s *service) UpdateEvent(ctx context.Context, actor auth.Actor, id string, req dto.UpdateEventRequest) (*model.Event, error) {
	e, err := s.ownedEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	prevStart := e.StartDate

	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
		e.Slug = slug.Make(e.Name)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Type != nil {
		e.Type = *req.Type
	}
	if req.Venue != nil {
		e.Venue = strings.TrimSpace(*req.Venue)
	}
	if req.StartDate != nil {
		e.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		e.EndDate = *req.EndDate
	}
	if req.RegistrationDeadline != nil {
		e.RegistrationDeadline = *req.RegistrationDeadline
	}
	if req.RegistrationFee != nil {
		e.RegistrationFee = *req.RegistrationFee
	}
	if req.MaxParticipants != nil {
		e.MaxParticipants = req.MaxParticipants
	}
	if req.RequiresApproval != nil {
		e.RequiresApproval = *req.RequiresApproval
	}
	if req.UPIID != nil {
		e.UPIID = strings.TrimSpace(*req.UPIID)
	}
	if req.SubEvents != nil {
		e.SubEvents = *req.SubEvents
	}
	if req.ContactEmail != nil {
		e.ContactEmail = strings.ToLower(strings.TrimSpace(*req.ContactEmail))
	}
	if req.ContactPhone != nil {
		e.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.Guidelines != nil {
		e.Guidelines = *req.Guidelines
	}
	if req.EnableCertificates != nil {
		e.EnableCertificates = *req.EnableCertificates
	}
	if req.EnableMealPreferences != nil {
		e.EnableMealPreferences = *req.EnableMealPreferences
	}
	if req.AllowedColleges != nil {
		e.AllowedColleges = *req.AllowedColleges
	}
	if req.BlockedColleges != nil {
		e.BlockedColleges = *req.BlockedColleges
	}

	if err := validateEvent(e); err != nil {
		return nil, err
	}
	e.UpdatedAt = s.now()
	if err := s.repo.UpdateEvent(ctx, e); err != nil {
		return nil, s.storeErr(err)
	}

	s.log.Info().Str("event_id", e.ID).Msg("event updated")
	if !e.StartDate.Equal(prevStart) {
		s.scheduleReminder(e)
	}
	return e, nil
}

func (s *service) SetEventStatus(ctx context.Context, actor auth.Actor, id string, status model.EventStatus) (*model.Event, error) {
	switch status {
	case model.EventDraft, model.EventPublished, model.EventCancelled:
	default:
		return nil, apperr.Validation("invalid event status")
	}

	e, err := s.ownedEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if e.Status == status {
		return e, nil
	}
	if err := s.repo.SetEventStatus(ctx, e.ID, status); err != nil {
		return nil, s.storeErr(err)
	}
	e.Status = status
	e.UpdatedAt = s.now()

	s.log.Info().Str("event_id", e.ID).Str("status", string(status)).Msg("event status changed")
	s.scheduleReminder(e)
	return e, nil
}

func (s *service) DeleteEvent(ctx context.Context, actor auth.Actor, id string) error {
	e, err := s.ownedEvent(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEventTx(ctx, e.ID); err != nil {
		return s.storeErr(err)
	}
	return nil
}
