package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"eventsphere/internal/apperr"
	"eventsphere/internal/auth"
	"eventsphere/internal/dto"
	"eventsphere/internal/lifecycle"
	"eventsphere/internal/model"
	"eventsphere/internal/repo"
)

const invalidCredentials = "invalid email or password"

func (s *service) Signup(ctx context.Context, req dto.SignupRequest) (*model.Organizer, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !lifecycle.ValidEmail(email) {
		return nil, apperr.Validation("invalid email")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	phone := lifecycle.NormalizePhone(req.Phone)
	if len(phone) != 10 {
		return nil, apperr.Validation("invalid phone")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.now()
	o := &model.Organizer{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     hash,
		OrganizationName: strings.TrimSpace(req.OrganizationName),
		ContactPerson:    strings.TrimSpace(req.ContactPerson),
		Phone:            phone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateOrganizer(ctx, o); err != nil {
		return nil, s.storeErr(err)
	}

	s.log.Info().Str("organizer_id", o.ID).Msg("organizer signed up")
	return o, nil
}

func (s *service) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return dto.LoginResponse{}, apperr.Validation("missing fields")
	}

	o, err := s.repo.GetOrganizerByEmail(ctx, email)
	if errors.Is(err, repo.ErrOrganizerNotFound) {
		return dto.LoginResponse{}, apperr.Unauthenticated(invalidCredentials)
	}
	if err != nil {
		return dto.LoginResponse{}, s.storeErr(err)
	}
	if !auth.CheckPassword(o.PasswordHash, req.Password) {
		return dto.LoginResponse{}, apperr.Unauthenticated(invalidCredentials)
	}

	token, err := s.tokens.Issue(auth.Actor{
		OrganizerID:      o.ID,
		Email:            o.Email,
		OrganizationName: o.OrganizationName,
	})
	if err != nil {
		return dto.LoginResponse{}, apperr.Internal(err)
	}

	return dto.LoginResponse{
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
		Organizer: o,
	}, nil
}

// Session returns the organizer behind a valid token. An account removed
// after the token was issued counts as logged out.
func (s *service) Session(ctx context.Context, actor auth.Actor) (*model.Organizer, error) {
	o, err := s.repo.GetOrganizerByID(ctx, actor.OrganizerID)
	if errors.Is(err, repo.ErrOrganizerNotFound) {
		return nil, apperr.Unauthenticated("session expired")
	}
	if err != nil {
		return nil, s.storeErr(err)
	}
	return o, nil
}
