package service

import (
	"context"
	"errors"
	"io"

	"eventsphere/internal/apperr"
	"eventsphere/internal/auth"
	"eventsphere/internal/dto"
	"eventsphere/internal/model"
	"eventsphere/internal/scanner"
	"eventsphere/internal/ticket"
)

func (s *service) OpenScan(ctx context.Context, actor auth.Actor, eventID string) (dto.ScanResponse, error) {
	e, err := s.ownedEvent(ctx, actor, eventID)
	if err != nil {
		return dto.ScanResponse{}, err
	}
	sess := s.scans.Open(e.ID, actor.OrganizerID)
	return scanResponse(sess.Snapshot(), nil), nil
}

func (s *service) ScanState(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error) {
	sess, err := s.scanSession(ctx, actor, eventID, sessionID)
	if err != nil {
		return dto.ScanResponse{}, err
	}
	return scanResponse(sess.Snapshot(), nil), nil
}

// ScanFrame decodes an uploaded camera frame. A frame without a readable
// code leaves the station unchanged.
func (s *service) ScanFrame(ctx context.Context, actor auth.Actor, eventID, sessionID string, frame io.Reader) (dto.ScanResponse, error) {
	sess, err := s.scanSession(ctx, actor, eventID, sessionID)
	if err != nil {
		return dto.ScanResponse{}, err
	}

	code, err := ticket.DecodeImage(frame)
	if errors.Is(err, ticket.ErrNoCode) {
		return scanResponse(sess.Snapshot(), nil), nil
	}
	if err != nil {
		return dto.ScanResponse{}, apperr.Validation("unreadable frame")
	}
	return scanResponse(sess.Detect(ticket.Normalize(code)), nil), nil
}

// ScanCode feeds a typed ticket code through the same confirmation flow.
func (s *service) ScanCode(ctx context.Context, actor auth.Actor, eventID, sessionID, code string) (dto.ScanResponse, error) {
	sess, err := s.scanSession(ctx, actor, eventID, sessionID)
	if err != nil {
		return dto.ScanResponse{}, err
	}
	return scanResponse(sess.Detect(ticket.Normalize(code)), nil), nil
}

// ConfirmScan checks in the pending code. The station returns to scanning
// whatever the outcome; a failed check-in is reported alongside the state.
func (s *service) ConfirmScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error) {
	sess, err := s.scanSession(ctx, actor, eventID, sessionID)
	if err != nil {
		return dto.ScanResponse{}, err
	}
	code, err := sess.Confirm()
	if err != nil {
		return dto.ScanResponse{}, err
	}

	p, checkErr := s.CheckIn(ctx, actor, eventID, code, "")
	result := string(model.StatusCheckedIn)
	if checkErr != nil {
		result = apperr.MessageOf(checkErr)
	}
	if err := sess.Finish(result); err != nil {
		return dto.ScanResponse{}, err
	}

	s.log.Info().Str("session_id", sessionID).Str("ticket_code", code).Str("result", result).Msg("scan submitted")
	if checkErr != nil {
		return dto.ScanResponse{}, checkErr
	}
	return scanResponse(sess.Snapshot(), p), nil
}

func (s *service) DeclineScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) (dto.ScanResponse, error) {
	sess, err := s.scanSession(ctx, actor, eventID, sessionID)
	if err != nil {
		return dto.ScanResponse{}, err
	}
	if err := sess.Decline(); err != nil {
		return dto.ScanResponse{}, err
	}
	return scanResponse(sess.Snapshot(), nil), nil
}

func (s *service) CloseScan(ctx context.Context, actor auth.Actor, eventID, sessionID string) error {
	if _, err := s.scanSession(ctx, actor, eventID, sessionID); err != nil {
		return err
	}
	return s.scans.Close(sessionID)
}

func (s *service) scanSession(ctx context.Context, actor auth.Actor, eventID, sessionID string) (*scanner.Session, error) {
	e, err := s.ownedEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	sess, err := s.scans.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.BelongsTo(e.ID, actor.OrganizerID) {
		return nil, apperr.Forbidden("scan session belongs to another station")
	}
	return sess, nil
}

func scanResponse(snap scanner.Snapshot, p *model.Participant) dto.ScanResponse {
	return dto.ScanResponse{
		SessionID:   snap.ID,
		EventID:     snap.EventID,
		State:       string(snap.State),
		PendingCode: snap.PendingCode,
		Prompt:      snap.Prompt,
		LastCode:    snap.LastCode,
		LastResult:  snap.LastResult,
		Participant: p,
	}
}
