// Package lifecycle holds the participant status rules and the registration
// policy checks. Nothing here touches storage; the repository runs these
// functions while it holds the relevant row locks.
package lifecycle

import (
	"time"

	"eventsphere/internal/apperr"
	"eventsphere/internal/model"
)

type Action string

const (
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionCheckIn     Action = "check-in"
	ActionUndoCheckIn Action = "undo-check-in"
)

// ParseDecision accepts only the organizer decisions approve and reject.
func ParseDecision(s string) (Action, error) {
	switch Action(s) {
	case ActionApprove, ActionReject:
		return Action(s), nil
	}
	return "", apperr.Validation("invalid action")
}

// InitialStatus is pending only when the event asks for manual approval.
func InitialStatus(e *model.Event) model.ParticipantStatus {
	if e.RequiresApproval {
		return model.StatusPending
	}
	return model.StatusApproved
}

func InitialPayment(e *model.Event) model.PaymentStatus {
	if e.RegistrationFee == 0 {
		return model.PaymentPaid
	}
	return model.PaymentPending
}

// Next returns the status reached from "from" by action a. Repeating a
// decision that already holds is a no-op.
func Next(from model.ParticipantStatus, a Action) (model.ParticipantStatus, error) {
	switch a {
	case ActionApprove:
		switch from {
		case model.StatusPending, model.StatusApproved:
			return model.StatusApproved, nil
		}
		return from, apperr.Policy("cannot approve a " + string(from) + " participant")
	case ActionReject:
		switch from {
		case model.StatusPending, model.StatusRejected:
			return model.StatusRejected, nil
		}
		return from, apperr.Policy("cannot reject a " + string(from) + " participant")
	case ActionCheckIn:
		switch from {
		case model.StatusApproved:
			return model.StatusCheckedIn, nil
		case model.StatusCheckedIn:
			return from, apperr.Conflict("already checked in")
		}
		return from, apperr.Policy("not approved")
	case ActionUndoCheckIn:
		if from == model.StatusCheckedIn {
			return model.StatusApproved, nil
		}
		return from, apperr.NotFound("check-in not found")
	}
	return from, apperr.Validation("invalid action")
}

// Apply moves p along action a and keeps the check-in fields in step with
// the status.
func Apply(p *model.Participant, a Action, actor string, at time.Time) error {
	next, err := Next(p.Status, a)
	if err != nil {
		return err
	}
	p.Status = next
	switch a {
	case ActionCheckIn:
		t := at
		p.CheckedInAt = &t
		p.CheckedInBy = actor
	case ActionUndoCheckIn:
		p.CheckedInAt = nil
		p.CheckedInBy = ""
	}
	p.UpdatedAt = at
	return nil
}
