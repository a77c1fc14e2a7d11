package dto

import (
	"time"

	"eventsphere/internal/model"
)

type SignupRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	OrganizationName string `json:"organization_name" validate:"required,max=255"`
	ContactPerson    string `json:"contact_person" validate:"required,max=255"`
	Phone            string `json:"phone" validate:"required,phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateEventRequest struct {
	Name                  string           `json:"name" validate:"required,min=3,max=255"`
	Description           string           `json:"description" validate:"required"`
	Type                  model.EventType  `json:"type" validate:"required"`
	Venue                 string           `json:"venue" validate:"required"`
	StartDate             time.Time        `json:"start_date" validate:"required,future"`
	EndDate               time.Time        `json:"end_date" validate:"required"`
	RegistrationDeadline  time.Time        `json:"registration_deadline" validate:"required"`
	RegistrationFee       int              `json:"registration_fee" validate:"gte=0"`
	MaxParticipants       *int             `json:"max_participants" validate:"omitempty,gte=0"`
	RequiresApproval      bool             `json:"requires_approval"`
	UPIID                 string           `json:"upi_id" validate:"omitempty,upi"`
	SubEvents             []model.SubEvent `json:"sub_events"`
	ContactEmail          string           `json:"contact_email" validate:"omitempty,email"`
	ContactPhone          string           `json:"contact_phone"`
	Guidelines            []string         `json:"guidelines"`
	EnableCertificates    bool             `json:"enable_certificates"`
	EnableMealPreferences bool             `json:"enable_meal_preferences"`
	AllowedColleges       []string         `json:"allowed_colleges"`
	BlockedColleges       []string         `json:"blocked_colleges"`
}

// UpdateEventRequest carries only the fields to change.
type UpdateEventRequest struct {
	Name                  *string           `json:"name" validate:"omitempty,min=3,max=255"`
	Description           *string           `json:"description"`
	Type                  *model.EventType  `json:"type"`
	Venue                 *string           `json:"venue"`
	StartDate             *time.Time        `json:"start_date"`
	EndDate               *time.Time        `json:"end_date"`
	RegistrationDeadline  *time.Time        `json:"registration_deadline"`
	RegistrationFee       *int              `json:"registration_fee" validate:"omitempty,gte=0"`
	MaxParticipants       *int              `json:"max_participants" validate:"omitempty,gte=0"`
	RequiresApproval      *bool             `json:"requires_approval"`
	UPIID                 *string           `json:"upi_id" validate:"omitempty,upi"`
	SubEvents             *[]model.SubEvent `json:"sub_events"`
	ContactEmail          *string           `json:"contact_email" validate:"omitempty,email"`
	ContactPhone          *string           `json:"contact_phone"`
	Guidelines            *[]string         `json:"guidelines"`
	EnableCertificates    *bool             `json:"enable_certificates"`
	EnableMealPreferences *bool             `json:"enable_meal_preferences"`
	AllowedColleges       *[]string         `json:"allowed_colleges"`
	BlockedColleges       *[]string         `json:"blocked_colleges"`
}

type EventStatusRequest struct {
	Status model.EventStatus `json:"status" validate:"required"`
}

type ListEventsQuery struct {
	MyEvents    bool   `form:"my_events"`
	OrganizerID string `form:"organizer_id"`
	Status      string `form:"status"`
	Type        string `form:"type"`
}

// RegisterRequest is checked by the registration rules rather than struct
// tags so that failures come back in a fixed order.
type RegisterRequest struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	College           string   `json:"college"`
	Course            string   `json:"course"`
	Year              string   `json:"year"`
	SelectedSubEvents []string `json:"selected_sub_events"`
	MealPreference    string   `json:"meal_preference"`
}

type DecisionRequest struct {
	Action string `json:"action" validate:"required"`
}

type CheckInRequest struct {
	TicketCode string `json:"ticket_code" validate:"required,ticket"`
	Notes      string `json:"notes" validate:"max=500"`
}

type ScanCodeRequest struct {
	TicketCode string `json:"ticket_code" validate:"required"`
}
