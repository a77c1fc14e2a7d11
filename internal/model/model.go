package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

type EventType string

const (
	EventTechFest    EventType = "tech-fest"
	EventHackathon   EventType = "hackathon"
	EventWorkshop    EventType = "workshop"
	EventSeminar     EventType = "seminar"
	EventCompetition EventType = "competition"
)

var EventTypes = []EventType{EventTechFest, EventHackathon, EventWorkshop, EventSeminar, EventCompetition}

func (t EventType) Known() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

type ParticipantStatus string

const (
	StatusPending   ParticipantStatus = "pending"
	StatusApproved  ParticipantStatus = "approved"
	StatusRejected  ParticipantStatus = "rejected"
	StatusCheckedIn ParticipantStatus = "checked-in"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Organizer struct {
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	OrganizationName string    `db:"organization_name" json:"organization_name"`
	ContactPerson    string    `db:"contact_person" json:"contact_person"`
	Phone            string    `db:"phone" json:"phone"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type Coordinator struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type Prize struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Third  int `json:"third,omitempty"`
}

type SubEvent struct {
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Rules           []string      `json:"rules,omitempty"`
	Prize           *Prize        `json:"prize,omitempty"`
	Coordinators    []Coordinator `json:"coordinators,omitempty"`
	MaxParticipants *int          `json:"max_participants,omitempty"`
	RegistrationFee *int          `json:"registration_fee,omitempty"`
	StartTime       *time.Time    `json:"start_time,omitempty"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
}

type Event struct {
	ID                    string      `db:"id" json:"id"`
	OrganizerID           string      `db:"organizer_id" json:"organizer_id"`
	OrganizationName      string      `db:"organization_name" json:"organization_name"`
	Name                  string      `db:"name" json:"name"`
	Slug                  string      `db:"slug" json:"slug"`
	Description           string      `db:"description" json:"description"`
	Type                  EventType   `db:"type" json:"type"`
	Status                EventStatus `db:"status" json:"status"`
	Venue                 string      `db:"venue" json:"venue"`
	StartDate             time.Time   `db:"start_date" json:"start_date"`
	EndDate               time.Time   `db:"end_date" json:"end_date"`
	RegistrationDeadline  time.Time   `db:"registration_deadline" json:"registration_deadline"`
	RegistrationFee       int         `db:"registration_fee" json:"registration_fee"`
	MaxParticipants       *int        `db:"max_participants" json:"max_participants,omitempty"`
	RequiresApproval      bool        `db:"requires_approval" json:"requires_approval"`
	UPIID                 string      `db:"upi_id" json:"upi_id,omitempty"`
	SubEvents             []SubEvent  `db:"sub_events" json:"sub_events"`
	ContactEmail          string      `db:"contact_email" json:"contact_email"`
	ContactPhone          string      `db:"contact_phone" json:"contact_phone"`
	Guidelines            []string    `db:"guidelines" json:"guidelines"`
	EnableCertificates    bool        `db:"enable_certificates" json:"enable_certificates"`
	EnableMealPreferences bool        `db:"enable_meal_preferences" json:"enable_meal_preferences"`
	AllowedColleges       []string    `db:"allowed_colleges" json:"allowed_colleges,omitempty"`
	BlockedColleges       []string    `db:"blocked_colleges" json:"blocked_colleges,omitempty"`
	TotalRegistrations    int         `db:"total_registrations" json:"total_registrations"`
	CreatedAt             time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at" json:"updated_at"`
}

// OwnedBy reports whether organizerID created the event.
func (e *Event) OwnedBy(organizerID string) bool {
	return organizerID != "" && e.OrganizerID == organizerID
}

func (e *Event) HasSubEvent(name string) bool {
	for _, se := range e.SubEvents {
		if strings.EqualFold(se.Name, name) {
			return true
		}
	}
	return false
}

// PaymentURL is the UPI deep link for the registration fee, empty when the
// event is free or has no UPI id.
func (e *Event) PaymentURL() string {
	upi := strings.TrimSpace(e.UPIID)
	if e.RegistrationFee <= 0 || upi == "" {
		return ""
	}
	return fmt.Sprintf("upi://pay?pa=%s&am=%d&cu=INR", url.QueryEscape(upi), e.RegistrationFee)
}

type Participant struct {
	ID                string            `db:"id" json:"id"`
	EventID           string            `db:"event_id" json:"event_id"`
	TicketCode        string            `db:"ticket_code" json:"ticket_code"`
	Name              string            `db:"name" json:"name"`
	Email             string            `db:"email" json:"email"`
	Phone             string            `db:"phone" json:"phone"`
	College           string            `db:"college" json:"college"`
	Course            string            `db:"course" json:"course"`
	Year              string            `db:"year" json:"year"`
	SelectedSubEvents []string          `db:"selected_sub_events" json:"selected_sub_events"`
	MealPreference    string            `db:"meal_preference" json:"meal_preference,omitempty"`
	Status            ParticipantStatus `db:"status" json:"status"`
	PaymentStatus     PaymentStatus     `db:"payment_status" json:"payment_status"`
	CheckedInAt       *time.Time        `db:"checked_in_at" json:"checked_in_at,omitempty"`
	CheckedInBy       string            `db:"checked_in_by" json:"checked_in_by,omitempty"`
	RegisteredAt      time.Time         `db:"registered_at" json:"registered_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

type CheckIn struct {
	ID          string    `db:"id" json:"id"`
	EventID     string    `db:"event_id" json:"event_id"`
	TicketCode  string    `db:"ticket_code" json:"ticket_code"`
	CheckedInBy string    `db:"checked_in_by" json:"checked_in_by"`
	CheckedInAt time.Time `db:"checked_in_at" json:"checked_in_at"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
}

type EventFilter struct {
	OrganizerID string
	Status      EventStatus
	Type        EventType
}

type ParticipantStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	CheckedIn int `json:"checked_in"`
}
