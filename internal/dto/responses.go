package dto

import (
	"time"

	"eventsphere/internal/model"
)

type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Organizer *model.Organizer `json:"organizer"`
}

type RegisterResponse struct {
	TicketCode    string                  `json:"ticket_code"`
	Status        model.ParticipantStatus `json:"status"`
	PaymentStatus model.PaymentStatus     `json:"payment_status"`
	PaymentURL    string                  `json:"payment_url,omitempty"`
}

type DecisionResponse struct {
	TicketCode string                  `json:"ticket_code"`
	Status     model.ParticipantStatus `json:"status"`
}

type ParticipantListResponse struct {
	Participants []model.Participant    `json:"participants"`
	Stats        model.ParticipantStats `json:"stats"`
}

type CertificateResponse struct {
	Name             string    `json:"name"`
	College          string    `json:"college"`
	Course           string    `json:"course"`
	TicketCode       string    `json:"ticket_code"`
	CheckedInAt      time.Time `json:"checked_in_at"`
	EventName        string    `json:"event_name"`
	Venue            string    `json:"venue"`
	OrganizationName string    `json:"organization_name"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

type ScanResponse struct {
	SessionID   string             `json:"session_id"`
	EventID     string             `json:"event_id"`
	State       string             `json:"state"`
	PendingCode string             `json:"pending_code,omitempty"`
	Prompt      bool               `json:"prompt"`
	LastCode    string             `json:"last_code,omitempty"`
	LastResult  string             `json:"last_result,omitempty"`
	Participant *model.Participant `json:"participant,omitempty"`
}

type HealthResponse struct {
	Database string `json:"database"`
}
