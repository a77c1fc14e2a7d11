package dto

import "time"

type NotificationKind string

const (
	NotifyRegistered NotificationKind = "registered"
	NotifyApproved   NotificationKind = "approved"
	NotifyRejected   NotificationKind = "rejected"
	NotifyCheckedIn  NotificationKind = "checked-in"
	NotifyReminder   NotificationKind = "reminder"
)

// NotificationMessage is the queue payload consumed by the mail worker.
// Reminders carry only the event fields and fan out to every approved
// participant when delivered.
type NotificationMessage struct {
	Kind       NotificationKind `json:"kind"`
	EventID    string           `json:"event_id"`
	EventName  string           `json:"event_name"`
	Venue      string           `json:"venue,omitempty"`
	StartsAt   time.Time        `json:"starts_at"`
	TicketCode string           `json:"ticket_code,omitempty"`
	Name       string           `json:"name,omitempty"`
	Email      string           `json:"email,omitempty"`
	PaymentURL string           `json:"payment_url,omitempty"`
}
