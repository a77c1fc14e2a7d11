package lifecycle

import (
	"regexp"
	"strings"
	"time"

	"eventsphere/internal/apperr"
	"eventsphere/internal/model"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigits  = regexp.MustCompile(`\D`)
)

type Registrant struct {
	Name              string
	Email             string
	Phone             string
	College           string
	Course            string
	Year              string
	SelectedSubEvents []string
	MealPreference    string
}

func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizePhone keeps digits only, drops a leading 91 country code on
// numbers longer than ten digits and keeps the last ten.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) > 10 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// Normalize returns the stored form of r.
func Normalize(r Registrant) Registrant {
	out := Registrant{
		Name:           strings.ToUpper(strings.TrimSpace(r.Name)),
		Email:          strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:          NormalizePhone(r.Phone),
		College:        strings.ToUpper(strings.TrimSpace(r.College)),
		Course:         strings.ToUpper(strings.TrimSpace(r.Course)),
		Year:           strings.TrimSpace(r.Year),
		MealPreference: strings.ToLower(strings.TrimSpace(r.MealPreference)),
	}
	for _, se := range r.SelectedSubEvents {
		if se = strings.TrimSpace(se); se != "" {
			out.SelectedSubEvents = append(out.SelectedSubEvents, se)
		}
	}
	return out
}

// ValidateRegistrant runs the input checks that need no event: required
// fields, e-mail shape, phone length and meal preference.
func ValidateRegistrant(r Registrant) error {
	for _, v := range []string{r.Name, r.Email, r.Phone, r.College, r.Course, r.Year} {
		if strings.TrimSpace(v) == "" {
			return apperr.Validation("missing fields")
		}
	}
	if !ValidEmail(strings.TrimSpace(r.Email)) {
		return apperr.Validation("invalid email")
	}
	if len(NormalizePhone(r.Phone)) != 10 {
		return apperr.Validation("invalid phone")
	}
	switch strings.ToLower(strings.TrimSpace(r.MealPreference)) {
	case "", "veg", "non-veg":
	default:
		return apperr.Validation("invalid meal preference")
	}
	return nil
}

// CheckEventPolicy applies the event rules that do not depend on other
// registrations: status, deadline, college lists and sub-event names.
func CheckEventPolicy(e *model.Event, r Registrant, now time.Time) error {
	if e.Status != model.EventPublished {
		return apperr.Policy("registration closed")
	}
	if now.After(e.RegistrationDeadline) {
		return apperr.Policy("deadline passed")
	}
	college := strings.ToLower(r.College)
	for _, blocked := range e.BlockedColleges {
		b := strings.ToLower(strings.TrimSpace(blocked))
		if b != "" && strings.Contains(college, b) {
			return apperr.Policy("college blocked")
		}
	}
	if len(e.AllowedColleges) > 0 && !collegeAllowed(e.AllowedColleges, college) {
		return apperr.Policy("college not allowed")
	}
	for _, se := range r.SelectedSubEvents {
		if !e.HasSubEvent(se) {
			return apperr.Validation("unknown sub-event")
		}
	}
	return nil
}

func collegeAllowed(allowed []string, college string) bool {
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" && strings.Contains(college, a) {
			return true
		}
	}
	return false
}

// CheckCapacity fails once the registered count reached max participants.
func CheckCapacity(e *model.Event, registered int) error {
	if e.MaxParticipants != nil && *e.MaxParticipants > 0 && registered >= *e.MaxParticipants {
		return apperr.Policy("full")
	}
	return nil
}
