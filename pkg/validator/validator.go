package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

var (
	global      *validator.Validate
	ticketRegex = regexp.MustCompile(`^[A-Z0-9]{3}-[A-Z0-9]{5}$`)
	upiRegex    = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64}$`)
	nonDigits   = regexp.MustCompile(`\D`)
)

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrInvalidEmail       = "Invalid email"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ticket", validateTicket)
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("upi", validateUPI)
	_ = v.RegisterValidation("future", validateFutureDate)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

// validateTicket accepts ticket codes in any case, as typed at the desk.
func validateTicket(fl validator.FieldLevel) bool {
	return ticketRegex.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

func validatePhone(fl validator.FieldLevel) bool {
	return len(nonDigits.ReplaceAllString(fl.Field().String(), "")) >= 10
}

func validateUPI(fl validator.FieldLevel) bool {
	return upiRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateFutureDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && t.After(time.Now())
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "ticket", "phone", "upi":
		msg = ErrInvalidFormat
	case "email":
		msg = ErrInvalidEmail
	case "required":
		msg = ErrFieldRequired
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "future":
		msg = "Date must be in the future"
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
