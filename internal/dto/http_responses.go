package dto

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventsphere/internal/apperr"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	NotFound        = "NOT_FOUND"
	Unauthenticated = "UNAUTHENTICATED"
	Forbidden       = "FORBIDDEN"
	PolicyViolation = "POLICY_VIOLATION"
	Conflict        = "CONFLICT"
)

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func ErrorResponse(c *ginext.Context, httpStatus int, code, desc string) {
	c.AbortWithStatusJSON(httpStatus, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func BadResponseError(c *ginext.Context, code, desc string) {
	ErrorResponse(c, http.StatusBadRequest, code, desc)
}

func InternalServerError(c *ginext.Context) {
	ErrorResponse(c, http.StatusInternalServerError, ServiceUnavailable, InternalError)
}

func FieldBadFormatError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldBadFormat, "Field '"+fieldName+"' has bad format")
}

func UnauthenticatedError(c *ginext.Context, desc string) {
	ErrorResponse(c, http.StatusUnauthorized, Unauthenticated, desc)
}

// AppError writes err using the HTTP status of its apperr kind. Internal
// errors are logged and answered with the generic unavailable message.
func AppError(c *ginext.Context, log *zerolog.Logger, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		BadResponseError(c, FieldIncorrect, apperr.MessageOf(err))
	case apperr.KindNotFound:
		ErrorResponse(c, http.StatusNotFound, NotFound, apperr.MessageOf(err))
	case apperr.KindUnauthenticated:
		UnauthenticatedError(c, apperr.MessageOf(err))
	case apperr.KindForbidden:
		ErrorResponse(c, http.StatusForbidden, Forbidden, apperr.MessageOf(err))
	case apperr.KindPolicy:
		ErrorResponse(c, http.StatusUnprocessableEntity, PolicyViolation, apperr.MessageOf(err))
	case apperr.KindConflict:
		ErrorResponse(c, http.StatusConflict, Conflict, apperr.MessageOf(err))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		InternalServerError(c)
	}
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Status: "ok",
		Data:   data,
	})
}
