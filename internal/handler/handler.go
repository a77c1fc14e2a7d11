package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventsphere/internal/auth"
	"eventsphere/internal/dto"
	"eventsphere/internal/service"
	"eventsphere/pkg/validator"
)

const maxFrameBytes = 8 << 20

type CookieConfig struct {
	Secure bool
	Domain string
}

type Handler struct {
	svc    service.Service
	log    *zerolog.Logger
	cookie CookieConfig
}

func New(svc service.Service, log *zerolog.Logger, cookie CookieConfig) *Handler {
	return &Handler{svc: svc, log: log, cookie: cookie}
}

// bind decodes the JSON body into req and runs struct validation. It writes
// the error response itself and reports whether the handler may go on.
func (h *Handler) bind(c *ginext.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.log.Debug().Err(err).Str("path", c.FullPath()).Msg("failed to parse request body")
		dto.BadResponseError(c, dto.FieldIncorrect, "Invalid JSON format")
		return false
	}
	if verr := validator.Validate(c.Request.Context(), req); verr != nil {
		dto.BadResponseError(c, dto.FieldIncorrect, verr.Error())
		return false
	}
	return true
}

func (h *Handler) actor(c *ginext.Context) (auth.Actor, bool) {
	a, ok := auth.FromContext(c.Request.Context())
	if !ok {
		dto.UnauthenticatedError(c, "login required")
	}
	return a, ok
}

func optionalActor(c *ginext.Context) *auth.Actor {
	if a, ok := auth.FromContext(c.Request.Context()); ok {
		return &a
	}
	return nil
}

func (h *Handler) setSessionCookie(c *ginext.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(ttl/time.Second), "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *Handler) Health(c *ginext.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Status: "error",
			Error:  &dto.Error{Code: dto.ServiceUnavailable, Desc: dto.InternalError},
		})
		return
	}
	dto.SuccessResponse(c, dto.HealthResponse{Database: "ok"})
}
