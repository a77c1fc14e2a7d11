package handler

import (
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"

	"eventsphere/internal/dto"
)

// Register is public: attendees do not hold accounts.
func (h *Handler) Register(c *ginext.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(c, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessCreatedResponse(c, resp)
}

func (h *Handler) ListParticipants(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListParticipants(c.Request.Context(), actor, c.Param("id"), c.Query("status"))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

func (h *Handler) Decide(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.svc.Decide(c.Request.Context(), actor, c.Param("id"), c.Param("code"), req.Action)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

func (h *Handler) CheckIn(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CheckInRequest
	if !h.bind(c, &req) {
		return
	}

	p, err := h.svc.CheckIn(c.Request.Context(), actor, c.Param("id"), req.TicketCode, req.Notes)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, p)
}

func (h *Handler) RemoveCheckIn(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	p, err := h.svc.RemoveCheckIn(c.Request.Context(), actor, c.Param("id"), c.Param("code"))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, p)
}

func (h *Handler) Certificate(c *ginext.Context) {
	resp, err := h.svc.GetCertificate(c.Request.Context(), c.Param("id"), c.Param("code"))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

// CertificateByPhone looks the attendee up by ?phone= for those without
// their ticket code.
func (h *Handler) CertificateByPhone(c *ginext.Context) {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		dto.FieldBadFormatError(c, "phone")
		return
	}
	resp, err := h.svc.GetCertificateByPhone(c.Request.Context(), c.Param("id"), phone)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

func (h *Handler) TicketQR(c *ginext.Context) {
	png, err := h.svc.TicketQR(c.Request.Context(), c.Param("id"), c.Param("code"))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
