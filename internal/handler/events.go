package handler

import (
	"github.com/wb-go/wbf/ginext"

	"eventsphere/internal/dto"
	"eventsphere/internal/model"
)

func (h *Handler) ListEvents(c *ginext.Context) {
	var q dto.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadResponseError(c, dto.FieldIncorrect, "Invalid query parameters")
		return
	}

	events, err := h.svc.ListEvents(c.Request.Context(), q, optionalActor(c))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, events)
}

func (h *Handler) CreateEvent(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CreateEventRequest
	if !h.bind(c, &req) {
		return
	}

	e, err := h.svc.CreateEvent(c.Request.Context(), actor, req)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessCreatedResponse(c, e)
}

func (h *Handler) GetEvent(c *ginext.Context) {
	e, err := h.svc.GetEvent(c.Request.Context(), c.Param("id"), optionalActor(c))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, e)
}

func (h *Handler) UpdateEvent(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !h.bind(c, &req) {
		return
	}

	e, err := h.svc.UpdateEvent(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, e)
}

func (h *Handler) PublishEvent(c *ginext.Context) {
	h.setStatus(c, model.EventPublished)
}

func (h *Handler) SetEventStatus(c *ginext.Context) {
	var req dto.EventStatusRequest
	if !h.bind(c, &req) {
		return
	}
	h.setStatus(c, req.Status)
}

func (h *Handler) setStatus(c *ginext.Context, status model.EventStatus) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	e, err := h.svc.SetEventStatus(c.Request.Context(), actor, c.Param("id"), status)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, e)
}

func (h *Handler) DeleteEvent(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteEvent(c.Request.Context(), actor, c.Param("id")); err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, nil)
}
