package handler

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"eventsphere/internal/dto"
)

func (h *Handler) Signup(c *ginext.Context) {
	var req dto.SignupRequest
	if !h.bind(c, &req) {
		return
	}

	o, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessCreatedResponse(c, o)
}

func (h *Handler) Login(c *ginext.Context) {
	var req dto.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	h.setSessionCookie(c, resp.Token, time.Until(resp.ExpiresAt))
	dto.SuccessResponse(c, resp)
}

func (h *Handler) Logout(c *ginext.Context) {
	h.setSessionCookie(c, "", -time.Second)
	dto.SuccessResponse(c, nil)
}

func (h *Handler) Session(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	o, err := h.svc.Session(c.Request.Context(), actor)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, o)
}
