package handler

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"eventsphere/internal/dto"
)

func (h *Handler) OpenScan(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.OpenScan(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessCreatedResponse(c, resp)
}

func (h *Handler) ScanState(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.ScanState(c.Request.Context(), actor, c.Param("id"), c.Param("sid"))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

// ScanFrame accepts one camera frame as the multipart field "frame".
func (h *Handler) ScanFrame(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFrameBytes)
	fh, err := c.FormFile("frame")
	if err != nil {
		dto.FieldBadFormatError(c, "frame")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded frame")
		dto.InternalServerError(c)
		return
	}
	defer f.Close()

	resp, err := h.svc.ScanFrame(c.Request.Context(), actor, c.Param("id"), c.Param("sid"), f)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

// ScanCode feeds a code read by a hardware scanner or typed by hand.
func (h *Handler) ScanCode(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.ScanCodeRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.svc.ScanCode(c.Request.Context(), actor, c.Param("id"), c.Param("sid"), req.TicketCode)
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

func (h *Handler) ConfirmScan(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.ConfirmScan(c.Request.Context(), actor, c.Param("id"), c.Param("sid"))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

func (h *Handler) DeclineScan(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.DeclineScan(c.Request.Context(), actor, c.Param("id"), c.Param("sid"))
	if err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, resp)
}

func (h *Handler) CloseScan(c *ginext.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.svc.CloseScan(c.Request.Context(), actor, c.Param("id"), c.Param("sid")); err != nil {
		dto.AppError(c, h.log, err)
		return
	}
	dto.SuccessResponse(c, nil)
}
