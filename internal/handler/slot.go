package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/service"
)

// SlotHandler exposes the admin-defined scheduling windows.
type SlotHandler struct {
	Slots *service.SlotService
}

func NewSlotHandler(slots *service.SlotService) *SlotHandler {
	if slots == nil {
		panic("nil slot service passed to NewSlotHandler")
	}
	return &SlotHandler{Slots: slots}
}

type createSlotReq struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (h *SlotHandler) List(c echo.Context) error {
	slots, err := h.Slots.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]slotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, newSlotView(s))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SlotHandler) Create(c echo.Context) error {
	var req createSlotReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	slot, err := h.Slots.Create(c.Request().Context(), service.CreateSlotParams{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newSlotView(slot))
}

func (h *SlotHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Slots.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
