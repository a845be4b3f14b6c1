package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/service"
)

// ReviewHandler exposes event reviews.
type ReviewHandler struct {
	Reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	if reviews == nil {
		panic("nil review service passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: reviews}
}

type createReviewReq struct {
	Content string `json:"content"`
	Rating  *int   `json:"rating"`
}

// List returns the event's reviews with reviewer names masked.
func (h *ReviewHandler) List(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.Reviews.List(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]reviewView, 0, len(list))
	for _, r := range list {
		out = append(out, newReviewView(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Create stores the caller's review. A missing rating defaults to 5.
func (h *ReviewHandler) Create(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req createReviewReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	review, err := h.Reviews.Create(c.Request().Context(), service.CreateReviewParams{
		EventID: id,
		Content: req.Content,
		Rating:  req.Rating,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newReviewView(review))
}

// Pending returns one event waiting for the caller's review, or
// {"event": null}.
func (h *ReviewHandler) Pending(c echo.Context) error {
	event, err := h.Reviews.Pending(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if event == nil {
		return c.JSON(http.StatusOK, echo.Map{"event": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": newEventView(*event)})
}
