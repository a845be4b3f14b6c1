package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/storage"
)

// EventHandler exposes the event lifecycle, registrations and the admin
// approval queue.
type EventHandler struct {
	Events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	if events == nil {
		panic("nil event service passed to NewEventHandler")
	}
	return &EventHandler{Events: events}
}

// ----- request DTOs -----

type createEventReq struct {
	Title                 string           `json:"title"`
	Description           string           `json:"description"`
	Keywords              string           `json:"keywords"`
	InstructorName        string           `json:"instructorName"`
	Fee                   int64            `json:"fee"`
	Date                  string           `json:"date"`
	TimeRange             string           `json:"timeRange"`
	IsProposal            bool             `json:"isProposal"`
	EventStage            model.EventStage `json:"eventStage"`
	MinParticipants       int              `json:"minParticipants"`
	MaxParticipants       int              `json:"maxParticipants"`
	OrganizerParticipates *bool            `json:"organizerParticipates"`
	MaterialURL           string           `json:"materialUrl"`
}

type updateEventReq struct {
	Title           *string           `json:"title"`
	Description     *string           `json:"description"`
	Keywords        *string           `json:"keywords"`
	InstructorName  *string           `json:"instructorName"`
	Fee             *int64            `json:"fee"`
	Date            *string           `json:"date"`
	TimeRange       *string           `json:"timeRange"`
	EventStage      *model.EventStage `json:"eventStage"`
	MinParticipants *int              `json:"minParticipants"`
	MaxParticipants *int              `json:"maxParticipants"`
	MaterialURL     *string           `json:"materialUrl"`
	MaterialContent *string           `json:"materialContent"`
}

type announceReq struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type registrationResp struct {
	RegistrationID    uint64 `json:"registrationId"`
	ParticipantID     uint64 `json:"participantId"`
	Notified          bool   `json:"notified"`
	EventConfirmed    bool   `json:"eventConfirmed"`
	RegistrationCount int    `json:"registrationCount"`
}

// Create submits a new event for approval.
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	event, err := h.Events.Create(c.Request().Context(), service.CreateEventParams{
		Title:                 req.Title,
		Description:           req.Description,
		Keywords:              req.Keywords,
		InstructorName:        req.InstructorName,
		Fee:                   req.Fee,
		Date:                  req.Date,
		TimeRange:             req.TimeRange,
		IsProposal:            req.IsProposal,
		Stage:                 req.EventStage,
		MinParticipants:       req.MinParticipants,
		MaxParticipants:       req.MaxParticipants,
		OrganizerParticipates: req.OrganizerParticipates,
		MaterialURL:           req.MaterialURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newEventView(event))
}

// List returns approved events, newest first.
func (h *EventHandler) List(c echo.Context) error {
	list, err := h.Events.ListApproved(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSummaryViews(list))
}

// Get returns one event.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	es, err := h.Events.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSummaryView(es))
}

// Update replaces the fields present in the body.
func (h *EventHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req updateEventReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	event, err := h.Events.Update(c.Request().Context(), id, service.EventUpdate{
		Title:           req.Title,
		Description:     req.Description,
		Keywords:        req.Keywords,
		InstructorName:  req.InstructorName,
		Fee:             req.Fee,
		Date:            req.Date,
		TimeRange:       req.TimeRange,
		Stage:           req.EventStage,
		MinParticipants: req.MinParticipants,
		MaxParticipants: req.MaxParticipants,
		MaterialURL:     req.MaterialURL,
		MaterialContent: req.MaterialContent,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newEventView(event))
}

// Delete removes an event together with its registrations and reviews.
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Participants returns the participant list projected for the caller.
func (h *EventHandler) Participants(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.Events.ListParticipants(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newParticipantListView(list))
}

// Register signs the caller up for the event.
func (h *EventHandler) Register(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.Events.Register(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, registrationResp{
		RegistrationID:    res.RegistrationID,
		ParticipantID:     res.Participant.ID,
		Notified:          res.Notified,
		EventConfirmed:    res.Confirmed,
		RegistrationCount: res.Count,
	})
}

// Unregister cancels the caller's registration.
func (h *EventHandler) Unregister(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Events.Unregister(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Mine lists the events the caller organizes.
func (h *EventHandler) Mine(c echo.Context) error {
	list, err := h.Events.ListMine(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSummaryViews(list))
}

// MyRegistrations lists the events the caller is registered for.
func (h *EventHandler) MyRegistrations(c echo.Context) error {
	list, err := h.Events.MyRegistrations(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSummaryViews(list))
}

// Announce mails every registrant.
func (h *EventHandler) Announce(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req announceReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	sent, err := h.Events.Announce(c.Request().Context(), id, service.AnnounceParams{Subject: req.Subject, Content: req.Content})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"sent": sent})
}

// UploadMaterial takes a multipart "file" field, spools it to a temporary
// file and hands it to document storage. An optional "name" field overrides
// the stored display name.
func (h *EventHandler) UploadMaterial(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, invalid("file", "a file is required"))
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = fh.Filename
	}
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return respondError(c, invalid("name", "invalid file name"))
	}

	src, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "material-*")
	if err != nil {
		return respondError(c, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return respondError(c, err)
	}
	if err := tmp.Close(); err != nil {
		return respondError(c, err)
	}

	event, err := h.Events.AttachMaterial(c.Request().Context(), id, tmp.Name(), name)
	if errors.Is(err, storage.ErrDisabled) {
		return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "storage_disabled", Message: "document storage is not configured"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newEventView(event))
}

// ----- admin -----

// AdminList returns every event regardless of approval.
func (h *EventHandler) AdminList(c echo.Context) error {
	list, err := h.Events.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSummaryViews(list))
}

// Approve publishes an event and notifies its organizer.
func (h *EventHandler) Approve(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	event, err := h.Events.Approve(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newEventView(event))
}

// Reject marks an event rejected.
func (h *EventHandler) Reject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	event, err := h.Events.Reject(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newEventView(event))
}

// Registrations returns the full participant list of an event.
func (h *EventHandler) Registrations(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.Events.Registrations(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newParticipantListView(list))
}
