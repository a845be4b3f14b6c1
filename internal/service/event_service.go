package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/notification"
	"github.com/iliyamo/spark-meetup/internal/repository"
	"github.com/iliyamo/spark-meetup/internal/storage"
)

// EventStore persists events and their derived listings.
type EventStore interface {
	Create(ctx context.Context, e model.Event) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	GetSummary(ctx context.Context, id uint64) (model.EventSummary, error)
	ListSummaries(ctx context.Context, f repository.EventFilter) ([]model.EventSummary, error)
	ListRegisteredBy(ctx context.Context, userID uint64) ([]model.EventSummary, error)
	Update(ctx context.Context, e model.Event, now time.Time) error
	SetApproval(ctx context.Context, id uint64, status model.ApprovalStatus, now time.Time) error
	ConfirmIfNotConfirmed(ctx context.Context, id uint64, now time.Time) (bool, error)
	SetMaterial(ctx context.Context, id uint64, url string, now time.Time) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error
}

// RegistrationStore persists registrations.
type RegistrationStore interface {
	Create(ctx context.Context, eventID, participantID uint64, now time.Time) (uint64, error)
	ExistsForUser(ctx context.Context, eventID, userID uint64) (bool, error)
	DeleteForUser(ctx context.Context, eventID, userID uint64) error
	DeleteByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) error
	CountByEvent(ctx context.Context, eventID uint64) (int, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]model.RegistrationDetail, error)
}

// ReviewCleaner removes an event's reviews inside a transaction.
type ReviewCleaner interface {
	DeleteByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) error
}

// UserReader loads users by id.
type UserReader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// DocumentStore uploads event material.
type DocumentStore interface {
	StoreDocument(ctx context.Context, localPath, displayName, folderKey string) (storage.Document, error)
}

// EventDeps bundles the collaborators of an EventService.
type EventDeps struct {
	Events        EventStore
	Registrations RegistrationStore
	Reviews       ReviewCleaner
	Users         UserReader
	Participants  *ParticipantService
	Slots         SlotStore
	Documents     DocumentStore
	WithTx        TxFunc
	Dispatcher    notification.Dispatcher
	FrontendURL   string
}

// EventService runs the event lifecycle: creation, approval, registration
// and automatic confirmation.
type EventService struct {
	deps   EventDeps
	now    func() time.Time
	logger *slog.Logger
}

// NewEventService constructs an EventService.
func NewEventService(deps EventDeps, now func() time.Time, logger *slog.Logger) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{deps: deps, now: now, logger: defaultLogger(logger)}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEventParams is the input of Create. A nil OrganizerParticipates
// means true.
type CreateEventParams struct {
	Title                 string
	Description           string
	Keywords              string
	InstructorName        string
	Fee                   int64
	Date                  string
	TimeRange             string
	IsProposal            bool
	Stage                 model.EventStage
	MinParticipants       int
	MaxParticipants       int
	OrganizerParticipates *bool
	MaterialURL           string
}

func (p CreateEventParams) organizerParticipates() bool {
	return p.OrganizerParticipates == nil || *p.OrganizerParticipates
}

// Create records a new pending event for the caller.
func (s *EventService) Create(ctx context.Context, params CreateEventParams) (event model.Event, err error) {
	logger := s.loggerWith(ctx, "Create", "title", params.Title)
	defer func() {
		if err == nil {
			logger = logger.With("event_id", event.ID, "stage", string(event.Stage))
		}
		logOutcome(ctx, logger, err, "event creation")
	}()

	var p Principal
	if p, err = requireUser(ctx); err != nil {
		return
	}
	var organizer model.User
	if organizer, err = s.loadUser(ctx, p.UserID); err != nil {
		return
	}

	stage := params.Stage
	if stage == "" {
		stage = model.StageScheduled
		if params.IsProposal {
			stage = model.StageProposal
		}
	}
	event = model.Event{
		OrganizerID:     p.UserID,
		Title:           strings.TrimSpace(params.Title),
		Description:     strings.TrimSpace(params.Description),
		Keywords:        strings.TrimSpace(params.Keywords),
		InstructorName:  strings.TrimSpace(params.InstructorName),
		Fee:             params.Fee,
		Date:            strings.TrimSpace(params.Date),
		TimeRange:       strings.TrimSpace(params.TimeRange),
		MinParticipants: params.MinParticipants,
		MaxParticipants: params.MaxParticipants,
		Stage:           stage,
		Approval:        model.ApprovalPending,
		MaterialURL:     strings.TrimSpace(params.MaterialURL),
	}
	if err = validateEvent(event); err != nil {
		return
	}
	if event.Fee > 0 && !organizer.HasPaymentSetup() {
		err = ErrPaymentSetupRequired
		return
	}
	if err = s.checkSlot(ctx, p, organizer, event); err != nil {
		return
	}

	now := s.now()
	event.CreatedAt, event.UpdatedAt = now, now
	var id uint64
	if id, err = s.deps.Events.Create(ctx, event); err != nil {
		err = fmt.Errorf("create event: %w", err)
		return
	}
	event.ID = id

	if params.organizerParticipates() {
		// The event row is committed; a failed self-registration is logged
		// and the organizer can register through the normal path.
		if rerr := s.registerOrganizer(ctx, organizer, id, now); rerr != nil {
			logger.ErrorContext(ctx, "organizer self-registration failed", "error", rerr, "event_id", id)
		}
	}
	return
}

func (s *EventService) registerOrganizer(ctx context.Context, organizer model.User, eventID uint64, now time.Time) error {
	uid := organizer.ID
	participant, err := s.deps.Participants.Upsert(ctx, UpsertParticipantParams{
		Name:   organizer.Name,
		Email:  organizer.Email,
		Phone:  organizer.Phone,
		UserID: &uid,
	})
	if err != nil {
		return err
	}
	if _, err := s.deps.Registrations.Create(ctx, eventID, participant.ID, now); err != nil {
		return fmt.Errorf("create organizer registration: %w", err)
	}
	return nil
}

// checkSlot enforces that non-admin organizers without the always-available
// flag schedule inside an admin-defined slot.
func (s *EventService) checkSlot(ctx context.Context, p Principal, organizer model.User, e model.Event) error {
	if p.IsAdmin() || organizer.AlwaysAvailable || e.Stage == model.StageProposal || s.deps.Slots == nil {
		return nil
	}
	ok, err := covered(ctx, s.deps.Slots, e.Date, e.TimeRange)
	if err != nil {
		return err
	}
	if !ok {
		return fieldError("timeRange", "no available slot covers this date and time")
	}
	return nil
}

func validateEvent(e model.Event) error {
	v := &ValidationError{}
	if e.Title == "" {
		v.add("title", "title is required")
	}
	if !e.Stage.Valid() {
		v.add("eventStage", "eventStage must be proposal, scheduled or confirmed")
	}
	if e.Stage != model.StageProposal {
		if e.Date == "" {
			v.add("date", "date is required unless the event is a proposal")
		}
		if e.TimeRange == "" {
			v.add("timeRange", "timeRange is required unless the event is a proposal")
		}
	}
	if e.Date != "" && !model.ValidDate(e.Date) {
		v.add("date", "date must be YYYY-MM-DD")
	}
	if e.Fee < 0 {
		v.add("fee", "fee cannot be negative")
	}
	if e.MinParticipants < 0 {
		v.add("minParticipants", "minParticipants cannot be negative")
	}
	if e.MaxParticipants < 0 {
		v.add("maxParticipants", "maxParticipants cannot be negative")
	}
	return v.err()
}

// Approve makes an event public and tells the organizer. Admin only.
func (s *EventService) Approve(ctx context.Context, id uint64) (model.Event, error) {
	return s.setApproval(ctx, id, model.ApprovalApproved)
}

// Reject records a rejection. No notification is sent.
func (s *EventService) Reject(ctx context.Context, id uint64) (model.Event, error) {
	return s.setApproval(ctx, id, model.ApprovalRejected)
}

func (s *EventService) setApproval(ctx context.Context, id uint64, status model.ApprovalStatus) (event model.Event, err error) {
	logger := s.loggerWith(ctx, "SetApproval", "event_id", id, "status", string(status))
	defer func() { logOutcome(ctx, logger, err, "approval change") }()

	if _, err = requireRole(ctx, model.RoleAdmin); err != nil {
		return
	}
	if event, err = s.loadEvent(ctx, id); err != nil {
		return
	}
	now := s.now()
	if err = s.deps.Events.SetApproval(ctx, id, status, now); err != nil {
		err = fmt.Errorf("set approval: %w", err)
		return
	}
	event.Approval = status
	event.UpdatedAt = now

	if status != model.ApprovalApproved {
		return
	}
	organizer, uerr := s.deps.Users.GetByID(ctx, event.OrganizerID)
	if uerr != nil {
		logger.WarnContext(ctx, "organizer not loaded for approval notice", "error", uerr)
		return
	}
	notify(ctx, s.deps.Dispatcher, logger, notification.Message{
		To:   organizer.Email,
		Kind: notification.KindEventApproved,
		Data: eventData(organizer.Name, event),
	})
	return
}

// EventUpdate lists the fields to replace. Nil leaves a field unchanged.
type EventUpdate struct {
	Title           *string
	Description     *string
	Keywords        *string
	InstructorName  *string
	Fee             *int64
	Date            *string
	TimeRange       *string
	Stage           *model.EventStage
	MinParticipants *int
	MaxParticipants *int
	MaterialURL     *string
	MaterialContent *string
}

// Update applies a partial update. Organizer or admin only.
func (s *EventService) Update(ctx context.Context, id uint64, upd EventUpdate) (event model.Event, err error) {
	logger := s.loggerWith(ctx, "Update", "event_id", id)
	defer func() { logOutcome(ctx, logger, err, "event update") }()

	var current model.Event
	if current, err = s.loadEvent(ctx, id); err != nil {
		return
	}
	if _, err = requireOwnerOrAdmin(ctx, current); err != nil {
		return
	}

	event = current
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&event.Title, upd.Title)
	setString(&event.Description, upd.Description)
	setString(&event.Keywords, upd.Keywords)
	setString(&event.InstructorName, upd.InstructorName)
	setString(&event.Date, upd.Date)
	setString(&event.TimeRange, upd.TimeRange)
	setString(&event.MaterialURL, upd.MaterialURL)
	if upd.MaterialContent != nil {
		event.MaterialContent = *upd.MaterialContent
	}
	if upd.Fee != nil {
		event.Fee = *upd.Fee
	}
	if upd.Stage != nil {
		event.Stage = *upd.Stage
	}
	if upd.MinParticipants != nil {
		event.MinParticipants = *upd.MinParticipants
	}
	if upd.MaxParticipants != nil {
		event.MaxParticipants = *upd.MaxParticipants
	}

	if current.IsConfirmed() && event.Stage != model.StageConfirmed {
		err = fieldError("eventStage", "a confirmed event cannot leave the confirmed stage")
		return
	}
	if err = validateEvent(event); err != nil {
		return
	}
	if event.Fee > 0 && event.Fee != current.Fee {
		var organizer model.User
		if organizer, err = s.loadUser(ctx, current.OrganizerID); err != nil {
			return
		}
		if !organizer.HasPaymentSetup() {
			err = ErrPaymentSetupRequired
			return
		}
	}

	now := s.now()
	if err = s.deps.Events.Update(ctx, event, now); err != nil {
		err = fmt.Errorf("update event: %w", err)
		return
	}
	// A registration may have confirmed the event since it was loaded.
	event, err = s.loadEvent(ctx, id)
	return
}

// Delete removes an event with its registrations and reviews. Organizer or
// admin only.
func (s *EventService) Delete(ctx context.Context, id uint64) (err error) {
	logger := s.loggerWith(ctx, "Delete", "event_id", id)
	defer func() { logOutcome(ctx, logger, err, "event deletion") }()

	var event model.Event
	if event, err = s.loadEvent(ctx, id); err != nil {
		return
	}
	if _, err = requireOwnerOrAdmin(ctx, event); err != nil {
		return
	}
	err = s.deps.WithTx(ctx, func(tx *sql.Tx) error {
		if s.deps.Reviews != nil {
			if err := s.deps.Reviews.DeleteByEventTx(ctx, tx, id); err != nil {
				return fmt.Errorf("delete reviews: %w", err)
			}
		}
		if err := s.deps.Registrations.DeleteByEventTx(ctx, tx, id); err != nil {
			return fmt.Errorf("delete registrations: %w", err)
		}
		if err := s.deps.Events.DeleteTx(ctx, tx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
	return
}

// ListApproved returns the public listing, newest first.
func (s *EventService) ListApproved(ctx context.Context) (_ []model.EventSummary, err error) {
	defer func() { logFailure(ctx, s.logger, "EventService", "ListApproved", err) }()

	out, err := s.deps.Events.ListSummaries(ctx, repository.EventFilter{Approval: model.ApprovalApproved})
	if err != nil {
		return nil, fmt.Errorf("list approved events: %w", err)
	}
	return out, nil
}

// ListAll returns every event regardless of approval. Admin only.
func (s *EventService) ListAll(ctx context.Context) (_ []model.EventSummary, err error) {
	defer func() { logFailure(ctx, s.logger, "EventService", "ListAll", err) }()

	if _, err := requireRole(ctx, model.RoleAdmin); err != nil {
		return nil, err
	}
	out, err := s.deps.Events.ListSummaries(ctx, repository.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// ListMine returns the caller's own events.
func (s *EventService) ListMine(ctx context.Context) (_ []model.EventSummary, err error) {
	defer func() { logFailure(ctx, s.logger, "EventService", "ListMine", err) }()

	p, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.deps.Events.ListSummaries(ctx, repository.EventFilter{OrganizerID: p.UserID})
	if err != nil {
		return nil, fmt.Errorf("list own events: %w", err)
	}
	return out, nil
}

// Get returns one event. Events that are not approved are visible only to
// their organizer and admins.
func (s *EventService) Get(ctx context.Context, id uint64) (_ model.EventSummary, err error) {
	defer func() { logFailure(ctx, s.logger, "EventService", "Get", err) }()

	es, err := s.deps.Events.GetSummary(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.EventSummary{}, ErrNotFound
	}
	if err != nil {
		return model.EventSummary{}, fmt.Errorf("load event: %w", err)
	}
	if !canSee(ctx, es.Event) {
		return model.EventSummary{}, ErrNotFound
	}
	return es, nil
}

func canSee(ctx context.Context, e model.Event) bool {
	if e.IsPublic() {
		return true
	}
	p, ok := PrincipalFrom(ctx)
	return ok && (p.IsAdmin() || p.UserID == e.OrganizerID)
}

// ListParticipants returns the registrants of an event projected for the
// caller: admins see everything, the organizer sees everything but phone
// numbers, anyone else sees masked names only.
func (s *EventService) ListParticipants(ctx context.Context, eventID uint64) (_ ParticipantList, err error) {
	defer func() { logFailure(ctx, s.logger, "EventService", "ListParticipants", err) }()

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return ParticipantList{}, err
	}
	if !canSee(ctx, event) {
		return ParticipantList{}, ErrNotFound
	}
	rows, err := s.deps.Registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return ParticipantList{}, fmt.Errorf("list registrations: %w", err)
	}
	p, authenticated := PrincipalFrom(ctx)
	scope := scopeFor(p, authenticated, event)
	return ParticipantList{Scope: scope, Records: project(scope, rows)}, nil
}

// Registrations is the admin view of an event's participant list.
func (s *EventService) Registrations(ctx context.Context, eventID uint64) (ParticipantList, error) {
	if _, err := requireRole(ctx, model.RoleAdmin); err != nil {
		return ParticipantList{}, err
	}
	return s.ListParticipants(ctx, eventID)
}

// RegistrationResult reports the outcome of Register.
type RegistrationResult struct {
	RegistrationID uint64
	Participant    model.Participant
	Notified       bool
	Confirmed      bool
	Count          int
}

// Register signs the caller up for an event. When the registration brings
// the count to minParticipants the event is confirmed and every registrant
// and the organizer are told, once.
func (s *EventService) Register(ctx context.Context, eventID uint64) (result RegistrationResult, err error) {
	logger := s.loggerWith(ctx, "Register", "event_id", eventID)
	defer func() {
		if err == nil {
			logger = logger.With("registration_id", result.RegistrationID, "confirmed", result.Confirmed)
		}
		logOutcome(ctx, logger, err, "registration")
	}()

	var p Principal
	if p, err = requireUser(ctx); err != nil {
		return
	}
	var event model.Event
	if event, err = s.loadEvent(ctx, eventID); err != nil {
		return
	}
	if !canSee(ctx, event) {
		err = ErrNotFound
		return
	}

	var exists bool
	if exists, err = s.deps.Registrations.ExistsForUser(ctx, eventID, p.UserID); err != nil {
		err = fmt.Errorf("check registration: %w", err)
		return
	}
	if exists {
		err = ErrDuplicateRegistration
		return
	}
	var user model.User
	if user, err = s.loadUser(ctx, p.UserID); err != nil {
		return
	}
	if !user.ProfileComplete() {
		err = ErrIncompleteProfile
		return
	}

	uid := user.ID
	if result.Participant, err = s.deps.Participants.Upsert(ctx, UpsertParticipantParams{
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.Phone,
		UserID: &uid,
	}); err != nil {
		return
	}
	now := s.now()
	result.RegistrationID, err = s.deps.Registrations.Create(ctx, eventID, result.Participant.ID, now)
	if errors.Is(err, repository.ErrDuplicate) {
		err = ErrDuplicateRegistration
		return
	}
	if err != nil {
		err = fmt.Errorf("create registration: %w", err)
		return
	}

	result.Notified = notify(ctx, s.deps.Dispatcher, logger, notification.Message{
		To:   result.Participant.Email,
		Kind: notification.KindRegistrationConfirmed,
		Data: eventData(result.Participant.Name, event),
	})

	if event.MinParticipants > 0 && !event.IsConfirmed() {
		result.Confirmed, result.Count = s.confirmIfReached(ctx, logger, event, now)
	}
	return
}

// confirmIfReached promotes the event once the registration count reaches
// its minimum. The conditional update lets exactly one caller win, and only
// that caller sends the confirmation notices. The registration that triggered
// the check is already committed, so errors here are logged, not returned.
func (s *EventService) confirmIfReached(ctx context.Context, logger *slog.Logger, event model.Event, now time.Time) (bool, int) {
	count, err := s.deps.Registrations.CountByEvent(ctx, event.ID)
	if err != nil {
		logger.ErrorContext(ctx, "registration count failed", "error", err)
		return false, 0
	}
	if count < event.MinParticipants {
		return false, count
	}
	won, err := s.deps.Events.ConfirmIfNotConfirmed(ctx, event.ID, now)
	if err != nil {
		logger.ErrorContext(ctx, "event confirmation failed", "error", err)
		return false, count
	}
	if !won {
		return false, count
	}
	event.Stage = model.StageConfirmed
	logger.InfoContext(ctx, "event confirmed", "participant_count", count)

	rows, err := s.deps.Registrations.ListByEvent(ctx, event.ID)
	if err != nil {
		logger.ErrorContext(ctx, "registrants not loaded for confirmation notices", "error", err)
		rows = nil
	} else {
		// The list is newer than the count.
		count = len(rows)
	}
	sent := make(map[string]bool, len(rows)+1)
	send := func(email, name string) {
		if email == "" || sent[email] {
			return
		}
		sent[email] = true
		data := eventData(name, event)
		data.ParticipantCount = count
		notify(ctx, s.deps.Dispatcher, logger, notification.Message{
			To:   email,
			Kind: notification.KindEventConfirmed,
			Data: data,
		})
	}
	for _, r := range rows {
		send(r.Participant.Email, r.Participant.Name)
	}
	if organizer, err := s.deps.Users.GetByID(ctx, event.OrganizerID); err == nil {
		send(organizer.Email, organizer.Name)
	} else {
		logger.WarnContext(ctx, "organizer not loaded for confirmation notice", "error", err)
	}
	return true, count
}

// Unregister removes the caller's registration. Confirmation is never
// reverted.
func (s *EventService) Unregister(ctx context.Context, eventID uint64) (err error) {
	logger := s.loggerWith(ctx, "Unregister", "event_id", eventID)
	defer func() { logOutcome(ctx, logger, err, "unregistration") }()

	var p Principal
	if p, err = requireUser(ctx); err != nil {
		return
	}
	err = s.deps.Registrations.DeleteForUser(ctx, eventID, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrNotFound
		return
	}
	if err != nil {
		err = fmt.Errorf("delete registration: %w", err)
	}
	return
}

// MyRegistrations returns the events the caller is registered for.
func (s *EventService) MyRegistrations(ctx context.Context) (_ []model.EventSummary, err error) {
	defer func() { logFailure(ctx, s.logger, "EventService", "MyRegistrations", err) }()

	p, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.deps.Events.ListRegisteredBy(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return out, nil
}

// AttachMaterial uploads a file for the event and stores its public URL.
// Organizer or admin only.
func (s *EventService) AttachMaterial(ctx context.Context, eventID uint64, localPath, displayName string) (event model.Event, err error) {
	logger := s.loggerWith(ctx, "AttachMaterial", "event_id", eventID, "file", displayName)
	defer func() { logOutcome(ctx, logger, err, "material upload") }()

	if event, err = s.loadEvent(ctx, eventID); err != nil {
		return
	}
	if _, err = requireOwnerOrAdmin(ctx, event); err != nil {
		return
	}
	if s.deps.Documents == nil {
		err = storage.ErrDisabled
		return
	}
	folder := storage.FolderKey(event.Date, event.Title, event.InstructorName)
	var doc storage.Document
	if doc, err = s.deps.Documents.StoreDocument(ctx, localPath, displayName, folder); err != nil {
		err = fmt.Errorf("store document: %w", err)
		return
	}
	now := s.now()
	if err = s.deps.Events.SetMaterial(ctx, eventID, doc.PublicURL, now); err != nil {
		err = fmt.Errorf("save material url: %w", err)
		return
	}
	event.MaterialURL = doc.PublicURL
	event.UpdatedAt = now
	return
}

// AnnounceParams is the input of Announce.
type AnnounceParams struct {
	Subject string
	Content string
}

// Announce mails a message to every registrant. It returns how many notices
// the dispatcher accepted. Organizer or admin only.
func (s *EventService) Announce(ctx context.Context, eventID uint64, params AnnounceParams) (sent int, err error) {
	logger := s.loggerWith(ctx, "Announce", "event_id", eventID)
	defer func() {
		logger = logger.With("sent", sent)
		logOutcome(ctx, logger, err, "announcement")
	}()

	var event model.Event
	if event, err = s.loadEvent(ctx, eventID); err != nil {
		return
	}
	if _, err = requireOwnerOrAdmin(ctx, event); err != nil {
		return
	}
	params.Subject = strings.TrimSpace(params.Subject)
	params.Content = strings.TrimSpace(params.Content)
	v := &ValidationError{}
	if params.Subject == "" {
		v.add("subject", "subject is required")
	}
	if params.Content == "" {
		v.add("content", "content is required")
	}
	if err = v.err(); err != nil {
		return
	}

	var rows []model.RegistrationDetail
	if rows, err = s.deps.Registrations.ListByEvent(ctx, eventID); err != nil {
		err = fmt.Errorf("list registrations: %w", err)
		return
	}
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		email := r.Participant.Email
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		data := eventData(r.Participant.Name, event)
		data.Subject = params.Subject
		data.Content = params.Content
		data.EventURL = s.eventURL(event.ID)
		if notify(ctx, s.deps.Dispatcher, logger, notification.Message{
			To:   email,
			Kind: notification.KindAnnouncement,
			Data: data,
		}) {
			sent++
		}
	}
	return
}

func (s *EventService) eventURL(id uint64) string {
	base := strings.TrimRight(s.deps.FrontendURL, "/")
	if base == "" {
		return ""
	}
	return base + "/events/" + strconv.FormatUint(id, 10)
}

func (s *EventService) loadEvent(ctx context.Context, id uint64) (model.Event, error) {
	e, err := s.deps.Events.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("load event: %w", err)
	}
	return e, nil
}

func (s *EventService) loadUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.deps.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUnauthorized
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
