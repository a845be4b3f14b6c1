package handler

import (
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/service"
)

// ----- response DTOs -----

type userView struct {
	ID              uint64     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	AccountNumber   string     `json:"accountNumber"`
	AlwaysAvailable bool       `json:"alwaysAvailable"`
	Role            model.Role `json:"role"`
	LoginMethod     string     `json:"loginMethod"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastSignedIn    *time.Time `json:"lastSignedIn,omitempty"`
}

func newUserView(u model.User) userView {
	v := userView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Phone:           u.Phone,
		AccountNumber:   u.AccountNumber,
		AlwaysAvailable: u.AlwaysAvailable,
		Role:            u.Role,
		LoginMethod:     u.LoginMethod,
		CreatedAt:       u.CreatedAt,
	}
	if !u.LastSignedIn.IsZero() {
		t := u.LastSignedIn
		v.LastSignedIn = &t
	}
	return v
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type sessionView struct {
	User    userView  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func newSessionView(s service.Session) sessionView {
	return sessionView{
		User:    newUserView(s.User),
		Access:  tokenPart{Token: s.AccessToken.Token, Expires: s.AccessToken.Exp},
		Refresh: tokenPart{Token: s.RefreshToken.Raw, Expires: s.RefreshToken.Exp},
	}
}

// eventView carries both status axes plus the legacy flags derived from the
// stage.
type eventView struct {
	ID                uint64               `json:"id"`
	OrganizerID       uint64               `json:"organizerId"`
	OrganizerName     string               `json:"organizerName,omitempty"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Keywords          string               `json:"keywords"`
	InstructorName    string               `json:"instructorName"`
	Fee               int64                `json:"fee"`
	Date              string               `json:"date"`
	TimeRange         string               `json:"timeRange"`
	MinParticipants   int                  `json:"minParticipants"`
	MaxParticipants   int                  `json:"maxParticipants"`
	ApprovalStatus    model.ApprovalStatus `json:"approvalStatus"`
	EventStage        model.EventStage     `json:"eventStage"`
	IsProposal        bool                 `json:"isProposal"`
	IsConfirmed       bool                 `json:"isConfirmed"`
	MaterialURL       string               `json:"materialUrl"`
	MaterialContent   string               `json:"materialContent"`
	RegistrationCount *int                 `json:"registrationCount,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

func newEventView(e model.Event) eventView {
	return eventView{
		ID:              e.ID,
		OrganizerID:     e.OrganizerID,
		Title:           e.Title,
		Description:     e.Description,
		Keywords:        e.Keywords,
		InstructorName:  e.InstructorName,
		Fee:             e.Fee,
		Date:            e.Date,
		TimeRange:       e.TimeRange,
		MinParticipants: e.MinParticipants,
		MaxParticipants: e.MaxParticipants,
		ApprovalStatus:  e.Approval,
		EventStage:      e.Stage,
		IsProposal:      e.IsProposal(),
		IsConfirmed:     e.IsConfirmed(),
		MaterialURL:     e.MaterialURL,
		MaterialContent: e.MaterialContent,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func newSummaryView(s model.EventSummary) eventView {
	v := newEventView(s.Event)
	v.OrganizerName = s.OrganizerName
	count := s.RegistrationCount
	v.RegistrationCount = &count
	return v
}

func newSummaryViews(list []model.EventSummary) []eventView {
	out := make([]eventView, 0, len(list))
	for _, s := range list {
		out = append(out, newSummaryView(s))
	}
	return out
}

type linkedUserView struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        model.Role `json:"role"`
	LoginMethod string     `json:"loginMethod"`
}

// participantView omits withheld fields entirely rather than sending them
// empty.
type participantView struct {
	RegistrationID uint64          `json:"registrationId"`
	ParticipantID  uint64          `json:"participantId"`
	RegisteredAt   time.Time       `json:"registeredAt"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	User           *linkedUserView `json:"user,omitempty"`
}

type participantListView struct {
	Scope        service.Scope     `json:"scope"`
	Count        int               `json:"count"`
	Participants []participantView `json:"participants"`
}

func newParticipantListView(l service.ParticipantList) participantListView {
	out := participantListView{Scope: l.Scope, Count: len(l.Records), Participants: make([]participantView, 0, len(l.Records))}
	for _, r := range l.Records {
		v := participantView{
			RegistrationID: r.RegistrationID,
			ParticipantID:  r.ParticipantID,
			RegisteredAt:   r.RegisteredAt,
			Name:           r.Name,
			Email:          r.Email,
			Phone:          r.Phone,
		}
		if r.User != nil {
			v.User = &linkedUserView{ID: r.User.ID, Name: r.User.Name, Email: r.User.Email, Role: r.User.Role, LoginMethod: r.User.LoginMethod}
		}
		out.Participants = append(out.Participants, v)
	}
	return out
}

type slotView struct {
	ID          uint64 `json:"id"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`
}

func newSlotView(s model.AvailableSlot) slotView {
	return slotView{ID: s.ID, Date: s.Date, StartTime: s.StartTime, EndTime: s.EndTime, IsAvailable: s.IsAvailable}
}

type reviewView struct {
	ID           uint64    `json:"id"`
	EventID      uint64    `json:"eventId"`
	ReviewerName string    `json:"reviewerName"`
	Content      string    `json:"content"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newReviewView(r model.Review) reviewView {
	return reviewView{ID: r.ID, EventID: r.EventID, ReviewerName: r.ReviewerName, Content: r.Content, Rating: r.Rating, CreatedAt: r.CreatedAt}
}
