package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core/group"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrRSVPNotFound = errors.New("rsvp not found")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, s Session) (Session, error)
		// QueryGroupSessions lists a group's sessions by date ascending,
		// enriched with creator identity and RSVP tallies.
		QueryGroupSessions(ctx context.Context, groupID int) ([]Session, error)
		GetSessionByID(ctx context.Context, id int) (Session, error)
		UpdateSession(ctx context.Context, id int, us UpdateSession) (Session, error)
		DeleteSession(ctx context.Context, id int) error

		// UpsertRSVP atomically inserts the response or, when one already
		// exists for (user, session), replaces its status and refreshes the
		// responded timestamp.
		UpsertRSVP(ctx context.Context, r RSVP) (RSVP, error)
		QuerySessionRSVPs(ctx context.Context, sessionID int) ([]RSVP, error)
		GetRSVP(ctx context.Context, userID, sessionID int) (RSVP, error)
		GetRSVPByID(ctx context.Context, id int) (RSVP, error)
		DeleteRSVP(ctx context.Context, id int) error
	}

	Service struct {
		repo      Repository
		groupRepo group.Repository
	}
)

func NewService(repo Repository, groupRepo group.Repository) *Service {
	return &Service{repo: repo, groupRepo: groupRepo}
}

func (svc *Service) Create(ctx context.Context, creatorID int, ns NewSession) (Session, error) {
	if _, err := svc.groupRepo.GetGroupByID(ctx, ns.GroupID); err != nil {
		return Session{}, err
	}
	return svc.repo.CreateSession(ctx, Session{
		GroupID:         ns.GroupID,
		CreatorID:       creatorID,
		Title:           ns.Title,
		SessionDate:     ns.SessionDate,
		DurationMinutes: ns.DurationMinutes,
		Location:        null.NewString(ns.Location, ns.Location != ""),
		Agenda:          null.NewString(ns.Agenda, ns.Agenda != ""),
		CreatedAt:       time.Now().UTC(),
	})
}

func (svc *Service) QueryByGroup(ctx context.Context, groupID int) ([]Session, error) {
	return svc.repo.QueryGroupSessions(ctx, groupID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Session, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSession) (Session, error) {
	return svc.repo.UpdateSession(ctx, id, us)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteSession(ctx, id)
}

// Respond records the user's RSVP, replacing any earlier response for the
// same session. At most one row ever exists per (user, session).
func (svc *Service) Respond(ctx context.Context, userID int, nr NewRSVP) (RSVP, error) {
	if _, err := svc.repo.GetSessionByID(ctx, nr.SessionID); err != nil {
		return RSVP{}, err
	}
	return svc.repo.UpsertRSVP(ctx, RSVP{
		SessionID:   nr.SessionID,
		UserID:      userID,
		Status:      nr.Status,
		RespondedAt: time.Now().UTC(),
	})
}

func (svc *Service) QuerySessionRSVPs(ctx context.Context, sessionID int) ([]RSVP, error) {
	return svc.repo.QuerySessionRSVPs(ctx, sessionID)
}

func (svc *Service) GetRSVP(ctx context.Context, userID, sessionID int) (RSVP, error) {
	return svc.repo.GetRSVP(ctx, userID, sessionID)
}

func (svc *Service) GetRSVPByID(ctx context.Context, id int) (RSVP, error) {
	return svc.repo.GetRSVPByID(ctx, id)
}

func (svc *Service) DeleteRSVP(ctx context.Context, id int) error {
	return svc.repo.DeleteRSVP(ctx, id)
}
