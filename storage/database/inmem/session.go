package inmem

import (
	"context"
	"sort"

	"github.com/Ma114119/Combits-2025/core/session"
)

type sessionRepository struct {
	db *DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// callers hold the store lock
func (db *DB) enrichSessionLocked(s session.Session, withTallies bool) session.Session {
	if creator, ok := db.users[s.CreatorID]; ok {
		s.CreatorName = creator.Name
		s.CreatorEmail = creator.Email
	}
	if withTallies {
		for _, r := range db.rsvps {
			if r.SessionID != s.ID {
				continue
			}
			s.TotalRSVPs++
			if r.Status == session.RSVPAttending {
				s.AttendingCount++
			}
		}
	}
	return s
}

func (repo sessionRepository) CreateSession(_ context.Context, s session.Session) (session.Session, error) {
	defer repo.db.lock()()

	repo.db.sessionSeq++
	s.ID = repo.db.sessionSeq
	repo.db.sessions[s.ID] = s
	return s, nil
}

func (repo sessionRepository) QueryGroupSessions(_ context.Context, groupID int) ([]session.Session, error) {
	defer repo.db.lock()()

	var sessions []session.Session
	for _, s := range repo.db.sessions {
		if s.GroupID == groupID {
			sessions = append(sessions, repo.db.enrichSessionLocked(s, true))
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].SessionDate.Equal(sessions[j].SessionDate) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].SessionDate.Before(sessions[j].SessionDate)
	})
	return sessions, nil
}

func (repo sessionRepository) GetSessionByID(_ context.Context, id int) (session.Session, error) {
	defer repo.db.lock()()

	s, ok := repo.db.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return repo.db.enrichSessionLocked(s, false), nil
}

func (repo sessionRepository) UpdateSession(_ context.Context, id int, us session.UpdateSession) (session.Session, error) {
	defer repo.db.lock()()

	s, ok := repo.db.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	if us.Title.Valid {
		s.Title = us.Title.String
	}
	if us.SessionDate.Valid {
		s.SessionDate = us.SessionDate.Time
	}
	if us.DurationMinutes.Valid {
		s.DurationMinutes = us.DurationMinutes.Int
	}
	if us.Location.Valid {
		s.Location = us.Location
	}
	if us.Agenda.Valid {
		s.Agenda = us.Agenda
	}
	repo.db.sessions[id] = s
	return repo.db.enrichSessionLocked(s, false), nil
}

func (repo sessionRepository) DeleteSession(_ context.Context, id int) error {
	defer repo.db.lock()()

	if _, ok := repo.db.sessions[id]; !ok {
		return session.ErrNotFound
	}
	delete(repo.db.sessions, id)
	for rid, r := range repo.db.rsvps {
		if r.SessionID == id {
			delete(repo.db.rsvps, rid)
		}
	}
	return nil
}

func (repo sessionRepository) UpsertRSVP(_ context.Context, r session.RSVP) (session.RSVP, error) {
	defer repo.db.lock()()

	for id, existing := range repo.db.rsvps {
		if existing.SessionID == r.SessionID && existing.UserID == r.UserID {
			existing.Status = r.Status
			existing.RespondedAt = r.RespondedAt
			repo.db.rsvps[id] = existing
			return existing, nil
		}
	}
	repo.db.rsvpSeq++
	r.ID = repo.db.rsvpSeq
	repo.db.rsvps[r.ID] = r
	return r, nil
}

func (repo sessionRepository) QuerySessionRSVPs(_ context.Context, sessionID int) ([]session.RSVP, error) {
	defer repo.db.lock()()

	var rsvps []session.RSVP
	for _, r := range repo.db.rsvps {
		if r.SessionID != sessionID {
			continue
		}
		if usr, ok := repo.db.users[r.UserID]; ok {
			r.Name = usr.Name
			r.Email = usr.Email
			r.University = usr.University
		}
		rsvps = append(rsvps, r)
	}
	sort.Slice(rsvps, func(i, j int) bool {
		if rsvps[i].RespondedAt.Equal(rsvps[j].RespondedAt) {
			return rsvps[i].ID > rsvps[j].ID
		}
		return rsvps[i].RespondedAt.After(rsvps[j].RespondedAt)
	})
	return rsvps, nil
}

func (repo sessionRepository) GetRSVP(_ context.Context, userID, sessionID int) (session.RSVP, error) {
	defer repo.db.lock()()

	for _, r := range repo.db.rsvps {
		if r.UserID == userID && r.SessionID == sessionID {
			return r, nil
		}
	}
	return session.RSVP{}, session.ErrRSVPNotFound
}

func (repo sessionRepository) GetRSVPByID(_ context.Context, id int) (session.RSVP, error) {
	defer repo.db.lock()()

	r, ok := repo.db.rsvps[id]
	if !ok {
		return session.RSVP{}, session.ErrRSVPNotFound
	}
	return r, nil
}

func (repo sessionRepository) DeleteRSVP(_ context.Context, id int) error {
	defer repo.db.lock()()

	if _, ok := repo.db.rsvps[id]; !ok {
		return session.ErrRSVPNotFound
	}
	delete(repo.db.rsvps, id)
	return nil
}
