package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/session"
)

const (
	sessionColumns = `s.session_id, s.group_id, s.creator_id, s.title, s.session_date,
	s.duration_minutes, s.location, s.agenda, s.created_at`

	rsvpColumns = `r.rsvp_id, r.session_id, r.user_id, r.status, r.responded_at`
)

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo sessionRepository) CreateSession(ctx context.Context, s session.Session) (session.Session, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO sessions (group_id, creator_id, title, session_date, duration_minutes, location, agenda, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING session_id`,
		s.GroupID, s.CreatorID, s.Title, s.SessionDate, s.DurationMinutes, s.Location, s.Agenda, s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "creating session")
	}
	return s, nil
}

func (repo sessionRepository) QueryGroupSessions(ctx context.Context, groupID int) ([]session.Session, error) {
	var sessions []session.Session
	err := repo.db.SelectContext(ctx, &sessions,
		`SELECT `+sessionColumns+`,
		        u.name AS creator_name, u.email AS creator_email,
		        COUNT(r.rsvp_id) AS total_rsvps,
		        COUNT(CASE WHEN r.status = 'attending' THEN 1 END) AS attending_count
		 FROM sessions s
		 JOIN users u ON s.creator_id = u.user_id
		 LEFT JOIN rsvps r ON s.session_id = r.session_id
		 WHERE s.group_id = $1
		 GROUP BY s.session_id, u.name, u.email
		 ORDER BY s.session_date ASC`, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying group sessions")
	}
	return sessions, nil
}

func (repo sessionRepository) GetSessionByID(ctx context.Context, id int) (session.Session, error) {
	var s session.Session
	err := repo.db.GetContext(ctx, &s,
		`SELECT `+sessionColumns+`, u.name AS creator_name, u.email AS creator_email
		 FROM sessions s
		 JOIN users u ON s.creator_id = u.user_id
		 WHERE s.session_id = $1`, id)
	if err != nil {
		return session.Session{}, trapNoRows(err, session.ErrNotFound, "finding session by ID")
	}
	return s, nil
}

func (repo sessionRepository) UpdateSession(ctx context.Context, id int, us session.UpdateSession) (session.Session, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE sessions
		 SET title = COALESCE($1, title),
		     session_date = COALESCE($2, session_date),
		     duration_minutes = COALESCE($3, duration_minutes),
		     location = COALESCE($4, location),
		     agenda = COALESCE($5, agenda)
		 WHERE session_id = $6`,
		us.Title, us.SessionDate, us.DurationMinutes, us.Location, us.Agenda, id,
	)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "updating session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.Session{}, session.ErrNotFound
	}
	return repo.GetSessionByID(ctx, id)
}

func (repo sessionRepository) DeleteSession(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (repo sessionRepository) UpsertRSVP(ctx context.Context, r session.RSVP) (session.RSVP, error) {
	err := repo.db.GetContext(ctx, &r,
		`INSERT INTO rsvps (session_id, user_id, status, responded_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, user_id)
		 DO UPDATE SET status = EXCLUDED.status, responded_at = EXCLUDED.responded_at
		 RETURNING rsvp_id, session_id, user_id, status, responded_at`,
		r.SessionID, r.UserID, r.Status, r.RespondedAt)
	if err != nil {
		return session.RSVP{}, errors.Wrap(err, "upserting rsvp")
	}
	return r, nil
}

func (repo sessionRepository) QuerySessionRSVPs(ctx context.Context, sessionID int) ([]session.RSVP, error) {
	var rsvps []session.RSVP
	err := repo.db.SelectContext(ctx, &rsvps,
		`SELECT `+rsvpColumns+`, u.name, u.email, u.university
		 FROM rsvps r
		 JOIN users u ON r.user_id = u.user_id
		 WHERE r.session_id = $1
		 ORDER BY r.responded_at DESC`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying session rsvps")
	}
	return rsvps, nil
}

func (repo sessionRepository) GetRSVP(ctx context.Context, userID, sessionID int) (session.RSVP, error) {
	var r session.RSVP
	err := repo.db.GetContext(ctx, &r,
		`SELECT `+rsvpColumns+` FROM rsvps r WHERE r.user_id = $1 AND r.session_id = $2`,
		userID, sessionID)
	if err != nil {
		return session.RSVP{}, trapNoRows(err, session.ErrRSVPNotFound, "finding rsvp")
	}
	return r, nil
}

func (repo sessionRepository) GetRSVPByID(ctx context.Context, id int) (session.RSVP, error) {
	var r session.RSVP
	err := repo.db.GetContext(ctx, &r,
		`SELECT `+rsvpColumns+` FROM rsvps r WHERE r.rsvp_id = $1`, id)
	if err != nil {
		return session.RSVP{}, trapNoRows(err, session.ErrRSVPNotFound, "finding rsvp by ID")
	}
	return r, nil
}

func (repo sessionRepository) DeleteRSVP(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM rsvps WHERE rsvp_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting rsvp")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.ErrRSVPNotFound
	}
	return nil
}
