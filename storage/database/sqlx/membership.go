package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
)

const membershipColumns = `m.membership_id, m.user_id, m.group_id, m.status, m.role, m.joined_at`

type membershipRepository struct {
	db *sqlx.DB
}

var (
	_ membership.Repository         = (*membershipRepository)(nil)
	_ group.CreatorMembershipWriter = (*membershipRepository)(nil)
)

func NewMembershipRepository(db *sqlx.DB) *membershipRepository {
	return &membershipRepository{db: db}
}

func scanMembership(row *sql.Row) (membership.Membership, error) {
	var m membership.Membership
	err := row.Scan(&m.ID, &m.UserID, &m.GroupID, &m.Status, &m.StoredRole, &m.JoinedAt)
	if err != nil {
		return membership.Membership{}, err
	}
	m.Derive()
	return m, nil
}

func (repo membershipRepository) CreateMembership(ctx context.Context, m membership.Membership, exec ...core.DBExecutor) (membership.Membership, error) {
	err := getExec(repo.db, exec).QueryRowContext(ctx,
		`INSERT INTO memberships (user_id, group_id, status, role, joined_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING membership_id`,
		m.UserID, m.GroupID, m.Status, m.StoredRole, m.JoinedAt,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return membership.Membership{}, membership.ErrAlreadyMember
		}
		return membership.Membership{}, errors.Wrap(err, "creating membership")
	}
	m.Derive()
	return m, nil
}

func (repo membershipRepository) CreateCreatorMembership(ctx context.Context, userID, groupID int, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx,
		`INSERT INTO memberships (user_id, group_id, status, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, groupID, membership.StatusCreator, time.Now().UTC(),
	)
	return errors.Wrap(err, "creating creator membership")
}

func (repo membershipRepository) GetMembershipByID(ctx context.Context, id int) (membership.Membership, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships m WHERE m.membership_id = $1`, id)
	m, err := scanMembership(row)
	if err != nil {
		return membership.Membership{}, trapNoRows(err, membership.ErrNotFound, "finding membership by ID")
	}
	return m, nil
}

func (repo membershipRepository) GetMembership(ctx context.Context, userID, groupID int, exec ...core.DBExecutor) (membership.Membership, error) {
	row := getExec(repo.db, exec).QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships m WHERE m.user_id = $1 AND m.group_id = $2`,
		userID, groupID)
	m, err := scanMembership(row)
	if err != nil {
		return membership.Membership{}, trapNoRows(err, membership.ErrNotFound, "finding membership")
	}
	return m, nil
}

func (repo membershipRepository) CountActiveMembers(ctx context.Context, groupID int, exec ...core.DBExecutor) (int, error) {
	var count int
	err := getExec(repo.db, exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE group_id = $1 AND status IN ('approved', 'creator')`,
		groupID).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "counting active members")
	}
	return count, nil
}

func (repo membershipRepository) QueryGroupMembers(ctx context.Context, groupID int) ([]membership.GroupMember, error) {
	var members []membership.GroupMember
	err := repo.db.SelectContext(ctx, &members,
		`SELECT `+membershipColumns+`,
		        u.name AS member_name, u.email AS member_email,
		        u.university, u.semester, u.profile_picture_url
		 FROM memberships m
		 JOIN users u ON m.user_id = u.user_id
		 WHERE m.group_id = $1
		 ORDER BY CASE
		     WHEN m.status = 'creator' OR m.role = 'owner' THEN 1
		     WHEN m.role = 'admin' THEN 2
		     WHEN m.role = 'moderator' THEN 3
		     ELSE 4
		 END, m.joined_at ASC`, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying group members")
	}
	for i := range members {
		members[i].Derive()
	}
	return members, nil
}

func (repo membershipRepository) QueryUserMemberships(ctx context.Context, userID int) ([]membership.UserGroup, error) {
	var groups []membership.UserGroup
	err := repo.db.SelectContext(ctx, &groups,
		`SELECT `+membershipColumns+`,
		        g.name AS group_name, g.course_name, g.course_code, g.max_capacity,
		        g.group_type, g.meeting_schedule, g.meeting_location,
		        u.name AS creator_name
		 FROM memberships m
		 JOIN groups g ON m.group_id = g.group_id
		 JOIN users u ON g.creator_id = u.user_id
		 WHERE m.user_id = $1
		 ORDER BY m.joined_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user memberships")
	}
	for i := range groups {
		groups[i].Derive()
	}
	return groups, nil
}

func (repo membershipRepository) UpdateMembership(ctx context.Context, id int, status, role null.String) (membership.Membership, error) {
	row := repo.db.QueryRowContext(ctx,
		`UPDATE memberships m
		 SET status = COALESCE($1, status),
		     role = COALESCE($2, role)
		 WHERE membership_id = $3
		 RETURNING `+membershipColumns,
		status, role, id)
	m, err := scanMembership(row)
	if err != nil {
		return membership.Membership{}, trapNoRows(err, membership.ErrNotFound, "updating membership")
	}
	return m, nil
}

func (repo membershipRepository) DeleteMembership(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM memberships WHERE membership_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting membership")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return membership.ErrNotFound
	}
	return nil
}
