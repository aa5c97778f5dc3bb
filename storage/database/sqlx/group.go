package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/group"
)

const (
	groupColumns = `g.group_id, g.creator_id, g.name, g.course_name, g.course_code, g.description,
	g.max_capacity, g.group_type, g.meeting_schedule, g.meeting_location, g.created_at`

	// joined in on reads: creator identity and the live occupancy
	groupEnrichment = `u.name AS creator_name, u.email AS creator_email,
	(SELECT COUNT(*) FROM memberships m
	 WHERE m.group_id = g.group_id AND m.status IN ('approved', 'creator')) AS current_members`
)

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	err := getExec(repo.db, exec).QueryRowContext(ctx,
		`INSERT INTO groups (creator_id, name, course_name, course_code, description, max_capacity,
		                     group_type, meeting_schedule, meeting_location, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING group_id`,
		grp.CreatorID, grp.Name, grp.CourseName, grp.CourseCode, grp.Description, grp.MaxCapacity,
		grp.GroupType, grp.MeetingSchedule, grp.MeetingLocation, grp.CreatedAt,
	).Scan(&grp.ID)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "creating group")
	}
	return grp, nil
}

func (repo groupRepository) FilterGroups(ctx context.Context, filter group.QueryFilter) ([]group.Group, error) {
	query := `SELECT ` + groupColumns + `, ` + groupEnrichment + `
	 FROM groups g
	 JOIN users u ON g.creator_id = u.user_id`

	var clauses []string
	var args []interface{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		clauses = append(clauses, fmt.Sprintf("g.group_type = $%d", len(args)))
	}
	if filter.CourseName != "" {
		args = append(args, "%"+filter.CourseName+"%")
		clauses = append(clauses, fmt.Sprintf("g.course_name ILIKE $%d", len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY g.created_at DESC"

	var groups []group.Group
	if err := repo.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering groups")
	}
	return groups, nil
}

func (repo groupRepository) getGroup(ctx context.Context, id int, exec core.DBExecutor) (group.Group, error) {
	var grp group.Group
	err := exec.QueryRowContext(ctx,
		`SELECT `+groupColumns+`, `+groupEnrichment+`
		 FROM groups g
		 JOIN users u ON g.creator_id = u.user_id
		 WHERE g.group_id = $1`, id,
	).Scan(
		&grp.ID, &grp.CreatorID, &grp.Name, &grp.CourseName, &grp.CourseCode, &grp.Description,
		&grp.MaxCapacity, &grp.GroupType, &grp.MeetingSchedule, &grp.MeetingLocation, &grp.CreatedAt,
		&grp.CreatorName, &grp.CreatorEmail, &grp.CurrentMembers,
	)
	if err != nil {
		return group.Group{}, trapNoRows(err, group.ErrNotFound, "finding group by ID")
	}
	return grp, nil
}

func (repo groupRepository) GetGroupByID(ctx context.Context, id int, exec ...core.DBExecutor) (group.Group, error) {
	return repo.getGroup(ctx, id, getExec(repo.db, exec))
}

func (repo groupRepository) GetGroupForUpdate(ctx context.Context, id int, exec core.DBExecutor) (group.Group, error) {
	var grp group.Group
	err := exec.QueryRowContext(ctx,
		`SELECT `+groupColumns+`
		 FROM groups g
		 WHERE g.group_id = $1
		 FOR UPDATE`, id,
	).Scan(
		&grp.ID, &grp.CreatorID, &grp.Name, &grp.CourseName, &grp.CourseCode, &grp.Description,
		&grp.MaxCapacity, &grp.GroupType, &grp.MeetingSchedule, &grp.MeetingLocation, &grp.CreatedAt,
	)
	if err != nil {
		return group.Group{}, trapNoRows(err, group.ErrNotFound, "locking group")
	}
	return grp, nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, id int, ug group.UpdateGroup) (group.Group, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE groups
		 SET name = COALESCE($1, name),
		     course_name = COALESCE($2, course_name),
		     course_code = COALESCE($3, course_code),
		     description = COALESCE($4, description),
		     max_capacity = COALESCE($5, max_capacity),
		     group_type = COALESCE($6, group_type),
		     meeting_schedule = COALESCE($7, meeting_schedule),
		     meeting_location = COALESCE($8, meeting_location)
		 WHERE group_id = $9`,
		ug.Name, ug.CourseName, ug.CourseCode, ug.Description, ug.MaxCapacity,
		ug.GroupType, ug.MeetingSchedule, ug.MeetingLocation, id,
	)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return repo.GetGroupByID(ctx, id)
}

func (repo groupRepository) DeleteGroup(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM groups WHERE group_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.ErrNotFound
	}
	return nil
}
