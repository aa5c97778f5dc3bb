package group

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
)

var ErrNotFound = errors.New("group not found")

type (
	Repository interface {
		CreateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		// FilterGroups applies AND operation on available QueryFilter fields,
		// joining in creator identity and the live active-member count.
		FilterGroups(ctx context.Context, filter QueryFilter) ([]Group, error)
		GetGroupByID(ctx context.Context, id int, exec ...core.DBExecutor) (Group, error)
		// GetGroupForUpdate locks the group row for the duration of the
		// surrounding transaction.
		GetGroupForUpdate(ctx context.Context, id int, exec core.DBExecutor) (Group, error)
		UpdateGroup(ctx context.Context, id int, ug UpdateGroup) (Group, error)
		DeleteGroup(ctx context.Context, id int) error
	}

	// CreatorMembershipWriter records the group creator's own membership.
	// Implemented by the membership repository; declared here so group
	// creation does not depend on the membership package.
	CreatorMembershipWriter interface {
		CreateCreatorMembership(ctx context.Context, userID, groupID int, exec ...core.DBExecutor) error
	}

	Service struct {
		db         core.DB
		repo       Repository
		memberRepo CreatorMembershipWriter
	}
)

func NewService(db core.DB, repo Repository, memberRepo CreatorMembershipWriter) *Service {
	return &Service{db: db, repo: repo, memberRepo: memberRepo}
}

// Create inserts the group and its creator membership in one transaction:
// either both rows exist afterwards or neither does.
func (svc *Service) Create(ctx context.Context, creatorID int, ng NewGroup) (Group, error) {
	grp := Group{
		CreatorID:       creatorID,
		Name:            ng.Name,
		CourseName:      ng.CourseName,
		CourseCode:      null.NewString(ng.CourseCode, ng.CourseCode != ""),
		Description:     null.NewString(ng.Description, ng.Description != ""),
		MaxCapacity:     ng.MaxCapacity,
		GroupType:       ng.GroupType,
		MeetingSchedule: null.NewString(ng.MeetingSchedule, ng.MeetingSchedule != ""),
		MeetingLocation: null.NewString(ng.MeetingLocation, ng.MeetingLocation != ""),
		CreatedAt:       time.Now().UTC(),
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Group{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	grp, err = svc.repo.CreateGroup(ctx, grp, tx)
	if err != nil {
		return Group{}, errors.Wrap(err, "creating group")
	}
	if err = svc.memberRepo.CreateCreatorMembership(ctx, creatorID, grp.ID, tx); err != nil {
		return Group{}, errors.Wrap(err, "creating creator membership")
	}
	if err = tx.Commit(); err != nil {
		return Group{}, errors.Wrap(err, "committing transaction")
	}

	grp.CurrentMembers = 1
	return grp, nil
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Group, error) {
	return svc.repo.FilterGroups(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ug UpdateGroup) (Group, error) {
	return svc.repo.UpdateGroup(ctx, id, ug)
}

// Delete removes the group row; memberships, sessions, files and messages
// go with it via ON DELETE CASCADE.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteGroup(ctx, id)
}
