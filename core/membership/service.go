package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/notification"
)

var (
	ErrNotFound         = errors.New("membership not found")
	ErrGroupFull        = errors.New("group is full")
	ErrAlreadyMember    = errors.New("already a member of this group")
	ErrCreatorImmutable = errors.New("the creator membership cannot be changed")
)

type (
	Repository interface {
		CreateMembership(ctx context.Context, m Membership, exec ...core.DBExecutor) (Membership, error)
		GetMembershipByID(ctx context.Context, id int) (Membership, error)
		GetMembership(ctx context.Context, userID, groupID int, exec ...core.DBExecutor) (Membership, error)
		// CountActiveMembers returns the group occupancy: memberships with
		// status approved or creator.
		CountActiveMembers(ctx context.Context, groupID int, exec ...core.DBExecutor) (int, error)
		// QueryGroupMembers lists a group's members ordered by derived role
		// priority, ties broken by join time ascending.
		QueryGroupMembers(ctx context.Context, groupID int) ([]GroupMember, error)
		QueryUserMemberships(ctx context.Context, userID int) ([]UserGroup, error)
		UpdateMembership(ctx context.Context, id int, status, role null.String) (Membership, error)
		DeleteMembership(ctx context.Context, id int) error
	}

	Service struct {
		db        core.DB
		repo      Repository
		groupRepo group.Repository
		notifSvc  *notification.Service
	}
)

func NewService(db core.DB, repo Repository, groupRepo group.Repository, notifSvc *notification.Service) *Service {
	return &Service{db: db, repo: repo, groupRepo: groupRepo, notifSvc: notifSvc}
}

// Join files a membership for the given user: auto-approved on public groups,
// pending owner approval on private ones. The whole check-then-insert sequence
// runs in one transaction holding a lock on the group row, so concurrent joins
// near the capacity boundary serialize instead of overshooting.
func (svc *Service) Join(ctx context.Context, userID, groupID int) (Membership, error) {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Membership{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	grp, err := svc.groupRepo.GetGroupForUpdate(ctx, groupID, tx)
	if err != nil {
		return Membership{}, err
	}

	count, err := svc.repo.CountActiveMembers(ctx, groupID, tx)
	if err != nil {
		return Membership{}, errors.Wrap(err, "counting active members")
	}
	if count >= grp.MaxCapacity {
		return Membership{}, ErrGroupFull
	}

	// any existing membership blocks a new request, pending ones included
	if _, err = svc.repo.GetMembership(ctx, userID, groupID, tx); err == nil {
		return Membership{}, ErrAlreadyMember
	} else if errors.Cause(err) != ErrNotFound {
		return Membership{}, errors.Wrap(err, "checking existing membership")
	}

	status := StatusApproved
	if grp.GroupType == group.TypePrivate {
		status = StatusPending
	}

	m, err := svc.repo.CreateMembership(ctx, Membership{
		UserID:   userID,
		GroupID:  groupID,
		Status:   status,
		JoinedAt: time.Now().UTC(),
	}, tx)
	if err != nil {
		return Membership{}, errors.Wrap(err, "creating membership")
	}
	if err = tx.Commit(); err != nil {
		return Membership{}, errors.Wrap(err, "committing transaction")
	}

	if m.Status == StatusPending {
		svc.notify(ctx, grp.CreatorID, "join_request", "New join request",
			fmt.Sprintf("Someone asked to join %q.", grp.Name), fmt.Sprintf("/groups/%d", grp.ID))
	}
	return m, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Membership, error) {
	return svc.repo.GetMembershipByID(ctx, id)
}

func (svc *Service) QueryGroupMembers(ctx context.Context, groupID int) ([]GroupMember, error) {
	return svc.repo.QueryGroupMembers(ctx, groupID)
}

func (svc *Service) QueryUserMemberships(ctx context.Context, userID int) ([]UserGroup, error) {
	return svc.repo.QueryUserMemberships(ctx, userID)
}

// Update applies the approval workflow and role assignment. Approving a
// pending request flips it to approved; rejection is a delete, not a status.
// The creator membership is immutable.
func (svc *Service) Update(ctx context.Context, id int, um UpdateMembership) (Membership, error) {
	m, err := svc.repo.GetMembershipByID(ctx, id)
	if err != nil {
		return Membership{}, err
	}
	if m.Status == StatusCreator {
		return Membership{}, ErrCreatorImmutable
	}

	wasPending := m.Status == StatusPending
	m, err = svc.repo.UpdateMembership(ctx, id,
		null.NewString(um.Status, um.Status != ""),
		null.NewString(um.Role, um.Role != ""),
	)
	if err != nil {
		return Membership{}, err
	}

	if wasPending && m.Status == StatusApproved {
		if grp, gErr := svc.groupRepo.GetGroupByID(ctx, m.GroupID); gErr == nil {
			svc.notify(ctx, m.UserID, "request_approved", "Join request approved",
				fmt.Sprintf("You are now a member of %q.", grp.Name), fmt.Sprintf("/groups/%d", grp.ID))
		}
	}
	return m, nil
}

// Delete covers leaving, removal and rejection alike. The creator membership
// can only go away with its group.
func (svc *Service) Delete(ctx context.Context, id int) error {
	m, err := svc.repo.GetMembershipByID(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == StatusCreator {
		return ErrCreatorImmutable
	}
	return svc.repo.DeleteMembership(ctx, id)
}

// RoleInGroup reports the user's derived role in a group and whether they are
// an active (approved or creator) member. The group creator counts as owner
// even without a membership row.
func (svc *Service) RoleInGroup(ctx context.Context, userID, groupID int) (role string, active bool, err error) {
	grp, err := svc.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return "", false, err
	}

	m, err := svc.repo.GetMembership(ctx, userID, groupID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			if grp.CreatorID == userID {
				return RoleOwner, true, nil
			}
			return "", false, nil
		}
		return "", false, err
	}
	if grp.CreatorID == userID {
		return RoleOwner, m.IsActive(), nil
	}
	return m.EffectiveRole(), m.IsActive(), nil
}

func (svc *Service) notify(ctx context.Context, userID int, typ, title, msg, link string) {
	if svc.notifSvc == nil {
		return
	}
	// notifications are best-effort; a failed insert never fails the request
	_, _ = svc.notifSvc.Create(ctx, notification.NewNotification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: msg,
		Link:    link,
	})
}
