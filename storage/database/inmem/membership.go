package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
)

type membershipRepository struct {
	db *DB
}

var (
	_ membership.Repository         = (*membershipRepository)(nil)
	_ group.CreatorMembershipWriter = (*membershipRepository)(nil)
)

func NewMembershipRepository(db *DB) *membershipRepository {
	return &membershipRepository{db: db}
}

func (repo membershipRepository) CreateMembership(_ context.Context, m membership.Membership, exec ...core.DBExecutor) (membership.Membership, error) {
	defer repo.db.lock(exec...)()

	for _, existing := range repo.db.memberships {
		if existing.UserID == m.UserID && existing.GroupID == m.GroupID {
			return membership.Membership{}, membership.ErrAlreadyMember
		}
	}
	repo.db.membershipSeq++
	m.ID = repo.db.membershipSeq
	repo.db.memberships[m.ID] = m
	m.Derive()
	return m, nil
}

func (repo membershipRepository) CreateCreatorMembership(ctx context.Context, userID, groupID int, exec ...core.DBExecutor) error {
	_, err := repo.CreateMembership(ctx, membership.Membership{
		UserID:   userID,
		GroupID:  groupID,
		Status:   membership.StatusCreator,
		JoinedAt: time.Now().UTC(),
	}, exec...)
	return err
}

func (repo membershipRepository) GetMembershipByID(_ context.Context, id int) (membership.Membership, error) {
	defer repo.db.lock()()

	m, ok := repo.db.memberships[id]
	if !ok {
		return membership.Membership{}, membership.ErrNotFound
	}
	m.Derive()
	return m, nil
}

func (repo membershipRepository) GetMembership(_ context.Context, userID, groupID int, exec ...core.DBExecutor) (membership.Membership, error) {
	defer repo.db.lock(exec...)()

	for _, m := range repo.db.memberships {
		if m.UserID == userID && m.GroupID == groupID {
			m.Derive()
			return m, nil
		}
	}
	return membership.Membership{}, membership.ErrNotFound
}

func (repo membershipRepository) CountActiveMembers(_ context.Context, groupID int, exec ...core.DBExecutor) (int, error) {
	defer repo.db.lock(exec...)()
	return repo.db.activeMemberCountLocked(groupID), nil
}

func (repo membershipRepository) QueryGroupMembers(_ context.Context, groupID int) ([]membership.GroupMember, error) {
	defer repo.db.lock()()

	var members []membership.GroupMember
	for _, m := range repo.db.memberships {
		if m.GroupID != groupID {
			continue
		}
		m.Derive()
		gm := membership.GroupMember{Membership: m}
		if usr, ok := repo.db.users[m.UserID]; ok {
			gm.Name = usr.Name
			gm.Email = usr.Email
			gm.University = usr.University
			gm.Semester = usr.Semester
			gm.ProfilePictureURL = usr.ProfilePictureURL
		}
		members = append(members, gm)
	}
	sort.Slice(members, func(i, j int) bool {
		pi, pj := membership.RolePriority(members[i].Role), membership.RolePriority(members[j].Role)
		if pi != pj {
			return pi < pj
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members, nil
}

func (repo membershipRepository) QueryUserMemberships(_ context.Context, userID int) ([]membership.UserGroup, error) {
	defer repo.db.lock()()

	var groups []membership.UserGroup
	for _, m := range repo.db.memberships {
		if m.UserID != userID {
			continue
		}
		m.Derive()
		ug := membership.UserGroup{Membership: m}
		if grp, ok := repo.db.groups[m.GroupID]; ok {
			ug.GroupName = grp.Name
			ug.CourseName = grp.CourseName
			ug.CourseCode = grp.CourseCode
			ug.MaxCapacity = grp.MaxCapacity
			ug.GroupType = grp.GroupType
			ug.MeetingSchedule = grp.MeetingSchedule
			ug.MeetingLocation = grp.MeetingLocation
			if creator, ok := repo.db.users[grp.CreatorID]; ok {
				ug.CreatorName = creator.Name
			}
		}
		groups = append(groups, ug)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].JoinedAt.Equal(groups[j].JoinedAt) {
			return groups[i].ID > groups[j].ID
		}
		return groups[i].JoinedAt.After(groups[j].JoinedAt)
	})
	return groups, nil
}

func (repo membershipRepository) UpdateMembership(_ context.Context, id int, status, role null.String) (membership.Membership, error) {
	defer repo.db.lock()()

	m, ok := repo.db.memberships[id]
	if !ok {
		return membership.Membership{}, membership.ErrNotFound
	}
	if status.Valid {
		m.Status = status.String
	}
	if role.Valid {
		m.StoredRole = role
	}
	repo.db.memberships[id] = m
	m.Derive()
	return m, nil
}

func (repo membershipRepository) DeleteMembership(_ context.Context, id int) error {
	defer repo.db.lock()()

	if _, ok := repo.db.memberships[id]; !ok {
		return membership.ErrNotFound
	}
	delete(repo.db.memberships, id)
	return nil
}
