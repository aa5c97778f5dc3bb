package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/group"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

// callers hold the store lock
func (db *DB) activeMemberCountLocked(groupID int) int {
	count := 0
	for _, m := range db.memberships {
		if m.GroupID == groupID && m.IsActive() {
			count++
		}
	}
	return count
}

// callers hold the store lock
func (db *DB) enrichGroupLocked(grp group.Group) group.Group {
	if creator, ok := db.users[grp.CreatorID]; ok {
		grp.CreatorName = creator.Name
		grp.CreatorEmail = creator.Email
	}
	grp.CurrentMembers = db.activeMemberCountLocked(grp.ID)
	return grp
}

func (repo groupRepository) CreateGroup(_ context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	defer repo.db.lock(exec...)()

	repo.db.groupSeq++
	grp.ID = repo.db.groupSeq
	repo.db.groups[grp.ID] = grp
	return grp, nil
}

func (repo groupRepository) FilterGroups(_ context.Context, filter group.QueryFilter) ([]group.Group, error) {
	defer repo.db.lock()()

	var groups []group.Group
	for _, grp := range repo.db.groups {
		if filter.Type != "" && grp.GroupType != filter.Type {
			continue
		}
		if filter.CourseName != "" &&
			!strings.Contains(strings.ToLower(grp.CourseName), strings.ToLower(filter.CourseName)) {
			continue
		}
		groups = append(groups, repo.db.enrichGroupLocked(grp))
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].ID > groups[j].ID
		}
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

func (repo groupRepository) GetGroupByID(_ context.Context, id int, exec ...core.DBExecutor) (group.Group, error) {
	defer repo.db.lock(exec...)()

	grp, ok := repo.db.groups[id]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	return repo.db.enrichGroupLocked(grp), nil
}

func (repo groupRepository) GetGroupForUpdate(_ context.Context, id int, exec core.DBExecutor) (group.Group, error) {
	defer repo.db.lock(exec)()

	grp, ok := repo.db.groups[id]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	return grp, nil
}

func (repo groupRepository) UpdateGroup(_ context.Context, id int, ug group.UpdateGroup) (group.Group, error) {
	defer repo.db.lock()()

	grp, ok := repo.db.groups[id]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	if ug.Name.Valid {
		grp.Name = ug.Name.String
	}
	if ug.CourseName.Valid {
		grp.CourseName = ug.CourseName.String
	}
	if ug.CourseCode.Valid {
		grp.CourseCode = ug.CourseCode
	}
	if ug.Description.Valid {
		grp.Description = ug.Description
	}
	if ug.MaxCapacity.Valid {
		grp.MaxCapacity = ug.MaxCapacity.Int
	}
	if ug.GroupType.Valid {
		grp.GroupType = ug.GroupType.String
	}
	if ug.MeetingSchedule.Valid {
		grp.MeetingSchedule = ug.MeetingSchedule
	}
	if ug.MeetingLocation.Valid {
		grp.MeetingLocation = ug.MeetingLocation
	}
	repo.db.groups[id] = grp
	return repo.db.enrichGroupLocked(grp), nil
}

func (repo groupRepository) DeleteGroup(_ context.Context, id int) error {
	defer repo.db.lock()()

	if _, ok := repo.db.groups[id]; !ok {
		return group.ErrNotFound
	}
	delete(repo.db.groups, id)

	// cascade the way the schema's ON DELETE CASCADE does
	for mid, m := range repo.db.memberships {
		if m.GroupID == id {
			delete(repo.db.memberships, mid)
		}
	}
	for sid, s := range repo.db.sessions {
		if s.GroupID == id {
			for rid, r := range repo.db.rsvps {
				if r.SessionID == sid {
					delete(repo.db.rsvps, rid)
				}
			}
			delete(repo.db.sessions, sid)
		}
	}
	for fid, f := range repo.db.files {
		if f.GroupID == id {
			delete(repo.db.files, fid)
		}
	}
	for msgID, msg := range repo.db.messages {
		if msg.GroupID == id {
			delete(repo.db.messages, msgID)
		}
	}
	return nil
}
