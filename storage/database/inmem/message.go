package inmem

import (
	"context"
	"sort"

	"github.com/Ma114119/Combits-2025/core/membership"
	"github.com/Ma114119/Combits-2025/core/message"
)

type messageRepository struct {
	db *DB
}

var _ message.Repository = (*messageRepository)(nil)

func NewMessageRepository(db *DB) *messageRepository {
	return &messageRepository{db: db}
}

// callers hold the store lock
func (db *DB) enrichMessageLocked(m message.Message) message.Message {
	if usr, ok := db.users[m.UserID]; ok {
		m.UserName = usr.Name
		m.UserEmail = usr.Email
		m.ProfilePictureURL = usr.ProfilePictureURL
	}

	m.UserRole = membership.RoleMember
	if grp, ok := db.groups[m.GroupID]; ok && grp.CreatorID == m.UserID {
		m.UserRole = membership.RoleOwner
		return m
	}
	for _, mem := range db.memberships {
		if mem.UserID == m.UserID && mem.GroupID == m.GroupID {
			m.UserRole = mem.EffectiveRole()
			break
		}
	}
	return m
}

func (repo messageRepository) CreateMessage(_ context.Context, m message.Message) (message.Message, error) {
	defer repo.db.lock()()

	repo.db.messageSeq++
	m.ID = repo.db.messageSeq
	repo.db.messages[m.ID] = m
	return repo.db.enrichMessageLocked(m), nil
}

func (repo messageRepository) QueryGroupMessages(_ context.Context, groupID, limit int) ([]message.Message, error) {
	defer repo.db.lock()()

	var messages []message.Message
	for _, m := range repo.db.messages {
		if m.GroupID == groupID {
			messages = append(messages, repo.db.enrichMessageLocked(m))
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	// keep only the most recent window, still in chronological order
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (repo messageRepository) GetMessageByID(_ context.Context, id int) (message.Message, error) {
	defer repo.db.lock()()

	m, ok := repo.db.messages[id]
	if !ok {
		return message.Message{}, message.ErrNotFound
	}
	return repo.db.enrichMessageLocked(m), nil
}

func (repo messageRepository) DeleteMessage(_ context.Context, id int) error {
	defer repo.db.lock()()

	if _, ok := repo.db.messages[id]; !ok {
		return message.ErrNotFound
	}
	delete(repo.db.messages, id)
	return nil
}
