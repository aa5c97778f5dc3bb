package message

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
)

var (
	ErrNotFound  = errors.New("message not found")
	ErrNotMember = errors.New("you must be a member of this group to send messages")
	ErrForbidden = errors.New("you do not have permission to delete this message")
)

// transcriptWindow is how many messages a single read returns: the most
// recent ones, delivered oldest first so clients append new arrivals at
// the end.
const transcriptWindow = 100

type (
	Repository interface {
		// CreateMessage inserts the message and returns it enriched with
		// sender identity and derived role.
		CreateMessage(ctx context.Context, m Message) (Message, error)
		// QueryGroupMessages returns the `limit` most recent messages of a
		// group in ascending chronological order.
		QueryGroupMessages(ctx context.Context, groupID, limit int) ([]Message, error)
		GetMessageByID(ctx context.Context, id int) (Message, error)
		DeleteMessage(ctx context.Context, id int) error
	}

	Service struct {
		repo       Repository
		groupRepo  group.Repository
		memberRepo membership.Repository
	}
)

func NewService(repo Repository, groupRepo group.Repository, memberRepo membership.Repository) *Service {
	return &Service{repo: repo, groupRepo: groupRepo, memberRepo: memberRepo}
}

// Send appends a message to the group transcript. Only the group creator and
// active (approved or creator) members may post.
func (svc *Service) Send(ctx context.Context, senderID int, nm NewMessage) (Message, error) {
	grp, err := svc.groupRepo.GetGroupByID(ctx, nm.GroupID)
	if err != nil {
		return Message{}, err
	}

	if grp.CreatorID != senderID {
		m, err := svc.memberRepo.GetMembership(ctx, senderID, nm.GroupID)
		if err != nil {
			if errors.Cause(err) == membership.ErrNotFound {
				return Message{}, ErrNotMember
			}
			return Message{}, errors.Wrap(err, "checking membership")
		}
		if !m.IsActive() {
			return Message{}, ErrNotMember
		}
	}

	return svc.repo.CreateMessage(ctx, Message{
		GroupID:   nm.GroupID,
		UserID:    senderID,
		Message:   nm.Message,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryByGroup(ctx context.Context, groupID int) ([]Message, error) {
	return svc.repo.QueryGroupMessages(ctx, groupID, transcriptWindow)
}

// Delete removes a message. Allowed for the group creator, a member holding
// the admin role, and the message's own author.
func (svc *Service) Delete(ctx context.Context, actorID, id int) error {
	msg, err := svc.repo.GetMessageByID(ctx, id)
	if err != nil {
		return err
	}

	if msg.UserID != actorID {
		grp, err := svc.groupRepo.GetGroupByID(ctx, msg.GroupID)
		if err != nil {
			return err
		}
		if grp.CreatorID != actorID {
			m, err := svc.memberRepo.GetMembership(ctx, actorID, msg.GroupID)
			if err != nil {
				if errors.Cause(err) == membership.ErrNotFound {
					return ErrForbidden
				}
				return errors.Wrap(err, "checking membership")
			}
			if !m.IsActive() || m.EffectiveRole() != membership.RoleAdmin {
				return ErrForbidden
			}
		}
	}
	return svc.repo.DeleteMessage(ctx, id)
}
