package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/message"
)

// enrichedMessageQuery joins in the sender's profile and derives their role
// in the group the same way the membership package does.
const enrichedMessageQuery = `
SELECT gm.message_id, gm.group_id, gm.user_id, gm.message, gm.created_at,
       u.name AS user_name, u.email AS user_email, u.profile_picture_url,
       CASE
           WHEN gm.user_id = g.creator_id OR mem.status = 'creator' OR mem.role = 'owner' THEN 'owner'
           WHEN mem.role IS NOT NULL THEN mem.role
           ELSE 'member'
       END AS user_role
FROM group_messages gm
JOIN users u ON gm.user_id = u.user_id
JOIN groups g ON gm.group_id = g.group_id
LEFT JOIN memberships mem ON mem.group_id = gm.group_id AND mem.user_id = gm.user_id`

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil)

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (repo messageRepository) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO group_messages (group_id, user_id, message, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING message_id`,
		m.GroupID, m.UserID, m.Message, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return message.Message{}, errors.Wrap(err, "creating message")
	}
	return repo.GetMessageByID(ctx, m.ID)
}

func (repo messageRepository) QueryGroupMessages(ctx context.Context, groupID, limit int) ([]message.Message, error) {
	// grab the most recent window, then flip it back to chronological order
	var messages []message.Message
	err := repo.db.SelectContext(ctx, &messages,
		`SELECT * FROM (`+enrichedMessageQuery+`
		 WHERE gm.group_id = $1
		 ORDER BY gm.created_at DESC, gm.message_id DESC
		 LIMIT $2) recent
		 ORDER BY recent.created_at ASC, recent.message_id ASC`,
		groupID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying group messages")
	}
	return messages, nil
}

func (repo messageRepository) GetMessageByID(ctx context.Context, id int) (message.Message, error) {
	var m message.Message
	err := repo.db.GetContext(ctx, &m, enrichedMessageQuery+` WHERE gm.message_id = $1`, id)
	if err != nil {
		return message.Message{}, trapNoRows(err, message.ErrNotFound, "finding message by ID")
	}
	return m, nil
}

func (repo messageRepository) DeleteMessage(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM group_messages WHERE message_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting message")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return message.ErrNotFound
	}
	return nil
}
