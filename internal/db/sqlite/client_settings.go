package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/warden/internal/db"
)

func (c *sqliteClient) GetChatSettings(ctx context.Context, chatID int64) (*db.ChatSettings, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	query := `
		SELECT c.id, c.antispam_enabled, c.spam_limit, c.mute_penalty,
		       COALESCE(a.bypass_enabled, 1) AS bypass_enabled
		FROM chats c
		LEFT JOIN admin_permissions a ON a.chat_id = c.id
		WHERE c.id = ?
	`
	res := &db.ChatSettings{}
	if err := c.db.GetContext(ctx, res, query, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.DefaultSettings(chatID), nil
		}
		return nil, storeErr("get chat settings", err)
	}
	return res, nil
}

func (c *sqliteClient) SetAntiSpam(ctx context.Context, chatID int64, enabled bool) error {
	return c.updateChat(ctx, chatID, "set antispam", `UPDATE chats SET antispam_enabled = ? WHERE id = ?`, enabled)
}

func (c *sqliteClient) SetSpamLimit(ctx context.Context, chatID int64, limit int) error {
	return c.updateChat(ctx, chatID, "set spam limit", `UPDATE chats SET spam_limit = ? WHERE id = ?`, limit)
}

func (c *sqliteClient) SetMutePenalty(ctx context.Context, chatID int64, penalty time.Duration) error {
	return c.updateChat(ctx, chatID, "set mute penalty", `UPDATE chats SET mute_penalty = ? WHERE id = ?`, db.Seconds(penalty))
}

func (c *sqliteClient) SetAdminsBypass(ctx context.Context, chatID int64, enabled bool) error {
	return c.updateChat(ctx, chatID, "set admins bypass", `
		INSERT INTO admin_permissions (bypass_enabled, chat_id) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET bypass_enabled = excluded.bypass_enabled
	`, enabled)
}

func (c *sqliteClient) updateChat(ctx context.Context, chatID int64, op, query string, value any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureChat(ctx, tx, chatID); err != nil {
		return storeErr(op, err)
	}
	if err := tool.Err(tx.ExecContext(ctx, query, value, chatID)); err != nil {
		return storeErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(op, err)
	}
	return nil
}
