package sqlite

import (
	"context"
	"strings"

	"github.com/iamwavecut/warden/internal/db"
)

func (c *sqliteClient) AddBlockedStickerSet(ctx context.Context, chatID int64, setID string) (bool, error) {
	return c.insertForChat(ctx, chatID, "add blocked sticker set",
		`INSERT OR IGNORE INTO blocked_sticker_sets (chat_id, set_id) VALUES (?, ?)`,
		strings.ToLower(setID),
	)
}

func (c *sqliteClient) RemoveBlockedStickerSet(ctx context.Context, chatID int64, setID string) (bool, error) {
	n, err := c.exec(ctx, "remove blocked sticker set",
		`DELETE FROM blocked_sticker_sets WHERE chat_id = ? AND set_id = ?`,
		chatID, strings.ToLower(setID),
	)
	return n > 0, err
}

func (c *sqliteClient) ClearBlockedStickerSets(ctx context.Context, chatID int64) (int, error) {
	return c.exec(ctx, "clear blocked sticker sets", `DELETE FROM blocked_sticker_sets WHERE chat_id = ?`, chatID)
}

func (c *sqliteClient) ListBlockedStickerSets(ctx context.Context, chatID int64) ([]string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	sets := []string{}
	if err := c.db.SelectContext(ctx, &sets,
		`SELECT set_id FROM blocked_sticker_sets WHERE chat_id = ? ORDER BY created_at, set_id`, chatID,
	); err != nil {
		return nil, storeErr("list blocked sticker sets", err)
	}
	return sets, nil
}

func (c *sqliteClient) IsStickerSetBlocked(ctx context.Context, chatID int64, setID string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var count int
	if err := c.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM blocked_sticker_sets WHERE chat_id = ? AND set_id = ?`,
		chatID, strings.ToLower(setID),
	); err != nil {
		return false, storeErr("check blocked sticker set", err)
	}
	return count > 0, nil
}

func (c *sqliteClient) AddCensoredWord(ctx context.Context, chatID int64, word string, mode db.MatchMode) (bool, error) {
	return c.insertForChat(ctx, chatID, "add censored word",
		`INSERT OR IGNORE INTO censored_words (chat_id, word, match_mode) VALUES (?, ?, ?)`,
		word, string(mode),
	)
}

func (c *sqliteClient) RemoveCensoredWord(ctx context.Context, chatID int64, word string) (bool, error) {
	n, err := c.exec(ctx, "remove censored word",
		`DELETE FROM censored_words WHERE chat_id = ? AND word = ?`, chatID, word,
	)
	return n > 0, err
}

func (c *sqliteClient) ClearCensoredWords(ctx context.Context, chatID int64) (int, error) {
	return c.exec(ctx, "clear censored words", `DELETE FROM censored_words WHERE chat_id = ?`, chatID)
}

func (c *sqliteClient) ListCensoredWords(ctx context.Context, chatID int64) ([]db.CensoredWord, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	words := []db.CensoredWord{}
	if err := c.db.SelectContext(ctx, &words,
		`SELECT chat_id, word, match_mode FROM censored_words WHERE chat_id = ? ORDER BY id`, chatID,
	); err != nil {
		return nil, storeErr("list censored words", err)
	}
	return words, nil
}

func (c *sqliteClient) insertForChat(ctx context.Context, chatID int64, op, query string, args ...any) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, storeErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureChat(ctx, tx, chatID); err != nil {
		return false, storeErr(op, err)
	}
	res, err := tx.ExecContext(ctx, query, append([]any{chatID}, args...)...)
	if err != nil {
		return false, storeErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return false, storeErr(op, err)
	}
	return n > 0, nil
}

func (c *sqliteClient) exec(ctx context.Context, op, query string, args ...any) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storeErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr(op, err)
	}
	return int(n), nil
}
