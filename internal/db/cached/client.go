// Package cached serves chat policy reads from memory and drops a chat's
// entries whenever it is written to.
package cached

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iamwavecut/warden/internal/db"
	"github.com/iamwavecut/warden/internal/infra/reg"
)

type Client struct {
	db.Client

	group    singleflight.Group
	settings *reg.Registry[db.ChatSettings]
	stickers *reg.Registry[map[string]struct{}]
	words    *reg.Registry[[]db.CensoredWord]
}

var _ db.Client = (*Client)(nil)

func NewClient(inner db.Client) *Client {
	return &Client{
		Client:   inner,
		settings: reg.New[db.ChatSettings](),
		stickers: reg.New[map[string]struct{}](),
		words:    reg.New[[]db.CensoredWord](),
	}
}

func load[V any](ctx context.Context, c *Client, r *reg.Registry[V], kind string, chatID int64, fetch func(context.Context) (V, error)) (V, error) {
	if v, _, ok := r.Get(chatID); ok {
		return v, nil
	}
	version := r.Version(chatID)
	key := fmt.Sprintf("%s:%d:%d", kind, chatID, version)
	// Joined callers share the fetch, so one caller's cancellation must not fail the rest.
	fetchCtx := context.WithoutCancel(ctx)
	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		r.SetIfVersion(chatID, version, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *Client) GetChatSettings(ctx context.Context, chatID int64) (*db.ChatSettings, error) {
	s, err := load(ctx, c, c.settings, "settings", chatID, func(ctx context.Context) (db.ChatSettings, error) {
		s, err := c.Client.GetChatSettings(ctx, chatID)
		if err != nil {
			return db.ChatSettings{}, err
		}
		return *s, nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) IsStickerSetBlocked(ctx context.Context, chatID int64, setID string) (bool, error) {
	sets, err := load(ctx, c, c.stickers, "stickers", chatID, func(ctx context.Context) (map[string]struct{}, error) {
		list, err := c.Client.ListBlockedStickerSets(ctx, chatID)
		if err != nil {
			return nil, err
		}
		sets := make(map[string]struct{}, len(list))
		for _, s := range list {
			sets[s] = struct{}{}
		}
		return sets, nil
	})
	if err != nil {
		return false, err
	}
	_, ok := sets[strings.ToLower(setID)]
	return ok, nil
}

func (c *Client) ListCensoredWords(ctx context.Context, chatID int64) ([]db.CensoredWord, error) {
	return load(ctx, c, c.words, "words", chatID, func(ctx context.Context) ([]db.CensoredWord, error) {
		return c.Client.ListCensoredWords(ctx, chatID)
	})
}

func (c *Client) SetAntiSpam(ctx context.Context, chatID int64, enabled bool) error {
	defer c.settings.Invalidate(chatID)
	return c.Client.SetAntiSpam(ctx, chatID, enabled)
}

func (c *Client) SetSpamLimit(ctx context.Context, chatID int64, limit int) error {
	defer c.settings.Invalidate(chatID)
	return c.Client.SetSpamLimit(ctx, chatID, limit)
}

func (c *Client) SetMutePenalty(ctx context.Context, chatID int64, penalty time.Duration) error {
	defer c.settings.Invalidate(chatID)
	return c.Client.SetMutePenalty(ctx, chatID, penalty)
}

func (c *Client) SetAdminsBypass(ctx context.Context, chatID int64, enabled bool) error {
	defer c.settings.Invalidate(chatID)
	return c.Client.SetAdminsBypass(ctx, chatID, enabled)
}

func (c *Client) AddBlockedStickerSet(ctx context.Context, chatID int64, setID string) (bool, error) {
	defer c.stickers.Invalidate(chatID)
	return c.Client.AddBlockedStickerSet(ctx, chatID, setID)
}

func (c *Client) RemoveBlockedStickerSet(ctx context.Context, chatID int64, setID string) (bool, error) {
	defer c.stickers.Invalidate(chatID)
	return c.Client.RemoveBlockedStickerSet(ctx, chatID, setID)
}

func (c *Client) ClearBlockedStickerSets(ctx context.Context, chatID int64) (int, error) {
	defer c.stickers.Invalidate(chatID)
	return c.Client.ClearBlockedStickerSets(ctx, chatID)
}

func (c *Client) AddCensoredWord(ctx context.Context, chatID int64, word string, mode db.MatchMode) (bool, error) {
	defer c.words.Invalidate(chatID)
	return c.Client.AddCensoredWord(ctx, chatID, word, mode)
}

func (c *Client) RemoveCensoredWord(ctx context.Context, chatID int64, word string) (bool, error) {
	defer c.words.Invalidate(chatID)
	return c.Client.RemoveCensoredWord(ctx, chatID, word)
}

func (c *Client) ClearCensoredWords(ctx context.Context, chatID int64) (int, error) {
	defer c.words.Invalidate(chatID)
	return c.Client.ClearCensoredWords(ctx, chatID)
}
