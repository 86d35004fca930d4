package db

import (
	"context"
	"time"
)

type Client interface {
	Close() error

	GetChatSettings(ctx context.Context, chatID int64) (*ChatSettings, error)
	SetAntiSpam(ctx context.Context, chatID int64, enabled bool) error
	SetSpamLimit(ctx context.Context, chatID int64, limit int) error
	SetMutePenalty(ctx context.Context, chatID int64, penalty time.Duration) error
	SetAdminsBypass(ctx context.Context, chatID int64, enabled bool) error

	// AddBlockedStickerSet reports false when the set was already blocked.
	AddBlockedStickerSet(ctx context.Context, chatID int64, setID string) (bool, error)
	RemoveBlockedStickerSet(ctx context.Context, chatID int64, setID string) (bool, error)
	ClearBlockedStickerSets(ctx context.Context, chatID int64) (int, error)
	ListBlockedStickerSets(ctx context.Context, chatID int64) ([]string, error)
	IsStickerSetBlocked(ctx context.Context, chatID int64, setID string) (bool, error)

	AddCensoredWord(ctx context.Context, chatID int64, word string, mode MatchMode) (bool, error)
	RemoveCensoredWord(ctx context.Context, chatID int64, word string) (bool, error)
	ClearCensoredWords(ctx context.Context, chatID int64) (int, error)
	ListCensoredWords(ctx context.Context, chatID int64) ([]CensoredWord, error)
}
