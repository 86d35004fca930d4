// Package policy decides what should happen to a chat message.
package policy

import (
	"context"
	"time"

	"github.com/iamwavecut/warden/internal/db"
	"github.com/iamwavecut/warden/internal/ratelimit"
)

type (
	// MessageEvent is the platform-independent view of an incoming message.
	// Empty Text or StickerSetID means the message carries none.
	MessageEvent struct {
		ChatID       int64
		UserID       int64
		MessageID    int
		IsAdmin      bool
		IsBotOwner   bool
		Timestamp    time.Time
		Text         string
		StickerSetID string
	}

	Outcome int

	Decision struct {
		ID           string
		Outcome      Outcome
		Word         string
		StickerSetID string
		Count        int
		MutePenalty  time.Duration
		Reason       string
		// Burst holds earlier messages of the same flood to remove along with this one.
		Burst []int
	}

	SettingsStore interface {
		GetChatSettings(ctx context.Context, chatID int64) (*db.ChatSettings, error)
	}

	StickerStore interface {
		IsStickerSetBlocked(ctx context.Context, chatID int64, setID string) (bool, error)
	}

	WordStore interface {
		ListCensoredWords(ctx context.Context, chatID int64) ([]db.CensoredWord, error)
	}

	Store interface {
		SettingsStore
		StickerStore
		WordStore
	}

	RateLimiter interface {
		RecordMessage(chatID, userID int64, messageID int, at time.Time, limits ratelimit.Limits) ratelimit.Verdict
	}
)

const (
	Allow Outcome = iota
	DeleteSpam
	DeleteCensored
	DeleteStickerBlocked
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case DeleteSpam:
		return "delete_spam"
	case DeleteCensored:
		return "delete_censored"
	case DeleteStickerBlocked:
		return "delete_sticker_blocked"
	}
	return "unknown"
}

// IsDelete reports whether the outcome removes the message.
func (o Outcome) IsDelete() bool {
	return o != Allow
}
