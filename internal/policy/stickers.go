package policy

import (
	"context"
	"strings"
)

type StickerPolicy struct {
	store StickerStore
}

func NewStickerPolicy(store StickerStore) *StickerPolicy {
	return &StickerPolicy{store: store}
}

// Check reports whether stickers of setID are blocked in the chat.
func (p *StickerPolicy) Check(ctx context.Context, chatID int64, setID string) (bool, error) {
	setID = strings.ToLower(strings.TrimSpace(setID))
	if setID == "" {
		return false, nil
	}
	return p.store.IsStickerSetBlocked(ctx, chatID, setID)
}
