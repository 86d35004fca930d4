package handlers

import (
	"cmp"
	"slices"
	"strings"
	"sync"
)

type (
	HistoryEntry struct {
		ChatID    int64
		MessageID int
		UserID    int64
		Username  string
	}

	// History keeps the most recent messages of all chats in a fixed-size ring.
	History struct {
		mu      sync.Mutex
		entries []HistoryEntry
		next    int
		full    bool
	}
)

func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{entries: make([]HistoryEntry, size)}
}

func (h *History) Add(e HistoryEntry) {
	e.Username = strings.ToLower(strings.TrimPrefix(e.Username, "@"))

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.next] = e
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
}

// Recent returns up to limit messages of the chat, highest message id first,
// leaving out those whose sender username is in except.
func (h *History) Recent(chatID int64, limit int, except []string) []HistoryEntry {
	skip := make(map[string]struct{}, len(except))
	for _, u := range except {
		skip[strings.ToLower(strings.TrimPrefix(u, "@"))] = struct{}{}
	}

	h.mu.Lock()
	n := h.next
	if h.full {
		n = len(h.entries)
	}
	matched := make([]HistoryEntry, 0, limit)
	for i := 0; i < n; i++ {
		e := h.entries[(h.next-1-i+len(h.entries))%len(h.entries)]
		if e.ChatID != chatID || e.MessageID == 0 {
			continue
		}
		if _, ok := skip[e.Username]; ok && e.Username != "" {
			continue
		}
		matched = append(matched, e)
	}
	h.mu.Unlock()

	sortByMessageIDDesc(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// Forget drops the given messages of the chat so they are not offered again.
func (h *History) Forget(chatID int64, messageIDs ...int) {
	ids := make(map[int]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		ids[id] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.entries {
		if h.entries[i].ChatID != chatID {
			continue
		}
		if _, ok := ids[h.entries[i].MessageID]; ok {
			h.entries[i].MessageID = 0
		}
	}
}

func sortByMessageIDDesc(entries []HistoryEntry) {
	slices.SortFunc(entries, func(a, b HistoryEntry) int {
		return cmp.Compare(b.MessageID, a.MessageID)
	})
}
