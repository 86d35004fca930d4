package handlers

import "testing"

func TestHistoryRecentNewestFirst(t *testing.T) {
	t.Parallel()

	h := NewHistory(10)
	h.Add(HistoryEntry{ChatID: 1, MessageID: 1, Username: "alice"})
	h.Add(HistoryEntry{ChatID: 2, MessageID: 2, Username: "bob"})
	h.Add(HistoryEntry{ChatID: 1, MessageID: 3, Username: "@Bob"})
	h.Add(HistoryEntry{ChatID: 1, MessageID: 4})

	got := h.Recent(1, 10, nil)
	if len(got) != 3 || got[0].MessageID != 4 || got[2].MessageID != 1 {
		t.Fatalf("unexpected entries: %#v", got)
	}

	got = h.Recent(1, 10, []string{"@BOB"})
	if len(got) != 2 || got[0].MessageID != 4 || got[1].MessageID != 1 {
		t.Fatalf("exception not applied: %#v", got)
	}

	if got := h.Recent(1, 1, nil); len(got) != 1 || got[0].MessageID != 4 {
		t.Fatalf("limit not applied: %#v", got)
	}
}

func TestHistoryOverwritesOldest(t *testing.T) {
	t.Parallel()

	h := NewHistory(3)
	for id := 1; id <= 5; id++ {
		h.Add(HistoryEntry{ChatID: 1, MessageID: id})
	}

	got := h.Recent(1, 10, nil)
	if len(got) != 3 || got[0].MessageID != 5 || got[2].MessageID != 3 {
		t.Fatalf("unexpected entries: %#v", got)
	}
}

func TestHistoryForget(t *testing.T) {
	t.Parallel()

	h := NewHistory(5)
	h.Add(HistoryEntry{ChatID: 1, MessageID: 1})
	h.Add(HistoryEntry{ChatID: 1, MessageID: 2})
	h.Add(HistoryEntry{ChatID: 2, MessageID: 2})

	h.Forget(1, 2)

	if got := h.Recent(1, 10, nil); len(got) != 1 || got[0].MessageID != 1 {
		t.Fatalf("unexpected entries: %#v", got)
	}
	if got := h.Recent(2, 10, nil); len(got) != 1 {
		t.Fatalf("other chat affected: %#v", got)
	}
}
