package policy

import (
	"context"
	"testing"
)

func TestStickerPolicyPerChat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStubStore()
	p := NewStickerPolicy(store)

	store.block(1, "funnycats")

	if blocked, err := p.Check(ctx, 1, "FunnyCats"); err != nil || !blocked {
		t.Fatalf("expected blocked in chat 1: %v %v", blocked, err)
	}
	if blocked, err := p.Check(ctx, 2, "funnycats"); err != nil || blocked {
		t.Fatalf("chat 2 must not be affected: %v %v", blocked, err)
	}
	if blocked, err := p.Check(ctx, 1, ""); err != nil || blocked {
		t.Fatalf("empty set id must not be blocked: %v %v", blocked, err)
	}

	store.unblock(1, "funnycats")
	if blocked, err := p.Check(ctx, 1, "funnycats"); err != nil || blocked {
		t.Fatalf("expected unblocked: %v %v", blocked, err)
	}
}
