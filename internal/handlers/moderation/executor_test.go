package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	wderrors "github.com/iamwavecut/warden/internal/errors"
	"github.com/iamwavecut/warden/internal/infrastructure/telegram"
	"github.com/iamwavecut/warden/internal/policy"
)

type fakePlatform struct {
	mu          sync.Mutex
	deleted     map[int]bool
	deleteErr   error
	restrictErr error
	deletes     int
	restricts   []time.Time
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{deleted: map[int]bool{}}
}

func (f *fakePlatform) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.deleted[messageID] {
		return telegram.ErrMessageNotFound
	}
	f.deleted[messageID] = true
	return nil
}

func (f *fakePlatform) RestrictMember(_ context.Context, _, _ int64, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.restrictErr != nil {
		return f.restrictErr
	}
	f.restricts = append(f.restricts, until)
	return nil
}

var testEvent = policy.MessageEvent{ChatID: -100, UserID: 5, MessageID: 77}

func TestExecuteAllowIsNoop(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform()
	if err := NewExecutor(platform, nil).Execute(context.Background(), policy.Decision{Outcome: policy.Allow}, testEvent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if platform.deletes != 0 {
		t.Fatalf("allow must not call the platform")
	}
}

func TestExecuteDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform()
	e := NewExecutor(platform, nil)
	d := policy.Decision{ID: "x", Outcome: policy.DeleteSpam}

	for i := 0; i < 2; i++ {
		if err := e.Execute(context.Background(), d, testEvent); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if platform.deletes != 2 {
		t.Fatalf("expected one call per execution, got %d", platform.deletes)
	}
	if len(platform.restricts) != 0 {
		t.Fatalf("no penalty configured, restriction not expected")
	}
}

func TestExecuteSpamPenalty(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform()
	e := NewExecutor(platform, nil)
	now := time.Unix(1_700_000_000, 0)
	e.now = func() time.Time { return now }

	d := policy.Decision{Outcome: policy.DeleteSpam, MutePenalty: 15 * time.Minute}
	if err := e.Execute(context.Background(), d, testEvent); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(platform.restricts) != 1 || !platform.restricts[0].Equal(now.Add(15*time.Minute)) {
		t.Fatalf("unexpected restrictions: %v", platform.restricts)
	}

	d = policy.Decision{Outcome: policy.DeleteCensored, MutePenalty: 15 * time.Minute}
	if err := e.Execute(context.Background(), d, policy.MessageEvent{ChatID: -100, UserID: 5, MessageID: 78}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(platform.restricts) != 1 {
		t.Fatalf("only spam decisions restrict the sender")
	}
}

func TestExecuteReportsFailures(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform()
	platform.deleteErr = errors.New("Bad Request: not enough rights")
	e := NewExecutor(platform, nil)

	err := e.Execute(context.Background(), policy.Decision{Outcome: policy.DeleteStickerBlocked}, testEvent)
	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("expected ActionError, got %v", err)
	}
	if actionErr.Action != actionDelete || actionErr.MessageID != 77 {
		t.Fatalf("unexpected action error: %#v", actionErr)
	}
	if !errors.Is(err, wderrors.ErrExternalAPI) {
		t.Fatalf("expected external api error kind, got %v", err)
	}
	if platform.deletes != 1 {
		t.Fatalf("failures must not be retried, got %d calls", platform.deletes)
	}
}

func TestExecuteAbandonedOnShutdown(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewExecutor(platform, nil).Execute(ctx, policy.Decision{Outcome: policy.DeleteSpam, MutePenalty: time.Minute}, testEvent)
	if err != nil {
		t.Fatalf("abandoned actions are not failures: %v", err)
	}
	if platform.deletes != 0 || len(platform.restricts) != 0 {
		t.Fatalf("no calls expected after cancellation")
	}
}

func TestExecuteSpamDeletesBurst(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform()
	platform.deleted[72] = true
	e := NewExecutor(platform, nil)

	d := policy.Decision{Outcome: policy.DeleteSpam, Burst: []int{72, 73, 74, 77}}
	if err := e.Execute(context.Background(), d, testEvent); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, id := range []int{73, 74, 77} {
		if !platform.deleted[id] {
			t.Fatalf("message %d not deleted", id)
		}
	}
	if platform.deletes != 4 {
		t.Fatalf("expected one call per message, got %d", platform.deletes)
	}

	d = policy.Decision{Outcome: policy.DeleteCensored, Burst: []int{80}}
	if err := e.Execute(context.Background(), d, policy.MessageEvent{ChatID: -100, UserID: 5, MessageID: 81}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if platform.deleted[80] {
		t.Fatalf("only spam decisions clean up a burst")
	}
}

func TestExecuteBurstFailuresDoNotFailDecision(t *testing.T) {
	t.Parallel()

	platform := &burstFailPlatform{fakePlatform: newFakePlatform(), failID: 73}
	d := policy.Decision{Outcome: policy.DeleteSpam, Burst: []int{73}}
	if err := NewExecutor(platform, nil).Execute(context.Background(), d, testEvent); err != nil {
		t.Fatalf("burst failure must not fail the decision: %v", err)
	}
	if !platform.deleted[testEvent.MessageID] {
		t.Fatalf("triggering message not deleted")
	}
}

type burstFailPlatform struct {
	*fakePlatform
	failID int
}

func (f *burstFailPlatform) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if messageID == f.failID {
		return errors.New("bad request")
	}
	return f.fakePlatform.DeleteMessage(ctx, chatID, messageID)
}
