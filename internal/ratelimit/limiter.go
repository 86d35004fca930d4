// Package ratelimit counts messages per chat member over a trailing window.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

const shardCount = 64

type (
	Config struct {
		MaxMessages   int
		Window        time.Duration
		SweepInterval time.Duration
	}

	// Limits overrides the configured thresholds for a single call; zero fields fall back to Config.
	Limits struct {
		MaxMessages int
		Window      time.Duration
	}

	Verdict struct {
		IsSpam bool
		// Count includes the message just recorded.
		Count int
		// Burst lists the earlier messages of the window, except its first, that no
		// previous spam verdict reported. Only set on a spam verdict.
		Burst []int
	}

	stamp struct {
		at        time.Time
		messageID int
		reported  bool
	}

	key struct {
		chatID int64
		userID int64
	}

	window struct {
		mu     sync.Mutex
		stamps []stamp
		latest time.Time
		span   time.Duration
		// dead is set once the sweeper unlinked the window from its shard.
		dead bool
	}

	shard struct {
		mu      sync.Mutex
		windows map[key]*window
	}

	Limiter struct {
		cfg    Config
		shards [shardCount]shard

		started  atomic.Bool
		stopOnce sync.Once
		stop     chan struct{}
		done     chan struct{}
	}
)

func NewLimiter(cfg Config) *Limiter {
	l := &Limiter{
		cfg:  cfg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i].windows = map[key]*window{}
	}
	return l
}

func getLogEntry() *log.Entry {
	return log.WithField("object", "ratelimit")
}

func (l *Limiter) Record(chatID, userID int64, at time.Time) Verdict {
	return l.RecordWithLimits(chatID, userID, at, Limits{})
}

func (l *Limiter) RecordWithLimits(chatID, userID int64, at time.Time, limits Limits) Verdict {
	return l.RecordMessage(chatID, userID, 0, at, limits)
}

// RecordMessage counts messageID at the given time. A zero messageID is counted
// but never reported in a burst.
func (l *Limiter) RecordMessage(chatID, userID int64, messageID int, at time.Time, limits Limits) Verdict {
	maxMessages, span := l.resolve(limits)
	k := key{chatID: chatID, userID: userID}
	for {
		w := l.shardFor(k).get(k)

		w.mu.Lock()
		if w.dead {
			w.mu.Unlock()
			continue
		}
		if at.Before(w.latest) {
			at = w.latest
		}
		w.latest = at
		w.span = span
		w.stamps = append(w.stamps, stamp{at: at, messageID: messageID})
		w.prune(at)
		v := Verdict{Count: len(w.stamps), IsSpam: len(w.stamps) > maxMessages}
		if v.IsSpam {
			v.Burst = w.report()
		}
		w.mu.Unlock()

		return v
	}
}

func (l *Limiter) resolve(limits Limits) (int, time.Duration) {
	maxMessages, span := l.cfg.MaxMessages, l.cfg.Window
	if limits.MaxMessages > 0 {
		maxMessages = limits.MaxMessages
	}
	if limits.Window > 0 {
		span = limits.Window
	}
	return maxMessages, span
}

func (l *Limiter) shardFor(k key) *shard {
	h := uint64(k.chatID)*0x9E3779B97F4A7C15 ^ uint64(k.userID)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return &l.shards[h%shardCount]
}

func (s *shard) get(k key) *window {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[k]
	if !ok {
		w = &window{}
		s.windows[k] = w
	}
	return w
}

// prune drops every stamp that is a full span or more older than now.
func (w *window) prune(now time.Time) {
	i := 0
	for i < len(w.stamps) && now.Sub(w.stamps[i].at) >= w.span {
		i++
	}
	if i == 0 {
		return
	}
	n := copy(w.stamps, w.stamps[i:])
	clear(w.stamps[n:])
	w.stamps = w.stamps[:n]
}

// report marks every stamp of the window as reported and returns the ids of
// those not reported before, leaving out the first stamp and the newest one.
func (w *window) report() []int {
	var burst []int
	last := len(w.stamps) - 1
	for i := range w.stamps {
		st := &w.stamps[i]
		if !st.reported && i > 0 && i < last && st.messageID != 0 {
			burst = append(burst, st.messageID)
		}
		st.reported = true
	}
	return burst
}

// Sweep removes windows that hold no stamp younger than their span and returns how many were removed.
func (l *Limiter) Sweep(now time.Time) int {
	removed := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		for k, w := range s.windows {
			w.mu.Lock()
			if now.After(w.latest) {
				w.prune(now)
			}
			if len(w.stamps) == 0 {
				w.dead = true
				delete(s.windows, k)
				removed++
			}
			w.mu.Unlock()
		}
		s.mu.Unlock()
	}
	return removed
}

// Len reports the number of tracked chat members.
func (l *Limiter) Len() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.windows)
		s.mu.Unlock()
	}
	return n
}

func (l *Limiter) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return nil
	}
	interval := l.cfg.SweepInterval
	if interval <= 0 {
		interval = l.cfg.Window
	}
	go func() {
		defer close(l.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.stop:
				return
			case now := <-ticker.C:
				if n := l.Sweep(now); n > 0 {
					getLogEntry().WithField("removed", n).Trace("swept idle windows")
				}
			}
		}
	}()
	return nil
}

func (l *Limiter) Stop(ctx context.Context) error {
	l.stopOnce.Do(func() { close(l.stop) })
	if !l.started.Load() {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
