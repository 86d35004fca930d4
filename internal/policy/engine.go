package policy

import (
	"context"
	"time"

	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iamwavecut/warden/internal/observability"
	"github.com/iamwavecut/warden/internal/ratelimit"
)

const tracerName = "github.com/iamwavecut/warden/internal/policy"

type Engine struct {
	settings SettingsStore
	stickers *StickerPolicy
	words    *WordFilter
	limiter  RateLimiter
	now      func() time.Time
}

func NewEngine(store Store, limiter RateLimiter) *Engine {
	return &Engine{
		settings: store,
		stickers: NewStickerPolicy(store),
		words:    NewWordFilter(store),
		limiter:  limiter,
		now:      time.Now,
	}
}

func getLogEntry() *log.Entry {
	return log.WithField("object", "policy_engine")
}

// Evaluate always yields a decision; lookup failures degrade to letting the message through.
func (e *Engine) Evaluate(ctx context.Context, ev MessageEvent) Decision {
	start := e.now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "policy.evaluate", trace.WithAttributes(
		attribute.Int64("chat_id", ev.ChatID),
		attribute.Int64("user_id", ev.UserID),
		attribute.Int("message_id", ev.MessageID),
	))
	defer span.End()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = start
	}
	d := e.evaluate(ctx, span, ev)
	d.ID = uuid.New()

	span.SetAttributes(attribute.String("outcome", d.Outcome.String()))
	observability.ObserveEvaluation(e.now().Sub(start))
	observability.RecordDecision(d.Outcome.String())
	return d
}

func (e *Engine) evaluate(ctx context.Context, span trace.Span, ev MessageEvent) Decision {
	entry := getLogEntry().WithField("chat_id", ev.ChatID).WithField("user_id", ev.UserID)

	settings, err := e.settings.GetChatSettings(ctx, ev.ChatID)
	if err != nil {
		span.SetStatus(codes.Error, "settings unavailable")
		entry.WithField("error", err.Error()).Warn("cant load chat settings, allowing message")
		return Decision{Outcome: Allow, Reason: "settings unavailable"}
	}
	if IsBypassEligible(ev, settings) {
		return Decision{Outcome: Allow, Reason: "sender bypasses chat rules"}
	}

	decision := Decision{Outcome: Allow}
	if ev.StickerSetID != "" {
		blocked, err := e.stickers.Check(ctx, ev.ChatID, ev.StickerSetID)
		switch {
		case err != nil:
			entry.WithField("error", err.Error()).Warn("cant check sticker set")
		case blocked:
			decision = Decision{
				Outcome:      DeleteStickerBlocked,
				StickerSetID: ev.StickerSetID,
				Reason:       "sticker set is blocked",
			}
		}
	}

	if decision.Outcome == Allow && ev.Text != "" {
		match, err := e.words.Check(ctx, ev.ChatID, ev.Text)
		switch {
		case err != nil:
			entry.WithField("error", err.Error()).Warn("cant check censored words")
		case match.Matched:
			decision = Decision{
				Outcome: DeleteCensored,
				Word:    match.Word,
				Reason:  "censored word",
			}
		}
	}

	if settings.AntiSpamEnabled && e.limiter != nil {
		verdict := e.limiter.RecordMessage(ev.ChatID, ev.UserID, ev.MessageID, ev.Timestamp, ratelimit.Limits{
			MaxMessages: settings.SpamLimit,
		})
		decision.Count = verdict.Count
		if verdict.IsSpam && decision.Outcome == Allow {
			decision.Outcome = DeleteSpam
			decision.MutePenalty = settings.MutePenalty.Duration()
			decision.Reason = "message rate exceeded"
			decision.Burst = verdict.Burst
		}
	}

	return decision
}
