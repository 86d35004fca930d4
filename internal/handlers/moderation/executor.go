// Package handlers applies policy decisions to the chat.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	wderrors "github.com/iamwavecut/warden/internal/errors"
	"github.com/iamwavecut/warden/internal/infrastructure/telegram"
	"github.com/iamwavecut/warden/internal/observability"
	"github.com/iamwavecut/warden/internal/policy"
)

const (
	actionDelete   = "delete_message"
	actionRestrict = "restrict_member"

	statusOK             = "ok"
	statusAlreadyDeleted = "already_deleted"
	statusFailed         = "failed"
	statusAbandoned      = "abandoned"
)

type (
	Platform interface {
		DeleteMessage(ctx context.Context, chatID int64, messageID int) error
		RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error
	}

	// ActionError reports a Bot API call that failed for a reason other than the target being gone.
	ActionError struct {
		Action    string
		ChatID    int64
		UserID    int64
		MessageID int
		Err       error
	}

	Executor struct {
		platform Platform
		audit    *zap.Logger
		now      func() time.Time
	}
)

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s in chat %d (user %d, message %d): %v", e.Action, e.ChatID, e.UserID, e.MessageID, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func NewExecutor(platform Platform, audit *zap.Logger) *Executor {
	if audit == nil {
		audit = zap.NewNop()
	}
	return &Executor{
		platform: platform,
		audit:    audit,
		now:      time.Now,
	}
}

func getLogEntry() *log.Entry {
	return log.WithField("object", "executor")
}

// Execute performs the side effects of d exactly once. Failures are returned, never retried.
func (e *Executor) Execute(ctx context.Context, d policy.Decision, ev policy.MessageEvent) error {
	if !d.Outcome.IsDelete() {
		return nil
	}

	var errs []error
	if err := e.deleteMessage(ctx, d, ev); err != nil {
		errs = append(errs, err)
	}
	if d.Outcome == policy.DeleteSpam {
		e.deleteBurst(ctx, d, ev)
	}
	if d.Outcome == policy.DeleteSpam && d.MutePenalty > 0 {
		if err := e.restrictSender(ctx, d, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) deleteMessage(ctx context.Context, d policy.Decision, ev policy.MessageEvent) error {
	if ctx.Err() != nil {
		e.record(actionDelete, statusAbandoned, d, ev)
		return nil
	}
	err := e.platform.DeleteMessage(ctx, ev.ChatID, ev.MessageID)
	switch {
	case err == nil:
		e.record(actionDelete, statusOK, d, ev)
		return nil
	case errors.Is(err, telegram.ErrMessageNotFound):
		e.record(actionDelete, statusAlreadyDeleted, d, ev)
		return nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		e.record(actionDelete, statusAbandoned, d, ev)
		return nil
	}
	e.record(actionDelete, statusFailed, d, ev)
	return e.actionError(actionDelete, ev, err)
}

// deleteBurst removes the earlier messages of a flood. Failures are logged only,
// the decision is carried by the triggering message.
func (e *Executor) deleteBurst(ctx context.Context, d policy.Decision, ev policy.MessageEvent) {
	for _, id := range d.Burst {
		if id == ev.MessageID {
			continue
		}
		burstEv := ev
		burstEv.MessageID = id
		_ = e.deleteMessage(ctx, d, burstEv)
	}
}

func (e *Executor) restrictSender(ctx context.Context, d policy.Decision, ev policy.MessageEvent) error {
	if ctx.Err() != nil {
		e.record(actionRestrict, statusAbandoned, d, ev)
		return nil
	}
	err := e.platform.RestrictMember(ctx, ev.ChatID, ev.UserID, e.now().Add(d.MutePenalty))
	switch {
	case err == nil:
		e.record(actionRestrict, statusOK, d, ev)
		return nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		e.record(actionRestrict, statusAbandoned, d, ev)
		return nil
	}
	e.record(actionRestrict, statusFailed, d, ev)
	return e.actionError(actionRestrict, ev, err)
}

func (e *Executor) actionError(action string, ev policy.MessageEvent, err error) error {
	if !errors.Is(err, wderrors.ErrExternalAPI) {
		err = fmt.Errorf("%w: %w", wderrors.ErrExternalAPI, err)
	}
	getLogEntry().WithFields(log.Fields{
		"action":     action,
		"chat_id":    ev.ChatID,
		"user_id":    ev.UserID,
		"message_id": ev.MessageID,
		"error":      err.Error(),
	}).Warn("moderation action failed")
	return &ActionError{
		Action:    action,
		ChatID:    ev.ChatID,
		UserID:    ev.UserID,
		MessageID: ev.MessageID,
		Err:       err,
	}
}

func (e *Executor) record(action, status string, d policy.Decision, ev policy.MessageEvent) {
	observability.RecordAction(action, status)
	fields := []zap.Field{
		zap.String("decision_id", d.ID),
		zap.String("outcome", d.Outcome.String()),
		zap.String("status", status),
		zap.Int64("chat_id", ev.ChatID),
		zap.Int64("user_id", ev.UserID),
		zap.Int("message_id", ev.MessageID),
	}
	if d.Word != "" {
		fields = append(fields, zap.String("word", d.Word))
	}
	if d.StickerSetID != "" {
		fields = append(fields, zap.String("sticker_set", d.StickerSetID))
	}
	if d.Count > 0 {
		fields = append(fields, zap.Int("count", d.Count))
	}
	if action == actionRestrict {
		fields = append(fields, zap.Duration("penalty", d.MutePenalty))
	}
	e.audit.Info(action, fields...)
}
