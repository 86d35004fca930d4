package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/iamwavecut/warden/internal/i18n"
	"github.com/iamwavecut/warden/internal/infrastructure/telegram"
)

func (m *Moderator) clearCommand(ctx context.Context, cc *commandContext) error {
	count := parseClearArgs(cc.args, m.config.Clear.DefaultCount, m.config.Clear.MaxCount)
	deleted, err := m.clear(ctx, cc, count, nil)
	if err != nil {
		return err
	}
	m.postStatus(ctx, cc, fmt.Sprintf(i18n.Get("🗑️ Deleted %d messages.", cc.lang), deleted))
	return nil
}

func (m *Moderator) clearExceptCommand(ctx context.Context, cc *commandContext) error {
	users, count := parseClearExceptArgs(cc.args, m.config.Clear.DefaultCount, m.config.Clear.MaxCount)
	if len(users) == 0 {
		return invalidInput(i18n.Get("❌ Usage: /clear_except @user1 @user2 <count>", cc.lang))
	}
	deleted, err := m.clear(ctx, cc, count, users)
	if err != nil {
		return err
	}
	mentions := make([]string, len(users))
	for i, u := range users {
		mentions[i] = "@" + u
	}
	m.postStatus(ctx, cc, fmt.Sprintf(i18n.Get("🗑️ Deleted %d messages (except from %s).", cc.lang), deleted, strings.Join(mentions, ", ")))
	return nil
}

// clear removes the command message and then up to count recent messages,
// newest first, pacing the deletions.
func (m *Moderator) clear(ctx context.Context, cc *commandContext, count int, except []string) (int, error) {
	entry := m.getLogEntry().WithFields(log.Fields{
		"method":  "clear",
		"chat_id": cc.chat.ID,
	})

	if err := m.tg.DeleteMessage(ctx, cc.chat.ID, cc.msg.MessageID); err != nil && !errors.Is(err, telegram.ErrMessageNotFound) {
		entry.WithField("error", err.Error()).Warn("cant delete command message")
	}
	m.history.Forget(cc.chat.ID, cc.msg.MessageID)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if m.config.Clear.DeleteDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(m.config.Clear.DeleteDelay), 1)
	}

	deleted := 0
	var gone []int
	for _, e := range m.history.Recent(cc.chat.ID, count, except) {
		if err := limiter.Wait(ctx); err != nil {
			m.history.Forget(cc.chat.ID, gone...)
			return deleted, errors.Wrap(err, "clear interrupted")
		}
		err := m.tg.DeleteMessage(ctx, cc.chat.ID, e.MessageID)
		switch {
		case err == nil:
			deleted++
			gone = append(gone, e.MessageID)
		case errors.Is(err, telegram.ErrMessageNotFound):
			gone = append(gone, e.MessageID)
		default:
			entry.WithFields(log.Fields{
				"message_id": e.MessageID,
				"error":      err.Error(),
			}).Warn("cant delete message")
		}
	}
	m.history.Forget(cc.chat.ID, gone...)
	entry.WithField("deleted", deleted).Info("chat cleared")
	return deleted, nil
}

// postStatus sends a standalone status message and removes it after StatusTTL.
func (m *Moderator) postStatus(ctx context.Context, cc *commandContext, text string) {
	id, err := m.tg.Reply(ctx, cc.chat.ID, 0, text)
	if err != nil {
		m.getLogEntry().WithField("error", err.Error()).Warn("cant send status")
		return
	}
	if m.config.Clear.StatusTTL <= 0 {
		return
	}
	go func() {
		timer := time.NewTimer(m.config.Clear.StatusTTL)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := m.tg.DeleteMessage(ctx, cc.chat.ID, id); err != nil && !errors.Is(err, telegram.ErrMessageNotFound) {
			m.getLogEntry().WithField("error", err.Error()).Debug("cant delete status")
		}
	}()
}
