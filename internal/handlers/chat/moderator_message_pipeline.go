package handlers

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/warden/internal/bot"
	"github.com/iamwavecut/warden/internal/policy"
	"github.com/iamwavecut/warden/internal/policy/permissions"
)

func (m *Moderator) handleMessage(ctx context.Context, msg *api.Message, chat *api.Chat, user *api.User) {
	entry := m.getLogEntry().WithFields(log.Fields{
		"method":     "handleMessage",
		"chat_id":    chat.ID,
		"user_id":    user.ID,
		"user":       bot.GetUN(user),
		"message_id": msg.MessageID,
	})

	if isLinkedChannelAutoForward(msg) {
		m.storeDecision(chat.ID, msg.MessageID, policy.Decision{Outcome: policy.Allow, Reason: "linked channel post"})
		return
	}

	ev := policy.MessageEvent{
		ChatID:       chat.ID,
		UserID:       senderID(msg, user),
		MessageID:    msg.MessageID,
		IsBotOwner:   m.s.IsBotOwner(user.ID),
		Timestamp:    time.Unix(int64(msg.Date), 0),
		Text:         bot.MessageText(msg),
		StickerSetID: m.tg.GetStickerSetID(msg.Sticker),
	}
	if msg.Date == 0 {
		ev.Timestamp = time.Now()
	}

	if !ev.IsBotOwner {
		isAdmin, err := m.isSenderAdmin(ctx, msg, chat, user)
		if err != nil {
			entry.WithField("error", err.Error()).Warn("admin lookup failed, treating sender as member")
		}
		ev.IsAdmin = isAdmin
	}

	d := m.engine.Evaluate(ctx, ev)
	m.storeDecision(chat.ID, msg.MessageID, d)
	if !d.Outcome.IsDelete() {
		return
	}

	if err := m.executor.Execute(ctx, d, ev); err != nil {
		entry.WithField("error", err.Error()).Error("moderation action failed")
		return
	}
	m.history.Forget(chat.ID, append([]int{msg.MessageID}, d.Burst...)...)
}

// isSenderAdmin treats anonymous administrators posting on behalf of the chat as admins.
func (m *Moderator) isSenderAdmin(ctx context.Context, msg *api.Message, chat *api.Chat, user *api.User) (bool, error) {
	if msg.SenderChat != nil && msg.SenderChat.ID == chat.ID {
		return true, nil
	}
	member, err := m.tg.GetAdmin(ctx, chat.ID, user.ID)
	if err != nil {
		return false, err
	}
	return permissions.IsChatAdmin(member), nil
}

// senderID keys messages posted on behalf of a channel by the channel itself,
// since they all share one placeholder user.
func senderID(msg *api.Message, user *api.User) int64 {
	if msg.SenderChat != nil {
		return msg.SenderChat.ID
	}
	return user.ID
}

func isLinkedChannelAutoForward(msg *api.Message) bool {
	if msg == nil || !msg.IsAutomaticForward || msg.SenderChat == nil {
		return false
	}
	return msg.SenderChat.Type == "channel"
}
