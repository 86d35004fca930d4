package handlers

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
)

type adminCache interface {
	ForgetChatAdmins(chatID int64)
}

// Tracker remembers recent group messages for /clear and drops cached
// admin lists when membership changes.
type Tracker struct {
	history *History
	admins  adminCache
}

func NewTracker(history *History, admins adminCache) *Tracker {
	return &Tracker{history: history, admins: admins}
}

func (t *Tracker) Handle(_ context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil || chat == nil {
		return true, nil
	}

	if u.ChatMember != nil || u.MyChatMember != nil {
		log.WithFields(log.Fields{"object": "Tracker", "chat_id": chat.ID}).Trace("chat membership changed")
		t.admins.ForgetChatAdmins(chat.ID)
		return true, nil
	}

	msg := u.Message
	if msg == nil || chat.IsPrivate() {
		return true, nil
	}
	e := HistoryEntry{ChatID: chat.ID, MessageID: msg.MessageID}
	if user != nil {
		e.UserID = user.ID
		e.Username = user.UserName
	}
	if msg.SenderChat != nil {
		e.Username = msg.SenderChat.UserName
	}
	t.history.Add(e)
	return true, nil
}
