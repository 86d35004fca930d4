package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/warden/internal/bot"
	"github.com/iamwavecut/warden/internal/config"
	"github.com/iamwavecut/warden/internal/db"
	"github.com/iamwavecut/warden/internal/policy"
)

const maxLastDecisions = 1000

type (
	Evaluator interface {
		Evaluate(ctx context.Context, ev policy.MessageEvent) policy.Decision
	}

	Enforcer interface {
		Execute(ctx context.Context, d policy.Decision, ev policy.MessageEvent) error
	}

	// Telegram is the subset of platform operations the moderator calls directly.
	Telegram interface {
		DeleteMessage(ctx context.Context, chatID int64, messageID int) error
		GetAdmin(ctx context.Context, chatID, userID int64) (*api.ChatMember, error)
		ForgetChatAdmins(chatID int64)
		GetStickerSetID(sticker *api.Sticker) string
		StickerSetExists(ctx context.Context, name string) (bool, error)
		Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	}

	Config struct {
		BotUserName      string
		DefaultSpamLimit int
		SpamWindow       time.Duration
		Clear            config.Clear
	}

	decisionKey struct {
		chatID    int64
		messageID int
	}

	// Moderator evaluates group messages against the chat policy and serves moderation commands.
	Moderator struct {
		s        bot.Service
		store    db.Client
		tg       Telegram
		engine   Evaluator
		executor Enforcer
		history  *History
		config   Config
		commands map[string]command

		mu            sync.Mutex
		lastDecisions map[decisionKey]policy.Decision
		decisionOrder []decisionKey
	}
)

func NewModerator(s bot.Service, tg Telegram, engine Evaluator, executor Enforcer, history *History, cfg Config) *Moderator {
	m := &Moderator{
		s:             s,
		store:         s.GetDB(),
		tg:            tg,
		engine:        engine,
		executor:      executor,
		history:       history,
		config:        cfg,
		lastDecisions: make(map[decisionKey]policy.Decision),
		decisionOrder: make([]decisionKey, 0, maxLastDecisions),
	}
	m.commands = m.commandTable()
	m.getLogEntry().Debug("created new moderator")
	return m
}

func (m *Moderator) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	if u == nil {
		return false, errors.New("nil update")
	}
	if u.Message == nil || chat == nil || user == nil {
		return true, nil
	}

	msg := u.Message
	if cmd, ok := m.lookupCommand(msg); ok {
		m.runCommand(ctx, cmd, msg, chat, user)
		return true, nil
	}
	if chat.IsPrivate() {
		return true, nil
	}
	m.handleMessage(ctx, msg, chat, user)
	return true, nil
}

// lookupCommand resolves the known command the message invokes. Commands
// addressed to another bot are treated as plain messages.
func (m *Moderator) lookupCommand(msg *api.Message) (command, bool) {
	if !msg.IsCommand() {
		return command{}, false
	}
	if _, target, found := strings.Cut(msg.CommandWithAt(), "@"); found && target != "" &&
		m.config.BotUserName != "" && !strings.EqualFold(target, m.config.BotUserName) {
		return command{}, false
	}
	cmd, ok := m.commands[strings.ToLower(msg.Command())]
	return cmd, ok
}

func (m *Moderator) getLogEntry() *log.Entry {
	return log.WithField("object", "Moderator")
}

func (m *Moderator) storeDecision(chatID int64, messageID int, d policy.Decision) {
	key := decisionKey{chatID: chatID, messageID: messageID}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lastDecisions[key]; !ok {
		m.decisionOrder = append(m.decisionOrder, key)
	}
	m.lastDecisions[key] = d
	if len(m.decisionOrder) > maxLastDecisions {
		oldest := m.decisionOrder[0]
		m.decisionOrder = m.decisionOrder[1:]
		delete(m.lastDecisions, oldest)
	}
}

func (m *Moderator) LastDecision(chatID int64, messageID int) (policy.Decision, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.lastDecisions[decisionKey{chatID: chatID, messageID: messageID}]
	return d, ok
}
