package handlers

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	wderrors "github.com/iamwavecut/warden/internal/errors"
	"github.com/iamwavecut/warden/internal/i18n"
	"github.com/iamwavecut/warden/internal/policy/permissions"
)

type (
	access int

	command struct {
		access    access
		groupOnly bool
		run       func(ctx context.Context, cc *commandContext) error
	}

	// usageError carries the usage text shown for invalid command arguments.
	usageError struct {
		usage string
	}

	commandContext struct {
		msg  *api.Message
		chat *api.Chat
		user *api.User
		lang string
		args string
	}
)

var (
	errOwnerOnly    = errors.WithMessage(wderrors.ErrUnauthorized, "bot owner only")
	errNotModerator = errors.WithMessage(wderrors.ErrUnauthorized, "admin with delete permission required")
)

func (e *usageError) Error() string {
	return "invalid command arguments"
}

func (e *usageError) Unwrap() error {
	return wderrors.ErrInvalidInput
}

func invalidInput(usage string) error {
	return &usageError{usage: usage}
}

const (
	accessAnyone access = iota
	accessAdminOrOwner
	accessOwner
)

func (m *Moderator) commandTable() map[string]command {
	return map[string]command{
		"start": {run: m.startCommand},
		"help":  {run: m.helpCommand},
		"ping":  {run: m.pingCommand},

		"block":   {access: accessAdminOrOwner, groupOnly: true, run: m.blockCommand},
		"unblock": {access: accessAdminOrOwner, groupOnly: true, run: m.unblockCommand},
		"list":    {access: accessAdminOrOwner, groupOnly: true, run: m.listCommand},

		"censor":      {access: accessAdminOrOwner, groupOnly: true, run: m.censorCommand},
		"uncensor":    {access: accessAdminOrOwner, groupOnly: true, run: m.uncensorCommand},
		"censor_list": {access: accessAdminOrOwner, groupOnly: true, run: m.censorListCommand},

		"clear":        {access: accessAdminOrOwner, groupOnly: true, run: m.clearCommand},
		"clear_except": {access: accessAdminOrOwner, groupOnly: true, run: m.clearExceptCommand},

		"antispam_enable":  {access: accessAdminOrOwner, groupOnly: true, run: m.antiSpamEnableCommand},
		"antispam_disable": {access: accessAdminOrOwner, groupOnly: true, run: m.antiSpamDisableCommand},
		"antispam_limit":   {access: accessAdminOrOwner, groupOnly: true, run: m.antiSpamLimitCommand},
		"antispam_penalty": {access: accessAdminOrOwner, groupOnly: true, run: m.antiSpamPenaltyCommand},
		"decision":         {access: accessAdminOrOwner, groupOnly: true, run: m.decisionCommand},

		"admins_enable":  {access: accessOwner, groupOnly: true, run: m.adminsEnableCommand},
		"admins_disable": {access: accessOwner, groupOnly: true, run: m.adminsDisableCommand},
	}
}

func (m *Moderator) runCommand(ctx context.Context, cmd command, msg *api.Message, chat *api.Chat, user *api.User) {
	cc := &commandContext{
		msg:  msg,
		chat: chat,
		user: user,
		lang: m.s.GetLanguage(ctx, chat.ID, user),
		args: msg.CommandArguments(),
	}
	entry := m.getLogEntry().WithFields(log.Fields{
		"method":  "runCommand",
		"command": msg.Command(),
		"chat_id": chat.ID,
		"user_id": user.ID,
	})

	if cmd.groupOnly && chat.IsPrivate() {
		m.reply(ctx, cc, i18n.Get("This command can only be used in groups", cc.lang))
		return
	}

	if err := m.authorize(ctx, cmd.access, chat, user); err != nil {
		switch {
		case errors.Is(err, errOwnerOnly):
			m.reply(ctx, cc, i18n.Get("❌ This command is owner-only.", cc.lang))
		case errors.Is(err, errNotModerator):
			m.reply(ctx, cc, i18n.Get("❌ You need to be an admin with message deletion permission.", cc.lang))
		default:
			entry.WithField("error", err.Error()).Error("permission check failed")
			m.reply(ctx, cc, i18n.Get("❌ An error occurred while processing your command.", cc.lang))
		}
		return
	}

	err := cmd.run(ctx, cc)
	var usage *usageError
	switch {
	case err == nil:
	case errors.As(err, &usage):
		entry.WithField("error", err.Error()).Debug("rejected command arguments")
		m.reply(ctx, cc, usage.usage)
	default:
		entry.WithField("error", err.Error()).Error("command failed")
		m.reply(ctx, cc, i18n.Get("❌ An error occurred while processing your command.", cc.lang))
	}
}

// authorize returns an error wrapping ErrUnauthorized when user may not run a command of the given access level.
func (m *Moderator) authorize(ctx context.Context, level access, chat *api.Chat, user *api.User) error {
	switch level {
	case accessOwner:
		if !m.s.IsBotOwner(user.ID) {
			return errOwnerOnly
		}
	case accessAdminOrOwner:
		allowed, err := m.isAdminOrOwner(ctx, chat, user)
		if err != nil {
			return err
		}
		if !allowed {
			return errNotModerator
		}
	}
	return nil
}

func (m *Moderator) isAdminOrOwner(ctx context.Context, chat *api.Chat, user *api.User) (bool, error) {
	if m.s.IsBotOwner(user.ID) {
		return true, nil
	}
	member, err := m.tg.GetAdmin(ctx, chat.ID, user.ID)
	if err != nil {
		return false, err
	}
	return permissions.CanModerate(member), nil
}

// reply answers the command message; delivery failures are only logged.
func (m *Moderator) reply(ctx context.Context, cc *commandContext, text string) int {
	id, err := m.tg.Reply(ctx, cc.chat.ID, cc.msg.MessageID, text)
	if err != nil {
		m.getLogEntry().WithFields(log.Fields{
			"chat_id": cc.chat.ID,
			"error":   err.Error(),
		}).Warn("cant send reply")
		return 0
	}
	return id
}
