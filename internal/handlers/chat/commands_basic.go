package handlers

import (
	"context"
	"strings"

	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/warden/internal/i18n"
)

func (m *Moderator) startCommand(ctx context.Context, cc *commandContext) error {
	lines := []string{
		i18n.Get("👋 Hi! I keep group chats clean.", cc.lang),
		i18n.Get("Add me to a group as an admin with permission to delete messages and restrict members.", cc.lang),
		i18n.Get("Send /help to see what I can do.", cc.lang),
	}
	m.reply(ctx, cc, strings.Join(lines, "\n"))
	return nil
}

func (m *Moderator) helpCommand(ctx context.Context, cc *commandContext) error {
	window := int(m.config.SpamWindow.Seconds())
	lines := []string{
		i18n.Get("🛡️ Moderation commands (admins only):", cc.lang),
		"",
		i18n.Get("Stickers:", cc.lang),
		"/block <link|name> - " + i18n.Get("block a sticker set", cc.lang),
		"/unblock <name|all> - " + i18n.Get("unblock a sticker set", cc.lang),
		"/list - " + i18n.Get("show blocked sticker sets", cc.lang),
		"",
		i18n.Get("Words:", cc.lang),
		`/censor word1, word2 "exact phrase" - ` + i18n.Get("censor words", cc.lang),
		"/uncensor <word|all> - " + i18n.Get("remove a censored word", cc.lang),
		"/censor_list - " + i18n.Get("show censored words", cc.lang),
		"",
		i18n.Get("Cleanup:", cc.lang),
		"/clear [N] - " + i18n.Get("delete the last N messages", cc.lang),
		"/clear_except @user N - " + i18n.Get("delete the last N messages except from the given users", cc.lang),
		"",
		i18n.Get("Anti-Spam:", cc.lang),
		"/antispam_enable, /antispam_disable",
		"/antispam_limit N - " + i18n.Get("messages allowed per window", cc.lang),
		"/antispam_penalty MIN - " + i18n.Get("mute spammers for MIN minutes, 0 to disable", cc.lang),
		tool.ExecTemplate(i18n.Get("Messages beyond {{ .limit }} in {{ .window }} seconds are deleted.", cc.lang), map[string]any{
			"limit":  m.config.DefaultSpamLimit,
			"window": window,
		}),
		"",
		"/decision - " + i18n.Get("explain what happened to the replied message", cc.lang),
		"/admins_enable, /admins_disable - " + i18n.Get("let admins bypass the filters (bot owner only)", cc.lang),
	}
	m.reply(ctx, cc, strings.Join(lines, "\n"))
	return nil
}

func (m *Moderator) pingCommand(ctx context.Context, cc *commandContext) error {
	m.reply(ctx, cc, i18n.Get("Pong!", cc.lang))
	return nil
}
