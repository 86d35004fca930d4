package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/iamwavecut/warden/internal/i18n"
)

const maxPenaltyMinutes = 366 * 24 * 60

func (m *Moderator) antiSpamEnableCommand(ctx context.Context, cc *commandContext) error {
	if err := m.store.SetAntiSpam(ctx, cc.chat.ID, true); err != nil {
		return errors.Wrap(err, "enable anti-spam")
	}
	settings, err := m.store.GetChatSettings(ctx, cc.chat.ID)
	if err != nil {
		return errors.Wrap(err, "get chat settings")
	}
	limit := settings.SpamLimit
	if limit <= 0 {
		limit = m.config.DefaultSpamLimit
	}
	m.reply(ctx, cc, fmt.Sprintf(i18n.Get("🚨 Anti-Spam enabled (%d messages / %d seconds).", cc.lang), limit, int(m.config.SpamWindow.Seconds())))
	return nil
}

func (m *Moderator) antiSpamDisableCommand(ctx context.Context, cc *commandContext) error {
	if err := m.store.SetAntiSpam(ctx, cc.chat.ID, false); err != nil {
		return errors.Wrap(err, "disable anti-spam")
	}
	m.reply(ctx, cc, i18n.Get("😴 Anti-Spam disabled.", cc.lang))
	return nil
}

func (m *Moderator) antiSpamLimitCommand(ctx context.Context, cc *commandContext) error {
	n, err := parseBoundedInt(cc.args, 0)
	if err != nil {
		return invalidInput(i18n.Get("❌ Usage: /antispam_limit <messages>, 0 restores the default", cc.lang))
	}
	if err := m.store.SetSpamLimit(ctx, cc.chat.ID, n); err != nil {
		return errors.Wrap(err, "set spam limit")
	}
	if n == 0 {
		m.reply(ctx, cc, fmt.Sprintf(i18n.Get("✅ Anti-Spam limit reset to the default of %d messages.", cc.lang), m.config.DefaultSpamLimit))
		return nil
	}
	m.reply(ctx, cc, fmt.Sprintf(i18n.Get("✅ Anti-Spam limit set to %d messages.", cc.lang), n))
	return nil
}

func (m *Moderator) antiSpamPenaltyCommand(ctx context.Context, cc *commandContext) error {
	minutes, err := parseBoundedInt(cc.args, maxPenaltyMinutes)
	if err != nil {
		return invalidInput(i18n.Get("❌ Usage: /antispam_penalty <minutes>, 0 disables muting", cc.lang))
	}
	if err := m.store.SetMutePenalty(ctx, cc.chat.ID, time.Duration(minutes)*time.Minute); err != nil {
		return errors.Wrap(err, "set mute penalty")
	}
	if minutes == 0 {
		m.reply(ctx, cc, i18n.Get("✅ Spammers will no longer be muted.", cc.lang))
		return nil
	}
	m.reply(ctx, cc, fmt.Sprintf(i18n.Get("✅ Spammers will be muted for %d minutes.", cc.lang), minutes))
	return nil
}

func (m *Moderator) adminsEnableCommand(ctx context.Context, cc *commandContext) error {
	if err := m.store.SetAdminsBypass(ctx, cc.chat.ID, true); err != nil {
		return errors.Wrap(err, "enable admins bypass")
	}
	m.reply(ctx, cc, i18n.Get("✅ Admins can now bypass sticker blocks and word filters.", cc.lang))
	return nil
}

func (m *Moderator) adminsDisableCommand(ctx context.Context, cc *commandContext) error {
	if err := m.store.SetAdminsBypass(ctx, cc.chat.ID, false); err != nil {
		return errors.Wrap(err, "disable admins bypass")
	}
	m.reply(ctx, cc, i18n.Get("✅ Admins must now follow all rules like regular users.", cc.lang))
	return nil
}

func (m *Moderator) decisionCommand(ctx context.Context, cc *commandContext) error {
	if cc.msg.ReplyToMessage == nil {
		m.reply(ctx, cc, i18n.Get("Please reply to a message to see its decision", cc.lang))
		return nil
	}
	d, ok := m.LastDecision(cc.chat.ID, cc.msg.ReplyToMessage.MessageID)
	if !ok {
		m.reply(ctx, cc, i18n.Get("No decision recorded for this message", cc.lang))
		return nil
	}

	text := fmt.Sprintf(i18n.Get("Decision: %s\nReason: %s", cc.lang), d.Outcome, d.Reason)
	if d.ID != "" {
		text += "\nID: " + d.ID
	}
	m.reply(ctx, cc, text)
	return nil
}
