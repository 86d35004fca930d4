package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/iamwavecut/warden/internal/db"
	"github.com/iamwavecut/warden/internal/i18n"
)

func (m *Moderator) blockCommand(ctx context.Context, cc *commandContext) error {
	name := extractSetName(cc.args)
	if name == "" {
		return invalidInput(i18n.Get("❌ Usage: /block <sticker_set_link_or_name>", cc.lang))
	}

	exists, err := m.tg.StickerSetExists(ctx, name)
	if err != nil {
		return errors.Wrap(err, "check sticker set")
	}
	if !exists {
		m.reply(ctx, cc, fmt.Sprintf(i18n.Get("❌ Sticker set %s does not exist.", cc.lang), name))
		return nil
	}

	added, err := m.store.AddBlockedStickerSet(ctx, cc.chat.ID, name)
	if err != nil {
		return errors.Wrap(err, "block sticker set")
	}
	if !added {
		m.reply(ctx, cc, fmt.Sprintf(i18n.Get("⚠️ Sticker set %s is already blocked.", cc.lang), name))
		return nil
	}
	m.reply(ctx, cc, fmt.Sprintf(i18n.Get("✅ Blocked sticker set: %s", cc.lang), name))
	return nil
}

func (m *Moderator) unblockCommand(ctx context.Context, cc *commandContext) error {
	arg := strings.TrimSpace(cc.args)
	if arg == "" {
		return invalidInput(i18n.Get("❌ Usage: /unblock <sticker_set_name|all>", cc.lang))
	}

	if strings.EqualFold(arg, "all") {
		n, err := m.store.ClearBlockedStickerSets(ctx, cc.chat.ID)
		if err != nil {
			return errors.Wrap(err, "clear sticker sets")
		}
		if n == 0 {
			m.reply(ctx, cc, i18n.Get("⚠️ No sticker sets to unblock.", cc.lang))
			return nil
		}
		m.reply(ctx, cc, i18n.Get("✅ All blocked sticker sets removed.", cc.lang))
		return nil
	}

	name := extractSetName(arg)
	removed, err := m.store.RemoveBlockedStickerSet(ctx, cc.chat.ID, name)
	if err != nil {
		return errors.Wrap(err, "unblock sticker set")
	}
	if !removed {
		m.reply(ctx, cc, fmt.Sprintf(i18n.Get("⚠️ Sticker set %s is not blocked.", cc.lang), name))
		return nil
	}
	m.reply(ctx, cc, fmt.Sprintf(i18n.Get("✅ Unblocked sticker set: %s", cc.lang), name))
	return nil
}

func (m *Moderator) listCommand(ctx context.Context, cc *commandContext) error {
	sets, err := m.store.ListBlockedStickerSets(ctx, cc.chat.ID)
	if err != nil {
		return errors.Wrap(err, "list sticker sets")
	}
	if len(sets) == 0 {
		m.reply(ctx, cc, i18n.Get("📋 No sticker sets are blocked in this chat.", cc.lang))
		return nil
	}

	var b strings.Builder
	b.WriteString(i18n.Get("🚫 Blocked sticker sets:", cc.lang))
	for _, set := range sets {
		b.WriteString("\n• ")
		b.WriteString(set)
	}
	m.reply(ctx, cc, b.String())
	return nil
}

func (m *Moderator) censorCommand(ctx context.Context, cc *commandContext) error {
	entries := parseCensorArgs(cc.args)
	if len(entries) == 0 {
		return invalidInput(i18n.Get(`❌ Usage: /censor word1, word2 or /censor "exact phrase"`, cc.lang))
	}

	var added []string
	for _, e := range entries {
		ok, err := m.store.AddCensoredWord(ctx, cc.chat.ID, e.Word, e.Mode)
		if err != nil {
			return errors.Wrap(err, "censor word")
		}
		if ok {
			added = append(added, e.Word)
		}
	}
	if len(added) == 0 {
		m.reply(ctx, cc, i18n.Get("⚠️ These words are already censored.", cc.lang))
		return nil
	}
	m.reply(ctx, cc, fmt.Sprintf(i18n.Get("✅ Censored: %s", cc.lang), strings.Join(added, ", ")))
	return nil
}

func (m *Moderator) uncensorCommand(ctx context.Context, cc *commandContext) error {
	word, all := parseUncensorArg(cc.args)
	if all {
		n, err := m.store.ClearCensoredWords(ctx, cc.chat.ID)
		if err != nil {
			return errors.Wrap(err, "clear censored words")
		}
		if n == 0 {
			m.reply(ctx, cc, i18n.Get("⚠️ No censored words to remove.", cc.lang))
			return nil
		}
		m.reply(ctx, cc, i18n.Get("✅ All censored words removed.", cc.lang))
		return nil
	}
	if word == "" {
		return invalidInput(i18n.Get(`❌ Usage: /uncensor <word|"phrase"|all>`, cc.lang))
	}

	removed, err := m.store.RemoveCensoredWord(ctx, cc.chat.ID, word)
	if err != nil {
		return errors.Wrap(err, "uncensor word")
	}
	if !removed {
		m.reply(ctx, cc, fmt.Sprintf(i18n.Get("⚠️ %s is not censored.", cc.lang), word))
		return nil
	}
	m.reply(ctx, cc, fmt.Sprintf(i18n.Get("✅ Removed censored word: %s", cc.lang), word))
	return nil
}

func (m *Moderator) censorListCommand(ctx context.Context, cc *commandContext) error {
	words, err := m.store.ListCensoredWords(ctx, cc.chat.ID)
	if err != nil {
		return errors.Wrap(err, "list censored words")
	}
	if len(words) == 0 {
		m.reply(ctx, cc, i18n.Get("📋 No words are censored in this chat.", cc.lang))
		return nil
	}

	strict, smart := i18n.Get("(strict)", cc.lang), i18n.Get("(smart)", cc.lang)
	var b strings.Builder
	b.WriteString(i18n.Get("🛡️ Censored words:", cc.lang))
	for _, w := range words {
		label := smart
		if w.MatchMode == db.MatchStrict {
			label = strict
		}
		fmt.Fprintf(&b, "\n• %s %s", w.Word, label)
	}
	m.reply(ctx, cc, b.String())
	return nil
}
