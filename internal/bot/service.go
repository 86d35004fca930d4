package bot

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/warden/internal/db"
	"github.com/iamwavecut/warden/internal/i18n"
)

type service struct {
	bot             *api.BotAPI
	db              db.Client
	ownerID         int64
	defaultLanguage string
}

func NewService(bot *api.BotAPI, db db.Client, ownerID int64, defaultLanguage string) *service {
	return &service{
		bot:             bot,
		db:              db,
		ownerID:         ownerID,
		defaultLanguage: defaultLanguage,
	}
}

func (s *service) GetBot() *api.BotAPI {
	return s.bot
}

func (s *service) GetDB() db.Client {
	return s.db
}

// GetLanguage prefers the configured language; English when it has no translations.
func (s *service) GetLanguage(_ context.Context, _ int64, _ *api.User) string {
	if i18n.Supported(s.defaultLanguage) {
		return s.defaultLanguage
	}
	return "en"
}

func (s *service) IsBotOwner(userID int64) bool {
	return s.ownerID != 0 && userID == s.ownerID
}
