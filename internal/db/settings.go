package db

// DefaultSettings is what a chat without stored rows reads as.
func DefaultSettings(chatID int64) *ChatSettings {
	return &ChatSettings{
		ChatID:              chatID,
		AntiSpamEnabled:     false,
		AdminsBypassEnabled: true,
	}
}
