package policy

import "github.com/iamwavecut/warden/internal/db"

// IsBypassEligible reports whether the sender is exempt from every chat rule.
func IsBypassEligible(ev MessageEvent, settings *db.ChatSettings) bool {
	if ev.IsBotOwner {
		return true
	}
	return ev.IsAdmin && settings != nil && settings.AdminsBypassEnabled
}
