package permissions

import api "github.com/OvyFlash/telegram-bot-api"

func IsChatAdmin(member *api.ChatMember) bool {
	if member == nil {
		return false
	}
	return member.IsCreator() || member.IsAdministrator()
}

// CanModerate reports whether the member may run moderation commands: the chat
// creator, or an administrator allowed to delete messages.
func CanModerate(member *api.ChatMember) bool {
	if member == nil {
		return false
	}
	if member.IsCreator() {
		return true
	}
	return member.IsAdministrator() && member.CanDeleteMessages
}
