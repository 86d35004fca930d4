package permissions

import (
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"
)

func TestCanModerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		member    *api.ChatMember
		admin     bool
		moderator bool
	}{
		{name: "nil", member: nil},
		{name: "plain member", member: &api.ChatMember{Status: "member"}},
		{name: "creator", member: &api.ChatMember{Status: "creator"}, admin: true, moderator: true},
		{name: "admin without delete", member: &api.ChatMember{Status: "administrator"}, admin: true},
		{
			name:      "admin with delete",
			member:    &api.ChatMember{Status: "administrator", CanDeleteMessages: true},
			admin:     true,
			moderator: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsChatAdmin(tt.member); got != tt.admin {
				t.Fatalf("IsChatAdmin = %v, want %v", got, tt.admin)
			}
			if got := CanModerate(tt.member); got != tt.moderator {
				t.Fatalf("CanModerate = %v, want %v", got, tt.moderator)
			}
		})
	}
}
