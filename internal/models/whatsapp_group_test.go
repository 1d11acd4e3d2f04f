package models

import "testing"

func TestIsValidGroupChatID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		chatID string
		want   bool
	}{
		{"1203630254@g.us", true},
		{"120363025468972345@g.us", true},
		{"628123456789@c.us", false},
		{"@g.us", false},
		{"abc@g.us", false},
		{"1203630254@g.usx", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidGroupChatID(tt.chatID); got != tt.want {
			t.Errorf("IsValidGroupChatID(%q) = %v, want %v", tt.chatID, got, tt.want)
		}
	}
}
