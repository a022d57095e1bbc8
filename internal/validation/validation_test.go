package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Friday Sync", "Friday Sync"},
		{"trims whitespace", "  hello  ", "hello"},
		{"strips angle brackets", "a<script>b</script>c", "ascriptb/scriptc"},
		{"strips control chars", "a\x00b\tc\nd", "abcd"},
		{"keeps unicode", "café ☕", "café ☕"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeInput(tt.in))
		})
	}
}

func TestValidateRoomName(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		ok     bool
		reason string
	}{
		{"simple", "standup", true, ""},
		{"spaced name", "Friday Sync", true, ""},
		{"hyphens and asterisks", "Game Night *live*", true, ""},
		{"leading hyphen", "-standup", true, ""},
		{"too short", "ab", false, "room name too short"},
		{"too long", strings.Repeat("a", RoomNameMaxLen+1), false, "room name too long"},
		{"punctuation rejected", "team.sync_'24", false, "room name contains invalid characters"},
		{"unicode letters rejected", "réunion", false, "room name contains invalid characters"},
		{"empty", "", false, "room name too short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRoomName(tt.in)
			assert.Equal(t, tt.ok, got.IsValid)
			if !tt.ok {
				assert.Equal(t, tt.reason, got.Reason)
			}
		})
	}
}

func TestValidateDescription(t *testing.T) {
	assert.True(t, ValidateDescription("").IsValid)
	assert.True(t, ValidateDescription(strings.Repeat("x", DescriptionMaxLen)).IsValid)
	assert.False(t, ValidateDescription(strings.Repeat("x", DescriptionMaxLen+1)).IsValid)
}
