// Package validation sanitizes and validates user-supplied meeting fields
// before they reach the provider API.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	RoomNameMinLen    = 3
	RoomNameMaxLen    = 50
	DescriptionMaxLen = 500
)

// Room names allow letters, digits, spaces, hyphens and asterisks, the
// charset meeting links have always accepted.
var roomNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 \-*]+$`)

// Result carries the outcome of a validation check.
type Result struct {
	IsValid bool
	Reason  string
}

func valid() Result           { return Result{IsValid: true} }
func invalid(r string) Result { return Result{Reason: r} }

// SanitizeInput strips control characters and angle brackets and collapses
// surrounding whitespace. It is intentionally blunt: anything that looks
// like markup is removed rather than escaped.
func SanitizeInput(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) || r == '<' || r == '>' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// ValidateRoomName checks the sanitized room name against length and
// charset rules.
func ValidateRoomName(name string) Result {
	n := len([]rune(name))
	if n < RoomNameMinLen {
		return invalid("room name too short")
	}
	if n > RoomNameMaxLen {
		return invalid("room name too long")
	}
	if !roomNamePattern.MatchString(name) {
		return invalid("room name contains invalid characters")
	}
	return valid()
}

// ValidateDescription checks the sanitized description. Empty is fine.
func ValidateDescription(desc string) Result {
	if len([]rune(desc)) > DescriptionMaxLen {
		return invalid("description too long")
	}
	return valid()
}
