package provider

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// SummaryMaxLen is the clamp applied to packed summaries so the capsule
// fits within the provider's file-name-prefix limits.
const SummaryMaxLen = 140

// TitleMeta is the metadata capsule embedded in a meeting's recording
// file_name_prefix: base64url-encoded JSON. Packing group and summary into
// the title avoids a database for the simple case.
type TitleMeta struct {
	GroupID string `json:"g,omitempty"`
	Summary string `json:"s,omitempty"`
}

// PackTitle encodes the group id and summary into a capsule string. When
// neither is set the trimmed title itself is returned unpacked.
func PackTitle(title, groupID, summary string) string {
	title = strings.TrimSpace(title)
	if groupID == "" && summary == "" {
		return title
	}
	meta := TitleMeta{GroupID: groupID, Summary: TruncateSummary(summary, SummaryMaxLen)}
	raw, err := json.Marshal(meta)
	if err != nil {
		return title
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// UnpackTitle decodes a capsule back into its fields. Plain strings that
// were never packed come back with ok=false.
func UnpackTitle(stored string) (TitleMeta, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(stored, "="))
	if err != nil {
		return TitleMeta{}, false
	}
	var meta TitleMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return TitleMeta{}, false
	}
	return meta, true
}

// TruncateSummary clamps a summary to max runes.
func TruncateSummary(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
