package dashboard

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mikey/email-triage-dashboard/internal/core"
)

// Tag colors of the detail panel
const (
	SpamColor            = "#e74c3c"
	NotSpamColor         = "#2ecc71"
	CategoryColor        = "#6c5ce7"
	FallbackUrgencyColor = "#7f8c8d"
)

var urgencyColors = map[string]string{
	core.UrgencyHigh:   "#e74c3c",
	core.UrgencyMedium: "#f39c12",
	core.UrgencyLow:    "#3498db",
}

// Tag is a colored label rendered next to a record
type Tag struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// SpamTag is red for spam and green otherwise
func SpamTag(label core.SpamLabel) Tag {
	if label == core.LabelSpam {
		return Tag{Text: string(label), Color: SpamColor}
	}
	return Tag{Text: string(label), Color: NotSpamColor}
}

// CategoryTag always uses the category color
func CategoryTag(category string) Tag {
	return Tag{Text: category, Color: CategoryColor}
}

// UrgencyColor maps an urgency level onto its color, case-insensitively
func UrgencyColor(urgency string) string {
	if color, ok := urgencyColors[strings.ToLower(urgency)]; ok {
		return color
	}
	return FallbackUrgencyColor
}

// UrgencyTag shows the capitalized urgency in its level color
func UrgencyTag(urgency string) Tag {
	return Tag{Text: Capitalize(urgency), Color: UrgencyColor(urgency)}
}

// Tags returns the spam, category and urgency tags of a record
func Tags(rec core.EmailRecord) []Tag {
	return []Tag{
		SpamTag(rec.Spam),
		CategoryTag(rec.Category),
		UrgencyTag(rec.Urgency),
	}
}

// Capitalize upper-cases the first rune and lower-cases the rest
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
