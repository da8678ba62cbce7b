package core

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// URLs end at any Unicode whitespace, not only ASCII
	urlPattern        = regexp.MustCompile(`http[^\s\x{0b}\x{1c}-\x{1f}\x{85}\p{Z}]+`)
	digitPattern      = regexp.MustCompile(`\d+`)
	nonLetterPattern  = regexp.MustCompile(`[^a-zA-Z ]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeText reduces text to lowercase ASCII letters separated by single
// spaces. URLs and digit runs are dropped before the letter filter, and tabs or
// newlines are removed by the letter filter rather than turned into spaces, which
// matches how the models' training text was cleaned.
func NormalizeText(text string) string {
	text = cases.Lower(language.Und).String(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = digitPattern.ReplaceAllString(text, "")
	text = nonLetterPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ClassificationText builds the normalized input shared by all three models
func ClassificationText(subject, body string) string {
	return NormalizeText(subject + " " + body)
}
