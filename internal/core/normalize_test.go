package core

import (
	"regexp"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \t\n ", ""},
		{"lowercases", "Hello World", "hello world"},
		{"strips urls", "see https://example.com/a?b=1 now", "see now"},
		{"url ends at nbsp", "see http://x.com\u00a0offer now", "see offer now"},
		{"url ends at ideographic space", "see http://x.com\u3000offer now", "see offer now"},
		{"url ends at vertical tab", "see http://x.com\voffer now", "see offer now"},
		{"strips digits", "call 555 1234 today", "call today"},
		{"strips punctuation", "win!!! a $prize...", "win a prize"},
		{"collapses spaces", "a    b  c", "a b c"},
		{"newline joins words", "hello\nworld", "helloworld"},
		{"drops non ascii letters", "café crème", "caf crme"},
		{"digits inside words", "abc123def", "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassificationTextExample(t *testing.T) {
	got := ClassificationText("FREE MONEY NOW", "Click http://x.com/y 1234 now!!!")
	if got != "free money now click now" {
		t.Errorf("expected %q, got %q", "free money now click now", got)
	}
}

func TestNormalizeTextOutputAlphabet(t *testing.T) {
	valid := regexp.MustCompile(`^([a-z]+( [a-z]+)*)?$`)
	inputs := []string{
		"Re: Invoice #4432 — due 12/01!!",
		"URGENT\t\tplease   reply http://phish.example/login?id=9",
		"Ünïcödé ΣΙΣΥΦΟΣ 日本語 text 42",
		"   leading and trailing   ",
		"MiXeD CaSe\r\nLines\r\n",
	}
	for _, in := range inputs {
		out := NormalizeText(in)
		if !valid.MatchString(out) {
			t.Errorf("NormalizeText(%q) = %q contains characters outside lowercase words", in, out)
		}
	}
}
