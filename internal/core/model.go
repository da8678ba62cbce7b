package core

import (
	"time"
)

// SpamLabel is the binary output of the spam classifier
type SpamLabel string

const (
	LabelSpam    SpamLabel = "Spam"
	LabelNotSpam SpamLabel = "Not Spam"
)

// Urgency levels the dashboard knows how to filter and color
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// UrgencyLevels lists the filterable urgency values in display order
var UrgencyLevels = []string{UrgencyHigh, UrgencyMedium, UrgencyLow}

// SpamLabelFor maps a binary verdict onto its display label
func SpamLabelFor(isSpam bool) SpamLabel {
	if isSpam {
		return LabelSpam
	}
	return LabelNotSpam
}

// EmailRecord is one classified submission held by the session store.
// Records are immutable once appended.
type EmailRecord struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Spam         SpamLabel `json:"spam"`
	Category     string    `json:"category"`
	Urgency      string    `json:"urgency"`
	ModelUsed    string    `json:"model_used"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// IsSpam reports whether the record carries the spam label
func (r EmailRecord) IsSpam() bool {
	return r.Spam == LabelSpam
}

// Prediction is the combined output of the three classifiers
type Prediction struct {
	Spam      SpamLabel
	Category  string
	Urgency   string
	ModelUsed string
	Cached    bool
}

// CacheEntry is a memoized prediction keyed by a digest of the normalized text
type CacheEntry struct {
	Key       string
	Spam      SpamLabel
	Category  string
	Urgency   string
	ModelUsed string
	CreatedAt time.Time
	ExpiresAt time.Time
}
