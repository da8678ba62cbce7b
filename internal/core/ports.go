package core

import (
	"context"
)

// SpamClassifier is a binary classifier over normalized email text
type SpamClassifier interface {
	// ClassifySpam reports whether the text is spam
	ClassifySpam(ctx context.Context, text string) (bool, error)
}

// LabelClassifier is a multi-class classifier over normalized email text
type LabelClassifier interface {
	// Predict returns the predicted class label
	Predict(ctx context.Context, text string) (string, error)
}

// ClassifierSet bundles the three models the service consults
type ClassifierSet struct {
	Name     string
	Spam     SpamClassifier
	Category LabelClassifier
	Urgency  LabelClassifier
}

// LLMClient sends a single prompt to a hosted model and returns its raw reply
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CacheRepository defines the interface for caching predictions
type CacheRepository interface {
	// Get retrieves a cached prediction by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// RecordStore holds the classified records of the running session
type RecordStore interface {
	// Append adds a record at the end and returns its position
	Append(ctx context.Context, record EmailRecord) (int, error)

	// List returns all records in insertion order
	List(ctx context.Context) ([]EmailRecord, error)

	// Get returns the record at position
	Get(ctx context.Context, position int) (*EmailRecord, error)

	// Len returns the number of stored records
	Len(ctx context.Context) (int, error)
}
