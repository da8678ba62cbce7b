package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/email-triage-dashboard/internal/metrics"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var (
	// ErrMissingSubjectOrBody rejects submissions with a blank subject or body
	ErrMissingSubjectOrBody = errors.New("please enter both subject and body")
	// ErrRecordNotFound is returned when a position is outside the session
	ErrRecordNotFound = errors.New("email record not found")
)

// ClassificationService normalizes, classifies and records submitted emails
type ClassificationService struct {
	classifiers  ClassifierSet
	cache        CacheRepository
	store        RecordStore
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	now          func() time.Time
}

// NewClassificationService creates a new classification service
func NewClassificationService(
	classifiers ClassifierSet,
	cache CacheRepository,
	store RecordStore,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *ClassificationService {
	return &ClassificationService{
		classifiers:  classifiers,
		cache:        cache,
		store:        store,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

// ModelName returns the name of the classifier backend in use
func (s *ClassificationService) ModelName() string {
	return s.classifiers.Name
}

// Submit validates, classifies and appends one email to the session
func (s *ClassificationService) Submit(ctx context.Context, subject, body string) (*EmailRecord, int, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		metrics.IncrementSubmissionRejected()
		return nil, -1, ErrMissingSubjectOrBody
	}

	prediction, err := s.Predict(ctx, subject, body)
	if err != nil {
		return nil, -1, err
	}

	record := EmailRecord{
		ID:           ulid.Make().String(),
		Subject:      subject,
		Body:         body,
		Spam:         prediction.Spam,
		Category:     prediction.Category,
		Urgency:      prediction.Urgency,
		ModelUsed:    prediction.ModelUsed,
		ClassifiedAt: s.now(),
	}

	position, err := s.store.Append(ctx, record)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to store email record: %w", err)
	}

	metrics.IncrementEmailClassified(string(record.Spam), strings.ToLower(record.Urgency))
	s.logger.Info("Classified email",
		zap.String("id", record.ID),
		zap.Int("position", position),
		zap.String("spam", string(record.Spam)),
		zap.String("category", record.Category),
		zap.String("urgency", record.Urgency),
		zap.String("model", record.ModelUsed),
		zap.Bool("cached", prediction.Cached))

	return &record, position, nil
}

// Predict runs the three classifiers over the normalized subject and body
func (s *ClassificationService) Predict(ctx context.Context, subject, body string) (*Prediction, error) {
	text := ClassificationText(subject, body)
	key := s.cacheKey(text)

	if s.cacheEnabled {
		entry, err := s.cache.Get(ctx, key)
		if err == nil {
			metrics.IncrementCacheLookup("hit")
			s.logger.Debug("Cache hit for prediction", zap.String("key", key))
			return &Prediction{
				Spam:      entry.Spam,
				Category:  entry.Category,
				Urgency:   entry.Urgency,
				ModelUsed: entry.ModelUsed,
				Cached:    true,
			}, nil
		}
		metrics.IncrementCacheLookup("miss")
	}

	start := time.Now()
	prediction, err := s.classify(ctx, text)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordClassifyDuration(s.classifiers.Name, status, time.Since(start))
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled {
		now := s.now()
		entry := &CacheEntry{
			Key:       key,
			Spam:      prediction.Spam,
			Category:  prediction.Category,
			Urgency:   prediction.Urgency,
			ModelUsed: prediction.ModelUsed,
			CreatedAt: now,
			ExpiresAt: now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return prediction, nil
}

func (s *ClassificationService) classify(ctx context.Context, text string) (*Prediction, error) {
	isSpam, err := s.classifiers.Spam.ClassifySpam(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("spam classification failed: %w", err)
	}

	category, err := s.classifiers.Category.Predict(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("category classification failed: %w", err)
	}

	urgency, err := s.classifiers.Urgency.Predict(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("urgency classification failed: %w", err)
	}

	return &Prediction{
		Spam:      SpamLabelFor(isSpam),
		Category:  category,
		Urgency:   urgency,
		ModelUsed: s.classifiers.Name,
	}, nil
}

// cacheKey scopes the digest to the backend so switching providers never
// serves another backend's labels
func (s *ClassificationService) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(s.classifiers.Name + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Records returns every record of the session in insertion order
func (s *ClassificationService) Records(ctx context.Context) ([]EmailRecord, error) {
	return s.store.List(ctx)
}

// Record returns the record at position
func (s *ClassificationService) Record(ctx context.Context, position int) (*EmailRecord, error) {
	return s.store.Get(ctx, position)
}
