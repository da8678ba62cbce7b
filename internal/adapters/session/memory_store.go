package session

import (
	"context"
	"sync"

	"github.com/mikey/email-triage-dashboard/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is the append-only record sequence of one running dashboard.
// Nothing is written to disk; a restart starts an empty session.
type MemoryStore struct {
	records []core.EmailRecord
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates an empty session store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records: make([]core.EmailRecord, 0),
		logger:  logger,
	}
}

// Append adds a record at the end of the session
func (s *MemoryStore) Append(ctx context.Context, record core.EmailRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	position := len(s.records) - 1

	s.logger.Debug("Appended email record", zap.Int("position", position), zap.String("id", record.ID))
	return position, nil
}

// List returns a snapshot of all records in insertion order
func (s *MemoryStore) List(ctx context.Context) ([]core.EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]core.EmailRecord, len(s.records))
	copy(snapshot, s.records)
	return snapshot, nil
}

// Get returns the record at position
func (s *MemoryStore) Get(ctx context.Context, position int) (*core.EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if position < 0 || position >= len(s.records) {
		return nil, core.ErrRecordNotFound
	}
	record := s.records[position]
	return &record, nil
}

// Len returns the number of records in the session
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
