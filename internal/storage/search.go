package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NewSearchRecord builds an analytics record for a normalized query.
func NewSearchRecord(query string, resultsCount, totalCount int) SearchRecord {
	return SearchRecord{
		SearchID:     uuid.NewString(),
		QueryHash:    HashQuery(query),
		Timestamp:    time.Now(),
		ResultsCount: resultsCount,
		TotalCount:   totalCount,
	}
}

// RecordSearch records an executed search for analytics.
// Failures are logged and swallowed.
func (s *SQLiteStorage) RecordSearch(ctx context.Context, search SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return nil
	}

	if search.SearchID == "" {
		search.SearchID = uuid.NewString()
	}

	query := `
		INSERT INTO search_log (search_id, query_hash, timestamp, results_count, total_count)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		search.SearchID,
		search.QueryHash,
		search.Timestamp.UTC().Format(time.RFC3339),
		search.ResultsCount,
		search.TotalCount,
	)
	if err != nil {
		s.logger.Warn("failed to record search", "err", err)
	}

	return nil
}

// CountSearches returns how many searches were recorded since a given time.
func (s *SQLiteStorage) CountSearches(ctx context.Context, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return 0, nil
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM search_log WHERE timestamp >= ?",
		since.UTC().Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		s.logger.Warn("failed to count searches", "err", err)
		return 0, nil
	}

	return count, nil
}

// Cleanup removes old analytics records based on retention policy.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return nil
	}

	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339)

	if _, err := s.db.Exec("DELETE FROM search_log WHERE timestamp < ?", cutoff); err != nil {
		s.logger.Warn("failed to cleanup search_log", "err", err)
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.logger.Warn("failed to vacuum database", "err", err)
	}

	return nil
}
