package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string `json:"db_path"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	TotalVersions int    `json:"total_versions"`
	ActiveBatches int    `json:"active_batches"`
	TotalQuotes   int    `json:"total_quotes"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM batches`).Scan(&st.TotalVersions); err != nil {
		return st, err
	}
	s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT name) FROM batches WHERE deleted_at IS NULL`).Scan(&st.ActiveBatches)
	s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM quotes q
		JOIN batches b ON b.id = q.batch_id
		WHERE b.deleted_at IS NULL`).Scan(&st.TotalQuotes)

	return st, nil
}
