package store

import (
	"context"

	"github.com/rcliao/vela/internal/model"
)

// ExportAll returns every live batch version with its quotes, oldest first.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.Batch, error) {
	batches, err := s.queryBatches(ctx, `SELECT `+batchColumns+` FROM batches b
		WHERE b.deleted_at IS NULL ORDER BY b.name, b.version`)
	if err != nil {
		return nil, err
	}
	for i := range batches {
		quotes, err := s.quotes(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Quotes = quotes
	}
	return batches, nil
}

// Import stores batches from an export as new versions. Quotes are
// re-derived from the text.
func (s *SQLiteStore) Import(ctx context.Context, batches []model.Batch) (int, error) {
	imported := 0
	for _, b := range batches {
		_, err := s.Put(ctx, PutParams{Name: b.Name, Text: b.Text, Tags: b.Tags})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
