package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/vela/internal/model"
)

// SearchParams holds parameters for searching batches.
type SearchParams struct {
	Query string
	Limit int
}

// SearchResult wraps a batch with the first quote that matched.
type SearchResult struct {
	model.Batch
	MatchQuote string `json:"match_quote,omitempty"`
}

// Search finds the latest batches whose name, text or quotes contain the
// query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	like := "%" + p.Query + "%"

	sql := fmt.Sprintf(`
		SELECT %s,
		       (SELECT q.text FROM quotes q WHERE q.batch_id = b.id AND q.text LIKE ? ORDER BY q.seq LIMIT 1)
		FROM batches b
		INNER JOIN (
			SELECT name, MAX(version) AS max_ver
			FROM batches WHERE deleted_at IS NULL
			GROUP BY name
		) latest ON b.name = latest.name AND b.version = latest.max_ver
		WHERE b.deleted_at IS NULL
		  AND (b.name LIKE ? OR b.text LIKE ?
		       OR EXISTS (SELECT 1 FROM quotes q WHERE q.batch_id = b.id AND q.text LIKE ?))
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ?`, batchColumns)

	rows, err := s.db.QueryContext(ctx, sql, like, like, like, like, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var match *string
		b, err := scanBatch(withExtra{rows, []interface{}{&match}})
		if err != nil {
			return nil, err
		}
		r := SearchResult{Batch: b}
		if match != nil {
			r.MatchQuote = strings.TrimSpace(*match)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// withExtra appends trailing scan targets for columns after the batch ones.
type withExtra struct {
	row   scanner
	extra []interface{}
}

func (w withExtra) Scan(dest ...interface{}) error {
	return w.row.Scan(append(dest, w.extra...)...)
}
