package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/normalize"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		text        TEXT NOT NULL,
		tags        TEXT,
		version     INTEGER NOT NULL DEFAULT 1,
		supersedes  TEXT,
		created_at  TEXT NOT NULL,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_batches_name ON batches(name);
	CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_batches_deleted ON batches(deleted_at);

	CREATE TABLE IF NOT EXISTS quotes (
		id        TEXT PRIMARY KEY,
		batch_id  TEXT NOT NULL REFERENCES batches(id),
		seq       INTEGER NOT NULL,
		text      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_quotes_batch ON quotes(batch_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.Batch, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, errors.New("batch name is required")
	}

	now := time.Now().UTC()
	id := s.newID()

	var tagsJSON *string
	if len(p.Tags) > 0 {
		b, _ := json.Marshal(p.Tags)
		s := string(b)
		tagsJSON = &s
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Check for existing latest version
	var prevID string
	var prevVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT id, version FROM batches
		 WHERE name = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, name).Scan(&prevID, &prevVersion)

	version := 1
	var supersedes *string
	if err == nil {
		version = prevVersion + 1
		supersedes = &prevID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, name, text, tags, version, supersedes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, p.Text, tagsJSON, version, supersedes, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	quotes := normalize.Quotes(p.Text)
	for i, q := range quotes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quotes (id, batch_id, seq, text) VALUES (?, ?, ?, ?)`,
			s.newID(), id, i, q)
		if err != nil {
			return nil, fmt.Errorf("insert quote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	b := &model.Batch{
		ID:         id,
		Name:       name,
		Text:       p.Text,
		Quotes:     quotes,
		Tags:       p.Tags,
		Version:    version,
		CreatedAt:  now,
		QuoteCount: len(quotes),
	}
	if supersedes != nil {
		b.Supersedes = *supersedes
	}
	return b, nil
}

const batchColumns = `b.id, b.name, b.text, b.tags, b.version, b.supersedes, b.created_at, b.deleted_at,
	(SELECT COUNT(*) FROM quotes q WHERE q.batch_id = b.id)`

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) ([]model.Batch, error) {
	var query string
	var args []interface{}

	switch {
	case p.History:
		query = `SELECT ` + batchColumns + ` FROM batches b
				 WHERE b.name = ? AND b.deleted_at IS NULL
				 ORDER BY b.version DESC`
		args = []interface{}{p.Name}
	case p.Version > 0:
		query = `SELECT ` + batchColumns + ` FROM batches b
				 WHERE b.name = ? AND b.version = ? AND b.deleted_at IS NULL
				 LIMIT 1`
		args = []interface{}{p.Name, p.Version}
	default:
		query = `SELECT ` + batchColumns + ` FROM batches b
				 WHERE b.name = ? AND b.deleted_at IS NULL
				 ORDER BY b.version DESC LIMIT 1`
		args = []interface{}{p.Name}
	}

	batches, err := s.queryBatches(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p.Name)
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

func (s *SQLiteStore) quotes(ctx context.Context, batchID string) ([]model.Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM quotes WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []model.Quote{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Batch, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	// Only the latest version of each name
	where := []string{"b.deleted_at IS NULL"}
	args := []interface{}{}

	for _, tag := range p.Tags {
		where = append(where, "b.tags LIKE ?")
		args = append(args, "%\""+tag+"\"%")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM batches b
		INNER JOIN (
			SELECT name, MAX(version) AS max_ver
			FROM batches WHERE deleted_at IS NULL
			GROUP BY name
		) latest ON b.name = latest.name AND b.version = latest.max_ver
		WHERE %s
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ?`, batchColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.queryBatches(ctx, query, args...)
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	if p.Hard {
		if p.AllVersions {
			_, err := s.db.ExecContext(ctx,
				`DELETE FROM quotes WHERE batch_id IN (SELECT id FROM batches WHERE name = ?)`, p.Name)
			if err != nil {
				return err
			}
			_, err = s.db.ExecContext(ctx, `DELETE FROM batches WHERE name = ?`, p.Name)
			return err
		}
		id, err := s.latestID(ctx, p.Name)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE batch_id = ?`, id); err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if p.AllVersions {
		res, err := s.db.ExecContext(ctx,
			`UPDATE batches SET deleted_at = ? WHERE name = ? AND deleted_at IS NULL`, now, p.Name)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, p.Name)
		}
		return nil
	}

	// Soft-delete latest version only
	id, err := s.latestID(ctx, p.Name)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE batches SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

func (s *SQLiteStore) latestID(ctx context.Context, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM batches WHERE name = ? AND deleted_at IS NULL ORDER BY version DESC LIMIT 1`,
		name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return id, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryBatches(ctx context.Context, query string, args ...interface{}) ([]model.Batch, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []model.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row scanner) (model.Batch, error) {
	var b model.Batch
	var tagsJSON, supersedes, deletedAt sql.NullString
	var createdAt string

	err := row.Scan(
		&b.ID, &b.Name, &b.Text, &tagsJSON, &b.Version, &supersedes,
		&createdAt, &deletedAt, &b.QuoteCount,
	)
	if err != nil {
		return b, err
	}

	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if supersedes.Valid {
		b.Supersedes = supersedes.String
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		b.DeletedAt = &t
	}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &b.Tags)
	}
	return b, nil
}
