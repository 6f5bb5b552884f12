package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pluqqy/itemgrid/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	key TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	creator TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0,
	item_type TEXT NOT NULL DEFAULT '',
	date_modified INTEGER NOT NULL DEFAULT 0,
	tags TEXT NOT NULL DEFAULT '[]',
	deleted INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_items_title ON items(title COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_items_creator ON items(creator COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_items_date_modified ON items(date_modified);
`

// sortColumns maps grid fields to SQL order expressions. Only these are
// ever interpolated into a query.
var sortColumns = map[string]string{
	models.FieldTitle:        "title COLLATE NOCASE",
	models.FieldCreator:      "creator COLLATE NOCASE",
	models.FieldYear:         "year",
	models.FieldItemType:     "item_type",
	models.FieldDateModified: "date_modified",
}

// SQLiteSource is a library stored in a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteSource, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Init prepares the schema.
func (s *SQLiteSource) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("enable wal: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func orderClause(q models.Query) string {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = sortColumns[models.FieldTitle]
	}
	dir := "ASC"
	if q.Direction == models.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, key %s", col, dir, dir)
}

func whereClause(q models.Query) (string, []any) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return "WHERE deleted = 0", nil
	}
	like := "%" + strings.ReplaceAll(strings.ReplaceAll(text, "%", `\%`), "_", `\_`) + "%"
	return `WHERE deleted = 0 AND (title LIKE ? ESCAPE '\' OR creator LIKE ? ESCAPE '\')`, []any{like, like}
}

// FetchRange implements Source.
func (s *SQLiteSource) FetchRange(ctx context.Context, q models.Query, offset, count int) (Page, error) {
	if offset < 0 {
		offset = 0
	}
	where, args := whereClause(q)

	var page Page
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items "+where, args...).Scan(&page.Total); err != nil {
		return Page{}, fmt.Errorf("count items: %w", err)
	}
	if count <= 0 {
		return page, nil
	}

	query := fmt.Sprintf(`
		SELECT key, title, creator, year, item_type, date_modified, tags
		FROM items %s %s
		LIMIT ? OFFSET ?`, where, orderClause(q))
	rows, err := s.db.QueryContext(ctx, query, append(args, count, offset)...)
	if err != nil {
		return Page{}, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	page.Records = make([]models.Record, 0, count)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return Page{}, err
		}
		page.Records = append(page.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate items: %w", err)
	}
	return page, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (models.Record, error) {
	var rec models.Record
	var modified int64
	var tags string
	if err := row.Scan(&rec.Key, &rec.Title, &rec.Creator, &rec.Year, &rec.ItemType, &modified, &tags); err != nil {
		return models.Record{}, fmt.Errorf("scan item: %w", err)
	}
	if modified > 0 {
		rec.DateModified = time.Unix(modified, 0).UTC()
	}
	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return models.Record{}, fmt.Errorf("decode tags of %s: %w", rec.Key, err)
	}
	return rec, nil
}

// Insert stores records, replacing existing ones with the same key.
func (s *SQLiteSource) Insert(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}
	transaction, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := transaction.PrepareContext(ctx, `
		INSERT OR REPLACE INTO items (key, title, creator, year, item_type, date_modified, tags, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
	`)
	if err != nil {
		_ = transaction.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.Key == "" {
			_ = transaction.Rollback()
			return errors.New("record key is required")
		}
		tags, err := encodeTags(rec.Tags)
		if err != nil {
			_ = transaction.Rollback()
			return err
		}
		var modified int64
		if !rec.DateModified.IsZero() {
			modified = rec.DateModified.Unix()
		}
		if _, err := stmt.ExecContext(ctx, rec.Key, rec.Title, rec.Creator, rec.Year, rec.ItemType, modified, tags); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("insert item %s: %w", rec.Key, err)
		}
	}
	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("commit items: %w", err)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// UpdateTags implements Tagger.
func (s *SQLiteSource) UpdateTags(ctx context.Context, keys []string, add, remove []string) error {
	transaction, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, key := range keys {
		var raw string
		err := transaction.QueryRowContext(ctx, "SELECT tags FROM items WHERE key = ?", key).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("read tags of %s: %w", key, err)
		}
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("decode tags of %s: %w", key, err)
		}
		encoded, err := encodeTags(applyTags(tags, add, remove))
		if err != nil {
			_ = transaction.Rollback()
			return err
		}
		if _, err := transaction.ExecContext(ctx, "UPDATE items SET tags = ?, date_modified = ? WHERE key = ?",
			encoded, time.Now().Unix(), key); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("update tags of %s: %w", key, err)
		}
	}
	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("commit tags: %w", err)
	}
	return nil
}

// Trash implements Trasher. Trashed records drop out of every result set.
func (s *SQLiteSource) Trash(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE items SET deleted = 1 WHERE key IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("trash items: %w", err)
	}
	return nil
}

// IndexOf implements Locator.
func (s *SQLiteSource) IndexOf(ctx context.Context, q models.Query, key string) (int, error) {
	where, args := whereClause(q)
	query := fmt.Sprintf(`
		SELECT position FROM (
			SELECT key, ROW_NUMBER() OVER (%s) - 1 AS position
			FROM items %s
		) WHERE key = ?`, orderClause(q), where)
	var position int
	err := s.db.QueryRowContext(ctx, query, append(args, key)...).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, ErrNotFound
	}
	if err != nil {
		return -1, fmt.Errorf("locate %s: %w", key, err)
	}
	return position, nil
}
