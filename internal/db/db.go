// Package db is the session meme store: an in-memory SQLite database with
// FTS5 caption search and a sqlite-vec fingerprint index.
//
// The database lives on a single connection and disappears when it is closed,
// so the store lasts exactly as long as the process that opened it.
package db

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/mememe/internal/compose"
	"github.com/go-ports/mememe/internal/models"
)

func init() { //nolint:gochecknoinits // registers sqlite-vec extension with go-sqlite3 before any DB connection opens
	vec.Auto()
}

// ErrNotFound is returned when no meme matches an ID.
var ErrNotFound = errors.New("meme not found")

// ErrAmbiguousID is returned when an ID prefix matches more than one meme.
var ErrAmbiguousID = errors.New("ambiguous meme id prefix")

// DB wraps the in-memory *sql.DB.
type DB struct {
	db *sql.DB
}

// Open creates a fresh, empty in-memory store.
func Open() (*DB, error) {
	sqldb, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("db.Open: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	d := &DB{db: sqldb}
	if err := d.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db.Open createSchema: %w", err)
	}
	return d, nil
}

// Close discards the store and its contents.
func (d *DB) Close() error {
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (d *DB) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memes (
			rowid          INTEGER PRIMARY KEY AUTOINCREMENT,
			id             TEXT UNIQUE NOT NULL,
			top_text       TEXT NOT NULL,
			bottom_text    TEXT NOT NULL,
			original_png   BLOB NOT NULL,
			composited_png BLOB NOT NULL,
			width          INTEGER NOT NULL,
			height         INTEGER NOT NULL,
			created_at     TEXT NOT NULL
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS memes_fts USING fts5(
			top_text, bottom_text,
			content='memes', content_rowid='rowid',
			tokenize='unicode61'
		)`,
		`CREATE TRIGGER IF NOT EXISTS memes_ai AFTER INSERT ON memes BEGIN
			INSERT INTO memes_fts(rowid, top_text, bottom_text)
			VALUES (new.rowid, new.top_text, new.bottom_text);
		END`,
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS memes_vec USING vec0(
			rowid INTEGER PRIMARY KEY,
			fingerprint float[%d]
		)`, compose.FingerprintDim),
	}

	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Append
// ---------------------------------------------------------------------------

// Append stores m at the end of the store. The meme row, its caption index
// entry and its fingerprint become visible together or not at all.
func (d *DB) Append(ctx context.Context, m *models.Meme) error {
	if m == nil || m.Original == nil {
		return fmt.Errorf("db.Append: %w", models.ErrNoSourceImage)
	}
	if m.Composited == nil {
		return fmt.Errorf("db.Append: %w", models.ErrNoComposite)
	}

	orig, err := compose.EncodePNG(m.Original)
	if err != nil {
		return fmt.Errorf("db.Append: %w", err)
	}
	out, err := compose.EncodePNG(m.Composited)
	if err != nil {
		return fmt.Errorf("db.Append: %w", err)
	}
	size := m.Composited.Bounds().Size()
	fp := float32sToBytes(compose.Fingerprint(m.Original))

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.Append: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO memes (
			id, top_text, bottom_text, original_png, composited_png,
			width, height, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.TopText, m.BottomText, orig, out,
		size.X, size.Y, m.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("db.Append: insert: %w", err)
	}
	rowid, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("db.Append: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memes_vec (rowid, fingerprint) VALUES (?, ?)`, rowid, fp,
	); err != nil {
		return fmt.Errorf("db.Append: fingerprint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db.Append: commit: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

const summaryCols = `m.id, m.top_text, m.bottom_text, m.width, m.height, m.created_at`

// Get returns the full meme, images included, by exact ID or unique prefix.
func (d *DB) Get(ctx context.Context, id string) (*models.Meme, error) {
	rowid, err := d.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		m         models.Meme
		orig, out []byte
		created   string
	)
	err = d.db.QueryRowContext(ctx, `
		SELECT id, top_text, bottom_text, original_png, composited_png, created_at
		FROM memes WHERE rowid = ?`, rowid,
	).Scan(&m.ID, &m.TopText, &m.BottomText, &orig, &out, &created)
	if err != nil {
		return nil, fmt.Errorf("db.Get: %w", err)
	}
	if m.Original, err = compose.DecodePNG(orig); err != nil {
		return nil, fmt.Errorf("db.Get original: %w", err)
	}
	if m.Composited, err = compose.DecodePNG(out); err != nil {
		return nil, fmt.Errorf("db.Get composited: %w", err)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &m, nil
}

// List returns memes in insertion order. limit <= 0 means no limit.
func (d *DB) List(ctx context.Context, offset, limit int) ([]models.Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+summaryCols+`, 0.0 FROM memes m ORDER BY m.rowid ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("db.List: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// Count returns the number of memes in the store.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memes`).Scan(&n)
	return n, err
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// FTSSearch performs a BM25 full-text search over both captions.
func (d *DB) FTSSearch(ctx context.Context, query string, limit int) ([]models.Summary, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, nil
	}
	// Build "term1"* OR "term2"* FTS5 query.
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+summaryCols+`, -fts.rank AS score
		FROM memes_fts fts
		JOIN memes m ON m.rowid = fts.rowid
		WHERE fts.memes_fts MATCH ?
		ORDER BY fts.rank
		LIMIT ?`,
		strings.Join(parts, " OR "), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("db.FTSSearch: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// SubstringSearch matches query anywhere in either caption, case-insensitively
// for ASCII. It catches punctuation and partial words the tokenizer drops.
func (d *DB) SubstringSearch(ctx context.Context, query string, limit int) ([]models.Summary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(query) + "%"
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+summaryCols+`, 0.0
		FROM memes m
		WHERE m.top_text LIKE ? ESCAPE '\' OR m.bottom_text LIKE ? ESCAPE '\'
		ORDER BY m.rowid ASC
		LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("db.SubstringSearch: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// Similar returns the memes whose source photos look most like the source
// photo of id, nearest first, excluding id itself. Score is 1 - distance/2.
func (d *DB) Similar(ctx context.Context, id string, limit int) ([]models.Summary, error) {
	rowid, err := d.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		fullID string
		fp     []byte
	)
	if err := d.db.QueryRowContext(ctx, `
		SELECT m.id, v.fingerprint
		FROM memes m JOIN memes_vec v ON v.rowid = m.rowid
		WHERE m.rowid = ?`, rowid,
	).Scan(&fullID, &fp); err != nil {
		return nil, fmt.Errorf("db.Similar: fingerprint: %w", err)
	}

	// k counts the query meme itself, which is always its own nearest neighbour.
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+summaryCols+`, v.distance
		FROM memes_vec v
		JOIN memes m ON m.rowid = v.rowid
		WHERE v.fingerprint MATCH ? AND k = ?
		ORDER BY v.distance`,
		fp, limit+1,
	)
	if err != nil {
		return nil, fmt.Errorf("db.Similar: %w", err)
	}
	defer rows.Close()

	all, err := scanSummaries(rows)
	if err != nil {
		return nil, err
	}
	out := make([]models.Summary, 0, len(all))
	for _, s := range all {
		if s.ID == fullID {
			continue
		}
		s.Score = 1 - s.Score/2
		out = append(out, s)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// resolveID maps an exact ID or unique prefix to its rowid.
func (d *DB) resolveID(ctx context.Context, id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, ErrNotFound
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT rowid FROM memes WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%",
	)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var found []int64
	for rows.Next() {
		var r int64
		if err := rows.Scan(&r); err != nil {
			return 0, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	switch len(found) {
	case 0:
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return found[0], nil
	}
	return 0, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
}

// scanSummaries reads rows of summaryCols followed by one numeric score column.
func scanSummaries(rows *sql.Rows) ([]models.Summary, error) {
	var out []models.Summary
	for rows.Next() {
		var (
			s       models.Summary
			created string
		)
		if err := rows.Scan(&s.ID, &s.TopText, &s.BottomText, &s.Width, &s.Height, &created, &s.Score); err != nil {
			return nil, err
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, s)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// float32sToBytes encodes a []float32 as little-endian bytes (sqlite-vec wire format).
func float32sToBytes(floats []float32) []byte {
	b := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}
