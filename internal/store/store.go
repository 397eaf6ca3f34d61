// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/versetype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for typed verse history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS typed_verses (
			id TEXT PRIMARY KEY,
			translation TEXT NOT NULL,
			book TEXT NOT NULL,
			chapter INTEGER NOT NULL,
			verse INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			keystrokes TEXT,
			wpm REAL,
			accuracy REAL,
			corrected_accuracy REAL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_typed_verses_book ON typed_verses(translation, book);`,
		`CREATE INDEX IF NOT EXISTS idx_typed_verses_created_at ON typed_verses(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertTypedVerse stores a completed verse and returns its id. A new id is
// generated when tv.ID is empty.
func (s *Store) InsertTypedVerse(ctx context.Context, tv model.TypedVerse) (string, error) {
	id := tv.ID
	if id == "" {
		id = uuid.NewString()
	}
	var keystrokes sql.NullString
	if len(tv.Keystrokes) > 0 {
		data, err := json.Marshal(tv.Keystrokes)
		if err != nil {
			return "", fmt.Errorf("failed to encode keystrokes: %w", err)
		}
		keystrokes = sql.NullString{String: string(data), Valid: true}
	}
	var wpm, acc, corrected sql.NullFloat64
	if tv.Stats != nil {
		wpm = nullFloat(tv.Stats.WPM)
		acc = nullFloat(tv.Stats.Accuracy)
		corrected = nullFloat(tv.Stats.CorrectedAccuracy)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO typed_verses (id, translation, book, chapter, verse, created_at, keystrokes, wpm, accuracy, corrected_accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		tv.Translation,
		tv.Book,
		tv.Chapter,
		tv.Verse,
		tv.CreatedAt.UTC().Format(timeLayout),
		keystrokes,
		wpm,
		acc,
		corrected,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListTypedVerses returns typed verses matching cfg, oldest first.
func (s *Store) ListTypedVerses(ctx context.Context, cfg model.HistoryConfig) ([]model.TypedVerse, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Translation != "" {
		clauses = append(clauses, "translation = ?")
		args = append(args, cfg.Translation)
	}
	if cfg.Book != "" {
		clauses = append(clauses, "book = ?")
		args = append(args, cfg.Book)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, translation, book, chapter, verse, created_at, keystrokes, wpm, accuracy, corrected_accuracy
		FROM typed_verses
		WHERE %s
		ORDER BY created_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.TypedVerse
	for rows.Next() {
		tv, err := scanTypedVerse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LastTypedVerse returns the most recently typed verse of a translation.
// ok is false when nothing has been typed yet.
func (s *Store) LastTypedVerse(ctx context.Context, translation string) (tv model.TypedVerse, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, translation, book, chapter, verse, created_at, keystrokes, wpm, accuracy, corrected_accuracy
		 FROM typed_verses
		 WHERE translation = ?
		 ORDER BY created_at DESC
		 LIMIT 1`, translation)
	tv, err = scanTypedVerse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TypedVerse{}, false, nil
	}
	if err != nil {
		return model.TypedVerse{}, false, err
	}
	return tv, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTypedVerse(row scanner) (model.TypedVerse, error) {
	var tv model.TypedVerse
	var createdAt string
	var keystrokes sql.NullString
	var wpm, acc, corrected sql.NullFloat64
	if err := row.Scan(&tv.ID, &tv.Translation, &tv.Book, &tv.Chapter, &tv.Verse, &createdAt, &keystrokes, &wpm, &acc, &corrected); err != nil {
		return model.TypedVerse{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.TypedVerse{}, err
	}
	tv.CreatedAt = parsed
	if keystrokes.Valid && keystrokes.String != "" {
		if err := json.Unmarshal([]byte(keystrokes.String), &tv.Keystrokes); err != nil {
			return model.TypedVerse{}, fmt.Errorf("failed to decode keystrokes of %s: %w", tv.ID, err)
		}
	}
	if wpm.Valid || acc.Valid || corrected.Valid {
		tv.Stats = &model.VerseStats{
			WPM:               floatPtr(wpm),
			Accuracy:          floatPtr(acc),
			CorrectedAccuracy: floatPtr(corrected),
		}
	}
	return tv, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
