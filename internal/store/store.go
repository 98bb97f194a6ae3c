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

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dollyto/multimodal-video-transcriber/internal/transcript"
)

// Run is one archived transcription.
type Run struct {
	ID             string
	VideoRef       string
	Model          string
	CreatedAt      time.Time
	SegmentCount   int
	SpeakerCount   int
	TargetLanguage string
	// RawReply is the model reply the transcription was extracted from.
	RawReply string
	// Transcription is populated by Get, not by List.
	Transcription *transcript.Transcription
}

// Translated reports whether the run carries a translation table.
func (r *Run) Translated() bool { return r.TargetLanguage != "" }

// Store manages the run archive backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the run archive under dataDir. The archive
// directory is guarded by a file lock held until Close.
func Open(dataDir string) (*Store, error) {
	dataDir = strings.TrimSpace(dataDir)
	if dataDir == "" {
		return nil, errors.New("data directory required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}

	lock := flock.New(filepath.Join(dataDir, "transcriber.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire archive lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another transcriber instance is using the archive")
	}

	dbPath := filepath.Join(dataDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the archive lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Save archives a transcription together with the raw reply it came from and
// returns the stored run. A missing run id in the metadata is generated.
func (s *Store) Save(ctx context.Context, tr *transcript.Transcription, rawReply string) (*Run, error) {
	if tr == nil {
		return nil, errors.New("transcription is nil")
	}
	meta := tr.Metadata()
	id := strings.TrimSpace(meta.RunID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	documentJSON, err := json.Marshal(tr.Document())
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, video_ref, model, created_at, segment_count, speaker_count,
            target_language, document_json, raw_reply
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		meta.VideoRef,
		meta.Model,
		createdAt.UTC().Format(createdAtFormat),
		tr.SegmentCount(),
		tr.SpeakerCount(),
		nullableString(meta.TargetLanguage),
		string(documentJSON),
		nullableString(rawReply),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return s.Get(ctx, id)
}

// Get fetches a run by identifier, including its transcription. It returns
// nil when no such run exists.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+runColumns+`, document_json, raw_reply FROM runs WHERE id = ?`,
		strings.TrimSpace(id),
	)

	var (
		run          Run
		documentJSON string
		rawReply     sql.NullString
	)
	err := row.Scan(runFields(&run, &documentJSON, &rawReply)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.RawReply = rawReply.String

	var doc transcript.Document
	if err := json.Unmarshal([]byte(documentJSON), &doc); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", run.ID, err)
	}
	tr, err := transcript.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("rebuild run %s: %w", run.ID, err)
	}
	run.Transcription = tr
	return &run, nil
}

// List returns run summaries ordered newest first. Transcriptions are not
// decoded; use Get for the full run.
func (s *Store) List(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(runFields(&run, nil, nil)...); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Remove deletes a run by identifier and reports whether it existed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// createdAtFormat is RFC 3339 with fixed-width nanoseconds, always UTC.
// RFC3339Nano trims trailing zeros, which breaks the lexicographic ordering
// ORDER BY created_at relies on.
const createdAtFormat = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, video_ref, model, created_at, segment_count, speaker_count, target_language"

// runFields builds the scan destinations for runColumns, optionally extended
// with the document and raw reply columns.
func runFields(run *Run, documentJSON *string, rawReply *sql.NullString) []any {
	fields := []any{
		&run.ID,
		&run.VideoRef,
		&run.Model,
		&timeField{&run.CreatedAt},
		&run.SegmentCount,
		&run.SpeakerCount,
		&nullStringField{&run.TargetLanguage},
	}
	if documentJSON != nil {
		fields = append(fields, documentJSON)
	}
	if rawReply != nil {
		fields = append(fields, rawReply)
	}
	return fields
}

type timeField struct{ t *time.Time }

func (f *timeField) Scan(value any) error {
	raw, ok := value.(string)
	if !ok {
		return fmt.Errorf("created_at has type %T, want string", value)
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	*f.t = parsed
	return nil
}

type nullStringField struct{ s *string }

func (f *nullStringField) Scan(value any) error {
	var ns sql.NullString
	if err := ns.Scan(value); err != nil {
		return err
	}
	*f.s = ns.String
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
