package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ramble/internal/app/model"
	"ramble/internal/app/repository"
	"ramble/internal/app/util/files"
)

// Ensure SQLiteDB implements RecordDAO
var _ repository.RecordDAO = (*SQLiteDB)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	model TEXT NOT NULL,
	task TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	duration_seconds REAL NOT NULL DEFAULT 0,
	segment_count INTEGER NOT NULL DEFAULT 0,
	speaker_count INTEGER NOT NULL DEFAULT 0,
	transcription TEXT NOT NULL DEFAULT '',
	processing_ms INTEGER NOT NULL DEFAULT 0,
	audio_sha256 TEXT NOT NULL DEFAULT '',
	file_size_bytes INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_kind TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at);
CREATE INDEX IF NOT EXISTS idx_transcriptions_model ON transcriptions(model);
`

const selectColumns = `
	SELECT id, request_id, file_name, model, task, language,
	       duration_seconds, segment_count, speaker_count, transcription,
	       processing_ms, audio_sha256, file_size_bytes,
	       status, error_kind, error_message, created_at`

type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the history database at dbFilePath and
// ensures the schema exists.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	if dir := filepath.Dir(dbFilePath); dir != "." {
		if err := files.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

func (sdb *SQLiteDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SQLiteDB) Save(rec *model.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	insertSQL := `
		INSERT INTO transcriptions (
			request_id, file_name, model, task, language,
			duration_seconds, segment_count, speaker_count, transcription,
			processing_ms, audio_sha256, file_size_bytes,
			status, error_kind, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := sdb.db.Exec(insertSQL,
		rec.RequestID, rec.FileName, rec.Model, rec.Task, rec.Language,
		rec.DurationSeconds, rec.SegmentCount, rec.SpeakerCount, rec.Transcription,
		rec.ProcessingMS, rec.AudioSHA256, rec.FileSizeBytes,
		rec.Status, rec.ErrorKind, rec.ErrorMessage, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transcription: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

func (sdb *SQLiteDB) GetByID(id int64) (*model.Record, error) {
	row := sdb.db.QueryRow(selectColumns+` FROM transcriptions WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rec, nil
}

func (sdb *SQLiteDB) List(q repository.Query) ([]model.Record, int64, error) {
	where, args := buildFilter(q)

	var total int64
	if err := sdb.db.QueryRow(`SELECT COUNT(*) FROM transcriptions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	limit, offset := q.Window()
	rows, err := sdb.db.Query(
		selectColumns+` FROM transcriptions`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db scan failed: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration failed: %w", err)
	}
	return records, total, nil
}

func (sdb *SQLiteDB) Stats() (*repository.Stats, error) {
	st := &repository.Stats{ByModel: make(map[string]int64)}

	err := sdb.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(duration_seconds), 0)
		FROM transcriptions`).
		Scan(&st.TotalRequests, &st.Succeeded, &st.Failed, &st.AudioSeconds)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}

	rows, err := sdb.db.Query(`SELECT model, COUNT(*) FROM transcriptions GROUP BY model`)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m string
		var n int64
		if err := rows.Scan(&m, &n); err != nil {
			return nil, fmt.Errorf("db scan failed: %w", err)
		}
		st.ByModel[m] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*model.Record, error) {
	var rec model.Record
	err := s.Scan(
		&rec.ID, &rec.RequestID, &rec.FileName, &rec.Model, &rec.Task, &rec.Language,
		&rec.DurationSeconds, &rec.SegmentCount, &rec.SpeakerCount, &rec.Transcription,
		&rec.ProcessingMS, &rec.AudioSHA256, &rec.FileSizeBytes,
		&rec.Status, &rec.ErrorKind, &rec.ErrorMessage, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func buildFilter(q repository.Query) (string, []any) {
	var conds []string
	var args []any
	if q.Model != "" {
		conds = append(conds, "model = ?")
		args = append(args, q.Model)
	}
	if q.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, q.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
