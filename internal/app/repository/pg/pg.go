package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"ramble/internal/app/model"
	"ramble/internal/app/repository"
)

// Ensure PostgresDB implements RecordDAO
var _ repository.RecordDAO = (*PostgresDB)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id BIGSERIAL PRIMARY KEY,
	request_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	model TEXT NOT NULL,
	task TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
	segment_count INTEGER NOT NULL DEFAULT 0,
	speaker_count INTEGER NOT NULL DEFAULT 0,
	transcription TEXT NOT NULL DEFAULT '',
	processing_ms BIGINT NOT NULL DEFAULT 0,
	audio_sha256 TEXT NOT NULL DEFAULT '',
	file_size_bytes BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_kind TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at);
CREATE INDEX IF NOT EXISTS idx_transcriptions_model ON transcriptions(model);
`

const selectColumns = `
	SELECT id, request_id, file_name, model, task, language,
	       duration_seconds, segment_count, speaker_count, transcription,
	       processing_ms, audio_sha256, file_size_bytes,
	       status, error_kind, error_message, created_at`

type PostgresDB struct {
	db *sql.DB
}

// NewPostgresDB opens a connection pool for the given connection
// string. The connection is lazy; call EnsureSchema before first use.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &PostgresDB{db: db}, nil
}

// EnsureSchema creates the history table and indexes if missing.
func (pdb *PostgresDB) EnsureSchema() error {
	if _, err := pdb.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (pdb *PostgresDB) Close() error {
	return pdb.db.Close()
}

func (pdb *PostgresDB) Save(rec *model.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	insertSQL := `
		INSERT INTO transcriptions (
			request_id, file_name, model, task, language,
			duration_seconds, segment_count, speaker_count, transcription,
			processing_ms, audio_sha256, file_size_bytes,
			status, error_kind, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`

	err := pdb.db.QueryRow(insertSQL,
		rec.RequestID, rec.FileName, rec.Model, rec.Task, rec.Language,
		rec.DurationSeconds, rec.SegmentCount, rec.SpeakerCount, rec.Transcription,
		rec.ProcessingMS, rec.AudioSHA256, rec.FileSizeBytes,
		rec.Status, rec.ErrorKind, rec.ErrorMessage, rec.CreatedAt).
		Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transcription: %w", err)
	}
	return nil
}

func (pdb *PostgresDB) GetByID(id int64) (*model.Record, error) {
	row := pdb.db.QueryRow(selectColumns+` FROM transcriptions WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rec, nil
}

func (pdb *PostgresDB) List(q repository.Query) ([]model.Record, int64, error) {
	where, args := buildFilter(q)

	var total int64
	if err := pdb.db.QueryRow(`SELECT COUNT(*) FROM transcriptions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	limit, offset := q.Window()
	pageSQL := fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := pdb.db.Query(selectColumns+` FROM transcriptions`+where+pageSQL, append(args, limit, offset)...)
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

func (pdb *PostgresDB) Stats() (*repository.Stats, error) {
	st := &repository.Stats{ByModel: make(map[string]int64)}

	err := pdb.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(duration_seconds), 0)
		FROM transcriptions`).
		Scan(&st.TotalRequests, &st.Succeeded, &st.Failed, &st.AudioSeconds)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}

	rows, err := pdb.db.Query(`SELECT model, COUNT(*) FROM transcriptions GROUP BY model`)
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
		args = append(args, q.Model)
		conds = append(conds, fmt.Sprintf("model = $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
