package repository

import (
	"errors"

	"ramble/internal/app/model"
)

// ErrNotFound is returned by lookups for records that do not exist.
var ErrNotFound = errors.New("record not found")

// Query filters and paginates history listings.
type Query struct {
	Page   int
	Limit  int
	Model  string
	Status string
}

// Window converts the page/limit pair into LIMIT/OFFSET values with
// defaults applied: page 1, limit 20. The hard cap bounds export
// queries; the listing endpoint enforces its own, tighter limit.
func (q Query) Window() (limit, offset int) {
	limit = q.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 10000 {
		limit = 10000
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// Stats aggregates the stored request outcomes.
type Stats struct {
	TotalRequests int64            `json:"total_requests"`
	Succeeded     int64            `json:"succeeded"`
	Failed        int64            `json:"failed"`
	AudioSeconds  float64          `json:"audio_seconds"`
	ByModel       map[string]int64 `json:"by_model"`
}

// RecordDAO stores and reads back transcription history.
type RecordDAO interface {
	Close() error

	// Save inserts the record and fills in its assigned ID where the
	// driver supports it.
	Save(rec *model.Record) error

	GetByID(id int64) (*model.Record, error)

	// List returns one page of records, newest first, plus the total
	// count matching the filter.
	List(q Query) ([]model.Record, int64, error)

	Stats() (*Stats, error)
}
