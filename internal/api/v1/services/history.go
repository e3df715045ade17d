package services

import (
	"errors"

	apierrors "ramble/internal/api/errors"
	"ramble/internal/api/v1/dto"
	"ramble/internal/app/repository"
)

// HistoryServiceImpl reads stored outcomes from the history store.
type HistoryServiceImpl struct {
	dao repository.RecordDAO
}

// NewHistoryService creates the history service.
func NewHistoryService(dao repository.RecordDAO) *HistoryServiceImpl {
	return &HistoryServiceImpl{dao: dao}
}

var _ HistoryService = (*HistoryServiceImpl)(nil)

// List returns one page of stored outcomes, newest first.
func (s *HistoryServiceImpl) List(query dto.ListTranscriptionsQuery) (*dto.PaginatedTranscriptionsResponse, error) {
	q := repository.Query{
		Page:   query.Page,
		Limit:  query.Limit,
		Model:  query.Model,
		Status: query.Status,
	}

	records, total, err := s.dao.List(q)
	if err != nil {
		return nil, apierrors.NewInternalError("Failed to list transcriptions")
	}

	out := make([]dto.TranscriptionRecord, len(records))
	for i := range records {
		out[i] = dto.ToTranscriptionRecord(&records[i])
	}

	limit, offset := q.Window()
	return &dto.PaginatedTranscriptionsResponse{
		Transcriptions: out,
		Pagination:     dto.NewPagination(offset/limit+1, limit, total),
	}, nil
}

// Get returns one stored outcome by ID.
func (s *HistoryServiceImpl) Get(id int64) (*dto.TranscriptionRecord, error) {
	rec, err := s.dao.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError("transcription")
		}
		return nil, apierrors.NewInternalError("Failed to load transcription")
	}

	out := dto.ToTranscriptionRecord(rec)
	return &out, nil
}

// Stats returns aggregate totals over all stored outcomes.
func (s *HistoryServiceImpl) Stats() (*repository.Stats, error) {
	stats, err := s.dao.Stats()
	if err != nil {
		return nil, apierrors.NewInternalError("Failed to compute statistics")
	}
	return stats, nil
}
