package services

import (
	"bytes"
	"fmt"
	"time"

	apierrors "ramble/internal/api/errors"
	"ramble/internal/api/v1/dto"
	"ramble/internal/app/export"
	"ramble/internal/app/repository"
)

// ExportServiceImpl renders stored history for download.
type ExportServiceImpl struct {
	dao repository.RecordDAO
}

// NewExportService creates the export service.
func NewExportService(dao repository.RecordDAO) *ExportServiceImpl {
	return &ExportServiceImpl{dao: dao}
}

var _ ExportService = (*ExportServiceImpl)(nil)

// Export renders up to req.Limit newest records in the requested
// format.
func (s *ExportServiceImpl) Export(req dto.ExportRequest) (*dto.ExportResult, error) {
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, apierrors.NewValidationError(err.Error())
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 1000
	}

	records, _, err := s.dao.List(repository.Query{Limit: limit, Model: req.Model})
	if err != nil {
		return nil, apierrors.NewInternalError("Failed to read history")
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, records); err != nil {
		return nil, apierrors.NewInternalError("Failed to render export")
	}

	return &dto.ExportResult{
		Filename:    fmt.Sprintf("transcriptions-%s%s", time.Now().Format("20060102-150405"), format.Ext()),
		ContentType: format.ContentType(),
		Content:     buf.Bytes(),
	}, nil
}
