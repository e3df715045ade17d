// Package export renders stored transcription history in downloadable
// formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tealeg/xlsx"

	"ramble/internal/app/model"
)

// Format selects the rendering for an export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a user-supplied format name. Empty input means
// csv.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
	}
}

// ContentType returns the MIME type served for this format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Ext returns the file extension for this format, dot included.
func (f Format) Ext() string {
	return "." + string(f)
}

// columns names the exported fields. The csv and xlsx renderings share
// it so the two never drift apart.
var columns = []string{
	"ID",
	"Request ID",
	"Created At",
	"File Name",
	"Model",
	"Task",
	"Language",
	"Duration (s)",
	"Segments",
	"Speakers",
	"Status",
	"Transcription",
	"Error",
}

// Write renders records to w in the given format.
func Write(w io.Writer, format Format, records []model.Record) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatXLSX:
		return writeXLSX(w, records)
	case FormatCSV:
		return writeCSV(w, records)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func row(rec *model.Record) []string {
	return []string{
		strconv.FormatInt(rec.ID, 10),
		rec.RequestID,
		rec.CreatedAt.Format(time.RFC3339),
		rec.FileName,
		rec.Model,
		rec.Task,
		rec.Language,
		strconv.FormatFloat(rec.DurationSeconds, 'f', 2, 64),
		strconv.Itoa(rec.SegmentCount),
		strconv.Itoa(rec.SpeakerCount),
		rec.Status,
		rec.Transcription,
		rec.ErrorMessage,
	}
}

func writeCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(row(&records[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, records []model.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeXLSX(w io.Writer, records []model.Record) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, name := range columns {
		headerRow.AddCell().Value = name
	}

	for i := range records {
		sheetRow := sheet.AddRow()
		for _, value := range row(&records[i]) {
			sheetRow.AddCell().Value = value
		}
	}

	return file.Write(w)
}
