package transcription

import (
	"math"
	"strings"

	"ramble/internal/app/speaker"
	"ramble/internal/app/whisper"
)

// LabeledSegment is one speech span with its heuristic speaker label,
// as returned to clients.
type LabeledSegment struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Transcript is the assembled outcome of one request. Immutable once
// built; the same value is cached and rendered to clients.
type Transcript struct {
	Text             string           `json:"text"`
	Language         string           `json:"language"`
	DurationSeconds  float64          `json:"duration_seconds"`
	Segments         []LabeledSegment `json:"segments"`
	Model            string           `json:"model"`
	Task             string           `json:"task"`
	SpeakersDetected int              `json:"speakers_detected"`
}

// Assemble builds the final transcript from raw recognition output and
// the per-segment speaker labels. labels must be parallel to
// res.Segments. Times are rounded to two decimals, segment text is
// trimmed, and the full text is the joined raw segment text.
func Assemble(res whisper.Result, labels []string, modelID string, task whisper.Task) Transcript {
	segments := make([]LabeledSegment, len(res.Segments))
	var full strings.Builder
	for i, seg := range res.Segments {
		full.WriteString(seg.Text)
		segments[i] = LabeledSegment{
			Speaker: labels[i],
			Text:    strings.TrimSpace(seg.Text),
			Start:   round2(seg.Start),
			End:     round2(seg.End),
		}
	}

	var duration float64
	if n := len(res.Segments); n > 0 {
		duration = round2(res.Segments[n-1].End)
	}

	lang := res.Language
	if lang == "" {
		lang = "unknown"
	}

	return Transcript{
		Text:             strings.TrimSpace(full.String()),
		Language:         lang,
		DurationSeconds:  duration,
		Segments:         segments,
		Model:            whisper.DisplayName(modelID),
		Task:             string(task),
		SpeakersDetected: speaker.Count(labels),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
