package whisper

// Task selects what the recognizer produces: a transcript in the source
// language or an English translation.
type Task string

const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

// Options are the per-request recognition options. Immutable once built.
type Options struct {
	Task     Task
	Language string
	FP16     bool
}

// Segment is one contiguous span of recognized speech with start and
// end times in seconds.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the raw output of a single recognition call.
type Result struct {
	Language string
	Segments []Segment
}
