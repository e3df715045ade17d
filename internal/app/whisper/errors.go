package whisper

import (
	"fmt"
	"strings"
)

// InvalidModelError means the requested identifier is not in the known
// set. Raised before any loading attempt or file I/O.
type InvalidModelError struct {
	ID string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("Invalid model %q. Choose from: [%s]", e.ID, strings.Join(ModelIDs(), " "))
}

// ModelLoadError means the weights could not be made available or were
// unusable. Not caused by user input.
type ModelLoadError struct {
	ID  string
	Err error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model %q: %v", e.ID, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// RecognitionError means the recognition worker failed unexpectedly.
// The worker's stderr is kept for server-side diagnostics.
type RecognitionError struct {
	Err    error
	Stderr string
}

func (e *RecognitionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("recognition failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("recognition failed: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}
