package audio

import (
	"fmt"
	"time"
)

// ConversionError means the external decoder rejected the input. The
// decoder's diagnostic output is preserved for the caller.
type ConversionError struct {
	Stderr string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("Audio conversion failed: %s", e.Stderr)
}

// TimeoutError means decoding exceeded the configured wall-clock bound.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("audio conversion timed out after %s", e.Limit)
}
