// Package speaker derives coarse speaker labels from segment timing.
// It is a silence-gap heuristic, not diarization: a long enough pause
// between consecutive segments is read as the other party taking over.
package speaker

import (
	"fmt"

	"github.com/samber/lo"

	"ramble/internal/app/whisper"
)

// TurnGap is the pause length in seconds beyond which the heuristic
// hands the floor to the other speaker. Gaps of exactly TurnGap do not
// switch.
const TurnGap = 2.0

// Assign returns one label per segment, in order. The first segment is
// always Speaker 1. When enabled, each pause longer than TurnGap flips
// between the two labels; when disabled every segment keeps the fixed
// first label. Input order is trusted and the input is never modified.
func Assign(segments []whisper.Segment, enabled bool) []string {
	labels := make([]string, len(segments))
	turn := 0
	for i, seg := range segments {
		if enabled && i > 0 && seg.Start-segments[i-1].End > TurnGap {
			turn++
		}
		labels[i] = Label(turn)
	}
	return labels
}

// Label maps a zero-based turn counter onto the two display labels.
func Label(turn int) string {
	return fmt.Sprintf("Speaker %d", (turn%2)+1)
}

// Count returns how many distinct labels appear. Zero for no segments,
// one whenever detection was disabled.
func Count(labels []string) int {
	return len(lo.Uniq(labels))
}
