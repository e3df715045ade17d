package testutil

import "ramble/internal/app/whisper"

// ConversationResult is a recognition result with a 3 second pause
// between the second and third segment, enough to trip the speaker
// alternation heuristic.
func ConversationResult() whisper.Result {
	return whisper.Result{
		Language: "en",
		Segments: []whisper.Segment{
			{ID: 0, Start: 0, End: 1, Text: " Hello."},
			{ID: 1, Start: 1, End: 2, Text: " How are you?"},
			{ID: 2, Start: 5, End: 5.5, Text: " Fine."},
			{ID: 3, Start: 6, End: 6.5, Text: " Thanks."},
		},
	}
}

// MonologueResult is a recognition result with no pause long enough to
// switch speakers.
func MonologueResult() whisper.Result {
	return whisper.Result{
		Language: "de",
		Segments: []whisper.Segment{
			{ID: 0, Start: 0, End: 2.5, Text: " Guten Tag."},
			{ID: 1, Start: 2.5, End: 4.75, Text: " Wie geht es Ihnen?"},
		},
	}
}
