package playlist

import "github.com/anatolykoptev/go_chaoslearn/internal/engine"

// Interleave emits every study video in order and, after each multiple of
// insertAfter study videos, the next unused fun video. Fun videos left over
// at the end are appended in order. insertAfter must be >= 1.
func Interleave(study, fun []engine.VideoRecord, insertAfter int) []engine.VideoRecord {
	out := make([]engine.VideoRecord, 0, len(study)+len(fun))
	next := 0
	for i, s := range study {
		out = append(out, s)
		if (i+1)%insertAfter == 0 && next < len(fun) {
			out = append(out, fun[next])
			next++
		}
	}
	return append(out, fun[next:]...)
}
