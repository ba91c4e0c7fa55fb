// Package playlist builds study playlists: it searches videos per keyword,
// filters them by length and splices short fun videos in between.
package playlist

import (
	"strings"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
)

// Bucket is a video length class. The zero value means "no filter".
type Bucket string

const (
	BucketNone   Bucket = ""
	BucketShort  Bucket = "short"
	BucketMedium Bucket = "medium"
	BucketLong   Bucket = "long"
)

// Length thresholds in seconds. 1200 itself is medium.
const (
	shortMaxExclusive  = 240
	mediumMaxInclusive = 1200
)

// Matches reports whether a duration falls in the bucket. Unknown (0)
// durations never match a real bucket; BucketNone matches everything.
func (b Bucket) Matches(durationSeconds int) bool {
	if b == BucketNone {
		return true
	}
	if durationSeconds <= 0 {
		return false
	}
	switch b {
	case BucketShort:
		return durationSeconds < shortMaxExclusive
	case BucketMedium:
		return durationSeconds >= shortMaxExclusive && durationSeconds <= mediumMaxInclusive
	case BucketLong:
		return durationSeconds > mediumMaxInclusive
	}
	return false
}

// ParseBucket reads a bucket selector. It accepts the bucket names and the
// "0"/"1"/"2" button indexes sent by the web client. Empty means medium.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium", "1":
		return BucketMedium, nil
	case "short", "0":
		return BucketShort, nil
	case "long", "2":
		return BucketLong, nil
	}
	return BucketNone, engine.Validationf("duration must be short, medium or long, got %q", s)
}
