package playlist

import "github.com/anatolykoptev/go_chaoslearn/internal/engine"

// InsertionPolicy is the client's "random level": how often a fun video is
// inserted between study videos.
type InsertionPolicy int

// Level bounds accepted at the request boundary.
const (
	MinLevel InsertionPolicy = 1
	MaxLevel InsertionPolicy = 5
)

// DefaultInsertAfter is used for levels missing from the table.
const DefaultInsertAfter = 5

var insertAfterByLevel = map[InsertionPolicy]int{
	1: 5,
	2: 4,
	3: 3,
	4: 2,
	5: 1,
}

// InsertAfter returns N in "one fun video after every N study videos".
// It is always >= 1.
func (p InsertionPolicy) InsertAfter() int {
	if n, ok := insertAfterByLevel[p]; ok {
		return n
	}
	return DefaultInsertAfter
}

// ParseLevel validates a level from a request. Zero means "not set" and
// selects the default ratio.
func ParseLevel(level int) (InsertionPolicy, error) {
	if level == 0 {
		return MinLevel, nil
	}
	p := InsertionPolicy(level)
	if p < MinLevel || p > MaxLevel {
		return 0, engine.Validationf("level must be between %d and %d, got %d", MinLevel, MaxLevel, level)
	}
	return p, nil
}
