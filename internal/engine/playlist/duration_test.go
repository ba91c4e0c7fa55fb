package playlist

import (
	"errors"
	"testing"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
)

func TestBucketMatchesBoundaries(t *testing.T) {
	tests := []struct {
		bucket   Bucket
		duration int
		want     bool
	}{
		{BucketShort, 1, true},
		{BucketShort, 239, true},
		{BucketShort, 240, false},
		{BucketMedium, 239, false},
		{BucketMedium, 240, true},
		{BucketMedium, 1200, true},
		{BucketMedium, 1201, false},
		{BucketLong, 1200, false},
		{BucketLong, 1201, true},
		{BucketLong, 7200, true},
	}
	for _, tt := range tests {
		if got := tt.bucket.Matches(tt.duration); got != tt.want {
			t.Errorf("%s.Matches(%d) = %v, want %v", tt.bucket, tt.duration, got, tt.want)
		}
	}
}

func TestBucketMediumIffInRange(t *testing.T) {
	for d := 0; d <= 1500; d++ {
		want := d >= 240 && d <= 1200
		if got := BucketMedium.Matches(d); got != want {
			t.Fatalf("medium.Matches(%d) = %v, want %v", d, got, want)
		}
	}
}

func TestBucketUnknownDuration(t *testing.T) {
	for _, b := range []Bucket{BucketShort, BucketMedium, BucketLong} {
		if b.Matches(0) {
			t.Errorf("%s must not match an unknown duration", b)
		}
	}
	if !BucketNone.Matches(0) {
		t.Error("no filter must accept an unknown duration")
	}
}

func TestParseBucket(t *testing.T) {
	tests := []struct {
		in   string
		want Bucket
	}{
		{"", BucketMedium},
		{"short", BucketShort},
		{"MEDIUM", BucketMedium},
		{" long ", BucketLong},
		{"0", BucketShort},
		{"1", BucketMedium},
		{"2", BucketLong},
	}
	for _, tt := range tests {
		got, err := ParseBucket(tt.in)
		if err != nil {
			t.Errorf("ParseBucket(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBucket(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseBucket("forever"); !errors.Is(err, engine.ErrValidation) {
		t.Errorf("expected validation failure, got %v", err)
	}
}

func TestInsertionPolicy(t *testing.T) {
	want := map[InsertionPolicy]int{1: 5, 2: 4, 3: 3, 4: 2, 5: 1, 0: 5, 9: 5, -1: 5}
	for level, n := range want {
		if got := level.InsertAfter(); got != n {
			t.Errorf("InsertionPolicy(%d).InsertAfter() = %d, want %d", level, got, n)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if p, err := ParseLevel(0); err != nil || p.InsertAfter() != DefaultInsertAfter {
		t.Errorf("unset level should select the default ratio, got %v, %v", p, err)
	}
	if p, err := ParseLevel(5); err != nil || p.InsertAfter() != 1 {
		t.Errorf("ParseLevel(5) = %v, %v", p, err)
	}
	for _, bad := range []int{-1, 6, 100} {
		if _, err := ParseLevel(bad); !errors.Is(err, engine.ErrValidation) {
			t.Errorf("ParseLevel(%d) expected validation failure, got %v", bad, err)
		}
	}
}
