package schedule

import (
	"testing"
	"time"
)

func TestNextDigest(t *testing.T) {
	// Wednesday
	from := time.Date(2024, 6, 12, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		frequency string
		from      time.Time
		want      time.Time
	}{
		{"daily after digest hour", "daily", from, time.Date(2024, 6, 13, 8, 0, 0, 0, time.UTC)},
		{"daily before digest hour", "daily", time.Date(2024, 6, 12, 7, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)},
		{"weekly", "weekly", from, time.Date(2024, 6, 17, 8, 0, 0, 0, time.UTC)},
		{"weekly on monday after hour", "weekly", time.Date(2024, 6, 17, 9, 0, 0, 0, time.UTC), time.Date(2024, 6, 24, 8, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := NextDigest(tc.frequency, tc.from)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got == nil || !got.Equal(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestNextDigestImmediate(t *testing.T) {
	got, err := NextDigest("immediate", time.Now())
	if err != nil || got != nil {
		t.Fatalf("expected nil digest, got %v, %v", got, err)
	}
}

func TestNextDigestUnknownFrequency(t *testing.T) {
	if _, err := NextDigest("hourly", time.Now()); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}
