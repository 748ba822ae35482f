package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Digests are sent at 08:00 UTC, every day or every Monday.
const digestHour = 8

// NextDigest returns the first digest time strictly after from for the given
// frequency. Immediate delivery has no digest and yields nil.
func NextDigest(frequency string, from time.Time) (*time.Time, error) {
	var opt rrule.ROption
	switch frequency {
	case "immediate", "":
		return nil, nil
	case "daily":
		opt = rrule.ROption{Freq: rrule.DAILY}
	case "weekly":
		opt = rrule.ROption{Freq: rrule.WEEKLY, Byweekday: []rrule.Weekday{rrule.MO}}
	default:
		return nil, fmt.Errorf("unknown frequency %q", frequency)
	}

	from = from.UTC()
	opt.Dtstart = time.Date(from.Year(), from.Month(), from.Day(), digestHour, 0, 0, 0, time.UTC).AddDate(0, 0, -7)
	opt.Byhour = []int{digestHour}
	opt.Byminute = []int{0}
	opt.Bysecond = []int{0}

	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build digest rule: %w", err)
	}

	next := rr.After(from, false)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}
