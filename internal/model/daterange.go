package model

import (
	"fmt"
	"time"
)

// DateRange bounds a sync run to tickets whose governing timestamp falls
// inside [Start 00:00:00, End 23:59:59]. A nil bound means unbounded on
// that side.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// NewDateRange parses "2006-01-02" formatted bounds. Empty strings leave
// the corresponding side unbounded. The start snaps to the beginning of
// its day, the end to the last second of its day.
func NewDateRange(start, end string) (DateRange, error) {
	var r DateRange

	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return DateRange{}, fmt.Errorf("parsing start date %q: %w", start, err)
		}
		r.Start = &t
	}

	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return DateRange{}, fmt.Errorf("parsing end date %q: %w", end, err)
		}
		t = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		r.End = &t
	}

	return r, nil
}

// BeforeStart reports whether t falls before the start bound.
func (r DateRange) BeforeStart(t time.Time) bool {
	return r.Start != nil && t.Before(*r.Start)
}

// AfterEnd reports whether t falls after the end bound. A timestamp at
// exactly the end second is inside the range.
func (r DateRange) AfterEnd(t time.Time) bool {
	return r.End != nil && t.After(*r.End)
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !r.BeforeStart(t) && !r.AfterEnd(t)
}
