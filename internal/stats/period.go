// Package stats computes dashboard growth figures from created_at timestamps.
package stats

import (
	"fmt"
	"strings"
	"time"
)

// Period is a reporting window: either N days bucketed by day or twelve
// calendar months bucketed by month.
type Period struct {
	Name    string
	Days    int
	Monthly bool
}

var periods = map[string]Period{
	"7d":  {Name: "7d", Days: 7},
	"30d": {Name: "30d", Days: 30},
	"90d": {Name: "90d", Days: 90},
	"12m": {Name: "12m", Monthly: true},
}

const DefaultPeriod = "30d"

func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = DefaultPeriod
	}
	p, ok := periods[s]
	if !ok {
		return Period{}, fmt.Errorf("unknown period %q (want 7d, 30d, 90d or 12m)", s)
	}
	return p, nil
}

// Window returns the start of the previous window, the start of the current
// window, and the bucket starts of the current window. Both windows have the
// same length and the current one ends at now.
func (p Period) Window(now time.Time) (prevStart, start time.Time, buckets []time.Time) {
	now = now.UTC()
	if p.Monthly {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = first.AddDate(0, -11, 0)
		prevStart = start.AddDate(0, -12, 0)
		for i := 0; i < 12; i++ {
			buckets = append(buckets, start.AddDate(0, i, 0))
		}
		return prevStart, start, buckets
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start = day.AddDate(0, 0, -(p.Days - 1))
	prevStart = start.AddDate(0, 0, -p.Days)
	for i := 0; i < p.Days; i++ {
		buckets = append(buckets, start.AddDate(0, 0, i))
	}
	return prevStart, start, buckets
}

func (p Period) bucketKey(t time.Time) string {
	if p.Monthly {
		return t.UTC().Format("2006-01")
	}
	return t.UTC().Format("2006-01-02")
}
