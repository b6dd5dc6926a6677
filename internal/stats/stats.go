package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	applog "heavyequip/internal/log"
	"heavyequip/internal/metrics"
)

// Entities are the tables the dashboard reports on, in display order.
var Entities = []string{"ads", "stores", "inquiries", "blogs", "users"}

// Source pages through created_at values. repos.StatsRepo satisfies it.
type Source interface {
	CreatedAtPage(ctx context.Context, table, since string, limit, offset int) ([]string, error)
	Total(ctx context.Context, table string) (int, error)
}

type Bucket struct {
	Date       string `json:"date"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}

type EntityStats struct {
	Entity    string   `json:"entity"`
	Current   int      `json:"current"`
	Previous  int      `json:"previous"`
	GrowthPct float64  `json:"growth_pct"`
	Total     int      `json:"total"`
	Skipped   int      `json:"skipped"`
	Series    []Bucket `json:"series"`
}

type Report struct {
	Period      string        `json:"period"`
	From        string        `json:"from"`
	To          string        `json:"to"`
	GeneratedAt string        `json:"generated_at"`
	Entities    []EntityStats `json:"entities"`
}

// PageSize mirrors the row cap of a single range request on the hosted database.
const PageSize = 1000

const sinceLayout = "2006-01-02 15:04:05"

type Aggregator struct {
	src      Source
	now      func() time.Time
	pageSize int
	attempts int
	backoff  time.Duration
}

func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src, now: time.Now, pageSize: PageSize, attempts: 3, backoff: 100 * time.Millisecond}
}

// Growth is the percent change from previous to current, rounded to one
// decimal. With no previous rows any current activity counts as 100%.
func Growth(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	g := float64(current-previous) / float64(previous) * 100
	return math.Round(g*10) / 10
}

func (a *Aggregator) Report(ctx context.Context, p Period) (Report, error) {
	now := a.now().UTC()
	_, start, _ := p.Window(now)
	r := Report{
		Period:      p.Name,
		From:        start.Format(time.DateOnly),
		To:          now.Format(time.DateOnly),
		GeneratedAt: now.Format(time.RFC3339),
	}
	for _, e := range Entities {
		es, err := a.Entity(ctx, e, p, now)
		if err != nil {
			return Report{}, err
		}
		r.Entities = append(r.Entities, es)
	}
	return r, nil
}

// Entity aggregates one table over p ending at now. Report passes the same
// now to every entity so all windows line up.
func (a *Aggregator) Entity(ctx context.Context, table string, p Period, now time.Time) (EntityStats, error) {
	now = now.UTC()
	prevStart, start, bucketStarts := p.Window(now)

	raw, err := a.fetchAll(ctx, table, prevStart.Format(sinceLayout))
	if err != nil {
		return EntityStats{}, err
	}
	total, err := a.src.Total(ctx, table)
	if err != nil {
		return EntityStats{}, fmt.Errorf("stats %s: total: %w", table, err)
	}

	es := EntityStats{Entity: table, Total: total}
	counts := make(map[string]int, len(bucketStarts))
	for _, s := range raw {
		ts, ok := parseTimestamp(s)
		if !ok {
			es.Skipped++
			continue
		}
		switch {
		case ts.Before(prevStart), ts.After(now):
		case ts.Before(start):
			es.Previous++
		default:
			es.Current++
			counts[p.bucketKey(ts)]++
		}
	}
	if es.Skipped > 0 {
		metrics.StatsSkipped.WithLabelValues(table).Add(float64(es.Skipped))
		l := applog.Logger()
		l.Warn().Str("action", "stats.skip").Str("entity", table).Int("skipped", es.Skipped).Msg("unparseable created_at values")
	}

	// Rows older than the current window seed the cumulative line.
	running := total - len(raw) + es.Previous
	if running < 0 {
		running = 0
	}
	es.Series = make([]Bucket, 0, len(bucketStarts))
	for _, b := range bucketStarts {
		key := p.bucketKey(b)
		running += counts[key]
		es.Series = append(es.Series, Bucket{Date: key, Count: counts[key], Cumulative: running})
	}
	es.GrowthPct = Growth(es.Current, es.Previous)
	return es, nil
}

// fetchAll pages until a short page comes back.
func (a *Aggregator) fetchAll(ctx context.Context, table, since string) ([]string, error) {
	var out []string
	for offset := 0; ; offset += a.pageSize {
		page, err := a.fetchPage(ctx, table, since, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < a.pageSize {
			return out, nil
		}
	}
}

func (a *Aggregator) fetchPage(ctx context.Context, table, since string, offset int) ([]string, error) {
	var lastErr error
	for attempt := 0; attempt < a.attempts; attempt++ {
		if attempt > 0 {
			wait := a.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		page, err := a.src.CreatedAtPage(ctx, table, since, a.pageSize, offset)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("stats %s: fetch offset %d after %d attempts: %w", table, offset, a.attempts, lastErr)
}

var timestampLayouts = []string{
	sinceLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
