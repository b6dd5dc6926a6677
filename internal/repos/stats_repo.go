package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// statsTables lists the tables whose growth the dashboard tracks.
var statsTables = map[string]bool{
	"ads":       true,
	"stores":    true,
	"inquiries": true,
	"blogs":     true,
	"users":     true,
}

type StatsRepo struct{ db *sqlx.DB }

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

// CreatedAtPage returns one page of created_at values at or after since,
// oldest first. since uses the "YYYY-MM-DD HH:MM:SS" layout of the column.
func (r *StatsRepo) CreatedAtPage(ctx context.Context, table, since string, limit, offset int) ([]string, error) {
	if !statsTables[table] {
		return nil, fmt.Errorf("stats: table %q not tracked", table)
	}
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT created_at FROM `+table+`
	  WHERE created_at >= ?
	  ORDER BY created_at, id
	  LIMIT ? OFFSET ?`, since, limit, offset)
	return out, err
}

// Total counts every row of a tracked table.
func (r *StatsRepo) Total(ctx context.Context, table string) (int, error) {
	if !statsTables[table] {
		return 0, fmt.Errorf("stats: table %q not tracked", table)
	}
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table)
	return n, err
}
