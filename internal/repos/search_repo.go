package repos

import (
	"context"

	"heavyequip/internal/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// SearchRepo runs prebuilt goqu datasets against ads_with_all_joins.
type SearchRepo struct{ db *sqlx.DB }

func NewSearchRepo(db *sqlx.DB) *SearchRepo { return &SearchRepo{db: db} }

// Run returns one page of ds together with the total number of matching rows.
func (r *SearchRepo) Run(ctx context.Context, ds *goqu.SelectDataset, limit, offset int) ([]domain.AdView, int, error) {
	countSQL, countArgs, err := ds.ClearOrder().ClearLimit().ClearOffset().
		Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}
	out := []domain.AdView{}
	if total == 0 || offset >= total {
		return out, total, nil
	}
	pageSQL, pageArgs, err := ds.Limit(uint(limit)).Offset(uint(offset)).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	err = r.db.SelectContext(ctx, &out, pageSQL, pageArgs...)
	return out, total, err
}

type FacetCount struct {
	ID    string `db:"id" json:"id"`
	Slug  string `db:"slug" json:"slug"`
	Name  string `db:"name" json:"name"`
	Count int    `db:"n" json:"count"`
}

// Facets describes the filter values present among active ads.
type Facets struct {
	Categories []FacetCount `json:"categories"`
	Brands     []FacetCount `json:"brands"`
	Cities     []string     `json:"cities"`
	PriceMin   *float64     `db:"price_min" json:"price_min"`
	PriceMax   *float64     `db:"price_max" json:"price_max"`
	YearMin    *int         `db:"year_min" json:"year_min"`
	YearMax    *int         `db:"year_max" json:"year_max"`
}

func (r *SearchRepo) Facets(ctx context.Context) (Facets, error) {
	f := Facets{Categories: []FacetCount{}, Brands: []FacetCount{}, Cities: []string{}}
	if err := r.db.SelectContext(ctx, &f.Categories, `
	  SELECT category_id AS id, category_slug AS slug, category_name AS name, COUNT(*) AS n
	  FROM ads_with_all_joins
	  WHERE `+publicAd+`
	  GROUP BY category_id, category_slug, category_name
	  ORDER BY n DESC, name`); err != nil {
		return f, err
	}
	if err := r.db.SelectContext(ctx, &f.Brands, `
	  SELECT brand_id AS id, brand_slug AS slug, brand_name AS name, COUNT(*) AS n
	  FROM ads_with_all_joins
	  WHERE `+publicAd+` AND brand_id IS NOT NULL
	  GROUP BY brand_id, brand_slug, brand_name
	  ORDER BY n DESC, name`); err != nil {
		return f, err
	}
	if err := r.db.SelectContext(ctx, &f.Cities, `
	  SELECT DISTINCT city FROM ads_with_all_joins
	  WHERE `+publicAd+` AND city IS NOT NULL
	  ORDER BY city`); err != nil {
		return f, err
	}
	err := r.db.GetContext(ctx, &f, `
	  SELECT CAST(MIN(price) AS REAL) AS price_min, CAST(MAX(price) AS REAL) AS price_max,
	         MIN(year) AS year_min, MAX(year) AS year_max
	  FROM ads_with_all_joins
	  WHERE `+publicAd)
	return f, err
}
