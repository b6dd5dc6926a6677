package search

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
)

// View is the denormalized relation every search reads from.
const View = "ads_with_all_joins"

var dialect = goqu.Dialect("sqlite3")

// escapeLike makes % and _ in user text match literally (ESCAPE '\').
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func likeAny(pattern string, cols ...string) exp.Expression {
	ors := make([]exp.Expression, 0, len(cols))
	for _, c := range cols {
		ors = append(ors, goqu.L(`LOWER(COALESCE(?, '')) LIKE ? ESCAPE '\'`, goqu.C(c), pattern))
	}
	return goqu.Or(ors...)
}

// slugOrID matches a reference either by its id column or by its slug column.
func slugOrID(idCol, slugCol, v string) exp.Expression {
	if slugCol == "" {
		return goqu.C(idCol).Eq(v)
	}
	return goqu.Or(goqu.C(idCol).Eq(v), goqu.L(`LOWER(?)`, goqu.C(slugCol)).Eq(v))
}

// Build maps p onto a dataset over View. Only active ads of stores that were
// not rejected are ever selected.
func Build(p Params) *goqu.SelectDataset {
	ds := dialect.From(View).Prepared(true).Where(
		goqu.C("status").Eq("active"),
		goqu.Or(goqu.C("store_verification_status").IsNull(), goqu.C("store_verification_status").Neq("rejected")),
	)

	if p.Q != "" {
		pattern := "%" + escapeLike(strings.ToLower(p.Q)) + "%"
		ds = ds.Where(likeAny(pattern, "title", "description", "brand_name", "model_name", "category_name"))
	}
	if p.Category != "" {
		ds = ds.Where(slugOrID("category_id", "category_slug", p.Category))
	}
	if p.SubCategory != "" {
		ds = ds.Where(goqu.C("sub_category_id").Eq(p.SubCategory))
	}
	if p.Brand != "" {
		ds = ds.Where(slugOrID("brand_id", "brand_slug", p.Brand))
	}
	if p.Model != "" {
		ds = ds.Where(goqu.C("model_id").Eq(p.Model))
	}
	if p.Store != "" {
		ds = ds.Where(slugOrID("store_id", "store_slug", p.Store))
	}
	if p.Type != "" {
		ds = ds.Where(goqu.C("listing_type").Eq(p.Type))
	}
	if len(p.Conditions) > 0 {
		ds = ds.Where(goqu.C("condition").In(p.Conditions))
	}
	if p.City != "" {
		ds = ds.Where(goqu.L(`LOWER(?)`, goqu.C("city")).Eq(strings.ToLower(p.City)))
	}
	if p.Region != "" {
		ds = ds.Where(goqu.L(`LOWER(?)`, goqu.C("region")).Eq(strings.ToLower(p.Region)))
	}
	// Price filters never match "price on request" rows.
	if p.MinPrice != nil {
		ds = ds.Where(goqu.C("price").Gte(p.MinPrice.InexactFloat64()))
	}
	if p.MaxPrice != nil {
		ds = ds.Where(goqu.C("price").Lte(p.MaxPrice.InexactFloat64()))
	}
	if p.MinYear != nil {
		ds = ds.Where(goqu.C("year").Gte(*p.MinYear))
	}
	if p.MaxYear != nil {
		ds = ds.Where(goqu.C("year").Lte(*p.MaxYear))
	}
	if p.MaxHours != nil {
		ds = ds.Where(goqu.C("hours").Lte(*p.MaxHours))
	}
	if p.Featured != nil {
		ds = ds.Where(goqu.C("featured").Eq(*p.Featured))
	}
	if p.Verified {
		ds = ds.Where(goqu.C("store_verification_status").Eq("verified"))
	}

	return ds.Order(order(p.Sort)...)
}

func order(sort string) []exp.OrderedExpression {
	created := goqu.L(`datetime(created_at)`)
	switch sort {
	case SortOldest:
		return []exp.OrderedExpression{created.Asc(), goqu.C("id").Asc()}
	case SortPriceAsc:
		return []exp.OrderedExpression{goqu.L(`price IS NULL`).Asc(), goqu.C("price").Asc(), goqu.C("id").Asc()}
	case SortPriceDesc:
		return []exp.OrderedExpression{goqu.L(`price IS NULL`).Asc(), goqu.C("price").Desc(), goqu.C("id").Asc()}
	case SortYearDesc:
		return []exp.OrderedExpression{goqu.L(`year IS NULL`).Asc(), goqu.C("year").Desc(), goqu.C("id").Asc()}
	case SortHoursAsc:
		return []exp.OrderedExpression{goqu.L(`hours IS NULL`).Asc(), goqu.C("hours").Asc(), goqu.C("id").Asc()}
	default:
		return []exp.OrderedExpression{created.Desc(), goqu.C("id").Asc()}
	}
}
