// Package search turns /api/search query strings into validated filters and
// goqu datasets over the ads_with_all_joins view.
package search

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"heavyequip/internal/validate"
)

const (
	DefaultLimit = 12
	MaxLimit     = 50
	MinYear      = 1950
)

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortYearDesc  = "year_desc"
	SortHoursAsc  = "hours_asc"
)

var sorts = map[string]bool{
	SortNewest: true, SortOldest: true, SortPriceAsc: true,
	SortPriceDesc: true, SortYearDesc: true, SortHoursAsc: true,
}

// Params is a validated search request. Zero values mean "no filter".
type Params struct {
	Q           string           `json:"q,omitempty"`
	Category    string           `json:"category,omitempty"`
	SubCategory string           `json:"sub_category,omitempty"`
	Brand       string           `json:"brand,omitempty"`
	Model       string           `json:"model,omitempty"`
	Store       string           `json:"store,omitempty"`
	Type        string           `json:"type,omitempty"`
	Conditions  []string         `json:"condition,omitempty"`
	City        string           `json:"city,omitempty"`
	Region      string           `json:"region,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	MinYear     *int             `json:"min_year,omitempty"`
	MaxYear     *int             `json:"max_year,omitempty"`
	MaxHours    *int             `json:"max_hours,omitempty"`
	Featured    *bool            `json:"featured,omitempty"`
	Verified    bool             `json:"verified,omitempty"`
	Sort        string           `json:"sort"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
}

// Offset is the number of rows skipped before the current page.
func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// now is swapped in tests to pin the year window.
var now = time.Now

// Parse validates the raw query. Unknown keys are ignored; every invalid key
// is reported in the returned Errors. Text filters are lowercased since they
// match case-insensitively.
func Parse(v url.Values) (Params, *validate.Errors) {
	p := Params{Sort: SortNewest, Page: 1, Limit: DefaultLimit}
	errs := &validate.Errors{}
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }

	if raw := get("q"); raw != "" {
		q, ok := validate.Q(raw)
		if !ok {
			errs.Add("q", "contains unsupported characters")
		}
		p.Q = strings.ToLower(q)
	}

	for key, dst := range map[string]*string{
		"category": &p.Category, "sub_category": &p.SubCategory, "brand": &p.Brand,
		"model": &p.Model, "store": &p.Store,
	} {
		raw := get(key)
		if raw == "" {
			continue
		}
		id, ok := validate.ID(raw)
		if !ok {
			errs.Add(key, "must be a slug or id")
			continue
		}
		*dst = strings.ToLower(id)
	}

	switch t := strings.ToLower(get("type")); t {
	case "":
	case "sale", "rent":
		p.Type = t
	default:
		errs.Add("type", "must be sale or rent")
	}

	if raw := get("condition"); raw != "" {
		seen := map[string]bool{}
		for _, c := range strings.Split(strings.ToLower(raw), ",") {
			c = strings.TrimSpace(c)
			switch c {
			case "":
			case "new", "used", "refurbished":
				if !seen[c] {
					seen[c] = true
					p.Conditions = append(p.Conditions, c)
				}
			default:
				errs.Add("condition", "must be new, used or refurbished")
			}
		}
		sort.Strings(p.Conditions)
	}

	for key, dst := range map[string]*string{"city": &p.City, "region": &p.Region} {
		raw := get(key)
		if raw == "" {
			continue
		}
		if len(raw) > 80 || strings.ContainsAny(raw, "%_<>\x00") {
			errs.Add(key, "is invalid")
			continue
		}
		*dst = strings.ToLower(raw)
	}

	p.MinPrice = parsePrice(get("min_price"), "min_price", errs)
	p.MaxPrice = parsePrice(get("max_price"), "max_price", errs)
	if p.MinPrice != nil && p.MaxPrice != nil && p.MinPrice.GreaterThan(*p.MaxPrice) {
		errs.Add("min_price", "must not exceed max_price")
	}

	maxYear := now().Year() + 1
	p.MinYear = parseInt(get("min_year"), "min_year", MinYear, maxYear, errs)
	p.MaxYear = parseInt(get("max_year"), "max_year", MinYear, maxYear, errs)
	if p.MinYear != nil && p.MaxYear != nil && *p.MinYear > *p.MaxYear {
		errs.Add("min_year", "must not exceed max_year")
	}
	p.MaxHours = parseInt(get("max_hours"), "max_hours", 0, 1_000_000, errs)

	if raw := get("featured"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs.Add("featured", "must be true or false")
		} else {
			p.Featured = &b
		}
	}
	if raw := get("verified"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs.Add("verified", "must be true or false")
		} else {
			p.Verified = b
		}
	}

	if raw := strings.ToLower(get("sort")); raw != "" {
		if !sorts[raw] {
			errs.Add("sort", "must be one of newest, oldest, price_asc, price_desc, year_desc, hours_asc")
		} else {
			p.Sort = raw
		}
	}

	if raw := get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("page", "must be a positive integer")
		} else {
			p.Page = n
		}
	}
	if raw := get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil || n < 1:
			errs.Add("limit", "must be a positive integer")
		case n > MaxLimit:
			p.Limit = MaxLimit
		default:
			p.Limit = n
		}
	}

	if errs.Empty() {
		return p, nil
	}
	return p, errs
}

func parsePrice(raw, field string, errs *validate.Errors) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		errs.Add(field, "must be a non-negative number")
		return nil
	}
	return &d
}

func parseInt(raw, field string, lo, hi int, errs *validate.Errors) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		errs.Add(field, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		return nil
	}
	return &n
}

// Key is the canonical cache key for p: the same filters always map to the same key.
func (p Params) Key() string {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("q", p.Q)
	set("category", p.Category)
	set("sub_category", p.SubCategory)
	set("brand", p.Brand)
	set("model", p.Model)
	set("store", p.Store)
	set("type", p.Type)
	set("condition", strings.Join(p.Conditions, ","))
	set("city", p.City)
	set("region", p.Region)
	if p.MinPrice != nil {
		set("min_price", p.MinPrice.String())
	}
	if p.MaxPrice != nil {
		set("max_price", p.MaxPrice.String())
	}
	if p.MinYear != nil {
		set("min_year", strconv.Itoa(*p.MinYear))
	}
	if p.MaxYear != nil {
		set("max_year", strconv.Itoa(*p.MaxYear))
	}
	if p.MaxHours != nil {
		set("max_hours", strconv.Itoa(*p.MaxHours))
	}
	if p.Featured != nil {
		set("featured", strconv.FormatBool(*p.Featured))
	}
	if p.Verified {
		set("verified", "true")
	}
	set("sort", p.Sort)
	set("page", strconv.Itoa(p.Page))
	set("limit", strconv.Itoa(p.Limit))
	// Encode sorts by key.
	return "search:" + v.Encode()
}
