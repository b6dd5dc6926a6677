package search

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heavyequip/internal/repos"
)

func run(t *testing.T, v url.Values) ([]string, int) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	p, errs := Parse(v)
	require.Nil(t, errs)
	rows, total, err := repos.NewSearchRepo(db).Run(context.Background(), Build(p), p.Limit, p.Offset())
	require.NoError(t, err)
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, total
}

func TestBuildOnlyActiveNewestFirst(t *testing.T) {
	ids, total := run(t, url.Values{})
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"ad-l120h-new", "ad-cat-301-rent", "ad-ltm-1100", "ad-pc210-2021", "ad-cat-320-2019"}, ids)
	assert.NotContains(t, ids, "ad-genset-draft")
}

func TestBuildFilters(t *testing.T) {
	cases := []struct {
		name string
		v    url.Values
		want []string
	}{
		{"text over joined names", url.Values{"q": {"excavator"}, "sort": {"oldest"}},
			[]string{"ad-cat-320-2019", "ad-pc210-2021", "ad-cat-301-rent"}},
		{"rent only", url.Values{"type": {"rent"}}, []string{"ad-cat-301-rent"}},
		{"brand slug", url.Values{"brand": {"caterpillar"}}, []string{"ad-cat-301-rent", "ad-cat-320-2019"}},
		{"category slug", url.Values{"category": {"cranes"}}, []string{"ad-ltm-1100"}},
		{"verified store", url.Values{"verified": {"true"}}, []string{"ad-ltm-1100", "ad-pc210-2021", "ad-cat-320-2019"}},
		{"city falls back to store location", url.Values{"city": {"HOUSTON"}}, []string{"ad-ltm-1100", "ad-pc210-2021", "ad-cat-320-2019"}},
		{"own location", url.Values{"city": {"atlanta"}}, []string{"ad-l120h-new"}},
		{"min price skips price on request", url.Values{"min_price": {"100000"}}, []string{"ad-l120h-new", "ad-pc210-2021", "ad-cat-320-2019"}},
		{"featured", url.Values{"featured": {"true"}}, []string{"ad-cat-301-rent", "ad-cat-320-2019"}},
		{"condition", url.Values{"condition": {"new"}}, []string{"ad-l120h-new"}},
		{"hours", url.Values{"max_hours": {"1000"}}, []string{"ad-l120h-new", "ad-cat-301-rent"}},
		{"years", url.Values{"min_year": {"2020"}, "max_year": {"2022"}}, []string{"ad-cat-301-rent", "ad-pc210-2021"}},
		{"like wildcards are literal", url.Values{"q": {"50%"}}, []string{}},
		{"percent does not span digits", url.Values{"q": {"1%0"}}, []string{}},
		{"underscore does not match one char", url.Values{"q": {"3_0"}}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ids, total := run(t, tc.v)
			assert.Equal(t, tc.want, ids)
			assert.Equal(t, len(tc.want), total)
		})
	}
}

func TestBuildPriceSortPutsOnRequestLast(t *testing.T) {
	ids, _ := run(t, url.Values{"sort": {"price_asc"}})
	assert.Equal(t, []string{"ad-cat-301-rent", "ad-cat-320-2019", "ad-pc210-2021", "ad-l120h-new", "ad-ltm-1100"}, ids)

	ids, _ = run(t, url.Values{"sort": {"price_desc"}})
	assert.Equal(t, []string{"ad-l120h-new", "ad-pc210-2021", "ad-cat-320-2019", "ad-cat-301-rent", "ad-ltm-1100"}, ids)
}

func TestBuildPagination(t *testing.T) {
	ids, total := run(t, url.Values{"limit": {"2"}, "page": {"3"}})
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"ad-cat-320-2019"}, ids)

	ids, total = run(t, url.Values{"limit": {"2"}, "page": {"9"}})
	assert.Equal(t, 5, total)
	assert.Empty(t, ids)
}
