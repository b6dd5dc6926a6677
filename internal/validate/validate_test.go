package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"2019 Caterpillar 320 Excavator": "2019-caterpillar-320-excavator",
		"  LTM 1100-5.2 ":                "ltm-1100-5-2",
		"Volvo CE / L120H!!":             "volvo-ce-l120h",
		"Ünïcode only ✓":                 "n-code-only",
		"":                               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
	long := Slugify(strings.Repeat("ab ", 100))
	assert.LessOrEqual(t, len(long), 120)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestQ(t *testing.T) {
	q, ok := Q("  Cat 301.7 ")
	assert.True(t, ok)
	assert.Equal(t, "Cat 301.7", q)

	q, ok = Q("50% grade")
	assert.True(t, ok)
	assert.Equal(t, "50% grade", q)

	_, ok = Q("<script>")
	assert.False(t, ok)
	_, ok = Q("   ")
	assert.False(t, ok)

	q, ok = Q(strings.Repeat("x", MaxQueryLen+50))
	assert.True(t, ok)
	assert.Len(t, q, MaxQueryLen)
}

func TestIDAndSlug(t *testing.T) {
	_, ok := ID("ad-cat-320-2019")
	assert.True(t, ok)
	_, ok = ID("../etc")
	assert.False(t, ok)
	_, ok = ID(strings.Repeat("a", 65))
	assert.False(t, ok)

	assert.True(t, Slug("wheel-loaders"))
	assert.False(t, Slug("Wheel-Loaders"))
	assert.False(t, Slug("double--dash"))
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("Passw0rd!"))
	assert.False(t, Password("password"))
	assert.False(t, Password("Sh0rt!"))
	assert.False(t, Password("NoSymbol123"))
}

func TestPage(t *testing.T) {
	assert.Equal(t, 3, Page("3"))
	assert.Equal(t, 1, Page("0"))
	assert.Equal(t, 1, Page("abc"))
}

type listing struct {
	Title   string `json:"title" validate:"required,max=10"`
	Slug    string `json:"slug" validate:"omitempty,slug"`
	Type    string `json:"listing_type" validate:"required,listing_type"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Urgency string `json:"urgency" validate:"omitempty,urgency"`
}

func TestStructUsesJSONNames(t *testing.T) {
	err := Struct(listing{Title: "", Slug: "Bad Slug", Type: "lease", Phone: "call me", Urgency: "asap"})
	var errs *Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, map[string]string{
		"title":        "is required",
		"slug":         "must contain only lowercase letters, digits and dashes",
		"listing_type": "is invalid",
		"phone":        "must be a valid phone number",
		"urgency":      "is invalid",
	}, errs.Fields)

	assert.NoError(t, Struct(listing{Title: "Crane", Type: "rent", Phone: "+1 303 555 0199"}))

	err = Struct(listing{Title: "far too long a title", Type: "sale"})
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "must be at most 10", errs.Fields["title"])
}

func TestErrorsKeepFirstMessage(t *testing.T) {
	e := &Errors{}
	assert.NoError(t, e.Err())
	e.Add("price", "must not be negative")
	e.Add("price", "is required")
	assert.Equal(t, "must not be negative", e.Fields["price"])
	assert.EqualError(t, e, "invalid input: price: must not be negative")
}
