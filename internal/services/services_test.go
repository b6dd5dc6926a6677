package services_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heavyequip/internal/cache"
	"heavyequip/internal/domain"
	"heavyequip/internal/repos"
	"heavyequip/internal/search"
	"heavyequip/internal/services"
	"heavyequip/internal/storage"
	"heavyequip/internal/validate"
)

type env struct {
	db       *sqlx.DB
	cache    *cache.Memory
	catalog  *services.CatalogService
	ads      *services.AdService
	stores   *services.StoreService
	blogs    *services.BlogService
	inquiry  *services.InquiryService
	saved    *services.SavedService
	search   *services.SearchService
	statsSvc *services.StatsService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mem := cache.NewMemory(100)
	cats, brands, locs := repos.NewCategoryRepo(db), repos.NewBrandRepo(db), repos.NewLocationRepo(db)
	adRepo, storeRepo := repos.NewAdRepo(db), repos.NewStoreRepo(db)
	inqRepo := repos.NewInquiryRepo(db)
	return &env{
		db:       db,
		cache:    mem,
		catalog:  services.NewCatalogService(cats, brands, locs, mem),
		ads:      services.NewAdService(adRepo, cats, brands, storeRepo, mem),
		stores:   services.NewStoreService(storeRepo, adRepo, locs, mem),
		blogs:    services.NewBlogService(repos.NewBlogRepo(db)),
		inquiry:  services.NewInquiryService(inqRepo, adRepo, storeRepo),
		saved:    services.NewSavedService(repos.NewSavedRepo(db), adRepo),
		search:   services.NewSearchService(repos.NewSearchRepo(db), mem, time.Minute),
		statsSvc: services.NewStatsService(repos.NewStatsRepo(db), inqRepo),
	}
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs *validate.Errors
	require.ErrorAs(t, err, &verrs)
	return verrs.Fields
}

func strp(s string) *string { return &s }

func searchParams(t *testing.T, raw string) (search.Params, *validate.Errors) {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return search.Parse(v)
}

func TestCatalogCreateDerivesSlugAndInvalidatesSearch(t *testing.T) {
	e := newEnv(t)
	e.cache.Set(context.Background(), cache.SearchPrefix+"q=x", []byte("{}"), time.Minute)

	c, err := e.catalog.CreateCategory(domain.Category{Name: "  Telehandlers & Lifts "})
	require.NoError(t, err)
	assert.Equal(t, "telehandlers-lifts", c.Slug)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 0, e.cache.Len())

	_, err = e.catalog.CreateCategory(domain.Category{Name: "Telehandlers", Slug: "TELEHANDLERS-LIFTS"})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestCatalogValidation(t *testing.T) {
	e := newEnv(t)
	_, err := e.catalog.CreateBrand(domain.Brand{Name: ""})
	assert.Contains(t, fields(t, err), "name")

	_, err = e.catalog.CreateBrand(domain.Brand{Name: "Bobcat", Slug: "Not A Slug"})
	assert.Contains(t, fields(t, err), "slug")

	_, err = e.catalog.CreateEngine(domain.Engine{Name: "D13", FuelType: "coal"})
	assert.Contains(t, fields(t, err), "fuel_type")
}

func TestCatalogDeleteReferencedFails(t *testing.T) {
	e := newEnv(t)
	assert.ErrorIs(t, e.catalog.DeleteCategory("excavators"), services.ErrConflict)
	assert.ErrorIs(t, e.catalog.DeleteBrand("caterpillar"), services.ErrConflict)
	assert.ErrorIs(t, e.catalog.DeleteCategory("missing"), services.ErrNotFound)

	// unreferenced rows delete fine; the model's ads keep their row with model_id nulled
	require.NoError(t, e.catalog.DeleteModel("cat-320"))
	ad, err := e.ads.Get("ad-cat-320-2019")
	require.NoError(t, err)
	assert.Nil(t, ad.ModelID)
}

func validAd() domain.Ad {
	return domain.Ad{
		Title:       "2020 Caterpillar 320 Excavator",
		ListingType: "sale",
		Condition:   "used",
		Price:       decimal.NewNullDecimal(decimal.RequireFromString("99000.50")),
		CategoryID:  "excavators",
		BrandID:     strp("caterpillar"),
		ModelID:     strp("cat-320"),
		StoreID:     strp("gulf-coast-machinery"),
	}
}

func TestAdCreate(t *testing.T) {
	e := newEnv(t)
	a, err := e.ads.Create(validAd())
	require.NoError(t, err)
	assert.Equal(t, "2020-caterpillar-320-excavator", a.Slug)
	assert.Equal(t, domain.AdPending, a.Status)
	assert.Equal(t, "USD", a.Currency)
	assert.Equal(t, "Excavators", a.CategoryName)
	assert.Equal(t, "99000.5", a.Price.Decimal.String())
	assert.Empty(t, a.Images())

	// same title again gets a suffixed slug
	b, err := e.ads.Create(validAd())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.Slug, "2020-caterpillar-320-excavator-"))
	assert.NotEqual(t, a.Slug, b.Slug)
}

func TestAdCreateValidation(t *testing.T) {
	e := newEnv(t)

	a := validAd()
	a.CategoryID = "nope"
	a.ModelID = strp("komatsu-pc210")
	f := fields(t, func() error { _, err := e.ads.Create(a); return err }())
	assert.Contains(t, f, "category_id")
	assert.Contains(t, f, "model_id")

	a = validAd()
	a.ListingType = "rent"
	f = fields(t, func() error { _, err := e.ads.Create(a); return err }())
	assert.Contains(t, f, "rental_period")

	a = validAd()
	a.Condition = "broken"
	f = fields(t, func() error { _, err := e.ads.Create(a); return err }())
	assert.Contains(t, f, "condition")
}

func TestAdPublicVisibilityAndViews(t *testing.T) {
	e := newEnv(t)
	_, err := e.ads.PublicBySlug("150-kva-diesel-generator")
	assert.ErrorIs(t, err, services.ErrNotFound)

	a, err := e.ads.View("2019-caterpillar-320-excavator")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Views)

	require.NoError(t, e.ads.SetStatus(a.ID, domain.AdSold))
	_, err = e.ads.PublicBySlug("2019-caterpillar-320-excavator")
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.Contains(t, fields(t, e.ads.SetStatus(a.ID, "gone")), "status")
	assert.ErrorIs(t, e.ads.SetStatus("missing", domain.AdActive), services.ErrNotFound)
}

func TestAdUpdateKeepsImages(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.ads.AddImage("ad-pc210-2021", "/media/ads/ad-pc210-2021/1.jpg"))

	in := validAd()
	in.Title = "2021 Komatsu PC210LC-11 (reduced)"
	in.BrandID = strp("komatsu")
	in.ModelID = strp("komatsu-pc210")
	out, err := e.ads.Update("ad-pc210-2021", in)
	require.NoError(t, err)
	assert.Equal(t, "2021-komatsu-pc210lc-11-reduced", out.Slug)
	assert.Equal(t, domain.AdActive, out.Status)
	assert.Equal(t, []string{"/media/ads/ad-pc210-2021/1.jpg"}, out.Images())

	require.NoError(t, e.ads.RemoveImage("ad-pc210-2021", "/media/ads/ad-pc210-2021/1.jpg"))
	out, err = e.ads.Get("ad-pc210-2021")
	require.NoError(t, err)
	assert.Empty(t, out.Images())
}

func TestStoreProfileAndVerification(t *testing.T) {
	e := newEnv(t)
	p, err := e.stores.Profile("gulf-coast-machinery", 10)
	require.NoError(t, err)
	assert.Len(t, p.Ads, 3)
	assert.Equal(t, 3, p.Store.ActiveAds)
	assert.Equal(t, "Houston", *p.Store.City)

	require.NoError(t, e.stores.Verify("rocky-rentals", domain.StoreRejected))
	_, err = e.stores.Profile("rocky-rentals", 10)
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.Contains(t, fields(t, e.stores.Verify("rocky-rentals", "maybe")), "verification_status")
	assert.ErrorIs(t, e.stores.Delete("gulf-coast-machinery"), services.ErrConflict)
}

func TestStoreCreateDefaults(t *testing.T) {
	e := newEnv(t)
	st, err := e.stores.Create(domain.Store{Name: "Prairie Iron", Email: "Sales@Prairie.TEST", LocationID: strp("denver")})
	require.NoError(t, err)
	assert.Equal(t, "prairie-iron", st.Slug)
	assert.Equal(t, domain.StorePending, st.VerificationStatus)
	assert.Equal(t, domain.SubscriptionTrial, st.SubscriptionStatus)
	assert.Equal(t, "sales@prairie.test", st.Email)

	_, err = e.stores.Create(domain.Store{Name: "Bad", Website: "not a url"})
	assert.Contains(t, fields(t, err), "website")
}

func TestBlogPublishKeepsFirstTimestamp(t *testing.T) {
	e := newEnv(t)
	_, err := e.blogs.PublicBySlug("rent-or-buy")
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, e.blogs.Publish("blog-rent-vs-buy", true))
	b, err := e.blogs.PublicBySlug("rent-or-buy")
	require.NoError(t, err)
	require.NotNil(t, b.PublishedAt)
	first := *b.PublishedAt

	require.NoError(t, e.blogs.Publish("blog-rent-vs-buy", false))
	require.NoError(t, e.blogs.Publish("blog-rent-vs-buy", true))
	b, err = e.blogs.Get("blog-rent-vs-buy")
	require.NoError(t, err)
	assert.Equal(t, first, *b.PublishedAt)

	list, pg, err := e.blogs.ListPublished(1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, pg.Total)
}

func TestInquirySubmit(t *testing.T) {
	e := newEnv(t)
	q, err := e.inquiry.Submit(domain.Inquiry{
		Name:    "Lee Park",
		Email:   "Lee@Park.TEST",
		AdID:    strp("ad-pc210-2021"),
		Details: types.JSONText(`{ "budget": 160000, "delivery": "Austin" }`),
		Status:  domain.InquiryClosed,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryNew, q.Status)
	assert.Equal(t, domain.UrgencyMedium, q.Urgency)
	assert.Equal(t, "lee@park.test", q.Email)
	require.NotNil(t, q.StoreID)
	assert.Equal(t, "gulf-coast-machinery", *q.StoreID)
	assert.JSONEq(t, `{"budget":160000,"delivery":"Austin"}`, string(q.Details))

	q, err = e.inquiry.Submit(domain.Inquiry{Name: "No Details", Email: "n@d.test"})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(q.Details))
}

func TestInquirySubmitValidation(t *testing.T) {
	e := newEnv(t)
	_, err := e.inquiry.Submit(domain.Inquiry{Name: "x", Email: "x@y.test", Details: types.JSONText(`[1,2]`)})
	assert.Contains(t, fields(t, err), "details")

	big := `{"notes":"` + strings.Repeat("a", services.MaxDetailsBytes) + `"}`
	_, err = e.inquiry.Submit(domain.Inquiry{Name: "x", Email: "x@y.test", Details: types.JSONText(big)})
	assert.Contains(t, fields(t, err), "details")

	_, err = e.inquiry.Submit(domain.Inquiry{Name: "x", Email: "x@y.test", AdID: strp("ad-genset-draft")})
	assert.Contains(t, fields(t, err), "ad_id")

	_, err = e.inquiry.Submit(domain.Inquiry{Name: "", Email: "nope", Urgency: "asap"})
	f := fields(t, err)
	assert.Contains(t, f, "name")
	assert.Contains(t, f, "email")
	assert.Contains(t, f, "urgency")
}

func TestInquiryTransitions(t *testing.T) {
	assert.True(t, services.CanTransition("new", "in_progress"))
	assert.True(t, services.CanTransition("new", "closed"))
	assert.False(t, services.CanTransition("new", "resolved"))
	assert.True(t, services.CanTransition("resolved", "in_progress"))
	assert.False(t, services.CanTransition("closed", "new"))
	assert.False(t, services.CanTransition("closed", "in_progress"))

	e := newEnv(t)
	q, err := e.inquiry.UpdateStatus("inq-2", domain.InquiryResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryResolved, q.Status)

	_, err = e.inquiry.UpdateStatus("inq-2", domain.InquiryClosed)
	require.NoError(t, err)
	_, err = e.inquiry.UpdateStatus("inq-2", domain.InquiryInProgress)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	q, err = e.inquiry.AddNote("inq-1", "called back")
	require.NoError(t, err)
	q, err = e.inquiry.AddNote("inq-1", "sent quote")
	require.NoError(t, err)
	assert.Equal(t, "called back\nsent quote", q.Notes)

	counts, err := e.inquiry.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.InquiryNew])
	assert.Equal(t, 1, counts[domain.InquiryClosed])
	assert.Equal(t, 0, counts[domain.InquiryResolved])
}

func TestSavedAds(t *testing.T) {
	e := newEnv(t)
	assert.ErrorIs(t, e.saved.Save("sid-1", "ad-genset-draft"), services.ErrNotFound)
	require.NoError(t, e.saved.Save("sid-1", "ad-cat-320-2019"))
	require.NoError(t, e.saved.Save("sid-1", "ad-cat-320-2019"))

	list, err := e.saved.List("sid-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Caterpillar", *list[0].BrandName)

	require.NoError(t, e.saved.Unsave("sid-1", "ad-cat-320-2019"))
	list, err = e.saved.List("sid-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSearchJSONCaches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, errs := searchParams(t, "type=rent")
	require.Nil(t, errs)

	body, hit, err := e.search.SearchJSON(ctx, p)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, string(body), `"total":1`)

	_, hit, err = e.search.SearchJSON(ctx, p)
	require.NoError(t, err)
	assert.True(t, hit)

	// any listing write drops cached pages
	require.NoError(t, e.ads.Feature("ad-pc210-2021", true))
	_, hit, err = e.search.SearchJSON(ctx, p)
	require.NoError(t, err)
	assert.False(t, hit)

	facets, _, err := e.search.FacetsJSON(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(facets), `"slug":"excavators"`)
}

func TestStatsDashboard(t *testing.T) {
	e := newEnv(t)
	d, err := e.statsSvc.Dashboard(context.Background(), "30d")
	require.NoError(t, err)
	require.Len(t, d.Entities, 5)

	byName := map[string]int{}
	for i, es := range d.Entities {
		byName[es.Entity] = i
	}
	ads := d.Entities[byName["ads"]]
	assert.Equal(t, 5, ads.Current)
	assert.Equal(t, 1, ads.Previous)
	assert.Equal(t, 400.0, ads.GrowthPct)
	assert.Len(t, ads.Series, 30)
	assert.Equal(t, 6, ads.Series[29].Cumulative)

	users := d.Entities[byName["users"]]
	assert.Equal(t, 2, users.Current)
	assert.Equal(t, 100.0, users.GrowthPct)

	assert.Equal(t, 1, d.InquiriesByStatus["new"])

	_, err = e.statsSvc.Report(context.Background(), "1y")
	assert.Contains(t, fields(t, err), "period")
}

func TestMediaUploadAttachesToAd(t *testing.T) {
	e := newEnv(t)
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	media := &services.MediaService{Store: local, Ads: e.ads, Stores: e.stores, Blogs: e.blogs}

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	up, err := media.Upload(context.Background(), services.TargetAd, "ad-pc210-2021", png)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.URL, "/media/ads/ad-pc210-2021/"))
	assert.True(t, strings.HasSuffix(up.URL, ".png"))

	a, err := e.ads.Get("ad-pc210-2021")
	require.NoError(t, err)
	assert.Equal(t, []string{up.URL}, a.Images())

	_, err = media.Upload(context.Background(), services.TargetAd, "ad-pc210-2021", []byte("plain text"))
	assert.Contains(t, fields(t, err), "file")

	_, err = media.Upload(context.Background(), services.TargetStoreLogo, "missing-store", png)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
