package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminApp(t *testing.T) (*testApp, reqOpt) {
	t.Helper()
	ta := newTestApp(t)
	ta.login(t, "sid-admin", "u-admin")
	return ta, withSID("sid-admin")
}

func TestAdminCatalogCRUD(t *testing.T) {
	ta, auth := adminApp(t)

	resp := ta.postJSON(t, http.MethodPost, "/admin/api/categories", map[string]any{"name": "Dozers", "sort_order": 5}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cat := decode(t, resp)
	assert.Equal(t, "dozers", cat["slug"])
	id := cat["id"].(string)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/categories", map[string]any{"name": "Dozers"}, auth)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/sub-categories", map[string]any{"name": "Crawler Dozers", "category_id": id}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sub := decode(t, resp)

	resp = ta.get(t, "/admin/api/categories/"+id+"/sub-categories", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"], 1)

	resp = ta.postJSON(t, http.MethodPut, "/admin/api/categories/"+id, map[string]any{"name": "Bulldozers", "slug": "bulldozers"}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bulldozers", decode(t, resp)["slug"])

	// listings still point at it
	resp = ta.do(t, http.MethodDelete, "/admin/api/categories/excavators", nil, auth)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// sub-categories go with their category
	resp = ta.do(t, http.MethodDelete, "/admin/api/categories/"+id, nil, auth)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	var n int
	require.NoError(t, ta.db.Get(&n, `SELECT COUNT(*) FROM sub_categories WHERE id=?`, sub["id"]))
	assert.Zero(t, n)
	resp = ta.do(t, http.MethodDelete, "/admin/api/categories/"+id, nil, auth)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminBrandModelEngine(t *testing.T) {
	ta, auth := adminApp(t)

	resp := ta.postJSON(t, http.MethodPost, "/admin/api/brands", map[string]any{"name": "Hitachi"}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	brand := decode(t, resp)["id"].(string)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/models", map[string]any{"name": "ZX210", "brand_id": brand}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/models", map[string]any{"name": "ZX350", "brand_id": "no-such-brand"}, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ta.get(t, "/admin/api/brands/"+brand+"/models", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"], 1)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/engines", map[string]any{"name": "Isuzu 4HK1", "brand_id": brand, "power_hp": 160, "fuel_type": "diesel"}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ta.get(t, "/admin/api/engines", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"], 3)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/locations", map[string]any{"city": "Phoenix", "region": "AZ", "country": "US"}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = ta.get(t, "/admin/api/locations", auth)
	assert.Len(t, decode(t, resp)["data"], 4)
}

func TestAdminUnknownParentIsFieldError(t *testing.T) {
	ta, auth := adminApp(t)

	cases := []struct {
		path  string
		body  map[string]any
		field string
	}{
		{"/admin/api/sub-categories", map[string]any{"name": "Swamp Dozers", "category_id": "no-such-category"}, "category_id"},
		{"/admin/api/models", map[string]any{"name": "ZX350", "brand_id": "no-such-brand"}, "brand_id"},
		{"/admin/api/models", map[string]any{"name": "320 GC", "brand_id": "caterpillar", "sub_category_id": "no-such-sub"}, "sub_category_id"},
		{"/admin/api/engines", map[string]any{"name": "C9.3", "brand_id": "no-such-brand", "fuel_type": "diesel"}, "brand_id"},
		{"/admin/api/stores", map[string]any{"name": "Desert Iron", "location_id": "no-such-location"}, "location_id"},
	}
	for _, tc := range cases {
		resp := ta.postJSON(t, http.MethodPost, tc.path, tc.body, auth)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.path)
		assert.Contains(t, fieldsOf(t, decode(t, resp)), tc.field, tc.path)
	}

	resp := ta.postJSON(t, http.MethodPut, "/admin/api/models/cat-320", map[string]any{"name": "320", "brand_id": "no-such-brand"}, auth)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldsOf(t, decode(t, resp)), "brand_id")

	// a blank optional parent is cleared rather than rejected
	resp = ta.postJSON(t, http.MethodPost, "/admin/api/engines", map[string]any{"name": "Generic 4-cyl", "brand_id": "", "fuel_type": "diesel"}, auth)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAdminListEndpoints(t *testing.T) {
	ta, auth := adminApp(t)

	for _, path := range []string{"/admin/api/ads", "/admin/api/stores", "/admin/api/blogs", "/admin/api/inquiries"} {
		resp := ta.get(t, path, auth)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.NotEmpty(t, decode(t, resp)["data"], path)
	}
}

func TestAdminAdLifecycle(t *testing.T) {
	ta, auth := adminApp(t)

	resp := ta.postJSON(t, http.MethodPost, "/admin/api/ads", map[string]any{
		"title":        "2020 Caterpillar 320 Excavator",
		"listing_type": "sale",
		"condition":    "used",
		"price":        "139000",
		"category_id":  "excavators",
		"brand_id":     "caterpillar",
		"model_id":     "cat-320",
		"store_id":     "gulf-coast-machinery",
	}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ad := decode(t, resp)
	id := ad["id"].(string)
	assert.Equal(t, "pending", ad["status"])
	assert.Equal(t, "2020-caterpillar-320-excavator", ad["slug"])

	// not public until active
	resp = ta.get(t, "/api/ads/2020-caterpillar-320-excavator")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/ads/"+id+"/status", map[string]any{"status": "active"}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ta.get(t, "/api/ads/2020-caterpillar-320-excavator")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/ads/"+id+"/status", map[string]any{"status": "gone"}, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/ads/"+id+"/feature", map[string]any{}, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ta.get(t, "/admin/api/ads?status=pending", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Len(t, body["data"], 1)
	assert.EqualValues(t, 1, body["pagination"].(map[string]any)["total"])

	resp = ta.get(t, "/admin/api/ads?status=bogus", auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ta.do(t, http.MethodDelete, "/admin/api/ads/"+id, nil, auth)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = ta.get(t, "/admin/api/ads/"+id, auth)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminStores(t *testing.T) {
	ta, auth := adminApp(t)

	resp := ta.get(t, "/admin/api/stores?verification=pending", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"], 1)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/stores/rocky-rentals/verify", map[string]any{"status": "verified"}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "verified", decode(t, resp)["verification_status"])

	resp = ta.get(t, "/api/search?verified=true&type=rent")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode(t, resp)["pagination"].(map[string]any)["total"])

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/stores/rocky-rentals/subscription", map[string]any{"status": "lifetime"}, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// owns ads
	resp = ta.do(t, http.MethodDelete, "/admin/api/stores/gulf-coast-machinery", nil, auth)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/stores", map[string]any{"name": "Desert Iron", "email": "Sales@DesertIron.test"}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	st := decode(t, resp)
	assert.Equal(t, "desert-iron", st["slug"])
	assert.Equal(t, "sales@desertiron.test", st["email"])
	assert.Equal(t, "pending", st["verification_status"])
	assert.Equal(t, "trial", st["subscription_status"])
}

func TestAdminBlogs(t *testing.T) {
	ta, auth := adminApp(t)

	resp := ta.postJSON(t, http.MethodPost, "/admin/api/blogs/blog-rent-vs-buy/publish", map[string]any{"value": true}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	post := decode(t, resp)
	assert.Equal(t, true, post["published"])
	assert.NotEmpty(t, post["published_at"])

	resp = ta.get(t, "/blog/rent-or-buy")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/blogs", map[string]any{"title": "Crane safety basics", "content": "Outriggers first."}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode(t, resp)
	assert.Equal(t, "crane-safety-basics", created["slug"])
	assert.Equal(t, false, created["published"])

	resp = ta.get(t, "/admin/api/blogs", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"], 3)
}

func TestAdminInquiryWorkflow(t *testing.T) {
	ta, auth := adminApp(t)

	resp := ta.get(t, "/admin/api/inquiries?status=new", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"], 1)

	steps := []struct {
		to   string
		want int
	}{
		{"in_progress", http.StatusOK},
		{"new", http.StatusConflict},
		{"resolved", http.StatusOK},
		{"closed", http.StatusOK},
		{"in_progress", http.StatusConflict},
	}
	for _, s := range steps {
		resp = ta.postJSON(t, http.MethodPost, "/admin/api/inquiries/inq-1/status", map[string]any{"status": s.to}, auth)
		assert.Equal(t, s.want, resp.StatusCode, s.to)
	}

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/inquiries/inq-1/notes", map[string]any{"note": "Called back"}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decode(t, resp)["notes"], "Called back")

	resp = ta.postJSON(t, http.MethodPost, "/admin/api/inquiries/inq-1/notes", map[string]any{"note": "  "}, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ta.do(t, http.MethodDelete, "/admin/api/inquiries/inq-2", nil, auth)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = ta.get(t, "/admin/api/inquiries/inq-2", auth)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminStats(t *testing.T) {
	ta, auth := adminApp(t)

	resp := ta.get(t, "/admin/api/stats?period=30d", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	body := decode(t, resp)
	assert.Equal(t, "30d", body["period"])
	entities := body["entities"].([]any)
	require.Len(t, entities, 5)
	ads := entities[0].(map[string]any)
	assert.Equal(t, "ads", ads["entity"])
	assert.EqualValues(t, 5, ads["current"])
	assert.Len(t, ads["series"], 30)
	assert.Contains(t, body, "inquiries_by_status")

	resp = ta.get(t, "/admin/api/stats?period=1y", auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// the page falls back to the default window
	resp = ta.get(t, "/admin?period=1y", auth)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// pngBytes is the smallest header http.DetectContentType recognises as PNG.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func multipartUpload(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAdminMediaUpload(t *testing.T) {
	ta, auth := adminApp(t)

	body, ct := multipartUpload(t, map[string]string{"target": "ad", "owner_id": "ad-pc210-2021"}, pngBytes)
	resp := ta.do(t, http.MethodPost, "/admin/api/media", body, auth, withHeader("Content-Type", ct))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	up := decode(t, resp)
	url := up["url"].(string)
	assert.Contains(t, url, "/media/")

	resp = ta.get(t, "/admin/api/ads/ad-pc210-2021", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decode(t, resp)["images"], url)

	resp = ta.get(t, url)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, ct = multipartUpload(t, map[string]string{"target": "ad", "owner_id": "ad-pc210-2021"}, []byte("plain text, not an image"))
	resp = ta.do(t, http.MethodPost, "/admin/api/media", body, auth, withHeader("Content-Type", ct))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldsOf(t, decode(t, resp)), "file")

	resp = ta.postJSON(t, http.MethodDelete, "/admin/api/ads/ad-pc210-2021/images", map[string]any{"url": url}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, decode(t, resp)["images"], url)

	resp = ta.get(t, "/media/..%2f..%2fetc%2fpasswd")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
