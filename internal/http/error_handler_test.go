package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownRoutes(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.get(t, "/api/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", decode(t, resp)["error"])

	resp = ta.get(t, "/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Page not found")
}

func TestHiddenContentIsNotFound(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{
		"/ads/150-kva-diesel-generator", // pending
		"/ads/no-such-ad",
		"/blog/rent-or-buy", // draft
		"/stores/no-such-store",
	} {
		resp := ta.get(t, path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	resp := ta.get(t, "/api/ads/150-kva-diesel-generator")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", decode(t, resp)["error"])
}

func TestInternalErrorsStayFriendly(t *testing.T) {
	ta := newTestApp(t)
	require.NoError(t, ta.db.Close())

	var body map[string]any
	logs := captureLogs(t, func() {
		resp := ta.get(t, "/api/search?q=crane")
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		body = decode(t, resp)
	})
	assert.Equal(t, "Something went wrong. Please try again.", body["error"])
	assert.NotContains(t, body["error"], "sql")
	e, ok := findLog(logs, "search.fail")
	require.True(t, ok, "search.fail log missing")
	assert.Equal(t, "error", e.Level)

	resp := ta.get(t, "/blog")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	html := readBody(t, resp)
	assert.Contains(t, html, "Something went wrong")
	assert.NotContains(t, html, "database is closed")
}
