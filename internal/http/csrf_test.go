package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heavyequip/internal/config"
	"heavyequip/internal/http/server"
)

func withCSRF(cfg *config.Config) { cfg.Security.CSRF = true }

func TestCSRFProtectsForms(t *testing.T) {
	ta := newTestApp(t, withCSRF)

	resp := ta.get(t, "/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok := cookieValue(resp, "csrf_")
	require.NotEmpty(t, tok)
	assert.Contains(t, readBody(t, resp), tok)

	var logs []logEntry
	logs = captureLogs(t, func() {
		resp = ta.postForm(t, "/login", "email=admin@heavyequip.test&password=Passw0rd!")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
	_, ok := findLog(logs, "csrf.fail")
	assert.True(t, ok, "csrf.fail log missing")

	// a form token that does not match the cookie
	resp = ta.postForm(t, "/login", "csrf=forged&email=admin@heavyequip.test&password=Passw0rd!", withCookie("csrf_", tok))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ta.postForm(t, "/login", "csrf="+tok+"&email=admin@heavyequip.test&password=Passw0rd!", withCookie("csrf_", tok))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
}

func TestCSRFHeaderForJSON(t *testing.T) {
	ta := newTestApp(t, withCSRF)
	tok := cookieValue(ta.get(t, "/"), "csrf_")
	require.NotEmpty(t, tok)
	in := map[string]any{"name": "Lee Park", "email": "lee@park.test"}

	resp := ta.postJSON(t, http.MethodPost, "/api/inquiries", in)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "security check failed", decode(t, resp)["error"])

	resp = ta.postJSON(t, http.MethodPost, "/api/inquiries", in, withCookie("csrf_", tok), withHeader(server.CSRFHeader, tok))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
