package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"heavyequip/internal/cache"
	"heavyequip/internal/config"
	"heavyequip/internal/http/handlers"
	"heavyequip/internal/http/server"
	applog "heavyequip/internal/log"
	"heavyequip/internal/repos"
	"heavyequip/internal/storage"
)

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	users *repos.UserRepo
	cfg   config.Config
}

// newTestApp builds the full application over a seeded in-memory database.
// CSRF is off unless a mutator turns it back on.
func newTestApp(t *testing.T, mutate ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := config.Default()
	cfg.DB.DSN = ":memory:"
	cfg.Media.Dir = t.TempDir()
	cfg.Log.File = ""
	cfg.Security.CSRF = false
	for _, m := range mutate {
		m(&cfg)
	}
	db, err := repos.OpenDB(cfg.DB.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	media, err := storage.NewLocal(cfg.Media.Dir)
	require.NoError(t, err)
	deps := handlers.NewDeps(db, cfg, cache.NewMemory(256), media)
	return &testApp{app: server.New(cfg, deps), db: db, users: repos.NewUserRepo(db), cfg: cfg}
}

// login binds sid to userID directly, skipping the form round trip.
func (ta *testApp) login(t *testing.T, sid, userID string) {
	t.Helper()
	require.NoError(t, ta.users.BindSession(sid, userID))
}

type reqOpt func(*http.Request)

func withSID(sid string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sid", Value: sid}) }
}

func withCookie(name, value string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (ta *testApp) do(t *testing.T, method, path string, body io.Reader, opts ...reqOpt) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for _, o := range opts {
		o(req)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) get(t *testing.T, path string, opts ...reqOpt) *http.Response {
	return ta.do(t, http.MethodGet, path, nil, opts...)
}

func (ta *testApp) postJSON(t *testing.T, method, path string, v any, opts ...reqOpt) *http.Response {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	opts = append([]reqOpt{withHeader("Content-Type", fiber.MIMEApplicationJSON)}, opts...)
	return ta.do(t, method, path, bytes.NewReader(b), opts...)
}

func (ta *testApp) postForm(t *testing.T, path, form string, opts ...reqOpt) *http.Response {
	t.Helper()
	opts = append([]reqOpt{withHeader("Content-Type", fiber.MIMEApplicationForm)}, opts...)
	return ta.do(t, http.MethodPost, path, strings.NewReader(form), opts...)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Status int            `json:"status"`
	UserID string         `json:"user_id"`
	ReqID  string         `json:"req_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	applog.SetOutput(buf)
	defer applog.SetOutput(os.Stdout)

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
