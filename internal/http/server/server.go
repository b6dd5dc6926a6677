// Package server assembles the fiber application: middleware, static files
// and every route. main and the HTTP tests both build the app through New.
package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heavyequip/internal/config"
	"heavyequip/internal/http/handlers"
	applog "heavyequip/internal/log"
	"heavyequip/internal/metrics"
	"heavyequip/internal/services"
	"heavyequip/web"
)

// CSRFHeader carries the token for JSON requests; forms use the "csrf" field.
const CSRFHeader = "X-CSRF-Token"

const mediaRoute = "/admin/api/media"

func newEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")
	engine.AddFunc("deref", func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	})
	engine.AddFunc("deref_int", func(n *int) int {
		if n == nil {
			return 0
		}
		return *n
	})
	return engine
}

func errorHandler(c *fiber.Ctx, err error) error {
	code, msg := fiber.StatusInternalServerError, "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	c.Status(code)
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if handlers.IsAPI(c) {
		c.Set(fiber.HeaderCacheControl, handlers.NoStore)
		return c.JSON(fiber.Map{"error": msg})
	}
	// Avoid leaking internals; best-effort render
	if rerr := c.Render("notfound", fiber.Map{"Message": msg}, handlers.Layout); rerr != nil {
		return c.SendString(msg)
	}
	return nil
}

// bodyLimit rejects request bodies over n bytes. The fiber-level limit is
// raised to fit media uploads, so every other route goes through this guard.
func bodyLimit(n int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == mediaRoute {
			return c.Next()
		}
		if len(c.Body()) > n || c.Request().Header.ContentLength() > n {
			applog.Security(c, "request.too_large", map[string]any{"bytes": len(c.Body())})
			return fiber.ErrRequestEntityTooLarge
		}
		return c.Next()
	}
}

func exempt(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/") || p == "/metrics" || p == "/healthz"
}

// New builds the application. It does not listen.
func New(cfg config.Config, deps *handlers.Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        newEngine(),
		ErrorHandler: errorHandler,
		BodyLimit:    services.MaxUploadBytes + 1<<20,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	// ---------- Middlewares ----------
	app.Use(fiberrecover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: accessWriter{}}))
	app.Use(helmet.New())
	app.Use(metrics.Middleware())
	app.Use(bodyLimit(cfg.Server.BodyLimit))
	app.Use("/api", cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Security.CORSOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type," + CSRFHeader,
	}))
	app.Use(etag.New(etag.Config{Next: exempt}))
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := deps.Auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next:       exempt,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
		},
	}))
	if cfg.Security.CSRF {
		app.Use(csrf.New(csrf.Config{
			Extractor: func(c *fiber.Ctx) (string, error) {
				if tok := c.Get(CSRFHeader); tok != "" {
					return tok, nil
				}
				if tok := c.FormValue("csrf"); tok != "" {
					return tok, nil
				}
				return "", csrf.ErrTokenNotFound
			},
			ContextKey:     "csrf",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			CookieSecure:   cfg.Security.CookieSecure,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				c.Status(fiber.StatusForbidden)
				applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
				if handlers.IsAPI(c) {
					return c.JSON(fiber.Map{"error": "security check failed"})
				}
				return c.Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."}, handlers.Layout)
			},
		}))
		app.Use(func(c *fiber.Ctx) error {
			if tok, ok := c.Locals("csrf").(string); ok {
				c.Locals("CSRFToken", tok)
			}
			return c.Next()
		})
	}

	// ---------- Static assets ----------
	app.Use("/static", filesystem.New(filesystem.Config{Root: http.FS(web.Static())}))
	app.Get("/media/*", mediaHandler(cfg.Media.Dir))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	routes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		if handlers.IsAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"}, handlers.Layout)
	})
	return app
}

// mediaHandler serves local uploads, refusing anything that could escape dir.
func mediaHandler(dir string) fiber.Handler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}

// accessWriter hands fiber's access log lines to the process logger.
type accessWriter struct{}

func (accessWriter) Write(p []byte) (int, error) {
	l := applog.Logger()
	l.Debug().Str("action", "http.access").Msg(strings.TrimSpace(string(p)))
	return len(p), nil
}
