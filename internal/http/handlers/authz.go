package handlers

import (
	applog "heavyequip/internal/log"
	"heavyequip/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin guards the back office. Pages redirect anonymous visitors to
// /login; the JSON API answers 401/403 instead.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			if IsAPI(c) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
			}
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || !u.IsAdmin() {
			c.Status(fiber.StatusForbidden)
			applog.Security(c, "access.denied.admin", nil)
			if IsAPI(c) {
				return c.JSON(fiber.Map{"error": "admin access required"})
			}
			return notFound(c, fiber.StatusForbidden, "Access denied")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
