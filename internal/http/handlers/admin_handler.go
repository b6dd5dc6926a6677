package handlers

import (
	"github.com/gofiber/fiber/v2"

	"heavyequip/internal/domain"
	applog "heavyequip/internal/log"
	"heavyequip/internal/services"
)

type AdminHandler struct {
	Auth  *services.AuthService
	Stats *services.StatsService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.Stats.Dashboard(c.UserContext(), c.Query("period"))
	if err != nil {
		code, _ := statusFor(err)
		if code != fiber.StatusBadRequest {
			return pageError(c, "admin.dashboard", err)
		}
		// unknown period: show the default window instead
		if d, err = h.Stats.Dashboard(c.UserContext(), ""); err != nil {
			return pageError(c, "admin.dashboard", err)
		}
	}
	return render(c, "admin_dashboard", fiber.Map{"Dashboard": d, "Periods": []string{"7d", "30d", "90d", "12m"}})
}

// GET /admin/api/stats
func (h *AdminHandler) StatsAPI(c *fiber.Ctx) error {
	d, err := h.Stats.Dashboard(c.UserContext(), c.Query("period"))
	if err != nil {
		return apiError(c, "admin.stats", err)
	}
	c.Set(fiber.HeaderCacheControl, NoStore)
	return c.JSON(d)
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.Auth.ListUsers()
	return listJSON(c, "admin.users.list", users, err)
}

// DeleteUser deletes a user and unbinds their sessions.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.users.delete", err)
	}
	actor, _ := c.Locals("user").(*domain.User)
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	if err := h.Auth.DeleteUser(actorID, id); err != nil {
		return apiError(c, "admin.users.delete", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
