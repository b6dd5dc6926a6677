package handlers

import (
	"strings"

	applog "heavyequip/internal/log"
	"heavyequip/internal/services"
	"heavyequip/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// SavedHandler keeps the visitor's bookmarked ads.
type SavedHandler struct {
	Saved        *services.SavedService
	SecureCookie bool
}

func (h *SavedHandler) List(c *fiber.Ctx) error {
	sid := ensureSID(c, h.SecureCookie)
	items, err := h.Saved.List(sid)
	if err != nil {
		applog.Error(c, "saved.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load saved ads")
	}
	return render(c, "saved", fiber.Map{"Items": items})
}

func (h *SavedHandler) Save(c *fiber.Ctx) error {
	sid := ensureSID(c, h.SecureCookie)
	id, ok := validate.ID(c.FormValue("ad_id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "ad_id"})
		return c.Status(fiber.StatusBadRequest).SendString("missing ad_id")
	}
	if err := h.Saved.Save(sid, id); err != nil {
		return pageError(c, "saved.save", err)
	}
	applog.Audit(c, "saved.save", map[string]any{"ad_id": id})
	back := c.FormValue("next")
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/saved"
	}
	return c.Redirect(back)
}

func (h *SavedHandler) Unsave(c *fiber.Ctx) error {
	sid := ensureSID(c, h.SecureCookie)
	id, ok := validate.ID(c.FormValue("ad_id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "ad_id"})
		return c.Status(fiber.StatusBadRequest).SendString("missing ad_id")
	}
	if err := h.Saved.Unsave(sid, id); err != nil {
		return pageError(c, "saved.unsave", err)
	}
	applog.Audit(c, "saved.unsave", map[string]any{"ad_id": id})
	return c.Redirect("/saved")
}
