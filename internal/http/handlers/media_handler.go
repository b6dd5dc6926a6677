package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	applog "heavyequip/internal/log"
	"heavyequip/internal/services"
)

type MediaHandler struct {
	Media *services.MediaService
}

// Upload handles POST /admin/api/media (multipart: target, owner_id, file).
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apiError(c, "admin.media.upload", fieldError("file", "is required"))
	}
	if fh.Size > services.MaxUploadBytes {
		return apiError(c, "admin.media.upload", fieldError("file", "must be at most 5 MiB"))
	}
	f, err := fh.Open()
	if err != nil {
		return apiError(c, "admin.media.upload", err)
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, services.MaxUploadBytes+1))
	if err != nil {
		return apiError(c, "admin.media.upload", err)
	}

	up, err := h.Media.Upload(c.UserContext(), c.FormValue("target"), c.FormValue("owner_id"), body)
	if err != nil {
		return apiError(c, "admin.media.upload", err)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "admin.media.upload", map[string]any{"target": up.Target, "owner_id": up.OwnerID, "key": up.Key, "bytes": len(body)})
	return c.JSON(up)
}
