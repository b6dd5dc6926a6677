package handlers

import (
	"github.com/gofiber/fiber/v2"

	"heavyequip/internal/domain"
	applog "heavyequip/internal/log"
	"heavyequip/internal/services"
	"heavyequip/internal/validate"
)

// AdminListingHandler manages ads and stores under /admin/api.
type AdminListingHandler struct {
	Ads    *services.AdService
	Stores *services.StoreService
}

type statusBody struct {
	Status string `json:"status"`
}

type flagBody struct {
	Value *bool `json:"value"`
}

type imageBody struct {
	URL string `json:"url"`
}

// ---------- ads ----------

func (h *AdminListingHandler) ListAds(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" {
		switch status {
		case domain.AdDraft, domain.AdPending, domain.AdActive, domain.AdSold, domain.AdArchived:
		default:
			return apiError(c, "admin.ads.list", fieldError("status", "must be one of draft, pending, active, sold, archived"))
		}
	}
	ads, pg, err := h.Ads.ListAdmin(status, validate.Page(c.Query("page")), c.QueryInt("limit", 20))
	if err != nil {
		return apiError(c, "admin.ads.list", err)
	}
	return c.JSON(fiber.Map{"data": ads, "pagination": pg})
}

func (h *AdminListingHandler) Ad(c *fiber.Ctx) error {
	return getJSON(c, "admin.ads.get", h.Ads.Get)
}

func (h *AdminListingHandler) CreateAd(c *fiber.Ctx) error {
	var in domain.Ad
	if err := bindJSON(c, &in); err != nil {
		return apiError(c, "admin.ads.create", err)
	}
	ad, err := h.Ads.Create(in)
	if err != nil {
		return apiError(c, "admin.ads.create", err)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "admin.ads.create", map[string]any{"id": ad.ID, "slug": ad.Slug})
	return c.JSON(ad)
}

func (h *AdminListingHandler) UpdateAd(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.ads.update", err)
	}
	var in domain.Ad
	if err := bindJSON(c, &in); err != nil {
		return apiError(c, "admin.ads.update", err)
	}
	ad, err := h.Ads.Update(id, in)
	if err != nil {
		return apiError(c, "admin.ads.update", err)
	}
	applog.Audit(c, "admin.ads.update", map[string]any{"id": id})
	return c.JSON(ad)
}

func (h *AdminListingHandler) DeleteAd(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.ads.delete", h.Ads.Delete)
}

func (h *AdminListingHandler) SetAdStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.ads.status", err)
	}
	var body statusBody
	if err := bindJSON(c, &body); err != nil {
		return apiError(c, "admin.ads.status", err)
	}
	if err := h.Ads.SetStatus(id, body.Status); err != nil {
		return apiError(c, "admin.ads.status", err)
	}
	applog.Audit(c, "admin.ads.status", map[string]any{"id": id, "status": body.Status})
	return getJSON(c, "admin.ads.get", h.Ads.Get)
}

func (h *AdminListingHandler) FeatureAd(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.ads.feature", err)
	}
	var body flagBody
	if err := bindJSON(c, &body); err != nil {
		return apiError(c, "admin.ads.feature", err)
	}
	if body.Value == nil {
		return apiError(c, "admin.ads.feature", fieldError("value", "is required"))
	}
	if err := h.Ads.Feature(id, *body.Value); err != nil {
		return apiError(c, "admin.ads.feature", err)
	}
	applog.Audit(c, "admin.ads.feature", map[string]any{"id": id, "featured": *body.Value})
	return getJSON(c, "admin.ads.get", h.Ads.Get)
}

// RemoveAdImage drops one URL from the gallery; the stored object is kept.
func (h *AdminListingHandler) RemoveAdImage(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.ads.image.remove", err)
	}
	var body imageBody
	if err := bindJSON(c, &body); err != nil {
		return apiError(c, "admin.ads.image.remove", err)
	}
	if body.URL == "" {
		return apiError(c, "admin.ads.image.remove", fieldError("url", "is required"))
	}
	if err := h.Ads.RemoveImage(id, body.URL); err != nil {
		return apiError(c, "admin.ads.image.remove", err)
	}
	applog.Audit(c, "admin.ads.image.remove", map[string]any{"id": id, "url": body.URL})
	return getJSON(c, "admin.ads.get", h.Ads.Get)
}

// ---------- stores ----------

func (h *AdminListingHandler) ListStores(c *fiber.Ctx) error {
	v := c.Query("verification")
	switch v {
	case "", domain.StorePending, domain.StoreVerified, domain.StoreRejected:
	default:
		return apiError(c, "admin.stores.list", fieldError("verification", "must be one of pending, verified, rejected"))
	}
	stores, err := h.Stores.List(v)
	return listJSON(c, "admin.stores.list", stores, err)
}

func (h *AdminListingHandler) Store(c *fiber.Ctx) error {
	return getJSON(c, "admin.stores.get", h.Stores.Get)
}

func (h *AdminListingHandler) CreateStore(c *fiber.Ctx) error {
	return createJSON(c, "admin.stores.create", h.Stores.Create, func(x domain.Store) string { return x.ID })
}

func (h *AdminListingHandler) UpdateStore(c *fiber.Ctx) error {
	return updateJSON(c, "admin.stores.update", h.Stores.Update)
}

func (h *AdminListingHandler) DeleteStore(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.stores.delete", h.Stores.Delete)
}

func (h *AdminListingHandler) VerifyStore(c *fiber.Ctx) error {
	return h.storeStatus(c, "admin.stores.verify", h.Stores.Verify)
}

func (h *AdminListingHandler) SetSubscription(c *fiber.Ctx) error {
	return h.storeStatus(c, "admin.stores.subscription", h.Stores.SetSubscription)
}

func (h *AdminListingHandler) storeStatus(c *fiber.Ctx, action string, fn func(id, status string) error) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, action, err)
	}
	var body statusBody
	if err := bindJSON(c, &body); err != nil {
		return apiError(c, action, err)
	}
	if err := fn(id, body.Status); err != nil {
		return apiError(c, action, err)
	}
	applog.Audit(c, action, map[string]any{"id": id, "status": body.Status})
	return getJSON(c, "admin.stores.get", h.Stores.Get)
}
