package handlers

import (
	"github.com/gofiber/fiber/v2"

	"heavyequip/internal/services"
	"heavyequip/internal/validate"
)

// CatalogAPI is the public read-only JSON view of the taxonomy and listings.
type CatalogAPI struct {
	Catalog *services.CatalogService
	Ads     *services.AdService
}

func (h *CatalogAPI) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return apiError(c, "api.categories", err)
	}
	return c.JSON(fiber.Map{"data": cats})
}

func (h *CatalogAPI) SubCategories(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, "api.sub_categories", fieldError("id", "is invalid"))
	}
	if _, err := h.Catalog.GetCategory(id); err != nil {
		return apiError(c, "api.sub_categories", err)
	}
	subs, err := h.Catalog.ListSubCategories(id)
	if err != nil {
		return apiError(c, "api.sub_categories", err)
	}
	return c.JSON(fiber.Map{"data": subs})
}

func (h *CatalogAPI) Brands(c *fiber.Ctx) error {
	brands, err := h.Catalog.ListBrands()
	if err != nil {
		return apiError(c, "api.brands", err)
	}
	return c.JSON(fiber.Map{"data": brands})
}

func (h *CatalogAPI) Models(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, "api.models", fieldError("id", "is invalid"))
	}
	if _, err := h.Catalog.GetBrand(id); err != nil {
		return apiError(c, "api.models", err)
	}
	models, err := h.Catalog.ListModels(id)
	if err != nil {
		return apiError(c, "api.models", err)
	}
	return c.JSON(fiber.Map{"data": models})
}

// Ad returns one active listing by slug without counting a view.
func (h *CatalogAPI) Ad(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if !validate.Slug(slug) {
		return apiError(c, "api.ad", services.ErrNotFound)
	}
	ad, err := h.Ads.PublicBySlug(slug)
	if err != nil {
		return apiError(c, "api.ad", err)
	}
	return c.JSON(ad)
}
