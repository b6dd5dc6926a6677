package handlers

import (
	"github.com/gofiber/fiber/v2"

	"heavyequip/internal/domain"
	"heavyequip/internal/services"
)

// AdminCatalogHandler manages the reference tables under /admin/api.
type AdminCatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *AdminCatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	return listJSON(c, "admin.categories.list", cats, err)
}

func (h *AdminCatalogHandler) CreateCategory(c *fiber.Ctx) error {
	return createJSON(c, "admin.categories.create", h.Catalog.CreateCategory, func(x domain.Category) string { return x.ID })
}

func (h *AdminCatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	return updateJSON(c, "admin.categories.update", h.Catalog.UpdateCategory)
}

func (h *AdminCatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.categories.delete", h.Catalog.DeleteCategory)
}

// SubCategories lists the sub-categories of category :id.
func (h *AdminCatalogHandler) SubCategories(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.sub_categories.list", err)
	}
	subs, err := h.Catalog.ListSubCategories(id)
	return listJSON(c, "admin.sub_categories.list", subs, err)
}

func (h *AdminCatalogHandler) CreateSubCategory(c *fiber.Ctx) error {
	return createJSON(c, "admin.sub_categories.create", h.Catalog.CreateSubCategory, func(x domain.SubCategory) string { return x.ID })
}

func (h *AdminCatalogHandler) UpdateSubCategory(c *fiber.Ctx) error {
	return updateJSON(c, "admin.sub_categories.update", h.Catalog.UpdateSubCategory)
}

func (h *AdminCatalogHandler) DeleteSubCategory(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.sub_categories.delete", h.Catalog.DeleteSubCategory)
}

func (h *AdminCatalogHandler) Brands(c *fiber.Ctx) error {
	brands, err := h.Catalog.ListBrands()
	return listJSON(c, "admin.brands.list", brands, err)
}

func (h *AdminCatalogHandler) CreateBrand(c *fiber.Ctx) error {
	return createJSON(c, "admin.brands.create", h.Catalog.CreateBrand, func(x domain.Brand) string { return x.ID })
}

func (h *AdminCatalogHandler) UpdateBrand(c *fiber.Ctx) error {
	return updateJSON(c, "admin.brands.update", h.Catalog.UpdateBrand)
}

func (h *AdminCatalogHandler) DeleteBrand(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.brands.delete", h.Catalog.DeleteBrand)
}

// Models lists the models of brand :id.
func (h *AdminCatalogHandler) Models(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.models.list", err)
	}
	models, err := h.Catalog.ListModels(id)
	return listJSON(c, "admin.models.list", models, err)
}

func (h *AdminCatalogHandler) CreateModel(c *fiber.Ctx) error {
	return createJSON(c, "admin.models.create", h.Catalog.CreateModel, func(x domain.Model) string { return x.ID })
}

func (h *AdminCatalogHandler) UpdateModel(c *fiber.Ctx) error {
	return updateJSON(c, "admin.models.update", h.Catalog.UpdateModel)
}

func (h *AdminCatalogHandler) DeleteModel(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.models.delete", h.Catalog.DeleteModel)
}

func (h *AdminCatalogHandler) Engines(c *fiber.Ctx) error {
	engines, err := h.Catalog.ListEngines()
	return listJSON(c, "admin.engines.list", engines, err)
}

func (h *AdminCatalogHandler) CreateEngine(c *fiber.Ctx) error {
	return createJSON(c, "admin.engines.create", h.Catalog.CreateEngine, func(x domain.Engine) string { return x.ID })
}

func (h *AdminCatalogHandler) UpdateEngine(c *fiber.Ctx) error {
	return updateJSON(c, "admin.engines.update", h.Catalog.UpdateEngine)
}

func (h *AdminCatalogHandler) DeleteEngine(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.engines.delete", h.Catalog.DeleteEngine)
}

func (h *AdminCatalogHandler) Locations(c *fiber.Ctx) error {
	locs, err := h.Catalog.ListLocations()
	return listJSON(c, "admin.locations.list", locs, err)
}

func (h *AdminCatalogHandler) CreateLocation(c *fiber.Ctx) error {
	return createJSON(c, "admin.locations.create", h.Catalog.CreateLocation, func(x domain.Location) string { return x.ID })
}

func (h *AdminCatalogHandler) DeleteLocation(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.locations.delete", h.Catalog.DeleteLocation)
}
