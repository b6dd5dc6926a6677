package handlers

import (
	"github.com/gofiber/fiber/v2"

	"heavyequip/internal/log"
	"heavyequip/internal/search"
	"heavyequip/internal/services"
	"heavyequip/internal/validate"
)

// PublicHandler serves the marketing and listing pages.
type PublicHandler struct {
	Catalog *services.CatalogService
	Ads     *services.AdService
	Stores  *services.StoreService
	Blogs   *services.BlogService
	Search  *services.SearchService
}

func (h *PublicHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return pageError(c, "home", err)
	}
	featured, err := h.Ads.Featured(6)
	if err != nil {
		return pageError(c, "home", err)
	}
	latest, err := h.Ads.Latest(8)
	if err != nil {
		return pageError(c, "home", err)
	}
	posts, _, err := h.Blogs.ListPublished(1, 3)
	if err != nil {
		return pageError(c, "home", err)
	}
	return render(c, "home", fiber.Map{
		"Categories": cats, "Featured": featured, "Latest": latest, "Posts": posts,
	})
}

// Category lists active ads of one category; the other search filters apply too.
func (h *PublicHandler) Category(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if !validate.Slug(slug) {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return notFound(c, fiber.StatusNotFound, "This category does not exist")
	}
	cat, err := h.Catalog.CategoryBySlug(slug)
	if err != nil {
		return pageError(c, "category.page", err)
	}
	v := queryValues(c)
	v.Set("category", cat.Slug)
	p, errs := search.Parse(v)
	if errs != nil {
		// fall back to the plain category listing
		p, _ = search.Parse(map[string][]string{"category": {cat.Slug}})
	}
	res, err := h.Search.Search(c.UserContext(), p)
	if err != nil {
		return pageError(c, "category.page", err)
	}
	subs, err := h.Catalog.ListSubCategories(cat.ID)
	if err != nil {
		return pageError(c, "category.page", err)
	}
	return render(c, "category", fiber.Map{
		"Category": cat, "SubCategories": subs, "Params": p, "Result": res, "Pages": pageLinks(c, res.Pagination),
	})
}

func (h *PublicHandler) Ad(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if !validate.Slug(slug) {
		return notFound(c, fiber.StatusNotFound, "This listing is no longer available")
	}
	ad, err := h.Ads.View(slug)
	if err != nil {
		return pageError(c, "ad.page", err)
	}
	return render(c, "ad", fiber.Map{"Ad": ad, "Images": ad.Images()})
}

func (h *PublicHandler) Store(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if !validate.Slug(slug) {
		return notFound(c, fiber.StatusNotFound, "This store does not exist")
	}
	prof, err := h.Stores.Profile(slug, 24)
	if err != nil {
		return pageError(c, "store.page", err)
	}
	return render(c, "store", fiber.Map{"Store": prof.Store, "Ads": prof.Ads})
}

func (h *PublicHandler) BlogList(c *fiber.Ctx) error {
	posts, pg, err := h.Blogs.ListPublished(validate.Page(c.Query("page")), 10)
	if err != nil {
		return pageError(c, "blog.list", err)
	}
	return render(c, "blog_list", fiber.Map{"Posts": posts, "Pagination": pg, "Pages": pageLinks(c, pg)})
}

func (h *PublicHandler) BlogPost(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if !validate.Slug(slug) {
		return notFound(c, fiber.StatusNotFound, "This article does not exist")
	}
	post, err := h.Blogs.PublicBySlug(slug)
	if err != nil {
		return pageError(c, "blog.page", err)
	}
	return render(c, "blog", fiber.Map{"Post": post})
}
