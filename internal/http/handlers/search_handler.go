package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"heavyequip/internal/log"
	"heavyequip/internal/search"
	"heavyequip/internal/services"
)

// Cache headers for successful search responses; shared caches may serve a
// stale page while revalidating.
const (
	SearchCacheControl = "public, max-age=60, s-maxage=60, stale-while-revalidate=300"
	NoStore            = "no-store"
)

type SearchHandler struct {
	Search  *services.SearchService
	Catalog *services.CatalogService
}

// queryValues keeps whatever parsed; malformed pairs are dropped.
func queryValues(c *fiber.Ctx) url.Values {
	v, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	return v
}

// pageLinks builds previous/next URLs for paginated pages, keeping the
// other query parameters.
func pageLinks(c *fiber.Ctx, pg search.Pagination) fiber.Map {
	link := func(page int) string {
		v := queryValues(c)
		v.Set("page", strconv.Itoa(page))
		return c.Path() + "?" + v.Encode()
	}
	m := fiber.Map{}
	if pg.HasPrev {
		m["Prev"] = link(pg.Page - 1)
	}
	if pg.HasNext {
		m["Next"] = link(pg.Page + 1)
	}
	return m
}

// API serves GET /api/search.
func (h *SearchHandler) API(c *fiber.Ctx) error {
	p, errs := search.Parse(queryValues(c))
	if errs != nil {
		c.Set(fiber.HeaderCacheControl, NoStore)
		c.Status(fiber.StatusBadRequest)
		log.Security(c, "validation.fail", map[string]any{"op": "search", "fields": fieldNames(errs)})
		return c.JSON(fiber.Map{"error": "invalid search parameters", "fields": errs.Fields})
	}
	body, hit, err := h.Search.SearchJSON(c.UserContext(), p)
	if err != nil {
		c.Set(fiber.HeaderCacheControl, NoStore)
		return apiError(c, "search", err)
	}
	return sendCachedJSON(c, body, hit)
}

// Facets serves GET /api/search/facets.
func (h *SearchHandler) Facets(c *fiber.Ctx) error {
	body, hit, err := h.Search.FacetsJSON(c.UserContext())
	if err != nil {
		c.Set(fiber.HeaderCacheControl, NoStore)
		return apiError(c, "search.facets", err)
	}
	return sendCachedJSON(c, body, hit)
}

func sendCachedJSON(c *fiber.Ctx, body []byte, hit bool) error {
	c.Set(fiber.HeaderCacheControl, SearchCacheControl)
	c.Set(fiber.HeaderVary, fiber.HeaderAcceptEncoding)
	if hit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

// Page renders GET /search with the same parameters as the API.
func (h *SearchHandler) Page(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return pageError(c, "search.page", err)
	}
	p, errs := search.Parse(queryValues(c))
	if errs != nil {
		c.Status(fiber.StatusBadRequest)
		log.Security(c, "validation.fail", map[string]any{"op": "search", "fields": fieldNames(errs)})
		return render(c, "search", fiber.Map{
			"Params": p, "Categories": cats, "Errs": errs.Fields,
			"Err": "Some filters are invalid. Please check them and retry.",
		})
	}
	res, err := h.Search.Search(c.UserContext(), p)
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load results. Please retry.")
	}
	return render(c, "search", fiber.Map{
		"Params": p, "Categories": cats, "Result": res, "Pages": pageLinks(c, res.Pagination),
	})
}
