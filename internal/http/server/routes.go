package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"heavyequip/internal/http/handlers"
	applog "heavyequip/internal/log"
)

// throttle is a per-IP limiter for one sensitive route.
func throttle(name string, max int, window time.Duration, onLimit func(*fiber.Ctx) error) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + name
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Status(fiber.StatusTooManyRequests)
			applog.Security(c, "rate."+name+".hit", nil)
			return onLimit(c)
		},
	})
}

func tooManyJSON(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
}

func routes(app *fiber.App, d *handlers.Deps) {
	// Public pages
	app.Get("/", d.PublicHandler.Home)
	app.Get("/search", throttle("search", 20, time.Minute, func(c *fiber.Ctx) error {
		return c.Render("notfound", fiber.Map{"Message": "Too many searches. Please slow down."}, handlers.Layout)
	}), d.SearchHandler.Page)
	app.Get("/category/:slug", d.PublicHandler.Category)
	app.Get("/ads/:slug", d.PublicHandler.Ad)
	app.Get("/stores/:slug", d.PublicHandler.Store)
	app.Get("/blog", d.PublicHandler.BlogList)
	app.Get("/blog/:slug", d.PublicHandler.BlogPost)

	// Saved ads
	app.Get("/saved", d.SavedHandler.List)
	app.Post("/saved", d.SavedHandler.Save)
	app.Post("/saved/delete", d.SavedHandler.Unsave)

	// Inquiries (throttled)
	inquiryLimit := func() fiber.Handler {
		return throttle("inquiry", 5, 10*time.Minute, func(c *fiber.Ctx) error {
			if handlers.IsAPI(c) {
				return tooManyJSON(c)
			}
			return c.Render("notfound", fiber.Map{"Message": "Too many requests. Please try again later."}, handlers.Layout)
		})
	}
	app.Get("/inquiry", d.InquiryHandler.Form)
	app.Post("/inquiry", inquiryLimit(), d.InquiryHandler.Submit)

	// Auth routes (login throttled)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", throttle("login", 5, 10*time.Minute, func(c *fiber.Ctx) error {
		return c.Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."}, handlers.Layout)
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	// Public API
	api := app.Group("/api")
	api.Get("/search", d.SearchHandler.API)
	api.Get("/search/facets", d.SearchHandler.Facets)
	api.Get("/categories", d.CatalogAPI.Categories)
	api.Get("/categories/:id/sub-categories", d.CatalogAPI.SubCategories)
	api.Get("/brands", d.CatalogAPI.Brands)
	api.Get("/brands/:id/models", d.CatalogAPI.Models)
	api.Get("/ads/:slug", d.CatalogAPI.Ad)
	api.Post("/inquiries", inquiryLimit(), d.InquiryHandler.SubmitAPI)

	// Admin
	admin := app.Group("/admin", handlers.RequireAdmin(d.Auth))
	admin.Get("/", d.AdminHandler.Dashboard)

	a := admin.Group("/api")
	a.Get("/stats", d.AdminHandler.StatsAPI)
	a.Get("/users", d.AdminHandler.Users)
	a.Delete("/users/:id", d.AdminHandler.DeleteUser)

	cat := d.AdminCatalogHandler
	a.Get("/categories", cat.Categories)
	a.Post("/categories", cat.CreateCategory)
	a.Put("/categories/:id", cat.UpdateCategory)
	a.Delete("/categories/:id", cat.DeleteCategory)
	a.Get("/categories/:id/sub-categories", cat.SubCategories)
	a.Post("/sub-categories", cat.CreateSubCategory)
	a.Put("/sub-categories/:id", cat.UpdateSubCategory)
	a.Delete("/sub-categories/:id", cat.DeleteSubCategory)
	a.Get("/brands", cat.Brands)
	a.Post("/brands", cat.CreateBrand)
	a.Put("/brands/:id", cat.UpdateBrand)
	a.Delete("/brands/:id", cat.DeleteBrand)
	a.Get("/brands/:id/models", cat.Models)
	a.Post("/models", cat.CreateModel)
	a.Put("/models/:id", cat.UpdateModel)
	a.Delete("/models/:id", cat.DeleteModel)
	a.Get("/engines", cat.Engines)
	a.Post("/engines", cat.CreateEngine)
	a.Put("/engines/:id", cat.UpdateEngine)
	a.Delete("/engines/:id", cat.DeleteEngine)
	a.Get("/locations", cat.Locations)
	a.Post("/locations", cat.CreateLocation)
	a.Delete("/locations/:id", cat.DeleteLocation)

	lst := d.AdminListingHandler
	a.Get("/ads", lst.ListAds)
	a.Post("/ads", lst.CreateAd)
	a.Get("/ads/:id", lst.Ad)
	a.Put("/ads/:id", lst.UpdateAd)
	a.Delete("/ads/:id", lst.DeleteAd)
	a.Post("/ads/:id/status", lst.SetAdStatus)
	a.Post("/ads/:id/feature", lst.FeatureAd)
	a.Delete("/ads/:id/images", lst.RemoveAdImage)
	a.Get("/stores", lst.ListStores)
	a.Post("/stores", lst.CreateStore)
	a.Get("/stores/:id", lst.Store)
	a.Put("/stores/:id", lst.UpdateStore)
	a.Delete("/stores/:id", lst.DeleteStore)
	a.Post("/stores/:id/verify", lst.VerifyStore)
	a.Post("/stores/:id/subscription", lst.SetSubscription)

	cnt := d.AdminContentHandler
	a.Get("/blogs", cnt.ListBlogs)
	a.Post("/blogs", cnt.CreateBlog)
	a.Get("/blogs/:id", cnt.Blog)
	a.Put("/blogs/:id", cnt.UpdateBlog)
	a.Delete("/blogs/:id", cnt.DeleteBlog)
	a.Post("/blogs/:id/publish", cnt.PublishBlog)
	a.Get("/inquiries", cnt.ListInquiries)
	a.Get("/inquiries/:id", cnt.Inquiry)
	a.Post("/inquiries/:id/status", cnt.SetInquiryStatus)
	a.Post("/inquiries/:id/notes", cnt.AddInquiryNote)
	a.Delete("/inquiries/:id", cnt.DeleteInquiry)

	a.Post("/media", d.MediaHandler.Upload)
}
