package handlers

import (
	"github.com/gofiber/fiber/v2"

	"heavyequip/internal/domain"
	applog "heavyequip/internal/log"
	"heavyequip/internal/services"
	"heavyequip/internal/validate"
)

// AdminContentHandler manages blogs and inquiries under /admin/api.
type AdminContentHandler struct {
	Blogs     *services.BlogService
	Inquiries *services.InquiryService
}

type noteBody struct {
	Note string `json:"note"`
}

// ---------- blogs ----------

func (h *AdminContentHandler) ListBlogs(c *fiber.Ctx) error {
	blogs, err := h.Blogs.ListAll()
	return listJSON(c, "admin.blogs.list", blogs, err)
}

func (h *AdminContentHandler) Blog(c *fiber.Ctx) error {
	return getJSON(c, "admin.blogs.get", h.Blogs.Get)
}

func (h *AdminContentHandler) CreateBlog(c *fiber.Ctx) error {
	return createJSON(c, "admin.blogs.create", h.Blogs.Create, func(x domain.Blog) string { return x.ID })
}

func (h *AdminContentHandler) UpdateBlog(c *fiber.Ctx) error {
	return updateJSON(c, "admin.blogs.update", h.Blogs.Update)
}

func (h *AdminContentHandler) DeleteBlog(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.blogs.delete", h.Blogs.Delete)
}

func (h *AdminContentHandler) PublishBlog(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.blogs.publish", err)
	}
	var body flagBody
	if err := bindJSON(c, &body); err != nil {
		return apiError(c, "admin.blogs.publish", err)
	}
	if body.Value == nil {
		return apiError(c, "admin.blogs.publish", fieldError("value", "is required"))
	}
	if err := h.Blogs.Publish(id, *body.Value); err != nil {
		return apiError(c, "admin.blogs.publish", err)
	}
	applog.Audit(c, "admin.blogs.publish", map[string]any{"id": id, "published": *body.Value})
	return getJSON(c, "admin.blogs.get", h.Blogs.Get)
}

// ---------- inquiries ----------

func (h *AdminContentHandler) ListInquiries(c *fiber.Ctx) error {
	list, pg, err := h.Inquiries.List(c.Query("status"), c.Query("urgency"), validate.Page(c.Query("page")), c.QueryInt("limit", 20))
	if err != nil {
		return apiError(c, "admin.inquiries.list", err)
	}
	return c.JSON(fiber.Map{"data": list, "pagination": pg})
}

func (h *AdminContentHandler) Inquiry(c *fiber.Ctx) error {
	return getJSON(c, "admin.inquiries.get", h.Inquiries.Get)
}

func (h *AdminContentHandler) SetInquiryStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.inquiries.status", err)
	}
	var body statusBody
	if err := bindJSON(c, &body); err != nil {
		return apiError(c, "admin.inquiries.status", err)
	}
	q, err := h.Inquiries.UpdateStatus(id, body.Status)
	if err != nil {
		return apiError(c, "admin.inquiries.status", err)
	}
	applog.Audit(c, "admin.inquiries.status", map[string]any{"id": id, "status": q.Status})
	return c.JSON(q)
}

func (h *AdminContentHandler) AddInquiryNote(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, "admin.inquiries.note", err)
	}
	var body noteBody
	if err := bindJSON(c, &body); err != nil {
		return apiError(c, "admin.inquiries.note", err)
	}
	q, err := h.Inquiries.AddNote(id, body.Note)
	if err != nil {
		return apiError(c, "admin.inquiries.note", err)
	}
	applog.Audit(c, "admin.inquiries.note", map[string]any{"id": id})
	return c.JSON(q)
}

func (h *AdminContentHandler) DeleteInquiry(c *fiber.Ctx) error {
	return deleteJSON(c, "admin.inquiries.delete", h.Inquiries.Delete)
}
