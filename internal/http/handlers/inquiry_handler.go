package handlers

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx/types"

	"heavyequip/internal/domain"
	applog "heavyequip/internal/log"
	"heavyequip/internal/services"
	"heavyequip/internal/validate"
)

type InquiryHandler struct {
	Inquiries *services.InquiryService
	Ads       *services.AdService
}

// detailFields are the free-form form inputs folded into Inquiry.Details.
var detailFields = []string{"equipment", "quantity", "budget", "start_date", "duration", "delivery_location", "message"}

func (h *InquiryHandler) Form(c *fiber.Ctx) error {
	data := fiber.Map{"Form": fiber.Map{}}
	if slug := c.Query("ad"); slug != "" && validate.Slug(slug) {
		if ad, err := h.Ads.PublicBySlug(slug); err == nil {
			data["Ad"] = ad
		}
	}
	return render(c, "inquiry", data)
}

// Submit handles the HTML form.
func (h *InquiryHandler) Submit(c *fiber.Ctx) error {
	form := fiber.Map{}
	details := map[string]string{}
	for _, k := range detailFields {
		if v := strings.TrimSpace(c.FormValue(k)); v != "" {
			details[k] = v
			form[k] = v
		}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return pageError(c, "inquiry.submit", err)
	}
	q := domain.Inquiry{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Phone:   c.FormValue("phone"),
		Company: c.FormValue("company"),
		Urgency: c.FormValue("urgency"),
		Details: types.JSONText(raw),
	}
	if id := c.FormValue("ad_id"); id != "" {
		q.AdID = &id
	}
	for k, v := range map[string]string{"name": q.Name, "email": q.Email, "phone": q.Phone, "company": q.Company, "urgency": q.Urgency} {
		form[k] = v
	}

	saved, err := h.Inquiries.Submit(q)
	if err != nil {
		code, _ := statusFor(err)
		if code != fiber.StatusBadRequest {
			return pageError(c, "inquiry.submit", err)
		}
		var errs map[string]string
		var verrs *validate.Errors
		if errors.As(err, &verrs) {
			errs = verrs.Fields
			applog.Security(c, "validation.fail", map[string]any{"op": "inquiry.submit", "fields": fieldNames(verrs)})
		}
		c.Status(fiber.StatusBadRequest)
		return render(c, "inquiry", fiber.Map{"Form": form, "Errs": errs, "Err": "Please correct the highlighted fields."})
	}
	applog.Audit(c, "inquiry.submit", map[string]any{"inquiry_id": saved.ID, "urgency": saved.Urgency})
	return render(c, "inquiry", fiber.Map{"Sent": true, "Form": fiber.Map{}})
}

// SubmitAPI handles POST /api/inquiries with a JSON body.
func (h *InquiryHandler) SubmitAPI(c *fiber.Ctx) error {
	var q domain.Inquiry
	if err := bindJSON(c, &q); err != nil {
		return apiError(c, "api.inquiry.submit", err)
	}
	saved, err := h.Inquiries.Submit(q)
	if err != nil {
		return apiError(c, "api.inquiry.submit", err)
	}
	applog.Audit(c, "inquiry.submit", map[string]any{"inquiry_id": saved.ID, "urgency": saved.Urgency})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": saved.ID, "status": saved.Status, "urgency": saved.Urgency})
}
