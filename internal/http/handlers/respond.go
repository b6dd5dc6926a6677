package handlers

import (
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "heavyequip/internal/log"
	"heavyequip/internal/services"
	"heavyequip/internal/validate"
)

const friendlyError = "Something went wrong. Please try again."

// IsAPI reports whether the request expects JSON rather than a page.
func IsAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api/") || p == "/api" || strings.HasPrefix(p, "/admin/api")
}

// statusFor maps service errors onto HTTP status codes and client messages.
func statusFor(err error) (int, string) {
	var verrs *validate.Errors
	switch {
	case errors.As(err, &verrs):
		return fiber.StatusBadRequest, "invalid input"
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict, "status change not allowed"
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict, "conflicts with existing data"
	default:
		return fiber.StatusInternalServerError, friendlyError
	}
}

// apiError writes the JSON error body for err. Validation failures carry the
// per-field messages; internal errors are logged and never echoed.
func apiError(c *fiber.Ctx, action string, err error) error {
	code, msg := statusFor(err)
	c.Status(code)
	body := fiber.Map{"error": msg}
	var verrs *validate.Errors
	switch {
	case errors.As(err, &verrs):
		body["fields"] = verrs.Fields
		applog.Security(c, "validation.fail", map[string]any{"op": action, "fields": fieldNames(verrs)})
	case code == fiber.StatusInternalServerError:
		applog.Error(c, action+".fail", err, nil)
	}
	return c.JSON(body)
}

// pageError is apiError for HTML routes.
func pageError(c *fiber.Ctx, action string, err error) error {
	code, _ := statusFor(err)
	switch code {
	case fiber.StatusNotFound:
		return notFound(c, code, "This page is no longer available")
	case fiber.StatusInternalServerError:
		c.Status(code)
		applog.Error(c, action+".fail", err, nil)
		return notFound(c, code, friendlyError)
	default:
		return notFound(c, code, "That request could not be completed")
	}
}

func fieldNames(e *validate.Errors) []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// bindJSON decodes the request body; malformed input is a validation error.
func bindJSON(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		errs := &validate.Errors{}
		errs.Add("body", "must be a valid JSON object")
		return errs
	}
	return nil
}

func fieldError(field, msg string) error {
	errs := &validate.Errors{}
	errs.Add(field, msg)
	return errs
}
