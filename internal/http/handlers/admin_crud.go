package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "heavyequip/internal/log"
	"heavyequip/internal/validate"
)

// paramID validates the :id route parameter.
func paramID(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return "", fieldError("id", "is invalid")
	}
	return id, nil
}

// createJSON decodes a T, hands it to fn and answers 201 with the stored row.
func createJSON[T any](c *fiber.Ctx, action string, fn func(T) (T, error), idOf func(T) string) error {
	var in T
	if err := bindJSON(c, &in); err != nil {
		return apiError(c, action, err)
	}
	out, err := fn(in)
	if err != nil {
		return apiError(c, action, err)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, action, map[string]any{"id": idOf(out)})
	return c.JSON(out)
}

func updateJSON[T any](c *fiber.Ctx, action string, fn func(string, T) (T, error)) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, action, err)
	}
	var in T
	if err := bindJSON(c, &in); err != nil {
		return apiError(c, action, err)
	}
	out, err := fn(id, in)
	if err != nil {
		return apiError(c, action, err)
	}
	applog.Audit(c, action, map[string]any{"id": id})
	return c.JSON(out)
}

func deleteJSON(c *fiber.Ctx, action string, fn func(string) error) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, action, err)
	}
	if err := fn(id); err != nil {
		return apiError(c, action, err)
	}
	applog.Audit(c, action, map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// getJSON answers one row looked up by :id.
func getJSON[T any](c *fiber.Ctx, action string, fn func(string) (T, error)) error {
	id, err := paramID(c)
	if err != nil {
		return apiError(c, action, err)
	}
	out, err := fn(id)
	if err != nil {
		return apiError(c, action, err)
	}
	return c.JSON(out)
}

// listJSON wraps rows as {"data": rows}.
func listJSON[T any](c *fiber.Ctx, action string, rows []T, err error) error {
	if err != nil {
		return apiError(c, action, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return c.JSON(fiber.Map{"data": rows})
}
