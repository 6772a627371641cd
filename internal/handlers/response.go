package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Every response uses the envelope {success, data | error, message?, details?}.

func success(c *fiber.Ctx, data interface{}) error {
	return successWithCode(c, fiber.StatusOK, "", data)
}

func successWithCode(c *fiber.Ctx, code int, message string, data interface{}) error {
	body := fiber.Map{
		"success": true,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}
	return c.Status(code).JSON(body)
}

func errorResponse(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func errorWithDetails(c *fiber.Ctx, code int, message string, details interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"details": details,
	})
}

// validationError reports each failing field with the rule it broke.
func validationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errorResponse(c, fiber.StatusBadRequest, "invalid input")
	}

	details := make(map[string]string, len(ve))
	for _, fieldErr := range ve {
		details[fieldErr.Field()] = fieldErr.Tag()
		if fieldErr.Param() != "" {
			details[fieldErr.Field()] = fieldErr.Tag() + "=" + fieldErr.Param()
		}
	}

	return errorWithDetails(c, fiber.StatusBadRequest, "validation failed", details)
}
