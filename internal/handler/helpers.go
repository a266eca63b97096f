package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openhack-labs/openhack-api/internal/middleware"
)

func teamIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("team_id"); v != nil {
		switch id := v.(type) {
		case uint:
			return id
		case int:
			if id < 0 {
				return 0
			}
			return uint(id)
		case float64:
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func teamRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("team_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}
