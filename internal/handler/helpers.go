package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/entbridge-go-api/internal/apperr"
	"github.com/noah-isme/entbridge-go-api/internal/middleware"
	"github.com/noah-isme/entbridge-go-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
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

// sendAppError maps the error taxonomy to HTTP statuses. Validation errors
// from payload structs surface as bad requests; anything unclassified is an
// internal error and gets logged with its cause.
func sendAppError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "VALIDATION_FAILED", validationErrors.Error())
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := fiber.StatusInternalServerError
		switch appErr.Kind {
		case apperr.KindNotFound:
			status = fiber.StatusNotFound
		case apperr.KindInvalid:
			status = fiber.StatusBadRequest
		case apperr.KindConflict:
			status = fiber.StatusConflict
		case apperr.KindForbidden:
			status = fiber.StatusForbidden
		}
		if status == fiber.StatusInternalServerError {
			requestLogger(logger, c).Error().Err(err).Msg("internal server error")
			return utils.SendErrorCode(c, status, appErr.Code, "internal server error")
		}
		return utils.SendErrorCode(c, status, appErr.Code, appErr.Message)
	}

	requestLogger(logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendErrorCode(c, fiber.StatusInternalServerError, "INTERNAL", "internal server error")
}
