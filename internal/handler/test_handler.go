package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/service"
	"github.com/noah-isme/entbridge-go-api/internal/utils"
)

// TestHandler serves the question bank and grades test submissions.
type TestHandler struct {
	service service.TestService
	logger  zerolog.Logger
}

// NewTestHandler builds a test handler instance.
func NewTestHandler(service service.TestService, logger zerolog.Logger) *TestHandler {
	return &TestHandler{
		service: service,
		logger:  logger.With().Str("component", "test_handler").Logger(),
	}
}

// Register attaches the subject routes to the provided router group.
func (h *TestHandler) Register(router fiber.Router) {
	router.Get("/:code/questions", h.questions)
	router.Post("/:code/submit", h.submit)
}

// RegisterResults attaches the caller-scoped results listing.
func (h *TestHandler) RegisterResults(router fiber.Router) {
	router.Get("", h.results)
}

func (h *TestHandler) questions(c *fiber.Ctx) error {
	questions, err := h.service.Questions(c.Context(), c.Params("code"))
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *TestHandler) submit(c *fiber.Ctx) error {
	var payload dto.TestSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), userIDFromContext(c), c.Params("code"), payload)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "test graded", result)
}

func (h *TestHandler) results(c *fiber.Ctx) error {
	results, err := h.service.ResultsForUser(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}
