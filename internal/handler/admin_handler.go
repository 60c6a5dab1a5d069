package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/service"
	"github.com/noah-isme/entbridge-go-api/internal/utils"
)

// AdminHandler serves content authoring and reporting endpoints.
type AdminHandler struct {
	admin  service.AdminService
	audit  service.AuditService
	logger zerolog.Logger
}

// NewAdminHandler builds an admin handler instance.
func NewAdminHandler(admin service.AdminService, audit service.AuditService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		audit:  audit,
		logger: logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches the routes to the provided admin router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/subjects", h.listSubjects)
	router.Post("/subjects", h.createSubject)
	router.Post("/questions", h.createQuestion)
	router.Get("/users", h.listUsers)
	router.Get("/results", h.listResults)
	router.Get("/audit", h.listAudit)
}

func (h *AdminHandler) listSubjects(c *fiber.Ctx) error {
	subjects, err := h.admin.ListSubjects(c.Context())
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "subjects retrieved", subjects)
}

func (h *AdminHandler) createSubject(c *fiber.Ctx) error {
	var payload dto.SubjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	subject, err := h.admin.CreateSubject(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *AdminHandler) createQuestion(c *fiber.Ctx) error {
	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	question, err := h.admin.CreateQuestion(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question created", question)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.Context())
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *AdminHandler) listResults(c *fiber.Ctx) error {
	results, err := h.admin.ListResults(c.Context())
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *AdminHandler) listAudit(c *fiber.Ctx) error {
	var req dto.AuditListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_QUERY", "invalid query parameters")
	}

	entries, err := h.audit.List(c.Context(), req)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "audit entries retrieved", entries)
}
