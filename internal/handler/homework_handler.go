package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/middleware"
	"github.com/noah-isme/entbridge-go-api/internal/service"
	"github.com/noah-isme/entbridge-go-api/internal/utils"
)

// HomeworkHandler serves homework assignments, submissions and attachment
// downloads.
type HomeworkHandler struct {
	service service.HomeworkService
	logger  zerolog.Logger
}

// NewHomeworkHandler builds a homework handler instance.
func NewHomeworkHandler(service service.HomeworkService, logger zerolog.Logger) *HomeworkHandler {
	return &HomeworkHandler{
		service: service,
		logger:  logger.With().Str("component", "homework_handler").Logger(),
	}
}

// Register attaches the student-facing routes to the provided router group.
func (h *HomeworkHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/:id/submissions", h.submit)
	router.Get("/attachments/:id/download", h.downloadHomeworkAttachment)
	router.Get("/submissions/attachments/:id/download", h.downloadSubmissionAttachment)
}

// RegisterAdmin attaches the admin-facing routes to the provided router group.
func (h *HomeworkHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/attachments", h.addAttachments)
}

// RegisterReview attaches the submission review route.
func (h *HomeworkHandler) RegisterReview(router fiber.Router) {
	router.Put("/:id/review", h.review)
}

func (h *HomeworkHandler) list(c *fiber.Ctx) error {
	var (
		homework []dto.HomeworkResponse
		err      error
	)
	if middleware.IsAdminRequest(c) {
		homework, err = h.service.ListForAdmin(c.Context())
	} else {
		homework, err = h.service.ListForStudent(c.Context(), userIDFromContext(c))
	}
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "homework retrieved", homework)
}

func (h *HomeworkHandler) submit(c *fiber.Ctx) error {
	homeworkID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_ID", err.Error())
	}

	content := c.FormValue("content")
	files := formFiles(c, "files")

	submission, err := h.service.Submit(c.Context(), userIDFromContext(c), homeworkID, content, files)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "homework submitted", submission)
}

func (h *HomeworkHandler) create(c *fiber.Ctx) error {
	var payload dto.HomeworkCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	homework, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "homework created", homework)
}

func (h *HomeworkHandler) update(c *fiber.Ctx) error {
	homeworkID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_ID", err.Error())
	}

	var payload dto.HomeworkUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	homework, err := h.service.Update(c.Context(), userIDFromContext(c), homeworkID, payload)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "homework updated", homework)
}

func (h *HomeworkHandler) delete(c *fiber.Ctx) error {
	homeworkID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_ID", err.Error())
	}

	if err := h.service.Delete(c.Context(), userIDFromContext(c), homeworkID); err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "homework deleted", nil)
}

func (h *HomeworkHandler) addAttachments(c *fiber.Ctx) error {
	homeworkID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_ID", err.Error())
	}

	homework, err := h.service.AddAttachments(c.Context(), userIDFromContext(c), homeworkID, formFiles(c, "files"))
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attachments added", homework)
}

func (h *HomeworkHandler) review(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_ID", err.Error())
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	submission, err := h.service.Review(c.Context(), userIDFromContext(c), submissionID, payload)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission reviewed", submission)
}

func (h *HomeworkHandler) downloadHomeworkAttachment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_ID", err.Error())
	}

	download, err := h.service.HomeworkAttachment(c.Context(), id)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return streamAttachment(c, download)
}

func (h *HomeworkHandler) downloadSubmissionAttachment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "INVALID_ID", err.Error())
	}

	download, err := h.service.SubmissionAttachment(c.Context(), userIDFromContext(c), middleware.IsAdminRequest(c), id)
	if err != nil {
		return sendAppError(c, h.logger, err)
	}

	return streamAttachment(c, download)
}

func streamAttachment(c *fiber.Ctx, download service.AttachmentDownload) error {
	if download.ContentType != "" {
		c.Set(fiber.HeaderContentType, download.ContentType)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+download.OriginalName+`"`)
	if download.Size > 0 {
		c.Set(fiber.HeaderContentLength, strconv.FormatInt(download.Size, 10))
	}

	return c.SendStream(download.Reader, int(download.Size))
}

func formFiles(c *fiber.Ctx, key string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[key]
}
