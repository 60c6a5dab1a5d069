package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/handler"
	"github.com/noah-isme/entbridge-go-api/internal/models"
	"github.com/noah-isme/entbridge-go-api/internal/repository"
	"github.com/noah-isme/entbridge-go-api/internal/service"
)

func TestAdminHandler_CreateSubjectAndAuditTrail(t *testing.T) {
	db := openHandlerDB(t)
	app := newAdminApp(t, db)

	payload := dto.SubjectCreateRequest{Code: "physics", Title: "Physics"}
	resp := doAdminJSON(t, app, http.MethodPost, "/api/v1/admin/subjects", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.SubjectResponse `json:"data"`
	}
	decodeBody(t, resp, &created)
	require.Equal(t, "physics", created.Data.Code)

	// The same code cannot be registered twice.
	resp = doAdminJSON(t, app, http.MethodPost, "/api/v1/admin/subjects", payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &conflict)
	require.Equal(t, "SUBJECT_EXISTS", conflict.Code)

	// The creation left an audit entry behind.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit?action=subject.created", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", "admin")
	auditResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, auditResp.StatusCode)

	var audit struct {
		Data dto.AuditListResponse `json:"data"`
	}
	decodeBody(t, auditResp, &audit)
	require.Len(t, audit.Data.Items, 1)
	require.Equal(t, "subject.created", audit.Data.Items[0].Action)
	require.Equal(t, uint(1), audit.Data.Items[0].ActorID)
}

func TestAdminHandler_CreateQuestionEnforcesOneCorrectOption(t *testing.T) {
	db := openHandlerDB(t)
	app := newAdminApp(t, db)

	subject := models.Subject{Code: "chem", Title: "Chemistry"}
	require.NoError(t, db.Create(&subject).Error)

	payload := dto.QuestionCreateRequest{
		SubjectCode: "chem",
		Text:        "Symbol for gold?",
		Options: []dto.OptionInput{
			{Text: "Au", IsCorrect: true},
			{Text: "Ag", IsCorrect: true},
		},
	}
	resp := doAdminJSON(t, app, http.MethodPost, "/api/v1/admin/questions", payload)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &body)
	require.Equal(t, "MULTIPLE_CORRECT_OPTIONS", body.Code)

	payload.Options[1].IsCorrect = false
	resp = doAdminJSON(t, app, http.MethodPost, "/api/v1/admin/questions", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func newAdminApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	adminService := service.NewAdminService(
		repository.NewSubjectRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewTestResultRepository(db),
		repository.NewUserRepository(db),
		repository.NewUnitOfWork(db),
		nil,
		validate,
		zerolog.Nop(),
	)
	auditService := service.NewAuditService(repository.NewAuditLogRepository(db), zerolog.Nop())
	adminHandler := handler.NewAdminHandler(adminService, auditService, zerolog.Nop())

	app := fiber.New()
	adminHandler.Register(app.Group("/api/v1/admin", headerAuth()))

	return app
}
