package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/handler"
	"github.com/noah-isme/entbridge-go-api/internal/models"
	"github.com/noah-isme/entbridge-go-api/internal/repository"
	"github.com/noah-isme/entbridge-go-api/internal/service"
)

func TestTestHandler_SubmitGradesAndRecordsResult(t *testing.T) {
	db := openHandlerDB(t)
	app, questions := newTestApp(t, db, 7, "student")

	student := models.User{ID: 7, Name: "Aizhan", Email: "aizhan@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	payload := dto.TestSubmitRequest{Answers: []dto.AnswerInput{
		{QuestionID: questions[0].ID, SelectedOptionID: correctOptionID(t, questions[0])},
		{QuestionID: questions[1].ID, SelectedOptionID: &questions[1].Options[1].ID},
	}}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/tests/math/submit", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data dto.ResultResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	require.Equal(t, 1, body.Data.CorrectAnswers)
	require.Equal(t, 2, body.Data.TotalQuestions)
	require.Equal(t, 1, body.Data.Score)
	require.Equal(t, 2, body.Data.MaxScore)
	require.Equal(t, "math", body.Data.SubjectCode)
	require.Len(t, body.Data.Details, 2)

	var stored models.User
	require.NoError(t, db.First(&stored, 7).Error)
	require.Equal(t, 1, stored.TotalScore, "expected the user aggregate to absorb the new score")
}

func TestTestHandler_SubmitUnknownSubject(t *testing.T) {
	db := openHandlerDB(t)
	app, _ := newTestApp(t, db, 7, "student")

	student := models.User{ID: 7, Name: "Aizhan", Email: "aizhan@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/tests/history/submit", dto.TestSubmitRequest{})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &body)
	require.Equal(t, "SUBJECT_NOT_FOUND", body.Code)
}

func TestTestHandler_QuestionsHideTheCorrectFlag(t *testing.T) {
	db := openHandlerDB(t)
	app, _ := newTestApp(t, db, 7, "student")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tests/math/questions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NotContains(t, string(raw), "is_correct")

	var body struct {
		Data []dto.QuestionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body.Data, 2)
	require.Len(t, body.Data[0].Options, 2)
}

// newTestApp wires the grading service against sqlite and mounts the test
// routes behind a stub auth middleware. It seeds the math subject with two
// questions and returns them for answer construction.
func newTestApp(t *testing.T, db *gorm.DB, userID uint, role string) (*fiber.App, []models.Question) {
	t.Helper()

	subject := models.Subject{Code: "math", Title: "Mathematics"}
	require.NoError(t, db.Create(&subject).Error)

	questions := []models.Question{
		{SubjectID: subject.ID, Text: "2 + 2", Points: 1, Options: []models.Option{{Text: "4", IsCorrect: true}, {Text: "5"}}},
		{SubjectID: subject.ID, Text: "3 * 3", Points: 1, Options: []models.Option{{Text: "9", IsCorrect: true}, {Text: "6"}}},
	}
	for i := range questions {
		require.NoError(t, db.Create(&questions[i]).Error)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	testService := service.NewTestService(
		repository.NewSubjectRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewTestResultRepository(db),
		repository.NewUnitOfWork(db),
		nil,
		0,
		validate,
		zerolog.Nop(),
	)
	testHandler := handler.NewTestHandler(testService, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/tests", stubAuth(userID, role))
	testHandler.Register(group)
	testHandler.RegisterResults(app.Group("/api/v1/results", stubAuth(userID, role)))

	return app, questions
}

func stubAuth(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func correctOptionID(t *testing.T, question models.Question) *uint {
	t.Helper()
	id := question.CorrectOptionID()
	require.NotNil(t, id, "seeded question must carry a correct option")
	return id
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(raw, target), "body: %s", strings.TrimSpace(string(raw)))
}

func openHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Question{},
		&models.Option{},
		&models.TestResult{},
		&models.TestResultDetail{},
		&models.Homework{},
		&models.HomeworkAttachment{},
		&models.HomeworkSubmission{},
		&models.SubmissionAttachment{},
		&models.AuditLog{},
	))
	return db
}
