package dto

import (
	"time"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// AnswerInput is one (question, selected option) pair of a test submission.
// SelectedOptionID is absent when the question was left unanswered.
type AnswerInput struct {
	QuestionID       uint  `json:"question_id" validate:"required,gt=0"`
	SelectedOptionID *uint `json:"selected_option_id" validate:"omitempty,gt=0"`
}

// TestSubmitRequest carries a full answer set for one subject test.
type TestSubmitRequest struct {
	Answers []AnswerInput `json:"answers" validate:"dive"`
}

// ResultDetailResponse explains the evaluation of a single question.
type ResultDetailResponse struct {
	QuestionID       uint  `json:"question_id"`
	SelectedOptionID *uint `json:"selected_option_id"`
	CorrectOptionID  *uint `json:"correct_option_id"`
	Correct          bool  `json:"correct"`
}

// ResultResponse is the graded outcome returned to the client.
type ResultResponse struct {
	ID             uint                   `json:"id"`
	UserID         uint                   `json:"user_id"`
	SubjectCode    string                 `json:"subject_code"`
	CorrectAnswers int                    `json:"correct_answers"`
	TotalQuestions int                    `json:"total_questions"`
	Score          int                    `json:"score"`
	MaxScore       int                    `json:"max_score"`
	CompletedAt    time.Time              `json:"completed_at"`
	Details        []ResultDetailResponse `json:"details"`
}

// NewResultResponse converts a TestResult model into a DTO.
func NewResultResponse(model models.TestResult) ResultResponse {
	response := ResultResponse{
		ID:             model.ID,
		UserID:         model.UserID,
		SubjectCode:    model.Subject.Code,
		CorrectAnswers: model.CorrectAnswers,
		TotalQuestions: model.TotalQuestions,
		Score:          model.Score,
		MaxScore:       model.MaxScore,
		CompletedAt:    model.CompletedAt,
	}

	if len(model.Details) > 0 {
		details := make([]ResultDetailResponse, 0, len(model.Details))
		for _, detail := range model.Details {
			details = append(details, ResultDetailResponse{
				QuestionID:       detail.QuestionID,
				SelectedOptionID: detail.SelectedOptionID,
				CorrectOptionID:  detail.CorrectOptionID,
				Correct:          detail.Correct,
			})
		}
		response.Details = details
	}

	return response
}

// NewResultResponseSlice converts result models into DTOs.
func NewResultResponseSlice(models []models.TestResult) []ResultResponse {
	responses := make([]ResultResponse, 0, len(models))
	for _, result := range models {
		responses = append(responses, NewResultResponse(result))
	}

	return responses
}
