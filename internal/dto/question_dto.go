package dto

import "github.com/noah-isme/entbridge-go-api/internal/models"

// OptionResponse exposes an answer choice without its correctness flag.
type OptionResponse struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionResponse serializes a question for test takers.
type QuestionResponse struct {
	ID          uint             `json:"id"`
	Text        string           `json:"text"`
	Points      int              `json:"points"`
	Explanation string           `json:"explanation,omitempty"`
	Options     []OptionResponse `json:"options"`
}

// NewQuestionResponse converts a Question model into a DTO. The correct
// option flag never leaves the server.
func NewQuestionResponse(model models.Question) QuestionResponse {
	options := make([]OptionResponse, 0, len(model.Options))
	for _, option := range model.Options {
		options = append(options, OptionResponse{ID: option.ID, Text: option.Text})
	}

	return QuestionResponse{
		ID:          model.ID,
		Text:        model.Text,
		Points:      model.Points,
		Explanation: model.Explanation,
		Options:     options,
	}
}

// NewQuestionResponseSlice converts question models into DTOs.
func NewQuestionResponseSlice(models []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(models))
	for _, question := range models {
		responses = append(responses, NewQuestionResponse(question))
	}

	return responses
}
