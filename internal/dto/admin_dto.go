package dto

import (
	"time"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// SubjectCreateRequest describes a new subject.
type SubjectCreateRequest struct {
	Code     string `json:"code" validate:"required,min=2,max=64"`
	Title    string `json:"title" validate:"required,min=2,max=255"`
	Category string `json:"category"`
	MaxScore *int   `json:"max_score" validate:"omitempty,gt=0"`
}

// SubjectResponse serializes a subject.
type SubjectResponse struct {
	ID       uint   `json:"id"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	MaxScore *int   `json:"max_score"`
}

// NewSubjectResponse converts a Subject model into a DTO.
func NewSubjectResponse(model models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:       model.ID,
		Code:     model.Code,
		Title:    model.Title,
		Category: model.Category,
		MaxScore: model.MaxScore,
	}
}

// OptionInput describes one answer choice of a new question.
type OptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionCreateRequest describes a new question with its options.
type QuestionCreateRequest struct {
	SubjectCode string        `json:"subject_code" validate:"required"`
	Text        string        `json:"text" validate:"required"`
	Points      int           `json:"points" validate:"omitempty,gt=0"`
	Explanation string        `json:"explanation"`
	Options     []OptionInput `json:"options" validate:"required,min=2,dive"`
}

// UserSummaryResponse lists a user with their score aggregate.
type UserSummaryResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	TotalScore   int     `json:"total_score"`
	AverageScore float64 `json:"average_score"`
}

// NewUserSummaryResponse converts a User model into a DTO.
func NewUserSummaryResponse(model models.User) UserSummaryResponse {
	return UserSummaryResponse{
		ID:           model.ID,
		Name:         model.Name,
		Email:        model.Email,
		Role:         model.Role,
		TotalScore:   model.TotalScore,
		AverageScore: model.AverageScore,
	}
}

// AuditListRequest filters the audit trail listing.
type AuditListRequest struct {
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size"`
	ActorID    uint   `query:"actor_id"`
	Action     string `query:"action"`
	EntityType string `query:"entity_type"`
}

// AuditEntryResponse serializes one audit trail entry.
type AuditEntryResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// PaginationMeta describes slice position in paged listings.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AuditListResponse wraps audit entries with pagination metadata.
type AuditListResponse struct {
	Items      []AuditEntryResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAuditEntryResponse converts an AuditLog model into a DTO.
func NewAuditEntryResponse(model models.AuditLog) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         model.ID,
		ActorID:    model.ActorID,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		Metadata:   model.Metadata,
		CreatedAt:  model.CreatedAt,
	}
}
