package dto

import (
	"time"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// HomeworkCreateRequest describes a new assignment.
type HomeworkCreateRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description"`
	SubjectCode string    `json:"subject_code" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// HomeworkUpdateRequest mirrors the create payload for full updates.
type HomeworkUpdateRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description"`
	SubjectCode string    `json:"subject_code" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// ReviewRequest carries a reviewer's verdict for a submission.
type ReviewRequest struct {
	Status   string  `json:"status" validate:"required"`
	Feedback *string `json:"feedback"`
	Grade    *int    `json:"grade" validate:"omitempty,gte=0"`
}

// AttachmentResponse serializes attachment metadata. The storage key stays
// internal; clients download through the attachment endpoints.
type AttachmentResponse struct {
	ID           uint      `json:"id"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// SubmissionResponse serializes a homework submission.
type SubmissionResponse struct {
	ID          uint                 `json:"id"`
	HomeworkID  uint                 `json:"homework_id"`
	UserID      uint                 `json:"user_id"`
	UserName    string               `json:"user_name,omitempty"`
	Content     *string              `json:"content"`
	Status      string               `json:"status"`
	Grade       *int                 `json:"grade"`
	Feedback    *string              `json:"feedback"`
	ReviewedBy  *uint                `json:"reviewed_by"`
	SubmittedAt time.Time            `json:"submitted_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// HomeworkResponse serializes an assignment, optionally with submissions.
type HomeworkResponse struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	SubjectCode string               `json:"subject_code"`
	DueDate     time.Time            `json:"due_date"`
	AssignedBy  string               `json:"assigned_by"`
	Attachments []AttachmentResponse `json:"attachments"`
	Submissions []SubmissionResponse `json:"submissions"`
}

func newHomeworkAttachmentResponses(attachments []models.HomeworkAttachment) []AttachmentResponse {
	responses := make([]AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		responses = append(responses, AttachmentResponse{
			ID:           attachment.ID,
			OriginalName: attachment.OriginalName,
			ContentType:  attachment.ContentType,
			Size:         attachment.Size,
			UploadedAt:   attachment.UploadedAt,
		})
	}

	return responses
}

func newSubmissionAttachmentResponses(attachments []models.SubmissionAttachment) []AttachmentResponse {
	responses := make([]AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		responses = append(responses, AttachmentResponse{
			ID:           attachment.ID,
			OriginalName: attachment.OriginalName,
			ContentType:  attachment.ContentType,
			Size:         attachment.Size,
			UploadedAt:   attachment.UploadedAt,
		})
	}

	return responses
}

// NewSubmissionResponse converts a HomeworkSubmission model into a DTO.
func NewSubmissionResponse(model models.HomeworkSubmission) SubmissionResponse {
	return SubmissionResponse{
		ID:          model.ID,
		HomeworkID:  model.HomeworkID,
		UserID:      model.UserID,
		UserName:    model.User.Name,
		Content:     model.Content,
		Status:      string(model.Status),
		Grade:       model.Grade,
		Feedback:    model.Feedback,
		ReviewedBy:  model.ReviewedBy,
		SubmittedAt: model.SubmittedAt,
		UpdatedAt:   model.UpdatedAt,
		Attachments: newSubmissionAttachmentResponses(model.Attachments),
	}
}

// NewHomeworkResponse converts a Homework model and the submissions the
// caller may see into a DTO.
func NewHomeworkResponse(model models.Homework, submissions []models.HomeworkSubmission) HomeworkResponse {
	submissionResponses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		submissionResponses = append(submissionResponses, NewSubmissionResponse(submission))
	}

	return HomeworkResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		SubjectCode: model.Subject.Code,
		DueDate:     model.DueDate,
		AssignedBy:  model.AssignedBy,
		Attachments: newHomeworkAttachmentResponses(model.Attachments),
		Submissions: submissionResponses,
	}
}
