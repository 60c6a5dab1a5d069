package models

import (
	"fmt"
	"time"
)

// Homework is an assignment created by an admin for a subject.
type Homework struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Title       string               `gorm:"size:255;not null" json:"title"`
	Description string               `gorm:"type:text" json:"description"`
	SubjectID   uint                 `gorm:"not null;index" json:"subject_id"`
	DueDate     time.Time            `json:"due_date"`
	AssignedBy  string               `gorm:"size:255" json:"assigned_by"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Attachments []HomeworkAttachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments"`
	Submissions []HomeworkSubmission `gorm:"constraint:OnDelete:CASCADE" json:"submissions"`
	Subject     Subject              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// SubmissionStatus is the closed state set of a homework submission.
type SubmissionStatus string

const (
	// SubmissionStatusSubmitted indicates the work is waiting for review.
	SubmissionStatusSubmitted SubmissionStatus = "SUBMITTED"
	// SubmissionStatusNeedsRevision reopens the submission for the student.
	SubmissionStatusNeedsRevision SubmissionStatus = "NEEDS_REVISION"
	// SubmissionStatusApproved is the terminal accepted outcome.
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
)

// ParseSubmissionStatus validates a reviewer supplied status value.
func ParseSubmissionStatus(value string) (SubmissionStatus, error) {
	switch SubmissionStatus(value) {
	case SubmissionStatusSubmitted, SubmissionStatusNeedsRevision, SubmissionStatusApproved:
		return SubmissionStatus(value), nil
	default:
		return "", fmt.Errorf("unknown submission status %q", value)
	}
}

// HomeworkSubmission holds one student's answer to a homework assignment.
// At most one row exists per (homework, user) pair.
type HomeworkSubmission struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	HomeworkID  uint                   `gorm:"not null;uniqueIndex:idx_submission_homework_user" json:"homework_id"`
	UserID      uint                   `gorm:"not null;uniqueIndex:idx_submission_homework_user" json:"user_id"`
	Content     *string                `gorm:"type:text" json:"content"`
	Status      SubmissionStatus       `gorm:"size:32;not null;default:SUBMITTED" json:"status"`
	Grade       *int                   `json:"grade"`
	Feedback    *string                `gorm:"type:text" json:"feedback"`
	ReviewedBy  *uint                  `json:"reviewed_by"`
	SubmittedAt time.Time              `json:"submitted_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Attachments []SubmissionAttachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments"`
	User        User                   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Resubmittable reports whether the student may submit again. Any status
// other than NEEDS_REVISION locks the submission until it is re-reviewed.
func (s HomeworkSubmission) Resubmittable() bool {
	return s.Status == SubmissionStatusNeedsRevision
}

// HomeworkAttachment is a file attached to the assignment itself.
type HomeworkAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	HomeworkID   uint      `gorm:"not null;index" json:"homework_id"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	StorageKey   string    `gorm:"size:512;not null" json:"-"`
	ContentType  string    `gorm:"size:127" json:"content_type"`
	Size         int64     `gorm:"not null" json:"size"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// SubmissionAttachment is a file attached to a student submission. Rows are
// append-only: revision rounds add attachments, they never replace them.
type SubmissionAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	StorageKey   string    `gorm:"size:512;not null" json:"-"`
	ContentType  string    `gorm:"size:127" json:"content_type"`
	Size         int64     `gorm:"not null" json:"size"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
