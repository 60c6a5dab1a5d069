package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// AttachmentRepository persists homework-level and submission-level
// attachment metadata. Rows are append-only; deletion happens only through
// the cascade of the owning parent.
type AttachmentRepository interface {
	CreateHomeworkAttachments(ctx context.Context, attachments []models.HomeworkAttachment) error
	GetHomeworkAttachment(ctx context.Context, id uint) (models.HomeworkAttachment, error)
	CreateSubmissionAttachments(ctx context.Context, attachments []models.SubmissionAttachment) error
	GetSubmissionAttachment(ctx context.Context, id uint) (models.SubmissionAttachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository instantiates the repository.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) CreateHomeworkAttachments(ctx context.Context, attachments []models.HomeworkAttachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&attachments).Error
}

func (r *attachmentRepository) GetHomeworkAttachment(ctx context.Context, id uint) (models.HomeworkAttachment, error) {
	var attachment models.HomeworkAttachment
	if err := r.db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		return models.HomeworkAttachment{}, err
	}

	return attachment, nil
}

func (r *attachmentRepository) CreateSubmissionAttachments(ctx context.Context, attachments []models.SubmissionAttachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&attachments).Error
}

func (r *attachmentRepository) GetSubmissionAttachment(ctx context.Context, id uint) (models.SubmissionAttachment, error) {
	var attachment models.SubmissionAttachment
	if err := r.db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		return models.SubmissionAttachment{}, err
	}

	return attachment, nil
}
