package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// SubmissionRepository defines data operations for homework submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.HomeworkSubmission, error)
	GetByHomeworkAndUser(ctx context.Context, homeworkID, userID uint) (models.HomeworkSubmission, error)
	ListByHomework(ctx context.Context, homeworkID uint) ([]models.HomeworkSubmission, error)
	ListByUser(ctx context.Context, userID uint) ([]models.HomeworkSubmission, error)
	Create(ctx context.Context, submission *models.HomeworkSubmission) error
	Update(ctx context.Context, submission *models.HomeworkSubmission) error
	// UpdateIfStatus applies the mutable submit fields only while the stored
	// row still carries the expected status, and reports whether a row was
	// hit. A miss means a concurrent request won the resubmission race.
	UpdateIfStatus(ctx context.Context, submission *models.HomeworkSubmission, expected models.SubmissionStatus) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.HomeworkSubmission{}).
		Preload("Attachments").
		Preload("User")
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.HomeworkSubmission, error) {
	var submission models.HomeworkSubmission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.HomeworkSubmission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByHomeworkAndUser(ctx context.Context, homeworkID, userID uint) (models.HomeworkSubmission, error) {
	var submission models.HomeworkSubmission
	if err := r.baseQuery(ctx).
		Where("homework_id = ?", homeworkID).
		Where("user_id = ?", userID).
		First(&submission).Error; err != nil {
		return models.HomeworkSubmission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByHomework(ctx context.Context, homeworkID uint) ([]models.HomeworkSubmission, error) {
	var submissions []models.HomeworkSubmission
	if err := r.baseQuery(ctx).
		Where("homework_id = ?", homeworkID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint) ([]models.HomeworkSubmission, error) {
	var submissions []models.HomeworkSubmission
	if err := r.baseQuery(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.HomeworkSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.HomeworkSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) UpdateIfStatus(ctx context.Context, submission *models.HomeworkSubmission, expected models.SubmissionStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.HomeworkSubmission{}).
		Where("id = ? AND status = ?", submission.ID, expected).
		Updates(map[string]interface{}{
			"content":      submission.Content,
			"status":       submission.Status,
			"submitted_at": submission.SubmittedAt,
			"updated_at":   submission.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
