package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// QuestionRepository defines persistence operations for questions and their
// options.
type QuestionRepository interface {
	// ListBySubject returns the subject's questions with options, in a stable
	// identity order so grading stays reproducible.
	ListBySubject(ctx context.Context, subjectID uint) ([]models.Question, error)
	Create(ctx context.Context, question *models.Question) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.id ASC")
		}).
		Where("subject_id = ?", subjectID).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}
