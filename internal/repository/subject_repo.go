package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// SubjectRepository defines persistence operations for subjects.
type SubjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	GetByCode(ctx context.Context, code string) (models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository instantiates a GORM-backed repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}

	return subjects, nil
}

func (r *subjectRepository) GetByCode(ctx context.Context, code string) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&subject).Error; err != nil {
		return models.Subject{}, err
	}

	return subject, nil
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}
