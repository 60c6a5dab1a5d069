package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// HomeworkRepository defines persistence operations for homework assignments.
type HomeworkRepository interface {
	List(ctx context.Context) ([]models.Homework, error)
	GetByID(ctx context.Context, id uint) (models.Homework, error)
	Create(ctx context.Context, homework *models.Homework) error
	Update(ctx context.Context, homework *models.Homework) error
	// Delete removes the homework; submissions and attachments cascade.
	Delete(ctx context.Context, id uint) error
}

type homeworkRepository struct {
	db *gorm.DB
}

// NewHomeworkRepository instantiates the repository.
func NewHomeworkRepository(db *gorm.DB) HomeworkRepository {
	return &homeworkRepository{db: db}
}

func (r *homeworkRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Homework{}).
		Preload("Attachments").
		Preload("Subject")
}

func (r *homeworkRepository) List(ctx context.Context) ([]models.Homework, error) {
	var homework []models.Homework
	if err := r.baseQuery(ctx).Order("due_date ASC").Find(&homework).Error; err != nil {
		return nil, err
	}

	return homework, nil
}

func (r *homeworkRepository) GetByID(ctx context.Context, id uint) (models.Homework, error) {
	var homework models.Homework
	if err := r.baseQuery(ctx).First(&homework, id).Error; err != nil {
		return models.Homework{}, err
	}

	return homework, nil
}

func (r *homeworkRepository) Create(ctx context.Context, homework *models.Homework) error {
	return r.db.WithContext(ctx).Create(homework).Error
}

func (r *homeworkRepository) Update(ctx context.Context, homework *models.Homework) error {
	return r.db.WithContext(ctx).Save(homework).Error
}

func (r *homeworkRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Select("Attachments", "Submissions").Delete(&models.Homework{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
