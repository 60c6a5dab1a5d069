package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/models"
)

// TestResultRepository persists graded test results.
type TestResultRepository interface {
	Create(ctx context.Context, result *models.TestResult) error
	GetByID(ctx context.Context, id uint) (models.TestResult, error)
	ListByUser(ctx context.Context, userID uint) ([]models.TestResult, error)
	ListAll(ctx context.Context) ([]models.TestResult, error)
	// AverageScoreForUser computes the mean of the user's result scores,
	// not weighted by max score. Returns 0 when the user has no results.
	AverageScoreForUser(ctx context.Context, userID uint) (float64, error)
}

type testResultRepository struct {
	db *gorm.DB
}

// NewTestResultRepository instantiates the repository.
func NewTestResultRepository(db *gorm.DB) TestResultRepository {
	return &testResultRepository{db: db}
}

func (r *testResultRepository) Create(ctx context.Context, result *models.TestResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *testResultRepository) GetByID(ctx context.Context, id uint) (models.TestResult, error) {
	var result models.TestResult
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("Subject").
		First(&result, id).Error; err != nil {
		return models.TestResult{}, err
	}

	return result, nil
}

func (r *testResultRepository) ListByUser(ctx context.Context, userID uint) ([]models.TestResult, error) {
	var results []models.TestResult
	if err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *testResultRepository) ListAll(ctx context.Context) ([]models.TestResult, error) {
	var results []models.TestResult
	if err := r.db.WithContext(ctx).
		Preload("Subject").
		Order("completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *testResultRepository) AverageScoreForUser(ctx context.Context, userID uint) (float64, error) {
	var average *float64
	if err := r.db.WithContext(ctx).
		Model(&models.TestResult{}).
		Where("user_id = ?", userID).
		Select("AVG(score)").
		Scan(&average).Error; err != nil {
		return 0, err
	}
	if average == nil {
		return 0, nil
	}

	return *average, nil
}
