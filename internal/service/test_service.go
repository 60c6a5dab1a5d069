package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/apperr"
	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/models"
	"github.com/noah-isme/entbridge-go-api/internal/observability"
	"github.com/noah-isme/entbridge-go-api/internal/repository"
)

// TestService grades submitted answer sets and serves the question bank.
type TestService interface {
	Submit(ctx context.Context, userID uint, subjectCode string, payload dto.TestSubmitRequest) (dto.ResultResponse, error)
	Questions(ctx context.Context, subjectCode string) ([]dto.QuestionResponse, error)
	ResultsForUser(ctx context.Context, userID uint) ([]dto.ResultResponse, error)
}

type testService struct {
	subjects  repository.SubjectRepository
	questions repository.QuestionRepository
	results   repository.TestResultRepository
	uow       repository.UnitOfWork
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTestService constructs the grading service. The cache client is
// optional; without it question listings always hit the database.
func NewTestService(subjects repository.SubjectRepository, questions repository.QuestionRepository, results repository.TestResultRepository, uow repository.UnitOfWork, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) TestService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &testService{
		subjects:  subjects,
		questions: questions,
		results:   results,
		uow:       uow,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "test_service").Logger(),
		now:       time.Now,
	}
}

func questionCacheKey(subjectCode string) string {
	return fmt.Sprintf("questions:v1:%s", subjectCode)
}

func (s *testService) Submit(ctx context.Context, userID uint, subjectCode string, payload dto.TestSubmitRequest) (dto.ResultResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/entbridge-go-api/internal/service")
	ctx, span := tracer.Start(ctx, "test.submit")
	span.SetAttributes(
		attribute.Int64("test.user_id", int64(userID)),
		attribute.String("test.subject_code", subjectCode),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		observability.GradingLatency().Observe(time.Since(start).Seconds())
	}()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ResultResponse{}, err
	}

	subject, err := s.subjects.GetByCode(ctx, subjectCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, apperr.NotFound("SUBJECT_NOT_FOUND", "subject not found")
		}
		return dto.ResultResponse{}, err
	}

	questions, err := s.questions.ListBySubject(ctx, subject.ID)
	if err != nil {
		return dto.ResultResponse{}, err
	}
	if len(questions) == 0 {
		return dto.ResultResponse{}, apperr.Invalid("NO_QUESTIONS", "subject has no questions")
	}

	// Answers referencing unknown question ids are dropped silently to
	// tolerate client-side drift against a changed question bank.
	selected := make(map[uint]*uint, len(payload.Answers))
	for _, answer := range payload.Answers {
		selected[answer.QuestionID] = answer.SelectedOptionID
	}

	correctAnswers := 0
	details := make([]models.TestResultDetail, 0, len(questions))
	for _, question := range questions {
		correctOptionID := question.CorrectOptionID()
		selectedOptionID := selected[question.ID]
		correct := selectedOptionID != nil && correctOptionID != nil && *selectedOptionID == *correctOptionID
		if correct {
			correctAnswers++
		}
		details = append(details, models.TestResultDetail{
			QuestionID:       question.ID,
			SelectedOptionID: selectedOptionID,
			CorrectOptionID:  correctOptionID,
			Correct:          correct,
		})
	}

	totalQuestions := len(questions)
	maxScore := totalQuestions
	if subject.MaxScore != nil && *subject.MaxScore > 0 {
		maxScore = *subject.MaxScore
	}
	score := int(math.Round(float64(correctAnswers) * float64(maxScore) / float64(totalQuestions)))

	result := models.TestResult{
		UserID:         userID,
		SubjectID:      subject.ID,
		CorrectAnswers: correctAnswers,
		TotalQuestions: totalQuestions,
		Score:          score,
		MaxScore:       maxScore,
		CompletedAt:    s.now(),
		Details:        details,
	}

	// The result row and the user aggregate commit together or not at all.
	err = s.uow.Do(ctx, func(r *repository.Registry) error {
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("USER_NOT_FOUND", "user not found")
			}
			return err
		}

		if err := r.Results.Create(ctx, &result); err != nil {
			return err
		}

		average, err := r.Results.AverageScoreForUser(ctx, userID)
		if err != nil {
			return err
		}

		user.TotalScore += score
		user.AverageScore = average
		return r.Users.Update(ctx, &user)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading_failed")
		return dto.ResultResponse{}, err
	}

	result.Subject = subject
	observability.TestsGraded().WithLabelValues(subject.Code).Inc()
	span.SetAttributes(
		attribute.Int("test.correct_answers", correctAnswers),
		attribute.Int("test.score", score),
	)
	s.logger.Info().
		Uint("result_id", result.ID).
		Uint("user_id", userID).
		Str("subject", subject.Code).
		Int("score", score).
		Msg("test graded")

	return dto.NewResultResponse(result), nil
}

func (s *testService) Questions(ctx context.Context, subjectCode string) ([]dto.QuestionResponse, error) {
	cacheKey := questionCacheKey(subjectCode)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var responses []dto.QuestionResponse
			if err := json.Unmarshal([]byte(cached), &responses); err == nil {
				return responses, nil
			}
		}
	}

	subject, err := s.subjects.GetByCode(ctx, subjectCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("SUBJECT_NOT_FOUND", "subject not found")
		}
		return nil, err
	}

	questions, err := s.questions.ListBySubject(ctx, subject.ID)
	if err != nil {
		return nil, err
	}

	responses := dto.NewQuestionResponseSlice(questions)

	if s.cache != nil {
		if encoded, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Str("subject", subjectCode).Msg("question cache write failed")
			}
		}
	}

	return responses, nil
}

func (s *testService) ResultsForUser(ctx context.Context, userID uint) ([]dto.ResultResponse, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewResultResponseSlice(results), nil
}
