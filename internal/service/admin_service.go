package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/apperr"
	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/models"
	"github.com/noah-isme/entbridge-go-api/internal/repository"
)

// AdminService covers content authoring and platform-wide reporting.
type AdminService interface {
	CreateSubject(ctx context.Context, adminID uint, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error)
	CreateQuestion(ctx context.Context, adminID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserSummaryResponse, error)
	ListResults(ctx context.Context) ([]dto.ResultResponse, error)
}

type adminService struct {
	subjects  repository.SubjectRepository
	questions repository.QuestionRepository
	results   repository.TestResultRepository
	users     repository.UserRepository
	uow       repository.UnitOfWork
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminService constructs the admin service. The cache client is optional
// and only used to drop stale question listings after authoring changes.
func NewAdminService(subjects repository.SubjectRepository, questions repository.QuestionRepository, results repository.TestResultRepository, users repository.UserRepository, uow repository.UnitOfWork, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger) AdminService {
	return &adminService{
		subjects:  subjects,
		questions: questions,
		results:   results,
		users:     users,
		uow:       uow,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) CreateSubject(ctx context.Context, adminID uint, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{
		Code:     payload.Code,
		Title:    payload.Title,
		Category: payload.Category,
		MaxScore: payload.MaxScore,
	}

	err := s.uow.Do(ctx, func(r *repository.Registry) error {
		if err := r.Subjects.Create(ctx, &subject); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("SUBJECT_EXISTS", "subject code already in use")
			}
			return err
		}
		return r.AuditLogs.Create(ctx, &models.AuditLog{
			ActorID:    adminID,
			Action:     "subject.created",
			EntityType: "subject",
			EntityID:   &subject.ID,
			Metadata:   datatypes.JSONMap{"code": subject.Code},
		})
	})
	if err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Str("code", subject.Code).Uint("admin_id", adminID).Msg("subject created")

	return dto.NewSubjectResponse(subject), nil
}

func (s *adminService) ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, dto.NewSubjectResponse(subject))
	}

	return responses, nil
}

func (s *adminService) CreateQuestion(ctx context.Context, adminID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	// Exactly one correct option keeps the grading outcome unambiguous.
	correct := 0
	for _, option := range payload.Options {
		if option.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return dto.QuestionResponse{}, apperr.Invalid("NO_CORRECT_OPTION", "one option must be marked correct")
	}
	if correct > 1 {
		return dto.QuestionResponse{}, apperr.Invalid("MULTIPLE_CORRECT_OPTIONS", "only one option may be marked correct")
	}

	subject, err := s.subjects.GetByCode(ctx, payload.SubjectCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, apperr.NotFound("SUBJECT_NOT_FOUND", "subject not found")
		}
		return dto.QuestionResponse{}, err
	}

	points := payload.Points
	if points <= 0 {
		points = 1
	}

	creator := adminID
	question := models.Question{
		SubjectID:   subject.ID,
		Text:        payload.Text,
		Points:      points,
		Explanation: payload.Explanation,
		CreatedBy:   &creator,
		Options:     make([]models.Option, 0, len(payload.Options)),
	}
	for _, option := range payload.Options {
		question.Options = append(question.Options, models.Option{
			Text:      option.Text,
			IsCorrect: option.IsCorrect,
		})
	}

	err = s.uow.Do(ctx, func(r *repository.Registry) error {
		if err := r.Questions.Create(ctx, &question); err != nil {
			return err
		}
		return r.AuditLogs.Create(ctx, &models.AuditLog{
			ActorID:    adminID,
			Action:     "question.created",
			EntityType: "question",
			EntityID:   &question.ID,
			Metadata:   datatypes.JSONMap{"subject": subject.Code},
		})
	})
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	s.invalidateQuestionCache(ctx, subject.Code)
	s.logger.Info().Uint("question_id", question.ID).Str("subject", subject.Code).Msg("question created")

	return dto.NewQuestionResponse(question), nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]dto.UserSummaryResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserSummaryResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserSummaryResponse(user))
	}

	return responses, nil
}

func (s *adminService) ListResults(ctx context.Context) ([]dto.ResultResponse, error) {
	results, err := s.results.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, dto.NewResultResponse(result))
	}

	return responses, nil
}

// invalidateQuestionCache drops the cached question listing for a subject so
// students see new questions immediately. Cache failures only log.
func (s *adminService) invalidateQuestionCache(ctx context.Context, subjectCode string) {
	if s.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.cache.Del(ctx, questionCacheKey(subjectCode)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("subject", subjectCode).Msg("question cache invalidation failed")
	}
}
