package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/apperr"
	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/models"
	"github.com/noah-isme/entbridge-go-api/internal/observability"
	"github.com/noah-isme/entbridge-go-api/internal/repository"
	"github.com/noah-isme/entbridge-go-api/internal/storage"
)

const (
	categoryHomework    = "homework"
	categorySubmissions = "submissions"
)

// AttachmentDownload hands attachment bytes and metadata to the caller. The
// caller owns the reader and must close it.
type AttachmentDownload struct {
	Reader       io.ReadSeekCloser
	OriginalName string
	ContentType  string
	Size         int64
}

// HomeworkService owns the homework submission workflow: assignment
// management, the submit/review state machine, and attachment access.
type HomeworkService interface {
	ListForAdmin(ctx context.Context) ([]dto.HomeworkResponse, error)
	ListForStudent(ctx context.Context, userID uint) ([]dto.HomeworkResponse, error)
	Create(ctx context.Context, adminID uint, payload dto.HomeworkCreateRequest) (dto.HomeworkResponse, error)
	Update(ctx context.Context, adminID, homeworkID uint, payload dto.HomeworkUpdateRequest) (dto.HomeworkResponse, error)
	Delete(ctx context.Context, adminID, homeworkID uint) error
	AddAttachments(ctx context.Context, adminID, homeworkID uint, files []*multipart.FileHeader) (dto.HomeworkResponse, error)
	Submit(ctx context.Context, userID, homeworkID uint, content string, files []*multipart.FileHeader) (dto.SubmissionResponse, error)
	Review(ctx context.Context, adminID, submissionID uint, payload dto.ReviewRequest) (dto.SubmissionResponse, error)
	HomeworkAttachment(ctx context.Context, id uint) (AttachmentDownload, error)
	SubmissionAttachment(ctx context.Context, callerID uint, isAdmin bool, id uint) (AttachmentDownload, error)
}

type homeworkService struct {
	homework    repository.HomeworkRepository
	submissions repository.SubmissionRepository
	attachments repository.AttachmentRepository
	subjects    repository.SubjectRepository
	users       repository.UserRepository
	uow         repository.UnitOfWork
	store       storage.Store
	notifier    ReviewNotifier
	validator   *validator.Validate
	logger      zerolog.Logger
	sanitizer   *bluemonday.Policy
	now         func() time.Time
}

// NewHomeworkService constructs the homework workflow service. The notifier
// is optional.
func NewHomeworkService(homework repository.HomeworkRepository, submissions repository.SubmissionRepository, attachments repository.AttachmentRepository, subjects repository.SubjectRepository, users repository.UserRepository, uow repository.UnitOfWork, store storage.Store, notifier ReviewNotifier, validate *validator.Validate, logger zerolog.Logger) HomeworkService {
	return &homeworkService{
		homework:    homework,
		submissions: submissions,
		attachments: attachments,
		subjects:    subjects,
		users:       users,
		uow:         uow,
		store:       store,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "homework_service").Logger(),
		sanitizer:   bluemonday.StrictPolicy(),
		now:         time.Now,
	}
}

// meaningfulText reports whether content still holds text after markup is
// stripped.
func (s *homeworkService) meaningfulText(content string) bool {
	return strings.TrimSpace(s.sanitizer.Sanitize(content)) != ""
}

func (s *homeworkService) ListForAdmin(ctx context.Context) ([]dto.HomeworkResponse, error) {
	homework, err := s.homework.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.HomeworkResponse, 0, len(homework))
	for _, hw := range homework {
		submissions, err := s.submissions.ListByHomework(ctx, hw.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewHomeworkResponse(hw, submissions))
	}

	return responses, nil
}

func (s *homeworkService) ListForStudent(ctx context.Context, userID uint) ([]dto.HomeworkResponse, error) {
	homework, err := s.homework.List(ctx)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byHomework := make(map[uint]models.HomeworkSubmission, len(submissions))
	for _, submission := range submissions {
		if _, ok := byHomework[submission.HomeworkID]; !ok {
			byHomework[submission.HomeworkID] = submission
		}
	}

	responses := make([]dto.HomeworkResponse, 0, len(homework))
	for _, hw := range homework {
		var own []models.HomeworkSubmission
		if submission, ok := byHomework[hw.ID]; ok {
			own = []models.HomeworkSubmission{submission}
		}
		responses = append(responses, dto.NewHomeworkResponse(hw, own))
	}

	return responses, nil
}

func (s *homeworkService) Create(ctx context.Context, adminID uint, payload dto.HomeworkCreateRequest) (dto.HomeworkResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.HomeworkResponse{}, err
	}

	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HomeworkResponse{}, apperr.NotFound("USER_NOT_FOUND", "user not found")
		}
		return dto.HomeworkResponse{}, err
	}

	subject, err := s.subjects.GetByCode(ctx, payload.SubjectCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HomeworkResponse{}, apperr.NotFound("SUBJECT_NOT_FOUND", "subject not found")
		}
		return dto.HomeworkResponse{}, err
	}

	homework := models.Homework{
		Title:       payload.Title,
		Description: payload.Description,
		SubjectID:   subject.ID,
		DueDate:     payload.DueDate,
		AssignedBy:  admin.Name,
	}

	err = s.uow.Do(ctx, func(r *repository.Registry) error {
		if err := r.Homework.Create(ctx, &homework); err != nil {
			return err
		}
		return r.AuditLogs.Create(ctx, &models.AuditLog{
			ActorID:    adminID,
			Action:     "homework.created",
			EntityType: "homework",
			EntityID:   &homework.ID,
			Metadata:   datatypes.JSONMap{"title": homework.Title, "subject": subject.Code},
		})
	})
	if err != nil {
		return dto.HomeworkResponse{}, err
	}

	homework.Subject = subject
	s.logger.Info().Uint("homework_id", homework.ID).Uint("admin_id", adminID).Msg("homework created")

	return dto.NewHomeworkResponse(homework, nil), nil
}

func (s *homeworkService) Update(ctx context.Context, adminID, homeworkID uint, payload dto.HomeworkUpdateRequest) (dto.HomeworkResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.HomeworkResponse{}, err
	}

	homework, err := s.homework.GetByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HomeworkResponse{}, apperr.NotFound("HOMEWORK_NOT_FOUND", "homework not found")
		}
		return dto.HomeworkResponse{}, err
	}

	subject, err := s.subjects.GetByCode(ctx, payload.SubjectCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HomeworkResponse{}, apperr.NotFound("SUBJECT_NOT_FOUND", "subject not found")
		}
		return dto.HomeworkResponse{}, err
	}

	homework.Title = payload.Title
	homework.Description = payload.Description
	homework.SubjectID = subject.ID
	homework.DueDate = payload.DueDate

	err = s.uow.Do(ctx, func(r *repository.Registry) error {
		if err := r.Homework.Update(ctx, &homework); err != nil {
			return err
		}
		return r.AuditLogs.Create(ctx, &models.AuditLog{
			ActorID:    adminID,
			Action:     "homework.updated",
			EntityType: "homework",
			EntityID:   &homework.ID,
			Metadata:   datatypes.JSONMap{"title": homework.Title, "subject": subject.Code},
		})
	})
	if err != nil {
		return dto.HomeworkResponse{}, err
	}

	homework.Subject = subject
	submissions, err := s.submissions.ListByHomework(ctx, homework.ID)
	if err != nil {
		return dto.HomeworkResponse{}, err
	}

	return dto.NewHomeworkResponse(homework, submissions), nil
}

func (s *homeworkService) Delete(ctx context.Context, adminID, homeworkID uint) error {
	return s.uow.Do(ctx, func(r *repository.Registry) error {
		if err := r.Homework.Delete(ctx, homeworkID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("HOMEWORK_NOT_FOUND", "homework not found")
			}
			return err
		}
		return r.AuditLogs.Create(ctx, &models.AuditLog{
			ActorID:    adminID,
			Action:     "homework.deleted",
			EntityType: "homework",
			EntityID:   &homeworkID,
		})
	})
}

func (s *homeworkService) AddAttachments(ctx context.Context, adminID, homeworkID uint, files []*multipart.FileHeader) (dto.HomeworkResponse, error) {
	files = nonEmptyFiles(files)
	if len(files) == 0 {
		return dto.HomeworkResponse{}, apperr.Invalid("FILES_EMPTY", "no files provided")
	}

	homework, err := s.homework.GetByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HomeworkResponse{}, apperr.NotFound("HOMEWORK_NOT_FOUND", "homework not found")
		}
		return dto.HomeworkResponse{}, err
	}

	stored, err := s.storeFiles(ctx, categoryHomework, files)
	if err != nil {
		return dto.HomeworkResponse{}, err
	}

	attachments := make([]models.HomeworkAttachment, 0, len(stored))
	for _, file := range stored {
		attachments = append(attachments, models.HomeworkAttachment{
			HomeworkID:   homework.ID,
			OriginalName: file.OriginalName,
			StorageKey:   file.Key,
			ContentType:  file.ContentType,
			Size:         file.Size,
		})
	}

	err = s.uow.Do(ctx, func(r *repository.Registry) error {
		if err := r.Attachments.CreateHomeworkAttachments(ctx, attachments); err != nil {
			return err
		}
		return r.AuditLogs.Create(ctx, &models.AuditLog{
			ActorID:    adminID,
			Action:     "homework.attachments_added",
			EntityType: "homework",
			EntityID:   &homework.ID,
			Metadata:   datatypes.JSONMap{"count": len(attachments)},
		})
	})
	if err != nil {
		s.removeStored(stored)
		return dto.HomeworkResponse{}, err
	}

	reloaded, err := s.homework.GetByID(ctx, homework.ID)
	if err != nil {
		return dto.HomeworkResponse{}, err
	}
	submissions, err := s.submissions.ListByHomework(ctx, homework.ID)
	if err != nil {
		return dto.HomeworkResponse{}, err
	}

	return dto.NewHomeworkResponse(reloaded, submissions), nil
}

func (s *homeworkService) Submit(ctx context.Context, userID, homeworkID uint, content string, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/entbridge-go-api/internal/service")
	ctx, span := tracer.Start(ctx, "homework.submit")
	span.SetAttributes(
		attribute.Int64("homework.id", int64(homeworkID)),
		attribute.Int64("homework.user_id", int64(userID)),
	)
	defer span.End()

	if _, err := s.homework.GetByID(ctx, homeworkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.NotFound("HOMEWORK_NOT_FOUND", "homework not found")
		}
		return dto.SubmissionResponse{}, err
	}

	existing, err := s.submissions.GetByHomeworkAndUser(ctx, homeworkID, userID)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	// The student may not mutate evidence once it entered review; only a
	// requested revision reopens the submission.
	if exists && !existing.Resubmittable() {
		observability.HomeworkSubmissions().WithLabelValues("locked").Inc()
		return dto.SubmissionResponse{}, apperr.Conflict("SUBMISSION_LOCKED", "submission already under review")
	}

	// Blank text clears the content, so only attachments (new or already on
	// file) can justify a submission without meaningful text.
	files = nonEmptyFiles(files)
	hasText := s.meaningfulText(content)
	hasExistingFiles := exists && len(existing.Attachments) > 0
	if !hasText && len(files) == 0 && !hasExistingFiles {
		observability.HomeworkSubmissions().WithLabelValues("empty").Inc()
		return dto.SubmissionResponse{}, apperr.Invalid("EMPTY_SUBMISSION", "add text or a file")
	}

	// Bytes go to the store first; metadata follows in the transaction. On
	// any transaction failure the stored bytes are removed again so neither
	// side is left orphaned.
	stored, err := s.storeFiles(ctx, categorySubmissions, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attachment_store_failed")
		return dto.SubmissionResponse{}, err
	}

	var newContent *string
	if hasText {
		newContent = &content
	}

	now := s.now().UTC()
	submission := existing
	submission.HomeworkID = homeworkID
	submission.UserID = userID
	submission.Content = newContent
	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = now
	submission.UpdatedAt = now

	err = s.uow.Do(ctx, func(r *repository.Registry) error {
		if !exists {
			fresh := models.HomeworkSubmission{
				HomeworkID:  homeworkID,
				UserID:      userID,
				Content:     newContent,
				Status:      models.SubmissionStatusSubmitted,
				SubmittedAt: now,
				UpdatedAt:   now,
			}
			if err := r.Submissions.Create(ctx, &fresh); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// A concurrent first submission for the same pair won.
					return apperr.Conflict("SUBMISSION_LOCKED", "submission already under review")
				}
				return err
			}
			submission.ID = fresh.ID
		} else {
			updated, err := r.Submissions.UpdateIfStatus(ctx, &submission, models.SubmissionStatusNeedsRevision)
			if err != nil {
				return err
			}
			if !updated {
				return apperr.Conflict("SUBMISSION_LOCKED", "submission already under review")
			}
		}

		attachments := make([]models.SubmissionAttachment, 0, len(stored))
		for _, file := range stored {
			attachments = append(attachments, models.SubmissionAttachment{
				SubmissionID: submission.ID,
				OriginalName: file.OriginalName,
				StorageKey:   file.Key,
				ContentType:  file.ContentType,
				Size:         file.Size,
			})
		}
		return r.Attachments.CreateSubmissionAttachments(ctx, attachments)
	})
	if err != nil {
		s.removeStored(stored)
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit_failed")
		return dto.SubmissionResponse{}, err
	}

	reloaded, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.HomeworkSubmissions().WithLabelValues("accepted").Inc()
	s.logger.Info().
		Uint("submission_id", reloaded.ID).
		Uint("homework_id", homeworkID).
		Uint("user_id", userID).
		Int("new_attachments", len(stored)).
		Msg("homework submitted")

	return dto.NewSubmissionResponse(reloaded), nil
}

func (s *homeworkService) Review(ctx context.Context, adminID, submissionID uint, payload dto.ReviewRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/entbridge-go-api/internal/service")
	ctx, span := tracer.Start(ctx, "homework.review")
	span.SetAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Int64("review.admin_id", int64(adminID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	status, err := models.ParseSubmissionStatus(payload.Status)
	if err != nil {
		return dto.SubmissionResponse{}, apperr.Invalid("STATUS_INVALID", "unknown submission status")
	}

	var submission models.HomeworkSubmission
	// Re-review from any state is allowed; the state change and its audit
	// entry commit together.
	err = s.uow.Do(ctx, func(r *repository.Registry) error {
		submission, err = r.Submissions.GetByID(ctx, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("SUBMISSION_NOT_FOUND", "submission not found")
			}
			return err
		}

		reviewer := adminID
		submission.Status = status
		submission.Feedback = payload.Feedback
		submission.Grade = payload.Grade
		submission.ReviewedBy = &reviewer
		submission.UpdatedAt = s.now().UTC()
		if err := r.Submissions.Update(ctx, &submission); err != nil {
			return err
		}

		metadata := datatypes.JSONMap{"status": string(status)}
		if payload.Grade != nil {
			metadata["grade"] = *payload.Grade
		}
		return r.AuditLogs.Create(ctx, &models.AuditLog{
			ActorID:    adminID,
			Action:     "submission.reviewed",
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata:   metadata,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "review_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionReviews().WithLabelValues(string(status)).Inc()
	if s.notifier != nil {
		event := ReviewEvent{
			SubmissionID: submission.ID,
			HomeworkID:   submission.HomeworkID,
			StudentID:    submission.UserID,
			Status:       string(status),
			Grade:        payload.Grade,
			ReviewedBy:   adminID,
			OccurredAt:   submission.UpdatedAt,
		}
		if err := s.notifier.NotifyReviewed(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("review event publish failed")
		}
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("admin_id", adminID).
		Str("status", string(status)).
		Msg("submission reviewed")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *homeworkService) HomeworkAttachment(ctx context.Context, id uint) (AttachmentDownload, error) {
	attachment, err := s.attachments.GetHomeworkAttachment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttachmentDownload{}, apperr.NotFound("ATTACHMENT_NOT_FOUND", "attachment not found")
		}
		return AttachmentDownload{}, err
	}

	return s.openDownload(attachment.StorageKey, attachment.OriginalName, attachment.ContentType, attachment.Size)
}

func (s *homeworkService) SubmissionAttachment(ctx context.Context, callerID uint, isAdmin bool, id uint) (AttachmentDownload, error) {
	attachment, err := s.attachments.GetSubmissionAttachment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttachmentDownload{}, apperr.NotFound("ATTACHMENT_NOT_FOUND", "attachment not found")
		}
		return AttachmentDownload{}, err
	}

	submission, err := s.submissions.GetByID(ctx, attachment.SubmissionID)
	if err != nil {
		return AttachmentDownload{}, err
	}
	if !CanViewSubmission(callerID, isAdmin, submission) {
		return AttachmentDownload{}, apperr.Forbidden("FORBIDDEN", "no access to this attachment")
	}

	return s.openDownload(attachment.StorageKey, attachment.OriginalName, attachment.ContentType, attachment.Size)
}

func (s *homeworkService) openDownload(key, name, contentType string, size int64) (AttachmentDownload, error) {
	reader, err := s.store.Open(key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return AttachmentDownload{}, apperr.NotFound("FILE_NOT_FOUND", "stored file not found")
		case errors.Is(err, storage.ErrInvalidKey):
			return AttachmentDownload{}, apperr.Invalid("INVALID_PATH", "invalid storage key")
		default:
			return AttachmentDownload{}, err
		}
	}

	return AttachmentDownload{
		Reader:       reader,
		OriginalName: name,
		ContentType:  contentType,
		Size:         size,
	}, nil
}

func (s *homeworkService) storeFiles(ctx context.Context, category string, files []*multipart.FileHeader) ([]storage.StoredFile, error) {
	stored := make([]storage.StoredFile, 0, len(files))
	for _, file := range files {
		reader, err := file.Open()
		if err != nil {
			s.removeStored(stored)
			return nil, apperr.Internal("FILE_SAVE_FAILED", "failed to store file", err)
		}

		result, err := s.store.Store(ctx, category, file.Filename, file.Header.Get("Content-Type"), reader)
		reader.Close()
		if err != nil {
			s.removeStored(stored)
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, apperr.Invalid("FILE_TOO_LARGE", "file exceeds maximum allowed size")
			}
			return nil, apperr.Internal("FILE_SAVE_FAILED", "failed to store file", err)
		}
		stored = append(stored, result)
	}

	return stored, nil
}

func (s *homeworkService) removeStored(stored []storage.StoredFile) {
	for _, file := range stored {
		if err := s.store.Remove(file.Key); err != nil {
			s.logger.Warn().Err(err).Str("key", file.Key).Msg("stored file cleanup failed")
		}
	}
}

func nonEmptyFiles(files []*multipart.FileHeader) []*multipart.FileHeader {
	filtered := make([]*multipart.FileHeader, 0, len(files))
	for _, file := range files {
		if file != nil && file.Size > 0 {
			filtered = append(filtered, file)
		}
	}
	return filtered
}
