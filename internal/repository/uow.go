package repository

import (
	"context"

	"gorm.io/gorm"
)

// Registry bundles the per-entity repositories bound to one *gorm.DB handle,
// which may be a transaction.
type Registry struct {
	Subjects    SubjectRepository
	Questions   QuestionRepository
	Results     TestResultRepository
	Users       UserRepository
	Homework    HomeworkRepository
	Submissions SubmissionRepository
	Attachments AttachmentRepository
	AuditLogs   AuditLogRepository
}

// NewRegistry builds a registry on top of the given handle.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{
		Subjects:    NewSubjectRepository(db),
		Questions:   NewQuestionRepository(db),
		Results:     NewTestResultRepository(db),
		Users:       NewUserRepository(db),
		Homework:    NewHomeworkRepository(db),
		Submissions: NewSubmissionRepository(db),
		Attachments: NewAttachmentRepository(db),
		AuditLogs:   NewAuditLogRepository(db),
	}
}

// UnitOfWork runs a function against a transaction-bound registry. Either
// every write inside the function commits, or none do.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r *Registry) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork wraps a gorm handle into a UnitOfWork.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(r *Registry) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRegistry(tx))
	})
}
