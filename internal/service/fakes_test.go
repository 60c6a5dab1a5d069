package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/entbridge-go-api/internal/models"
	"github.com/noah-isme/entbridge-go-api/internal/repository"
)

type memorySubjectRepo struct {
	subjects map[string]models.Subject
	nextID   uint
}

func newMemorySubjectRepo() *memorySubjectRepo {
	return &memorySubjectRepo{subjects: make(map[string]models.Subject), nextID: 1}
}

func (m *memorySubjectRepo) List(ctx context.Context) ([]models.Subject, error) {
	results := make([]models.Subject, 0, len(m.subjects))
	for _, subject := range m.subjects {
		results = append(results, subject)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Code < results[j].Code })
	return results, nil
}

func (m *memorySubjectRepo) GetByCode(ctx context.Context, code string) (models.Subject, error) {
	subject, ok := m.subjects[code]
	if !ok {
		return models.Subject{}, gorm.ErrRecordNotFound
	}
	return subject, nil
}

func (m *memorySubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	if _, ok := m.subjects[subject.Code]; ok {
		return gorm.ErrDuplicatedKey
	}
	subject.ID = m.nextID
	m.nextID++
	m.subjects[subject.Code] = *subject
	return nil
}

type memoryQuestionRepo struct {
	questions map[uint]models.Question
	nextID    uint
}

func newMemoryQuestionRepo() *memoryQuestionRepo {
	return &memoryQuestionRepo{questions: make(map[uint]models.Question), nextID: 1}
}

func (m *memoryQuestionRepo) ListBySubject(ctx context.Context, subjectID uint) ([]models.Question, error) {
	results := make([]models.Question, 0)
	for _, question := range m.questions {
		if question.SubjectID == subjectID {
			results = append(results, question)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	question.ID = m.nextID
	m.nextID++
	for i := range question.Options {
		question.Options[i].ID = question.ID*100 + uint(i) + 1
		question.Options[i].QuestionID = question.ID
	}
	m.questions[question.ID] = *question
	return nil
}

type memoryResultRepo struct {
	results map[uint]models.TestResult
	nextID  uint
}

func newMemoryResultRepo() *memoryResultRepo {
	return &memoryResultRepo{results: make(map[uint]models.TestResult), nextID: 1}
}

func (m *memoryResultRepo) Create(ctx context.Context, result *models.TestResult) error {
	result.ID = m.nextID
	m.nextID++
	m.results[result.ID] = *result
	return nil
}

func (m *memoryResultRepo) GetByID(ctx context.Context, id uint) (models.TestResult, error) {
	result, ok := m.results[id]
	if !ok {
		return models.TestResult{}, gorm.ErrRecordNotFound
	}
	return result, nil
}

func (m *memoryResultRepo) ListByUser(ctx context.Context, userID uint) ([]models.TestResult, error) {
	results := make([]models.TestResult, 0)
	for _, result := range m.results {
		if result.UserID == userID {
			results = append(results, result)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryResultRepo) ListAll(ctx context.Context) ([]models.TestResult, error) {
	results := make([]models.TestResult, 0, len(m.results))
	for _, result := range m.results {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryResultRepo) AverageScoreForUser(ctx context.Context, userID uint) (float64, error) {
	sum := 0
	count := 0
	for _, result := range m.results {
		if result.UserID == userID {
			sum += result.Score
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}

type memoryUserRepo struct {
	users map[uint]models.User
}

func newMemoryUserRepo(users ...models.User) *memoryUserRepo {
	repo := &memoryUserRepo{users: make(map[uint]models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (m *memoryUserRepo) List(ctx context.Context) ([]models.User, error) {
	results := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		results = append(results, user)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = *user
	return nil
}

type memoryHomeworkRepo struct {
	homework map[uint]models.Homework
	nextID   uint
}

func newMemoryHomeworkRepo() *memoryHomeworkRepo {
	return &memoryHomeworkRepo{homework: make(map[uint]models.Homework), nextID: 1}
}

func (m *memoryHomeworkRepo) List(ctx context.Context) ([]models.Homework, error) {
	results := make([]models.Homework, 0, len(m.homework))
	for _, hw := range m.homework {
		results = append(results, hw)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryHomeworkRepo) GetByID(ctx context.Context, id uint) (models.Homework, error) {
	hw, ok := m.homework[id]
	if !ok {
		return models.Homework{}, gorm.ErrRecordNotFound
	}
	return hw, nil
}

func (m *memoryHomeworkRepo) Create(ctx context.Context, homework *models.Homework) error {
	homework.ID = m.nextID
	m.nextID++
	homework.CreatedAt = time.Now()
	homework.UpdatedAt = time.Now()
	m.homework[homework.ID] = *homework
	return nil
}

func (m *memoryHomeworkRepo) Update(ctx context.Context, homework *models.Homework) error {
	if _, ok := m.homework[homework.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	homework.UpdatedAt = time.Now()
	m.homework[homework.ID] = *homework
	return nil
}

func (m *memoryHomeworkRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.homework[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.homework, id)
	return nil
}

func (m *memoryHomeworkRepo) addAttachment(homeworkID uint, attachment models.HomeworkAttachment) {
	hw := m.homework[homeworkID]
	hw.Attachments = append(hw.Attachments, attachment)
	m.homework[homeworkID] = hw
}

type memorySubmissionRepo struct {
	submissions map[uint]models.HomeworkSubmission
	nextID      uint
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[uint]models.HomeworkSubmission), nextID: 1}
}

func (m *memorySubmissionRepo) GetByID(ctx context.Context, id uint) (models.HomeworkSubmission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.HomeworkSubmission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memorySubmissionRepo) GetByHomeworkAndUser(ctx context.Context, homeworkID, userID uint) (models.HomeworkSubmission, error) {
	for _, submission := range m.submissions {
		if submission.HomeworkID == homeworkID && submission.UserID == userID {
			return submission, nil
		}
	}
	return models.HomeworkSubmission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) ListByHomework(ctx context.Context, homeworkID uint) ([]models.HomeworkSubmission, error) {
	results := make([]models.HomeworkSubmission, 0)
	for _, submission := range m.submissions {
		if submission.HomeworkID == homeworkID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memorySubmissionRepo) ListByUser(ctx context.Context, userID uint) ([]models.HomeworkSubmission, error) {
	results := make([]models.HomeworkSubmission, 0)
	for _, submission := range m.submissions {
		if submission.UserID == userID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memorySubmissionRepo) Create(ctx context.Context, submission *models.HomeworkSubmission) error {
	for _, existing := range m.submissions {
		if existing.HomeworkID == submission.HomeworkID && existing.UserID == submission.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	submission.ID = m.nextID
	m.nextID++
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) Update(ctx context.Context, submission *models.HomeworkSubmission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) UpdateIfStatus(ctx context.Context, submission *models.HomeworkSubmission, expected models.SubmissionStatus) (bool, error) {
	stored, ok := m.submissions[submission.ID]
	if !ok || stored.Status != expected {
		return false, nil
	}
	stored.Content = submission.Content
	stored.Status = submission.Status
	stored.SubmittedAt = submission.SubmittedAt
	stored.UpdatedAt = submission.UpdatedAt
	m.submissions[submission.ID] = stored
	return true, nil
}

type memoryAttachmentRepo struct {
	homeworkAttachments   map[uint]models.HomeworkAttachment
	submissionAttachments map[uint]models.SubmissionAttachment
	submissions           *memorySubmissionRepo
	homework              *memoryHomeworkRepo
	nextID                uint
}

func newMemoryAttachmentRepo(submissions *memorySubmissionRepo, homework *memoryHomeworkRepo) *memoryAttachmentRepo {
	return &memoryAttachmentRepo{
		homeworkAttachments:   make(map[uint]models.HomeworkAttachment),
		submissionAttachments: make(map[uint]models.SubmissionAttachment),
		submissions:           submissions,
		homework:              homework,
		nextID:                1,
	}
}

func (m *memoryAttachmentRepo) CreateHomeworkAttachments(ctx context.Context, attachments []models.HomeworkAttachment) error {
	for i := range attachments {
		attachments[i].ID = m.nextID
		m.nextID++
		m.homeworkAttachments[attachments[i].ID] = attachments[i]
		if m.homework != nil {
			m.homework.addAttachment(attachments[i].HomeworkID, attachments[i])
		}
	}
	return nil
}

func (m *memoryAttachmentRepo) GetHomeworkAttachment(ctx context.Context, id uint) (models.HomeworkAttachment, error) {
	attachment, ok := m.homeworkAttachments[id]
	if !ok {
		return models.HomeworkAttachment{}, gorm.ErrRecordNotFound
	}
	return attachment, nil
}

func (m *memoryAttachmentRepo) CreateSubmissionAttachments(ctx context.Context, attachments []models.SubmissionAttachment) error {
	for i := range attachments {
		attachments[i].ID = m.nextID
		m.nextID++
		m.submissionAttachments[attachments[i].ID] = attachments[i]
		if m.submissions != nil {
			submission, ok := m.submissions.submissions[attachments[i].SubmissionID]
			if ok {
				submission.Attachments = append(submission.Attachments, attachments[i])
				m.submissions.submissions[submission.ID] = submission
			}
		}
	}
	return nil
}

func (m *memoryAttachmentRepo) GetSubmissionAttachment(ctx context.Context, id uint) (models.SubmissionAttachment, error) {
	attachment, ok := m.submissionAttachments[id]
	if !ok {
		return models.SubmissionAttachment{}, gorm.ErrRecordNotFound
	}
	return attachment, nil
}

type memoryAuditRepo struct {
	entries []models.AuditLog
}

func (m *memoryAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryAuditRepo) List(ctx context.Context, filter repository.AuditLogFilter) ([]models.AuditLog, int64, error) {
	filtered := make([]models.AuditLog, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.ActorID != nil && entry.ActorID != *filter.ActorID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		filtered = append(filtered, entry)
	}

	total := int64(len(filtered))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(filtered) {
			return []models.AuditLog{}, total, nil
		}
		end := start + filter.PageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}

	return filtered, total, nil
}

// fakeUnitOfWork runs the callback against a fixed registry without any
// transaction semantics.
type fakeUnitOfWork struct {
	registry *repository.Registry
}

func (f *fakeUnitOfWork) Do(ctx context.Context, fn func(r *repository.Registry) error) error {
	return fn(f.registry)
}

// recordingNotifier captures published review events.
type recordingNotifier struct {
	events []ReviewEvent
	err    error
}

func (r *recordingNotifier) NotifyReviewed(ctx context.Context, event ReviewEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}
