package models

import "time"

// TestResult is the immutable outcome of one graded test submission.
type TestResult struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	UserID         uint               `gorm:"not null;index" json:"user_id"`
	SubjectID      uint               `gorm:"not null;index" json:"subject_id"`
	CorrectAnswers int                `gorm:"not null" json:"correct_answers"`
	TotalQuestions int                `gorm:"not null" json:"total_questions"`
	Score          int                `gorm:"not null" json:"score"`
	MaxScore       int                `gorm:"not null" json:"max_score"`
	CompletedAt    time.Time          `gorm:"autoCreateTime" json:"completed_at"`
	Details        []TestResultDetail `gorm:"constraint:OnDelete:CASCADE" json:"details"`
	Subject        Subject            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TestResultDetail records the per-question evaluation kept for audit and
// explanation purposes: what the student picked against what was correct.
type TestResultDetail struct {
	ID               uint  `gorm:"primaryKey" json:"id"`
	TestResultID     uint  `gorm:"not null;index" json:"test_result_id"`
	QuestionID       uint  `gorm:"not null" json:"question_id"`
	SelectedOptionID *uint `json:"selected_option_id"`
	CorrectOptionID  *uint `json:"correct_option_id"`
	Correct          bool  `gorm:"not null" json:"correct"`
}
