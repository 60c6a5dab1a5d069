package models

// Question belongs to a subject and carries an ordered set of options.
type Question struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	SubjectID   uint     `gorm:"not null;index" json:"subject_id"`
	Text        string   `gorm:"type:text;not null" json:"text"`
	Points      int      `gorm:"not null;default:1" json:"points"`
	Explanation string   `gorm:"type:text" json:"explanation"`
	CreatedBy   *uint    `json:"created_by"`
	Options     []Option `gorm:"constraint:OnDelete:CASCADE" json:"options"`
	Subject     Subject  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Option is a single answer choice for a question.
type Option struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"-"`
}

// CorrectOptionID returns the id of the first option flagged correct, or nil
// when the question data is malformed. Malformed data never blocks grading,
// it just yields no correct answer for the question.
func (q Question) CorrectOptionID() *uint {
	for _, option := range q.Options {
		if option.IsCorrect {
			id := option.ID
			return &id
		}
	}
	return nil
}
