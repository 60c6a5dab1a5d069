package models

// Subject is a gradable topic with its own question bank and score scale.
type Subject struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Code     string `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Category string `gorm:"size:64" json:"category"`
	// MaxScore normalizes raw correct-answer counts into a scaled score.
	// When nil the question count of the subject is used instead.
	MaxScore *int `json:"max_score"`
}
