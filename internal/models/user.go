package models

import "time"

// User carries the profile fields and the running score aggregate the
// grading engine maintains. Credentials live with the auth provider.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         string    `gorm:"size:32;not null;default:student" json:"role"`
	TotalScore   int       `gorm:"not null;default:0" json:"total_score"`
	AverageScore float64   `gorm:"not null;default:0" json:"average_score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	// RoleAdmin marks users allowed to manage content and review submissions.
	RoleAdmin = "admin"
	// RoleStudent marks regular test takers.
	RoleStudent = "student"
)

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
