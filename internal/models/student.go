package models

import "time"

// Student represents a learner enrolled in one or more courses.
type Student struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	TotalScore     float64    `gorm:"not null;default:0" json:"total_score"`
	ScoreUpdatedAt *time.Time `json:"score_updated_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
