package models

import "time"

// Course is the root of a curriculum: an ordered set of months.
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"size:160;uniqueIndex" json:"slug"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Months    []Month   `json:"months,omitempty"`
}

// Month groups weeks inside a course. Order is unique per course.
type Month struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_month_course_order" json:"course_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Order     int       `gorm:"column:sort_order;not null;uniqueIndex:idx_month_course_order" json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Weeks     []Week    `json:"weeks,omitempty"`
}

// Week is the atomic curriculum unit. Order is unique within its month.
type Week struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	MonthID     uint         `gorm:"not null;uniqueIndex:idx_week_month_order" json:"month_id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Order       int          `gorm:"column:sort_order;not null;uniqueIndex:idx_week_month_order" json:"order"`
	IsProject   bool         `gorm:"not null;default:false" json:"is_project"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Assessments []Assessment `json:"assessments,omitempty"`
}

// Assessment is a gradable assignment inside a week.
type Assessment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	WeekID           uint       `gorm:"not null;index" json:"week_id"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Topic            string     `gorm:"size:255" json:"topic"`
	Problem          string     `gorm:"type:text" json:"problem"`
	Deadline         *time.Time `json:"deadline"`
	SubmissionFormat string     `gorm:"size:64" json:"submission_format"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
