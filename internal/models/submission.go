package models

import "time"

// AssessmentStatus is the mentor-controlled lifecycle of an assessment response.
type AssessmentStatus string

const (
	// AssessmentStatusPending marks a response awaiting review.
	AssessmentStatusPending AssessmentStatus = "pending"
	// AssessmentStatusCompleted marks a response a mentor has reviewed.
	AssessmentStatusCompleted AssessmentStatus = "completed"
)

// ProjectStatus is the lifecycle of a project submission.
type ProjectStatus string

const (
	// ProjectStatusPending marks a project awaiting review.
	ProjectStatusPending ProjectStatus = "pending"
	// ProjectStatusGraded marks a project a mentor has scored.
	ProjectStatusGraded ProjectStatus = "graded"
)

// AssessmentResponse is a student's answer to one assessment.
type AssessmentResponse struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AssessmentID uint             `gorm:"not null;uniqueIndex:idx_response_assessment_student" json:"assessment_id"`
	StudentID    uint             `gorm:"not null;uniqueIndex:idx_response_assessment_student;index" json:"student_id"`
	Content      string           `gorm:"type:text" json:"content"`
	SubmittedAt  *time.Time       `json:"submitted_at"`
	Status       AssessmentStatus `gorm:"size:32;not null;default:pending" json:"status"`
	Score        *float64         `json:"score"`
	Feedback     string           `gorm:"type:text" json:"feedback"`
	GradedBy     *uint            `json:"graded_by"`
	GradedAt     *time.Time       `json:"graded_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Assessment   Assessment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ProjectSubmission is a student's deliverable for a project week.
type ProjectSubmission struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	CourseID      uint          `gorm:"not null;index" json:"course_id"`
	WeekID        uint          `gorm:"not null;uniqueIndex:idx_project_week_student" json:"week_id"`
	StudentID     uint          `gorm:"not null;uniqueIndex:idx_project_week_student;index" json:"student_id"`
	RepositoryURL string        `gorm:"size:512" json:"repository_url"`
	SubmittedAt   *time.Time    `json:"submitted_at"`
	Status        ProjectStatus `gorm:"size:32;not null;default:pending" json:"status"`
	Score         *float64      `json:"score"`
	Review        string        `gorm:"type:text" json:"review"`
	GradedBy      *uint         `json:"graded_by"`
	GradedAt      *time.Time    `json:"graded_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsGraded reports whether the project has been reviewed.
func (p ProjectSubmission) IsGraded() bool {
	return p.Status == ProjectStatusGraded
}

// WeekCompletion is an explicit completion mark recorded outside derived progress.
type WeekCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_completion_student_week" json:"student_id"`
	WeekID      uint      `gorm:"not null;uniqueIndex:idx_completion_student_week" json:"week_id"`
	CompletedAt time.Time `json:"completed_at"`
}
