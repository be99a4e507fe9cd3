package dto

import (
	"time"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// SubmitAssessmentRequest carries a student's answer to an assessment.
type SubmitAssessmentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=20000"`
}

// SubmitProjectRequest carries a student's project deliverable.
type SubmitProjectRequest struct {
	RepositoryURL string `json:"repository_url" validate:"required,url,max=512"`
}

// AssessmentResponseView is returned after a student submits an assessment.
type AssessmentResponseView struct {
	ID           uint                    `json:"id"`
	AssessmentID uint                    `json:"assessment_id"`
	StudentID    uint                    `json:"student_id"`
	Content      string                  `json:"content"`
	Status       models.AssessmentStatus `json:"status"`
	Score        *float64                `json:"score"`
	Feedback     string                  `json:"feedback"`
	SubmittedAt  *time.Time              `json:"submitted_at"`
	Late         bool                    `json:"late"`
}

// NewAssessmentResponseView converts a response model into a DTO.
func NewAssessmentResponseView(model models.AssessmentResponse, late bool) AssessmentResponseView {
	return AssessmentResponseView{
		ID:           model.ID,
		AssessmentID: model.AssessmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		Status:       model.Status,
		Score:        model.Score,
		Feedback:     model.Feedback,
		SubmittedAt:  model.SubmittedAt,
		Late:         late,
	}
}

// ProjectSubmissionView is returned after a student submits a project.
type ProjectSubmissionView struct {
	ID            uint                 `json:"id"`
	CourseID      uint                 `json:"course_id"`
	WeekID        uint                 `json:"week_id"`
	StudentID     uint                 `json:"student_id"`
	RepositoryURL string               `json:"repository_url"`
	Status        models.ProjectStatus `json:"status"`
	Score         *float64             `json:"score"`
	Review        string               `json:"review"`
	SubmittedAt   *time.Time           `json:"submitted_at"`
}

// NewProjectSubmissionView converts a project model into a DTO.
func NewProjectSubmissionView(model models.ProjectSubmission) ProjectSubmissionView {
	return ProjectSubmissionView{
		ID:            model.ID,
		CourseID:      model.CourseID,
		WeekID:        model.WeekID,
		StudentID:     model.StudentID,
		RepositoryURL: model.RepositoryURL,
		Status:        model.Status,
		Score:         model.Score,
		Review:        model.Review,
		SubmittedAt:   model.SubmittedAt,
	}
}

// WeekCompletionResponse confirms an explicit completion mark.
type WeekCompletionResponse struct {
	StudentID   uint      `json:"student_id"`
	WeekID      uint      `json:"week_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// StudentStatsResponse summarises a student's score rollup.
type StudentStatsResponse struct {
	StudentID         uint       `json:"student_id"`
	Name              string     `json:"name"`
	TotalScore        float64    `json:"total_score"`
	ScoreUpdatedAt    *time.Time `json:"score_updated_at"`
	AssessmentsGraded int64      `json:"assessments_graded"`
	AssessmentsPassed int64      `json:"assessments_passed"`
	ProjectsGraded    int64      `json:"projects_graded"`
	ProjectsPassed    int64      `json:"projects_passed"`
	AwaitingReview    int64      `json:"awaiting_review"`
}
