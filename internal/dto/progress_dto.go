package dto

import (
	"sort"
	"time"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/progression"
)

// CourseProgressResponse is a student's derived view of a whole course.
type CourseProgressResponse struct {
	CourseID  uint            `json:"course_id"`
	StudentID uint            `json:"student_id"`
	Summary   CourseSummary   `json:"summary"`
	Months    []MonthProgress `json:"months"`
}

// CourseSummary counts weeks by state.
type CourseSummary struct {
	TotalWeeks     int `json:"total_weeks"`
	CompletedWeeks int `json:"completed_weeks"`
	PendingWeeks   int `json:"pending_weeks"`
	LockedWeeks    int `json:"locked_weeks"`
}

// MonthProgress groups week progress under its month.
type MonthProgress struct {
	ID    uint           `json:"id"`
	Title string         `json:"title"`
	Order int            `json:"order"`
	Weeks []WeekProgress `json:"weeks"`
}

// WeekProgress annotates a week with lock and completion state.
type WeekProgress struct {
	ID                uint             `json:"id"`
	Title             string           `json:"title"`
	Order             int              `json:"order"`
	Position          int              `json:"position"`
	IsProject         bool             `json:"is_project"`
	IsLocked          bool             `json:"is_locked"`
	IsCompleted       bool             `json:"is_completed"`
	IsPending         bool             `json:"is_pending"`
	IsProjectRejected bool             `json:"is_project_rejected"`
	MarkedComplete    bool             `json:"marked_complete"`
	Assessments       []AssessmentView `json:"assessments"`
	Project           *ProjectView     `json:"project,omitempty"`
}

// AssessmentView is an assessment definition plus the student's outcome.
type AssessmentView struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Topic            string     `json:"topic"`
	Problem          string     `json:"problem"`
	Deadline         *time.Time `json:"deadline"`
	SubmissionFormat string     `json:"submission_format"`
	ResponseID       *uint      `json:"response_id"`
	State            string     `json:"state"`
	IsCompleted      bool       `json:"is_completed"`
	IsRejected       bool       `json:"is_rejected"`
	IsPending        bool       `json:"is_pending"`
	Score            *float64   `json:"score"`
	Feedback         string     `json:"feedback"`
	SubmittedAt      *time.Time `json:"submitted_at"`
}

// ProjectView is the student's project outcome for a week.
type ProjectView struct {
	ID            uint                 `json:"id"`
	RepositoryURL string               `json:"repository_url"`
	Status        models.ProjectStatus `json:"status"`
	State         string               `json:"state"`
	IsCompleted   bool                 `json:"is_completed"`
	IsRejected    bool                 `json:"is_rejected"`
	IsPending     bool                 `json:"is_pending"`
	Score         *float64             `json:"score"`
	Review        string               `json:"review"`
	SubmittedAt   *time.Time           `json:"submitted_at"`
}

// NewCourseProgressResponse shapes engine output into the API response. Weeks
// keep their global order and are grouped under their month.
func NewCourseProgressResponse(studentID, courseID uint, months []models.Month, progress progression.CourseProgress, marks map[uint]struct{}) CourseProgressResponse {
	ordered := make([]models.Month, len(months))
	copy(ordered, months)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})

	response := CourseProgressResponse{
		CourseID:  courseID,
		StudentID: studentID,
		Months:    make([]MonthProgress, 0, len(ordered)),
	}

	index := make(map[uint]int, len(ordered))
	for i, month := range ordered {
		index[month.ID] = i
		response.Months = append(response.Months, MonthProgress{
			ID:    month.ID,
			Title: month.Title,
			Order: month.Order,
			Weeks: make([]WeekProgress, 0, len(month.Weeks)),
		})
	}

	for _, week := range progress.Weeks {
		view := newWeekProgress(week, marks)

		response.Summary.TotalWeeks++
		if view.IsCompleted {
			response.Summary.CompletedWeeks++
		}
		if view.IsPending {
			response.Summary.PendingWeeks++
		}
		if view.IsLocked {
			response.Summary.LockedWeeks++
		}

		if i, ok := index[week.Week.MonthID]; ok {
			response.Months[i].Weeks = append(response.Months[i].Weeks, view)
		}
	}

	return response
}

func newWeekProgress(week progression.WeekProgress, marks map[uint]struct{}) WeekProgress {
	_, marked := marks[week.Week.ID]
	view := WeekProgress{
		ID:                week.Week.ID,
		Title:             week.Week.Title,
		Order:             week.Week.Order,
		Position:          week.Position,
		IsProject:         week.Week.IsProject,
		IsLocked:          week.IsLocked,
		IsCompleted:       week.State.IsCompleted,
		IsPending:         week.State.IsPending,
		IsProjectRejected: week.State.IsProjectRejected,
		MarkedComplete:    marked,
		Assessments:       make([]AssessmentView, 0, len(week.Assessments)),
	}

	for _, item := range week.Assessments {
		view.Assessments = append(view.Assessments, newAssessmentView(item))
	}

	if week.Project != nil {
		project := week.Project
		view.Project = &ProjectView{
			ID:            project.ID,
			RepositoryURL: project.RepositoryURL,
			Status:        project.Status,
			State:         week.ProjectState.String(),
			IsCompleted:   week.ProjectState == progression.ItemCompleted,
			IsRejected:    week.ProjectState == progression.ItemRejected,
			IsPending:     week.ProjectState == progression.ItemPending,
			Score:         project.Score,
			Review:        project.Review,
			SubmittedAt:   project.SubmittedAt,
		}
	}

	return view
}

func newAssessmentView(item progression.AssessmentProgress) AssessmentView {
	assessment := item.Assessment
	view := AssessmentView{
		ID:               assessment.ID,
		Title:            assessment.Title,
		Topic:            assessment.Topic,
		Problem:          assessment.Problem,
		Deadline:         assessment.Deadline,
		SubmissionFormat: assessment.SubmissionFormat,
		State:            item.State.String(),
		IsCompleted:      item.State == progression.ItemCompleted,
		IsRejected:       item.State == progression.ItemRejected,
		IsPending:        item.State == progression.ItemPending,
	}

	if item.Response != nil {
		id := item.Response.ID
		view.ResponseID = &id
		view.Score = item.Response.Score
		view.Feedback = item.Response.Feedback
		view.SubmittedAt = item.Response.SubmittedAt
	}

	return view
}
