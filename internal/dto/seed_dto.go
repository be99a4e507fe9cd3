package dto

import (
	"time"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// SeedCourseRequest imports a full curriculum in one call.
type SeedCourseRequest struct {
	Slug   string      `json:"slug" validate:"required,max=160"`
	Title  string      `json:"title" validate:"required,max=255"`
	Months []SeedMonth `json:"months" validate:"required,min=1,dive"`
}

// SeedMonth is one month of an imported curriculum.
type SeedMonth struct {
	Title string     `json:"title" validate:"required,max=255"`
	Order int        `json:"order" validate:"gte=1"`
	Weeks []SeedWeek `json:"weeks" validate:"dive"`
}

// SeedWeek is one week of an imported curriculum.
type SeedWeek struct {
	Title       string           `json:"title" validate:"required,max=255"`
	Order       int              `json:"order" validate:"gte=1"`
	IsProject   bool             `json:"is_project"`
	Assessments []SeedAssessment `json:"assessments" validate:"dive"`
}

// SeedAssessment is one assessment of an imported week.
type SeedAssessment struct {
	Title            string     `json:"title" validate:"required,max=255"`
	Topic            string     `json:"topic" validate:"max=255"`
	Problem          string     `json:"problem"`
	Deadline         *time.Time `json:"deadline"`
	SubmissionFormat string     `json:"submission_format" validate:"max=64"`
}

// SeedCourseResult reports what an import created.
type SeedCourseResult struct {
	CourseID    uint `json:"course_id"`
	Months      int  `json:"months"`
	Weeks       int  `json:"weeks"`
	Assessments int  `json:"assessments"`
}

// ToModel converts the request into the GORM hierarchy.
func (r SeedCourseRequest) ToModel() models.Course {
	course := models.Course{Slug: r.Slug, Title: r.Title, Months: make([]models.Month, 0, len(r.Months))}
	for _, month := range r.Months {
		m := models.Month{Title: month.Title, Order: month.Order, Weeks: make([]models.Week, 0, len(month.Weeks))}
		for _, week := range month.Weeks {
			w := models.Week{Title: week.Title, Order: week.Order, IsProject: week.IsProject}
			for _, a := range week.Assessments {
				w.Assessments = append(w.Assessments, models.Assessment{
					Title:            a.Title,
					Topic:            a.Topic,
					Problem:          a.Problem,
					Deadline:         a.Deadline,
					SubmissionFormat: a.SubmissionFormat,
				})
			}
			m.Weeks = append(m.Weeks, w)
		}
		course.Months = append(course.Months, m)
	}
	return course
}
