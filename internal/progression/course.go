package progression

import "github.com/noah-isme/gema-progress-api/internal/models"

// Snapshot is one consistent read of a student's records for a course.
type Snapshot struct {
	// Months carry their weeks, and weeks carry their assessments.
	Months []models.Month
	// Responses are keyed by assessment ID.
	Responses map[uint]models.AssessmentResponse
	// Projects are keyed by week ID.
	Projects map[uint]models.ProjectSubmission
}

// AssessmentProgress is the classified state of one assessment.
type AssessmentProgress struct {
	Assessment models.Assessment
	Response   *models.AssessmentResponse
	State      ItemState
}

// WeekProgress is the derived state of one week at its global position.
type WeekProgress struct {
	Week         models.Week
	Position     int
	State        WeekState
	IsLocked     bool
	Assessments  []AssessmentProgress
	Project      *models.ProjectSubmission
	ProjectState ItemState
}

// CourseProgress lists every week in global course order.
type CourseProgress struct {
	Weeks []WeekProgress
}

// Week returns the progress entry for weekID.
func (p CourseProgress) Week(weekID uint) (WeekProgress, bool) {
	for _, week := range p.Weeks {
		if week.Week.ID == weekID {
			return week, true
		}
	}
	return WeekProgress{}, false
}

// Evaluate classifies every item, aggregates each week, and resolves locks.
func Evaluate(snapshot Snapshot) CourseProgress {
	weeks := FlattenWeeksInCourseOrder(snapshot.Months)
	result := CourseProgress{Weeks: make([]WeekProgress, 0, len(weeks))}
	completed := make(map[uint]bool, len(weeks))

	for position, week := range weeks {
		progress := WeekProgress{
			Week:        week,
			Position:    position,
			Assessments: make([]AssessmentProgress, 0, len(week.Assessments)),
		}

		input := WeekInput{IsProject: week.IsProject}
		for _, assessment := range week.Assessments {
			var response *models.AssessmentResponse
			if found, ok := snapshot.Responses[assessment.ID]; ok {
				response = &found
			}
			state := ClassifyAssessment(response)
			input.Assessments = append(input.Assessments, state)
			progress.Assessments = append(progress.Assessments, AssessmentProgress{
				Assessment: assessment,
				Response:   response,
				State:      state,
			})
		}

		if submission, ok := snapshot.Projects[week.ID]; ok {
			progress.Project = &submission
			input.HasProjectSubmission = true
		}
		progress.ProjectState = ClassifyProject(progress.Project)
		input.Project = progress.ProjectState

		progress.State = AggregateWeek(input)
		completed[week.ID] = progress.State.IsCompleted
		result.Weeks = append(result.Weeks, progress)
	}

	locks := ResolveLocks(weeks, func(weekID uint) bool { return completed[weekID] })
	for i := range result.Weeks {
		result.Weeks[i].IsLocked = locks[result.Weeks[i].Week.ID]
	}

	return result
}
