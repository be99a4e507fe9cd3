package progression

// WeekInput carries the classified items of a single week.
type WeekInput struct {
	IsProject   bool
	Assessments []ItemState
	// HasProjectSubmission is true when the student has a project record for
	// the week, even if the week is not flagged as a project week.
	HasProjectSubmission bool
	Project              ItemState
}

// WeekState is the aggregate gate state of a week.
type WeekState struct {
	IsCompleted       bool `json:"is_completed"`
	IsPending         bool `json:"is_pending"`
	IsProjectRejected bool `json:"is_project_rejected"`
}

// AggregateWeek combines item states into the week's state. A week passes only
// when every assessment and, if present, the project are completed. A week with
// nothing gradable is read-only content and is always completed.
func AggregateWeek(in WeekInput) WeekState {
	hasAssessments := len(in.Assessments) > 0
	hasProject := in.IsProject || in.HasProjectSubmission

	project := ItemNone
	if hasProject {
		project = in.Project
	}

	pending := project == ItemPending
	allAssessmentsPassed := true
	for _, state := range in.Assessments {
		if state == ItemPending {
			pending = true
		}
		if state != ItemCompleted {
			allAssessmentsPassed = false
		}
	}

	completed := true
	if hasAssessments || hasProject {
		projectPassed := !hasProject || project == ItemCompleted
		completed = allAssessmentsPassed && projectPassed
	}

	return WeekState{
		IsCompleted:       completed,
		IsPending:         pending,
		IsProjectRejected: project == ItemRejected,
	}
}
