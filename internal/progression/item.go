package progression

import "github.com/noah-isme/gema-progress-api/internal/models"

// PassingScore is the inclusive threshold separating pass from fail for both
// assessments and projects.
const PassingScore = 50.0

// ItemState classifies one assessment or project for one student.
type ItemState int

const (
	// ItemNone means nothing has been submitted yet.
	ItemNone ItemState = iota
	// ItemPending means a submission is awaiting review.
	ItemPending
	// ItemCompleted means the item cleared the passing score.
	ItemCompleted
	// ItemRejected means the item was reviewed and did not pass.
	ItemRejected
)

func (s ItemState) String() string {
	switch s {
	case ItemNone:
		return "none"
	case ItemPending:
		return "pending"
	case ItemCompleted:
		return "completed"
	case ItemRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MarshalText renders the state as its lowercase name.
func (s ItemState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func passes(score float64) bool {
	return score >= PassingScore
}

// ClassifyAssessment maps an optional response to an ItemState.
//
// A present score decides the outcome regardless of status. A missing score is
// always pending, including the completed-without-score combination: a mentor
// completion with no score is not trusted as a pass.
func ClassifyAssessment(response *models.AssessmentResponse) ItemState {
	if response == nil {
		return ItemNone
	}

	if response.Score != nil {
		if passes(*response.Score) {
			return ItemCompleted
		}
		return ItemRejected
	}

	return ItemPending
}

// ClassifyProject maps an optional project submission to an ItemState.
func ClassifyProject(submission *models.ProjectSubmission) ItemState {
	if submission == nil {
		return ItemNone
	}

	switch submission.Status {
	case models.ProjectStatusGraded:
		if submission.Score != nil && passes(*submission.Score) {
			return ItemCompleted
		}
		return ItemRejected
	case models.ProjectStatusPending:
		return ItemPending
	default:
		// Unknown statuses have not been through review.
		return ItemPending
	}
}
