package progression

import "time"

// LatePenalty is the flat deduction for a submission made after the deadline.
const LatePenalty = 2.0

// ApplyLatePenalty returns the score to store for a graded assessment response.
// Submissions without a deadline or timestamp, or made at or before the
// deadline, keep the raw score. Late ones lose LatePenalty points, floored at 0.
func ApplyLatePenalty(deadline, submittedAt *time.Time, rawScore float64) float64 {
	if !IsLate(deadline, submittedAt) {
		return rawScore
	}
	final := rawScore - LatePenalty
	if final < 0 {
		return 0
	}
	return final
}

// IsLate reports whether submittedAt is strictly after deadline.
func IsLate(deadline, submittedAt *time.Time) bool {
	if deadline == nil || submittedAt == nil {
		return false
	}
	return submittedAt.After(*deadline)
}
