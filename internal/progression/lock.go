package progression

import (
	"sort"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// FlattenWeeksInCourseOrder returns every week of the course in global order:
// months by Order, then weeks by Order within each month. Ties fall back to ID
// so the result does not depend on how the rows were fetched.
func FlattenWeeksInCourseOrder(months []models.Month) []models.Week {
	ordered := make([]models.Month, len(months))
	copy(ordered, months)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})

	total := 0
	for _, month := range ordered {
		total += len(month.Weeks)
	}

	flattened := make([]models.Week, 0, total)
	for _, month := range ordered {
		weeks := make([]models.Week, len(month.Weeks))
		copy(weeks, month.Weeks)
		sort.SliceStable(weeks, func(i, j int) bool {
			if weeks[i].Order != weeks[j].Order {
				return weeks[i].Order < weeks[j].Order
			}
			return weeks[i].ID < weeks[j].ID
		})
		flattened = append(flattened, weeks...)
	}

	return flattened
}

// ResolveLocks walks the globally ordered weeks once. The first week is never
// locked; every later week is locked iff its immediate predecessor is not
// completed.
func ResolveLocks(weeks []models.Week, completed func(weekID uint) bool) map[uint]bool {
	locks := make(map[uint]bool, len(weeks))
	for i, week := range weeks {
		if i == 0 {
			locks[week.ID] = false
			continue
		}
		locks[week.ID] = !completed(weeks[i-1].ID)
	}
	return locks
}
