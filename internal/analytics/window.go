package analytics

import (
	"slices"

	"github.com/julianstephens/studylog/internal/models"
	"github.com/julianstephens/studylog/internal/utils"
)

// WithinWindow keeps rows whose date lies in [today, today+horizonDays]
// (both ends inclusive) and that are not terminal, ordered by date
// ascending. Dates are YYYY-MM-DD; rows with unparseable dates never match.
func WithinWindow[T any](rows []T, date func(T) string, terminal func(T) bool, today string, horizonDays int) []T {
	end, err := utils.AddDays(today, horizonDays)
	if err != nil {
		return []T{}
	}

	out := []T{}
	for _, r := range rows {
		d := date(r)
		if !utils.ValidateDateFormat(d) || d < today || d > end {
			continue
		}
		if terminal != nil && terminal(r) {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b T) int {
		switch da, db := date(a), date(b); {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	return out
}

// Upcoming returns the open tasks due within the next horizonDays.
func Upcoming(tasks []models.PlannerTask, today string, horizonDays int) []models.PlannerTask {
	return WithinWindow(tasks,
		func(t models.PlannerTask) string { return t.DueDate },
		func(t models.PlannerTask) bool { return t.Status.IsTerminal() },
		today, horizonDays,
	)
}

// IsOverdue reports whether the task is open and due before today.
func IsOverdue(t models.PlannerTask, today string) bool {
	return !t.Status.IsTerminal() && t.DueDate < today
}

// Overdue returns the overdue tasks, preserving order.
func Overdue(tasks []models.PlannerTask, today string) []models.PlannerTask {
	out := []models.PlannerTask{}
	for _, t := range tasks {
		if IsOverdue(t, today) {
			out = append(out, t)
		}
	}
	return out
}
