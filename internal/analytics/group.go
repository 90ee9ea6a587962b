package analytics

import (
	"cmp"
	"slices"

	"github.com/julianstephens/studylog/internal/models"
)

// GroupSummary is one row of a group-by aggregation.
type GroupSummary struct {
	Key   string
	Count int
	// Mean of the primary value.
	Mean float64
	// SecondaryMean is the mean of the second value, 0 when none was requested.
	SecondaryMean float64
}

type SortBy int

const (
	SortByKey SortBy = iota
	SortByCount
	SortByMean
	SortBySecondary
)

// GroupBy buckets rows by key and averages value (and secondary, if non-nil).
// Groups come back in key order; use SortGroups to reorder.
func GroupBy[T any](rows []T, key func(T) string, value func(T) float64, secondary func(T) float64) []GroupSummary {
	type acc struct {
		n         int
		sum, sum2 float64
	}
	buckets := map[string]*acc{}
	for _, r := range rows {
		k := key(r)
		a := buckets[k]
		if a == nil {
			a = &acc{}
			buckets[k] = a
		}
		a.n++
		a.sum += value(r)
		if secondary != nil {
			a.sum2 += secondary(r)
		}
	}

	out := make([]GroupSummary, 0, len(buckets))
	for k, a := range buckets {
		g := GroupSummary{Key: k, Count: a.n, Mean: Round2(a.sum / float64(a.n))}
		if secondary != nil {
			g.SecondaryMean = Round2(a.sum2 / float64(a.n))
		}
		out = append(out, g)
	}
	SortGroups(out, SortByKey, false)
	return out
}

// SortGroups orders groups in place. Ties fall back to the key so the
// result never depends on map iteration order.
func SortGroups(groups []GroupSummary, by SortBy, descending bool) {
	slices.SortStableFunc(groups, func(a, b GroupSummary) int {
		var c int
		switch by {
		case SortByCount:
			c = cmp.Compare(a.Count, b.Count)
		case SortByMean:
			c = cmp.Compare(a.Mean, b.Mean)
		case SortBySecondary:
			c = cmp.Compare(a.SecondaryMean, b.SecondaryMean)
		}
		if descending {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.Key, b.Key)
		}
		return c
	})
}

// PracticeBySubject averages score (Mean) and accuracy (SecondaryMean) per
// subject, best accuracy first.
func PracticeBySubject(logs []models.PracticeLog) []GroupSummary {
	g := GroupBy(logs,
		func(l models.PracticeLog) string { return l.Subject },
		func(l models.PracticeLog) float64 { return float64(l.Score) },
		func(l models.PracticeLog) float64 { return float64(l.Accuracy) },
	)
	SortGroups(g, SortBySecondary, true)
	return g
}

// MockByDomain averages percentage score (Mean) and question accuracy
// (SecondaryMean) per knowledge domain, strongest first.
func MockByDomain(scored []ScoredMockTest) []GroupSummary {
	g := GroupBy(scored,
		func(s ScoredMockTest) string { return s.Domain },
		func(s ScoredMockTest) float64 { return s.PercentageScore },
		func(s ScoredMockTest) float64 { return s.AccuracyQ },
	)
	SortGroups(g, SortByMean, true)
	return g
}

// MockByExamType averages percentage score and percentile per exam type.
func MockByExamType(scored []ScoredMockTest) []GroupSummary {
	g := GroupBy(scored,
		func(s ScoredMockTest) string { return string(s.ExamType) },
		func(s ScoredMockTest) float64 { return s.PercentageScore },
		func(s ScoredMockTest) float64 { return s.Percentile },
	)
	SortGroups(g, SortByMean, true)
	return g
}

// PracticeTrend averages score (Mean) and accuracy (SecondaryMean) per
// practice date, oldest first.
func PracticeTrend(logs []models.PracticeLog) []GroupSummary {
	return GroupBy(logs,
		func(l models.PracticeLog) string { return l.Date },
		func(l models.PracticeLog) float64 { return float64(l.Score) },
		func(l models.PracticeLog) float64 { return float64(l.Accuracy) },
	)
}

// TasksBySubject counts tasks per subject. Mean is the completed share as a
// percentage.
func TasksBySubject(tasks []models.PlannerTask) []GroupSummary {
	g := GroupBy(tasks,
		func(t models.PlannerTask) string { return t.Subject },
		func(t models.PlannerTask) float64 {
			if t.Status == models.StatusCompleted {
				return 100
			}
			return 0
		},
		nil,
	)
	SortGroups(g, SortByCount, true)
	return g
}
