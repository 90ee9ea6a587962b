package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/julianstephens/studylog/internal/models"
)

type PracticeSummary struct {
	Count        int
	AvgScore     float64
	AvgAccuracy  float64
	AvgTimeMin   float64
	TotalTimeMin int
}

func SummarizePractice(logs []models.PracticeLog) PracticeSummary {
	s := PracticeSummary{Count: len(logs)}
	if len(logs) == 0 {
		return s
	}
	var score, acc float64
	for _, l := range logs {
		score += float64(l.Score)
		acc += float64(l.Accuracy)
		s.TotalTimeMin += l.TimeTakenMin
	}
	n := float64(len(logs))
	s.AvgScore = Round2(score / n)
	s.AvgAccuracy = Round2(acc / n)
	s.AvgTimeMin = Round2(float64(s.TotalTimeMin) / n)
	return s
}

type PlannerSummary struct {
	Total     int
	ByStatus  map[models.TaskStatus]int
	Overdue   int
	Upcoming  int
	Completed int
}

// CompletionRate is completed over total as a percentage.
func (s PlannerSummary) CompletionRate() float64 {
	return ratioPercent(float64(s.Completed), float64(s.Total))
}

func SummarizePlanner(tasks []models.PlannerTask, today string, horizonDays int) PlannerSummary {
	s := PlannerSummary{
		Total:    len(tasks),
		ByStatus: make(map[models.TaskStatus]int, len(models.TaskStatuses)),
		Overdue:  len(Overdue(tasks, today)),
		Upcoming: len(Upcoming(tasks, today, horizonDays)),
	}
	for _, st := range models.TaskStatuses {
		s.ByStatus[st] = 0
	}
	for _, t := range tasks {
		s.ByStatus[t.Status]++
	}
	s.Completed = s.ByStatus[models.StatusCompleted]
	return s
}

type MockSummary struct {
	Count         int
	AvgPercentage float64
	AvgAccuracyQ  float64
	AvgTimeMin    float64
	BestPercent   float64
	// Strongest and Weakest are the domains with the highest and lowest mean
	// percentage, empty when there are no results.
	Strongest string
	Weakest   string
}

func SummarizeMockTests(scored []ScoredMockTest) MockSummary {
	s := MockSummary{Count: len(scored)}
	if len(scored) == 0 {
		return s
	}
	var pct, acc, tm float64
	for _, r := range scored {
		pct += r.PercentageScore
		acc += r.AccuracyQ
		tm += float64(r.TimeTakenMin)
		s.BestPercent = max(s.BestPercent, r.PercentageScore)
	}
	n := float64(len(scored))
	s.AvgPercentage = Round2(pct / n)
	s.AvgAccuracyQ = Round2(acc / n)
	s.AvgTimeMin = Round2(tm / n)

	domains := MockByDomain(scored)
	s.Strongest = domains[0].Key
	s.Weakest = domains[len(domains)-1].Key
	return s
}

// SubjectScore is the mean per-subject percentage across mock tests.
type SubjectScore struct {
	Subject    string
	Percentage float64
	Count      int
}

// SubjectPercentages expresses each recorded subject score as a percentage
// of the test's max score and averages per subject. Missing and zero scores
// are ignored, and subjects with no data are dropped.
func SubjectPercentages(scored []ScoredMockTest) []SubjectScore {
	type acc struct {
		sum float64
		n   int
	}
	buckets := map[string]*acc{}
	for _, r := range scored {
		for subject, p := range r.SubjectScores() {
			if p == nil {
				continue
			}
			pct := PercentageScore(*p, r.MaxScorePossible)
			if pct <= 0 {
				continue
			}
			a := buckets[subject]
			if a == nil {
				a = &acc{}
				buckets[subject] = a
			}
			a.sum += pct
			a.n++
		}
	}

	out := make([]SubjectScore, 0, len(buckets))
	for subject, a := range buckets {
		out = append(out, SubjectScore{Subject: subject, Percentage: Round2(a.sum / float64(a.n)), Count: a.n})
	}
	slices.SortFunc(out, func(a, b SubjectScore) int {
		if c := cmp.Compare(b.Percentage, a.Percentage); c != 0 {
			return c
		}
		return cmp.Compare(a.Subject, b.Subject)
	})
	return out
}

// Chronological returns the results oldest first, for trend charts.
func Chronological(scored []ScoredMockTest) []ScoredMockTest {
	out := slices.Clone(scored)
	slices.SortStableFunc(out, func(a, b ScoredMockTest) int {
		if c := cmp.Compare(a.AssessmentDate, b.AssessmentDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return out
}

// PracticeQuery narrows a practice table. Zero fields match everything;
// Search is a case-insensitive substring of chapter, problem set or notes.
type PracticeQuery struct {
	Subject string
	From    string
	To      string
	Search  string
}

func FilterPracticeLogs(logs []models.PracticeLog, q PracticeQuery) []models.PracticeLog {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := []models.PracticeLog{}
	for _, l := range logs {
		if q.Subject != "" && l.Subject != q.Subject {
			continue
		}
		if !inRange(l.Date, q.From, q.To) {
			continue
		}
		if needle != "" && !containsAny(needle, l.Chapter, l.ProblemSet, l.Notes) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// TaskQuery narrows a planner table. Search matches topic or notes.
type TaskQuery struct {
	Subject     string
	Status      models.TaskStatus
	From        string
	To          string
	Search      string
	OverdueOnly bool
	Today       string
}

func FilterTasks(tasks []models.PlannerTask, q TaskQuery) []models.PlannerTask {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := []models.PlannerTask{}
	for _, t := range tasks {
		if q.Subject != "" && t.Subject != q.Subject {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if !inRange(t.DueDate, q.From, q.To) {
			continue
		}
		if needle != "" && !containsAny(needle, t.Topic, t.Notes) {
			continue
		}
		if q.OverdueOnly && !IsOverdue(t, q.Today) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func inRange(date, from, to string) bool {
	return (from == "" || date >= from) && (to == "" || date <= to)
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
