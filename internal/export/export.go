// Package export writes the study tables as CSV and reads edited mock test
// sheets back for bulk updates.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/julianstephens/studylog/internal/models"
)

// Filename builds "<prefix>_<day>.csv", e.g. "mock_tests_2026-03-10.csv".
func Filename(prefix, day string) string {
	return fmt.Sprintf("%s_%s.csv", prefix, day)
}

// column renders one CSV cell from a row.
type column[T any] struct {
	name string
	get  func(T) string
}

func writeTable[T any](w io.Writer, cols []column[T], rows []T) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			record[i] = c.get(r)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func itoa(v int) string { return strconv.Itoa(v) }
func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
func id64(v int64) string { return strconv.FormatInt(v, 10) }
func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return ftoa(*v)
}

var practiceColumns = []column[models.PracticeLog]{
	{"ID", func(l models.PracticeLog) string { return id64(l.ID) }},
	{"Date", func(l models.PracticeLog) string { return l.Date }},
	{"Subject", func(l models.PracticeLog) string { return l.Subject }},
	{"Chapter", func(l models.PracticeLog) string { return l.Chapter }},
	{"DPP_Number", func(l models.PracticeLog) string { return l.ProblemSet }},
	{"Score", func(l models.PracticeLog) string { return itoa(l.Score) }},
	{"Accuracy", func(l models.PracticeLog) string { return itoa(l.Accuracy) }},
	{"Time_Taken", func(l models.PracticeLog) string { return itoa(l.TimeTakenMin) }},
	{"Notes", func(l models.PracticeLog) string { return l.Notes }},
}

var taskColumns = []column[models.PlannerTask]{
	{"ID", func(t models.PlannerTask) string { return id64(t.ID) }},
	{"Subject", func(t models.PlannerTask) string { return t.Subject }},
	{"Topic", func(t models.PlannerTask) string { return t.Topic }},
	{"DueDate", func(t models.PlannerTask) string { return t.DueDate }},
	{"Priority", func(t models.PlannerTask) string { return string(t.Priority) }},
	{"Status", func(t models.PlannerTask) string { return string(t.Status) }},
	{"Notes", func(t models.PlannerTask) string { return t.Notes }},
	{"CreatedDate", func(t models.PlannerTask) string { return t.CreatedDate }},
}

var mockColumns = []column[models.MockTestResult]{
	{"id", func(m models.MockTestResult) string { return m.ID }},
	{"user_id", func(m models.MockTestResult) string { return id64(m.UserID) }},
	{"assessment_date", func(m models.MockTestResult) string { return m.AssessmentDate }},
	{"exam_type", func(m models.MockTestResult) string { return string(m.ExamType) }},
	{"test_name", func(m models.MockTestResult) string { return m.TestName }},
	{"domain", func(m models.MockTestResult) string { return m.Domain }},
	{"total_questions", func(m models.MockTestResult) string { return itoa(m.TotalQuestions) }},
	{"attempted", func(m models.MockTestResult) string { return itoa(m.Attempted) }},
	{"correct", func(m models.MockTestResult) string { return itoa(m.Correct) }},
	{"wrong", func(m models.MockTestResult) string { return itoa(m.Wrong) }},
	{"physics_score", func(m models.MockTestResult) string { return optional(m.PhysicsScore) }},
	{"chemistry_score", func(m models.MockTestResult) string { return optional(m.ChemistryScore) }},
	{"maths_score", func(m models.MockTestResult) string { return optional(m.MathsScore) }},
	{"biology_score", func(m models.MockTestResult) string { return optional(m.BiologyScore) }},
	{"total_score", func(m models.MockTestResult) string { return ftoa(m.TotalScore) }},
	{"max_score_possible", func(m models.MockTestResult) string { return ftoa(m.MaxScorePossible) }},
	{"percentile", func(m models.MockTestResult) string { return ftoa(m.Percentile) }},
	{"rank", func(m models.MockTestResult) string { return itoa(m.Rank) }},
	{"target_score", func(m models.MockTestResult) string { return ftoa(m.TargetScore) }},
	{"difficulty", func(m models.MockTestResult) string { return string(m.Difficulty) }},
	{"time_taken_minutes", func(m models.MockTestResult) string { return itoa(m.TimeTakenMin) }},
	{"feedback", func(m models.MockTestResult) string { return m.Feedback }},
	{"neural_signature", func(m models.MockTestResult) string { return m.NeuralSignature }},
	{"timestamp", func(m models.MockTestResult) string { return m.Timestamp }},
}

func WritePracticeLogs(w io.Writer, logs []models.PracticeLog) error {
	return writeTable(w, practiceColumns, logs)
}

func WritePlannerTasks(w io.Writer, tasks []models.PlannerTask) error {
	return writeTable(w, taskColumns, tasks)
}

func WriteMockTests(w io.Writer, results []models.MockTestResult) error {
	return writeTable(w, mockColumns, results)
}

var requiredMockColumns = []string{"id", "assessment_date", "test_name", "domain", "total_score"}

// ReadMockTests parses a sheet written by WriteMockTests, possibly edited.
// Header names are matched case-insensitively and unknown columns are
// ignored. Rows with a blank id are new results. Blank numeric cells read as
// zero, except blank subject scores which stay unset and a blank max score
// which falls back to the exam type default.
func ReadMockTests(r io.Reader) ([]models.MockTestResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err == io.EOF {
		return []models.MockTestResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range requiredMockColumns {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("missing column %q", k)
		}
	}

	out := []models.MockTestResult{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := sheetRow{idx: idx, rec: rec}
		m := row.parse()
		if row.err != nil {
			return nil, fmt.Errorf("line %d: %w", line, row.err)
		}
		out = append(out, m)
	}
}

// sheetRow reads typed cells, keeping the first conversion error.
type sheetRow struct {
	idx map[string]int
	rec []string
	err error
}

func (s *sheetRow) text(col string) string {
	i, ok := s.idx[col]
	if !ok || i >= len(s.rec) {
		return ""
	}
	return strings.TrimSpace(s.rec[i])
}

func (s *sheetRow) whole(col string) int {
	v := s.text(col)
	if v == "" || s.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Spreadsheets like to write whole numbers as "12.0".
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			s.err = fmt.Errorf("%s: %q is not a whole number", col, v)
			return 0
		}
		n = int(f)
	}
	return n
}

func (s *sheetRow) number(col string) float64 {
	if p := s.optional(col); p != nil {
		return *p
	}
	return 0
}

func (s *sheetRow) optional(col string) *float64 {
	v := s.text(col)
	if v == "" || s.err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		s.err = fmt.Errorf("%s: %q is not a number", col, v)
		return nil
	}
	return &f
}

func (s *sheetRow) parse() models.MockTestResult {
	m := models.MockTestResult{
		ID:              s.text("id"),
		AssessmentDate:  s.text("assessment_date"),
		ExamType:        models.ExamType(s.text("exam_type")),
		TestName:        s.text("test_name"),
		Domain:          s.text("domain"),
		TotalQuestions:  s.whole("total_questions"),
		Attempted:       s.whole("attempted"),
		Correct:         s.whole("correct"),
		Wrong:           s.whole("wrong"),
		PhysicsScore:    s.optional("physics_score"),
		ChemistryScore:  s.optional("chemistry_score"),
		MathsScore:      s.optional("maths_score"),
		BiologyScore:    s.optional("biology_score"),
		TotalScore:      s.number("total_score"),
		Percentile:      s.number("percentile"),
		Rank:            s.whole("rank"),
		TargetScore:     s.number("target_score"),
		Difficulty:      models.Difficulty(s.text("difficulty")),
		TimeTakenMin:    s.whole("time_taken_minutes"),
		Feedback:        s.text("feedback"),
		NeuralSignature: s.text("neural_signature"),
		Timestamp:       s.text("timestamp"),
	}
	if uid := s.text("user_id"); uid != "" && s.err == nil {
		n, err := strconv.ParseInt(uid, 10, 64)
		if err != nil {
			s.err = fmt.Errorf("user_id: %q is not a whole number", uid)
		}
		m.UserID = n
	}
	if m.ExamType == "" {
		m.ExamType = models.ExamOther
	}
	if m.Difficulty == "" {
		m.Difficulty = models.DifficultyMedium
	}
	if p := s.optional("max_score_possible"); p != nil {
		m.MaxScorePossible = *p
	} else {
		m.MaxScorePossible = m.ExamType.MaxScore()
	}
	if m.MaxScorePossible == 0 {
		m.MaxScorePossible = models.ExamOther.MaxScore()
	}
	return m
}
