package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/julianstephens/studylog/internal/models"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindReal
	kindOptionalReal
)

// mockField is one entry of the targeted-update allow-list.
type mockField struct {
	name string
	kind fieldKind
	get  func(models.MockTestResult) any
	set  func(*models.MockTestResult, any)
}

func textField(name string, get func(models.MockTestResult) string, set func(*models.MockTestResult, string)) mockField {
	return mockField{name, kindText,
		func(m models.MockTestResult) any { return get(m) },
		func(m *models.MockTestResult, v any) { set(m, v.(string)) },
	}
}

func intField(name string, ptr func(*models.MockTestResult) *int) mockField {
	return mockField{name, kindInt,
		func(m models.MockTestResult) any { return *ptr(&m) },
		func(m *models.MockTestResult, v any) { *ptr(m) = v.(int) },
	}
}

func realField(name string, ptr func(*models.MockTestResult) *float64) mockField {
	return mockField{name, kindReal,
		func(m models.MockTestResult) any { return *ptr(&m) },
		func(m *models.MockTestResult, v any) { *ptr(m) = v.(float64) },
	}
}

func optionalField(name string, ptr func(*models.MockTestResult) **float64) mockField {
	return mockField{name, kindOptionalReal,
		func(m models.MockTestResult) any {
			if p := *ptr(&m); p != nil {
				return *p
			}
			return nil
		},
		func(m *models.MockTestResult, v any) { *ptr(m) = v.(*float64) },
	}
}

// mockFields is the allow-list for UpdateField, in column order. id,
// user_id, neural_signature and timestamp are deliberately absent.
var mockFields = []mockField{
	textField("assessment_date",
		func(m models.MockTestResult) string { return m.AssessmentDate },
		func(m *models.MockTestResult, v string) { m.AssessmentDate = v }),
	textField("exam_type",
		func(m models.MockTestResult) string { return string(m.ExamType) },
		func(m *models.MockTestResult, v string) { m.ExamType = models.ExamType(v) }),
	textField("test_name",
		func(m models.MockTestResult) string { return m.TestName },
		func(m *models.MockTestResult, v string) { m.TestName = v }),
	textField("domain",
		func(m models.MockTestResult) string { return m.Domain },
		func(m *models.MockTestResult, v string) { m.Domain = v }),
	intField("total_questions", func(m *models.MockTestResult) *int { return &m.TotalQuestions }),
	intField("attempted", func(m *models.MockTestResult) *int { return &m.Attempted }),
	intField("correct", func(m *models.MockTestResult) *int { return &m.Correct }),
	intField("wrong", func(m *models.MockTestResult) *int { return &m.Wrong }),
	optionalField("physics_score", func(m *models.MockTestResult) **float64 { return &m.PhysicsScore }),
	optionalField("chemistry_score", func(m *models.MockTestResult) **float64 { return &m.ChemistryScore }),
	optionalField("maths_score", func(m *models.MockTestResult) **float64 { return &m.MathsScore }),
	optionalField("biology_score", func(m *models.MockTestResult) **float64 { return &m.BiologyScore }),
	realField("total_score", func(m *models.MockTestResult) *float64 { return &m.TotalScore }),
	realField("max_score_possible", func(m *models.MockTestResult) *float64 { return &m.MaxScorePossible }),
	realField("percentile", func(m *models.MockTestResult) *float64 { return &m.Percentile }),
	intField("rank", func(m *models.MockTestResult) *int { return &m.Rank }),
	realField("target_score", func(m *models.MockTestResult) *float64 { return &m.TargetScore }),
	textField("difficulty",
		func(m models.MockTestResult) string { return string(m.Difficulty) },
		func(m *models.MockTestResult, v string) { m.Difficulty = models.Difficulty(v) }),
	intField("time_taken_minutes", func(m *models.MockTestResult) *int { return &m.TimeTakenMin }),
	textField("feedback",
		func(m models.MockTestResult) string { return m.Feedback },
		func(m *models.MockTestResult, v string) { m.Feedback = v }),
}

// UpdatableFields lists the column names UpdateField accepts.
func UpdatableFields() []string {
	names := make([]string, len(mockFields))
	for i, f := range mockFields {
		names[i] = f.name
	}
	return names
}

func lookupField(name string) (mockField, bool) {
	for _, f := range mockFields {
		if f.name == name {
			return f, true
		}
	}
	return mockField{}, false
}

// quoted is the column name as it appears in SQL. Only allow-listed names
// ever reach this.
func (f mockField) quoted() string {
	return `"` + f.name + `"`
}

func (f mockField) dbValue(v any) any {
	if f.kind == kindOptionalReal {
		return nullFloat(v.(*float64))
	}
	return v
}

// coerce converts a loosely typed value (string from a CSV cell, number
// from code) into the Go type the field stores.
func (f mockField) coerce(v any) (any, error) {
	switch f.kind {
	case kindText:
		switch t := v.(type) {
		case string:
			return t, nil
		case models.ExamType:
			return string(t), nil
		case models.Difficulty:
			return string(t), nil
		case fmt.Stringer:
			return t.String(), nil
		}
	case kindInt:
		switch t := v.(type) {
		case int:
			return t, nil
		case int64:
			return int(t), nil
		case float64:
			if t == math.Trunc(t) {
				return int(t), nil
			}
			return nil, fmt.Errorf("%v is not a whole number", t)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("%q is not a whole number", t)
			}
			return n, nil
		}
	case kindReal:
		return toFloat(v)
	case kindOptionalReal:
		if v == nil {
			return (*float64)(nil), nil
		}
		if p, ok := v.(*float64); ok {
			return p, nil
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return (*float64)(nil), nil
		}
		x, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return models.Float(x.(float64)), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

func toFloat(v any) (any, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", t)
		}
		return x, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}
