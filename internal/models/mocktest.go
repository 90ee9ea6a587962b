package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ExamType names the exam a mock test imitates.
type ExamType string

const (
	ExamJEEMains    ExamType = "JEE Mains"
	ExamJEEAdvanced ExamType = "JEE Advanced"
	ExamIAT         ExamType = "IAT"
	ExamNEST        ExamType = "NEST"
	ExamOther       ExamType = "Other"
)

var ExamTypes = []ExamType{ExamJEEMains, ExamJEEAdvanced, ExamIAT, ExamNEST, ExamOther}

func (e ExamType) Valid() bool {
	return e.MaxScore() > 0
}

// MaxScore is the default maximum score for the exam type, 0 if unknown.
func (e ExamType) MaxScore() float64 {
	switch e {
	case ExamJEEMains:
		return 300
	case ExamJEEAdvanced:
		return 360
	case ExamIAT, ExamNEST:
		return 240
	case ExamOther:
		return 100
	default:
		return 0
	}
}

// Difficulty is the self-assessed difficulty of a mock test.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyMedium   Difficulty = "Medium"
	DifficultyHard     Difficulty = "Hard"
	DifficultyVeryHard Difficulty = "Very Hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard}

func (d Difficulty) Valid() bool {
	return d.Level() > 0
}

// Level encodes the difficulty as 1 (Easy) through 4 (Very Hard), 0 if unknown.
func (d Difficulty) Level() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	case DifficultyVeryHard:
		return 4
	default:
		return 0
	}
}

// DifficultyFromLevel is the inverse of Level. Levels are clamped to [1, 4].
func DifficultyFromLevel(level int) Difficulty {
	level = max(1, min(4, level))
	return Difficulties[level-1]
}

// MockTestResult is one mock exam sitting.
type MockTestResult struct {
	ID               string     `json:"id" db:"id"`
	UserID           int64      `json:"user_id" db:"user_id"`
	AssessmentDate   string     `json:"assessment_date" db:"assessment_date" validate:"required,datetime=2006-01-02" label:"assessment date"`
	ExamType         ExamType   `json:"exam_type" db:"exam_type" validate:"enum" label:"exam type"`
	TestName         string     `json:"test_name" db:"test_name" validate:"notblank" label:"test name"`
	Domain           string     `json:"domain" db:"domain" validate:"domain" label:"domain"`
	TotalQuestions   int        `json:"total_questions" db:"total_questions" validate:"gte=0" label:"total questions"`
	Attempted        int        `json:"attempted" db:"attempted" validate:"gte=0" label:"attempted"`
	Correct          int        `json:"correct" db:"correct" validate:"gte=0" label:"correct"`
	Wrong            int        `json:"wrong" db:"wrong" validate:"gte=0" label:"wrong"`
	PhysicsScore     *float64   `json:"physics_score,omitempty" db:"physics_score"`
	ChemistryScore   *float64   `json:"chemistry_score,omitempty" db:"chemistry_score"`
	MathsScore       *float64   `json:"maths_score,omitempty" db:"maths_score"`
	BiologyScore     *float64   `json:"biology_score,omitempty" db:"biology_score"`
	TotalScore       float64    `json:"total_score" db:"total_score" validate:"gte=0,ltefield=MaxScorePossible" label:"total score"`
	MaxScorePossible float64    `json:"max_score_possible" db:"max_score_possible" validate:"gt=0" label:"max score"`
	Percentile       float64    `json:"percentile" db:"percentile" validate:"gte=0,lte=100" label:"percentile"`
	Rank             int        `json:"rank" db:"rank" validate:"gte=0" label:"rank"`
	TargetScore      float64    `json:"target_score" db:"target_score" validate:"gte=0" label:"target score"`
	Difficulty       Difficulty `json:"difficulty" db:"difficulty" validate:"enum" label:"difficulty"`
	TimeTakenMin     int        `json:"time_taken_minutes" db:"time_taken_minutes" validate:"gte=0" label:"time taken"`
	Feedback         string     `json:"feedback,omitempty" db:"feedback"`
	NeuralSignature  string     `json:"neural_signature" db:"neural_signature"`
	Timestamp        string     `json:"timestamp" db:"timestamp"`
}

// SubjectScores returns the optional per-subject scores keyed by subject name.
func (m MockTestResult) SubjectScores() map[string]*float64 {
	return map[string]*float64{
		"Physics":   m.PhysicsScore,
		"Chemistry": m.ChemistryScore,
		"Maths":     m.MathsScore,
		"Biology":   m.BiologyScore,
	}
}

// NewMockTestID derives an id from the identifying content of a result plus a
// random salt, so re-logging the same sitting produces a distinct row.
func NewMockTestID(userID int64, assessmentDate, domain string, totalScore float64) string {
	raw := fmt.Sprintf("%d-%s-%s-%s-%s",
		userID, assessmentDate, domain,
		strconv.FormatFloat(totalScore, 'f', -1, 64),
		uuid.NewString(),
	)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// MockFilter narrows MockTestRepository.LoadAll. Zero UserID matches every owner.
type MockFilter struct {
	UserID int64
}

func (f MockFilter) Key() string {
	return "user=" + strconv.FormatInt(f.UserID, 10)
}

// Float returns a pointer to v, for the optional subject scores.
func Float(v float64) *float64 {
	return &v
}
