// Package validation checks records before they reach a repository write.
// Every check is pure and reports all violated rules at once.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/models"
)

// enumerated is implemented by the string enums in models.
type enumerated interface {
	Valid() bool
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return f.Name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(enumerated)
			return ok && e.Valid()
		})
		_ = v.RegisterValidation("domain", func(fl validator.FieldLevel) bool {
			return constants.IsKnowledgeDomain(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// fieldLabels maps struct field names used as ltefield parameters to labels.
var fieldLabels = map[string]string{
	"MaxScorePossible": "max score",
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s must not be blank", name)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "ltefield":
		other := fieldLabels[fe.Param()]
		if other == "" {
			other = fe.Param()
		}
		return fmt.Sprintf("%s must not exceed %s", name, other)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", name)
	case "enum":
		return fmt.Sprintf("%s %q is not a valid choice", name, fmt.Sprint(fe.Value()))
	case "domain":
		return fmt.Sprintf("%s %q is not in the knowledge-domain catalog", name, fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s check", name, fe.Tag())
	}
}

func check(record any, extra ...string) error {
	var problems []string
	if err := instance().Struct(record); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validation: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, message(fe))
		}
	}
	problems = append(problems, extra...)
	return errors.NewValidationError(problems...)
}

// PracticeLog validates a practice log for insert or update.
func PracticeLog(l models.PracticeLog) error {
	return check(l)
}

// PlannerTask validates a planner task. The due date is compared with today
// only when creating; existing tasks may keep a past due date.
func PlannerTask(t models.PlannerTask, today string, creating bool) error {
	var extra []string
	if creating && t.DueDate != "" && strings.Compare(t.DueDate, today) < 0 {
		extra = append(extra, fmt.Sprintf("due date %s must not be before today (%s)", t.DueDate, today))
	}
	return check(t, extra...)
}

// MockTestResult validates a mock test result for insert or update.
func MockTestResult(m models.MockTestResult) error {
	return check(m)
}
