package tracker

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrGoalNotFound    = errors.New("goal not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
	ErrEntryNotFound   = errors.New("journal entry not found")
	ErrGoalFrozen      = errors.New("goal is past its end date; extend or fail it first")
	ErrGoalNotFrozen   = errors.New("goal is not awaiting a decision")
	ErrGoalClosed      = errors.New("goal has failed and can no longer change")
	ErrGoalNotStarted  = errors.New("goal has not started yet")
	ErrWrongGoalType   = errors.New("operation does not apply to this goal type")
)

// ValidationError lists per-field problems with an input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// fromValidator converts validator output into a ValidationError.
func fromValidator(err error) *ValidationError {
	verr := &ValidationError{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("request", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.add(fieldPath(fe), describe(fe))
	}
	return verr
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a YYYY-MM-DD date"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
