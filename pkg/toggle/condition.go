package toggle

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"

	"github.com/dmitrymomot/togglekit/pkg/logger"
)

// EvaluateCondition resolves a single condition against attrs. toggleName
// salts rollout bucketing so one subject lands independently per toggle.
//
// An absent or falsy context attribute never satisfies an operator condition.
// A rollout condition without an identifier fails with ErrMissingIdentifier.
func (e *Evaluator) EvaluateCondition(cond Condition, attrs Attributes, toggleName string) (AssertionResult, error) {
	switch cond.Kind {
	case ConditionRollout:
		id, err := identifierFrom(attrs)
		if err != nil {
			return AssertionResult{}, fmt.Errorf("toggle %q: %w", toggleName, err)
		}
		return Assign(id, toggleName, cond.Allocations), nil

	case ConditionOperator:
		actual, ok := attrs[cond.Key]
		if !ok || isFalsy(actual) {
			e.logger.Debug("context attribute missing or empty",
				logger.Toggle(toggleName),
				slog.String("key", cond.Key),
			)
			return AssertionResult{}, nil
		}

		valid, err := e.operators.Satisfies(cond.Operator.Name, cond.Operator.Value, actual)
		if err != nil {
			return AssertionResult{}, fmt.Errorf("toggle %q condition %q: %w", toggleName, cond.Key, err)
		}
		return AssertionResult{Valid: valid}, nil

	default:
		return AssertionResult{}, fmt.Errorf("toggle %q condition %q: %w", toggleName, cond.Key, ErrInvalidCondition)
	}
}

func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == ""
	}
	if f, ok := numeric(v); ok {
		return f == 0 || math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
