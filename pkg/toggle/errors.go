package toggle

import (
	"errors"
	"fmt"
)

// Predefined errors for the toggle package.
var (
	// ErrParse indicates a comparison operand that cannot be used as a number.
	ErrParse = errors.New("cannot parse operand as number")

	// ErrMissingIdentifier indicates a rollout condition evaluated without an
	// identity attribute in the context.
	ErrMissingIdentifier = errors.New("rollout condition requires an identifier in context")

	// ErrMissingStrategy indicates a toggle with conditions but no known strategy.
	ErrMissingStrategy = errors.New("toggle has conditions but no valid strategy")

	// ErrInvalidCondition indicates a condition that is neither an operator
	// condition nor a rollout condition, or claims to be both.
	ErrInvalidCondition = errors.New("invalid toggle condition")

	// ErrInvalidSnapshot indicates a payload that cannot be decoded into a snapshot.
	ErrInvalidSnapshot = errors.New("invalid toggle snapshot")
)

// ParseError reports an operand of a numeric comparison that is neither a
// number nor a string holding one. It matches ErrParse with errors.Is.
type ParseError struct {
	Operator string
	Value    any
}

func (e *ParseError) Error() string {
	if e.Operator == "" {
		return fmt.Sprintf("%s: %v (%T)", ErrParse, e.Value, e.Value)
	}
	return fmt.Sprintf("%s: operator %q got %v (%T)", ErrParse, e.Operator, e.Value, e.Value)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
