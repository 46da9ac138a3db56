package toggle

import (
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/togglekit/pkg/logger"
)

// Reason explains how an evaluation arrived at its value.
type Reason string

const (
	ReasonNotFound       Reason = "NOT_FOUND"
	ReasonInactive       Reason = "INACTIVE"
	ReasonUnknownStatus  Reason = "UNKNOWN_STATUS"
	ReasonStatic         Reason = "STATIC"
	ReasonNoContext      Reason = "NO_CONTEXT"
	ReasonTargetingMatch Reason = "TARGETING_MATCH"
	ReasonNoMatch        Reason = "NO_MATCH"
	ReasonError          Reason = "ERROR"
)

// Result is the outcome of evaluating one toggle.
type Result struct {
	Value       any
	VariationID string
	Reason      Reason
}

// Evaluator resolves toggles from a snapshot. It holds no mutable state
// and is safe for concurrent use.
type Evaluator struct {
	operators *OperatorRegistry
	logger    *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for lookup misses and evaluation traces.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOperators replaces the default operator registry.
func WithOperators(r *OperatorRegistry) Option {
	return func(e *Evaluator) {
		if r != nil {
			e.operators = r
		}
	}
}

// NewEvaluator creates an Evaluator with the built-in operators.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{logger: logger.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	if e.operators == nil {
		e.operators = NewOperatorRegistry(e.logger)
	}
	return e
}

// Evaluate resolves the toggle called name.
//
// Lookup misses, inactive or unknown status and unmatched targeting resolve
// to defaultValue and defaultVariationID. Missing strategy, missing identifier
// and non-numeric comparison operands are returned as errors together with
// the default result.
func (e *Evaluator) Evaluate(snapshot *Snapshot, name string, attrs Attributes, defaultValue any, defaultVariationID string) (Result, error) {
	fallback := func(reason Reason) Result {
		return Result{Value: defaultValue, VariationID: defaultVariationID, Reason: reason}
	}

	t, ok := snapshot.Find(name)
	if !ok {
		e.logger.Debug("toggle not found", logger.Toggle(name), logger.Reason(string(ReasonNotFound)))
		return fallback(ReasonNotFound), nil
	}

	switch t.Status {
	case StatusActive:
	case StatusInactive:
		return fallback(ReasonInactive), nil
	default:
		e.logger.Warn("toggle has unknown status",
			logger.Toggle(name),
			logger.Reason(string(ReasonUnknownStatus)),
			slog.Int("status", int(t.Status)),
		)
		return fallback(ReasonUnknownStatus), nil
	}

	if !t.HasConditions() {
		return Result{Value: t.Value, VariationID: defaultVariationID, Reason: ReasonStatic}, nil
	}

	if len(attrs) == 0 {
		e.logger.Debug("toggle has conditions but no context",
			logger.Toggle(name),
			logger.Reason(string(ReasonNoContext)),
		)
		return fallback(ReasonNoContext), nil
	}

	var (
		res Result
		err error
	)
	switch t.Strategy {
	case StrategyAll:
		res, err = e.evaluateAll(t, attrs)
	case StrategyAtLeastOne:
		res, err = e.evaluateAtLeastOne(t, attrs)
	case StrategyMajority:
		res, err = e.evaluateMajority(t, attrs)
	default:
		return fallback(ReasonError), fmt.Errorf("toggle %q strategy %d: %w", name, int(t.Strategy), ErrMissingStrategy)
	}
	if err != nil {
		return fallback(ReasonError), err
	}
	if res.Reason == ReasonNoMatch {
		return fallback(ReasonNoMatch), nil
	}

	if res.Value == nil {
		res.Value = t.Value
	}
	if res.VariationID == "" {
		res.VariationID = defaultVariationID
	}
	return res, nil
}

// evaluateAll requires every condition. Values from later conditions win.
func (e *Evaluator) evaluateAll(t *Toggle, attrs Attributes) (Result, error) {
	var res Result
	for _, cond := range t.Conditions {
		ar, err := e.EvaluateCondition(cond, attrs, t.Name)
		if err != nil {
			return Result{}, err
		}
		if !ar.Valid {
			e.logger.Debug("condition not satisfied",
				logger.Toggle(t.Name),
				slog.String("key", cond.Key),
			)
			return Result{Reason: ReasonNoMatch}, nil
		}
		mergeAssertion(&res, ar)
	}
	res.Reason = ReasonTargetingMatch
	return res, nil
}

// evaluateAtLeastOne stops at the first satisfied condition.
func (e *Evaluator) evaluateAtLeastOne(t *Toggle, attrs Attributes) (Result, error) {
	for _, cond := range t.Conditions {
		ar, err := e.EvaluateCondition(cond, attrs, t.Name)
		if err != nil {
			return Result{}, err
		}
		if ar.Valid {
			return Result{
				Value:       ar.RolloutValue,
				VariationID: ar.VariationID,
				Reason:      ReasonTargetingMatch,
			}, nil
		}
	}
	return Result{Reason: ReasonNoMatch}, nil
}

// evaluateMajority needs strictly more satisfied than unsatisfied conditions.
func (e *Evaluator) evaluateMajority(t *Toggle, attrs Attributes) (Result, error) {
	var (
		res       Result
		hit, miss int
	)
	for _, cond := range t.Conditions {
		ar, err := e.EvaluateCondition(cond, attrs, t.Name)
		if err != nil {
			return Result{}, err
		}
		if !ar.Valid {
			miss++
			continue
		}
		hit++
		mergeAssertion(&res, ar)
	}

	if hit <= miss {
		return Result{Reason: ReasonNoMatch}, nil
	}
	res.Reason = ReasonTargetingMatch
	return res, nil
}

func mergeAssertion(res *Result, ar AssertionResult) {
	if ar.RolloutValue != nil {
		res.Value = ar.RolloutValue
	}
	if ar.VariationID != "" {
		res.VariationID = ar.VariationID
	}
}
