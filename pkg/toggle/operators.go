package toggle

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrymomot/togglekit/pkg/cache"
	"github.com/dmitrymomot/togglekit/pkg/logger"
)

// Operator names understood by the default registry.
const (
	OpEqual            = "equal"
	OpGreaterThan      = "greater-than"
	OpGreaterThanEqual = "greater-than-equal"
	OpLessThan         = "less-than"
	OpLessThanEqual    = "less-than-equal"
	OpInSet            = "in-set"
	OpNotInSet         = "not-in-set"
	OpMatchesRegex     = "matches-regex"
)

const patternCacheSize = 128

// Predicate compares the value configured on a condition with the value
// found in the evaluation context.
type Predicate func(configured, actual any) (bool, error)

// OperatorRegistry maps operator names to predicates.
// It is safe for concurrent use once built; Register is meant for setup.
type OperatorRegistry struct {
	predicates map[string]Predicate
	patterns   *cache.LRU[string, *regexp.Regexp]
	logger     *slog.Logger
}

// NewOperatorRegistry creates a registry holding the built-in operators.
// A nil logger discards output.
func NewOperatorRegistry(l *slog.Logger) *OperatorRegistry {
	if l == nil {
		l = logger.Discard()
	}
	r := &OperatorRegistry{
		patterns: cache.NewLRU[string, *regexp.Regexp](patternCacheSize),
		logger:   l,
	}
	r.predicates = map[string]Predicate{
		OpEqual:            equalOp,
		OpGreaterThan:      compareOp(OpGreaterThan, func(actual, configured float64) bool { return actual > configured }),
		OpGreaterThanEqual: compareOp(OpGreaterThanEqual, func(actual, configured float64) bool { return actual >= configured }),
		OpLessThan:         compareOp(OpLessThan, func(actual, configured float64) bool { return actual < configured }),
		OpLessThanEqual:    compareOp(OpLessThanEqual, func(actual, configured float64) bool { return actual <= configured }),
		OpInSet:            inSetOp,
		OpNotInSet:         notInSetOp,
		OpMatchesRegex:     r.matchesRegex,
	}
	return r
}

// Register adds or replaces the predicate for name.
func (r *OperatorRegistry) Register(name string, p Predicate) {
	r.predicates[name] = p
}

// Lookup returns the predicate registered for name.
func (r *OperatorRegistry) Lookup(name string) (Predicate, bool) {
	p, ok := r.predicates[name]
	return p, ok
}

// Satisfies applies the named operator. An unknown operator is not an error:
// it simply never satisfies. Numeric operators fail with *ParseError when an
// operand is not a number.
func (r *OperatorRegistry) Satisfies(name string, configured, actual any) (bool, error) {
	p, ok := r.predicates[name]
	if !ok {
		r.logger.Debug("unknown operator", slog.String("operator", name))
		return false, nil
	}
	return p(configured, actual)
}

func equalOp(configured, actual any) (bool, error) {
	return valuesEqual(configured, actual), nil
}

func compareOp(name string, cmp func(actual, configured float64) bool) Predicate {
	return func(configured, actual any) (bool, error) {
		c, err := toNumber(name, configured)
		if err != nil {
			return false, err
		}
		a, err := toNumber(name, actual)
		if err != nil {
			return false, err
		}
		return cmp(a, c), nil
	}
}

func inSetOp(configured, actual any) (bool, error) {
	set, ok := asList(configured)
	if !ok {
		return false, nil
	}
	return containsValue(set, actual), nil
}

func notInSetOp(configured, actual any) (bool, error) {
	set, ok := asList(configured)
	if !ok {
		return false, nil
	}
	return !containsValue(set, actual), nil
}

func (r *OperatorRegistry) matchesRegex(configured, actual any) (bool, error) {
	expr, ok := configured.(string)
	if !ok {
		r.logger.Debug("regex operand is not a string", slog.Any("value", configured))
		return false, nil
	}

	re, ok := r.patterns.Get(expr)
	if !ok {
		compiled, err := regexp.Compile(expr)
		if err != nil {
			r.logger.Warn("invalid regex operand", slog.String("pattern", expr), logger.Error(err))
			return false, nil
		}
		r.patterns.Put(expr, compiled)
		re = compiled
	}

	subject, ok := actual.(string)
	if !ok {
		subject = fmt.Sprint(actual)
	}
	return re.MatchString(subject), nil
}

// valuesEqual is strict equality with one allowance: numbers compare by
// value regardless of their Go type, since decoded JSON yields float64 while
// callers pass ints.
func valuesEqual(a, b any) bool {
	if fa, ok := numeric(a); ok {
		fb, ok := numeric(b)
		return ok && fa == fb
	}
	if _, ok := numeric(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func containsValue(set []any, v any) bool {
	for _, item := range set {
		if valuesEqual(item, v) {
			return true
		}
	}
	return false
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func numeric(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// toNumber passes numbers through and parses strings as floating point.
func toNumber(operator string, v any) (float64, error) {
	if f, ok := numeric(v); ok {
		return f, nil
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(f) {
			return f, nil
		}
	}
	return 0, &ParseError{Operator: operator, Value: v}
}
