package client

import (
	"fmt"
	"reflect"

	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

// VariationRef names one allocation of a rollout toggle.
type VariationRef struct {
	Toggle      string
	VariationID string
}

func (c *Client) snapshot() *toggle.Snapshot {
	if e := c.current.Load(); e != nil {
		return e.Value
	}
	return nil
}

// Evaluate resolves name against the current snapshot. Before the first
// successful fetch every toggle resolves to its default.
func (c *Client) Evaluate(name string, attrs toggle.Attributes, defaultValue any, defaultVariationID string) (toggle.Result, error) {
	return c.evaluator.Evaluate(c.snapshot(), name, attrs, defaultValue, defaultVariationID)
}

// ToggleValue returns the evaluated value of name, or defaultValue.
func (c *Client) ToggleValue(name string, defaultValue any, attrs toggle.Attributes) (any, error) {
	res, err := c.Evaluate(name, attrs, defaultValue, "")
	return res.Value, err
}

// VariationID returns the variation the subject in attrs is assigned to, or
// defaultVariationID.
func (c *Client) VariationID(name, defaultVariationID string, attrs toggle.Attributes) (string, error) {
	res, err := c.Evaluate(name, attrs, nil, defaultVariationID)
	return res.VariationID, err
}

// Value evaluates name and converts the result to T. Numbers convert between
// numeric types when no precision is lost, so a JSON 3 can be read as int.
// On any error defaultValue is returned.
func Value[T any](c *Client, name string, defaultValue T, attrs toggle.Attributes) (T, error) {
	res, err := c.Evaluate(name, attrs, defaultValue, "")
	if err != nil {
		return defaultValue, err
	}
	v, ok := convert[T](res.Value)
	if !ok {
		return defaultValue, fmt.Errorf("%w: toggle %q has %T", ErrTypeMismatch, name, res.Value)
	}
	return v, nil
}

func convert[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}

	var zero T
	target := reflect.TypeOf(zero)
	if v == nil || target == nil {
		return zero, false
	}

	rv := reflect.ValueOf(v)
	if !isNumber(rv.Kind()) || !isNumber(target.Kind()) {
		return zero, false
	}
	converted := rv.Convert(target)
	if asFloat(converted) != asFloat(rv) {
		return zero, false
	}
	return converted.Interface().(T), true
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func asFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

// ToggleKeys lists the toggle names of the current snapshot.
func (c *Client) ToggleKeys() []string {
	names := c.snapshot().Names()
	if names == nil {
		return []string{}
	}
	return names
}

// VariationIDs lists every allocation of every rollout condition in the
// current snapshot, for analytics setup.
func (c *Client) VariationIDs() []VariationRef {
	refs := []VariationRef{}
	snap := c.snapshot()
	if snap == nil {
		return refs
	}
	for _, t := range snap.Toggles {
		for _, cond := range t.Conditions {
			if cond.Kind != toggle.ConditionRollout {
				continue
			}
			for _, a := range cond.Allocations {
				refs = append(refs, VariationRef{Toggle: t.Name, VariationID: a.Name})
			}
		}
	}
	return refs
}

// IsCacheFilled reports whether a snapshot has been loaded.
func (c *Client) IsCacheFilled() bool {
	return c.snapshot() != nil
}
