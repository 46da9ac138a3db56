package toggle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// ParseSnapshot decodes a toggle payload. data is either a JSON array of
// toggles or an object {"lastModified": ..., "payload": [...]}; a marker in the
// object takes precedence over lastModified. An empty or null payload yields
// an empty snapshot.
func ParseSnapshot(data []byte, lastModified string) (*Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	snap := &Snapshot{LastModified: lastModified}

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull):
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &snap.Toggles); err != nil {
			return nil, errors.Join(ErrInvalidSnapshot, err)
		}
	case trimmed[0] == '{':
		var envelope Snapshot
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, errors.Join(ErrInvalidSnapshot, err)
		}
		snap.Toggles = envelope.Toggles
		if envelope.LastModified != "" {
			snap.LastModified = envelope.LastModified
		}
	default:
		return nil, errors.Join(ErrInvalidSnapshot,
			fmt.Errorf("unexpected payload starting with %q", trimmed[0]))
	}

	return snap, nil
}

func (t *Toggle) UnmarshalJSON(data []byte) error {
	type plain Toggle
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if len(p.Conditions) == 0 {
		p.Conditions = nil
	}
	*t = Toggle(p)
	return nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	code, err := decodeCode(data)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	*s = Status(code)
	return nil
}

func (s *Strategy) UnmarshalJSON(data []byte) error {
	code, err := decodeCode(data)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	*s = Strategy(code)
	return nil
}

// decodeCode accepts 4, 4.0, "4" and null (zero).
func decodeCode(data []byte) (int, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return 0, nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return 0, err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return 0, nil
		}
		return strconv.Atoi(str)
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, err
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("code %v is not an integer", f)
	}
	return int(f), nil
}

type conditionJSON struct {
	Key         string        `json:"key"`
	Name        string        `json:"name,omitempty"`
	Operator    *Operator     `json:"operator,omitempty"`
	Allocations *[]Allocation `json:"allocations,omitempty"`
}

// UnmarshalJSON decides the condition kind once: a condition carrying
// "allocations" is a rollout, one carrying "operator" is an operator
// condition, anything else is rejected.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	cond := Condition{Key: raw.Key, Name: raw.Name}
	switch {
	case raw.Operator != nil && raw.Allocations != nil:
		return fmt.Errorf("%w: %q has both operator and allocations", ErrInvalidCondition, raw.Key)
	case raw.Allocations != nil:
		for _, a := range *raw.Allocations {
			if a.Ratio < 0 || math.IsNaN(a.Ratio) || math.IsInf(a.Ratio, 0) {
				return fmt.Errorf("%w: allocation %q has ratio %v", ErrInvalidCondition, a.Name, a.Ratio)
			}
		}
		cond.Kind = ConditionRollout
		if len(*raw.Allocations) > 0 {
			cond.Allocations = *raw.Allocations
		}
	case raw.Operator != nil:
		cond.Kind = ConditionOperator
		cond.Operator = *raw.Operator
	default:
		return fmt.Errorf("%w: %q has neither operator nor allocations", ErrInvalidCondition, raw.Key)
	}

	*c = cond
	return nil
}

func (c Condition) MarshalJSON() ([]byte, error) {
	raw := conditionJSON{Key: c.Key, Name: c.Name}
	switch c.Kind {
	case ConditionOperator:
		op := c.Operator
		raw.Operator = &op
	case ConditionRollout:
		allocations := c.Allocations
		if allocations == nil {
			allocations = []Allocation{}
		}
		raw.Allocations = &allocations
	default:
		return nil, fmt.Errorf("%w: %q has no kind", ErrInvalidCondition, c.Key)
	}
	return json.Marshal(raw)
}
