package toggle

import "reflect"

// ChangedKeys lists, in next's declaration order, the names of toggles that
// are new or differ from prev. With no prev every name counts as changed.
// Conditions are compared in order, so reordering them is a change.
func ChangedKeys(next, prev *Snapshot) []string {
	if prev == nil {
		return next.Names()
	}
	if next == nil {
		return nil
	}

	changed := make([]string, 0)
	for i := range next.Toggles {
		t := &next.Toggles[i]
		old, ok := prev.Find(t.Name)
		if !ok || !t.Equal(old) {
			changed = append(changed, t.Name)
		}
	}
	return changed
}

// Equal reports whether two toggle definitions are structurally identical.
// Nil and empty condition or allocation lists are treated alike.
func (t *Toggle) Equal(other *Toggle) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Name != other.Name || t.Status != other.Status || t.Strategy != other.Strategy {
		return false
	}
	if !reflect.DeepEqual(t.Value, other.Value) {
		return false
	}
	if len(t.Conditions) != len(other.Conditions) {
		return false
	}
	for i := range t.Conditions {
		if !t.Conditions[i].Equal(other.Conditions[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether two conditions are structurally identical.
func (c Condition) Equal(other Condition) bool {
	if c.Key != other.Key || c.Name != other.Name || c.Kind != other.Kind {
		return false
	}
	if c.Operator.Name != other.Operator.Name || !reflect.DeepEqual(c.Operator.Value, other.Operator.Value) {
		return false
	}
	if len(c.Allocations) != len(other.Allocations) {
		return false
	}
	for i, a := range c.Allocations {
		b := other.Allocations[i]
		if a.Name != b.Name || a.Ratio != b.Ratio || !reflect.DeepEqual(a.Value, b.Value) {
			return false
		}
	}
	return true
}
