package toggle

// Status controls whether a toggle is evaluated at all.
type Status int

const (
	StatusActive   Status = 1
	StatusInactive Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusInactive:
		return "INACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Strategy combines the results of a toggle's conditions.
type Strategy int

const (
	StrategyNone       Strategy = 0
	StrategyAtLeastOne Strategy = 1
	// StrategyMajority is kept for toggles authored before ALL and AT_LEAST_ONE
	// covered every use case.
	StrategyMajority Strategy = 2
	StrategyAll      Strategy = 3
)

func (s Strategy) String() string {
	switch s {
	case StrategyAtLeastOne:
		return "AT_LEAST_ONE"
	case StrategyMajority:
		return "MAJORITY"
	case StrategyAll:
		return "ALL"
	case StrategyNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Toggle is a named feature toggle as delivered in a snapshot.
type Toggle struct {
	Name       string      `json:"name"`
	Status     Status      `json:"status"`
	Strategy   Strategy    `json:"strategy,omitempty"`
	Value      any         `json:"value"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// HasConditions reports whether the toggle targets by context.
func (t *Toggle) HasConditions() bool {
	return len(t.Conditions) > 0
}

// ConditionKind tells operator conditions and rollout conditions apart.
// It is fixed when the condition is decoded or constructed.
type ConditionKind uint8

const (
	ConditionOperator ConditionKind = iota + 1
	ConditionRollout
)

func (k ConditionKind) String() string {
	switch k {
	case ConditionOperator:
		return "operator"
	case ConditionRollout:
		return "rollout"
	default:
		return "invalid"
	}
}

// Operator names a predicate and the value it compares against.
type Operator struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Allocation is one weighted bucket of a rollout condition.
type Allocation struct {
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
	Value any     `json:"value,omitempty"`
}

// Condition is a single targeting rule. Operator is set for operator
// conditions, Allocations for rollout conditions; Kind says which.
type Condition struct {
	Key         string
	Name        string
	Kind        ConditionKind
	Operator    Operator
	Allocations []Allocation
}

// NewOperatorCondition builds a condition comparing attrs[key] with value.
func NewOperatorCondition(key, operator string, value any) Condition {
	return Condition{
		Key:      key,
		Kind:     ConditionOperator,
		Operator: Operator{Name: operator, Value: value},
	}
}

// NewRolloutCondition builds a condition that buckets the identity attribute
// into the given allocations.
func NewRolloutCondition(key string, allocations ...Allocation) Condition {
	return Condition{
		Key:         key,
		Kind:        ConditionRollout,
		Allocations: allocations,
	}
}

// Attributes is the request-scoped evaluation context.
// The IdentityKey attribute identifies the subject for rollouts.
type Attributes map[string]any

// AssertionResult is the outcome of a single condition.
type AssertionResult struct {
	Valid        bool
	RolloutValue any
	VariationID  string
}

// Snapshot is an immutable toggle configuration fetched at one point in time.
type Snapshot struct {
	// LastModified is the opaque freshness marker supplied by the source.
	LastModified string   `json:"lastModified"`
	Toggles      []Toggle `json:"payload"`
}

// Find returns the first toggle declared with name.
// Later toggles with the same name are never visible.
func (s *Snapshot) Find(name string) (*Toggle, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Toggles {
		if s.Toggles[i].Name == name {
			return &s.Toggles[i], true
		}
	}
	return nil, false
}

// Names lists toggle names in declaration order.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Toggles))
	for _, t := range s.Toggles {
		names = append(names, t.Name)
	}
	return names
}
