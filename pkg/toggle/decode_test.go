package toggle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

const samplePayload = `[
  {
    "name": "feature",
    "status": 1,
    "strategy": "3",
    "value": true,
    "conditions": [
      {"key": "country", "operator": {"name": "in-set", "value": ["DE", "AT"]}},
      {"key": "rollout", "name": "split", "allocations": [
        {"name": "bucketA", "ratio": 0.5, "value": 1},
        {"name": "bucketB", "ratio": 0.5, "value": 2}
      ]}
    ]
  },
  {"name": "kill-switch", "status": 4, "value": false, "conditions": []}
]`

func TestParseSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("Array", func(t *testing.T) {
		t.Parallel()

		snap, err := toggle.ParseSnapshot([]byte(samplePayload), "Tue, 01 Oct 2024 10:00:00 GMT")
		require.NoError(t, err)
		assert.Equal(t, "Tue, 01 Oct 2024 10:00:00 GMT", snap.LastModified)
		assert.Equal(t, []string{"feature", "kill-switch"}, snap.Names())

		f, ok := snap.Find("feature")
		require.True(t, ok)
		assert.Equal(t, toggle.StatusActive, f.Status)
		assert.Equal(t, toggle.StrategyAll, f.Strategy)
		require.Len(t, f.Conditions, 2)

		assert.Equal(t, toggle.ConditionOperator, f.Conditions[0].Kind)
		assert.Equal(t, "in-set", f.Conditions[0].Operator.Name)
		assert.Equal(t, []any{"DE", "AT"}, f.Conditions[0].Operator.Value)

		assert.Equal(t, toggle.ConditionRollout, f.Conditions[1].Kind)
		assert.Equal(t, "split", f.Conditions[1].Name)
		assert.Len(t, f.Conditions[1].Allocations, 2)
		assert.Equal(t, float64(2), f.Conditions[1].Allocations[1].Value)

		ks, ok := snap.Find("kill-switch")
		require.True(t, ok)
		assert.Nil(t, ks.Conditions)
		assert.False(t, ks.HasConditions())
	})

	t.Run("Envelope", func(t *testing.T) {
		t.Parallel()

		payload := `{"lastModified": "v7", "payload": ` + samplePayload + `}`
		snap, err := toggle.ParseSnapshot([]byte(payload), "ignored")
		require.NoError(t, err)
		assert.Equal(t, "v7", snap.LastModified)
		assert.Len(t, snap.Toggles, 2)
	})

	t.Run("EnvelopeWithoutMarker", func(t *testing.T) {
		t.Parallel()

		snap, err := toggle.ParseSnapshot([]byte(`{"payload": []}`), "header")
		require.NoError(t, err)
		assert.Equal(t, "header", snap.LastModified)
		assert.Empty(t, snap.Toggles)
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"", "  ", "null"} {
			snap, err := toggle.ParseSnapshot([]byte(in), "m")
			require.NoError(t, err)
			assert.Empty(t, snap.Toggles)
			assert.Equal(t, "m", snap.LastModified)
		}
	})

	t.Run("Evaluates", func(t *testing.T) {
		t.Parallel()

		snap, err := toggle.ParseSnapshot([]byte(samplePayload), "")
		require.NoError(t, err)

		res, err := toggle.NewEvaluator().Evaluate(snap, "feature", toggle.Attributes{
			"country":          "DE",
			toggle.IdentityKey: "1",
		}, false, "")
		require.NoError(t, err)
		assert.Equal(t, float64(2), res.Value)
		assert.Equal(t, "bucketB", res.VariationID)
	})
}

func TestParseSnapshot_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		target  error
	}{
		{"NotJSON", `toggles`, toggle.ErrInvalidSnapshot},
		{"BrokenArray", `[{"name": }]`, toggle.ErrInvalidSnapshot},
		{"BothKinds", `[{"name":"t","status":1,"conditions":[{"key":"k","operator":{"name":"equal","value":1},"allocations":[]}]}]`, toggle.ErrInvalidCondition},
		{"NeitherKind", `[{"name":"t","status":1,"conditions":[{"key":"k"}]}]`, toggle.ErrInvalidCondition},
		{"NegativeRatio", `[{"name":"t","status":1,"conditions":[{"key":"k","allocations":[{"name":"a","ratio":-0.1}]}]}]`, toggle.ErrInvalidCondition},
		{"FractionalStatus", `[{"name":"t","status":1.5}]`, toggle.ErrInvalidSnapshot},
		{"TextStrategy", `[{"name":"t","status":1,"strategy":"ALL"}]`, toggle.ErrInvalidSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			snap, err := toggle.ParseSnapshot([]byte(tt.payload), "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Nil(t, snap)
		})
	}
}

func TestCondition_MarshalJSON(t *testing.T) {
	t.Parallel()

	snap, err := toggle.ParseSnapshot([]byte(samplePayload), "")
	require.NoError(t, err)

	f, _ := snap.Find("feature")
	data, err := f.Conditions[1].MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"rollout","name":"split","allocations":[
		{"name":"bucketA","ratio":0.5,"value":1},
		{"name":"bucketB","ratio":0.5,"value":2}]}`, string(data))

	_, err = toggle.Condition{Key: "k"}.MarshalJSON()
	assert.ErrorIs(t, err, toggle.ErrInvalidCondition)
}
