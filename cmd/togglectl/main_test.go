package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

const rolloutSnapshot = `[
  {"name": "feature", "status": 1, "strategy": 1, "value": 0,
   "conditions": [{"key": "rollout", "name": "split", "allocations": [
     {"name": "bucketA", "ratio": 0.5, "value": 1},
     {"name": "bucketB", "ratio": 0.5, "value": 2}]}]},
  {"name": "banner", "status": 1, "value": "blue"}
]`

func writeSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseAttrs(t *testing.T) {
	t.Parallel()

	attrs, err := parseAttrs([]string{"uuid=1", "age=42", "beta=true", "country=DE", "tags=[\"a\",\"b\"]", "empty="})
	require.NoError(t, err)
	assert.Equal(t, toggle.Attributes{
		"uuid":    float64(1),
		"age":     float64(42),
		"beta":    true,
		"country": "DE",
		"tags":    []any{"a", "b"},
		"empty":   "",
	}, attrs)

	_, err = parseAttrs([]string{"novalue"})
	assert.Error(t, err)

	_, err = parseAttrs([]string{"=x"})
	assert.Error(t, err)
}

func TestEvalCommand(t *testing.T) {
	path := writeSnapshot(t, "toggles.json", rolloutSnapshot)

	out, err := run(t, "eval", "--file", path, "--toggle", "feature", "--attr", "uuid=1", "--variation", "control")
	require.NoError(t, err)

	var res evalOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, evalOutput{
		Toggle:      "feature",
		Value:       float64(2),
		VariationID: "bucketB",
		Reason:      toggle.ReasonTargetingMatch,
	}, res)

	out, err = run(t, "eval", "--file", path, "--toggle", "missing", "--default", "7")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, float64(7), res.Value)
	assert.Equal(t, toggle.ReasonNotFound, res.Reason)

	out, err = run(t, "eval", "--file", path, "--toggle", "feature", "--attr", "country=DE")
	require.ErrorIs(t, err, toggle.ErrMissingIdentifier)
	assert.Contains(t, out, `"reason": "ERROR"`)
}

func TestRolloutCommand(t *testing.T) {
	path := writeSnapshot(t, "toggles.yaml", `
- name: feature
  status: 1
  strategy: 1
  conditions:
    - key: rollout
      name: split
      allocations:
        - {name: bucketA, ratio: 0.5, value: 1}
        - {name: bucketB, ratio: 0.5, value: 2}
`)

	out, err := run(t, "rollout", "--file", path, "--toggle", "feature", "--samples", "2000")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "VARIATION"))
	assert.True(t, strings.HasPrefix(lines[1], "bucketA"))
	assert.True(t, strings.HasPrefix(lines[2], "bucketB"))

	_, err = run(t, "rollout", "--file", path, "--toggle", "feature", "--samples", "0")
	assert.Error(t, err)
}

func TestSimulateRollout(t *testing.T) {
	t.Parallel()

	snap, err := toggle.ParseSnapshot([]byte(rolloutSnapshot), "")
	require.NoError(t, err)

	counts, err := simulateRollout(toggle.NewEvaluator(), snap, "banner", nil, 50)
	require.NoError(t, err)
	assert.Equal(t, []bucketCount{{Variation: noVariation, Count: 50}}, counts)

	counts, err = simulateRollout(toggle.NewEvaluator(), snap, "feature", nil, 4000)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.InDelta(t, 2000, counts[0].Count, 200)
	assert.Equal(t, 4000, counts[0].Count+counts[1].Count)
}

func TestDiffCommand(t *testing.T) {
	prev := writeSnapshot(t, "old.json", rolloutSnapshot)
	next := writeSnapshot(t, "new.json", `[
  {"name": "feature", "status": 4, "strategy": 1, "value": 0,
   "conditions": [{"key": "rollout", "name": "split", "allocations": [
     {"name": "bucketA", "ratio": 0.5, "value": 1},
     {"name": "bucketB", "ratio": 0.5, "value": 2}]}]},
  {"name": "banner", "status": 1, "value": "blue"},
  {"name": "fresh", "status": 1, "value": true}
]`)

	out, err := run(t, "diff", prev, next)
	require.NoError(t, err)
	assert.Equal(t, "feature\nfresh\n", out)

	out, err = run(t, "diff", prev, prev)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = run(t, "diff", prev)
	assert.Error(t, err)
}

func TestWatchCommand_RequiresSource(t *testing.T) {
	t.Setenv("TOGGLE_BASE_URL", "")

	_, err := run(t, "watch")
	assert.Error(t, err)

	_, err = run(t, "watch", "--file", "a.json", "--url", "http://localhost")
	assert.Error(t, err)
}

func TestRootCommand_InvalidLogConfig(t *testing.T) {
	path := writeSnapshot(t, "toggles.json", rolloutSnapshot)

	t.Setenv("TOGGLE_LOG_LEVEL", "loud")
	_, err := run(t, "eval", "--file", path, "--toggle", "banner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOGGLE_LOG_LEVEL")

	t.Setenv("TOGGLE_LOG_LEVEL", "debug")
	t.Setenv("TOGGLE_LOG_FORMAT", "xml")
	_, err = run(t, "eval", "--file", path, "--toggle", "banner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOGGLE_LOG_FORMAT")
}
