// Package toggle evaluates feature toggles against a request context.
//
// A Snapshot is an ordered list of toggles fetched at one point in time. Each
// Toggle has a status, a strategy and a list of conditions. A condition is
// either an operator comparison on one context attribute or a rollout that
// buckets the subject identified by the "uuid" attribute.
//
// Basic usage:
//
//	snap, err := toggle.ParseSnapshot(payload, lastModified)
//	if err != nil {
//		return err
//	}
//
//	ev := toggle.NewEvaluator(toggle.WithLogger(logger))
//	res, err := ev.Evaluate(snap, "new-checkout", toggle.Attributes{
//		"uuid":    user.ID,
//		"country": "DE",
//	}, false, "")
//
// Evaluation never fails for lookup problems: an unknown toggle, an inactive
// status, a missing context or unmatched targeting resolve to the default.
// It fails only on authoring or integration bugs:
//
//   - ErrMissingStrategy: a toggle with conditions has no known strategy
//   - ErrMissingIdentifier: a rollout condition runs without "uuid" in context
//   - ErrParse: a numeric comparison got a non-numeric operand
//
// # Strategies
//
// ALL requires every condition and lets later rollout values override earlier
// ones. AT_LEAST_ONE returns on the first satisfied condition. MAJORITY needs
// strictly more satisfied than unsatisfied conditions.
//
// # Bucketing
//
// Rollouts hash identifier+"-"+toggleName with MD5 and map the first six hex
// digits onto 10000 buckets. Allocations take cumulative ranges in declaration
// order, so the same subject gets the same variation in every process.
//
// # Diffing
//
// ChangedKeys compares two snapshots toggle by toggle and returns the names
// that were added or changed.
package toggle
