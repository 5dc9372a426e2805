// Package projectconfig models the parsed experiment configuration the
// decision engine operates over.
//
// A Datafile aggregates experiments, mutual-exclusion groups, audiences,
// feature flags, rollouts, attributes and events. ProjectConfig wraps one
// datafile with key and id indices built once at construction; lookups after
// that are plain map reads and never allocate.
//
// Parsing the raw datafile payload is the host's concern: the types carry
// JSON tags so that encoding/json (or any compatible decoder) can produce a
// Datafile directly, but this package never touches raw bytes.
//
// # Mutability
//
// Everything in a ProjectConfig is logically immutable after New except the
// runtime forced-variation table, which supports per-user overrides keyed by
// (experiment key, user id). The table is guarded by a read-write mutex and
// is safe to mutate concurrently with decision evaluation.
//
// # Usage
//
//	var df projectconfig.Datafile
//	if err := json.Unmarshal(raw, &df); err != nil { ... }
//
//	cfg, err := projectconfig.New(df)
//	if err != nil { ... }
//
//	exp, err := cfg.ExperimentByKey("checkout_flow")
//	if errors.Is(err, projectconfig.ErrExperimentNotFound) { ... }
package projectconfig
