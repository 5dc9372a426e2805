// Package decision implements the decision engine: the ordered cascade that
// turns an experiment (or feature flag) plus a user into a variation.
//
// # Experiment cascade
//
// DecideExperiment applies rules in strict order; the first applicable rule
// wins and evaluation stops:
//
//  1. status gate — only Running experiments decide, forced variations
//     included
//  2. forced variation — runtime override table, then datafile whitelist
//  3. user profile — sticky bucketing via the UserProfileService, when one
//     is configured; stale variation ids are cache misses
//  4. mutual exclusion — random-policy groups pre-bucket the user over the
//     group's allocation; losing the draw ends the cascade
//  5. audience evaluation — listed audiences OR'd, none means everyone
//  6. bucketing — hash assignment over the experiment's traffic table,
//     persisted best-effort to the profile service
//
// "No decision" is expressed as a nil variation with a nil error; callers
// must not activate or dispatch impressions for it.
//
// # Feature decisions
//
// DecideFeature tries the flag's experiments in declaration order, then the
// rollout's rules in order. Rollout rules are independent audience gates:
// forced variations, profiles and group exclusion do not apply to them. The
// decision Source distinguishes experiment, rollout and none — only
// experiment-sourced decisions are impression-worthy.
//
// # Error policy
//
// Evaluation failures flow through the pluggable ErrorHandler. The default
// NoOpHandler logs and swallows, so callers see zero-value results; the
// RaiseHandler propagates errors to the caller instead. Profile lookups and
// saves are always best-effort regardless of policy.
package decision
