// Package experimentkit is a server-side experimentation SDK: deterministic
// A/B test bucketing, feature flags with rollouts and typed variables, and
// asynchronous event tracking over a static project configuration.
//
// # Architecture
//
// The root package exposes the Client facade; the moving parts live in
// subpackages:
//
//   - pkg/projectconfig: the datafile model and its indexed ProjectConfig
//   - pkg/decision: the decision engine (forced variations, sticky bucketing,
//     mutex groups, audiences, traffic allocation)
//   - pkg/bucketer: MurmurHash3-based deterministic bucketing
//   - pkg/condition: audience condition trees
//   - pkg/userprofile: in-memory and Redis sticky-bucketing stores
//   - pkg/event: impression/conversion events, dispatchers, batch processing
//   - pkg/notification: decision and track listener registry
//
// Identical inputs always produce identical assignments: bucketing hashes the
// user id (or the $bucketing_id attribute when present) with the experiment
// id, so no coordination between processes is required.
//
// # Usage
//
//	cfg, err := projectconfig.New(datafile)
//	if err != nil {
//		return err
//	}
//
//	client, err := experimentkit.New(cfg,
//		experimentkit.WithLogger(log),
//		experimentkit.WithDispatcher(processor),
//		experimentkit.WithUserProfileService(userprofile.NewMemory()),
//	)
//	if err != nil {
//		return err
//	}
//
//	variation, err := client.Activate(ctx, "checkout_test", userID, attrs)
//	if err != nil {
//		return err
//	}
//	if variation != nil && variation.Key == "treatment" {
//		// serve the treatment experience
//	}
//
//	if on, _ := client.IsFeatureEnabled(ctx, "new_search", userID, attrs); on {
//		// feature path
//	}
//
// # Error Handling
//
// Config and evaluation errors flow through a pluggable decision.ErrorHandler.
// The default NoOpHandler logs and swallows them, so a missing experiment key
// degrades to "no variation" instead of failing the request; install
// decision.NewRaiseHandler via WithErrorHandler to surface them as returned
// errors instead. Empty user ids are treated as caller-input hygiene: they are
// logged and produce zero-value results without involving the handler.
package experimentkit
