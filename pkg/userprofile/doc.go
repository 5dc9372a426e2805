// Package userprofile provides implementations of the decision service's
// UserProfileService contract: storage of previously made bucketing
// decisions so returning users keep their variations.
//
// Two stores are included. Memory keeps profiles in-process behind a
// read-write mutex, optionally capped with WithMaxEntries; it is the right
// choice for tests and single-instance hosts. Redis keeps one hash per user
// keyed by experiment id, giving sticky bucketing across replicas, with an
// optional TTL refreshed on every save.
//
// The decision service treats profile operations as best-effort, so both
// stores report failures as errors and leave retry policy to the caller.
//
// # Usage
//
//	var cfg userprofile.Config
//	if err := config.Load(&cfg); err != nil { ... }
//
//	client, err := userprofile.Connect(ctx, cfg)
//	if err != nil { ... }
//
//	profiles, err := userprofile.NewRedis(client,
//		userprofile.WithProfileTTL(cfg.ProfileTTL),
//	)
package userprofile
