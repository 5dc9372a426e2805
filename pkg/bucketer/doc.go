// Package bucketer implements deterministic hash-based traffic assignment.
//
// A bucket value is derived from MurmurHash3 (x86 32-bit, fixed seed) over
// the concatenation of the bucketing key and the entity id, scaled into the
// traffic space [0, 10000). An ordered allocation table then partitions that
// space into contiguous ranges, each owned by a variation or experiment id.
//
// The hash step must stay bit-exact across SDK implementations: datafiles
// and previously bucketed users assume every SDK agrees on the mapping.
// Do not replace the hash function, the seed, or the scaling ratio.
//
// # Usage
//
//	b := bucketer.New()
//	entityID, ok := b.BucketToEntity(ctx, userID, experiment.ID, experiment.TrafficAllocation)
//	if !ok {
//		// user is outside the experiment's traffic
//	}
//
// Bucketing is pure computation; no I/O and no randomness are involved.
package bucketer
