package bucketer

import (
	"context"
	"log/slog"

	"github.com/twmb/murmur3"

	"github.com/dmitrymomot/experimentkit/pkg/logger"
)

const (
	// hashSeed is the fixed MurmurHash3 seed shared with companion SDKs.
	// Changing it would silently rebucket every user.
	hashSeed uint32 = 1

	// MaxTrafficValue is the exclusive upper bound of the bucket space.
	MaxTrafficValue = 10000

	// maxHashValue is 2^32, the number of distinct 32-bit hash outcomes.
	maxHashValue = float64(1 << 32)

	// BucketingIDAttribute is the reserved attribute key that, when present
	// and non-empty, overrides the user id as the bucketing key.
	BucketingIDAttribute = "$bucketing_id"
)

// Allocation assigns the bucket sub-range ending at EndOfRange (exclusive)
// to EntityID. An empty EntityID is the "no allocation" sentinel.
type Allocation struct {
	EntityID   string `json:"entityId"`
	EndOfRange int    `json:"endOfRange"`
}

// Bucketer deterministically maps a (bucketingID, entityID) pair to a bucket
// value in [0, MaxTrafficValue) and resolves it against an allocation table.
// The zero value is not usable; construct with New.
type Bucketer struct {
	logger *slog.Logger
}

// Option configures a Bucketer.
type Option func(*Bucketer)

// WithLogger sets the logger used for bucketing diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bucketer) {
		if log != nil {
			b.logger = log
		}
	}
}

// New creates a Bucketer.
func New(opts ...Option) *Bucketer {
	b := &Bucketer{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bucket computes the bucket value for the given bucketing key and entity id.
// The result is a pure function of its inputs: the same pair always yields
// the same bucket, across processes and across SDK implementations.
func (b *Bucketer) Bucket(bucketingID, entityID string) int {
	hash := murmur3.SeedStringSum32(hashSeed, bucketingID+entityID)
	return int(float64(hash) / maxHashValue * MaxTrafficValue)
}

// Allocate scans the allocation table in order and returns the entity id
// owning the first range whose end exceeds bucketValue. It returns false when
// the value falls beyond the last range or lands on the empty-id sentinel.
func (b *Bucketer) Allocate(bucketValue int, allocations []Allocation) (string, bool) {
	for _, alloc := range allocations {
		if bucketValue < alloc.EndOfRange {
			if alloc.EntityID == "" {
				return "", false
			}
			return alloc.EntityID, true
		}
	}
	return "", false
}

// BucketToEntity combines Bucket and Allocate, logging the computed bucket
// value and the resulting assignment.
func (b *Bucketer) BucketToEntity(ctx context.Context, bucketingID, entityID string, allocations []Allocation) (string, bool) {
	bucketValue := b.Bucket(bucketingID, entityID)

	assigned, ok := b.Allocate(bucketValue, allocations)
	if !ok {
		b.logger.LogAttrs(ctx, slog.LevelDebug, "Bucket value outside any allocated range",
			logger.BucketingID(bucketingID),
			logger.BucketValue(bucketValue),
		)
		return "", false
	}

	b.logger.LogAttrs(ctx, slog.LevelDebug, "Bucketed into entity",
		logger.BucketingID(bucketingID),
		logger.BucketValue(bucketValue),
		slog.String("entity_id", assigned),
	)
	return assigned, true
}
