package notification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/experimentkit/pkg/notification"
)

func TestDecisionListeners(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ReceivesNotification", func(t *testing.T) {
		t.Parallel()
		center := notification.NewCenter()

		var got notification.Decision
		center.OnDecision(func(n notification.Decision) { got = n })

		center.SendDecision(ctx, notification.Decision{
			Type:          notification.DecisionExperiment,
			UserID:        "userId",
			ExperimentKey: "etag1",
			VariationKey:  "vtag1",
		})

		assert.Equal(t, "etag1", got.ExperimentKey)
		assert.Equal(t, "vtag1", got.VariationKey)
		assert.Equal(t, notification.DecisionExperiment, got.Type)
	})

	t.Run("RegistrationOrder", func(t *testing.T) {
		t.Parallel()
		center := notification.NewCenter()

		var order []string
		center.OnDecision(func(notification.Decision) { order = append(order, "first") })
		center.OnDecision(func(notification.Decision) { order = append(order, "second") })

		center.SendDecision(ctx, notification.Decision{})
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("RemoveStopsDelivery", func(t *testing.T) {
		t.Parallel()
		center := notification.NewCenter()

		calls := 0
		id := center.OnDecision(func(notification.Decision) { calls++ })

		center.SendDecision(ctx, notification.Decision{})
		center.Remove(id)
		center.SendDecision(ctx, notification.Decision{})

		assert.Equal(t, 1, calls)
	})

	t.Run("RemoveUnknownIDIsNoOp", func(t *testing.T) {
		t.Parallel()
		center := notification.NewCenter()
		center.Remove(42)
	})

	t.Run("NilListenerIgnored", func(t *testing.T) {
		t.Parallel()
		center := notification.NewCenter()
		assert.Equal(t, 0, center.OnDecision(nil))
		center.SendDecision(ctx, notification.Decision{})
	})

	t.Run("PanickingListenerIsIsolated", func(t *testing.T) {
		t.Parallel()
		center := notification.NewCenter()

		center.OnDecision(func(notification.Decision) { panic("listener bug") })
		delivered := false
		center.OnDecision(func(notification.Decision) { delivered = true })

		require.NotPanics(t, func() {
			center.SendDecision(ctx, notification.Decision{})
		})
		assert.True(t, delivered)
	})
}

func TestTrackListeners(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ReceivesNotification", func(t *testing.T) {
		t.Parallel()
		center := notification.NewCenter()

		var got notification.Track
		center.OnTrack(func(n notification.Track) { got = n })

		center.SendTrack(ctx, notification.Track{EventKey: "clicked_cart", UserID: "userId"})
		assert.Equal(t, "clicked_cart", got.EventKey)
		assert.Equal(t, "userId", got.UserID)
	})

	t.Run("DecisionListenersDoNotReceiveTracks", func(t *testing.T) {
		t.Parallel()
		center := notification.NewCenter()

		decisions := 0
		tracks := 0
		center.OnDecision(func(notification.Decision) { decisions++ })
		center.OnTrack(func(notification.Track) { tracks++ })

		center.SendTrack(ctx, notification.Track{})
		assert.Equal(t, 0, decisions)
		assert.Equal(t, 1, tracks)
	})
}
