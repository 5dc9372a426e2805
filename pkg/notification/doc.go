// Package notification broadcasts decision and track outcomes to host
// application listeners.
//
// Listeners are called synchronously within the originating client call, in
// registration order. A panicking listener is recovered and logged; it never
// affects other listeners or the decision itself. Registration returns an id
// that removes the listener later.
//
// # Usage
//
//	center := notification.NewCenter()
//	id := center.OnDecision(func(n notification.Decision) {
//		metrics.Count("decisions", n.ExperimentKey, n.VariationKey)
//	})
//	defer center.Remove(id)
package notification
