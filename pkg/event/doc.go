// Package event defines the boundary between the decision engine and the
// analytics delivery pipeline.
//
// An Event captures an impression (a user was served a variation) or a
// conversion (a tracked action). The SDK deliberately defines no wire
// format: Dispatcher implementations own serialization and transport, and a
// failing dispatch never fails the decision that produced the event.
//
// Three dispatchers ship with the package:
//
//   - LogDispatcher writes events to the structured log (development default)
//   - MemoryDispatcher accumulates events for tests and inspection
//   - BatchProcessor wraps another dispatcher, enqueueing without blocking
//     and flushing batches from a background worker
//
// # Usage
//
//	processor, err := event.NewBatchProcessor(sink,
//		event.WithBatchSize(50),
//		event.WithFlushInterval(10*time.Second),
//	)
//	if err != nil { ... }
//	if err := processor.Start(ctx); err != nil { ... }
//	defer processor.Stop()
//
// Stop drains and flushes accepted events before returning.
package event
