// Package metrics exposes Prometheus collectors for the dispatcher.
//
// A Collector counts dispatched requests by extension and status, times them,
// and counts view cache lookups by kind and outcome. It satisfies dispatch.Recorder
// and its Observe method can be handed to dispatch.WithObserver.
package metrics
