// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLoginSucceeded()
	IncLoginFailed()

	// Quota gate metrics
	IncQuotaAllowed()
	IncQuotaDenied()

	// Task management metrics
	IncTaskCreated()
	IncTaskUpdated()
	IncTaskDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
