package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginSucceeded is a no-op.
func (n *NoopRecorder) IncLoginSucceeded() {}

// IncLoginFailed is a no-op.
func (n *NoopRecorder) IncLoginFailed() {}

// IncQuotaAllowed is a no-op.
func (n *NoopRecorder) IncQuotaAllowed() {}

// IncQuotaDenied is a no-op.
func (n *NoopRecorder) IncQuotaDenied() {}

// IncTaskCreated is a no-op.
func (n *NoopRecorder) IncTaskCreated() {}

// IncTaskUpdated is a no-op.
func (n *NoopRecorder) IncTaskUpdated() {}

// IncTaskDeleted is a no-op.
func (n *NoopRecorder) IncTaskDeleted() {}
