package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSubmissionCreated is a no-op.
func (n *NoopRecorder) IncSubmissionCreated() {}

// IncSubmissionRejected is a no-op.
func (n *NoopRecorder) IncSubmissionRejected(reason string) {}

// IncReviewApplied is a no-op.
func (n *NoopRecorder) IncReviewApplied(status string) {}

// IncSnapshotDelivered is a no-op.
func (n *NoopRecorder) IncSnapshotDelivered() {}

// SetActiveSubscriptions is a no-op.
func (n *NoopRecorder) SetActiveSubscriptions(count int64) {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure(reason string) {}
