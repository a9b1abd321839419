// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Submission lifecycle metrics
	IncSubmissionCreated()
	IncSubmissionRejected(reason string) // reason: "empty", "invalid_domain", "duplicate"
	IncReviewApplied(status string)

	// Live sync metrics
	IncSnapshotDelivered()
	SetActiveSubscriptions(count int64)

	// Identity metrics
	IncAuthFailure(reason string) // reason: "credentials", "session", "unauthorized"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Snapshot holds a point-in-time view of the counters.
type Snapshot struct {
	SubmissionsCreated  int64
	SubmissionsRejected map[string]int64
	ReviewsApplied      map[string]int64
	SnapshotsDelivered  int64
	ActiveSubscriptions int64
	AuthFailures        map[string]int64
}
