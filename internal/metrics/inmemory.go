package metrics

import "sync"

// InMemoryRecorder implements Recorder with in-process counters.
// Useful for tests and the /metrics debug endpoint.
type InMemoryRecorder struct {
	mu                  sync.Mutex
	submissionsCreated  int64
	submissionsRejected map[string]int64
	reviewsApplied      map[string]int64
	snapshotsDelivered  int64
	activeSubscriptions int64
	authFailures        map[string]int64
}

// NewInMemory returns a Recorder backed by in-process counters.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		submissionsRejected: make(map[string]int64),
		reviewsApplied:      make(map[string]int64),
		authFailures:        make(map[string]int64),
	}
}

// IncSubmissionCreated increments the created counter.
func (r *InMemoryRecorder) IncSubmissionCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissionsCreated++
}

// IncSubmissionRejected increments the rejection counter for a reason.
func (r *InMemoryRecorder) IncSubmissionRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissionsRejected[reason]++
}

// IncReviewApplied increments the review counter for a status.
func (r *InMemoryRecorder) IncReviewApplied(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviewsApplied[status]++
}

// IncSnapshotDelivered increments the snapshot delivery counter.
func (r *InMemoryRecorder) IncSnapshotDelivered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshotsDelivered++
}

// SetActiveSubscriptions records the current subscription count.
func (r *InMemoryRecorder) SetActiveSubscriptions(count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeSubscriptions = count
}

// IncAuthFailure increments the auth failure counter for a reason.
func (r *InMemoryRecorder) IncAuthFailure(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authFailures[reason]++
}

// Snapshot returns a copy of the current counters.
func (r *InMemoryRecorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	rejected := make(map[string]int64, len(r.submissionsRejected))
	for k, v := range r.submissionsRejected {
		rejected[k] = v
	}
	reviews := make(map[string]int64, len(r.reviewsApplied))
	for k, v := range r.reviewsApplied {
		reviews[k] = v
	}
	failures := make(map[string]int64, len(r.authFailures))
	for k, v := range r.authFailures {
		failures[k] = v
	}

	return Snapshot{
		SubmissionsCreated:  r.submissionsCreated,
		SubmissionsRejected: rejected,
		ReviewsApplied:      reviews,
		SnapshotsDelivered:  r.snapshotsDelivered,
		ActiveSubscriptions: r.activeSubscriptions,
		AuthFailures:        failures,
	}
}
