package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mailvend/mailvend/internal/engine"
	"github.com/mailvend/mailvend/internal/metrics"
	"github.com/mailvend/mailvend/internal/model"
	"github.com/mailvend/mailvend/internal/repository"
)

// Lister runs the snapshot query behind a subscription.
// *repository.Repository satisfies it.
type Lister interface {
	ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]*model.Submission, error)
}

// Hub turns change events into full ordered snapshots, scoped to the
// subscribing identity's visibility.
type Hub struct {
	feed    Feed
	lister  Lister
	logger  *slog.Logger
	metrics metrics.Recorder
	active  atomic.Int64
}

// NewHub creates a Hub.
func NewHub(feed Feed, lister Lister, logger *slog.Logger, recorder metrics.Recorder) *Hub {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Hub{
		feed:    feed,
		lister:  lister,
		logger:  logger.With("component", "live.hub"),
		metrics: recorder,
	}
}

// Subscription is a live view of the submissions visible to one identity.
// Each value on Snapshots fully replaces the previous list.
type Subscription struct {
	snapshots chan []*model.Submission
	stop      chan struct{}
	once      sync.Once
	done      sync.WaitGroup
}

// Snapshots returns the snapshot channel. It is closed after Cancel or
// when the subscription's context ends.
func (s *Subscription) Snapshots() <-chan []*model.Submission {
	return s.snapshots
}

// Cancel tears down the subscription. It is idempotent, and when it
// returns no further snapshot will be delivered, so a superseded
// subscription can never leak data into its successor's view.
func (s *Subscription) Cancel() {
	s.once.Do(func() { close(s.stop) })
	s.done.Wait()
}

// Subscribe establishes the live subscription for an identity. The first
// snapshot is delivered immediately; afterwards every change event
// triggers a fresh query. Requires an authenticated identity.
func (h *Hub) Subscribe(ctx context.Context, access model.AccessContext) (*Subscription, error) {
	filter, err := engine.VisibilityFilter(access)
	if err != nil {
		return nil, err
	}

	events, stopFeed, err := h.feed.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		snapshots: make(chan []*model.Submission, 1),
		stop:      make(chan struct{}),
	}

	h.metrics.SetActiveSubscriptions(h.active.Add(1))

	sub.done.Add(1)
	go func() {
		defer sub.done.Done()
		defer h.metrics.SetActiveSubscriptions(h.active.Add(-1))
		defer close(sub.snapshots)
		defer stopFeed()

		h.deliver(ctx, filter, sub)

		for {
			select {
			case <-sub.stop:
				return
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				h.deliver(ctx, filter, sub)
			}
		}
	}()

	return sub, nil
}

// deliver queries the current snapshot and hands it to the subscriber.
// A query failure keeps the subscriber on its last delivered snapshot.
func (h *Hub) deliver(ctx context.Context, filter repository.SubmissionFilter, sub *Subscription) {
	subs, err := h.lister.ListSubmissions(ctx, filter)
	if err != nil {
		h.logger.Warn("snapshot query failed, keeping last snapshot", "error", err)
		return
	}

	model.SortNewestFirst(subs)

	// Replace any undelivered snapshot so a slow reader always sees the
	// latest state next.
	select {
	case <-sub.snapshots:
	default:
	}

	select {
	case sub.snapshots <- subs:
		h.metrics.IncSnapshotDelivered()
	case <-sub.stop:
	case <-ctx.Done():
	}
}
