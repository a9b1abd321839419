package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mailvend/mailvend/internal/model"
)

// Feed delivers change notifications for the submission collection.
// Subscribe returns the event channel and a stop function; calling stop
// releases the underlying subscription and eventually closes the channel.
type Feed interface {
	Subscribe(ctx context.Context) (<-chan model.SubmissionChange, func(), error)
}

// feedBufferSize bounds undelivered events per subscriber. Subscribers
// re-query the full snapshot on any event, so dropping an event while
// another is already queued loses nothing.
const feedBufferSize = 16

// RedisFeed implements Feed over a Redis pub/sub channel.
type RedisFeed struct {
	redis   *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisFeed creates a change feed for a deployment.
func NewRedisFeed(client *redis.Client, appID string, logger *slog.Logger) *RedisFeed {
	return &RedisFeed{
		redis:   client,
		channel: ChangeChannel(appID),
		logger:  logger.With("component", "live.feed"),
	}
}

// Subscribe opens a pub/sub subscription and decodes incoming events.
func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan model.SubmissionChange, func(), error) {
	pubsub := f.redis.Subscribe(ctx, f.channel)

	// Confirm the subscription before handing out the channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to change channel: %w", err)
	}

	out := make(chan model.SubmissionChange, feedBufferSize)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var change model.SubmissionChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				f.logger.Warn("malformed change event", "error", err)
				continue
			}

			select {
			case out <- change:
			default:
				// Buffer full: an event is already pending for this
				// subscriber, which triggers the same re-query.
			}
		}
	}()

	stop := func() { _ = pubsub.Close() }
	return out, stop, nil
}
