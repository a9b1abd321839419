// Package live provides the change feed and snapshot subscriptions that
// keep dashboards in sync with the submission collection.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mailvend/mailvend/internal/model"
)

// PublishTimeout is the max time to wait for a Redis publish.
const PublishTimeout = 100 * time.Millisecond

// ChangeChannel returns the pub/sub channel for a deployment.
// Namespacing by app id keeps deployments sharing one Redis apart.
func ChangeChannel(appID string) string {
	return "mailvend:" + appID + ":submission_changes"
}

// Publisher broadcasts submission change events over Redis pub/sub.
type Publisher struct {
	redis   *redis.Client
	channel string
	logger  *slog.Logger
}

// NewPublisher creates a change event publisher for a deployment.
func NewPublisher(client *redis.Client, appID string, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:   client,
		channel: ChangeChannel(appID),
		logger:  logger.With("component", "live.publisher"),
	}
}

// Publish broadcasts a change event synchronously.
func (p *Publisher) Publish(ctx context.Context, change model.SubmissionChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	if err := p.redis.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}

	return nil
}

// PublishAsync broadcasts without blocking the caller.
// Errors are logged but not returned (fire-and-forget); subscribers that
// miss an event catch up on the next one.
func (p *Publisher) PublishAsync(change model.SubmissionChange) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, change); err != nil {
			p.logger.Warn("failed to publish change event",
				"event_id", change.EventID,
				"submission_id", change.SubmissionID,
				"error", err,
			)
		}
	}()
}
