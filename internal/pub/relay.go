package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"ledger-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultRelayChannel = "ledger_events"

// LocalBroadcaster delivers to the subscribers connected to this instance.
type LocalBroadcaster interface {
	Broadcast(ctx context.Context, event domain.Event)
}

// RedisRelay spreads notifier messages across instances. Broadcast publishes
// to a redis channel; every instance, including the publisher, receives the
// message in Run and hands it to its local registry, so each subscriber gets
// it exactly once. If publishing fails, or this instance is not subscribed at
// the moment, the event is delivered locally as well.
type RedisRelay struct {
	rdb        redis.UniversalClient
	channel    string
	local      LocalBroadcaster
	logger     *zap.Logger
	subscribed atomic.Bool
}

func NewRedisRelay(rdb redis.UniversalClient, channel string, local LocalBroadcaster, logger *zap.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		local:   local,
		logger:  logger,
	}
}

type relayEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (r *RedisRelay) Broadcast(ctx context.Context, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("failed to encode relay event", zap.String("event_type", event.Type), zap.Error(err))
		r.local.Broadcast(ctx, event)
		return
	}

	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil {
		relayMessages.WithLabelValues("out", "failed").Inc()
		r.logger.Warn("relay publish failed, delivering locally",
			zap.String("channel", r.channel),
			zap.String("event_type", event.Type),
			zap.Error(err))
		r.local.Broadcast(ctx, event)
		return
	}
	relayMessages.WithLabelValues("out", "ok").Inc()

	// Other instances may still be listening, so the receiver count says
	// nothing about our own subscribers.
	if !r.subscribed.Load() {
		relayMessages.WithLabelValues("out", "local").Inc()
		r.local.Broadcast(ctx, event)
	}
}

// Subscribed reports whether Run currently holds a live subscription.
func (r *RedisRelay) Subscribed() bool {
	return r.subscribed.Load()
}

func (r *RedisRelay) BroadcastUpdate(ctx context.Context, total int64) {
	r.Broadcast(ctx, domain.OutstandingTotalEvent(total))
}

// Run subscribes to the relay channel and forwards every message to the
// local registry until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.subscribed.Store(true)
	defer r.subscribed.Store(false)
	r.logger.Info("relay subscribed", zap.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay stopped", zap.String("channel", r.channel))
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("relay channel %s closed", r.channel)
			}
			r.deliver(ctx, msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, payload string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil || env.Type == "" {
		relayMessages.WithLabelValues("in", "invalid").Inc()
		r.logger.Warn("dropping malformed relay message", zap.Error(err))
		return
	}
	relayMessages.WithLabelValues("in", "ok").Inc()
	r.local.Broadcast(ctx, domain.Event{Type: env.Type, Data: env.Data})
}
