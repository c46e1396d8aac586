package usecase

import (
	"context"
	"strings"
	"time"

	"ledger-service/internal/domain"
	"ledger-service/pkg/utils/id"

	"go.uber.org/zap"
)

// ChangeNotifier pushes events to live subscribers. Delivery failures are
// handled inside the notifier and never reach the caller.
type ChangeNotifier interface {
	Broadcast(ctx context.Context, event domain.Event)
	BroadcastUpdate(ctx context.Context, total int64)
}

// EventPublisher writes ledger events to the durable event log.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.LedgerEvent) error
}

// ChangePublisher fans a completed mutation out to subscribers and the
// event log. When the mutation can move the balance it recomputes the
// unfiltered total and broadcasts it once.
type ChangePublisher struct {
	notifier ChangeNotifier
	events   EventPublisher
	ledger   *LedgerUsecase
	logger   *zap.Logger
}

func NewChangePublisher(notifier ChangeNotifier, events EventPublisher, ledger *LedgerUsecase, logger *zap.Logger) *ChangePublisher {
	return &ChangePublisher{
		notifier: notifier,
		events:   events,
		ledger:   ledger,
		logger:   logger,
	}
}

// EntityChanged runs after the mutation has been committed. It detaches from
// the request context so a client hanging up does not skip the push.
func (p *ChangePublisher) EntityChanged(ctx context.Context, eventType, key string, data interface{}, totalChanged bool) {
	ctx = context.WithoutCancel(ctx)

	p.notifier.Broadcast(ctx, domain.Event{Type: eventType, Data: data})

	if totalChanged {
		total, err := p.ledger.CurrentTotal(ctx)
		if err != nil {
			p.logger.Error("failed to recompute outstanding total after change",
				zap.String("event_type", eventType),
				zap.Error(err))
		} else {
			p.notifier.BroadcastUpdate(ctx, total)
		}
	}

	if p.events == nil {
		return
	}
	event := &domain.LedgerEvent{
		ID:         id.GenerateEventID(),
		Type:       logEventType(eventType),
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	if err := p.events.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish ledger event",
			zap.String("event_type", event.Type),
			zap.String("key", key),
			zap.Error(err))
	}
}

// logEventType turns "transaction_type_updated" into "transaction_type.updated".
func logEventType(eventType string) string {
	i := strings.LastIndex(eventType, "_")
	if i < 0 {
		return eventType
	}
	return eventType[:i] + "." + eventType[i+1:]
}
