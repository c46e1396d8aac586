package ws

import (
	"context"
	"sync"
	"time"

	"ledger-service/internal/domain"

	"go.uber.org/zap"
)

const defaultSendTimeout = 10 * time.Second

// Subscriber is one live connection registered for ledger pushes. Send may be
// called from several goroutines and must serialize its own writes; a non-nil
// error means the connection is no longer deliverable.
type Subscriber interface {
	ID() string
	Send(ctx context.Context, event domain.Event) error
	Close() error
}

// TotalSource yields the current unfiltered outstanding total.
type TotalSource interface {
	CurrentTotal(ctx context.Context) (int64, error)
}

type entry struct {
	sub Subscriber
	// mu orders deliveries per subscriber; the initial total holds it so that
	// it is always the first message a new subscriber sees.
	mu sync.Mutex
}

func (e *entry) send(ctx context.Context, event domain.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sub.Send(ctx, event)
}

// Manager is the process-wide subscriber registry.
type Manager struct {
	mu          sync.RWMutex
	entries     map[string]*entry
	totals      TotalSource
	logger      *zap.Logger
	sendTimeout time.Duration
}

func NewManager(totals TotalSource, logger *zap.Logger) *Manager {
	return &Manager{
		entries:     make(map[string]*entry),
		totals:      totals,
		logger:      logger,
		sendTimeout: defaultSendTimeout,
	}
}

// WithSendTimeout bounds each individual delivery. Non-positive values keep
// the default.
func (m *Manager) WithSendTimeout(d time.Duration) *Manager {
	if d > 0 {
		m.sendTimeout = d
	}
	return m
}

// Subscribe registers the subscriber and sends it the current unfiltered
// total. If the total cannot be computed or delivered the subscriber is
// removed again and the error returned.
func (m *Manager) Subscribe(ctx context.Context, sub Subscriber) error {
	e := &entry{sub: sub}
	e.mu.Lock()
	defer e.mu.Unlock()

	m.mu.Lock()
	if old, exists := m.entries[sub.ID()]; exists && old.sub != sub {
		go old.sub.Close()
	}
	m.entries[sub.ID()] = e
	count := len(m.entries)
	m.mu.Unlock()

	subscribersGauge.Set(float64(count))
	m.logger.Info("subscriber connected",
		zap.String("subscriber_id", sub.ID()),
		zap.Int("total_subscribers", count))

	total, err := m.totals.CurrentTotal(ctx)
	if err != nil {
		m.logger.Error("failed to compute initial outstanding total",
			zap.String("subscriber_id", sub.ID()),
			zap.Error(err))
		m.remove(e)
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.sendTimeout)
	defer cancel()
	if err := sub.Send(sendCtx, domain.OutstandingTotalEvent(total)); err != nil {
		deliveriesTotal.WithLabelValues("failed").Inc()
		m.logger.Warn("failed to send initial outstanding total",
			zap.String("subscriber_id", sub.ID()),
			zap.Error(err))
		m.remove(e)
		return err
	}
	deliveriesTotal.WithLabelValues("delivered").Inc()

	return nil
}

// Unsubscribe removes the subscriber. Removing an unknown subscriber is a no-op.
func (m *Manager) Unsubscribe(sub Subscriber) {
	m.mu.RLock()
	e, ok := m.entries[sub.ID()]
	m.mu.RUnlock()
	if !ok || e.sub != sub {
		return
	}
	m.remove(e)
}

func (m *Manager) remove(e *entry) bool {
	m.mu.Lock()
	current, ok := m.entries[e.sub.ID()]
	if !ok || current != e {
		m.mu.Unlock()
		return false
	}
	delete(m.entries, e.sub.ID())
	count := len(m.entries)
	m.mu.Unlock()

	subscribersGauge.Set(float64(count))
	m.logger.Info("subscriber disconnected",
		zap.String("subscriber_id", e.sub.ID()),
		zap.Int("total_subscribers", count))
	return true
}

// Broadcast delivers the event to every registered subscriber concurrently.
// Subscribers whose delivery fails are unsubscribed and closed once all
// sends have finished; failures are never returned to the caller.
func (m *Manager) Broadcast(ctx context.Context, event domain.Event) {
	m.mu.RLock()
	targets := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		targets = append(targets, e)
	}
	m.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
		failed []*entry
	)
	for _, e := range targets {
		wg.Add(1)
		go func(e *entry) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, m.sendTimeout)
			defer cancel()

			if err := e.send(sendCtx, event); err != nil {
				m.logger.Warn("failed WS broadcast",
					zap.String("subscriber_id", e.sub.ID()),
					zap.String("event_type", event.Type),
					zap.Error(err))
				failMu.Lock()
				failed = append(failed, e)
				failMu.Unlock()
				return
			}
			deliveriesTotal.WithLabelValues("delivered").Inc()
		}(e)
	}
	wg.Wait()

	for _, e := range failed {
		deliveriesTotal.WithLabelValues("failed").Inc()
		if m.remove(e) {
			_ = e.sub.Close()
		}
	}

	m.logger.Debug("broadcast completed",
		zap.String("event_type", event.Type),
		zap.Int("targets", len(targets)),
		zap.Int("failed", len(failed)))
}

// BroadcastUpdate pushes the standard outstanding_total envelope.
func (m *Manager) BroadcastUpdate(ctx context.Context, total int64) {
	m.Broadcast(ctx, domain.OutstandingTotalEvent(total))
}

// Count returns the number of live subscribers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close drains the registry and closes every subscriber.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		_ = e.sub.Close()
	}
	subscribersGauge.Set(0)
	m.logger.Info("subscriber registry drained", zap.Int("closed", len(entries)))
}
