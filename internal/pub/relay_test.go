package pub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"ledger-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingLocal struct {
	mu     sync.Mutex
	events []domain.Event
}

func (l *recordingLocal) Broadcast(_ context.Context, event domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingLocal) snapshot() []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Event(nil), l.events...)
}

func startRelay(t *testing.T, mr *miniredis.Miniredis, local LocalBroadcaster) (*RedisRelay, context.CancelFunc, <-chan error) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	relay := NewRedisRelay(rdb, "test_ledger", local, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, relay.Subscribed, 2*time.Second, 10*time.Millisecond)
	return relay, cancel, done
}

func TestRelay_DeliversToEveryInstance(t *testing.T) {
	mr := miniredis.RunT(t)

	localA, localB := &recordingLocal{}, &recordingLocal{}
	relayA, cancelA, doneA := startRelay(t, mr, localA)
	_, cancelB, doneB := startRelay(t, mr, localB)

	relayA.BroadcastUpdate(context.Background(), 190000)

	for _, local := range []*recordingLocal{localA, localB} {
		require.Eventually(t, func() bool { return len(local.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
		got := local.snapshot()[0]
		assert.Equal(t, domain.EventOutstandingTotal, got.Type)

		raw, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"outstanding_total","data":{"total":190000}}`, string(raw))
	}

	cancelA()
	cancelB()
	assert.NoError(t, <-doneA)
	assert.NoError(t, <-doneB)
}

func TestRelay_PublishFailureFallsBackToLocal(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer rdb.Close()
	mr.Close()

	local := &recordingLocal{}
	relay := NewRedisRelay(rdb, "", local, zap.NewNop())

	relay.Broadcast(context.Background(), domain.Event{Type: domain.EventPartyDeleted, Data: domain.DeletedData{ID: 3}})

	got := local.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventPartyDeleted, got[0].Type)
	assert.Equal(t, domain.DeletedData{ID: 3}, got[0].Data)
}

func TestRelay_DeliversLocallyWhileUnsubscribed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	local := &recordingLocal{}
	relay := NewRedisRelay(rdb, "test_ledger", local, zap.NewNop())
	require.False(t, relay.Subscribed())

	relay.BroadcastUpdate(context.Background(), 42)

	got := local.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, domain.OutstandingTotalEvent(42), got[0])
}

func TestRelay_LocalFallbackStopsOnceSubscribed(t *testing.T) {
	mr := miniredis.RunT(t)

	local := &recordingLocal{}
	relay, cancel, done := startRelay(t, mr, local)

	relay.BroadcastUpdate(context.Background(), 7)

	require.Eventually(t, func() bool { return len(local.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, local.snapshot(), 1)

	cancel()
	require.NoError(t, <-done)
	assert.False(t, relay.Subscribed())
}

func TestRelay_DropsMalformedMessages(t *testing.T) {
	local := &recordingLocal{}
	relay := NewRedisRelay(nil, "", local, zap.NewNop())

	relay.deliver(context.Background(), "not json")
	relay.deliver(context.Background(), `{"data":{}}`)

	assert.Empty(t, local.snapshot())
}

func TestEncodeEvent(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := encodeEvent(&domain.LedgerEvent{
		ID:         "evt-1",
		Type:       "transaction.created",
		Key:        "42",
		OccurredAt: at,
		Data:       map[string]int{"amount": 10},
	})
	require.NoError(t, err)

	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.JSONEq(t, `{"id":"evt-1","type":"transaction.created","key":"42","occurred_at":"2024-01-02T03:04:05Z","data":{"amount":10}}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "transaction.created", string(msg.Headers[0].Value))
}
