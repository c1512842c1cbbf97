package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spending/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other", errors.New("invalid input"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isConnectionError(tt.err))
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "ledger", queueName: "ledger-events"}

	assert.False(t, client.isCircuitOpen(), "closed initially")

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	assert.True(t, client.isCircuitOpen(), "open after max failures")

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	assert.False(t, client.isCircuitOpen(), "half-open after timeout")
	assert.Equal(t, StateHalfOpen, atomic.LoadInt32(&client.state))

	client.recordFailure()
	assert.Equal(t, StateOpen, atomic.LoadInt32(&client.state), "a half-open failure reopens")

	client.recordSuccess()
	assert.False(t, client.isCircuitOpen())
	assert.Zero(t, atomic.LoadInt64(&client.failureCount))
}

func TestClient_PublishGuards(t *testing.T) {
	client := &Client{exchangeName: "ledger", queueName: "ledger-events"}
	ev := NewLedgerEvent(BudgetSaved, "b1", core.Period{Month: 1, Year: 2024})

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	err := client.Publish(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")

	client.recordSuccess()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, client.Publish(ctx, ev))

	err = client.Publish(context.Background(), ev)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, int64(1), atomic.LoadInt64(&client.failureCount))
	assert.ErrorIs(t, client.HealthCheck(), ErrNotConnected)
}

type fakeAck struct {
	acks, nacks, requeues int
}

func (f *fakeAck) Ack(uint64, bool) error { f.acks++; return nil }
func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacks++
	if requeue {
		f.requeues++
	}
	return nil
}
func (f *fakeAck) Reject(uint64, bool) error { return nil }

func TestHandleDelivery(t *testing.T) {
	body, err := NewLedgerEvent(TransactionCreated, "t1", core.Period{Month: 3, Year: 2024}).ToJSON()
	require.NoError(t, err)

	t.Run("ack on success", func(t *testing.T) {
		ack := &fakeAck{}
		var got *LedgerEvent
		handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: body},
			func(_ context.Context, e *LedgerEvent) error { got = e; return nil })
		assert.Equal(t, 1, ack.acks)
		require.NotNil(t, got)
		assert.Equal(t, "t1", got.EntityID)
	})

	t.Run("requeue on handler failure", func(t *testing.T) {
		ack := &fakeAck{}
		handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: body},
			func(context.Context, *LedgerEvent) error { return errors.New("export failed") })
		assert.Equal(t, 1, ack.requeues)
		assert.Zero(t, ack.acks)
	})

	t.Run("drop undecodable", func(t *testing.T) {
		ack := &fakeAck{}
		called := false
		handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: []byte(`{"type":"nope"}`)},
			func(context.Context, *LedgerEvent) error { called = true; return nil })
		assert.False(t, called)
		assert.Equal(t, 1, ack.nacks)
		assert.Zero(t, ack.requeues)
	})
}
