package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"expcat/internal/log"
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
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
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
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"closed", amqp091.ErrClosed, true},
		{"wrapped closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"other", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func newTestPublisher() *Publisher {
	return &Publisher{
		exchangeName: "expcat",
		queueName:    "imports",
		logger:       log.Discard(),
	}
}

func TestCircuitBreaker(t *testing.T) {
	p := newTestPublisher()

	if p.isCircuitOpen() {
		t.Fatal("circuit should start closed")
	}

	for i := 0; i < maxFailures; i++ {
		p.recordFailure()
	}
	if !p.isCircuitOpen() {
		t.Fatal("circuit should open after max failures")
	}

	p.failureMu.Lock()
	p.lastFailure = time.Now().Add(-openTimeout - time.Second)
	p.failureMu.Unlock()
	if p.isCircuitOpen() {
		t.Fatal("circuit should half-open after the timeout")
	}
	if atomic.LoadInt32(&p.state) != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", p.state)
	}

	p.recordFailure()
	if !p.isCircuitOpen() {
		t.Fatal("a failure while half-open should reopen the circuit")
	}

	p.recordSuccess()
	if p.isCircuitOpen() || atomic.LoadInt64(&p.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset failures")
	}
}

func TestPublishImportCompleted(t *testing.T) {
	msg := &ImportCompletedMessage{SessionID: "s1"}

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := newTestPublisher().PublishImportCompleted(ctx, msg)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	t.Run("open circuit", func(t *testing.T) {
		p := newTestPublisher()
		atomic.StoreInt32(&p.state, StateOpen)
		p.lastFailure = time.Now()
		if err := p.PublishImportCompleted(context.Background(), msg); !errors.Is(err, ErrCircuitOpen) {
			t.Errorf("err = %v, want ErrCircuitOpen", err)
		}
	})

	t.Run("not connected counts as failure", func(t *testing.T) {
		p := newTestPublisher()
		if err := p.PublishImportCompleted(context.Background(), msg); err == nil {
			t.Fatal("expected error without a connection")
		}
		if atomic.LoadInt64(&p.failureCount) != 1 {
			t.Errorf("failureCount = %d, want 1", p.failureCount)
		}
	})
}

func TestImportCompletedMessageJSON(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ImportCompletedMessage{
		SessionID:    "abc",
		FileName:     "jan.csv",
		Rows:         3,
		TotalExpense: "17.80",
		Categories:   map[string]int{"Food & Dining": 1},
		Timestamp:    ts,
	}
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := ImportCompletedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if got.SessionID != "abc" || got.Rows != 3 || got.Categories["Food & Dining"] != 1 || !got.Timestamp.Equal(ts) {
		t.Errorf("decoded = %+v", got)
	}

	if _, err := ImportCompletedMessageFromJSON([]byte(`{"rows":"many"}`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
