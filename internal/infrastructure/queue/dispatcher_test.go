package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sal22/qanda-api/internal/core/ports"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []ports.Mail
	fail map[string]bool
	done chan struct{}
}

func newRecordingSender(expect int) *recordingSender {
	return &recordingSender{fail: map[string]bool{}, done: make(chan struct{}, expect)}
}

func (s *recordingSender) Send(_ context.Context, m ports.Mail) error {
	s.mu.Lock()
	s.sent = append(s.sent, m)
	failed := s.fail[m.Subject]
	s.mu.Unlock()
	s.done <- struct{}{}
	if failed {
		return errors.New("smtp down")
	}
	return nil
}

func (s *recordingSender) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for mail %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_PreservesPerRecipientOrder(t *testing.T) {
	sender := newRecordingSender(20)
	d := NewDispatcher(3, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	subjects := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	for _, s := range subjects {
		d.Enqueue(ports.Mail{To: "alice@example.com", Subject: s})
		d.Enqueue(ports.Mail{To: "bob@example.com", Subject: s})
	}
	sender.wait(t, 20)
	cancel()
	d.Wait()

	var alice []string
	for _, m := range sender.sent {
		if m.To == "alice@example.com" {
			alice = append(alice, m.Subject)
		}
	}
	assert.Equal(t, subjects, alice)
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	sender := newRecordingSender(2)
	sender.fail["first"] = true
	d := NewDispatcher(1, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.Mail{To: "alice@example.com", Subject: "first"})
	d.Enqueue(ports.Mail{To: "alice@example.com", Subject: "second"})
	sender.wait(t, 2)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "second", sender.sent[1].Subject)
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	// Workers are not started, so the buffer fills up.
	d := NewDispatcher(1, newRecordingSender(0), zerolog.Nop())

	finished := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(ports.Mail{To: "alice@example.com"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full buffer")
	}
	assert.Len(t, d.workers[0], channelBuffer)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, newRecordingSender(0), zerolog.Nop())
	require.Len(t, d.workers, defaultWorkers)
	assert.Equal(t, d.shardIndex("alice@example.com"), d.shardIndex("alice@example.com"))
}

// gatedSender holds every Send until the gate is closed.
type gatedSender struct {
	*recordingSender
	gate chan struct{}
}

func (s *gatedSender) Send(ctx context.Context, m ports.Mail) error {
	select {
	case <-s.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.recordingSender.Send(ctx, m)
}

func TestDispatcher_DrainsQueuedMailOnShutdown(t *testing.T) {
	sender := &gatedSender{recordingSender: newRecordingSender(10), gate: make(chan struct{})}
	d := NewDispatcher(1, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		d.Enqueue(ports.Mail{To: "alice@example.com", Subject: string(rune('a' + i))})
	}
	cancel()
	close(sender.gate)

	stopped := make(chan struct{})
	go func() {
		d.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after draining")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 10)
	assert.Equal(t, "a", sender.sent[0].Subject)
	assert.Equal(t, "j", sender.sent[9].Subject)
	assert.Empty(t, d.workers[0])
}
