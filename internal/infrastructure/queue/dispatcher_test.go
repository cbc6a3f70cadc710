package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

type recordingService struct {
	mu        sync.Mutex
	delivered map[string][]string // address → subjects in delivery order
	wg        sync.WaitGroup
}

func newRecordingService(expect int) *recordingService {
	s := &recordingService{delivered: make(map[string][]string)}
	s.wg.Add(expect)
	return s
}

func (s *recordingService) List(context.Context, ports.ListMessagesInput) (*ports.MessageListResult, error) {
	panic("not used")
}

func (s *recordingService) Send(context.Context, ports.SendMessageInput) (*ports.SendMessageResult, error) {
	panic("not used")
}

func (s *recordingService) Deliver(_ context.Context, input ports.InboundMessageInput) error {
	s.mu.Lock()
	s.delivered[input.ToAddress] = append(s.delivered[input.ToAddress], input.Subject)
	s.mu.Unlock()
	s.wg.Done()
	return nil
}

func (s *recordingService) wait(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}
}

func TestDispatcher_PreservesPerMailboxOrder(t *testing.T) {
	const perMailbox = 50
	addresses := []string{"a@tempmail.dev", "b@tempmail.dev", "c@tempmail.dev"}

	svc := newRecordingService(perMailbox * len(addresses))
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < perMailbox; i++ {
		for _, addr := range addresses {
			d.Enqueue(ports.InboundMessageInput{
				ToAddress: addr,
				Subject:   fmt.Sprintf("%04d", i),
			})
		}
	}
	svc.wait(t)

	for _, addr := range addresses {
		got := svc.delivered[addr]
		if len(got) != perMailbox {
			t.Fatalf("%s: expected %d deliveries, got %d", addr, perMailbox, len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i-1] >= got[i] {
				t.Fatalf("%s: delivery order broken at %d: %s then %s", addr, i, got[i-1], got[i])
			}
		}
	}
}

func TestDispatcher_ShardIsDeterministic(t *testing.T) {
	d := NewDispatcher(8, newRecordingService(0), zerolog.Nop())

	for _, addr := range []string{"x@tempmail.dev", "y@tempmail.dev", ""} {
		first := d.shardIndex(addr)
		for i := 0; i < 10; i++ {
			if got := d.shardIndex(addr); got != first {
				t.Fatalf("shard for %q changed: %d then %d", addr, first, got)
			}
		}
		if first < 0 || first >= 8 {
			t.Fatalf("shard out of range: %d", first)
		}
	}
}

func TestDispatcher_EnqueueBatch(t *testing.T) {
	svc := newRecordingService(3)
	d := NewDispatcher(2, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.EnqueueBatch([]ports.InboundMessageInput{
		{ToAddress: "a@tempmail.dev", Subject: "0001"},
		{ToAddress: "a@tempmail.dev", Subject: "0002"},
		{ToAddress: "b@tempmail.dev", Subject: "0001"},
	})
	svc.wait(t)

	if got := svc.delivered["a@tempmail.dev"]; len(got) != 2 || got[0] != "0001" || got[1] != "0002" {
		t.Fatalf("unexpected deliveries for a@: %v", got)
	}
	if got := svc.delivered["b@tempmail.dev"]; len(got) != 1 {
		t.Fatalf("unexpected deliveries for b@: %v", got)
	}
}
