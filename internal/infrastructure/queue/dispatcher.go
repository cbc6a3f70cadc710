package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tempmailhq/tempmail-api/internal/api/metrics"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes inbound mail to a fixed set of workers using consistent
// hashing on the recipient address, guaranteeing per-mailbox delivery ordering.
type Dispatcher struct {
	workers []chan ports.InboundMessageInput
	service ports.MessageService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.MessageService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.InboundMessageInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.InboundMessageInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a message to the worker responsible for its recipient.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(msg ports.InboundMessageInput) {
	i := d.shardIndex(msg.ToAddress)
	d.workers[i] <- msg
	metrics.InboundQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// EnqueueBatch enqueues multiple messages preserving per-mailbox ordering.
func (d *Dispatcher) EnqueueBatch(msgs []ports.InboundMessageInput) {
	for _, m := range msgs {
		d.Enqueue(m)
	}
}

// shardIndex maps a recipient address deterministically to a worker index.
func (d *Dispatcher) shardIndex(address string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(address))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.InboundMessageInput) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.InboundQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.service.Deliver(ctx, msg); err != nil {
				metrics.MessagesDelivered.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("to", msg.ToAddress).
					Int("worker_id", id).
					Msg("inbound delivery failed")
				continue
			}
			metrics.MessagesDelivered.WithLabelValues("ok").Inc()
		}
	}
}
