package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/ports"
	"github.com/sal22/qanda-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 30 * time.Second
	drainTimeout   = 30 * time.Second
)

// Dispatcher delivers notification mail in the background. Mail is routed to
// a fixed set of workers by hashing the recipient, so one user's mail is sent
// in the order it was queued.
type Dispatcher struct {
	workers []chan ports.Mail
	sender  ports.MailSender
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.MailSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Mail, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Mail, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// delivers what is already buffered, within drainTimeout, and returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands m to the worker responsible for its recipient. It never
// blocks: when that worker's buffer is full the mail is dropped.
func (d *Dispatcher) Enqueue(m ports.Mail) {
	idx := d.shardIndex(m.To)
	select {
	case d.workers[idx] <- m:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.MailSentTotal.WithLabelValues("notification", "dropped").Inc()
		d.log.Warn().
			Str("to", m.To).
			Int("worker_id", idx).
			Msg("mail queue full, dropping message")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Mail) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	// In-flight sends are bounded by sendTimeout, not by shutdown.
	sendCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			d.drain(sendCtx, id, ch)
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(sendCtx, id, m)
		}
	}
}

// drain empties ch without blocking. Mail still queued once the drain budget
// is spent is counted as dropped.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan ports.Mail) {
	drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	label := strconv.Itoa(id)
	delivered, dropped := 0, 0
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if drainCtx.Err() != nil {
				metrics.MailSentTotal.WithLabelValues("notification", "dropped").Inc()
				dropped++
				continue
			}
			d.deliver(drainCtx, id, m)
			delivered++
		default:
			if delivered > 0 || dropped > 0 {
				d.log.Info().
					Int("worker_id", id).
					Int("delivered", delivered).
					Int("dropped", dropped).
					Msg("mail queue drained")
			}
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, m ports.Mail) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(sendCtx, m)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.MailSendDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	metrics.MailSentTotal.WithLabelValues("notification", result).Inc()

	if err != nil {
		d.log.Error().Err(err).
			Str("to", m.To).
			Int("worker_id", id).
			Msg("notification mail failed")
	}
}
