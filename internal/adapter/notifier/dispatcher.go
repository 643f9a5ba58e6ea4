package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// Sender delivers one notification to its destination.
type Sender interface {
	Send(ctx context.Context, kind domain.NotificationKind, payload any) error
}

type Config struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
	// DrainTimeout bounds delivery of the backlog left at shutdown.
	DrainTimeout time.Duration
}

type message struct {
	kind    domain.NotificationKind
	payload any
}

// Dispatcher queues notifications and delivers them from a small worker pool
// with bounded retries. Notify never blocks: a full queue drops the message.
type Dispatcher struct {
	sender Sender
	cfg    Config
	queue  chan message
	log    logrus.FieldLogger
}

func NewDispatcher(sender Sender, cfg Config, logger logrus.FieldLogger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		queue:  make(chan message, cfg.QueueSize),
		log:    logger.WithField("component", "notifier"),
	}
}

func (d *Dispatcher) Notify(_ context.Context, kind domain.NotificationKind, payload any) {
	select {
	case d.queue <- message{kind: kind, payload: payload}:
	default:
		d.log.WithField("kind", kind).Warn("notification queue full, message dropped")
	}
}

// Run delivers queued notifications until ctx is done, then flushes what is
// left in the queue within the drain timeout.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), d.cfg.DrainTimeout)
	defer cancel()
	d.drain(drainCtx)
	return nil
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case msg := <-d.queue:
			if ctx.Err() != nil {
				d.log.WithField("kind", msg.kind).Warn("shutdown deadline reached, notification dropped")
				continue
			}
			d.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg message) {
	logger := d.log.WithField("kind", msg.kind)

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		err := d.sender.Send(ctx, msg.kind, msg.payload)
		if err == nil {
			return
		}
		logger.WithError(err).WithField("attempt", attempt).Warn("notification delivery failed")

		if attempt == d.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			logger.Error("notification abandoned on shutdown")
			return
		case <-time.After(d.cfg.Backoff * time.Duration(attempt)):
		}
	}
	logger.Error("notification dropped after retries")
}
