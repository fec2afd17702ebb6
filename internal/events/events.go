// Package events fans committed store mutations out to background sinks.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Type string

const (
	SaleCreated        Type = "sale.created"
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	ProductCreated     Type = "product.created"
	ProductUpdated     Type = "product.updated"
	ProductDeleted     Type = "product.deleted"
	UserRegistered     Type = "user.registered"
	ReportReset        Type = "report.reset"
)

// Event describes one committed mutation. Reference is the record key, e.g.
// POS-00012 or ORD-00034.
type Event struct {
	Type      Type      `json:"type"`
	Reference string    `json:"reference"`
	ActorID   uint      `json:"actor_id,omitempty"`
	At        time.Time `json:"at"`
	Data      any       `json:"data,omitempty"`
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(e Event)
}

// Sink consumes events off the request path.
type Sink interface {
	Name() string
	Handle(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(Event) {}

// Bus delivers events to its sinks on one background goroutine. Publish
// never blocks; when the buffer is full the event is dropped and logged.
type Bus struct {
	sinks   []Sink
	logger  *logrus.Logger
	timeout time.Duration
	ch      chan Event
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
}

func NewBus(logger *logrus.Logger, buffer int, sinks ...Sink) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	b := &Bus{
		sinks:   sinks,
		logger:  logger,
		timeout: 30 * time.Second,
		ch:      make(chan Event, buffer),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.ch <- e:
	default:
		b.logger.WithFields(logrus.Fields{"event": e.Type, "reference": e.Reference}).Warn("event buffer full, dropping event")
	}
}

func (b *Bus) run() {
	defer b.wg.Done()
	for e := range b.ch {
		for _, s := range b.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
			if err := s.Handle(ctx, e); err != nil {
				b.logger.WithFields(logrus.Fields{
					"sink":      s.Name(),
					"event":     e.Type,
					"reference": e.Reference,
				}).WithError(err).Error("event sink failed")
			}
			cancel()
		}
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (b *Bus) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.ch)
		b.mu.Unlock()
	})
	b.wg.Wait()
}
