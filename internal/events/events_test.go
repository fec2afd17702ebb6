package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type recordSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (r *recordSink) Name() string { return "record" }

func (r *recordSink) Handle(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.fail {
		return errors.New("sink down")
	}
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestBusDeliversToEverySink(t *testing.T) {
	failing := &recordSink{fail: true}
	ok := &recordSink{}
	bus := NewBus(quietLogger(), 8, failing, ok)

	bus.Publish(Event{Type: SaleCreated, Reference: "POS-00001"})
	bus.Publish(Event{Type: OrderCreated, Reference: "ORD-00001"})
	bus.Close()

	if len(ok.events) != 2 {
		t.Fatalf("got %d events, want 2", len(ok.events))
	}
	if len(failing.events) != 2 {
		t.Fatalf("a failing sink still sees every event, got %d", len(failing.events))
	}
	if ok.events[0].At.IsZero() {
		t.Error("publish should stamp the event time")
	}

	// publishing after close is a no-op
	bus.Publish(Event{Type: SaleCreated})
	bus.Close()
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaSinkKeysByReference(t *testing.T) {
	w := &fakeWriter{}
	sink := NewKafkaSink(w)
	if err := sink.Handle(context.Background(), Event{Type: OrderStatusChanged, Reference: "ORD-00034", Data: map[string]string{"status": "shipped"}}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := sink.Handle(context.Background(), Event{Type: ReportReset}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("got %d messages", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "ORD-00034" || string(w.msgs[1].Key) != "report.reset" {
		t.Errorf("keys: %q %q", w.msgs[0].Key, w.msgs[1].Key)
	}
	var decoded Event
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != OrderStatusChanged {
		t.Errorf("type: %q", decoded.Type)
	}
}
