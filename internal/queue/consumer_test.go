package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/spark-meetup/internal/notification"
)

type recordingDelivery struct {
	got []notification.Message
	err error
}

func (r *recordingDelivery) Dispatch(_ context.Context, msg notification.Message) error {
	r.got = append(r.got, msg)
	return r.err
}

func TestHandleDeliversDecodedMessage(t *testing.T) {
	body, err := encodeEvent(notification.Message{
		To:   "a@example.com",
		Kind: notification.KindEventApproved,
		Data: notification.Data{EventTitle: "Go"},
	}, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}

	rec := &recordingDelivery{}
	c := &Consumer{Delivery: rec}
	if err := c.handle(context.Background(), body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(rec.got) != 1 || rec.got[0].Data.EventTitle != "Go" {
		t.Fatalf("unexpected deliveries %+v", rec.got)
	}
}

func TestHandleRejectsBadPayloads(t *testing.T) {
	rec := &recordingDelivery{}
	c := &Consumer{Delivery: rec}

	for name, body := range map[string][]byte{
		"not json":     []byte("{"),
		"no recipient": []byte(`{"message":{"kind":"event_approved"}}`),
		"no kind":      []byte(`{"message":{"to":"a@b.c"}}`),
	} {
		t.Run(name, func(t *testing.T) {
			if err := c.handle(context.Background(), body); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if len(rec.got) != 0 {
		t.Fatalf("nothing should be delivered, got %+v", rec.got)
	}
}

func TestHandleSurfacesDeliveryError(t *testing.T) {
	body, _ := encodeEvent(notification.Message{To: "a@b.c", Kind: notification.KindPasswordChanged}, time.Now())
	c := &Consumer{Delivery: &recordingDelivery{err: errors.New("smtp down")}}
	if err := c.handle(context.Background(), body); err == nil {
		t.Fatal("expected delivery error")
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Consumer{URL: "amqp://127.0.0.1:1/", Delivery: &recordingDelivery{}}
	if err := c.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
