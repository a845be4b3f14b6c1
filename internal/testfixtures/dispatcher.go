package testfixtures

import (
	"context"
	"sync"

	"github.com/iliyamo/spark-meetup/internal/notification"
)

// RecordingDispatcher keeps every message it is asked to deliver. Setting
// Err makes every Dispatch fail after recording.
type RecordingDispatcher struct {
	mu       sync.Mutex
	messages []notification.Message
	Err      error
}

// Dispatch implements notification.Dispatcher.
func (d *RecordingDispatcher) Dispatch(_ context.Context, msg notification.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
	return d.Err
}

// Messages returns a copy of the recorded messages.
func (d *RecordingDispatcher) Messages() []notification.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notification.Message(nil), d.messages...)
}

// OfKind returns the recorded messages of kind k.
func (d *RecordingDispatcher) OfKind(k notification.Kind) []notification.Message {
	var out []notification.Message
	for _, m := range d.Messages() {
		if m.Kind == k {
			out = append(out, m)
		}
	}
	return out
}

// Reset drops every recorded message.
func (d *RecordingDispatcher) Reset() {
	d.mu.Lock()
	d.messages = nil
	d.mu.Unlock()
}
