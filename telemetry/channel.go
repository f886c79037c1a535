// Package telemetry provides per-object broadcast points for named events.
//
// A Channel belongs to exactly one owner. The owner records events on it; the
// channel forwards each event synchronously, in registration order, to every
// registered Sink. With no sinks, recording is a no-op.
//
//	ch := telemetry.NewChannel("purge.Purger")
//	rec := telemetry.Register(ch, telemetry.NewRecorder())
//	ch.Record("purged", 3)
//	rec.Recorded("purged") // true
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Event is one recorded occurrence. Name and Payload are passed to sinks
// exactly as the owner recorded them.
type Event struct {
	ID      string
	Name    string
	Payload []any
	Source  string
	Time    time.Time
}

// Sink observes events recorded on a Channel.
type Sink interface {
	Record(event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(event Event)

// Record calls f(event).
func (f SinkFunc) Record(event Event) { f(event) }

// Channel fans events out to registered sinks.
//
// A Channel is not safe for concurrent use; owners serialize access.
type Channel struct {
	source string
	sinks  []Sink
	clock  func() time.Time
	newID  func() string
}

// NewChannel returns an empty channel. source identifies the owner in
// emitted events (for example "purge.Purger.telemetry").
func NewChannel(source string) *Channel {
	return &Channel{
		source: source,
		clock:  time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Source returns the owner identifier stamped on events.
func (c *Channel) Source() string { return c.source }

// Register appends sink. It applies to subsequent Record calls only; past
// events are not replayed. Nil sinks are ignored.
func (c *Channel) Register(sink Sink) {
	if sink == nil {
		return
	}
	c.sinks = append(c.sinks, sink)
}

// Len returns the number of registered sinks.
func (c *Channel) Len() int { return len(c.sinks) }

// Record forwards an event to every registered sink in registration order.
func (c *Channel) Record(name string, payload ...any) {
	if c == nil || len(c.sinks) == 0 {
		return
	}

	event := Event{
		ID:      c.newID(),
		Name:    name,
		Payload: payload,
		Source:  c.source,
		Time:    c.clock().UTC(),
	}
	for _, sink := range c.sinks {
		sink.Record(event)
	}
}

// Register registers sink on ch and returns it, so callers can keep a typed
// handle for later inspection:
//
//	rec := telemetry.Register(ch, telemetry.NewRecorder())
func Register[S Sink](ch *Channel, sink S) S {
	ch.Register(sink)
	return sink
}
