package telemetry

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
)

// Field keys attached to events forwarded to capitan.
var (
	// KeySource is the channel source that recorded the event.
	KeySource = capitan.NewStringKey("source")

	// KeyEventID is the event id assigned by the channel.
	KeyEventID = capitan.NewStringKey("event_id")

	// KeyPayload is the event payload rendered with fmt.Sprint.
	KeyPayload = capitan.NewStringKey("payload")

	// KeyPayloadLen is the number of payload values.
	KeyPayloadLen = capitan.NewIntKey("payload_len")
)

// DefaultSignalPrefix namespaces signals emitted by CapitanSink.
const DefaultSignalPrefix = "useful.telemetry."

// CapitanSink forwards events to the process-wide capitan event bus, one
// signal per event name (prefix + name). It lets application-level hooks
// observe objects without holding a reference to their channels.
//
// Delivery to capitan hooks follows capitan's own scheduling; the channel
// side stays synchronous.
type CapitanSink struct {
	ctx    context.Context
	prefix string
}

// NewCapitanSink returns a sink emitting with ctx. An empty prefix uses
// DefaultSignalPrefix.
func NewCapitanSink(ctx context.Context, prefix string) *CapitanSink {
	if ctx == nil {
		ctx = context.Background()
	}
	if prefix == "" {
		prefix = DefaultSignalPrefix
	}
	return &CapitanSink{ctx: ctx, prefix: prefix}
}

// SignalName returns the capitan signal name used for an event name.
func (s *CapitanSink) SignalName(event string) string {
	return s.prefix + event
}

func (s *CapitanSink) Record(event Event) {
	capitan.Emit(s.ctx, s.signal(event.Name),
		KeySource.Field(event.Source),
		KeyEventID.Field(event.ID),
		KeyPayload.Field(fmt.Sprint(event.Payload...)),
		KeyPayloadLen.Field(len(event.Payload)),
	)
}

// Hook registers fn for events named event that pass through this sink.
func (s *CapitanSink) Hook(event string, fn func(context.Context, *capitan.Event)) {
	capitan.Hook(s.signal(event), fn)
}

func (s *CapitanSink) signal(event string) capitan.Signal {
	return capitan.NewSignal(s.SignalName(event), "useful telemetry event "+event)
}
