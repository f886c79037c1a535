package telemetry

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by TraceSink when no tracer
// is supplied.
const TracerName = "github.com/sghaida/useful/telemetry"

// TraceSink turns every event into a zero-length span named after the event.
// Spans are children of the span in the sink's context, if any.
type TraceSink struct {
	ctx    context.Context
	tracer trace.Tracer
}

// NewTraceSink returns a sink using tracer. A nil tracer uses the global
// provider's tracer; a nil ctx uses context.Background().
func NewTraceSink(ctx context.Context, tracer trace.Tracer) *TraceSink {
	if ctx == nil {
		ctx = context.Background()
	}
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &TraceSink{ctx: ctx, tracer: tracer}
}

func (s *TraceSink) Record(event Event) {
	attrs := make([]attribute.KeyValue, 0, len(event.Payload)+2)
	attrs = append(attrs,
		attribute.String("useful.source", event.Source),
		attribute.String("useful.event_id", event.ID),
	)
	for i, v := range event.Payload {
		attrs = append(attrs, attribute.String("useful.payload."+strconv.Itoa(i), fmt.Sprint(v)))
	}

	_, span := s.tracer.Start(s.ctx, event.Name,
		trace.WithTimestamp(event.Time),
		trace.WithAttributes(attrs...),
	)
	span.End(trace.WithTimestamp(event.Time))
}
