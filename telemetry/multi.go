package telemetry

// NoOpSink discards every event.
type NoOpSink struct{}

// Record implements Sink.
func (NoOpSink) Record(Event) {}

// MultiSink delivers each event to its members in order.
type MultiSink []Sink

// Record implements Sink.
func (m MultiSink) Record(event Event) {
	for _, sink := range m {
		sink.Record(event)
	}
}

// Combine folds sinks into a single Sink. Nil entries are dropped and nested
// MultiSinks are flattened. With nothing left it returns NoOpSink, with one
// sink that sink itself.
func Combine(sinks ...Sink) Sink {
	var members MultiSink
	for _, sink := range sinks {
		switch s := sink.(type) {
		case nil:
		case MultiSink:
			members = append(members, s...)
		default:
			members = append(members, s)
		}
	}
	switch len(members) {
	case 0:
		return NoOpSink{}
	case 1:
		return members[0]
	default:
		return members
	}
}
