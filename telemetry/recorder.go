package telemetry

// Recorder is a Sink that keeps every event it observes, in order, and
// answers questions about them. It is the sink tests and callers use to
// assert on an object's behavior.
type Recorder struct {
	events []Event
	counts map[string]int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{counts: make(map[string]int)}
}

// Record implements Sink.
func (r *Recorder) Record(event Event) {
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.events = append(r.events, event)
	r.counts[event.Name]++
}

// Recorded reports whether an event named name was ever observed.
func (r *Recorder) Recorded(name string) bool {
	return r.counts[name] > 0
}

// RecordedWith reports whether an event named name was observed with a
// payload accepted by match.
func (r *Recorder) RecordedWith(name string, match func(payload []any) bool) bool {
	for _, e := range r.events {
		if e.Name == name && match(e.Payload) {
			return true
		}
	}
	return false
}

// Once reports whether name was observed exactly once.
func (r *Recorder) Once(name string) bool {
	return r.counts[name] == 1
}

// Count returns how many times name was observed.
func (r *Recorder) Count(name string) int {
	return r.counts[name]
}

// Payloads returns the payloads of every name event, oldest first.
func (r *Recorder) Payloads(name string) [][]any {
	var out [][]any
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e.Payload)
		}
	}
	return out
}

// Events returns a copy of the full event history.
func (r *Recorder) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns event names in the order they were observed.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

// Reset forgets all observed events.
func (r *Recorder) Reset() {
	r.events = nil
	r.counts = make(map[string]int)
}
