package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownSink is returned by Lookup for unregistered names.
var ErrUnknownSink = errors.New("telemetry: unknown sink")

// Factory builds a fresh Sink. Sinks are created per lookup so that stateful
// sinks such as Recorder are never shared by accident.
type Factory func() Sink

var (
	factories = map[string]Factory{
		"noop":     func() Sink { return NoOpSink{} },
		"slog":     func() Sink { return NewSlogSink(slog.Default()) },
		"recorder": func() Sink { return NewRecorder() },
		"capitan":  func() Sink { return NewCapitanSink(context.Background(), "") },
		"trace":    func() Sink { return NewTraceSink(context.Background(), nil) },
	}
	mutex sync.RWMutex
)

// Lookup builds the sink registered under name.
// Pre-registered: "noop", "slog", "recorder", "capitan" and "trace".
func Lookup(name string) (Sink, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	f, exists := factories[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSink, name)
	}
	return f(), nil
}

// LookupAll builds the sinks registered under names, ignoring surrounding
// blanks, and combines them into one Sink. It fails on the first unknown name.
func LookupAll(names ...string) (Sink, error) {
	sinks := make([]Sink, 0, len(names))
	for _, name := range names {
		sink, err := Lookup(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return Combine(sinks...), nil
}

// Provide adds or replaces a named sink factory.
func Provide(name string, f Factory) {
	mutex.Lock()
	defer mutex.Unlock()

	factories[name] = f
}

// Available returns the registered sink names, sorted.
func Available() []string {
	mutex.RLock()
	defer mutex.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
