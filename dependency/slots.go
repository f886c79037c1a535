package dependency

import (
	"reflect"

	"github.com/sghaida/useful/telemetry"
)

// Host is implemented by types whose slots are managed by a Class.
// Embedding Slots in a struct makes a pointer to it a Host.
type Host interface {
	DependencySlots() *Slots
}

// Slots is the per-owner storage behind every declared slot. The zero value
// is ready to use. It is not safe for concurrent use.
type Slots struct {
	values   map[string]entry
	channels map[string]*telemetry.Channel
}

type entry struct {
	value any
	null  bool
}

// DependencySlots implements Host.
func (s *Slots) DependencySlots() *Slots { return s }

// Assigned reports whether slot currently holds a value, including a
// memoized Null Object.
func (s *Slots) Assigned(slot string) bool {
	_, ok := s.values[slot]
	return ok
}

func (s *Slots) load(slot string) (entry, bool) {
	e, ok := s.values[slot]
	return e, ok
}

func (s *Slots) store(slot string, value any, isNull bool) {
	if s.values == nil {
		s.values = make(map[string]entry)
	}
	s.values[slot] = entry{value: value, null: isNull}
}

func (s *Slots) channel(slot, source string) *telemetry.Channel {
	if ch, ok := s.channels[slot]; ok {
		return ch
	}
	if s.channels == nil {
		s.channels = make(map[string]*telemetry.Channel)
	}
	ch := telemetry.NewChannel(source)
	s.channels[slot] = ch
	return ch
}

func (s *Slots) setChannel(slot string, ch *telemetry.Channel) {
	if s.channels == nil {
		s.channels = make(map[string]*telemetry.Channel)
	}
	s.channels[slot] = ch
}

// slotsOf returns the owner's storage, or nil for a nil owner.
func slotsOf[H Host](owner H) *Slots {
	if isNil(owner) {
		return nil
	}
	return owner.DependencySlots()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
