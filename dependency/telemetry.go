package dependency

import (
	"reflect"

	"github.com/sghaida/useful/capability"
	"github.com/sghaida/useful/telemetry"
)

// TelemetrySlot is a host's telemetry channel slot.
type TelemetrySlot[H Host] struct {
	class *Class[H]
	name  string
}

// DeclareTelemetry adds a telemetry slot to class. It panics when the name
// is empty or taken.
func DeclareTelemetry[H Host](class *Class[H], name string) *TelemetrySlot[H] {
	t := &TelemetrySlot[H]{class: class, name: name}
	class.declare(&declared[H]{
		name:    name,
		kind:    KindTelemetry,
		resolve: func(owner H) any { return t.Get(owner) },
		check:   checkChannel,
		put: func(owner H, v any) {
			owner.DependencySlots().setChannel(name, v.(*telemetry.Channel))
		},
	})
	return t
}

// Name returns the slot name.
func (t *TelemetrySlot[H]) Name() string { return t.name }

// Source is the source stamped on events recorded through this slot:
// "<class>.<slot>".
func (t *TelemetrySlot[H]) Source() string { return t.class.name + "." + t.name }

// Get returns the owner's channel, creating it with zero sinks on first
// access. A nil owner gets a detached channel.
func (t *TelemetrySlot[H]) Get(owner H) *telemetry.Channel {
	slots := slotsOf(owner)
	if slots == nil {
		return telemetry.NewChannel(t.Source())
	}
	return slots.channel(t.name, t.Source())
}

// Record records an event on the owner's channel.
func (t *TelemetrySlot[H]) Record(owner H, name string, payload ...any) {
	t.Get(owner).Record(name, payload...)
}

// RegisterSink registers sink on the owner's channel for slot and returns
// it, so the caller can inspect it later.
func RegisterSink[H Host, S telemetry.Sink](owner H, slot *TelemetrySlot[H], sink S) S {
	return telemetry.Register(slot.Get(owner), sink)
}

func checkChannel(v any) error {
	if ch, ok := v.(*telemetry.Channel); ok && ch != nil {
		return nil
	}
	got := "<nil>"
	if v != nil {
		got = reflect.TypeOf(v).String()
	}
	return capability.ConformanceViolationError{Interface: "telemetry", GotType: got}
}
