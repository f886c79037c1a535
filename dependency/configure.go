package dependency

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/sghaida/useful/null"
	"github.com/sghaida/useful/telemetry"
)

// Option customizes a single Configure call.
type Option func(*options)

type options struct {
	namespace  Namespace
	fallback   Namespace
	requireAll bool
	required   []string
	sinks      []telemetry.Sink
	logger     *slog.Logger
}

// WithNamespace selects the recipe namespace. The default is Operational.
func WithNamespace(ns Namespace) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// Fallback names a namespace consulted for slots without a recipe in the
// primary namespace.
func Fallback(ns Namespace) Option {
	return func(o *options) { o.fallback = ns }
}

// RequireOperational makes every dependency slot mandatory: a slot without
// a recipe in the primary namespace fails Configure with MissingRecipeError.
func RequireOperational() Option {
	return func(o *options) { o.requireAll = true }
}

// Require makes the named slots mandatory in the primary namespace.
func Require(slots ...string) Option {
	return func(o *options) { o.required = append(o.required, slots...) }
}

// WithSinks registers sinks on every telemetry slot of the owner once
// configuration succeeded.
func WithSinks(sinks ...telemetry.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, sinks...) }
}

// WithLogger sets the logger for configuration decisions (Debug level).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type plan[H Host] struct {
	slot  *declared[H]
	ns    Namespace
	build builder[H]
}

type staged[H Host] struct {
	slot  *declared[H]
	ns    Namespace
	value any
}

// Configure applies the class's recipes to owner.
//
// Every dependency slot with a recipe in the selected namespace (or the
// fallback namespace) is rebuilt; slots without one keep their current
// value, which is the Null Object unless something assigned it. Required
// slots are checked before any builder runs. Builders run in declaration
// order and receive the owner; their results are written only after all of
// them succeeded, so a failed Configure leaves owner untouched.
//
// Configure may be called more than once; each call is a full re-apply.
// A rebuilt slot's previous value is closed if it implements io.Closer and
// is neither a Null Object nor the new value. When a builder fails, values
// already built by that call are closed the same way before returning.
func (c *Class[H]) Configure(owner H, opts ...Option) error {
	if isNil(owner) {
		return ErrNilOwner
	}
	o := options{namespace: Operational, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	log := o.logger.With("class", c.name, "namespace", string(o.namespace))

	c.mu.RLock()
	var (
		plans    []plan[H]
		channels []*declared[H]
		missing  error
	)
	required := make(map[string]bool, len(o.required))
	for _, name := range o.required {
		if _, ok := c.slots[name]; !ok {
			missing = UndeclaredSlotError{Class: c.name, Slot: name}
			break
		}
		required[name] = true
	}
	for _, name := range c.order {
		if missing != nil {
			break
		}
		d := c.slots[name]
		if d.kind == KindTelemetry {
			channels = append(channels, d)
			continue
		}
		if b, ok := c.recipes[o.namespace][name]; ok {
			plans = append(plans, plan[H]{slot: d, ns: o.namespace, build: b})
			continue
		}
		if o.requireAll || required[name] {
			missing = MissingRecipeError{Class: c.name, Slot: name, Namespace: o.namespace}
			break
		}
		if o.fallback != "" {
			if b, ok := c.recipes[o.fallback][name]; ok {
				plans = append(plans, plan[H]{slot: d, ns: o.fallback, build: b})
				continue
			}
		}
		log.Debug("slot left at default", "slot", name)
	}
	c.mu.RUnlock()

	if missing != nil {
		log.Debug("configure rejected", "error", missing)
		return missing
	}

	results := make([]staged[H], 0, len(plans))
	for _, p := range plans {
		v, err := p.build(owner)
		if err == nil {
			err = p.slot.check(v)
		}
		if err != nil {
			log.Debug("recipe failed", "slot", p.slot.name, "error", err)
			slots := owner.DependencySlots()
			for _, r := range results {
				current, _ := slots.load(r.slot.name)
				release(log, r.slot.name, r.value, current.value)
			}
			return RecipeError{Class: c.name, Slot: p.slot.name, Namespace: p.ns, Err: err}
		}
		results = append(results, staged[H]{slot: p.slot, ns: p.ns, value: v})
	}

	slots := owner.DependencySlots()
	for _, r := range results {
		previous, had := slots.load(r.slot.name)
		r.slot.put(owner, r.value)
		log.Debug("recipe applied", "slot", r.slot.name, "from", string(r.ns))
		if had && !previous.null {
			release(log, r.slot.name, previous.value, r.value)
		}
	}

	if len(o.sinks) > 0 {
		for _, d := range channels {
			ch := d.resolve(owner).(*telemetry.Channel)
			for _, sink := range o.sinks {
				ch.Register(sink)
			}
		}
	}
	return nil
}

// Build configures owner and returns it. On failure it returns the zero H
// so no partially configured instance escapes.
func (c *Class[H]) Build(owner H, opts ...Option) (H, error) {
	if err := c.Configure(owner, opts...); err != nil {
		var zero H
		return zero, err
	}
	return owner, nil
}

// release closes v unless it is a Null Object, does not implement io.Closer,
// or is the same value as keep.
func release(log *slog.Logger, slot string, v, keep any) {
	c, ok := v.(io.Closer)
	if !ok || null.Is(v) || sameValue(v, keep) {
		return
	}
	if err := c.Close(); err != nil {
		log.Debug("close failed", "slot", slot, "error", err)
		return
	}
	log.Debug("value released", "slot", slot)
}

// sameValue reports a == b without panicking on uncomparable dynamic types.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
