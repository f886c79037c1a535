package dependency

import (
	"sort"
	"sync"

	"github.com/sghaida/useful/capability"
)

// Namespace selects which family of recipes Configure applies.
type Namespace string

const (
	// Operational recipes build the real collaborators.
	Operational Namespace = "operational"

	// Substitute recipes build non-destructive analogs of the operational
	// collaborators.
	Substitute Namespace = "substitute"
)

// Kind distinguishes dependency slots from telemetry slots.
type Kind int

const (
	KindDependency Kind = iota
	KindTelemetry
)

// String returns "dependency" or "telemetry".
func (k Kind) String() string {
	if k == KindTelemetry {
		return "telemetry"
	}
	return "dependency"
}

// SlotInfo describes a declared slot.
type SlotInfo struct {
	Name string
	Kind Kind

	// Capability is the capability interface name; empty for telemetry slots.
	Capability string

	// Recipes lists the namespaces with a registered recipe, sorted.
	Recipes []Namespace
}

// Class is the static registry of a host type: its declared slots, in
// declaration order, and the recipes registered for them.
type Class[H Host] struct {
	name string

	mu      sync.RWMutex
	order   []string
	slots   map[string]*declared[H]
	recipes map[Namespace]map[string]builder[H]
}

// builder is a recipe with its result erased to any.
type builder[H Host] func(owner H) (any, error)

// declared is the untyped view of a slot used by Configure, Resolve and Assign.
type declared[H Host] struct {
	name  string
	kind  Kind
	iface capability.Interface

	resolve func(owner H) any
	check   func(v any) error
	put     func(owner H, v any)
}

func (d *declared[H]) assign(owner H, v any) error {
	if err := d.check(v); err != nil {
		return err
	}
	d.put(owner, v)
	return nil
}

// NewClass returns an empty class named name. The name prefixes telemetry
// sources and appears in errors.
func NewClass[H Host](name string) *Class[H] {
	return &Class[H]{
		name:    name,
		slots:   make(map[string]*declared[H]),
		recipes: make(map[Namespace]map[string]builder[H]),
	}
}

// Name returns the class name.
func (c *Class[H]) Name() string { return c.name }

// declare adds d, panicking on an empty or duplicate name. Declarations
// happen at package initialization, where a panic is the only sensible
// report.
func (c *Class[H]) declare(d *declared[H]) {
	if d.name == "" {
		panic("dependency: empty slot name on " + c.name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.slots[d.name]; exists {
		panic(DuplicateSlotError{Class: c.name, Slot: d.name})
	}
	c.slots[d.name] = d
	c.order = append(c.order, d.name)
}

func (c *Class[H]) setRecipe(ns Namespace, slot string, b builder[H]) {
	if ns == "" {
		ns = Operational
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if b == nil {
		delete(c.recipes[ns], slot)
		return
	}
	byName, ok := c.recipes[ns]
	if !ok {
		byName = make(map[string]builder[H])
		c.recipes[ns] = byName
	}
	byName[slot] = b
}

func (c *Class[H]) lookup(slot string) (*declared[H], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.slots[slot]
	if !ok {
		return nil, UndeclaredSlotError{Class: c.name, Slot: slot}
	}
	return d, nil
}

// HasRecipe reports whether slot has a recipe in ns.
func (c *Class[H]) HasRecipe(ns Namespace, slot string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.recipes[ns][slot]
	return ok
}

// Slots describes every declared slot in declaration order.
func (c *Class[H]) Slots() []SlotInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]SlotInfo, 0, len(c.order))
	for _, name := range c.order {
		d := c.slots[name]
		info := SlotInfo{Name: name, Kind: d.kind}
		if d.kind == KindDependency {
			info.Capability = d.iface.Name()
		}
		for ns, byName := range c.recipes {
			if _, ok := byName[name]; ok {
				info.Recipes = append(info.Recipes, ns)
			}
		}
		sort.Slice(info.Recipes, func(i, j int) bool { return info.Recipes[i] < info.Recipes[j] })
		out = append(out, info)
	}
	return out
}

// Resolve returns the current value of the named slot, materializing its
// default on first access. Telemetry slots resolve to their channel.
func (c *Class[H]) Resolve(owner H, slot string) (any, error) {
	if isNil(owner) {
		return nil, ErrNilOwner
	}
	d, err := c.lookup(slot)
	if err != nil {
		return nil, err
	}
	return d.resolve(owner), nil
}

// Assign stores v in the named slot. v must conform to the slot's
// capability; telemetry slots accept a *telemetry.Channel.
func (c *Class[H]) Assign(owner H, slot string, v any) error {
	if isNil(owner) {
		return ErrNilOwner
	}
	d, err := c.lookup(slot)
	if err != nil {
		return err
	}
	return d.assign(owner, v)
}
