package dependency

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/sghaida/useful/capability"
	"github.com/sghaida/useful/null"
)

// Slot is a typed dependency slot of host H holding a T.
//
// T must be a Go interface type whose methods are all declared as
// operations of the slot's capability, so a Null Object can answer each of
// them.
type Slot[H Host, T any] struct {
	class   *Class[H]
	name    string
	iface   capability.Interface
	newNull func(*null.Object) T
}

// Declare adds a dependency slot to class.
//
// newNull wraps a fresh Null Object into a T; it is usually the constructor
// emitted by usefulgen. Declare panics when the name is empty or taken,
// when iface is the zero Interface, when newNull is nil, when T is not an
// interface type, or when T has methods iface does not declare.
func Declare[H Host, T any](class *Class[H], name string, iface capability.Interface, newNull func(*null.Object) T) *Slot[H, T] {
	if iface.IsZero() {
		panic("dependency: slot " + strconv.Quote(name) + " has no capability")
	}
	if newNull == nil {
		panic("dependency: slot " + strconv.Quote(name) + " has no null constructor")
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		panic("dependency: slot " + strconv.Quote(name) + " type " + t.String() + " is not an interface")
	}
	if undeclared := capability.Covers(t, iface); len(undeclared) > 0 {
		panic("dependency: slot " + strconv.Quote(name) + " capability " + strconv.Quote(iface.Name()) +
			" does not declare " + strings.Join(undeclared, ", "))
	}

	s := &Slot[H, T]{class: class, name: name, iface: iface, newNull: newNull}
	class.declare(&declared[H]{
		name:    name,
		kind:    KindDependency,
		iface:   iface,
		resolve: func(owner H) any { return s.Get(owner) },
		check:   s.check,
		put:     func(owner H, v any) { s.store(owner, v.(T)) },
	})
	return s
}

// Name returns the slot name.
func (s *Slot[H, T]) Name() string { return s.name }

// Capability returns the slot's capability interface.
func (s *Slot[H, T]) Capability() capability.Interface { return s.iface }

// Get returns the slot's current value. An unassigned slot resolves to a
// Null Object that is cached on the owner, so repeated reads return the
// same instance. A nil owner gets an uncached Null Object.
func (s *Slot[H, T]) Get(owner H) T {
	slots := slotsOf(owner)
	if slots == nil {
		return s.newNull(null.New(s.iface))
	}
	if e, ok := slots.load(s.name); ok {
		return e.value.(T)
	}
	v := s.newNull(null.New(s.iface))
	slots.store(s.name, v, true)
	return v
}

// Set assigns v to the slot. v must be non-nil and conform to the slot's
// capability.
func (s *Slot[H, T]) Set(owner H, v T) error {
	if isNil(owner) {
		return ErrNilOwner
	}
	if err := s.check(v); err != nil {
		return err
	}
	s.store(owner, v)
	return nil
}

// IsNull reports whether the slot holds a Null Object, resolving the
// default first if needed.
func (s *Slot[H, T]) IsNull(owner H) bool {
	slots := slotsOf(owner)
	if slots == nil {
		return true
	}
	s.Get(owner)
	e, _ := slots.load(s.name)
	return e.null
}

// Recipe registers builder for ns, replacing any earlier recipe for this
// slot and namespace. An empty ns means Operational; a nil builder removes
// the recipe. Recipe returns s for chaining.
func (s *Slot[H, T]) Recipe(ns Namespace, build func(owner H) (T, error)) *Slot[H, T] {
	if build == nil {
		s.class.setRecipe(ns, s.name, nil)
		return s
	}
	s.class.setRecipe(ns, s.name, func(owner H) (any, error) {
		v, err := build(owner)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	return s
}

func (s *Slot[H, T]) check(v any) error {
	if err := capability.Conforms(v, s.iface); err != nil {
		return err
	}
	if _, ok := v.(T); !ok {
		return capability.ConformanceViolationError{
			Interface: s.iface.Name(),
			GotType:   reflect.TypeOf(v).String(),
		}
	}
	return nil
}

func (s *Slot[H, T]) store(owner H, v T) {
	owner.DependencySlots().store(s.name, v, null.Is(v))
}
