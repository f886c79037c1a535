package capability

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// ErrConformanceViolation is matched (via errors.Is) by every
// ConformanceViolationError.
var ErrConformanceViolation = errors.New("capability: conformance violation")

// Invoker is implemented by values that dispatch operations by name,
// such as Null Objects.
type Invoker interface {
	Invoke(op string, args ...any) ([]any, error)
}

// Describer is implemented by values that know which capability they serve.
type Describer interface {
	Capability() Interface
}

// ConformanceViolationError is returned when a value does not implement a
// capability interface.
type ConformanceViolationError struct {
	// Interface is the capability name.
	Interface string

	// GotType is the dynamic type of the offending value ("<nil>" for nil).
	GotType string

	// Missing lists declared operations with no matching method.
	Missing []string
}

// Error implements the error interface.
func (e ConformanceViolationError) Error() string {
	// Example: capability: *mail.Fake does not conform to "mailer" (missing Send, Pending)
	msg := "capability: " + e.GotType + " does not conform to " + strconv.Quote(e.Interface)
	if len(e.Missing) > 0 {
		msg += " (missing " + strings.Join(e.Missing, ", ") + ")"
	}
	return msg
}

// Is lets errors.Is match ErrConformanceViolation.
func (e ConformanceViolationError) Is(target error) bool {
	return target == ErrConformanceViolation
}

// Conforms checks that v implements every operation of iface.
//
// A value conforms when it has an exported method for each declared
// operation, or when it describes itself (Describer) as serving an interface
// with the same name. Nil never conforms.
func Conforms(v any, iface Interface) error {
	if isNil(v) {
		return ConformanceViolationError{Interface: iface.name, GotType: "<nil>"}
	}
	if d, ok := v.(Describer); ok && d.Capability().name == iface.name {
		return nil
	}

	t := reflect.TypeOf(v)
	var missing []string
	for _, o := range iface.ops {
		if _, ok := t.MethodByName(o.Name); !ok {
			missing = append(missing, o.Name)
		}
	}
	if len(missing) > 0 {
		return ConformanceViolationError{Interface: iface.name, GotType: t.String(), Missing: missing}
	}
	return nil
}

// Covers reports which methods of the Go interface type t are not declared
// as operations of iface. An empty result means every method of t has a
// matching operation, so a Null Object can answer all of them.
func Covers(t reflect.Type, iface Interface) []string {
	if t == nil || t.Kind() != reflect.Interface {
		return nil
	}
	var undeclared []string
	for idx := 0; idx < t.NumMethod(); idx++ {
		name := t.Method(idx).Name
		if !iface.Has(name) {
			undeclared = append(undeclared, name)
		}
	}
	return undeclared
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
