// Package null produces side-effect-free default implementations of
// capability interfaces.
//
// An Object is a tagged dispatcher: a table of the interface's declared
// operations mapped to their neutral results, plus a fallback branch for
// anything else. The fallback depends on the interface policy:
//
//   - Strict (default): undeclared operations fail with UnsupportedOperationError.
//   - Weak: every operation succeeds and returns no results.
//
// Go cannot synthesize methods at runtime, so typed access goes through small
// adapter types that embed *Object and forward each method to Call. Those
// adapters are generated by cmd/usefulgen:
//
//	type NullStore struct{ *null.Object }
//
//	func (n NullStore) DeleteBefore(cutoff time.Time) (int64, error) {
//		out := n.Call("DeleteBefore", cutoff)
//		return null.Value[int64](out, 0), null.Value[error](out, 1)
//	}
package null

import (
	"errors"
	"strconv"

	"github.com/sghaida/useful/capability"
)

// ErrUnsupportedOperation is matched (via errors.Is) by every
// UnsupportedOperationError.
var ErrUnsupportedOperation = errors.New("null: unsupported operation")

// UnsupportedOperationError is returned when a Strict Null Object receives an
// operation outside its declared interface.
type UnsupportedOperationError struct {
	Interface string
	Op        string
}

// Error implements the error interface.
func (e UnsupportedOperationError) Error() string {
	// Example: null: operation "Flush" not supported by "mailer"
	return "null: operation " + strconv.Quote(e.Op) + " not supported by " + strconv.Quote(e.Interface)
}

// Is lets errors.Is match ErrUnsupportedOperation.
func (e UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// Object is the default implementation of a capability interface.
//
// It holds no mutable state besides its interface definition, so invoking any
// operation has no observable effect.
type Object struct {
	iface capability.Interface
}

// New returns a Null Object for iface.
func New(iface capability.Interface) *Object {
	return &Object{iface: iface}
}

// Capability returns the interface this object stands in for.
func (o *Object) Capability() capability.Interface { return o.iface }

// NullObject returns o. Typed adapters embedding *Object inherit it, which is
// how Is recognizes them.
func (o *Object) NullObject() *Object { return o }

// Invoke dispatches op by name.
//
// Declared operations return a fresh copy of their default results; arguments
// are ignored. Undeclared operations fail under Strict and return (nil, nil)
// under Weak.
func (o *Object) Invoke(op string, _ ...any) ([]any, error) {
	if declared, ok := o.iface.Op(op); ok {
		return declared.Returns, nil
	}
	if o.iface.Policy() == capability.Weak {
		return nil, nil
	}
	return nil, UnsupportedOperationError{Interface: o.iface.Name(), Op: op}
}

// Call is Invoke for typed adapters: it returns the default results and
// panics with UnsupportedOperationError when the operation is rejected.
func (o *Object) Call(op string, args ...any) []any {
	out, err := o.Invoke(op, args...)
	if err != nil {
		panic(err)
	}
	return out
}

// Responds reports whether op can be invoked without error.
func (o *Object) Responds(op string) bool {
	return o.iface.Policy() == capability.Weak || o.iface.Has(op)
}

// Value returns vals[i] as R. It returns the zero R when i is out of range,
// the entry is nil, or the entry has another type.
func Value[R any](vals []any, i int) R {
	var zero R
	if i < 0 || i >= len(vals) || vals[i] == nil {
		return zero
	}
	v, ok := vals[i].(R)
	if !ok {
		return zero
	}
	return v
}

// Is reports whether v is a Null Object or a typed adapter embedding one.
func Is(v any) bool {
	n, ok := v.(interface{ NullObject() *Object })
	return ok && n.NullObject() != nil
}

var (
	_ capability.Invoker   = (*Object)(nil)
	_ capability.Describer = (*Object)(nil)
)
