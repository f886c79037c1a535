// Package capability defines named contracts that dependency slots must satisfy.
//
// A capability Interface is an identifier plus an ordered set of operations.
// Each operation carries the benign default results a Null Object returns
// when the operation is invoked on an unconfigured slot.
//
// Interfaces are immutable once defined: accessors hand out copies, and
// Weak returns a new value instead of mutating the receiver.
//
// Example:
//
//	var Mailer = capability.Must("mailer",
//		capability.Operation("Send", error(nil)),
//		capability.Operation("Pending", 0),
//	)
package capability

import (
	"errors"
	"strconv"
	"strings"
)

// Policy controls how a Null Object treats operations outside the interface.
type Policy int

const (
	// Strict rejects undeclared operations with an unsupported-operation error.
	Strict Policy = iota

	// Weak accepts any operation and returns no results.
	Weak
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Weak:
		return "weak"
	default:
		return "unknown"
	}
}

// ErrEmptyName is returned when an interface or an operation has no name.
var ErrEmptyName = errors.New("capability: empty name")

// DuplicateOperationError is returned when an interface declares the same
// operation twice.
type DuplicateOperationError struct {
	Interface string
	Op        string
}

// Error implements the error interface.
func (e DuplicateOperationError) Error() string {
	// Example: capability: duplicate operation "Send" in "mailer"
	return "capability: duplicate operation " + strconv.Quote(e.Op) + " in " + strconv.Quote(e.Interface)
}

// Op is one operation of a capability interface.
//
// Returns holds the neutral results a Null Object yields for this operation,
// in result order. A nil entry stands for the zero value of the result type.
type Op struct {
	Name    string
	Returns []any
}

// Operation builds an Op from a name and its default results.
func Operation(name string, returns ...any) Op {
	return Op{Name: name, Returns: returns}
}

// Interface is a named, ordered set of operations.
type Interface struct {
	name   string
	ops    []Op
	index  map[string]int
	policy Policy
}

// New defines a Strict capability interface.
//
// It fails with ErrEmptyName when the interface or any operation is unnamed,
// and with DuplicateOperationError when an operation name repeats.
func New(name string, ops ...Op) (Interface, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Interface{}, ErrEmptyName
	}

	iface := Interface{
		name:  name,
		ops:   make([]Op, 0, len(ops)),
		index: make(map[string]int, len(ops)),
	}
	for _, op := range ops {
		if strings.TrimSpace(op.Name) == "" {
			return Interface{}, ErrEmptyName
		}
		if _, dup := iface.index[op.Name]; dup {
			return Interface{}, DuplicateOperationError{Interface: name, Op: op.Name}
		}
		iface.index[op.Name] = len(iface.ops)
		iface.ops = append(iface.ops, Op{Name: op.Name, Returns: cloneValues(op.Returns)})
	}
	return iface, nil
}

// Must is like New but panics on an invalid definition.
// Intended for package-level variables.
func Must(name string, ops ...Op) Interface {
	iface, err := New(name, ops...)
	if err != nil {
		panic(err)
	}
	return iface
}

// Name returns the interface identifier.
func (i Interface) Name() string { return i.name }

// Policy returns the conformance policy used by Null Objects of this interface.
func (i Interface) Policy() Policy { return i.policy }

// Weak returns a copy of the interface with the Weak policy.
// Reserved for ad hoc interfaces where drift detection is not wanted.
func (i Interface) Weak() Interface {
	cp := i
	cp.policy = Weak
	return cp
}

// Len returns the number of declared operations.
func (i Interface) Len() int { return len(i.ops) }

// Has reports whether op is declared.
func (i Interface) Has(op string) bool {
	_, ok := i.index[op]
	return ok
}

// Op returns the declared operation named op.
func (i Interface) Op(op string) (Op, bool) {
	idx, ok := i.index[op]
	if !ok {
		return Op{}, false
	}
	o := i.ops[idx]
	return Op{Name: o.Name, Returns: cloneValues(o.Returns)}, true
}

// Ops returns the declared operations in declaration order.
func (i Interface) Ops() []Op {
	out := make([]Op, len(i.ops))
	for idx, o := range i.ops {
		out[idx] = Op{Name: o.Name, Returns: cloneValues(o.Returns)}
	}
	return out
}

// Names returns the declared operation names in declaration order.
func (i Interface) Names() []string {
	out := make([]string, len(i.ops))
	for idx, o := range i.ops {
		out[idx] = o.Name
	}
	return out
}

// IsZero reports whether the interface was never defined.
func (i Interface) IsZero() bool { return i.name == "" }

// String returns the interface name and its policy, e.g. mailer(strict).
func (i Interface) String() string {
	return i.name + "(" + i.policy.String() + ")"
}

func cloneValues(vals []any) []any {
	if len(vals) == 0 {
		return nil
	}
	out := make([]any, len(vals))
	copy(out, vals)
	return out
}
