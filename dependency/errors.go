package dependency

import (
	"errors"
	"strconv"
)

var (
	// ErrNilOwner is returned when an operation receives a nil owner.
	ErrNilOwner = errors.New("dependency: nil owner")

	// ErrMissingRecipe is matched (via errors.Is) by every MissingRecipeError.
	ErrMissingRecipe = errors.New("dependency: missing recipe")

	// ErrUndeclaredSlot is matched (via errors.Is) by every UndeclaredSlotError.
	ErrUndeclaredSlot = errors.New("dependency: undeclared slot")
)

// MissingRecipeError is returned by Configure when a slot is required to
// be configured but has no recipe in the requested namespace.
type MissingRecipeError struct {
	Class     string
	Slot      string
	Namespace Namespace
}

// Error implements the error interface.
func (e MissingRecipeError) Error() string {
	// Example: dependency: no "operational" recipe for slot "store" of "purge.Purger"
	return "dependency: no " + strconv.Quote(string(e.Namespace)) +
		" recipe for slot " + strconv.Quote(e.Slot) +
		" of " + strconv.Quote(e.Class)
}

// Is lets errors.Is match ErrMissingRecipe.
func (e MissingRecipeError) Is(target error) bool { return target == ErrMissingRecipe }

// UndeclaredSlotError is returned when a slot name is not declared on a class.
type UndeclaredSlotError struct {
	Class string
	Slot  string
}

// Error implements the error interface.
func (e UndeclaredSlotError) Error() string {
	// Example: dependency: slot "cache" not declared on "purge.Purger"
	return "dependency: slot " + strconv.Quote(e.Slot) + " not declared on " + strconv.Quote(e.Class)
}

// Is lets errors.Is match ErrUndeclaredSlot.
func (e UndeclaredSlotError) Is(target error) bool { return target == ErrUndeclaredSlot }

// RecipeError wraps a failure produced while applying a recipe: either the
// builder's own error or a conformance violation of the value it returned.
type RecipeError struct {
	Class     string
	Slot      string
	Namespace Namespace
	Err       error
}

// Error implements the error interface.
func (e RecipeError) Error() string {
	// Example: dependency: "operational" recipe for slot "store" of "purge.Purger": open db: boom
	msg := "dependency: " + strconv.Quote(string(e.Namespace)) +
		" recipe for slot " + strconv.Quote(e.Slot) +
		" of " + strconv.Quote(e.Class)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying failure.
func (e RecipeError) Unwrap() error { return e.Err }

// DuplicateSlotError is the panic value of a second declaration of the same
// slot name on one class.
type DuplicateSlotError struct {
	Class string
	Slot  string
}

// Error implements the error interface.
func (e DuplicateSlotError) Error() string {
	// Example: dependency: slot "store" already declared on "purge.Purger"
	return "dependency: slot " + strconv.Quote(e.Slot) + " already declared on " + strconv.Quote(e.Class)
}
