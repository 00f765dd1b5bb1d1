package rowan

import "errors"

// Recoverable errors, returned to the caller. Editor UIs must tolerate
// stale metadata, so signal and property name misses are ordinary errors
// with a descriptive reason.
var (
	// ErrUnknownSignal is returned when connecting to or emitting a signal
	// that was never declared on the object.
	ErrUnknownSignal = errors.New("rowan: unknown signal")

	// ErrUnknownProperty is returned when getting or setting a property
	// name that is not registered for the node's class.
	ErrUnknownProperty = errors.New("rowan: unknown property")

	// ErrInvalidPropertyValue is returned when a property set is attempted
	// with a value of the wrong type. Values are never silently coerced.
	ErrInvalidPropertyValue = errors.New("rowan: invalid property value")

	// ErrUnknownClass is returned when instantiating a snapshot whose class
	// was never registered.
	ErrUnknownClass = errors.New("rowan: unknown class")
)

// Structural invariant violations. These indicate a programming error in
// tree manipulation and are surfaced as panics carrying the wrapped
// sentinel, never silently ignored.
var (
	// ErrDuplicateParent: attaching a node that already has a parent.
	ErrDuplicateParent = errors.New("rowan: node already has a parent")

	// ErrNotAChild: removing a node that is not an owned child.
	ErrNotAChild = errors.New("rowan: node is not a child of this node")

	// ErrCyclicParenting: attaching an ancestor as its own descendant.
	ErrCyclicParenting = errors.New("rowan: adding child would create a cycle")
)
