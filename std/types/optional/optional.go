package optional

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Optional holds a value that may be absent.
// The zero value is None.
type Optional[T any] struct {
	value T
	isSet bool
}

// Some creates an optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, isSet: true}
}

// None creates an empty optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) IsSet() bool {
	return o.isSet
}

func (o *Optional[T]) Set(v T) {
	o.value = v
	o.isSet = true
}

func (o *Optional[T]) Unset() {
	var zero T
	o.value = zero
	o.isSet = false
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.isSet
}

// GetOr returns the value, or def when unset.
func (o Optional[T]) GetOr(def T) T {
	if o.isSet {
		return o.value
	}
	return def
}

// Unwrap returns the value and panics when unset.
func (o Optional[T]) Unwrap() T {
	if !o.isSet {
		panic("Optional value is not set")
	}
	return o.value
}

// String formats the value, or "none".
func (o Optional[T]) String() string {
	if !o.isSet {
		return "none"
	}
	return fmt.Sprint(o.value)
}

// CastInt converts an integer optional to another integer type.
func CastInt[A, B constraints.Integer](a Optional[A]) (out Optional[B]) {
	if v, ok := a.Get(); ok {
		out.Set(B(v))
	}
	return out
}
