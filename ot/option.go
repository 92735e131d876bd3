package ot

import "fmt"

// Option holds a value which a font may or may not provide, such as the
// PostScript name of a named instance, the segment map of an axis or the
// zero-delta row of an item variation store. It replaces sentinel values
// like 0xFFFF name IDs.
type Option[T any] struct {
	value T
	some  bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, some: true}
}

// None returns an absent value.
func None[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) IsSome() bool { return o.some }
func (o Option[T]) IsNone() bool { return !o.some }

// Unwrap returns the value in "comma ok" form.
func (o Option[T]) Unwrap() (T, bool) {
	return o.value, o.some
}

// Or returns the value, or dflt if absent.
func (o Option[T]) Or(dflt T) T {
	if o.some {
		return o.value
	}
	return dflt
}

func (o Option[T]) String() string {
	if !o.some {
		return "none"
	}
	return fmt.Sprint(o.value)
}
