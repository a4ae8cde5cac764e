package domain

// Inherit is the wire sentinel for an attribute that takes its value from
// the logical parent chain (or, at the root, from settings).
const Inherit = "<<inherit>>"

// DeleteMarker removes a key from a merged dictionary. A child can assign
// it to "unset" a key inherited from its parent.
const DeleteMarker = "~"

// Value is a resolvable attribute slot: either an explicit value or the
// inherit marker. The zero Value is an explicit zero of T.
type Value[T any] struct {
	value     T
	inherited bool
}

// Explicit wraps a concrete value.
func Explicit[T any](v T) Value[T] {
	return Value[T]{value: v}
}

// Inherited returns a slot holding the inherit marker.
func Inherited[T any]() Value[T] {
	return Value[T]{inherited: true}
}

// IsInherited reports whether the slot holds the inherit marker.
func (v Value[T]) IsInherited() bool {
	return v.inherited
}

// Get returns the explicit value, or the zero of T for an inherited slot.
func (v Value[T]) Get() T {
	return v.value
}

// annihilate drops every key whose value is the delete marker. Applied
// after a parent/child dictionary merge.
func annihilate(m map[string]any) {
	for k, v := range m {
		if s, ok := v.(string); ok && s == DeleteMarker {
			delete(m, k)
		}
	}
}
