package service

import "encoding/json"

// Nullable is a partial update field that tells an omitted key apart from an explicit null.
// Set is true when the key was present; Valid is false when it was null.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Val   T
}

// Present returns a field set to v
func Present[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Val: v}
}

// Cleared returns a field explicitly set to null
func Cleared[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	var zero T
	n.Set, n.Valid, n.Val = true, false, zero
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &n.Val); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns the value, or nil when the field is omitted or null
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Val
	return &v
}
