package hubbub

import "reflect"

// TypeKey is the process-stable identity of an event-type descriptor. Keys
// are comparable and usable as map keys; two keys are equal iff they denote
// exactly the same Go type. There is no subtype matching: the key for an
// interface and the key for a type implementing it are distinct.
type TypeKey struct {
	t reflect.Type
}

// Key returns the TypeKey for the event type E. E is typically a small
// marker struct or an interface used purely as a routing key; the hub never
// instantiates it.
func Key[E any]() TypeKey {
	return TypeKey{t: reflect.TypeOf((*E)(nil)).Elem()}
}

// KeyOf returns the TypeKey for the dynamic type of descriptor. Pointers are
// not dereferenced, so KeyOf(&e) and KeyOf(e) yield distinct keys. KeyOf(nil)
// returns the zero TypeKey, which matches nothing.
func KeyOf(descriptor any) TypeKey {
	return TypeKey{t: reflect.TypeOf(descriptor)}
}

// Name returns a human-readable name for the event type, used in
// diagnostics.
func (k TypeKey) Name() string {
	if k.t == nil {
		return "<none>"
	}
	return k.t.String()
}

// IsZero reports whether k identifies no type at all.
func (k TypeKey) IsZero() bool {
	return k.t == nil
}

func (k TypeKey) String() string {
	return k.Name()
}
