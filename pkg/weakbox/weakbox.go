// Package weakbox wraps arbitrary pointer-identity objects in comparable,
// non-owning reference boxes. A Box never keeps its referent alive: once the
// last strong reference elsewhere in the program is dropped, the box turns
// empty on its own, without any notification.
//
// Boxes are value types and safe to use as map keys. Two boxes are equal iff
// they were created from the same pointer with the same static type; this
// identity survives collection of the referent, so two boxes over distinct
// dead objects still compare unequal.
package weakbox

import (
	"reflect"
	"unsafe"
	"weak"
)

// Box is a hashable weak reference to a pointer-identity object.
//
// The zero Box wraps nothing and is never alive.
type Box struct {
	ref weak.Pointer[struct{}]
	typ reflect.Type
}

// Wrap creates a Box over v. It reports false when v is not a non-nil
// pointer: value types have no stable identity to wrap.
func Wrap(v any) (Box, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Box{}, false
	}
	// The weak pointer is made through the object's base address so the box
	// stays comparable regardless of the referent's concrete type. The
	// original pointer type is kept alongside to reconstruct the referent.
	return Box{
		ref: weak.Make((*struct{})(rv.UnsafePointer())),
		typ: rv.Type(),
	}, true
}

// Value returns the referent as its original pointer type. It reports false
// once the referent has been collected, or for the zero Box.
func (b Box) Value() (any, bool) {
	if b.typ == nil {
		return nil, false
	}
	p := b.ref.Value()
	if p == nil {
		return nil, false
	}
	// The referent is alive for the duration of this call because p is a
	// strong pointer to it.
	return reflect.NewAt(b.typ.Elem(), unsafe.Pointer(p)).Interface(), true
}

// Alive reports whether the referent has not been collected yet.
func (b Box) Alive() bool {
	return b.typ != nil && b.ref.Value() != nil
}

// IsZero reports whether b wraps nothing.
func (b Box) IsZero() bool {
	return b.typ == nil
}

// TypeName returns the referent's static pointer type name, for diagnostics.
func (b Box) TypeName() string {
	if b.typ == nil {
		return "<nil>"
	}
	return b.typ.String()
}
