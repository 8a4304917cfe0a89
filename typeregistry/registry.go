// Package typeregistry is the process-wide table of polymorphic type
// descriptors that the archive consults to reconstruct an object whose
// most-derived type is known only at read time, and to decide whether a
// reference taken through a narrower static type needs its dynamic type
// name on the wire at all.
//
// A C++ archive under multiple inheritance needs this table to compute a
// byte offset between a Derived* and one of its Base* subobjects. A Go
// interface value is already a (type, pointer) pair, so no such offset
// ever needs computing here — the same *Derived comes back out regardless
// of which base interface it travels through. What the table still has to
// do, and does faithfully, is: construct a zero value given only a wire
// type name, and verify (by walking the declared bases, recursively, the
// same way the original cast algorithm does) that a hierarchy is
// completely registered before trusting it.
package typeregistry

import (
	"fmt"
	"reflect"
	"sync"
)

// Descriptor is one entry in the registry: a stable name, the Go type it
// names, the names of its direct declared bases, and (for concrete,
// constructible types) a constructor.
//
// Descriptor deliberately knows nothing about archive.Serializable: the
// archive package imports typeregistry to resolve dynamic types during a
// transfer, so typeregistry cannot import archive back without a cycle.
// New returns a bare interface{} (the freshly allocated pointer); the
// archive package performs the type assertion to its own Serializable
// interface and turns a failed assertion into an error. This mirrors the
// split the original registry already had between "can this type be
// constructed" (a registry question) and "can the result be serialized"
// (an archive question) — only the mechanism differs.
type Descriptor struct {
	Name   string
	GoType reflect.Type
	Bases  []string
	newFn  func() any
}

// Constructible reports whether this descriptor can default-construct an
// instance. Abstract base markers registered with RegisterBase cannot.
func (d *Descriptor) Constructible() bool { return d.newFn != nil }

// New default-constructs a new instance of this descriptor's concrete
// type, returned as a bare interface{} (callers know the concrete type
// from d.GoType, or assert it to whatever interface they need — the
// archive package asserts to its own Serializable). Panics if called on
// a non-constructible descriptor; callers must check Constructible first
// (the archive package does, converting the failure into
// NotDefaultConstructibleError).
func (d *Descriptor) New() any {
	if d.newFn == nil {
		panic("typeregistry: New called on non-constructible descriptor " + d.Name)
	}
	return d.newFn()
}

var (
	mu       sync.RWMutex
	byName   = map[string]*Descriptor{}
	byGoType = map[reflect.Type]string{}
)

// Register installs a descriptor for concrete pointer type P (e.g.
// *geom.Sphere, which must implement archive.Serializable — enforced by
// the archive package, not here, to keep this package free of an import
// cycle), under the given stable name and declared direct bases. bases
// must themselves already be registered (either via Register or
// RegisterBase) for the cast algorithm to have anywhere to walk to;
// Register does not enforce registration order across packages, so a
// missing base only surfaces the first time it is actually needed,
// exactly as spec.md describes ("partial registration yields a runtime
// failure at the first missing link").
//
// Intended to be called once per type from an init() function, mirroring
// the original archive's RegisterClassForArchive static-initializer
// pattern.
func Register[P any](name string, bases ...string) {
	var zero P
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Ptr {
		panic("typeregistry: Register requires a pointer type, got " + fmt.Sprint(t))
	}
	elem := t.Elem()

	mu.Lock()
	defer mu.Unlock()
	byName[name] = &Descriptor{
		Name:   name,
		GoType: t,
		Bases:  bases,
		newFn: func() any {
			return reflect.New(elem).Interface().(P)
		},
	}
	byGoType[t] = name
}

// RegisterBase installs an abstract marker descriptor for an interface (or
// any non-constructible) type T, giving it a stable name so that it can
// serve as a static reference type in Shared[T]/Raw[T] and participate in
// needed_downcast comparisons and base-chain walks. T is never
// constructed directly; only its registered concrete descendants are.
func RegisterBase[T any](name string, bases ...string) {
	var zero T
	t := reflect.TypeOf(&zero).Elem()

	mu.Lock()
	defer mu.Unlock()
	byName[name] = &Descriptor{
		Name:   name,
		GoType: t,
		Bases:  bases,
	}
	byGoType[t] = name
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (*Descriptor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := byName[name]
	return d, ok
}

// IsRegistered reports whether name has a descriptor.
func IsRegistered(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// NameOf returns the stable name registered for Go type t, if any. t
// should be the pointer type for concrete registrations (as passed to
// Register) or the bare type for base markers (as passed to
// RegisterBase).
func NameOf(t reflect.Type) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	name, ok := byGoType[t]
	return name, ok
}

// CastFailureError is returned when Upcast or Downcast exhausts every
// declared base without finding a chain to the requested name.
type CastFailureError struct {
	From, To string
}

func (e *CastFailureError) Error() string {
	return fmt.Sprintf("typeregistry: no registered base chain from %q to %q", e.From, e.To)
}

// Upcast verifies that a value whose dynamic type is registered under
// fromName may be viewed as the registered base target, by walking
// fromName's declared bases left to right and recursing — the same
// left-to-right trial-conversion order as the original cast algorithm.
// Returns a *CastFailureError if no chain exists (which, per spec.md
// §4.3, "typically indicates incomplete hierarchy registration").
//
// Because a Go interface's (type, pointer) pair never needs adjusting,
// Upcast takes and returns no value; callers that need the value back as
// interface target typically already have it and only need the error
// as an assurance the cast is legitimate.
func Upcast(fromName, target string) error {
	if fromName == target {
		return nil
	}
	d, ok := Lookup(fromName)
	if !ok {
		return &CastFailureError{From: fromName, To: target}
	}
	for _, base := range d.Bases {
		if Upcast(base, target) == nil {
			return nil
		}
	}
	return &CastFailureError{From: fromName, To: target}
}

// Downcast is the symmetric counterpart of Upcast: it verifies that a
// value accessed through registered base baseName, known to ultimately be
// of dynamic type sourceName, can be recovered. The original archive's
// Downcast actually computes a pointer; here, since identity never moves,
// it degenerates to the same chain-existence check as Upcast, called with
// the arguments in the same order: a chain from sourceName up to
// baseName.
func Downcast(sourceName, baseName string) error {
	return Upcast(sourceName, baseName)
}
