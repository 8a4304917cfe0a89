// Package geom is the domain collaborator the archive engine was built
// to serve: a small set of mesh/geometry types that persist themselves
// through the archive's Serialize hook. None of these types are part of
// the archive engine itself (spec.md §1 calls the mesh/geometry domain
// classes "external collaborators" that merely use the engine) — they
// exist here to exercise the generic capabilities (Shared references,
// polymorphism across two registered bases, slices, maps, bulk float64
// transfer, CString) against a realistic call shape.
package geom

import (
	"netgen.dev/ngcore/archive"
	"netgen.dev/ngcore/typeregistry"
)

// Primitive is a registered abstract base: any solid or surface shape
// that can report a scalar bounding measure. Concrete shapes that want
// to be referenced as a Primitive (rather than only through their own
// concrete pointer type) must implement it and be registered as a
// descendant.
type Primitive interface {
	archive.Serializable
	BoundingMeasure() float64
}

// Identifiable is the second registered abstract base: anything carrying
// a stable human-readable label. Sphere below implements both Primitive
// and Identifiable, making it this package's multiple-inheritance
// example (spec.md §8's "Derived : Base1, Base2" scenario).
type Identifiable interface {
	archive.Serializable
	Label() string
}

func init() {
	typeregistry.RegisterBase[Primitive]("geom.Primitive")
	typeregistry.RegisterBase[Identifiable]("geom.Identifiable")
	typeregistry.Register[*Sphere]("geom.Sphere", "geom.Primitive", "geom.Identifiable")
	typeregistry.Register[*Box]("geom.Box", "geom.Primitive")
	typeregistry.Register[*Node]("geom.Node")
	typeregistry.Register[*Mesh]("geom.Mesh")
}

// Sphere is registered under two direct bases, Primitive and
// Identifiable — the multiple-inheritance fixture: a Primitive reference
// and an Identifiable reference to the same *Sphere must collapse into
// one object after a round trip (spec.md §8 scenario 3).
type Sphere struct {
	Radius float64
	Center [3]float64
	Name   *string // optional C-string (nil is a distinct state from "")
}

func (s *Sphere) BoundingMeasure() float64 { return s.Radius }

func (s *Sphere) Label() string {
	if s.Name == nil {
		return ""
	}
	return *s.Name
}

func (s *Sphere) Serialize(a *archive.Archive) error {
	if err := a.Float64(&s.Radius); err != nil {
		return err
	}
	for i := range s.Center {
		if err := a.Float64(&s.Center[i]); err != nil {
			return err
		}
	}
	return a.CString(&s.Name)
}

// Box implements only Primitive — a single-base fixture alongside
// Sphere's two-base one.
type Box struct {
	Extents [3]float64
}

func (b *Box) BoundingMeasure() float64 {
	return b.Extents[0] * b.Extents[1] * b.Extents[2]
}

func (b *Box) Serialize(a *archive.Archive) error {
	for i := range b.Extents {
		if err := a.Float64(&b.Extents[i]); err != nil {
			return err
		}
	}
	return nil
}

// Node is the cyclic-graph fixture: a self-loop (Next pointing back to
// the same Node) must round-trip without the reader looping forever
// (spec.md §8 scenario 2), which the archive's identity table guarantees
// by recording an object's id before recursing into its Serialize call.
type Node struct {
	Value float64
	Next  *Node
}

func (n *Node) Serialize(a *archive.Archive) error {
	if err := a.Float64(&n.Value); err != nil {
		return err
	}
	return archive.Shared(a, &n.Next)
}

// Mesh ties the container and bulk-transfer helpers together: a point
// cloud transferred through the bulk Float64Slice path, a set of shared
// primitives (so two faces can reference the same Sphere), and a named
// attribute map.
type Mesh struct {
	Points     []float64 // flattened xyz triples, bulk-transferred
	Shapes     []Primitive
	Attributes map[string]string
}

func (m *Mesh) Serialize(a *archive.Archive) error {
	if err := a.Float64Slice(&m.Points); err != nil {
		return err
	}
	if err := archive.Slice(a, &m.Shapes, func(a *archive.Archive, p *Primitive) error {
		return archive.Shared(a, p)
	}); err != nil {
		return err
	}
	return archive.Map(a, &m.Attributes,
		func(a *archive.Archive, k *string) error { return a.String(k) },
		func(a *archive.Archive, v *string) error { return a.String(v) },
	)
}

// Provider is a geometry plugin: something that can build a default Mesh
// for a named kind. Registry is the trivial plugin list spec.md §1 calls
// out as an explicit external collaborator, not part of the archive
// engine proper (SPEC_FULL.md §7's GeometryRegister supplement).
type Provider interface {
	Kind() string
	New() *Mesh
}

// Registry is a plain slice of registered providers, with no locking or
// dynamic dispatch beyond a linear scan — deliberately kept trivial.
type Registry struct {
	providers []Provider
}

// Add registers p. Intended to be called from an init() function
// alongside the package's own typeregistry registrations.
func (r *Registry) Add(p Provider) {
	r.providers = append(r.providers, p)
}

// All returns every registered provider, in registration order.
func (r *Registry) All() []Provider {
	return r.providers
}

// Find returns the provider registered under kind, if any.
func (r *Registry) Find(kind string) (Provider, bool) {
	for _, p := range r.providers {
		if p.Kind() == kind {
			return p, true
		}
	}
	return nil, false
}
