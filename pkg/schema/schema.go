// Package schema implements the versioned catalogue of expected shapes
// (spec.md §4.3): Type binds a TypeReference to a Codec, TypeRegistry
// collects those bindings for one DataVersion, Schema chains a
// TypeRegistry to an optional parent for inherited lookups, and
// Registry orders Schemas by DataVersion for planning.
package schema

import (
	"fmt"
	"sort"

	"github.com/astronomer/datafixers/pkg/codec"
	"github.com/astronomer/datafixers/pkg/dataversion"
	"github.com/astronomer/datafixers/pkg/dynamic"
)

// Type pairs a TypeReference with the Codec that encodes/decodes it.
type Type struct {
	Reference dynamic.TypeReference
	Codec     codec.Codec
}

// NewType builds a Type.
func NewType(ref dynamic.TypeReference, c codec.Codec) Type {
	return Type{Reference: ref, Codec: c}
}

// TypeRegistry is an immutable map from TypeReference to Type, built
// once via registerTypes during Schema construction (spec.md §4.3).
type TypeRegistry struct {
	types map[dynamic.TypeReference]Type
}

// newTypeRegistry builds a TypeRegistry from the given types, rejecting
// duplicate references.
func newTypeRegistry(types []Type) (TypeRegistry, error) {
	m := make(map[dynamic.TypeReference]Type, len(types))
	for _, t := range types {
		if _, exists := m[t.Reference]; exists {
			return TypeRegistry{}, fmt.Errorf("duplicate type reference %q", t.Reference)
		}
		m[t.Reference] = t
	}
	return TypeRegistry{types: m}, nil
}

// get looks up ref in this registry only, no parent delegation.
func (r TypeRegistry) get(ref dynamic.TypeReference) (Type, bool) {
	t, ok := r.types[ref]
	return t, ok
}

// References lists every TypeReference this registry binds directly.
func (r TypeRegistry) References() []dynamic.TypeReference {
	out := make([]dynamic.TypeReference, 0, len(r.types))
	for ref := range r.types {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Schema is a versioned catalogue: a DataVersion, the types it
// introduces or overrides, and an optional parent Schema that GetType
// falls back to for references this schema doesn't bind itself
// (spec.md §4.3).
type Schema struct {
	version  dataversion.DataVersion
	parent   *Schema
	registry TypeRegistry
}

// New builds a Schema at version, optionally chained to parent, with
// the given registerTypes hook supplying its own type bindings. The
// hook runs exactly once, at construction — spec.md §4.3's two-phase
// build: declare the registry shape, then freeze it.
func New(version dataversion.DataVersion, parent *Schema, registerTypes func() []Type) (*Schema, error) {
	if parent != nil && !parent.version.Less(version) {
		return nil, fmt.Errorf("schema %s: parent version %s must be strictly less", version, parent.version)
	}
	registry, err := newTypeRegistry(registerTypes())
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", version, err)
	}
	return &Schema{version: version, parent: parent, registry: registry}, nil
}

// Version returns the DataVersion this schema catalogues.
func (s *Schema) Version() dataversion.DataVersion { return s.version }

// Parent returns the schema this one falls back to, or nil at the root.
func (s *Schema) Parent() *Schema { return s.parent }

// GetType resolves ref against this schema, then its parent chain,
// returning (Type{}, false) if nothing in the chain binds it.
func (s *Schema) GetType(ref dynamic.TypeReference) (Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.registry.get(ref); ok {
			return t, true
		}
	}
	return Type{}, false
}

// References lists every TypeReference resolvable from this schema,
// including ones only bound on a parent.
func (s *Schema) References() []dynamic.TypeReference {
	seen := make(map[dynamic.TypeReference]bool)
	for cur := s; cur != nil; cur = cur.parent {
		for _, ref := range cur.registry.References() {
			seen[ref] = true
		}
	}
	out := make([]dynamic.TypeReference, 0, len(seen))
	for ref := range seen {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Registry is an ordered collection of Schemas keyed by DataVersion,
// used by the migration driver (pkg/driver) to locate the schema in
// effect at a given version (spec.md §4.3, §4.9).
type Registry struct {
	order   []dataversion.DataVersion
	schemas map[dataversion.DataVersion]*Schema
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[dataversion.DataVersion]*Schema)}
}

// Register adds s to the registry. Versions must be registered in
// strictly increasing order; registering a version at or below the
// current maximum is rejected (spec.md §4.3).
func (r *Registry) Register(s *Schema) error {
	if len(r.order) > 0 && !r.order[len(r.order)-1].Less(s.Version()) {
		return fmt.Errorf("schema: version %s does not strictly increase on %s", s.Version(), r.order[len(r.order)-1])
	}
	r.order = append(r.order, s.Version())
	r.schemas[s.Version()] = s
	return nil
}

// Get returns the schema registered exactly at version.
func (r *Registry) Get(version dataversion.DataVersion) (*Schema, bool) {
	s, ok := r.schemas[version]
	return s, ok
}

// ClosestOrBelow returns the schema with the largest registered
// version that is <= version, or (nil, false) if version precedes
// every registered schema.
func (r *Registry) ClosestOrBelow(version dataversion.DataVersion) (*Schema, bool) {
	var best *dataversion.DataVersion
	for _, v := range r.order {
		if v.Less(version) || v == version {
			vv := v
			best = &vv
			continue
		}
		break
	}
	if best == nil {
		return nil, false
	}
	return r.schemas[*best], true
}

// Versions returns every registered DataVersion in ascending order.
func (r *Registry) Versions() []dataversion.DataVersion {
	out := make([]dataversion.DataVersion, len(r.order))
	copy(out, r.order)
	return out
}
