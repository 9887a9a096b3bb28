// Package fix implements DataFix and the per-type fix registry the
// migration driver (pkg/driver) plans against (spec.md §3, §4.9).
package fix

import (
	"fmt"
	"sort"

	"github.com/astronomer/datafixers/pkg/dataversion"
	"github.com/astronomer/datafixers/pkg/dynamic"
	"github.com/astronomer/datafixers/pkg/result"
	"github.com/astronomer/datafixers/pkg/rewrite"
	"github.com/astronomer/datafixers/pkg/schema"
)

// DataFix is a single per-type, per-version-step transformation. Build
// is consulted by the driver with the input schema (at FromVersion) and
// output schema (at ToVersion) to produce the rewrite rule that carries
// a tree across the step (spec.md §3).
type DataFix struct {
	Name        string
	Type        dynamic.TypeReference
	FromVersion dataversion.DataVersion
	ToVersion   dataversion.DataVersion
	Build       func(from, to *schema.Schema) rewrite.Rule
}

// New constructs a DataFix, rejecting a non-strictly-increasing step
// (spec.md §3 invariant: fromVersion < toVersion strictly).
func New(name string, typeRef dynamic.TypeReference, from, to dataversion.DataVersion, build func(from, to *schema.Schema) rewrite.Rule) (DataFix, error) {
	if !from.Less(to) {
		return DataFix{}, fmt.Errorf("fix %q: fromVersion %s must be strictly less than toVersion %s", name, from, to)
	}
	return DataFix{Name: name, Type: typeRef, FromVersion: from, ToVersion: to, Build: build}, nil
}

// Registry is a map from TypeReference to an ordered sequence of
// DataFix (spec.md §3). Registration is single-threaded at bootstrap;
// Plan is safe to call concurrently once registration is done.
type Registry struct {
	byType map[dynamic.TypeReference][]DataFix
	seen   map[registrationKey]bool
}

type registrationKey struct {
	typeRef dynamic.TypeReference
	from    dataversion.DataVersion
}

// NewRegistry builds an empty fix registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[dynamic.TypeReference][]DataFix),
		seen:   make(map[registrationKey]bool),
	}
}

// Register adds f, keeping each type's fixes sorted by FromVersion.
// Two fixes sharing a (Type, FromVersion) are rejected as a
// configuration error rather than silently composed (spec.md §9: "the
// source permits two fixes with the same (TypeReference, fromVersion)
// without clearly specifying what happens" — this registry rejects at
// registration time; callers wanting both applied register one fix
// whose rule is seq of both).
func (r *Registry) Register(f DataFix) error {
	key := registrationKey{f.Type, f.FromVersion}
	if r.seen[key] {
		return fmt.Errorf("fix registry: duplicate fix %q for type %q at version %s; register one fix whose rule is seq of both instead", f.Name, f.Type, f.FromVersion)
	}
	r.seen[key] = true
	fixes := append(r.byType[f.Type], f)
	sort.Slice(fixes, func(i, j int) bool { return fixes[i].FromVersion.Less(fixes[j].FromVersion) })
	r.byType[f.Type] = fixes
	return nil
}

// Types lists every TypeReference with at least one registered fix.
func (r *Registry) Types() []dynamic.TypeReference {
	out := make([]dynamic.TypeReference, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fixes returns every registered fix for typeRef, sorted by
// FromVersion, for bootstrap-time validation against a SchemaRegistry.
func (r *Registry) Fixes(typeRef dynamic.TypeReference) []DataFix {
	return append([]DataFix(nil), r.byType[typeRef]...)
}

// Plan selects, for typeRef, the ordered sequence of fixes whose step
// lies within [from, to) (spec.md §4.9): fix.fromVersion >= from and
// fix.toVersion <= to, sorted ascending by fromVersion, with chain
// continuity verified (previous.toVersion <= next.fromVersion). Gaps
// are permitted; overlaps are a configuration error surfaced before any
// fix runs. An unknown typeRef plans to no fixes (Success, empty).
func (r *Registry) Plan(typeRef dynamic.TypeReference, from, to dataversion.DataVersion) result.Result[[]DataFix] {
	fixes, ok := r.byType[typeRef]
	if !ok {
		return result.Success[[]DataFix](nil)
	}

	var selected []DataFix
	for _, f := range fixes {
		if f.FromVersion.Compare(from) >= 0 && f.ToVersion.Compare(to) <= 0 {
			selected = append(selected, f)
		}
	}

	for i := 1; i < len(selected); i++ {
		prev, next := selected[i-1], selected[i]
		if prev.ToVersion.Compare(next.FromVersion) > 0 {
			return result.Errorf[[]DataFix]("fix chain overlap for type %q: %q (->%s) overlaps %q (%s->)", typeRef, prev.Name, prev.ToVersion, next.Name, next.FromVersion)
		}
	}

	return result.Success(selected)
}
