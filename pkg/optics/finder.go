package optics

import (
	"strconv"

	"github.com/astronomer/datafixers/pkg/dynamic"
)

// Finder builds a composed optic over Dynamic trees by chaining path
// steps (spec.md §4.8). Each step narrows focus; the result is an
// Affine (chain may miss, e.g. a missing map key) unless the chain
// includes allElements or elementWhere, in which case it becomes a
// Traversal.
type Finder struct {
	affine Affine[dynamic.Dynamic, dynamic.Dynamic]
}

// NewFinder starts a chain with the identity focus.
func NewFinder() Finder {
	return Finder{affine: Affine[dynamic.Dynamic, dynamic.Dynamic]{
		ID:    "$",
		Match: func(d dynamic.Dynamic) (dynamic.Dynamic, bool) { return d, true },
		Set:   func(_ dynamic.Dynamic, a dynamic.Dynamic) dynamic.Dynamic { return a },
	}}
}

// Field narrows focus to the named map key.
func (f Finder) Field(name string) Finder {
	step := Affine[dynamic.Dynamic, dynamic.Dynamic]{
		ID: name,
		Match: func(d dynamic.Dynamic) (dynamic.Dynamic, bool) {
			if !d.Has(name) {
				return dynamic.Dynamic{}, false
			}
			return d.Get(name), true
		},
		Set: func(d dynamic.Dynamic, a dynamic.Dynamic) dynamic.Dynamic { return d.Set(name, a) },
	}
	return Finder{affine: ComposeAffineAffine(f.affine, step)}
}

// Element narrows focus to the list element at index.
func (f Finder) Element(index int) Finder {
	step := Affine[dynamic.Dynamic, dynamic.Dynamic]{
		ID: indexID(index),
		Match: func(d dynamic.Dynamic) (dynamic.Dynamic, bool) {
			items, ok := d.AsList().Value()
			if !ok || index < 0 || index >= len(items) {
				return dynamic.Dynamic{}, false
			}
			return items[index], true
		},
		Set: func(d dynamic.Dynamic, a dynamic.Dynamic) dynamic.Dynamic {
			items, ok := d.AsList().Value()
			if !ok || index < 0 || index >= len(items) {
				return d
			}
			native := make([]any, len(items))
			for i, it := range items {
				if i == index {
					native[i] = a.Value()
				} else {
					native[i] = it.Value()
				}
			}
			return dynamic.New(d.Ops(), d.Ops().CreateList(native))
		},
	}
	return Finder{affine: ComposeAffineAffine(f.affine, step)}
}

// ToAffine finishes the chain as an Affine.
func (f Finder) ToAffine() Affine[dynamic.Dynamic, dynamic.Dynamic] { return f.affine }

// AllElements finishes the chain as a Traversal over every element of
// the focused list.
func (f Finder) AllElements() Traversal[dynamic.Dynamic, dynamic.Dynamic] {
	base := f.affine
	return Traversal[dynamic.Dynamic, dynamic.Dynamic]{
		ID: composeID(base.ID, "*"),
		ToSlice: func(d dynamic.Dynamic) []dynamic.Dynamic {
			v, ok := base.Match(d)
			if !ok {
				return nil
			}
			items, ok := v.AsList().Value()
			if !ok {
				return nil
			}
			return items
		},
		ModifyAll: func(d dynamic.Dynamic, fn func(dynamic.Dynamic) dynamic.Dynamic) dynamic.Dynamic {
			v, ok := base.Match(d)
			if !ok {
				return d
			}
			items, ok := v.AsList().Value()
			if !ok {
				return d
			}
			native := make([]any, len(items))
			for i, it := range items {
				native[i] = fn(it).Value()
			}
			return base.Set(d, dynamic.New(d.Ops(), d.Ops().CreateList(native)))
		},
	}
}

// ElementWhere finishes the chain as a Traversal over every element of
// the focused list satisfying predicate.
func (f Finder) ElementWhere(predicate func(dynamic.Dynamic) bool) Traversal[dynamic.Dynamic, dynamic.Dynamic] {
	all := f.AllElements()
	return Traversal[dynamic.Dynamic, dynamic.Dynamic]{
		ID: composeID(all.ID, "?"),
		ToSlice: func(d dynamic.Dynamic) []dynamic.Dynamic {
			var out []dynamic.Dynamic
			for _, e := range all.ToSlice(d) {
				if predicate(e) {
					out = append(out, e)
				}
			}
			return out
		},
		ModifyAll: func(d dynamic.Dynamic, fn func(dynamic.Dynamic) dynamic.Dynamic) dynamic.Dynamic {
			return all.Modify(d, func(e dynamic.Dynamic) dynamic.Dynamic {
				if predicate(e) {
					return fn(e)
				}
				return e
			})
		},
	}
}

// ComposeAffineAffine composes two Affines into an Affine (narrower
// than any named composition rule in spec.md §4.8, but a strict
// specialization of Lens∘Prism/Prism∘Lens — both degrade to Affine).
func ComposeAffineAffine[S, A, B any](outer Affine[S, A], inner Affine[A, B]) Affine[S, B] {
	return Affine[S, B]{
		ID: composeID(outer.ID, inner.ID),
		Match: func(s S) (B, bool) {
			a, ok := outer.Match(s)
			if !ok {
				return *new(B), false
			}
			return inner.Match(a)
		},
		Set: func(s S, b B) S {
			a, ok := outer.Match(s)
			if !ok {
				return s
			}
			return outer.Set(s, inner.Set(a, b))
		},
	}
}

func indexID(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
