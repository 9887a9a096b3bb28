// Package optics implements the law-abiding, composable accessors of
// spec.md §4.8: Getter, Lens, Prism, Affine, Iso, and Traversal, plus
// their composition rules and the Finder path-chaining helper.
//
// The spec's generic Optic<S, T, A, B> shape is collapsed to the
// monomorphic Optic<S, S, A, A> form per spec.md §9 — every variant
// here is parameterized by just (S, A).
package optics

// Getter is read-only focus: S -> A.
type Getter[S, A any] struct {
	ID  string
	Get func(S) A
}

// Lens is always-succeeds focused access on product types.
type Lens[S, A any] struct {
	ID  string
	Get func(S) A
	Set func(S, A) S
}

// Modify applies fn to the focused value: set(s, fn(get(s))).
func (l Lens[S, A]) Modify(s S, fn func(A) A) S {
	return l.Set(s, fn(l.Get(s)))
}

// Prism is partial focus on sum types.
type Prism[S, A any] struct {
	ID    string
	Match func(S) (A, bool)
	Build func(A) S
}

// Affine is optional focus that need not be a sum-type case.
type Affine[S, A any] struct {
	ID    string
	Match func(S) (A, bool)
	Set   func(S, A) S
}

// Modify applies fn to the focused value if present, leaving s
// unchanged otherwise.
func (a Affine[S, A]) Modify(s S, fn func(A) A) S {
	if v, ok := a.Match(s); ok {
		return a.Set(s, fn(v))
	}
	return s
}

// Iso is an isomorphism: simultaneously a Lens and a Prism.
type Iso[S, A any] struct {
	ID   string
	To   func(S) A
	From func(A) S
}

// Reverse flips an Iso's direction.
func (i Iso[S, A]) Reverse() Iso[A, S] {
	return Iso[A, S]{ID: i.ID, To: i.From, From: i.To}
}

// AsLens views an Iso as a Lens.
func (i Iso[S, A]) AsLens() Lens[S, A] {
	return Lens[S, A]{ID: i.ID, Get: i.To, Set: func(_ S, a A) S { return i.From(a) }}
}

// AsPrism views an Iso as a Prism (match always succeeds).
func (i Iso[S, A]) AsPrism() Prism[S, A] {
	return Prism[S, A]{ID: i.ID, Match: func(s S) (A, bool) { return i.To(s), true }, Build: i.From}
}

// Traversal is zero-or-more focus.
type Traversal[S, A any] struct {
	ID        string
	ToSlice   func(S) []A
	ModifyAll func(S, func(A) A) S
}

// Modify maps fn over every focused element.
func (t Traversal[S, A]) Modify(s S, fn func(A) A) S {
	return t.ModifyAll(s, fn)
}

func composeID(parent, child string) string { return parent + "." + child }

// ComposeLens composes two Lenses into a Lens (Lens ∘ Lens → Lens).
func ComposeLens[S, A, B any](outer Lens[S, A], inner Lens[A, B]) Lens[S, B] {
	return Lens[S, B]{
		ID:  composeID(outer.ID, inner.ID),
		Get: func(s S) B { return inner.Get(outer.Get(s)) },
		Set: func(s S, b B) S { return outer.Set(s, inner.Set(outer.Get(s), b)) },
	}
}

// ComposePrism composes two Prisms into a Prism (Prism ∘ Prism → Prism).
func ComposePrism[S, A, B any](outer Prism[S, A], inner Prism[A, B]) Prism[S, B] {
	return Prism[S, B]{
		ID: composeID(outer.ID, inner.ID),
		Match: func(s S) (B, bool) {
			a, ok := outer.Match(s)
			if !ok {
				return *new(B), false
			}
			return inner.Match(a)
		},
		Build: func(b B) S { return outer.Build(inner.Build(b)) },
	}
}

// ComposeIso composes two Isos into an Iso (Iso ∘ Iso → Iso).
func ComposeIso[S, A, B any](outer Iso[S, A], inner Iso[A, B]) Iso[S, B] {
	return Iso[S, B]{
		ID:   composeID(outer.ID, inner.ID),
		To:   func(s S) B { return inner.To(outer.To(s)) },
		From: func(b B) S { return outer.From(inner.From(b)) },
	}
}

// ComposeIsoLens composes an Iso with a Lens into a Lens (Iso ∘ Lens → Lens).
func ComposeIsoLens[S, A, B any](outer Iso[S, A], inner Lens[A, B]) Lens[S, B] {
	return ComposeLens(outer.AsLens(), inner)
}

// ComposeIsoPrism composes an Iso with a Prism into a Prism (Iso ∘ Prism → Prism).
func ComposeIsoPrism[S, A, B any](outer Iso[S, A], inner Prism[A, B]) Prism[S, B] {
	return ComposePrism(outer.AsPrism(), inner)
}

// ComposeLensPrism composes a Lens with a Prism into an Affine
// (Lens ∘ Prism → Affine: may miss).
func ComposeLensPrism[S, A, B any](outer Lens[S, A], inner Prism[A, B]) Affine[S, B] {
	return Affine[S, B]{
		ID:    composeID(outer.ID, inner.ID),
		Match: func(s S) (B, bool) { return inner.Match(outer.Get(s)) },
		Set:   func(s S, b B) S { return outer.Set(s, inner.Build(b)) },
	}
}

// ComposePrismLens composes a Prism with a Lens into an Affine
// (Prism ∘ Lens → Affine: may miss).
func ComposePrismLens[S, A, B any](outer Prism[S, A], inner Lens[A, B]) Affine[S, B] {
	return Affine[S, B]{
		ID: composeID(outer.ID, inner.ID),
		Match: func(s S) (B, bool) {
			a, ok := outer.Match(s)
			if !ok {
				return *new(B), false
			}
			return inner.Get(a), true
		},
		Set: func(s S, b B) S {
			a, ok := outer.Match(s)
			if !ok {
				return s
			}
			return outer.Build(inner.Set(a, b))
		},
	}
}

// ComposeAnyTraversal composes any optic that can read+write A given S
// with a Traversal[A, B], yielding a Traversal[S, B] (Anything ∘
// Traversal → Traversal).
func ComposeAnyTraversal[S, A, B any](id string, getAll func(S) []A, modifyAll func(S, func(A) A) S, inner Traversal[A, B]) Traversal[S, B] {
	return Traversal[S, B]{
		ID: composeID(id, inner.ID),
		ToSlice: func(s S) []B {
			var out []B
			for _, a := range getAll(s) {
				out = append(out, inner.ToSlice(a)...)
			}
			return out
		},
		ModifyAll: func(s S, fn func(B) B) S {
			return modifyAll(s, func(a A) A { return inner.Modify(a, fn) })
		},
	}
}

// LensAsTraversal views a Lens as a single-element Traversal, letting
// it compose with ComposeAnyTraversal.
func LensAsTraversal[S, A any](l Lens[S, A]) Traversal[S, A] {
	return Traversal[S, A]{
		ID:        l.ID,
		ToSlice:   func(s S) []A { return []A{l.Get(s)} },
		ModifyAll: func(s S, fn func(A) A) S { return l.Modify(s, fn) },
	}
}
