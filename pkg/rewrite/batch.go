package rewrite

import "github.com/astronomer/datafixers/pkg/dynamic"

// Batch accumulates atomic field operations against one map node and
// builds them into a single Rule (spec.md §4.7). It is semantically
// equivalent to the corresponding Seq of individual rules, and it runs
// the same way: each queued operation is applied in turn and produces
// its own intermediate tree, so it allocates no less than that Seq. It
// does not recurse into nested maps (spec.md §9) — wrap it in Transform
// for that.
type Batch struct {
	ops []func(dynamic.Dynamic) dynamic.Dynamic
}

// NewBatch starts an empty batch.
func NewBatch() *Batch { return &Batch{} }

// Rename queues a rename, executed in insertion order.
func (b *Batch) Rename(from, to string) *Batch {
	b.ops = append(b.ops, RenameField(from, to).Apply)
	return b
}

// Remove queues a field removal.
func (b *Batch) Remove(name string) *Batch {
	b.ops = append(b.ops, RemoveField(name).Apply)
	return b
}

// Set queues an unconditional write of name, with the value valueFn
// computes from the whole map node; use SetStatic for a literal value.
func (b *Batch) Set(name string, valueFn func(dynamic.Dynamic) dynamic.Dynamic) *Batch {
	b.ops = append(b.ops, func(d dynamic.Dynamic) dynamic.Dynamic {
		return d.Set(name, valueFn(d))
	})
	return b
}

// SetStatic queues an unconditional literal field write.
func (b *Batch) SetStatic(name string, value dynamic.Dynamic) *Batch {
	b.ops = append(b.ops, SetField(name, value).Apply)
	return b
}

// Transform queues a field transform by fn, no-op if the field is
// absent.
func (b *Batch) Transform(name string, fn func(dynamic.Dynamic) dynamic.Dynamic) *Batch {
	b.ops = append(b.ops, func(d dynamic.Dynamic) dynamic.Dynamic {
		if !d.Has(name) {
			return d
		}
		return d.Update(name, fn)
	})
	return b
}

// AddIfMissing queues adding name with valueFn's result only if absent.
func (b *Batch) AddIfMissing(name string, valueFn func(dynamic.Dynamic) dynamic.Dynamic) *Batch {
	b.ops = append(b.ops, func(d dynamic.Dynamic) dynamic.Dynamic {
		if d.Has(name) {
			return d
		}
		return d.Set(name, valueFn(d))
	})
	return b
}

// AddIfMissingStatic queues adding name with a literal value only if
// absent.
func (b *Batch) AddIfMissingStatic(name string, value dynamic.Dynamic) *Batch {
	return b.AddIfMissing(name, func(dynamic.Dynamic) dynamic.Dynamic { return value })
}

// Build assembles the accumulated operations into a single Rule that
// runs them, in insertion order, in one pass.
func (b *Batch) Build() Rule {
	ops := append([]func(dynamic.Dynamic) dynamic.Dynamic(nil), b.ops...)
	return newRule("batch", func(d dynamic.Dynamic) dynamic.Dynamic {
		for _, op := range ops {
			d = op(d)
			if _, isErr := d.IsErrorMarked(); isErr {
				return d
			}
		}
		return d
	})
}
