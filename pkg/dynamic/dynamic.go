// Package dynamic provides Dynamic, the format-agnostic tree wrapper
// rewrite rules and fixes operate on (spec.md §3, §4.2), and
// TaggedDynamic, a Dynamic paired with the TypeReference that routes it
// through the fix registry.
package dynamic

import (
	"github.com/astronomer/datafixers/pkg/ops"
	"github.com/astronomer/datafixers/pkg/result"
)

// Dynamic pairs an Operations table with a value native to that table.
// It is immutable: every method that looks like a mutation returns a
// new Dynamic: it never modifies d.value in place. The Operations table
// is fixed for the lifetime of a Dynamic (spec.md §3 invariant) — there
// is no way to rebind it short of constructing a new Dynamic.
type Dynamic struct {
	opsTable ops.Operations
	value    any
}

// New wraps value as a Dynamic backed by table.
func New(table ops.Operations, value any) Dynamic {
	return Dynamic{opsTable: table, value: value}
}

// Ops returns the Operations table backing d.
func (d Dynamic) Ops() ops.Operations { return d.opsTable }

// Value returns the native tree value d wraps.
func (d Dynamic) Value() any { return d.value }

// Equal reports whether d and other are backed by the identical
// Operations table (by reference, not structural equality of two
// different instances for the same backend — spec.md §9) and carry an
// equal underlying value.
func (d Dynamic) Equal(other Dynamic, valuesEqual func(a, b any) bool) bool {
	if !sameOpsIdentity(d.opsTable, other.opsTable) {
		return false
	}
	return valuesEqual(d.value, other.value)
}

func sameOpsIdentity(a, b ops.Operations) bool {
	return interfaceIdentity(a) == interfaceIdentity(b)
}

// interfaceIdentity gives a comparable key for an Operations instance.
// Operations implementations are expected to be pointer-like (a *Ops or
// similar); the underlying pointer address is what "same backend
// instance" means here.
func interfaceIdentity(o ops.Operations) any {
	return o
}

// EmptyMap returns an empty map Dynamic on d's backend.
func (d Dynamic) EmptyMap() Dynamic { return New(d.opsTable, d.opsTable.EmptyMap()) }

// EmptyList returns an empty list Dynamic on d's backend.
func (d Dynamic) EmptyList() Dynamic { return New(d.opsTable, d.opsTable.EmptyList()) }

// CreateString lifts a Go string into a Dynamic on d's backend.
func (d Dynamic) CreateString(s string) Dynamic { return New(d.opsTable, d.opsTable.CreateString(s)) }

// CreateInt lifts a Go int32 into a Dynamic on d's backend.
func (d Dynamic) CreateInt(i int32) Dynamic { return New(d.opsTable, d.opsTable.CreateInt(i)) }

// CreateLong lifts a Go int64 into a Dynamic on d's backend.
func (d Dynamic) CreateLong(i int64) Dynamic { return New(d.opsTable, d.opsTable.CreateLong(i)) }

// CreateFloat lifts a Go float32 into a Dynamic on d's backend.
func (d Dynamic) CreateFloat(f float32) Dynamic { return New(d.opsTable, d.opsTable.CreateFloat(f)) }

// CreateDouble lifts a Go float64 into a Dynamic on d's backend.
func (d Dynamic) CreateDouble(f float64) Dynamic { return New(d.opsTable, d.opsTable.CreateDouble(f)) }

// CreateByte lifts a Go byte into a Dynamic on d's backend.
func (d Dynamic) CreateByte(b byte) Dynamic { return New(d.opsTable, d.opsTable.CreateByte(b)) }

// CreateShort lifts a Go int16 into a Dynamic on d's backend.
func (d Dynamic) CreateShort(s int16) Dynamic { return New(d.opsTable, d.opsTable.CreateShort(s)) }

// CreateBoolean lifts a Go bool into a Dynamic on d's backend.
func (d Dynamic) CreateBoolean(b bool) Dynamic { return New(d.opsTable, d.opsTable.CreateBoolean(b)) }

// CreateNumeric lifts a Go float64 into a Dynamic on d's backend using
// the backend's generic numeric constructor, for callers that don't
// know ahead of time which sized numeric type they hold.
func (d Dynamic) CreateNumeric(n float64) Dynamic { return New(d.opsTable, d.opsTable.CreateNumeric(n)) }

// Get navigates to the child at key, returning a lifted accessor that
// stays in the Error arm once any intermediate is missing rather than
// panicking (spec.md §4.2: "flows through missing intermediates as
// Error without throwing").
func (d Dynamic) Get(key string) Dynamic {
	if !d.opsTable.IsMap(d.value) {
		return New(d.opsTable, missingMarker{})
	}
	child, ok := d.opsTable.Get(d.value, key)
	if !ok {
		return New(d.opsTable, missingMarker{})
	}
	return New(d.opsTable, child)
}

type missingMarker struct{}

func (d Dynamic) isMissing() bool {
	_, ok := d.value.(missingMarker)
	return ok
}

// Set returns a new Dynamic with key set to value's underlying tree
// value. If d is not a map, Set returns a Dynamic carrying an Error
// marker. pkg/rewrite's Seq and Batch stop at such a Dynamic and return
// it as is; pkg/driver then halts the chain and returns Partial with the
// tree as it stood before the failing fix.
func (d Dynamic) Set(key string, value Dynamic) Dynamic {
	if !d.opsTable.IsMap(d.value) {
		return New(d.opsTable, errorMarker{message: "set on non-map value"})
	}
	return New(d.opsTable, d.opsTable.Set(d.value, key, value.value))
}

type errorMarker struct{ message string }

// IsErrorMarked reports whether d wraps a failed operation's sentinel
// rather than a real tree value.
func (d Dynamic) IsErrorMarked() (string, bool) {
	if em, ok := d.value.(errorMarker); ok {
		return em.message, true
	}
	return "", false
}

// Remove returns a new Dynamic with key absent. No-op if d is not a map
// or key is already absent.
func (d Dynamic) Remove(key string) Dynamic {
	if !d.opsTable.IsMap(d.value) {
		return d
	}
	return New(d.opsTable, d.opsTable.Remove(d.value, key))
}

// Has reports whether key is present on a map Dynamic; false for any
// other shape.
func (d Dynamic) Has(key string) bool {
	if !d.opsTable.IsMap(d.value) {
		return false
	}
	return d.opsTable.Has(d.value, key)
}

// Update replaces the value at key with fn applied to its current
// Dynamic (or an empty-marker Dynamic if absent), then sets it back.
// No-op if d is not a map.
func (d Dynamic) Update(key string, fn func(Dynamic) Dynamic) Dynamic {
	if !d.opsTable.IsMap(d.value) {
		return d
	}
	current := d.Get(key)
	updated := fn(current)
	return d.Set(key, updated)
}

// AsString reads d as a string.
func (d Dynamic) AsString() result.Result[string] {
	if d.isMissing() {
		return result.Error[string]("value is missing")
	}
	return d.opsTable.GetStringValue(d.value)
}

// AsInt reads d as a number, truncated to int32.
func (d Dynamic) AsInt() result.Result[int32] {
	return result.Map(d.numberResult(), func(f float64) int32 { return int32(f) })
}

// AsLong reads d as a number, truncated to int64.
func (d Dynamic) AsLong() result.Result[int64] {
	return result.Map(d.numberResult(), func(f float64) int64 { return int64(f) })
}

// AsFloat reads d as a number, narrowed to float32.
func (d Dynamic) AsFloat() result.Result[float32] {
	return result.Map(d.numberResult(), func(f float64) float32 { return float32(f) })
}

// AsDouble reads d as a number.
func (d Dynamic) AsDouble() result.Result[float64] {
	return d.numberResult()
}

func (d Dynamic) numberResult() result.Result[float64] {
	if d.isMissing() {
		return result.Error[float64]("value is missing")
	}
	return d.opsTable.GetNumberValue(d.value)
}

// AsBoolean reads d as a boolean.
func (d Dynamic) AsBoolean() result.Result[bool] {
	if d.isMissing() {
		return result.Error[bool]("value is missing")
	}
	return d.opsTable.GetBooleanValue(d.value)
}

// AsList reads d as a list of child Dynamics.
func (d Dynamic) AsList() result.Result[[]Dynamic] {
	if d.isMissing() {
		return result.Error[[]Dynamic]("value is missing")
	}
	got := d.opsTable.GetList(d.value)
	return result.Map(got, func(items []any) []Dynamic {
		out := make([]Dynamic, 0, len(items))
		for _, item := range items {
			out = append(out, New(d.opsTable, item))
		}
		return out
	})
}

// AsMap reads d as an ordered slice of (key, Dynamic) entries.
func (d Dynamic) AsMap() result.Result[[]result.Pair[string, Dynamic]] {
	if d.isMissing() {
		return result.Error[[]result.Pair[string, Dynamic]]("value is missing")
	}
	got := d.opsTable.GetMapEntries(d.value)
	return result.Map(got, func(entries []ops.Entry) []result.Pair[string, Dynamic] {
		out := make([]result.Pair[string, Dynamic], 0, len(entries))
		for _, e := range entries {
			out = append(out, result.NewPair(e.Key, New(d.opsTable, e.Value)))
		}
		return out
	})
}

// ConvertTo rebuilds d's tree on a different backend.
func (d Dynamic) ConvertTo(target ops.Operations) Dynamic {
	return New(target, d.opsTable.ConvertTo(target, d.value))
}

// Snapshot renders d as a debug string, truncated to maxLength with a
// trailing marker when the limit is hit (spec.md §9). Returns "" when
// the backend cannot produce one.
func (d Dynamic) Snapshot(maxLength int) string {
	s, ok := d.opsTable.ToStringSnapshot(d.value)
	if !ok {
		return ""
	}
	if maxLength > 0 && len(s) > maxLength {
		return s[:maxLength] + "... (truncated)"
	}
	return s
}
