// Package ops defines the format-agnostic Operations contract every
// serialization backend must implement (spec.md §4.1). It is the
// interface Dynamic trees, rewrite rules, and codecs all go through;
// this package never looks at any concrete backend's internals.
package ops

import "github.com/astronomer/datafixers/pkg/result"

// Entry is one (key, value) pair of a map node, in the backend's native
// element type.
type Entry struct {
	Key   string
	Value any
}

// Operations is the contract a concrete serialization backend (JSON,
// YAML, TOML, a binary tree, ...) implements so that rewrite rules and
// codecs never need to know which backend they are running against.
//
// Values passed to and returned from Operations are always the
// backend's native tree-node representation, boxed as any. Concrete
// backends assert their own node type internally; Operations
// implementations must not panic on a type assertion failure and must
// instead return the Result-bearing error described by each method.
type Operations interface {
	// Empty constructors.
	Empty() any
	EmptyMap() any
	EmptyList() any

	// Type predicates. Exactly one predicate is satisfied by any given
	// non-empty value; Empty() satisfies none of them.
	IsMap(v any) bool
	IsList(v any) bool
	IsString(v any) bool
	IsNumber(v any) bool
	IsBoolean(v any) bool

	// Primitive constructors.
	CreateString(s string) any
	CreateInt(i int32) any
	CreateLong(i int64) any
	CreateFloat(f float32) any
	CreateDouble(f float64) any
	CreateByte(b byte) any
	CreateShort(s int16) any
	CreateBoolean(b bool) any
	CreateNumeric(n float64) any

	// Primitive readers.
	GetStringValue(v any) result.Result[string]
	GetNumberValue(v any) result.Result[float64]
	GetBooleanValue(v any) result.Result[bool]

	// List operations.
	CreateList(values []any) any
	GetList(v any) result.Result[[]any]
	MergeToList(list any, value any) result.Result[any]

	// Map operations.
	CreateMap(entries []Entry) any
	GetMapEntries(v any) result.Result[[]Entry]
	Get(m any, key string) (any, bool)
	Set(m any, key string, value any) any
	Remove(m any, key string) any
	Has(m any, key string) bool
	MergeToMap(m any, key string, value any) result.Result[any]
	MergeMaps(m any, other any) result.Result[any]

	// ConvertTo converts value, a tree native to this Operations, into
	// the equivalent tree for other by structural recursion.
	ConvertTo(other Operations, value any) any

	// ToStringSnapshot renders value as a human-readable string for
	// diagnostics. Returns ok=false when the backend cannot produce one;
	// callers must treat that as an empty snapshot, never an error.
	ToStringSnapshot(v any) (s string, ok bool)
}

// missingValue is the type of Missing, a sentinel some backends may choose
// to return from Get for an absent key instead of using the ok bool.
// Operations implementations are free to ignore it; Dynamic only relies
// on the ok return value.
type missingValue struct{}

// Missing is the canonical "no such value" sentinel.
var Missing any = missingValue{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingValue)
	return ok
}
