// Package codec implements the bidirectional bridge between user types
// and Dynamic trees (spec.md §4.4). A Codec is opaque to the rest of
// the engine except through its Encode/Decode contract; the engine
// never looks inside a codec to find transformations — that is the
// rewrite rule layer's job (pkg/rewrite).
package codec

import (
	"fmt"

	"github.com/astronomer/datafixers/pkg/dynamic"
	"github.com/astronomer/datafixers/pkg/ops"
	"github.com/astronomer/datafixers/pkg/result"
)

// Decoded is the (value, remaining-tree) pair Decode produces: the
// remainder lets callers that decode a sub-structure inspect what, if
// anything, a larger surrounding parse hasn't claimed yet.
type Decoded struct {
	Value     any
	Remainder dynamic.Dynamic
}

// Codec is the type-erased bidirectional bridge a Type (pkg/schema)
// holds. Authoring code builds one through the generic combinators
// below (Xmap, FlatXmap, ListOf, Field, ...); the engine only ever
// calls through this interface.
type Codec interface {
	// Encode builds a tree node for value. The map-shaped codecs (Field,
	// OptionalField, Remainder, And, TaggedChoice) write their fields into
	// prefix; the primitive codecs and ListOf ignore prefix and return a
	// standalone node.
	Encode(value any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic]
	// EncodeStart is the canonical encode: starts from an empty tree.
	EncodeStart(table ops.Operations, value any) result.Result[dynamic.Dynamic]
	// Decode parses input into a value plus whatever of the input the
	// decode did not claim.
	Decode(input dynamic.Dynamic) result.Result[Decoded]
}

// MapCodec is a Codec specialized to map-node context: it reads/writes
// one or more named fields in a surrounding map rather than a whole
// node (spec.md §4.4). Every MapCodec is also usable as a plain Codec
// via AsCodec.
type MapCodec interface {
	Codec
	// Fields lists the named slots this MapCodec claims, so `and`
	// products (pkg/dsl) can verify field-name disjointness.
	Fields() []string
}

// funcCodec adapts a pair of typed encode/decode closures into the
// type-erased Codec interface.
type funcCodec struct {
	encode func(value any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic]
	decode func(input dynamic.Dynamic) result.Result[Decoded]
}

func (c *funcCodec) Encode(value any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
	return c.encode(value, table, prefix)
}

func (c *funcCodec) EncodeStart(table ops.Operations, value any) result.Result[dynamic.Dynamic] {
	return c.encode(value, table, dynamic.New(table, table.Empty()))
}

func (c *funcCodec) Decode(input dynamic.Dynamic) result.Result[Decoded] {
	return c.decode(input)
}

// New builds a Codec from typed encode/decode functions operating on A,
// type-erasing A to `any` at the boundary.
func New[A any](
	encode func(value A, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic],
	decode func(input dynamic.Dynamic) result.Result[result.Pair[A, dynamic.Dynamic]],
) Codec {
	return &funcCodec{
		encode: func(value any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
			typed, ok := value.(A)
			if !ok {
				return result.Errorf[dynamic.Dynamic]("codec: expected %T, got %T", *new(A), value)
			}
			return encode(typed, table, prefix)
		},
		decode: func(input dynamic.Dynamic) result.Result[Decoded] {
			return result.Map(decode(input), func(p result.Pair[A, dynamic.Dynamic]) Decoded {
				return Decoded{Value: p.First, Remainder: p.Second}
			})
		},
	}
}

// Primitive builds a Codec for a primitive type given its Dynamic
// constructor and reader.
func Primitive[A any](
	create func(table ops.Operations, value A) any,
	read func(d dynamic.Dynamic) result.Result[A],
) Codec {
	return New(
		func(value A, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
			return result.Success(dynamic.New(table, create(table, value)))
		},
		func(input dynamic.Dynamic) result.Result[result.Pair[A, dynamic.Dynamic]] {
			return result.Map(read(input), func(v A) result.Pair[A, dynamic.Dynamic] {
				return result.NewPair(v, dynamic.New(input.Ops(), input.Ops().Empty()))
			})
		},
	)
}

// String is the primitive Codec for strings.
var String Codec = Primitive(
	func(table ops.Operations, v string) any { return table.CreateString(v) },
	func(d dynamic.Dynamic) result.Result[string] { return d.AsString() },
)

// Int is the primitive Codec for int32.
var Int Codec = Primitive(
	func(table ops.Operations, v int32) any { return table.CreateInt(v) },
	func(d dynamic.Dynamic) result.Result[int32] { return d.AsInt() },
)

// Long is the primitive Codec for int64.
var Long Codec = Primitive(
	func(table ops.Operations, v int64) any { return table.CreateLong(v) },
	func(d dynamic.Dynamic) result.Result[int64] { return d.AsLong() },
)

// Double is the primitive Codec for float64.
var Double Codec = Primitive(
	func(table ops.Operations, v float64) any { return table.CreateDouble(v) },
	func(d dynamic.Dynamic) result.Result[float64] { return d.AsDouble() },
)

// Float is the primitive Codec for float32.
var Float Codec = Primitive(
	func(table ops.Operations, v float32) any { return table.CreateDouble(float64(v)) },
	func(d dynamic.Dynamic) result.Result[float32] { return d.AsFloat() },
)

// Bool is the primitive Codec for bool.
var Bool Codec = Primitive(
	func(table ops.Operations, v bool) any { return table.CreateBoolean(v) },
	func(d dynamic.Dynamic) result.Result[bool] { return d.AsBoolean() },
)

// Byte is the primitive Codec for byte.
var Byte Codec = Primitive(
	func(table ops.Operations, v byte) any { return table.CreateByte(v) },
	func(d dynamic.Dynamic) result.Result[byte] {
		return result.Map(d.AsInt(), func(i int32) byte { return byte(i) })
	},
)

// Short is the primitive Codec for int16.
var Short Codec = Primitive(
	func(table ops.Operations, v int16) any { return table.CreateShort(v) },
	func(d dynamic.Dynamic) result.Result[int16] {
		return result.Map(d.AsInt(), func(i int32) int16 { return int16(i) })
	},
)

// Xmap builds a new Codec by applying a lossless bidirectional pure
// transform (A -> B, B -> A) around an existing one.
func Xmap[A, B any](base Codec, to func(A) B, from func(B) A) Codec {
	return New(
		func(value B, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
			return base.Encode(from(value), table, prefix)
		},
		func(input dynamic.Dynamic) result.Result[result.Pair[B, dynamic.Dynamic]] {
			decoded := base.Decode(input)
			return result.Map(decoded, func(d Decoded) result.Pair[B, dynamic.Dynamic] {
				a, _ := d.Value.(A)
				return result.NewPair(to(a), d.Remainder)
			})
		},
	)
}

// FlatXmap is Xmap's validating sibling: both directions may fail,
// reported through Result.
func FlatXmap[A, B any](base Codec, to func(A) result.Result[B], from func(B) result.Result[A]) Codec {
	return New(
		func(value B, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
			converted := from(value)
			if converted.IsError() {
				return result.Error[dynamic.Dynamic](converted.Message())
			}
			encoded := base.Encode(converted.ValueOrZero(), table, prefix)
			if converted.IsPartial() {
				return encoded.ToPartial(encoded.ValueOrZero())
			}
			return encoded
		},
		func(input dynamic.Dynamic) result.Result[result.Pair[B, dynamic.Dynamic]] {
			decoded := base.Decode(input)
			return result.FlatMap(decoded, func(d Decoded) result.Result[result.Pair[B, dynamic.Dynamic]] {
				a, _ := d.Value.(A)
				return result.Map(to(a), func(b B) result.Pair[B, dynamic.Dynamic] {
					return result.NewPair(b, d.Remainder)
				})
			})
		},
	)
}

// ListOf builds a Codec for a homogeneous list of elements, each
// encoded/decoded with element.
func ListOf(element Codec) Codec {
	return New(
		func(value []any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
			items := make([]any, 0, len(value))
			var messages []string
			for i, v := range value {
				encoded := element.EncodeStart(table, v)
				if encoded.IsError() {
					return result.Errorf[dynamic.Dynamic]("list element %d: %s", i, encoded.Message())
				}
				if encoded.IsPartial() {
					messages = append(messages, fmt.Sprintf("list element %d: %s", i, encoded.Message()))
				}
				items = append(items, encoded.ValueOrZero().Value())
			}
			list := dynamic.New(table, table.CreateList(items))
			return result.CombinePartial(list, messages...)
		},
		func(input dynamic.Dynamic) result.Result[result.Pair[[]any, dynamic.Dynamic]] {
			got := input.AsList()
			return result.FlatMap(got, func(children []dynamic.Dynamic) result.Result[result.Pair[[]any, dynamic.Dynamic]] {
				values := make([]any, 0, len(children))
				var messages []string
				for i, child := range children {
					decoded := element.Decode(child)
					if decoded.IsError() {
						return result.Errorf[result.Pair[[]any, dynamic.Dynamic]]("list element %d: %s", i, decoded.Message())
					}
					if decoded.IsPartial() {
						messages = append(messages, fmt.Sprintf("list element %d: %s", i, decoded.Message()))
					}
					values = append(values, decoded.ValueOrZero().Value)
				}
				empty := dynamic.New(input.Ops(), input.Ops().Empty())
				return result.CombinePartial(result.NewPair(values, empty), messages...)
			})
		},
	)
}
