package codec

import (
	"fmt"

	"github.com/astronomer/datafixers/pkg/dynamic"
	"github.com/astronomer/datafixers/pkg/ops"
	"github.com/astronomer/datafixers/pkg/result"
)

// claimedSet is the set of field names a record's non-remainder parts
// bind, computed once so the remainder part can find what's left.
type claimedSet map[string]bool

// recordPart is the internal contract a MapCodec built by this file
// satisfies, beyond the public MapCodec interface: encodeField/decodeField
// operate directly against a surrounding map rather than a standalone
// node, which is what lets `and` assemble several parts over one map
// without round-tripping through intermediate Dynamics per field.
type recordPart interface {
	MapCodec
	encodeField(value any, table ops.Operations, into dynamic.Dynamic) result.Result[dynamic.Dynamic]
	decodeField(input dynamic.Dynamic, claimed claimedSet) result.Result[any]
}

type fieldCodec struct {
	name     string
	inner    Codec
	optional bool
}

// Field builds a MapCodec claiming the single named slot name, encoded
// and decoded through inner. A value of nil for an optional field means
// absent (spec.md §4.5 field/optional).
func Field(name string, inner Codec) MapCodec        { return &fieldCodec{name: name, inner: inner} }
func OptionalField(name string, inner Codec) MapCodec { return &fieldCodec{name: name, inner: inner, optional: true} }

func (f *fieldCodec) Fields() []string { return []string{f.name} }

func (f *fieldCodec) encodeField(value any, table ops.Operations, into dynamic.Dynamic) result.Result[dynamic.Dynamic] {
	if value == nil {
		if f.optional {
			return result.Success(into)
		}
		return result.Errorf[dynamic.Dynamic]("field %q: required value is nil", f.name)
	}
	encoded := f.inner.EncodeStart(table, value)
	if encoded.IsError() {
		return result.Errorf[dynamic.Dynamic]("field %q: %s", f.name, encoded.Message())
	}
	updated := into.Set(f.name, encoded.ValueOrZero())
	if msg, isErr := updated.IsErrorMarked(); isErr {
		return result.Errorf[dynamic.Dynamic]("field %q: %s", f.name, msg)
	}
	if encoded.IsPartial() {
		return result.Partial(updated, fmt.Sprintf("field %q: %s", f.name, encoded.Message()))
	}
	return result.Success(updated)
}

func (f *fieldCodec) decodeField(input dynamic.Dynamic, _ claimedSet) result.Result[any] {
	if !input.Has(f.name) {
		if f.optional {
			return result.Success[any](nil)
		}
		return result.Errorf[any]("field %q is missing", f.name)
	}
	decoded := f.inner.Decode(input.Get(f.name))
	if decoded.IsError() {
		return result.Errorf[any]("field %q: %s", f.name, decoded.Message())
	}
	return result.CombinePartial[any](decoded.ValueOrZero().Value, partialMessage(decoded, f.name)...)
}

func partialMessage(d result.Result[Decoded], name string) []string {
	if !d.IsPartial() {
		return nil
	}
	return []string{fmt.Sprintf("field %q: %s", name, d.Message())}
}

// Encode/Decode/EncodeStart implement MapCodec as a standalone Codec by
// starting from (and returning) an otherwise-empty map.
func (f *fieldCodec) Encode(value any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
	return f.encodeField(value, table, prefix)
}

func (f *fieldCodec) EncodeStart(table ops.Operations, value any) result.Result[dynamic.Dynamic] {
	return f.encodeField(value, table, dynamic.New(table, table.EmptyMap()))
}

func (f *fieldCodec) Decode(input dynamic.Dynamic) result.Result[Decoded] {
	claimed := claimedSet{f.name: true}
	return result.Map(f.decodeField(input, claimed), func(v any) Decoded {
		return Decoded{Value: v, Remainder: dynamic.New(input.Ops(), input.Ops().Empty())}
	})
}

// remainderCodec captures every map entry not claimed by its siblings
// in the surrounding `and` (spec.md §4.5 remainder).
type remainderCodec struct{}

// Remainder builds the remainder MapCodec. Its decoded value is a
// map[string]any of the raw, backend-native leftover entries; encoding
// merges those entries back into the accumulating map unchanged.
func Remainder() MapCodec { return &remainderCodec{} }

func (r *remainderCodec) Fields() []string { return nil }

func (r *remainderCodec) encodeField(value any, table ops.Operations, into dynamic.Dynamic) result.Result[dynamic.Dynamic] {
	leftover, ok := value.(map[string]any)
	if !ok {
		if value == nil {
			return result.Success(into)
		}
		return result.Errorf[dynamic.Dynamic]("remainder: expected map[string]any, got %T", value)
	}
	out := into
	for k, v := range leftover {
		out = out.Set(k, dynamic.New(table, v))
	}
	return result.Success(out)
}

func (r *remainderCodec) decodeField(input dynamic.Dynamic, claimed claimedSet) result.Result[any] {
	entries := input.AsMap()
	if entries.IsError() {
		return result.Errorf[any]("remainder: %s", entries.Message())
	}
	leftover := make(map[string]any)
	for _, e := range entries.ValueOrZero() {
		if claimed[e.First] {
			continue
		}
		leftover[e.First] = e.Second.Value()
	}
	return result.Success[any](leftover)
}

func (r *remainderCodec) Encode(value any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
	return r.encodeField(value, table, prefix)
}

func (r *remainderCodec) EncodeStart(table ops.Operations, value any) result.Result[dynamic.Dynamic] {
	return r.encodeField(value, table, dynamic.New(table, table.EmptyMap()))
}

func (r *remainderCodec) Decode(input dynamic.Dynamic) result.Result[Decoded] {
	return result.Map(r.decodeField(input, claimedSet{}), func(v any) Decoded {
		return Decoded{Value: v, Remainder: dynamic.New(input.Ops(), input.Ops().Empty())}
	})
}

// And combines several MapCodecs over the same map node into one
// product Codec (spec.md §4.5 `and`). Field names across non-remainder
// parts must be disjoint; at most one part may be a remainder. The
// assembled value is a map[string]any keyed by field name, with any
// remainder's leftover entries merged in at the same level.
func And(parts ...MapCodec) Codec {
	claimed := claimedSet{}
	for _, p := range parts {
		for _, name := range p.Fields() {
			claimed[name] = true
		}
	}
	return &andCodec{parts: parts, claimed: claimed}
}

type andCodec struct {
	parts   []MapCodec
	claimed claimedSet
}

func (a *andCodec) Fields() []string {
	out := make([]string, 0, len(a.claimed))
	for name := range a.claimed {
		out = append(out, name)
	}
	return out
}

func (a *andCodec) Encode(value any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
	values, ok := value.(map[string]any)
	if !ok {
		return result.Errorf[dynamic.Dynamic]("and: expected map[string]any, got %T", value)
	}
	acc := prefix
	var messages []string
	for _, part := range a.parts {
		rp := part.(recordPart)
		var fieldValue any
		if len(rp.Fields()) == 1 {
			fieldValue = values[rp.Fields()[0]]
		} else {
			fieldValue = remainderValue(values, a.claimed)
		}
		encoded := rp.encodeField(fieldValue, table, acc)
		if encoded.IsError() {
			return result.Errorf[dynamic.Dynamic]("%s", encoded.Message())
		}
		acc = encoded.ValueOrZero()
	}
	return result.CombinePartial(acc, messages...)
}

func (a *andCodec) EncodeStart(table ops.Operations, value any) result.Result[dynamic.Dynamic] {
	return a.Encode(value, table, dynamic.New(table, table.EmptyMap()))
}

func (a *andCodec) Decode(input dynamic.Dynamic) result.Result[Decoded] {
	values := make(map[string]any)
	var messages []string
	for _, part := range a.parts {
		rp := part.(recordPart)
		decoded := rp.decodeField(input, a.claimed)
		if decoded.IsError() {
			return result.Errorf[Decoded]("%s", decoded.Message())
		}
		if decoded.IsPartial() {
			messages = append(messages, decoded.Message())
		}
		if len(rp.Fields()) == 1 {
			values[rp.Fields()[0]] = decoded.ValueOrZero()
		} else if leftover, ok := decoded.ValueOrZero().(map[string]any); ok {
			for k, v := range leftover {
				values[k] = v
			}
		}
	}
	empty := dynamic.New(input.Ops(), input.Ops().Empty())
	return result.CombinePartial(Decoded{Value: values, Remainder: empty}, messages...)
}

func remainderValue(values map[string]any, claimed claimedSet) map[string]any {
	leftover := make(map[string]any)
	for k, v := range values {
		if !claimed[k] {
			leftover[k] = v
		}
	}
	return leftover
}

// Tagged is the decoded value of a TaggedChoice sum type: Tag selects
// the variant, Value is that variant's decoded payload.
type Tagged struct {
	Tag   string
	Value any
}

// TaggedChoice builds a sum-type Codec selected by the value of a
// named discriminator field (spec.md §4.5 taggedChoice). The
// discriminator field is itself encoded/decoded via discriminatorField
// against discriminatorCodec; each variant's codec then encodes/decodes
// the remaining shape over the same map node.
func TaggedChoice(discriminatorField string, discriminatorCodec Codec, variants map[string]Codec) Codec {
	return &taggedChoiceCodec{field: discriminatorField, tagCodec: discriminatorCodec, variants: variants}
}

type taggedChoiceCodec struct {
	field    string
	tagCodec Codec
	variants map[string]Codec
}

// lookupVariant reports whether tag names a known variant: Right holds
// the matching Codec, Left echoes the tag back for an unknown-variant
// error message.
func lookupVariant(variants map[string]Codec, tag string) result.Either[string, Codec] {
	if c, ok := variants[tag]; ok {
		return result.Right[string, Codec](c)
	}
	return result.Left[string, Codec](tag)
}

func (t *taggedChoiceCodec) Encode(value any, table ops.Operations, prefix dynamic.Dynamic) result.Result[dynamic.Dynamic] {
	tagged, ok := value.(Tagged)
	if !ok {
		return result.Errorf[dynamic.Dynamic]("taggedChoice: expected Tagged, got %T", value)
	}
	return result.Fold(lookupVariant(t.variants, tagged.Tag),
		func(tag string) result.Result[dynamic.Dynamic] {
			return result.Errorf[dynamic.Dynamic]("taggedChoice: unknown variant %q", tag)
		},
		func(variant Codec) result.Result[dynamic.Dynamic] {
			tagEncoded := t.tagCodec.EncodeStart(table, tagged.Tag)
			if tagEncoded.IsError() {
				return result.Errorf[dynamic.Dynamic]("taggedChoice: %s", tagEncoded.Message())
			}
			withTag := prefix.Set(t.field, tagEncoded.ValueOrZero())
			variantEncoded := variant.Encode(tagged.Value, table, withTag)
			if variantEncoded.IsError() {
				return result.Errorf[dynamic.Dynamic]("taggedChoice variant %q: %s", tagged.Tag, variantEncoded.Message())
			}
			return variantEncoded
		},
	)
}

func (t *taggedChoiceCodec) EncodeStart(table ops.Operations, value any) result.Result[dynamic.Dynamic] {
	return t.Encode(value, table, dynamic.New(table, table.EmptyMap()))
}

func (t *taggedChoiceCodec) Decode(input dynamic.Dynamic) result.Result[Decoded] {
	tagDecoded := t.tagCodec.Decode(input.Get(t.field))
	if tagDecoded.IsError() {
		return result.Errorf[Decoded]("taggedChoice: discriminator %q: %s", t.field, tagDecoded.Message())
	}
	tag := fmt.Sprint(tagDecoded.ValueOrZero().Value)
	return result.Fold(lookupVariant(t.variants, tag),
		func(tag string) result.Result[Decoded] {
			return result.Errorf[Decoded]("taggedChoice: unknown variant %q", tag)
		},
		func(variant Codec) result.Result[Decoded] {
			decoded := variant.Decode(input)
			if decoded.IsError() {
				return result.Errorf[Decoded]("taggedChoice variant %q: %s", tag, decoded.Message())
			}
			return result.Map(decoded, func(d Decoded) Decoded {
				return Decoded{Value: Tagged{Tag: tag, Value: d.Value}, Remainder: d.Remainder}
			})
		},
	)
}
