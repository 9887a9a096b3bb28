// Package dsl is the declarative surface for building Codecs (spec.md
// §4.5). A Template is a type-erased blueprint; Build instantiates it
// into a concrete codec.Codec given a TypeFamily that resolves named
// type references for recursive templates. The DSL itself never talks
// to a backend operations table directly — that happens once Build
// hands off to pkg/codec.
package dsl

import (
	"github.com/astronomer/datafixers/pkg/codec"
	"github.com/astronomer/datafixers/pkg/dynamic"
)

// TypeFamily resolves a TypeReference to its Codec, supporting
// recursive and cross-type template references.
type TypeFamily interface {
	Resolve(ref dynamic.TypeReference) (codec.Codec, bool)
}

// Template is a type-erased blueprint that a TypeFamily instantiates
// into a concrete Codec.
type Template interface {
	Build(family TypeFamily) codec.Codec
}

// fieldTemplate is the subset of Template that and() accepts: a
// template that claims one or more named map slots rather than a
// whole value.
type fieldTemplate interface {
	buildField(family TypeFamily) codec.MapCodec
}

// primitiveTemplate adapts a build function into a Template. It backs
// the leaf primitive templates (a fixed Codec) and the composite
// templates list, taggedChoice and and, which build their inner
// templates against family when Build is called.
type primitiveTemplate struct {
	build func(family TypeFamily) codec.Codec
}

func (p primitiveTemplate) Build(family TypeFamily) codec.Codec { return p.build(family) }

func constant(c codec.Codec) Template {
	return primitiveTemplate{build: func(TypeFamily) codec.Codec { return c }}
}

// String is the primitive string template.
func String() Template { return constant(codec.String) }

// IntType is the primitive int32 template.
func IntType() Template { return constant(codec.Int) }

// LongType is the primitive int64 template.
func LongType() Template { return constant(codec.Long) }

// FloatType is the primitive float32 template.
func FloatType() Template { return constant(codec.Float) }

// DoubleType is the primitive float64 template.
func DoubleType() Template { return constant(codec.Double) }

// Bool is the primitive boolean template.
func Bool() Template { return constant(codec.Bool) }

// ByteType is the primitive byte template.
func ByteType() Template { return constant(codec.Byte) }

// ShortType is the primitive int16 template.
func ShortType() Template { return constant(codec.Short) }

// List builds a homogeneous-list template over inner.
func List(inner Template) Template {
	return primitiveTemplate{build: func(family TypeFamily) codec.Codec {
		return codec.ListOf(inner.Build(family))
	}}
}

// TaggedChoice builds a sum-type template selected by the value of a
// named discriminator field.
func TaggedChoice(discriminatorField string, discriminator Template, variants map[string]Template) Template {
	return primitiveTemplate{build: func(family TypeFamily) codec.Codec {
		built := make(map[string]codec.Codec, len(variants))
		for tag, t := range variants {
			built[tag] = t.Build(family)
		}
		return codec.TaggedChoice(discriminatorField, discriminator.Build(family), built)
	}}
}

// fieldBuilder implements both Template (whole-value use) and
// fieldTemplate (use inside and()).
type fieldBuilder struct {
	name     string
	inner    Template
	optional bool
}

func (f fieldBuilder) Build(family TypeFamily) codec.Codec { return f.buildField(family) }

func (f fieldBuilder) buildField(family TypeFamily) codec.MapCodec {
	inner := f.inner.Build(family)
	if f.optional {
		return codec.OptionalField(f.name, inner)
	}
	return codec.Field(f.name, inner)
}

// Field declares an ordered named slot.
func Field(name string, inner Template) Template {
	return fieldBuilder{name: name, inner: inner}
}

// Optional declares a named slot that may be absent.
func Optional(name string, inner Template) Template {
	return fieldBuilder{name: name, inner: inner, optional: true}
}

type remainderBuilder struct{}

func (remainderBuilder) Build(family TypeFamily) codec.Codec     { return remainderBuilder{}.buildField(family) }
func (remainderBuilder) buildField(family TypeFamily) codec.MapCodec { return codec.Remainder() }

// Remainder captures every map entry not claimed by its siblings in
// the surrounding And, so unknown fields survive migration untouched.
func Remainder() Template { return remainderBuilder{} }

// And is the product type: every template applies simultaneously at
// the same map node. Every part must itself be field-claiming (built
// via Field, Optional, or Remainder); at most one part may be Remainder.
func And(parts ...Template) Template {
	return primitiveTemplate{build: func(family TypeFamily) codec.Codec {
		mapCodecs := make([]codec.MapCodec, 0, len(parts))
		for _, p := range parts {
			ft, ok := p.(fieldTemplate)
			if !ok {
				panic("dsl: and() part must be built via field, optional, or remainder")
			}
			mapCodecs = append(mapCodecs, ft.buildField(family))
		}
		return codec.And(mapCodecs...)
	}}
}

// labeled attaches a debug name to a template without changing its
// build behaviour (spec.md §4.5 bind).
type labeled struct {
	name string
	inner Template
}

func (l labeled) Build(family TypeFamily) codec.Codec { return l.inner.Build(family) }

func (l labeled) buildField(family TypeFamily) codec.MapCodec {
	ft, ok := l.inner.(fieldTemplate)
	if !ok {
		panic("dsl: bind() wraps a non-field template used where a field template is required")
	}
	return ft.buildField(family)
}

// Bind attaches a debug label to t without changing its behaviour.
func Bind(name string, t Template) Template {
	return labeled{name: name, inner: t}
}
