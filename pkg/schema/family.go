package schema

import (
	"github.com/astronomer/datafixers/pkg/codec"
	"github.com/astronomer/datafixers/pkg/dynamic"
)

// AsTypeFamily adapts s into the resolver the type DSL (pkg/dsl) needs
// to build recursive or cross-type templates: a reference resolves
// through s's own registry, then its parent chain, exactly like GetType.
func (s *Schema) AsTypeFamily() interface {
	Resolve(ref dynamic.TypeReference) (codec.Codec, bool)
} {
	return typeFamily{schema: s}
}

type typeFamily struct {
	schema *Schema
}

func (f typeFamily) Resolve(ref dynamic.TypeReference) (codec.Codec, bool) {
	t, ok := f.schema.GetType(ref)
	if !ok {
		return nil, false
	}
	return t.Codec, true
}
