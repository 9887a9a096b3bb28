package dynamic

import "github.com/astronomer/datafixers/pkg/ops"

// TypeReference is the string routing key naming a data type across all
// versions (spec.md §3). Equality is by string value.
type TypeReference string

// TaggedDynamic pairs a Dynamic with the TypeReference describing which
// routing key it carries — the unit the migration driver consumes and
// produces (spec.md §3).
type TaggedDynamic struct {
	Type  TypeReference
	Value Dynamic
}

// NewTagged pairs ref with value.
func NewTagged(ref TypeReference, value Dynamic) TaggedDynamic {
	return TaggedDynamic{Type: ref, Value: value}
}

// WithValue returns a copy of td with its Dynamic replaced, keeping the
// same TypeReference.
func (td TaggedDynamic) WithValue(value Dynamic) TaggedDynamic {
	return TaggedDynamic{Type: td.Type, Value: value}
}

// Ops is a convenience accessor for td.Value.Ops().
func (td TaggedDynamic) Ops() ops.Operations { return td.Value.Ops() }
