// Package rewrite implements the rule algebra rewrite rules are built
// from (spec.md §4.6): composition (seq, all), atomic field operations,
// structural operations, path-addressed siblings, conditional rules,
// and the whole-value transform escape hatch.
package rewrite

import (
	"github.com/astronomer/datafixers/pkg/dynamic"
)

// Rule is the unit of transformation: a function Dynamic -> Dynamic
// that may also carry a TypeReference predicate so the driver can skip
// it on mismatched input (spec.md §4.6). Label is a debug name used by
// diagnostics reporting (pkg/diagnostics); it has no effect on Apply.
type Rule struct {
	Label   string
	typeRef dynamic.TypeReference
	fn      func(dynamic.Dynamic) dynamic.Dynamic
}

// Apply runs the rule against d.
func (r Rule) Apply(d dynamic.Dynamic) dynamic.Dynamic { return r.fn(d) }

// AppliesTo reports whether the rule should run against a value tagged
// ref. A rule with no declared TypeReference applies to everything.
func (r Rule) AppliesTo(ref dynamic.TypeReference) bool {
	return r.typeRef == "" || r.typeRef == ref
}

// Typed returns a copy of r restricted to inputs tagged ref.
func (r Rule) Typed(ref dynamic.TypeReference) Rule {
	r.typeRef = ref
	return r
}

func newRule(label string, fn func(dynamic.Dynamic) dynamic.Dynamic) Rule {
	return Rule{Label: label, fn: fn}
}

// Noop returns its input unchanged.
func Noop() Rule { return newRule("noop", func(d dynamic.Dynamic) dynamic.Dynamic { return d }) }

// Seq applies r1 then r2 then ..., each seeing the output of the
// previous. Order matters.
func Seq(rules ...Rule) Rule {
	return newRule("seq", func(d dynamic.Dynamic) dynamic.Dynamic {
		for _, r := range rules {
			d = r.Apply(d)
			if _, isErr := d.IsErrorMarked(); isErr {
				return d
			}
		}
		return d
	})
}

// All conceptually applies every rule "independently"; the caller
// asserts order-independence as a correctness claim the engine does not
// verify (spec.md §4.6). Implemented as Seq.
func All(rules ...Rule) Rule {
	return Seq(rules...)
}

// RenameField moves the value at from to to; no-op if from is absent.
func RenameField(from, to string) Rule {
	return newRule("renameField("+from+","+to+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		if !d.Has(from) {
			return d
		}
		value := d.Get(from)
		return d.Remove(from).Set(to, value)
	})
}

// RenameFields applies many renames in one pass.
func RenameFields(renames map[string]string) Rule {
	return newRule("renameFields", func(d dynamic.Dynamic) dynamic.Dynamic {
		for from, to := range renames {
			if !d.Has(from) {
				continue
			}
			value := d.Get(from)
			d = d.Remove(from).Set(to, value)
		}
		return d
	})
}

// RemoveField removes name, no-op if absent.
func RemoveField(name string) Rule {
	return newRule("removeField("+name+")", func(d dynamic.Dynamic) dynamic.Dynamic { return d.Remove(name) })
}

// RemoveFields removes every name in names, no-op for absent ones.
func RemoveFields(names ...string) Rule {
	return newRule("removeFields", func(d dynamic.Dynamic) dynamic.Dynamic {
		for _, name := range names {
			d = d.Remove(name)
		}
		return d
	})
}

// AddField adds name with valueFn(d)'s result only if absent.
func AddField(typeRef dynamic.TypeReference, name string, valueFn func(dynamic.Dynamic) dynamic.Dynamic) Rule {
	r := newRule("addField("+name+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		if d.Has(name) {
			return d
		}
		return d.Set(name, valueFn(d))
	})
	return r.Typed(typeRef)
}

// SetField overwrites name unconditionally.
func SetField(name string, value dynamic.Dynamic) Rule {
	return newRule("setField("+name+")", func(d dynamic.Dynamic) dynamic.Dynamic { return d.Set(name, value) })
}

// TransformField replaces the value at name with fn(old); no-op if
// absent.
func TransformField(typeRef dynamic.TypeReference, name string, fn func(dynamic.Dynamic) dynamic.Dynamic) Rule {
	r := newRule("transformField("+name+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		if !d.Has(name) {
			return d
		}
		return d.Update(name, fn)
	})
	return r.Typed(typeRef)
}

// GroupFields extracts the named siblings into a new nested map under
// target, removing them from their original location.
func GroupFields(target string, fields ...string) Rule {
	return newRule("groupFields("+target+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		group := d.EmptyMap()
		for _, f := range fields {
			if !d.Has(f) {
				continue
			}
			group = group.Set(f, d.Get(f))
			d = d.Remove(f)
		}
		return d.Set(target, group)
	})
}

// FlattenField is the inverse of GroupFields: promotes name's nested
// map fields to the parent and removes name.
func FlattenField(name string) Rule {
	return newRule("flattenField("+name+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		if !d.Has(name) {
			return d
		}
		nested := d.Get(name)
		entries, ok := nested.AsMap().Value()
		if !ok {
			return d
		}
		d = d.Remove(name)
		for _, e := range entries {
			d = d.Set(e.First, e.Second)
		}
		return d
	})
}

// MoveField moves the value at sourcePath to targetPath.
func MoveField(sourcePath, targetPath string) Rule {
	return newRule("moveField("+sourcePath+","+targetPath+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		value, ok := getAt(d, ParsePath(sourcePath))
		if !ok {
			return d
		}
		target := ParsePath(targetPath)
		if _, ok := getAt(d, target[:len(target)-1]); !ok {
			return d
		}
		d = removeAt(d, ParsePath(sourcePath))
		return setAt(d, ParsePath(targetPath), value, false)
	})
}

// CopyField copies the value at sourcePath to targetPath, leaving the
// source untouched.
func CopyField(sourcePath, targetPath string) Rule {
	return newRule("copyField("+sourcePath+","+targetPath+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		value, ok := getAt(d, ParsePath(sourcePath))
		if !ok {
			return d
		}
		return setAt(d, ParsePath(targetPath), value, false)
	})
}

// Transform applies fn to the whole value: the escape hatch for
// restructurings that do not fit the composable vocabulary.
func Transform(typeRef dynamic.TypeReference, fn func(dynamic.Dynamic) dynamic.Dynamic) Rule {
	return newRule("transform", fn).Typed(typeRef)
}

// IfFieldExists applies rule only if name is present.
func IfFieldExists(name string, rule Rule) Rule {
	return newRule("ifFieldExists("+name+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		if !d.Has(name) {
			return d
		}
		return rule.Apply(d)
	})
}

// IfFieldMissing applies rule only if name is absent.
func IfFieldMissing(name string, rule Rule) Rule {
	return newRule("ifFieldMissing("+name+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		if d.Has(name) {
			return d
		}
		return rule.Apply(d)
	})
}

// IfFieldEquals applies rule only if the field's value equals literal.
// Equality is literal-kind-aware: the literal's Go type selects which
// Dynamic reader to compare through, with standard numeric widening.
func IfFieldEquals(name string, literal any, rule Rule) Rule {
	return newRule("ifFieldEquals("+name+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		if !d.Has(name) {
			return d
		}
		if !fieldEquals(d.Get(name), literal) {
			return d
		}
		return rule.Apply(d)
	})
}

func fieldEquals(d dynamic.Dynamic, literal any) bool {
	switch lit := literal.(type) {
	case string:
		v, ok := d.AsString().Value()
		return ok && v == lit
	case bool:
		v, ok := d.AsBoolean().Value()
		return ok && v == lit
	case int:
		v, ok := d.AsLong().Value()
		return ok && v == int64(lit)
	case int32:
		v, ok := d.AsLong().Value()
		return ok && v == int64(lit)
	case int64:
		v, ok := d.AsLong().Value()
		return ok && v == lit
	case float32:
		v, ok := d.AsDouble().Value()
		return ok && v == float64(lit)
	case float64:
		v, ok := d.AsDouble().Value()
		return ok && v == lit
	default:
		return false
	}
}
