package rewrite

import "github.com/astronomer/datafixers/pkg/dynamic"

// RenameFieldAt is the path-addressed sibling of RenameField: renames
// from to to within the map found by navigating path from the root.
// Missing intermediates make it a no-op (spec.md §4.6).
func RenameFieldAt(path, from, to string) Rule {
	return newRule("renameFieldAt("+path+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		return updateAt(d, ParsePath(path), RenameField(from, to).Apply)
	})
}

// RemoveFieldAt is the path-addressed sibling of RemoveField.
func RemoveFieldAt(path, name string) Rule {
	return newRule("removeFieldAt("+path+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		return updateAt(d, ParsePath(path), RemoveField(name).Apply)
	})
}

// RemoveFieldsAt is the path-addressed sibling of RemoveFields.
func RemoveFieldsAt(path string, names ...string) Rule {
	return newRule("removeFieldsAt("+path+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		return updateAt(d, ParsePath(path), RemoveFields(names...).Apply)
	})
}

// AddFieldAt is the path-addressed sibling of AddField. Unlike the
// other path-addressed siblings, missing intermediate maps are created
// (spec.md §4.6: "unless explicitly a creator like addFieldAt").
func AddFieldAt(path string, typeRef dynamic.TypeReference, name string, valueFn func(dynamic.Dynamic) dynamic.Dynamic) Rule {
	rule := AddField(typeRef, name, valueFn)
	return newRule("addFieldAt("+path+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		segments := ParsePath(path)
		if len(segments) == 0 {
			return rule.Apply(d)
		}
		return updateAlongPath(d, segments, func(parent dynamic.Dynamic, lastKey string) dynamic.Dynamic {
			target := parent.Get(lastKey)
			if !parent.Has(lastKey) {
				target = parent.EmptyMap()
			}
			return parent.Set(lastKey, rule.Apply(target))
		}, true)
	})
}

// SetFieldAt is the path-addressed sibling of SetField.
func SetFieldAt(path, name string, value dynamic.Dynamic) Rule {
	return newRule("setFieldAt("+path+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		return updateAt(d, ParsePath(path), SetField(name, value).Apply)
	})
}

// TransformFieldAt is the path-addressed sibling of TransformField.
func TransformFieldAt(path string, typeRef dynamic.TypeReference, name string, fn func(dynamic.Dynamic) dynamic.Dynamic) Rule {
	rule := TransformField(typeRef, name, fn)
	return newRule("transformFieldAt("+path+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		return updateAt(d, ParsePath(path), rule.Apply)
	})
}

// GroupFieldsAt is the path-addressed sibling of GroupFields.
func GroupFieldsAt(path, target string, fields ...string) Rule {
	rule := GroupFields(target, fields...)
	return newRule("groupFieldsAt("+path+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		return updateAt(d, ParsePath(path), rule.Apply)
	})
}

// FlattenFieldAt is the path-addressed sibling of FlattenField.
func FlattenFieldAt(path, name string) Rule {
	rule := FlattenField(name)
	return newRule("flattenFieldAt("+path+")", func(d dynamic.Dynamic) dynamic.Dynamic {
		return updateAt(d, ParsePath(path), rule.Apply)
	})
}
