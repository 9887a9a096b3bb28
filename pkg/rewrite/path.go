package rewrite

import (
	"strings"
	"sync"

	"github.com/astronomer/datafixers/pkg/dynamic"
)

// pathCache memoises ParsePath's tokenisation (spec.md §4.6: "The
// parser is memoised").
var pathCache sync.Map // string -> []string

// ParsePath tokenises a dotted path like "a.b.c" into an ordered
// sequence of map keys. Dots inside keys are not supported; a field
// name containing a dot is unreachable via path-addressed rules and
// must be handled through Transform instead (spec.md §9).
func ParsePath(path string) []string {
	if cached, ok := pathCache.Load(path); ok {
		return cached.([]string)
	}
	parts := strings.Split(path, ".")
	pathCache.Store(path, parts)
	return parts
}

// getAt navigates path through nested maps, returning the value and
// whether every intermediate and the final key existed.
func getAt(d dynamic.Dynamic, path []string) (dynamic.Dynamic, bool) {
	cur := d
	for _, key := range path {
		if !cur.Has(key) {
			return dynamic.Dynamic{}, false
		}
		cur = cur.Get(key)
	}
	return cur, true
}

// removeAt removes the value at the end of path. Missing intermediate
// nodes make this a no-op.
func removeAt(d dynamic.Dynamic, path []string) dynamic.Dynamic {
	return updateAlongPath(d, path, func(leafParent dynamic.Dynamic, lastKey string) dynamic.Dynamic {
		return leafParent.Remove(lastKey)
	}, false)
}

// setAt sets value at the end of path. When create is true, missing
// intermediate map nodes are created; otherwise a missing intermediate
// makes this a no-op.
func setAt(d dynamic.Dynamic, path []string, value dynamic.Dynamic, create bool) dynamic.Dynamic {
	return updateAlongPath(d, path, func(leafParent dynamic.Dynamic, lastKey string) dynamic.Dynamic {
		return leafParent.Set(lastKey, value)
	}, create)
}

// updateAt applies fn to the Dynamic at the end of path and sets the
// result back. A missing node anywhere along path, including the last
// one, makes this a no-op.
func updateAt(d dynamic.Dynamic, path []string, fn func(dynamic.Dynamic) dynamic.Dynamic) dynamic.Dynamic {
	return updateAlongPath(d, path, func(leafParent dynamic.Dynamic, lastKey string) dynamic.Dynamic {
		if !leafParent.Has(lastKey) {
			return leafParent
		}
		return leafParent.Update(lastKey, fn)
	}, false)
}

// updateAlongPath walks path, rebuilding each map level on the way back
// out, and applies leafOp at the final key against its immediate
// parent map. If create is true, missing intermediate maps are created
// with EmptyMap(); otherwise a missing intermediate anywhere along the
// path makes the whole operation a no-op.
func updateAlongPath(d dynamic.Dynamic, path []string, leafOp func(parent dynamic.Dynamic, lastKey string) dynamic.Dynamic, create bool) dynamic.Dynamic {
	if len(path) == 0 {
		return d
	}
	if len(path) == 1 {
		return leafOp(d, path[0])
	}
	head, rest := path[0], path[1:]
	if !d.Has(head) {
		if !create {
			return d
		}
		return d.Set(head, updateAlongPath(d.EmptyMap(), rest, leafOp, create))
	}
	child := d.Get(head)
	return d.Set(head, updateAlongPath(child, rest, leafOp, create))
}
