// Package sonicops is the engine's reference Operations implementation
// (spec.md §4.1), backed by github.com/bytedance/sonic/ast.Node. It
// exists so the engine has at least one concrete backend to exercise
// itself against in tests; general-purpose JSON backend
// support is out of scope for the core (spec.md §1 Non-goals).
//
// Reads here go through Get/Interface on *ast.Node, the idiom lifted
// from the teacher's ast_helpers.go.
// Because Dynamic requires every operation to be non-mutating (spec.md
// §3), each write here materializes the node's Go-native value,
// modifies a copy, and re-parses a fresh ast.Node rather than mutating
// shared AST state in place.
package sonicops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"

	"github.com/astronomer/datafixers/pkg/ops"
	"github.com/astronomer/datafixers/pkg/result"
)

// Ops is the sonic/ast-backed Operations implementation. Its zero value
// is ready to use.
type Ops struct{}

// New returns a ready-to-use sonic-backed Operations.
func New() *Ops { return &Ops{} }

var _ ops.Operations = (*Ops)(nil)

func asNode(v any) ast.Node {
	if v == nil {
		return ast.NewNull()
	}
	n, ok := v.(ast.Node)
	if !ok {
		return ast.NewNull()
	}
	return n
}

func nodeFromValue(v any) ast.Node {
	s, err := sonic.MarshalString(v)
	if err != nil {
		return ast.NewNull()
	}
	n, err := sonic.GetFromString(s)
	if err != nil {
		return ast.NewNull()
	}
	return n
}

func valueFromNode(n ast.Node) any {
	v, err := n.Interface()
	if err != nil {
		return nil
	}
	return v
}

func (o *Ops) Empty() any    { return ast.NewNull() }
func (o *Ops) EmptyMap() any { return nodeFromValue(map[string]any{}) }
func (o *Ops) EmptyList() any {
	return nodeFromValue([]any{})
}

func (o *Ops) IsMap(v any) bool  { return asNode(v).TypeSafe() == ast.V_OBJECT }
func (o *Ops) IsList(v any) bool { return asNode(v).TypeSafe() == ast.V_ARRAY }
func (o *Ops) IsString(v any) bool {
	return asNode(v).TypeSafe() == ast.V_STRING
}
func (o *Ops) IsNumber(v any) bool {
	return asNode(v).TypeSafe() == ast.V_NUMBER
}
func (o *Ops) IsBoolean(v any) bool {
	t := asNode(v).TypeSafe()
	return t == ast.V_TRUE || t == ast.V_FALSE
}

func (o *Ops) CreateString(s string) any  { return nodeFromValue(s) }
func (o *Ops) CreateInt(i int32) any      { return nodeFromValue(i) }
func (o *Ops) CreateLong(i int64) any     { return nodeFromValue(i) }
func (o *Ops) CreateFloat(f float32) any  { return nodeFromValue(f) }
func (o *Ops) CreateDouble(f float64) any { return nodeFromValue(f) }
func (o *Ops) CreateByte(b byte) any      { return nodeFromValue(int64(b)) }
func (o *Ops) CreateShort(s int16) any    { return nodeFromValue(int64(s)) }
func (o *Ops) CreateBoolean(b bool) any   { return nodeFromValue(b) }
func (o *Ops) CreateNumeric(n float64) any {
	return nodeFromValue(n)
}

func (o *Ops) GetStringValue(v any) result.Result[string] {
	node := asNode(v)
	if !o.IsString(node) {
		return result.Errorf[string]("expected string, got node type %d", node.TypeSafe())
	}
	s, err := node.String()
	if err != nil {
		return result.Error[string](err.Error())
	}
	return result.Success(s)
}

func (o *Ops) GetNumberValue(v any) result.Result[float64] {
	node := asNode(v)
	if !o.IsNumber(node) {
		return result.Errorf[float64]("expected number, got node type %d", node.TypeSafe())
	}
	f, err := node.Float64()
	if err != nil {
		return result.Error[float64](err.Error())
	}
	return result.Success(f)
}

func (o *Ops) GetBooleanValue(v any) result.Result[bool] {
	node := asNode(v)
	if !o.IsBoolean(node) {
		return result.Errorf[bool]("expected boolean, got node type %d", node.TypeSafe())
	}
	b, err := node.Bool()
	if err != nil {
		return result.Error[bool](err.Error())
	}
	return result.Success(b)
}

func (o *Ops) CreateList(values []any) any {
	native := make([]any, 0, len(values))
	for _, v := range values {
		native = append(native, valueFromNode(asNode(v)))
	}
	return nodeFromValue(native)
}

func (o *Ops) GetList(v any) result.Result[[]any] {
	node := asNode(v)
	if !o.IsList(node) {
		return result.Errorf[[]any]("expected list, got node type %d", node.TypeSafe())
	}
	raw := valueFromNode(node)
	items, ok := raw.([]any)
	if !ok {
		return result.Error[[]any]("list node did not materialize as a slice")
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, any(nodeFromValue(item)))
	}
	return result.Success(out)
}

func (o *Ops) MergeToList(list any, value any) result.Result[any] {
	got := o.GetList(list)
	if got.IsError() {
		return result.Error[any](got.Message())
	}
	items, _ := got.Value()
	items = append(items, value)
	return result.Success(o.CreateList(items))
}

func (o *Ops) CreateMap(entries []ops.Entry) any {
	m := make(map[string]any, len(entries))
	for _, e := range entries {
		m[e.Key] = valueFromNode(asNode(e.Value))
	}
	return nodeFromValue(m)
}

func (o *Ops) GetMapEntries(v any) result.Result[[]ops.Entry] {
	node := asNode(v)
	if !o.IsMap(node) {
		return result.Errorf[[]ops.Entry]("expected map, got node type %d", node.TypeSafe())
	}
	raw := valueFromNode(node)
	m, ok := raw.(map[string]any)
	if !ok {
		return result.Error[[]ops.Entry]("map node did not materialize as a map")
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]ops.Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, ops.Entry{Key: k, Value: any(nodeFromValue(m[k]))})
	}
	return result.Success(out)
}

func (o *Ops) toMap(v any) map[string]any {
	node := asNode(v)
	if !o.IsMap(node) {
		return map[string]any{}
	}
	raw := valueFromNode(node)
	m, ok := raw.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	clone := make(map[string]any, len(m))
	for k, val := range m {
		clone[k] = val
	}
	return clone
}

func (o *Ops) Get(m any, key string) (any, bool) {
	node := asNode(m)
	if !o.IsMap(node) {
		return nil, false
	}
	child := node.Get(key)
	if child == nil || !child.Exists() {
		return nil, false
	}
	return any(*child), true
}

func (o *Ops) Set(m any, key string, value any) any {
	clone := o.toMap(m)
	clone[key] = valueFromNode(asNode(value))
	return nodeFromValue(clone)
}

func (o *Ops) Remove(m any, key string) any {
	clone := o.toMap(m)
	delete(clone, key)
	return nodeFromValue(clone)
}

func (o *Ops) Has(m any, key string) bool {
	_, ok := o.Get(m, key)
	return ok
}

func (o *Ops) MergeToMap(m any, key string, value any) result.Result[any] {
	if !o.IsMap(asNode(m)) {
		return result.Errorf[any]("cannot merge field %q into a non-map value", key)
	}
	return result.Success(o.Set(m, key, value))
}

func (o *Ops) MergeMaps(m any, other any) result.Result[any] {
	if !o.IsMap(asNode(m)) || !o.IsMap(asNode(other)) {
		return result.Error[any]("cannot merge maps: one side is not a map")
	}
	base := o.toMap(m)
	overlay := o.toMap(other)
	for k, v := range overlay {
		base[k] = v
	}
	return result.Success(nodeFromValue(base))
}

func (o *Ops) ConvertTo(other ops.Operations, value any) any {
	return ops.Convert(o, other, value)
}

// snapshotAPI marshals with sorted map keys so equal trees always render
// to the same snapshot string.
var snapshotAPI = sonic.Config{SortMapKeys: true}.Froze()

func (o *Ops) ToStringSnapshot(v any) (string, bool) {
	native := valueFromNode(asNode(v))
	s, err := snapshotAPI.MarshalToString(native)
	if err != nil {
		return "", false
	}
	return s, true
}

// DebugString renders v for debugging, falling back to a type
// placeholder when no snapshot can be produced; not part of the
// Operations contract.
func (o *Ops) DebugString(v any) string {
	s, ok := o.ToStringSnapshot(v)
	if !ok {
		return fmt.Sprintf("<unrenderable:%T>", v)
	}
	return strings.TrimSpace(s)
}
