package ops

// Convert performs the generic structural-recursion cross-backend
// conversion described in spec.md §4.1: a tree native to src is rebuilt
// node-by-node as a tree native to dst. Concrete Operations
// implementations can delegate their ConvertTo method to this helper
// instead of hand-rolling the recursion.
func Convert(src, dst Operations, value any) any {
	switch {
	case src.IsMap(value):
		got := src.GetMapEntries(value)
		if !got.IsSuccess() && !got.IsPartial() {
			return dst.EmptyMap()
		}
		list, _ := got.Value()
		converted := make([]Entry, 0, len(list))
		for _, e := range list {
			converted = append(converted, Entry{Key: e.Key, Value: Convert(src, dst, e.Value)})
		}
		return dst.CreateMap(converted)
	case src.IsList(value):
		got := src.GetList(value)
		if !got.IsSuccess() && !got.IsPartial() {
			return dst.EmptyList()
		}
		list, _ := got.Value()
		converted := make([]any, 0, len(list))
		for _, v := range list {
			converted = append(converted, Convert(src, dst, v))
		}
		return dst.CreateList(converted)
	case src.IsString(value):
		s, _ := src.GetStringValue(value).Value()
		return dst.CreateString(s)
	case src.IsBoolean(value):
		b, _ := src.GetBooleanValue(value).Value()
		return dst.CreateBoolean(b)
	case src.IsNumber(value):
		n, _ := src.GetNumberValue(value).Value()
		return dst.CreateNumeric(n)
	default:
		return dst.Empty()
	}
}
