package manifest

// dictMerge recursively merges other into dst in place: nested maps
// recurse key-by-key, nested lists are concatenated parent-then-child,
// and everything else is overwritten by the child's value. Mirrors the
// upstream launcher's dict_merge exactly, operating on the raw decoded
// JSON representation so arbitrary keys merge correctly without a
// hand-maintained field list.
func dictMerge(dst, other map[string]any) {
	for k, v := range other {
		if existing, ok := dst[k]; ok {
			dstMap, dstIsMap := existing.(map[string]any)
			otherMap, otherIsMap := v.(map[string]any)
			if dstIsMap && otherIsMap {
				dictMerge(dstMap, otherMap)
				continue
			}
			dstList, dstIsList := existing.([]any)
			otherList, otherIsList := v.([]any)
			if dstIsList && otherIsList {
				dst[k] = append(append([]any{}, dstList...), otherList...)
				continue
			}
		}
		dst[k] = v
	}
}
