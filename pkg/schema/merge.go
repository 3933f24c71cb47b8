package schema

// Merge combines a prompt's own variables with the variables declared by the
// prompts it includes, in include order.
//
// The first occurrence of a name owns the entry: type, default and children
// are never overwritten by later sources. Required-ness is monotonic: if
// any later source requires a variable the merged entry becomes required,
// even when the owner declared it optional. Children lists are not
// deep-merged; the first-seen nested shape wins entirely. First-seen order
// is preserved across the own-then-included traversal.
func Merge(own []Variable, included ...[]Variable) []Variable {
	merged := make([]Variable, 0, len(own))
	index := make(map[string]int, len(own))

	add := func(vars []Variable) {
		for _, v := range vars {
			if i, ok := index[v.Name]; ok {
				if v.Required && !merged[i].Required {
					merged[i].Required = true
				}
				continue
			}
			index[v.Name] = len(merged)
			merged = append(merged, v)
		}
	}

	add(own)
	for _, vars := range included {
		add(vars)
	}

	return merged
}
