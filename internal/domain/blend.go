package domain

// Blend flattens an item into a single template-rendering namespace:
// the settings dictionary first, then every item on the logical chain
// from the root down to the item itself, lower levels overriding higher
// ones key by key. Nested dictionaries merge recursively, everything
// else replaces.
func Blend(it AnyItem) (map[string]any, error) {
	base := it.Base()
	out := map[string]any{}
	if base.reg != nil && base.reg.Settings() != nil {
		out = copyMap(base.reg.Settings().ToDict())
	}
	chain := base.GrabTree()
	for i := len(chain) - 1; i >= 0; i-- {
		d, err := ToDict(chain[i], true)
		if err != nil {
			return nil, err
		}
		overlayMap(out, d)
	}
	return out, nil
}

// overlayMap merges src into dst in place. Map values merge one level
// deeper, all other values replace.
func overlayMap(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = copyValue(v)
			continue
		}
		cur, ok := dst[k].(map[string]any)
		if !ok {
			dst[k] = copyMap(sub)
			continue
		}
		overlayMap(cur, sub)
	}
}
