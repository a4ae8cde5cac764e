package domain

import "strings"

// settingsKey maps an attribute name onto the settings field consulted at
// the root of the inheritance chain. Two historical remaps exist: the
// proxy_url_* attributes resolve against the plain proxy field, and
// owners against default_ownership.
func settingsKey(attr string) string {
	if strings.HasPrefix(attr, "proxy_url_") {
		return "proxy"
	}
	if attr == "owners" {
		return "default_ownership"
	}
	return attr
}

// settingsValue looks the attribute up in settings, trying the mapped
// field name first and its default_<name> companion second.
func (i *Item) settingsValue(attr string) (any, bool) {
	if i.reg == nil {
		return nil, false
	}
	key := settingsKey(attr)
	if v, ok := i.reg.settings.Field(key); ok {
		return v, true
	}
	return i.reg.settings.Field("default_" + key)
}

// resolveScalar resolves a scalar or list attribute. An explicit value
// wins outright. An inherited slot asks the logical parent's resolved
// getter (fromParent reports whether the parent type exposes the
// attribute at all), then settings. An attribute no step can answer is a
// configuration inconsistency and surfaces as a ResolutionError.
func resolveScalar[T any](i *Item, attr string, raw Value[T],
	fromParent func(AnyItem) (T, bool, error), convert func(any) (T, error)) (T, error) {
	var zero T
	if !raw.IsInherited() {
		return raw.Get(), nil
	}
	if lp := i.LogicalParent(); lp != nil {
		v, ok, err := fromParent(lp)
		if err != nil {
			return zero, err
		}
		if ok {
			return v, nil
		}
	}
	if v, ok := i.settingsValue(attr); ok {
		return convert(v)
	}
	return zero, resolutionErr(i, attr)
}

// resolveDict merges the attribute down the chain: the parent's resolved
// mapping (or the settings mapping at the root) first, this item's
// explicit entries overlaid on top, child keys winning. Keys assigned the
// delete marker are annihilated after the merge, which lets a child unset
// an inherited key. A chain with no data yields an empty mapping, not an
// error.
func resolveDict(i *Item, attr string, raw Value[map[string]any],
	fromParent func(AnyItem) (map[string]any, bool, error)) (map[string]any, error) {
	merged := map[string]any{}
	if lp := i.LogicalParent(); lp != nil {
		v, ok, err := fromParent(lp)
		if err != nil {
			return nil, err
		}
		if ok {
			for k, val := range v {
				merged[k] = copyValue(val)
			}
		}
	} else if v, ok := i.settingsValue(attr); ok {
		m, err := inputStringOrMap(v, true)
		if err != nil {
			return nil, err
		}
		for k, val := range m {
			merged[k] = val
		}
	}
	if !raw.IsInherited() {
		for k, val := range raw.Get() {
			merged[k] = copyValue(val)
		}
	}
	annihilate(merged)
	return merged, nil
}
