package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Keys accepted in input dicts for API compatibility but never applied.
var deprecatedDictKeys = []string{"ks_meta", "kickstart", "children"}

// Keys present in ToDict output for API compatibility but not persisted.
var serializeDropKeys = []string{"ks_meta", "kickstart", "remote_grub_kernel", "remote_grub_initrd"}

// ToDict projects the item into a plain mapping keyed by attribute name.
// With resolved=false inherited slots appear as the inherit sentinel and
// container values are deep copies of the raw state; with resolved=true
// every attribute carries its final, inheritance-resolved value. The
// result is memoized per mode in the item's cache; a not-in-memory item
// is hydrated from the store first.
func ToDict(it AnyItem, resolved bool) (map[string]any, error) {
	base := it.Base()
	if !base.inMemory {
		if err := Deserialize(context.Background(), it); err != nil {
			return nil, err
		}
	}
	if d := base.cache.GetDict(resolved); d != nil {
		return d, nil
	}
	out := make(map[string]any)
	for name, attr := range schemaFor(it.Type()) {
		v, err := attr.Get(it, resolved)
		if err != nil {
			return nil, fmt.Errorf("%s %q: attribute %q: %w", it.Type(), base.name, name, err)
		}
		out[name] = v
	}
	// Legacy aliases kept for API compatibility with old field names.
	if v, ok := out["autoinstall"]; ok {
		out["kickstart"] = v
	}
	if v, ok := out["autoinstall_meta"]; ok {
		out["ks_meta"] = v
	}
	base.cache.SetDict(out, resolved)
	return out, nil
}

// FromDict applies the mapping onto the item. Keys are matched
// case-insensitively against the schema; every recognized key is applied
// (in sorted key order, for determinism) and the leftovers are reported
// as an UnknownKeysError. Cache invalidation is suspended while the
// values land and the item's own cache is flushed once at the end.
func FromDict(it AnyItem, data map[string]any) error {
	base := it.Base()
	schema := schemaFor(it.Type())

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	wasInitialized := base.initialized
	base.initialized = false
	defer func() {
		base.initialized = wasInitialized
		base.cache.Clean()
	}()

	var rejected []string
	for _, key := range keys {
		lowered := strings.ToLower(key)
		if isDeprecatedKey(lowered) {
			continue
		}
		attr := schema[lowered]
		if attr == nil || attr.Set == nil {
			rejected = append(rejected, key)
			continue
		}
		if err := attr.Set(it, data[key]); err != nil {
			return fmt.Errorf("attribute %q could not be set: %w", lowered, err)
		}
	}
	if len(rejected) > 0 {
		return &UnknownKeysError{Keys: rejected}
	}
	return nil
}

// Apply sets the given attributes on a live, registered item through its
// schema. Unlike FromDict it keeps cache invalidation active, so
// descendants of the item see their resolved snapshots dropped as each
// inheritable value lands. Unknown keys are rejected after the
// recognized ones apply. The name is immutable here: setting it would
// leave the collection indexed under the old key, so a changed name
// returns ErrNameImmutable and callers rename through the collection.
func Apply(it AnyItem, updates map[string]any) error {
	schema := schemaFor(it.Type())

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rejected []string
	for _, key := range keys {
		lowered := strings.ToLower(key)
		if isDeprecatedKey(lowered) {
			continue
		}
		if lowered == "name" {
			s, err := inputString(updates[key])
			if err != nil {
				return fmt.Errorf("attribute %q could not be set: %w", lowered, err)
			}
			if s != it.Base().Name() {
				return ErrNameImmutable
			}
			continue
		}
		attr := schema[lowered]
		if attr == nil || attr.Set == nil {
			rejected = append(rejected, key)
			continue
		}
		if err := attr.Set(it, updates[key]); err != nil {
			return fmt.Errorf("attribute %q could not be set: %w", lowered, err)
		}
	}
	if len(rejected) > 0 {
		return &UnknownKeysError{Keys: rejected}
	}
	return nil
}

// Serialize is the persistence projection: the raw dict minus the legacy
// aliases and derived fields that must not reach the backing store. The
// cached snapshot is copied before keys are stripped.
func Serialize(it AnyItem) (map[string]any, error) {
	d, err := ToDict(it, false)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range serializeDropKeys {
		delete(out, k)
	}
	return out, nil
}

// Deserialize loads the item's document from the backing store and
// applies it. Referenced ancestors (per the static dependency table) are
// hydrated first, so resolution never walks into an empty shell.
func Deserialize(ctx context.Context, it AnyItem) error {
	base := it.Base()
	if base.reg == nil || base.reg.store == nil {
		return fmt.Errorf("%s %q: no backing store configured", it.Type(), base.name)
	}
	doc, err := base.reg.store.Load(ctx, string(it.Type()), base.name)
	if err != nil {
		return fmt.Errorf("load %s %q: %w", it.Type(), base.name, err)
	}
	for ancestorType, deps := range typeDependencies {
		for _, dep := range deps {
			if dep.Type != it.Type() {
				continue
			}
			raw, ok := doc[dep.Attr]
			if !ok {
				continue
			}
			switch names := raw.(type) {
			case string:
				if err := hydrateAncestor(ctx, base.reg, ancestorType, names); err != nil {
					return err
				}
			case []string:
				for _, n := range names {
					if err := hydrateAncestor(ctx, base.reg, ancestorType, n); err != nil {
						return err
					}
				}
			case []any:
				for _, e := range names {
					if n, ok := e.(string); ok {
						if err := hydrateAncestor(ctx, base.reg, ancestorType, n); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	base.inMemory = true
	if err := FromDict(it, doc); err != nil {
		base.inMemory = false
		return err
	}
	return nil
}

func hydrateAncestor(ctx context.Context, reg *Registry, t ItemType, name string) error {
	if name == "" || name == Inherit {
		return nil
	}
	ancestor := reg.Get(t, name)
	if ancestor == nil || ancestor.Base().inMemory {
		return nil
	}
	return Deserialize(ctx, ancestor)
}

func isDeprecatedKey(k string) bool {
	for _, d := range deprecatedDictKeys {
		if k == d {
			return true
		}
	}
	return false
}
