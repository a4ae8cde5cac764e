package domain

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ycedres/cobbler/internal/repository"
)

// Settings is the read side of the global settings consulted at the root
// of every inheritance chain. Field performs name-based lookup over both
// the well-known fields and any extra keys the settings file carried.
type Settings interface {
	Field(name string) (any, bool)
	CacheEnabled() bool
	ToDict() map[string]any
}

// Registry owns one Collection per item type and the collaborators the
// items resolve through: settings and, optionally, a backing store for
// lazy hydration.
type Registry struct {
	settings    Settings
	store       repository.Store
	logger      zerolog.Logger
	collections map[ItemType]*Collection
}

// NewRegistry builds a registry with an empty collection per item type.
// store may be nil when persistence is not in play (tests, ephemeral
// use); hydration then fails loudly instead of silently defaulting.
func NewRegistry(settings Settings, store repository.Store, logger zerolog.Logger) *Registry {
	r := &Registry{
		settings:    settings,
		store:       store,
		logger:      logger,
		collections: make(map[ItemType]*Collection, len(ItemTypes)),
	}
	for _, t := range ItemTypes {
		r.collections[t] = &Collection{typ: t, items: make(map[string]AnyItem)}
	}
	return r
}

// Settings returns the settings the registry resolves against.
func (r *Registry) Settings() Settings { return r.settings }

// Store returns the backing store, or nil.
func (r *Registry) Store() repository.Store { return r.store }

// Items returns the collection for an item type.
func (r *Registry) Items(t ItemType) *Collection {
	return r.collections[t]
}

// Get returns the item registered under name in the collection for t, or
// nil.
func (r *Registry) Get(t ItemType, name string) AnyItem {
	col := r.collections[t]
	if col == nil {
		return nil
	}
	return col.Get(name)
}

// Add registers the item in the collection of its type. The name must be
// valid, non-empty, and unused.
func (r *Registry) Add(it AnyItem) error {
	col := r.collections[it.Type()]
	if col == nil {
		return fmt.Errorf("no collection for item type %q", it.Type())
	}
	return col.Add(it)
}

// Remove unregisters an item and deletes its stored document. When
// descendants depend on it the removal is rejected unless recursive is
// set, in which case the whole dependent set is removed first (deepest
// edges are just map deletions, so order does not matter).
func (r *Registry) Remove(ctx context.Context, t ItemType, name string, recursive bool) error {
	it := r.Get(t, name)
	if it == nil {
		return fmt.Errorf("%s %q: %w", t, name, ErrNotFound)
	}
	descendants := it.Base().Descendants()
	if len(descendants) > 0 && !recursive {
		return fmt.Errorf("cannot remove %s %q: %d dependent item(s) exist", t, name, len(descendants))
	}
	for _, d := range descendants {
		if col := r.collections[d.Type()]; col != nil {
			col.remove(d.Base().Name())
		}
		if err := r.deleteDoc(ctx, d); err != nil {
			return err
		}
	}
	r.collections[t].remove(name)
	return r.deleteDoc(ctx, it)
}

func (r *Registry) deleteDoc(ctx context.Context, it AnyItem) error {
	if r.store == nil {
		return nil
	}
	err := r.store.Delete(ctx, string(it.Type()), it.Base().Name())
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", it.Type(), it.Base().Name(), err)
	}
	return nil
}

// SaveItem serializes the item and writes its document to the backing
// store.
func (r *Registry) SaveItem(ctx context.Context, it AnyItem) error {
	if r.store == nil {
		return fmt.Errorf("no backing store configured")
	}
	doc, err := Serialize(it)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, string(it.Type()), it.Base().Name(), doc)
}

// FindByAttr returns the items of type t whose raw attribute value
// matches: string equality for scalar reference fields, membership for
// list fields. This is the item index behind descendant queries and
// ancestor hydration.
func (r *Registry) FindByAttr(t ItemType, attr, value string) []AnyItem {
	col := r.collections[t]
	if col == nil {
		return nil
	}
	a := schemaFor(t)[attr]
	if a == nil {
		return nil
	}
	var out []AnyItem
	for _, it := range col.All() {
		v, err := a.Get(it, false)
		if err != nil {
			continue
		}
		switch x := v.(type) {
		case string:
			if x == value {
				out = append(out, it)
			}
		case []string:
			for _, e := range x {
				if e == value {
					out = append(out, it)
					break
				}
			}
		case []any:
			for _, e := range x {
				if s, ok := e.(string); ok && s == value {
					out = append(out, it)
					break
				}
			}
		}
	}
	return out
}

// FlushCaches drops every item's dict snapshots. Called when settings
// change, since settings participate in every resolution chain.
func (r *Registry) FlushCaches() {
	for _, t := range ItemTypes {
		for _, it := range r.collections[t].All() {
			it.Base().cache.Clean()
		}
	}
}

// NewItemOfType constructs an unregistered empty item of the given type.
func NewItemOfType(t ItemType, reg *Registry) (AnyItem, error) {
	switch t {
	case TypeDistro:
		return NewDistro(reg), nil
	case TypeProfile:
		return NewProfile(reg), nil
	case TypeSystem:
		return NewSystem(reg), nil
	case TypeImage:
		return NewImage(reg), nil
	case TypeMenu:
		return NewMenu(reg), nil
	case TypeRepo:
		return NewRepo(reg), nil
	case TypeMgmtClass:
		return NewMgmtClass(reg), nil
	case TypePackage:
		return NewPackage(reg), nil
	case TypeFile:
		return NewFile(reg), nil
	}
	return nil, fmt.Errorf("unknown item type %q", t)
}

// LoadAll registers one item per document in the backing store. With
// lazy set, only name skeletons are created and full attributes are
// pulled in on first ToDict; otherwise everything is hydrated eagerly in
// dependency order.
func (r *Registry) LoadAll(ctx context.Context, lazy bool) error {
	if r.store == nil {
		return fmt.Errorf("no backing store configured")
	}
	for _, t := range ItemTypes {
		names, err := r.store.Names(ctx, string(t))
		if err != nil {
			return fmt.Errorf("list %s names: %w", t, err)
		}
		for _, name := range names {
			it, err := NewItemOfType(t, r)
			if err != nil {
				return err
			}
			if err := it.Base().SetName(name); err != nil {
				return fmt.Errorf("load %s %q: %w", t, name, err)
			}
			it.Base().inMemory = false
			if err := r.Add(it); err != nil {
				return err
			}
		}
	}
	if lazy {
		return nil
	}
	for _, t := range ItemTypes {
		for _, it := range r.collections[t].All() {
			if it.Base().InMemory() {
				continue
			}
			if err := Deserialize(ctx, it); err != nil {
				return err
			}
			r.logger.Debug().Str("type", string(t)).Str("name", it.Base().Name()).Msg("hydrated item")
		}
	}
	return nil
}

// Collection is the name-keyed registry of all items of one type.
type Collection struct {
	mu    sync.RWMutex
	typ   ItemType
	items map[string]AnyItem
}

// Type returns the collection's item type.
func (c *Collection) Type() ItemType { return c.typ }

// Get returns the item registered under name, or nil.
func (c *Collection) Get(name string) AnyItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items[name]
}

// Len returns the number of registered items.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// All returns the registered items sorted by name.
func (c *Collection) All() []AnyItem {
	c.mu.RLock()
	out := make([]AnyItem, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Base().Name() < out[j].Base().Name()
	})
	return out
}

// Add registers the item under its current name.
func (c *Collection) Add(it AnyItem) error {
	if it.Type() != c.typ {
		return fmt.Errorf("cannot add %s item to the %s collection", it.Type(), c.typ)
	}
	// Skeletons registered for lazy hydration only carry a name; full
	// validation happens once they are deserialized.
	if it.Base().InMemory() {
		if v, ok := it.(interface{ CheckValid() error }); ok {
			if err := v.CheckValid(); err != nil {
				return err
			}
		}
	} else if err := it.Base().CheckValid(); err != nil {
		return err
	}
	name := it.Base().Name()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[name]; exists {
		return fmt.Errorf("%s %q already exists", c.typ, name)
	}
	c.items[name] = it
	return nil
}

// Rename relocates the item under a new name and re-points the parent
// reference of its structural children. The lookup entry moves under the
// collection lock; the children fix-up happens outside it because each
// SetParent re-enters the collection for reads.
func (c *Collection) Rename(it AnyItem, newName string) error {
	base := it.Base()
	oldName := base.Name()
	if newName == oldName {
		return nil
	}
	c.mu.Lock()
	if _, exists := c.items[newName]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%s %q already exists", c.typ, newName)
	}
	if c.items[oldName] != it {
		c.mu.Unlock()
		return fmt.Errorf("%s %q is not registered in this collection", c.typ, oldName)
	}
	delete(c.items, oldName)
	c.mu.Unlock()

	if err := base.SetName(newName); err != nil {
		c.mu.Lock()
		c.items[oldName] = it
		c.mu.Unlock()
		return err
	}
	c.mu.Lock()
	c.items[newName] = it
	c.mu.Unlock()

	for _, other := range c.All() {
		if other.Base().ParentName() == oldName {
			if err := other.Base().SetParent(newName); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Collection) remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, name)
}
