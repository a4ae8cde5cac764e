package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var nameRE = regexp.MustCompile(`^[A-Za-z0-9_.:-]*$`)

// AnyItem is any concrete item (Distro, Profile, System, ...). Base gives
// access to the shared record and resolution machinery.
type AnyItem interface {
	Base() *Item
	Type() ItemType
}

// Item is the record shared by every item type. Concrete types embed it.
//
// Identity is the uid: it is assigned at construction, never reused, and
// is the equality key. The name is the addressing key within the owning
// collection and may change through Collection.Rename.
type Item struct {
	reg      *Registry
	self     AnyItem
	itemType ItemType

	uid     string
	name    string
	comment string
	parent  string
	ctime   float64
	mtime   float64
	depth   int

	isSubobject bool

	kernelOptions     Value[map[string]any]
	kernelOptionsPost Value[map[string]any]
	autoinstallMeta   Value[map[string]any]
	fetchableFiles    Value[map[string]any]
	bootFiles         Value[map[string]any]
	mgmtParameters    Value[map[string]any]
	templateFiles     map[string]any
	owners            Value[[]string]
	mgmtClasses       Value[[]string]

	inMemory    bool
	initialized bool
	cache       *Cache
}

func newUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func newItem(reg *Registry, t ItemType) Item {
	var settings Settings
	if reg != nil {
		settings = reg.settings
	}
	return Item{
		reg:               reg,
		itemType:          t,
		uid:               newUID(),
		kernelOptions:     Explicit(map[string]any{}),
		kernelOptionsPost: Explicit(map[string]any{}),
		autoinstallMeta:   Explicit(map[string]any{}),
		fetchableFiles:    Explicit(map[string]any{}),
		bootFiles:         Explicit(map[string]any{}),
		mgmtParameters:    Explicit(map[string]any{}),
		templateFiles:     map[string]any{},
		owners:            Inherited[[]string](),
		mgmtClasses:       Inherited[[]string](),
		inMemory:          true,
		cache:             newCache(settings),
	}
}

// Base returns the shared record. On the embedded Item it is the receiver
// itself, which lets every concrete type satisfy AnyItem for free.
func (i *Item) Base() *Item { return i }

// Type returns the collection type of the concrete item.
func (i *Item) Type() ItemType { return i.itemType }

// Registry returns the owning registry.
func (i *Item) Registry() *Registry { return i.reg }

// Equal compares items by uid.
func (i *Item) Equal(other AnyItem) bool {
	return other != nil && i.uid == other.Base().uid
}

// invalidate implements the cache contract for attribute writes. It is a
// no-op during construction and for items that are not hydrated. When the
// written attribute is inheritable and the item is registered under its
// name, the resolved snapshot of every descendant is dropped; the item's
// own snapshots are always dropped.
func (i *Item) invalidate(attr string) {
	if !i.initialized || !i.inMemory || i.reg == nil {
		return
	}
	if !i.reg.settings.CacheEnabled() {
		return
	}
	if attr != "" {
		a := schemaFor(i.itemType)[attr]
		if a != nil && a.Inheritable && i.reg.Get(i.itemType, i.name) != nil {
			for _, d := range i.Descendants() {
				d.Base().cache.CleanResolved()
			}
		}
	}
	i.cache.Clean()
}

// CleanCache drops this item's dict snapshots. attr may name the mutated
// attribute to extend the invalidation to dependent descendants; pass ""
// for a purely local flush.
func (i *Item) CleanCache(attr string) {
	if !i.inMemory {
		return
	}
	i.invalidate(attr)
	i.cache.Clean()
}

// DictCache exposes the memo slots, mainly for instrumentation.
func (i *Item) DictCache() *Cache { return i.cache }

// UID returns the immutable process-unique identity token.
func (i *Item) UID() string { return i.uid }

// SetUID replaces the identity token. Only the item factory and the
// deserializer should do this; if the item is registered, the collection
// lock is taken because the equality key of a stored entry changes.
func (i *Item) SetUID(uid string) {
	if i.reg != nil {
		if col := i.reg.Items(i.itemType); col != nil {
			col.mu.Lock()
			defer col.mu.Unlock()
		}
	}
	i.invalidate("uid")
	i.uid = uid
}

// Name returns the collection-unique object name.
func (i *Item) Name() string { return i.name }

// SetName validates and assigns the object name. Renaming a registered
// item must go through Collection.Rename, which relocates the lookup
// entry as well.
func (i *Item) SetName(name string) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("invalid characters in name %q", name)
	}
	i.invalidate("name")
	i.name = name
	return nil
}

// Comment returns the free-text comment.
func (i *Item) Comment() string { return i.comment }

func (i *Item) SetComment(comment string) {
	i.invalidate("comment")
	i.comment = comment
}

// CTime returns the creation time as unix seconds.
func (i *Item) CTime() float64 { return i.ctime }

func (i *Item) SetCTime(t float64) {
	i.invalidate("ctime")
	i.ctime = t
}

// MTime returns the last API-side modification time as unix seconds. It
// is not advanced automatically on mutation; the owning API stamps it.
func (i *Item) MTime() float64 { return i.mtime }

func (i *Item) SetMTime(t float64) {
	i.invalidate("mtime")
	i.mtime = t
}

// Depth is the distance from the root of the same-type parent chain,
// maintained by SetParent and used for topological load order.
func (i *Item) Depth() int { return i.depth }

func (i *Item) SetDepth(depth int) {
	i.invalidate("depth")
	i.depth = depth
}

// IsSubobject reports whether the item was created as a child of an item
// of the same type (currently meaningful for profiles only).
func (i *Item) IsSubobject() bool { return i.isSubobject }

func (i *Item) SetIsSubobject(v bool) {
	i.invalidate("is_subobject")
	i.isSubobject = v
}

// InMemory reports whether the full attribute set is loaded. When false,
// only identity is populated and ToDict hydrates from the store first.
func (i *Item) InMemory() bool { return i.inMemory }

// SetInMemory is reserved for the serializers.
func (i *Item) SetInMemory(v bool) { i.inMemory = v }

// Owners returns the resolved owner list. Falls back to the settings
// default_ownership field at the root of the chain.
func (i *Item) Owners() ([]string, error) {
	return resolveScalar(i, "owners", i.owners,
		func(p AnyItem) ([]string, bool, error) {
			v, err := p.Base().Owners()
			return v, true, err
		}, inputStringOrList)
}

func (i *Item) SetOwners(v any) error {
	if isInherit(v) {
		i.invalidate("owners")
		i.owners = Inherited[[]string]()
		return nil
	}
	list, err := inputStringOrList(v)
	if err != nil {
		return fmt.Errorf("invalid owners: %w", err)
	}
	i.invalidate("owners")
	i.owners = Explicit(list)
	return nil
}

// MgmtClasses returns the resolved list of configuration management
// classes assigned to the item.
func (i *Item) MgmtClasses() ([]string, error) {
	return resolveScalar(i, "mgmt_classes", i.mgmtClasses,
		func(p AnyItem) ([]string, bool, error) {
			v, err := p.Base().MgmtClasses()
			return v, true, err
		}, inputStringOrList)
}

func (i *Item) SetMgmtClasses(v any) error {
	if isInherit(v) {
		i.invalidate("mgmt_classes")
		i.mgmtClasses = Inherited[[]string]()
		return nil
	}
	list, err := inputStringOrList(v)
	if err != nil {
		return fmt.Errorf("invalid mgmt classes: %w", err)
	}
	i.invalidate("mgmt_classes")
	i.mgmtClasses = Explicit(list)
	return nil
}

// KernelOptions returns the merged kernel option dictionary: the parent's
// resolved options first, this item's explicit entries on top.
func (i *Item) KernelOptions() (map[string]any, error) {
	return resolveDict(i, "kernel_options", i.kernelOptions, func(p AnyItem) (map[string]any, bool, error) {
		v, err := p.Base().KernelOptions()
		return v, true, err
	})
}

func (i *Item) SetKernelOptions(v any) error {
	return i.setDictAttr(&i.kernelOptions, "kernel_options", v, true)
}

// KernelOptionsPost returns the merged post-install kernel options.
func (i *Item) KernelOptionsPost() (map[string]any, error) {
	return resolveDict(i, "kernel_options_post", i.kernelOptionsPost, func(p AnyItem) (map[string]any, bool, error) {
		v, err := p.Base().KernelOptionsPost()
		return v, true, err
	})
}

func (i *Item) SetKernelOptionsPost(v any) error {
	return i.setDictAttr(&i.kernelOptionsPost, "kernel_options_post", v, true)
}

// AutoinstallMeta returns the merged metadata handed to the automatic
// installation templating.
func (i *Item) AutoinstallMeta() (map[string]any, error) {
	return resolveDict(i, "autoinstall_meta", i.autoinstallMeta, func(p AnyItem) (map[string]any, bool, error) {
		v, err := p.Base().AutoinstallMeta()
		return v, true, err
	})
}

func (i *Item) SetAutoinstallMeta(v any) error {
	return i.setDictAttr(&i.autoinstallMeta, "autoinstall_meta", v, true)
}

// FetchableFiles returns the merged virt_name=path mapping served over
// TFTP or HTTP.
func (i *Item) FetchableFiles() (map[string]any, error) {
	return resolveDict(i, "fetchable_files", i.fetchableFiles, func(p AnyItem) (map[string]any, bool, error) {
		v, err := p.Base().FetchableFiles()
		return v, true, err
	})
}

func (i *Item) SetFetchableFiles(v any) error {
	return i.setDictAttr(&i.fetchableFiles, "fetchable_files", v, false)
}

// BootFiles returns the merged mapping of files copied into the TFTP
// root beyond kernel and initrd. Boot files inherit with dictionary merge
// like fetchable_files do.
func (i *Item) BootFiles() (map[string]any, error) {
	return resolveDict(i, "boot_files", i.bootFiles, func(p AnyItem) (map[string]any, bool, error) {
		v, err := p.Base().BootFiles()
		return v, true, err
	})
}

func (i *Item) SetBootFiles(v any) error {
	return i.setDictAttr(&i.bootFiles, "boot_files", v, false)
}

// MgmtParameters returns the merged parameters handed to the management
// application.
func (i *Item) MgmtParameters() (map[string]any, error) {
	return resolveDict(i, "mgmt_parameters", i.mgmtParameters, func(p AnyItem) (map[string]any, bool, error) {
		v, err := p.Base().MgmtParameters()
		return v, true, err
	})
}

// SetMgmtParameters additionally accepts a YAML document string, which
// must evaluate to a mapping.
func (i *Item) SetMgmtParameters(v any) error {
	if s, ok := v.(string); ok && s != Inherit {
		if s == "" {
			v = map[string]any{}
		} else {
			var parsed map[string]any
			if err := yaml.Unmarshal([]byte(s), &parsed); err != nil {
				return fmt.Errorf("mgmt parameters must be a YAML mapping: %w", err)
			}
			v = parsed
		}
	}
	return i.setDictAttr(&i.mgmtParameters, "mgmt_parameters", v, false)
}

// TemplateFiles is the non-inheriting source=destination template map.
func (i *Item) TemplateFiles() map[string]any {
	return copyMap(i.templateFiles)
}

func (i *Item) SetTemplateFiles(v any) error {
	if isInherit(v) {
		return fmt.Errorf("template_files does not support inheritance")
	}
	m, err := inputStringOrMap(v, false)
	if err != nil {
		return fmt.Errorf("invalid template files: %w", err)
	}
	i.invalidate("template_files")
	i.templateFiles = m
	return nil
}

func (i *Item) setStringAttr(dst *Value[string], attr string, v any) error {
	if isInherit(v) {
		i.invalidate(attr)
		*dst = Inherited[string]()
		return nil
	}
	s, err := inputString(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", attr, err)
	}
	i.invalidate(attr)
	*dst = Explicit(s)
	return nil
}

func (i *Item) setBoolAttr(dst *Value[bool], attr string, v any) error {
	if isInherit(v) {
		i.invalidate(attr)
		*dst = Inherited[bool]()
		return nil
	}
	b, err := inputBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", attr, err)
	}
	i.invalidate(attr)
	*dst = Explicit(b)
	return nil
}

func (i *Item) setListAttr(dst *Value[[]string], attr string, v any) error {
	if isInherit(v) {
		i.invalidate(attr)
		*dst = Inherited[[]string]()
		return nil
	}
	list, err := inputStringOrList(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", attr, err)
	}
	i.invalidate(attr)
	*dst = Explicit(list)
	return nil
}

func (i *Item) setDictAttr(dst *Value[map[string]any], attr string, v any, allowMultiples bool) error {
	if isInherit(v) {
		i.invalidate(attr)
		*dst = Inherited[map[string]any]()
		return nil
	}
	m, err := inputStringOrMap(v, allowMultiples)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", attr, err)
	}
	i.invalidate(attr)
	*dst = Explicit(m)
	return nil
}

// CheckValid raises the minimal consistency requirements shared by all
// item types.
func (i *Item) CheckValid() error {
	if i.name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
