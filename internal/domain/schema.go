package domain

// FieldKind classifies a schema attribute for projection and matching.
type FieldKind int

const (
	KindString FieldKind = iota
	KindBool
	KindInt
	KindFloat
	KindList
	KindDict
	KindEnum
	KindInterfaces
)

// Attribute describes one schema field of an item type: how to project it
// into a dict (raw or resolved) and how to apply a dict value back onto
// the item. Set is nil for derived, read-only fields. Inheritable marks
// the attributes whose mutation invalidates descendant resolved caches.
type Attribute struct {
	Kind        FieldKind
	Inheritable bool
	Get         func(it AnyItem, resolved bool) (any, error)
	Set         func(it AnyItem, v any) error
}

// schemaFor returns the full attribute schema (base + type-specific) for
// an item type. The returned map is shared; callers must not mutate it.
func schemaFor(t ItemType) map[string]*Attribute {
	return schemas[t]
}

var schemas = make(map[ItemType]map[string]*Attribute)

// The per-type schema closures reach back into the registry (setters
// invalidate descendant caches, which walks the dependency graph through
// schemaFor), so the table cannot be wired by a package-level initializer
// without forming an initialization cycle.
func init() {
	schemas[TypeDistro] = distroSchema
	schemas[TypeProfile] = profileSchema
	schemas[TypeSystem] = systemSchema
	schemas[TypeImage] = imageSchema
	schemas[TypeMenu] = menuSchema
	schemas[TypeRepo] = repoSchema
	schemas[TypeMgmtClass] = mgmtClassSchema
	schemas[TypePackage] = packageSchema
	schemas[TypeFile] = fileSchema
}

func mergeSchema(extra map[string]*Attribute) map[string]*Attribute {
	out := make(map[string]*Attribute, len(baseSchema)+len(extra))
	for k, v := range baseSchema {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func rawDict(v Value[map[string]any]) any {
	if v.IsInherited() {
		return Inherit
	}
	return copyMap(v.Get())
}

func rawList(v Value[[]string]) any {
	if v.IsInherited() {
		return Inherit
	}
	out := make([]string, len(v.Get()))
	copy(out, v.Get())
	return out
}

func rawString(v Value[string]) any {
	if v.IsInherited() {
		return Inherit
	}
	return v.Get()
}

func rawBool(v Value[bool]) any {
	if v.IsInherited() {
		return Inherit
	}
	return v.Get()
}

// baseSchema covers the record shared by every item type.
var baseSchema = map[string]*Attribute{
	"name": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.Base().name, nil
		},
		Set: func(it AnyItem, v any) error {
			s, err := inputString(v)
			if err != nil {
				return err
			}
			return it.Base().SetName(s)
		},
	},
	"uid": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.Base().uid, nil
		},
		Set: func(it AnyItem, v any) error {
			s, err := inputString(v)
			if err != nil {
				return err
			}
			it.Base().SetUID(s)
			return nil
		},
	},
	"comment": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.Base().comment, nil
		},
		Set: func(it AnyItem, v any) error {
			s, err := inputString(v)
			if err != nil {
				return err
			}
			it.Base().SetComment(s)
			return nil
		},
	},
	"ctime": {
		Kind: KindFloat,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.Base().ctime, nil
		},
		Set: func(it AnyItem, v any) error {
			f, err := inputFloat(v)
			if err != nil {
				return err
			}
			it.Base().SetCTime(f)
			return nil
		},
	},
	"mtime": {
		Kind: KindFloat,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.Base().mtime, nil
		},
		Set: func(it AnyItem, v any) error {
			f, err := inputFloat(v)
			if err != nil {
				return err
			}
			it.Base().SetMTime(f)
			return nil
		},
	},
	// Reassigning the parent silently changes what every structural
	// descendant resolves to, so it counts as inheritable for
	// invalidation purposes.
	"parent": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.Base().parent, nil
		},
		Set: func(it AnyItem, v any) error {
			s, err := inputString(v)
			if err != nil {
				return err
			}
			return it.Base().SetParent(s)
		},
	},
	"depth": {
		Kind: KindInt,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.Base().depth, nil
		},
		Set: func(it AnyItem, v any) error {
			n, err := inputInt(v)
			if err != nil {
				return err
			}
			it.Base().SetDepth(n)
			return nil
		},
	},
	"is_subobject": {
		Kind: KindBool,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.Base().isSubobject, nil
		},
		Set: func(it AnyItem, v any) error {
			b, err := inputBool(v)
			if err != nil {
				return err
			}
			it.Base().SetIsSubobject(b)
			return nil
		},
	},
	"kernel_options": {
		Kind:        KindDict,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.Base().KernelOptions()
			}
			return rawDict(it.Base().kernelOptions), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetKernelOptions(v)
		},
	},
	"kernel_options_post": {
		Kind:        KindDict,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.Base().KernelOptionsPost()
			}
			return rawDict(it.Base().kernelOptionsPost), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetKernelOptionsPost(v)
		},
	},
	"autoinstall_meta": {
		Kind:        KindDict,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.Base().AutoinstallMeta()
			}
			return rawDict(it.Base().autoinstallMeta), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetAutoinstallMeta(v)
		},
	},
	"fetchable_files": {
		Kind:        KindDict,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.Base().FetchableFiles()
			}
			return rawDict(it.Base().fetchableFiles), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetFetchableFiles(v)
		},
	},
	"boot_files": {
		Kind:        KindDict,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.Base().BootFiles()
			}
			return rawDict(it.Base().bootFiles), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetBootFiles(v)
		},
	},
	"template_files": {
		Kind: KindDict,
		Get: func(it AnyItem, _ bool) (any, error) {
			return copyMap(it.Base().templateFiles), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetTemplateFiles(v)
		},
	},
	"mgmt_classes": {
		Kind:        KindList,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.Base().MgmtClasses()
			}
			return rawList(it.Base().mgmtClasses), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetMgmtClasses(v)
		},
	},
	"mgmt_parameters": {
		Kind:        KindDict,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.Base().MgmtParameters()
			}
			return rawDict(it.Base().mgmtParameters), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetMgmtParameters(v)
		},
	},
	"owners": {
		Kind:        KindList,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.Base().Owners()
			}
			return rawList(it.Base().owners), nil
		},
		Set: func(it AnyItem, v any) error {
			return it.Base().SetOwners(v)
		},
	},
}
