package domain

import "fmt"

// File is a file or directory placed on managed machines by the
// configuration management system through a management class.
type File struct {
	Item

	action     string
	mode       string
	ownerUser  string
	groupOwner string
	path       string
	template   string
	isDir      bool
}

// NewFile constructs an empty, unregistered file resource.
func NewFile(reg *Registry) *File {
	f := &File{
		Item:   newItem(reg, TypeFile),
		action: "create",
	}
	f.self = f
	f.initialized = true
	return f
}

// NewFileFromDict constructs a file resource seeded from an attribute
// mapping.
func NewFileFromDict(reg *Registry, data map[string]any) (*File, error) {
	f := NewFile(reg)
	if err := FromDict(f, data); err != nil {
		return nil, err
	}
	return f, nil
}

// Action returns whether the file is created or removed.
func (f *File) Action() string { return f.action }

func (f *File) SetAction(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	switch s {
	case "", "create":
		s = "create"
	case "remove":
	default:
		return fmt.Errorf("invalid action %q, want create or remove", s)
	}
	f.invalidate("action")
	f.action = s
	return nil
}

// Mode returns the octal permission string applied on the target.
func (f *File) Mode() string { return f.mode }

func (f *File) SetMode(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	f.invalidate("mode")
	f.mode = s
	return nil
}

// OwnerUser returns the owning user on the target.
func (f *File) OwnerUser() string { return f.ownerUser }

func (f *File) SetOwnerUser(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	f.invalidate("owner")
	f.ownerUser = s
	return nil
}

// GroupOwner returns the owning group on the target.
func (f *File) GroupOwner() string { return f.groupOwner }

func (f *File) SetGroupOwner(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	f.invalidate("group")
	f.groupOwner = s
	return nil
}

// Path returns where the file lands on the target.
func (f *File) Path() string { return f.path }

func (f *File) SetPath(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	f.invalidate("path")
	f.path = s
	return nil
}

// Template returns the source template rendered into the target file.
func (f *File) Template() string { return f.template }

func (f *File) SetTemplate(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	f.invalidate("template")
	f.template = s
	return nil
}

// IsDir reports whether the resource is a directory.
func (f *File) IsDir() bool { return f.isDir }

func (f *File) SetIsDir(v any) error {
	b, err := inputBool(v)
	if err != nil {
		return fmt.Errorf("invalid is_dir: %w", err)
	}
	f.invalidate("is_dir")
	f.isDir = b
	return nil
}

// CheckValid extends the base validation: a create action needs a path,
// and a file (not a directory) needs a template to render.
func (f *File) CheckValid() error {
	if err := f.Item.CheckValid(); err != nil {
		return err
	}
	if f.path == "" {
		return fmt.Errorf("file %q: a path is required", f.name)
	}
	if !f.isDir && f.action == "create" && f.template == "" {
		return fmt.Errorf("file %q: a template is required", f.name)
	}
	return nil
}

var fileSchema = mergeSchema(map[string]*Attribute{
	"action": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*File).action, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*File).SetAction(v) },
	},
	"mode": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*File).mode, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*File).SetMode(v) },
	},
	"owner": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*File).ownerUser, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*File).SetOwnerUser(v) },
	},
	"group": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*File).groupOwner, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*File).SetGroupOwner(v) },
	},
	"path": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*File).path, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*File).SetPath(v) },
	},
	"template": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*File).template, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*File).SetTemplate(v) },
	},
	"is_dir": {
		Kind: KindBool,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*File).isDir, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*File).SetIsDir(v) },
	},
})
