package domain

import "fmt"

// MgmtClass groups packages, files and parameters for the configuration
// management system. Distros, profiles and systems attach classes
// through their mgmt_classes attribute.
type MgmtClass struct {
	Item

	isDefinition bool
	params       map[string]any
	packages     []string
	files        []string
	className    string
}

// NewMgmtClass constructs an empty, unregistered management class.
func NewMgmtClass(reg *Registry) *MgmtClass {
	m := &MgmtClass{
		Item:     newItem(reg, TypeMgmtClass),
		params:   map[string]any{},
		packages: []string{},
		files:    []string{},
	}
	m.self = m
	m.initialized = true
	return m
}

// NewMgmtClassFromDict constructs a management class seeded from an
// attribute mapping.
func NewMgmtClassFromDict(reg *Registry, data map[string]any) (*MgmtClass, error) {
	m := NewMgmtClass(reg)
	if err := FromDict(m, data); err != nil {
		return nil, err
	}
	return m, nil
}

// IsDefinition reports whether the class is emitted as a definition
// rather than included directly.
func (m *MgmtClass) IsDefinition() bool { return m.isDefinition }

func (m *MgmtClass) SetIsDefinition(v any) error {
	b, err := inputBool(v)
	if err != nil {
		return fmt.Errorf("invalid is_definition: %w", err)
	}
	m.invalidate("is_definition")
	m.isDefinition = b
	return nil
}

// Params returns the free-form parameters passed along with the class.
func (m *MgmtClass) Params() map[string]any { return copyMap(m.params) }

func (m *MgmtClass) SetParams(v any) error {
	p, err := inputStringOrMap(v, true)
	if err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	m.invalidate("params")
	m.params = p
	return nil
}

// Packages returns the package items this class installs.
func (m *MgmtClass) Packages() []string {
	out := make([]string, len(m.packages))
	copy(out, m.packages)
	return out
}

func (m *MgmtClass) SetPackages(v any) error {
	list, err := inputStringOrList(v)
	if err != nil {
		return fmt.Errorf("invalid packages: %w", err)
	}
	m.invalidate("packages")
	m.packages = list
	return nil
}

// Files returns the file items this class manages.
func (m *MgmtClass) Files() []string {
	out := make([]string, len(m.files))
	copy(out, m.files)
	return out
}

func (m *MgmtClass) SetFiles(v any) error {
	list, err := inputStringOrList(v)
	if err != nil {
		return fmt.Errorf("invalid files: %w", err)
	}
	m.invalidate("files")
	m.files = list
	return nil
}

// ClassName returns the name used on the configuration management side,
// defaulting to the item name when empty.
func (m *MgmtClass) ClassName() string {
	if m.className == "" {
		return m.name
	}
	return m.className
}

func (m *MgmtClass) SetClassName(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	if s != "" && !nameRE.MatchString(s) {
		return fmt.Errorf("invalid class_name %q", s)
	}
	m.invalidate("class_name")
	m.className = s
	return nil
}

var mgmtClassSchema = mergeSchema(map[string]*Attribute{
	"is_definition": {
		Kind: KindBool,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*MgmtClass).isDefinition, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*MgmtClass).SetIsDefinition(v) },
	},
	"params": {
		Kind: KindDict,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*MgmtClass).Params(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*MgmtClass).SetParams(v) },
	},
	"packages": {
		Kind: KindList,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*MgmtClass).Packages(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*MgmtClass).SetPackages(v) },
	},
	"files": {
		Kind: KindList,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*MgmtClass).Files(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*MgmtClass).SetFiles(v) },
	},
	"class_name": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*MgmtClass).className, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*MgmtClass).SetClassName(v) },
	},
})
