package domain

import "fmt"

// Package is a software package installed or removed by the
// configuration management system through a management class.
type Package struct {
	Item

	action    string
	installer string
	version   string
}

// NewPackage constructs an empty, unregistered package.
func NewPackage(reg *Registry) *Package {
	p := &Package{
		Item:   newItem(reg, TypePackage),
		action: "create",
	}
	p.self = p
	p.initialized = true
	return p
}

// NewPackageFromDict constructs a package seeded from an attribute
// mapping.
func NewPackageFromDict(reg *Registry, data map[string]any) (*Package, error) {
	p := NewPackage(reg)
	if err := FromDict(p, data); err != nil {
		return nil, err
	}
	return p, nil
}

// Action returns whether the package is installed or removed.
func (p *Package) Action() string { return p.action }

func (p *Package) SetAction(v any) error {
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
	p.invalidate("action")
	p.action = s
	return nil
}

// Installer returns the package manager used to apply the action.
func (p *Package) Installer() string { return p.installer }

func (p *Package) SetInstaller(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	p.invalidate("installer")
	p.installer = s
	return nil
}

// Version pins the package version, empty for latest.
func (p *Package) Version() string { return p.version }

func (p *Package) SetVersion(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	p.invalidate("version")
	p.version = s
	return nil
}

var packageSchema = mergeSchema(map[string]*Attribute{
	"action": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Package).action, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Package).SetAction(v) },
	},
	"installer": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Package).installer, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Package).SetInstaller(v) },
	},
	"version": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Package).version, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Package).SetVersion(v) },
	},
})
