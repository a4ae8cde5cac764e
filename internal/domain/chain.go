package domain

import "fmt"

// The fromParent helpers pull a resolved attribute out of a logical
// parent when that parent type carries the attribute at all. A false
// return means the chain stops there and resolution falls through to the
// settings.

func proxyOf(p AnyItem) (string, bool, error) {
	if pr, ok := p.(*Profile); ok {
		v, err := pr.Proxy()
		return v, true, err
	}
	return "", false, nil
}

func enableIPXEOf(p AnyItem) (bool, bool, error) {
	if pr, ok := p.(*Profile); ok {
		v, err := pr.EnableIPXE()
		return v, true, err
	}
	return false, false, nil
}

func serverOf(p AnyItem) (string, bool, error) {
	if pr, ok := p.(*Profile); ok {
		v, err := pr.Server()
		return v, true, err
	}
	return "", false, nil
}

func nextServerV4Of(p AnyItem) (string, bool, error) {
	if pr, ok := p.(*Profile); ok {
		v, err := pr.NextServerV4()
		return v, true, err
	}
	return "", false, nil
}

func nextServerV6Of(p AnyItem) (string, bool, error) {
	if pr, ok := p.(*Profile); ok {
		v, err := pr.NextServerV6()
		return v, true, err
	}
	return "", false, nil
}

func filenameOf(p AnyItem) (string, bool, error) {
	if pr, ok := p.(*Profile); ok {
		v, err := pr.Filename()
		return v, true, err
	}
	return "", false, nil
}

func nameServersOf(p AnyItem) ([]string, bool, error) {
	if pr, ok := p.(*Profile); ok {
		v, err := pr.NameServers()
		return v, true, err
	}
	return nil, false, nil
}

func virtTypeOf(p AnyItem) (VirtType, bool, error) {
	switch x := p.(type) {
	case *Profile:
		v, err := x.VirtType()
		return v, true, err
	case *Image:
		v, err := x.VirtType()
		return v, true, err
	}
	return "", false, nil
}

func virtBridgeOf(p AnyItem) (string, bool, error) {
	switch x := p.(type) {
	case *Profile:
		v, err := x.VirtBridge()
		return v, true, err
	case *Image:
		v, err := x.VirtBridge()
		return v, true, err
	}
	return "", false, nil
}

func convertVirtType(v any) (VirtType, error) {
	switch x := v.(type) {
	case VirtType:
		return ParseVirtType(string(x))
	case string:
		return ParseVirtType(x)
	}
	return "", fmt.Errorf("cannot convert %T to a virt type", v)
}

func rawVirtType(v Value[VirtType]) any {
	if v.IsInherited() {
		return Inherit
	}
	return v.Get().String()
}

func (i *Item) setVirtTypeAttr(dst *Value[VirtType], v any) error {
	if isInherit(v) {
		i.invalidate("virt_type")
		*dst = Inherited[VirtType]()
		return nil
	}
	vt, err := convertVirtType(v)
	if err != nil {
		return fmt.Errorf("invalid virt_type: %w", err)
	}
	i.invalidate("virt_type")
	*dst = Explicit(vt)
	return nil
}
