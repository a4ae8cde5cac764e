package domain

import "fmt"

// Profile describes how a distro gets installed: automatic installation
// template, kernel options, repos, and the boot-time network parameters.
// Sub-profiles chain to a parent profile instead of naming a distro
// directly.
type Profile struct {
	Item

	distro      string
	menu        string
	repos       []string
	autoinstall string

	proxy        Value[string]
	enableIPXE   Value[bool]
	server       Value[string]
	nextServerV4 Value[string]
	nextServerV6 Value[string]
	filename     Value[string]
	nameServers  Value[[]string]
	virtType     Value[VirtType]
	virtBridge   Value[string]
}

// NewProfile constructs an empty, unregistered profile. Every boot-time
// scalar starts in the inherit state.
func NewProfile(reg *Registry) *Profile {
	p := &Profile{
		Item:         newItem(reg, TypeProfile),
		repos:        []string{},
		proxy:        Inherited[string](),
		enableIPXE:   Inherited[bool](),
		server:       Inherited[string](),
		nextServerV4: Inherited[string](),
		nextServerV6: Inherited[string](),
		filename:     Inherited[string](),
		nameServers:  Inherited[[]string](),
		virtType:     Inherited[VirtType](),
		virtBridge:   Inherited[string](),
	}
	p.self = p
	p.initialized = true
	return p
}

// NewProfileFromDict constructs a profile seeded from an attribute
// mapping.
func NewProfileFromDict(reg *Registry, data map[string]any) (*Profile, error) {
	p := NewProfile(reg)
	if err := FromDict(p, data); err != nil {
		return nil, err
	}
	return p, nil
}

// DistroName returns the raw distro reference.
func (p *Profile) DistroName() string { return p.distro }

// Distro resolves the referenced distro through the registry, walking to
// the conceptual parent when this is a sub-profile.
func (p *Profile) Distro() *Distro {
	cp := p.ConceptualParent()
	if d, ok := cp.(*Distro); ok {
		return d
	}
	return nil
}

// SetDistro points the profile at a distro, which must already exist.
func (p *Profile) SetDistro(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	if s != "" && p.reg != nil && p.reg.Get(TypeDistro, s) == nil {
		return fmt.Errorf("distro %q not found: %w", s, ErrNotFound)
	}
	p.invalidate("distro")
	p.distro = s
	return nil
}

// MenuName returns the boot menu this profile is listed under.
func (p *Profile) MenuName() string { return p.menu }

func (p *Profile) SetMenu(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	p.invalidate("menu")
	p.menu = s
	return nil
}

// Repos returns the repositories attached to this profile.
func (p *Profile) Repos() []string {
	out := make([]string, len(p.repos))
	copy(out, p.repos)
	return out
}

func (p *Profile) SetRepos(v any) error {
	list, err := inputStringOrList(v)
	if err != nil {
		return fmt.Errorf("invalid repos: %w", err)
	}
	p.invalidate("repos")
	p.repos = list
	return nil
}

// Autoinstall is the automatic installation template path.
func (p *Profile) Autoinstall() string { return p.autoinstall }

func (p *Profile) SetAutoinstall(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	p.invalidate("autoinstall")
	p.autoinstall = s
	return nil
}

// Proxy returns the resolved proxy URL used during installs. The
// historical attribute name carries the proxy_url_ prefix, which remaps
// onto the plain settings proxy field.
func (p *Profile) Proxy() (string, error) {
	return resolveScalar(&p.Item, "proxy_url_int", p.proxy, proxyOf, inputString)
}

func (p *Profile) SetProxy(v any) error {
	return p.setStringAttr(&p.proxy, "proxy", v)
}

// EnableIPXE reports whether the profile chainloads iPXE instead of a
// plain PXE bootloader.
func (p *Profile) EnableIPXE() (bool, error) {
	return resolveScalar(&p.Item, "enable_ipxe", p.enableIPXE, enableIPXEOf, inputBool)
}

func (p *Profile) SetEnableIPXE(v any) error {
	return p.setBoolAttr(&p.enableIPXE, "enable_ipxe", v)
}

// Server returns the resolved provisioning server address.
func (p *Profile) Server() (string, error) {
	return resolveScalar(&p.Item, "server", p.server, serverOf, inputString)
}

func (p *Profile) SetServer(v any) error {
	return p.setStringAttr(&p.server, "server", v)
}

// NextServerV4 returns the resolved IPv4 next-server address handed out
// over DHCP.
func (p *Profile) NextServerV4() (string, error) {
	return resolveScalar(&p.Item, "next_server_v4", p.nextServerV4, nextServerV4Of, inputString)
}

func (p *Profile) SetNextServerV4(v any) error {
	return p.setStringAttr(&p.nextServerV4, "next_server_v4", v)
}

// NextServerV6 returns the resolved IPv6 next-server address.
func (p *Profile) NextServerV6() (string, error) {
	return resolveScalar(&p.Item, "next_server_v6", p.nextServerV6, nextServerV6Of, inputString)
}

func (p *Profile) SetNextServerV6(v any) error {
	return p.setStringAttr(&p.nextServerV6, "next_server_v6", v)
}

// Filename returns the resolved DHCP boot filename, empty when the
// architecture default should apply.
func (p *Profile) Filename() (string, error) {
	return resolveScalar(&p.Item, "filename", p.filename, filenameOf, inputString)
}

func (p *Profile) SetFilename(v any) error {
	return p.setStringAttr(&p.filename, "filename", v)
}

// NameServers returns the resolved DNS servers for installed machines.
func (p *Profile) NameServers() ([]string, error) {
	return resolveScalar(&p.Item, "name_servers", p.nameServers, nameServersOf, inputStringOrList)
}

func (p *Profile) SetNameServers(v any) error {
	return p.setListAttr(&p.nameServers, "name_servers", v)
}

// VirtType returns the resolved virtualization backend.
func (p *Profile) VirtType() (VirtType, error) {
	return resolveScalar(&p.Item, "virt_type", p.virtType, virtTypeOf, convertVirtType)
}

func (p *Profile) SetVirtType(v any) error {
	return p.setVirtTypeAttr(&p.virtType, v)
}

// VirtBridge returns the resolved bridge guests attach to.
func (p *Profile) VirtBridge() (string, error) {
	return resolveScalar(&p.Item, "virt_bridge", p.virtBridge, virtBridgeOf, inputString)
}

func (p *Profile) SetVirtBridge(v any) error {
	return p.setStringAttr(&p.virtBridge, "virt_bridge", v)
}

// CheckValid extends the base validation: a top-level profile must name a
// distro, a sub-profile must have a parent.
func (p *Profile) CheckValid() error {
	if err := p.Item.CheckValid(); err != nil {
		return err
	}
	if p.parent == "" && p.distro == "" {
		return fmt.Errorf("profile %q: a distro is required", p.name)
	}
	return nil
}

var profileSchema = mergeSchema(map[string]*Attribute{
	"distro": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Profile).distro, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetDistro(v) },
	},
	"menu": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Profile).menu, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetMenu(v) },
	},
	"repos": {
		Kind: KindList,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Profile).Repos(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetRepos(v) },
	},
	"autoinstall": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Profile).autoinstall, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetAutoinstall(v) },
	},
	"proxy": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Profile).Proxy()
			}
			return rawString(it.(*Profile).proxy), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetProxy(v) },
	},
	"enable_ipxe": {
		Kind:        KindBool,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Profile).EnableIPXE()
			}
			return rawBool(it.(*Profile).enableIPXE), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetEnableIPXE(v) },
	},
	"server": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Profile).Server()
			}
			return rawString(it.(*Profile).server), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetServer(v) },
	},
	"next_server_v4": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Profile).NextServerV4()
			}
			return rawString(it.(*Profile).nextServerV4), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetNextServerV4(v) },
	},
	"next_server_v6": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Profile).NextServerV6()
			}
			return rawString(it.(*Profile).nextServerV6), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetNextServerV6(v) },
	},
	"filename": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Profile).Filename()
			}
			return rawString(it.(*Profile).filename), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetFilename(v) },
	},
	"name_servers": {
		Kind:        KindList,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Profile).NameServers()
			}
			return rawList(it.(*Profile).nameServers), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetNameServers(v) },
	},
	"virt_type": {
		Kind:        KindEnum,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				vt, err := it.(*Profile).VirtType()
				return vt.String(), err
			}
			return rawVirtType(it.(*Profile).virtType), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetVirtType(v) },
	},
	"virt_bridge": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Profile).VirtBridge()
			}
			return rawString(it.(*Profile).virtBridge), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Profile).SetVirtBridge(v) },
	},
})
