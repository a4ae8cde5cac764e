package domain

import (
	"fmt"
	"net"
	"sort"
)

// System is a physical or virtual machine bound to a profile or image.
// Beyond its own addressing it can override every boot-time scalar of
// its profile.
type System struct {
	Item

	profile string
	image   string

	gateway        string
	hostname       string
	netbootEnabled bool
	interfaces     map[string]*NetworkInterface

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

// NewSystem constructs an empty, unregistered system.
func NewSystem(reg *Registry) *System {
	s := &System{
		Item:           newItem(reg, TypeSystem),
		netbootEnabled: true,
		interfaces:     map[string]*NetworkInterface{},
		proxy:          Inherited[string](),
		enableIPXE:     Inherited[bool](),
		server:         Inherited[string](),
		nextServerV4:   Inherited[string](),
		nextServerV6:   Inherited[string](),
		filename:       Inherited[string](),
		nameServers:    Inherited[[]string](),
		virtType:       Inherited[VirtType](),
		virtBridge:     Inherited[string](),
	}
	s.self = s
	s.initialized = true
	return s
}

// NewSystemFromDict constructs a system seeded from an attribute
// mapping.
func NewSystemFromDict(reg *Registry, data map[string]any) (*System, error) {
	s := NewSystem(reg)
	if err := FromDict(s, data); err != nil {
		return nil, err
	}
	return s, nil
}

// ProfileName returns the raw profile reference.
func (s *System) ProfileName() string { return s.profile }

// Profile resolves the referenced profile through the registry.
func (s *System) Profile() *Profile {
	if s.profile == "" || s.reg == nil {
		return nil
	}
	if p, ok := s.reg.Get(TypeProfile, s.profile).(*Profile); ok {
		return p
	}
	return nil
}

// SetProfile binds the system to a profile, clearing any image binding.
// The profile must already exist.
func (s *System) SetProfile(v any) error {
	name, err := inputString(v)
	if err != nil {
		return err
	}
	if name != "" && s.reg != nil && s.reg.Get(TypeProfile, name) == nil {
		return fmt.Errorf("profile %q not found: %w", name, ErrNotFound)
	}
	s.invalidate("profile")
	s.profile = name
	if name != "" {
		s.image = ""
	}
	return nil
}

// ImageName returns the raw image reference.
func (s *System) ImageName() string { return s.image }

// Image resolves the referenced image through the registry.
func (s *System) Image() *Image {
	if s.image == "" || s.reg == nil {
		return nil
	}
	if img, ok := s.reg.Get(TypeImage, s.image).(*Image); ok {
		return img
	}
	return nil
}

// SetImage binds the system to an image, clearing any profile binding.
// The image must already exist.
func (s *System) SetImage(v any) error {
	name, err := inputString(v)
	if err != nil {
		return err
	}
	if name != "" && s.reg != nil && s.reg.Get(TypeImage, name) == nil {
		return fmt.Errorf("image %q not found: %w", name, ErrNotFound)
	}
	s.invalidate("image")
	s.image = name
	if name != "" {
		s.profile = ""
	}
	return nil
}

// Gateway returns the default IPv4 gateway.
func (s *System) Gateway() string { return s.gateway }

func (s *System) SetGateway(v any) error {
	g, err := inputString(v)
	if err != nil {
		return err
	}
	if g != "" && net.ParseIP(g) == nil {
		return fmt.Errorf("invalid gateway %q", g)
	}
	s.invalidate("gateway")
	s.gateway = g
	return nil
}

// Hostname returns the machine hostname.
func (s *System) Hostname() string { return s.hostname }

func (s *System) SetHostname(v any) error {
	h, err := inputString(v)
	if err != nil {
		return err
	}
	s.invalidate("hostname")
	s.hostname = h
	return nil
}

// NetbootEnabled reports whether the next PXE boot reinstalls the
// machine.
func (s *System) NetbootEnabled() bool { return s.netbootEnabled }

func (s *System) SetNetbootEnabled(v any) error {
	b, err := inputBool(v)
	if err != nil {
		return fmt.Errorf("invalid netboot_enabled: %w", err)
	}
	s.invalidate("netboot_enabled")
	s.netbootEnabled = b
	return nil
}

// Interfaces returns the interfaces keyed by device name. The map is a
// copy but the interfaces themselves are live.
func (s *System) Interfaces() map[string]*NetworkInterface {
	out := make(map[string]*NetworkInterface, len(s.interfaces))
	for k, v := range s.interfaces {
		out[k] = v
	}
	return out
}

// InterfaceNames returns the device names in sorted order.
func (s *System) InterfaceNames() []string {
	names := make([]string, 0, len(s.interfaces))
	for k := range s.interfaces {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Interface returns the named interface or nil.
func (s *System) Interface(name string) *NetworkInterface {
	return s.interfaces[name]
}

// AddInterface creates and registers an empty interface under the given
// device name.
func (s *System) AddInterface(name string) (*NetworkInterface, error) {
	if name == "" {
		return nil, fmt.Errorf("interface name is required")
	}
	if _, exists := s.interfaces[name]; exists {
		return nil, fmt.Errorf("interface %q already exists", name)
	}
	s.invalidate("interfaces")
	ni := NewNetworkInterface(s)
	s.interfaces[name] = ni
	return ni, nil
}

// RemoveInterface drops the named interface.
func (s *System) RemoveInterface(name string) error {
	if _, exists := s.interfaces[name]; !exists {
		return fmt.Errorf("interface %q: %w", name, ErrNotFound)
	}
	s.invalidate("interfaces")
	delete(s.interfaces, name)
	return nil
}

// RenameInterface moves an interface to a new device name.
func (s *System) RenameInterface(oldName, newName string) error {
	ni, exists := s.interfaces[oldName]
	if !exists {
		return fmt.Errorf("interface %q: %w", oldName, ErrNotFound)
	}
	if newName == "" {
		return fmt.Errorf("interface name is required")
	}
	if _, exists := s.interfaces[newName]; exists {
		return fmt.Errorf("interface %q already exists", newName)
	}
	s.invalidate("interfaces")
	delete(s.interfaces, oldName)
	s.interfaces[newName] = ni
	return nil
}

// SetInterfaces replaces the interface set from a nested attribute
// mapping, one entry per device name.
func (s *System) SetInterfaces(v any) error {
	if v == nil {
		s.invalidate("interfaces")
		s.interfaces = map[string]*NetworkInterface{}
		return nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("interfaces must be a mapping, got %T", v)
	}

	next := make(map[string]*NetworkInterface, len(raw))
	names := make([]string, 0, len(raw))
	for k := range raw {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		fields, ok := raw[name].(map[string]any)
		if !ok {
			return fmt.Errorf("interface %q must be a mapping, got %T", name, raw[name])
		}
		ni := NewNetworkInterface(s)
		if err := ni.fromDict(fields); err != nil {
			return err
		}
		next[name] = ni
	}
	s.invalidate("interfaces")
	s.interfaces = next
	return nil
}

// IsManagementSupported reports whether at least one interface carries
// enough addressing (a MAC or an IP) for the network services to manage
// the machine.
func (s *System) IsManagementSupported() bool {
	for _, ni := range s.interfaces {
		if ni.macAddress != "" || ni.ipAddress != "" || ni.ipv6Address != "" {
			return true
		}
	}
	return false
}

// Proxy returns the resolved proxy URL used during installs.
func (s *System) Proxy() (string, error) {
	return resolveScalar(&s.Item, "proxy_url_int", s.proxy, proxyOf, inputString)
}

func (s *System) SetProxy(v any) error {
	return s.setStringAttr(&s.proxy, "proxy", v)
}

// EnableIPXE reports whether this system chainloads iPXE.
func (s *System) EnableIPXE() (bool, error) {
	return resolveScalar(&s.Item, "enable_ipxe", s.enableIPXE, enableIPXEOf, inputBool)
}

func (s *System) SetEnableIPXE(v any) error {
	return s.setBoolAttr(&s.enableIPXE, "enable_ipxe", v)
}

// Server returns the resolved provisioning server address.
func (s *System) Server() (string, error) {
	return resolveScalar(&s.Item, "server", s.server, serverOf, inputString)
}

func (s *System) SetServer(v any) error {
	return s.setStringAttr(&s.server, "server", v)
}

// NextServerV4 returns the resolved IPv4 next-server address.
func (s *System) NextServerV4() (string, error) {
	return resolveScalar(&s.Item, "next_server_v4", s.nextServerV4, nextServerV4Of, inputString)
}

func (s *System) SetNextServerV4(v any) error {
	return s.setStringAttr(&s.nextServerV4, "next_server_v4", v)
}

// NextServerV6 returns the resolved IPv6 next-server address.
func (s *System) NextServerV6() (string, error) {
	return resolveScalar(&s.Item, "next_server_v6", s.nextServerV6, nextServerV6Of, inputString)
}

func (s *System) SetNextServerV6(v any) error {
	return s.setStringAttr(&s.nextServerV6, "next_server_v6", v)
}

// Filename returns the resolved DHCP boot filename.
func (s *System) Filename() (string, error) {
	return resolveScalar(&s.Item, "filename", s.filename, filenameOf, inputString)
}

func (s *System) SetFilename(v any) error {
	return s.setStringAttr(&s.filename, "filename", v)
}

// NameServers returns the resolved DNS servers.
func (s *System) NameServers() ([]string, error) {
	return resolveScalar(&s.Item, "name_servers", s.nameServers, nameServersOf, inputStringOrList)
}

func (s *System) SetNameServers(v any) error {
	return s.setListAttr(&s.nameServers, "name_servers", v)
}

// VirtType returns the resolved virtualization backend.
func (s *System) VirtType() (VirtType, error) {
	return resolveScalar(&s.Item, "virt_type", s.virtType, virtTypeOf, convertVirtType)
}

func (s *System) SetVirtType(v any) error {
	return s.setVirtTypeAttr(&s.virtType, v)
}

// VirtBridge returns the resolved bridge guests attach to.
func (s *System) VirtBridge() (string, error) {
	return resolveScalar(&s.Item, "virt_bridge", s.virtBridge, virtBridgeOf, inputString)
}

func (s *System) SetVirtBridge(v any) error {
	return s.setStringAttr(&s.virtBridge, "virt_bridge", v)
}

// CheckValid extends the base validation: a system must be bound to a
// profile or an image.
func (s *System) CheckValid() error {
	if err := s.Item.CheckValid(); err != nil {
		return err
	}
	if s.profile == "" && s.image == "" {
		return fmt.Errorf("system %q: a profile or image is required", s.name)
	}
	return nil
}

var systemSchema = mergeSchema(map[string]*Attribute{
	"profile": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*System).profile, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetProfile(v) },
	},
	"image": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*System).image, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetImage(v) },
	},
	"gateway": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*System).gateway, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetGateway(v) },
	},
	"hostname": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*System).hostname, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetHostname(v) },
	},
	"netboot_enabled": {
		Kind: KindBool,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*System).netbootEnabled, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetNetbootEnabled(v) },
	},
	"interfaces": {
		Kind: KindInterfaces,
		Get: func(it AnyItem, _ bool) (any, error) {
			sys := it.(*System)
			out := make(map[string]any, len(sys.interfaces))
			for name, ni := range sys.interfaces {
				out[name] = ni.ToDict()
			}
			return out, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetInterfaces(v) },
	},
	"proxy": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*System).Proxy()
			}
			return rawString(it.(*System).proxy), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetProxy(v) },
	},
	"enable_ipxe": {
		Kind:        KindBool,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*System).EnableIPXE()
			}
			return rawBool(it.(*System).enableIPXE), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetEnableIPXE(v) },
	},
	"server": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*System).Server()
			}
			return rawString(it.(*System).server), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetServer(v) },
	},
	"next_server_v4": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*System).NextServerV4()
			}
			return rawString(it.(*System).nextServerV4), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetNextServerV4(v) },
	},
	"next_server_v6": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*System).NextServerV6()
			}
			return rawString(it.(*System).nextServerV6), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetNextServerV6(v) },
	},
	"filename": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*System).Filename()
			}
			return rawString(it.(*System).filename), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetFilename(v) },
	},
	"name_servers": {
		Kind:        KindList,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*System).NameServers()
			}
			return rawList(it.(*System).nameServers), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetNameServers(v) },
	},
	"virt_type": {
		Kind:        KindEnum,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				vt, err := it.(*System).VirtType()
				return vt.String(), err
			}
			return rawVirtType(it.(*System).virtType), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetVirtType(v) },
	},
	"virt_bridge": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*System).VirtBridge()
			}
			return rawString(it.(*System).virtBridge), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*System).SetVirtBridge(v) },
	},
})
