package domain

import (
	"fmt"
	"net"
	"sort"
)

// NetworkInterface is a single NIC on a system. Interfaces are owned by
// their system and are not items themselves; changing one dirties the
// cached dictionaries of the owning system.
type NetworkInterface struct {
	system *System

	macAddress      string
	ipAddress       string
	ipv6Address     string
	netmask         string
	ifGateway       string
	dnsName         string
	dhcpTag         string
	interfaceType   InterfaceType
	interfaceMaster string
	bondingOpts     string
	bridgeOpts      string
	static          bool
	management      bool

	virtBridge Value[string]
}

// NewNetworkInterface constructs an interface bound to its owning
// system.
func NewNetworkInterface(sys *System) *NetworkInterface {
	return &NetworkInterface{
		system:        sys,
		interfaceType: InterfaceNA,
		virtBridge:    Inherited[string](),
	}
}

func (n *NetworkInterface) dirty() {
	if n.system != nil {
		n.system.invalidate("interfaces")
	}
}

// MACAddress returns the hardware address, empty when unset.
func (n *NetworkInterface) MACAddress() string { return n.macAddress }

// SetMACAddress validates and stores the hardware address. The literal
// "random" is kept as-is and replaced at deploy time.
func (n *NetworkInterface) SetMACAddress(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	if s != "" && s != "random" {
		if _, err := net.ParseMAC(s); err != nil {
			return fmt.Errorf("invalid mac_address %q: %w", s, err)
		}
	}
	n.dirty()
	n.macAddress = s
	return nil
}

// IPAddress returns the IPv4 address.
func (n *NetworkInterface) IPAddress() string { return n.ipAddress }

func (n *NetworkInterface) SetIPAddress(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	if s != "" && net.ParseIP(s) == nil {
		return fmt.Errorf("invalid ip_address %q", s)
	}
	n.dirty()
	n.ipAddress = s
	return nil
}

// IPv6Address returns the IPv6 address.
func (n *NetworkInterface) IPv6Address() string { return n.ipv6Address }

func (n *NetworkInterface) SetIPv6Address(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	if s != "" && net.ParseIP(s) == nil {
		return fmt.Errorf("invalid ipv6_address %q", s)
	}
	n.dirty()
	n.ipv6Address = s
	return nil
}

// Netmask returns the IPv4 netmask or prefix.
func (n *NetworkInterface) Netmask() string { return n.netmask }

func (n *NetworkInterface) SetNetmask(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	n.dirty()
	n.netmask = s
	return nil
}

// IfGateway returns the per-interface gateway, taking precedence over
// the system gateway when set.
func (n *NetworkInterface) IfGateway() string { return n.ifGateway }

func (n *NetworkInterface) SetIfGateway(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	if s != "" && net.ParseIP(s) == nil {
		return fmt.Errorf("invalid if_gateway %q", s)
	}
	n.dirty()
	n.ifGateway = s
	return nil
}

// DNSName returns the fully qualified DNS name of this interface.
func (n *NetworkInterface) DNSName() string { return n.dnsName }

func (n *NetworkInterface) SetDNSName(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	n.dirty()
	n.dnsName = s
	return nil
}

// DHCPTag returns the DHCP group this interface is written under,
// defaulting to the default tag when empty.
func (n *NetworkInterface) DHCPTag() string { return n.dhcpTag }

func (n *NetworkInterface) SetDHCPTag(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	n.dirty()
	n.dhcpTag = s
	return nil
}

// InterfaceType returns the NIC role.
func (n *NetworkInterface) InterfaceType() InterfaceType { return n.interfaceType }

func (n *NetworkInterface) SetInterfaceType(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	if s == "" {
		s = string(InterfaceNA)
	}
	t, err := ParseInterfaceType(s)
	if err != nil {
		return err
	}
	n.dirty()
	n.interfaceType = t
	return nil
}

// InterfaceMaster names the bond or bridge a slave interface belongs to.
func (n *NetworkInterface) InterfaceMaster() string { return n.interfaceMaster }

func (n *NetworkInterface) SetInterfaceMaster(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	n.dirty()
	n.interfaceMaster = s
	return nil
}

// BondingOpts returns the options applied to a bond master.
func (n *NetworkInterface) BondingOpts() string { return n.bondingOpts }

func (n *NetworkInterface) SetBondingOpts(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	n.dirty()
	n.bondingOpts = s
	return nil
}

// BridgeOpts returns the options applied to a bridge master.
func (n *NetworkInterface) BridgeOpts() string { return n.bridgeOpts }

func (n *NetworkInterface) SetBridgeOpts(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	n.dirty()
	n.bridgeOpts = s
	return nil
}

// Static reports whether the interface is configured statically instead
// of over DHCP.
func (n *NetworkInterface) Static() bool { return n.static }

func (n *NetworkInterface) SetStatic(v any) error {
	b, err := inputBool(v)
	if err != nil {
		return fmt.Errorf("invalid static: %w", err)
	}
	n.dirty()
	n.static = b
	return nil
}

// Management reports whether this is the interface management traffic
// should prefer.
func (n *NetworkInterface) Management() bool { return n.management }

func (n *NetworkInterface) SetManagement(v any) error {
	b, err := inputBool(v)
	if err != nil {
		return fmt.Errorf("invalid management: %w", err)
	}
	n.dirty()
	n.management = b
	return nil
}

// VirtBridge returns the bridge guests on this NIC attach to, falling
// back to the owning system when inherited.
func (n *NetworkInterface) VirtBridge() (string, error) {
	if !n.virtBridge.IsInherited() {
		return n.virtBridge.Get(), nil
	}
	if n.system != nil {
		return n.system.VirtBridge()
	}
	return "", nil
}

func (n *NetworkInterface) SetVirtBridge(v any) error {
	if isInherit(v) {
		n.dirty()
		n.virtBridge = Inherited[string]()
		return nil
	}
	s, err := inputString(v)
	if err != nil {
		return err
	}
	n.dirty()
	n.virtBridge = Explicit(s)
	return nil
}

// ToDict projects the interface into a plain attribute mapping.
func (n *NetworkInterface) ToDict() map[string]any {
	return map[string]any{
		"mac_address":      n.macAddress,
		"ip_address":       n.ipAddress,
		"ipv6_address":     n.ipv6Address,
		"netmask":          n.netmask,
		"if_gateway":       n.ifGateway,
		"dns_name":         n.dnsName,
		"dhcp_tag":         n.dhcpTag,
		"interface_type":   n.interfaceType.String(),
		"interface_master": n.interfaceMaster,
		"bonding_opts":     n.bondingOpts,
		"bridge_opts":      n.bridgeOpts,
		"static":           n.static,
		"management":       n.management,
		"virt_bridge":      rawString(n.virtBridge),
	}
}

var interfaceSetters = map[string]func(*NetworkInterface, any) error{
	"mac_address":      (*NetworkInterface).SetMACAddress,
	"ip_address":       (*NetworkInterface).SetIPAddress,
	"ipv6_address":     (*NetworkInterface).SetIPv6Address,
	"netmask":          (*NetworkInterface).SetNetmask,
	"if_gateway":       (*NetworkInterface).SetIfGateway,
	"dns_name":         (*NetworkInterface).SetDNSName,
	"dhcp_tag":         (*NetworkInterface).SetDHCPTag,
	"interface_type":   (*NetworkInterface).SetInterfaceType,
	"interface_master": (*NetworkInterface).SetInterfaceMaster,
	"bonding_opts":     (*NetworkInterface).SetBondingOpts,
	"bridge_opts":      (*NetworkInterface).SetBridgeOpts,
	"static":           (*NetworkInterface).SetStatic,
	"management":       (*NetworkInterface).SetManagement,
	"virt_bridge":      (*NetworkInterface).SetVirtBridge,
}

// fromDict applies a plain attribute mapping onto the interface,
// rejecting unknown keys after applying the recognized ones.
func (n *NetworkInterface) fromDict(data map[string]any) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rejected []string
	for _, k := range keys {
		set, ok := interfaceSetters[k]
		if !ok {
			rejected = append(rejected, k)
			continue
		}
		if err := set(n, data[k]); err != nil {
			return fmt.Errorf("interface attribute %q: %w", k, err)
		}
	}
	if len(rejected) > 0 {
		return &UnknownKeysError{Keys: rejected}
	}
	return nil
}
