package domain

import "fmt"

// Arch is the CPU architecture of a distro or image.
type Arch string

const (
	ArchI386    Arch = "i386"
	ArchX8664   Arch = "x86_64"
	ArchPPC     Arch = "ppc"
	ArchPPC64   Arch = "ppc64"
	ArchPPC64LE Arch = "ppc64le"
	ArchPPC64EL Arch = "ppc64el"
	ArchAarch64 Arch = "aarch64"
	ArchArm     Arch = "arm"
)

// ParseArch converts a raw string into an Arch.
func ParseArch(s string) (Arch, error) {
	switch Arch(s) {
	case ArchI386, ArchX8664, ArchPPC, ArchPPC64, ArchPPC64LE, ArchPPC64EL, ArchAarch64, ArchArm:
		return Arch(s), nil
	}
	return "", fmt.Errorf("unknown architecture %q", s)
}

func (a Arch) String() string { return string(a) }

// IsPPC reports whether the architecture belongs to the POWER family,
// which gets a dedicated boot filename during DHCP sync.
func (a Arch) IsPPC() bool {
	switch a {
	case ArchPPC, ArchPPC64, ArchPPC64LE, ArchPPC64EL:
		return true
	}
	return false
}

// VirtType is the virtualization backend used when a profile or system is
// installed as a guest.
type VirtType string

const (
	VirtNone   VirtType = "none"
	VirtQemu   VirtType = "qemu"
	VirtKvm    VirtType = "kvm"
	VirtXenPV  VirtType = "xenpv"
	VirtXenFV  VirtType = "xenfv"
	VirtVMware VirtType = "vmware"
)

// ParseVirtType converts a raw string into a VirtType.
func ParseVirtType(s string) (VirtType, error) {
	switch VirtType(s) {
	case VirtNone, VirtQemu, VirtKvm, VirtXenPV, VirtXenFV, VirtVMware:
		return VirtType(s), nil
	}
	return "", fmt.Errorf("unknown virt type %q", s)
}

func (v VirtType) String() string { return string(v) }

// InterfaceType classifies a system network interface.
type InterfaceType string

const (
	InterfaceNA                InterfaceType = "na"
	InterfaceBond              InterfaceType = "bond"
	InterfaceBondSlave         InterfaceType = "bond_slave"
	InterfaceBridge            InterfaceType = "bridge"
	InterfaceBridgeSlave       InterfaceType = "bridge_slave"
	InterfaceBondedBridgeSlave InterfaceType = "bonded_bridge_slave"
	InterfaceInfiniband        InterfaceType = "infiniband"
)

// ParseInterfaceType converts a raw string into an InterfaceType.
func ParseInterfaceType(s string) (InterfaceType, error) {
	switch InterfaceType(s) {
	case InterfaceNA, InterfaceBond, InterfaceBondSlave, InterfaceBridge,
		InterfaceBridgeSlave, InterfaceBondedBridgeSlave, InterfaceInfiniband:
		return InterfaceType(s), nil
	}
	return "", fmt.Errorf("unknown interface type %q", s)
}

func (t InterfaceType) String() string { return string(t) }

// IsSlave reports whether the interface takes its addressing from a
// master interface.
func (t InterfaceType) IsSlave() bool {
	switch t {
	case InterfaceBondSlave, InterfaceBridgeSlave, InterfaceBondedBridgeSlave:
		return true
	}
	return false
}
