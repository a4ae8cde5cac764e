package domain

import (
	"reflect"
	"testing"
)

func TestSystemBindings(t *testing.T) {
	reg, _ := newTestRegistry()
	mustAddDistro(t, reg, "fc42")
	mustAddProfile(t, reg, "web", "fc42")
	img := NewImage(reg)
	if err := img.SetName("rescue"); err != nil {
		t.Fatal(err)
	}
	if err := img.SetFile("/srv/rescue.iso"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(img); err != nil {
		t.Fatal(err)
	}

	s := mustAddSystem(t, reg, "node1", "web")

	t.Run("image binding clears the profile", func(t *testing.T) {
		if err := s.SetImage("rescue"); err != nil {
			t.Fatal(err)
		}
		if s.ProfileName() != "" || s.ImageName() != "rescue" {
			t.Errorf("bindings = %q/%q, want \"\"/rescue", s.ProfileName(), s.ImageName())
		}
	})

	t.Run("profile binding clears the image", func(t *testing.T) {
		if err := s.SetProfile("web"); err != nil {
			t.Fatal(err)
		}
		if s.ProfileName() != "web" || s.ImageName() != "" {
			t.Errorf("bindings = %q/%q, want web/\"\"", s.ProfileName(), s.ImageName())
		}
	})

	t.Run("unknown references are rejected", func(t *testing.T) {
		if err := s.SetProfile("ghost"); err == nil {
			t.Error("unknown profile accepted")
		}
		if err := s.SetImage("ghost"); err == nil {
			t.Error("unknown image accepted")
		}
	})
}

func TestNetworkInterfaceValidation(t *testing.T) {
	sys := NewSystem(nil)
	ni := NewNetworkInterface(sys)

	if err := ni.SetMACAddress("not-a-mac"); err == nil {
		t.Error("invalid MAC accepted")
	}
	if err := ni.SetMACAddress("AA:BB:CC:DD:EE:FF"); err != nil {
		t.Errorf("valid MAC rejected: %v", err)
	}
	if err := ni.SetMACAddress("random"); err != nil {
		t.Errorf("random placeholder rejected: %v", err)
	}
	if err := ni.SetIPAddress("10.0.0.300"); err == nil {
		t.Error("invalid IPv4 accepted")
	}
	if err := ni.SetIPAddress("10.0.0.3"); err != nil {
		t.Errorf("valid IPv4 rejected: %v", err)
	}
	if err := ni.SetIPv6Address("fd00::zz"); err == nil {
		t.Error("invalid IPv6 accepted")
	}
	if err := ni.SetIPv6Address("fd00::1"); err != nil {
		t.Errorf("valid IPv6 rejected: %v", err)
	}
	if err := ni.SetInterfaceType("coax"); err == nil {
		t.Error("unknown interface type accepted")
	}
	if err := ni.SetInterfaceType("bond_slave"); err != nil {
		t.Errorf("bond_slave rejected: %v", err)
	}
}

func TestSystemInterfaces(t *testing.T) {
	newSys := func(t *testing.T) *System {
		t.Helper()
		reg, _ := newTestRegistry()
		mustAddDistro(t, reg, "fc42")
		mustAddProfile(t, reg, "web", "fc42")
		return mustAddSystem(t, reg, "node1", "web")
	}

	t.Run("add remove rename", func(t *testing.T) {
		s := newSys(t)
		if _, err := s.AddInterface("eth0"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.AddInterface("eth0"); err == nil {
			t.Error("duplicate interface accepted")
		}
		if err := s.RenameInterface("eth0", "eno1"); err != nil {
			t.Fatal(err)
		}
		if s.Interface("eth0") != nil || s.Interface("eno1") == nil {
			t.Error("rename did not move the interface")
		}
		if err := s.RemoveInterface("eno1"); err != nil {
			t.Fatal(err)
		}
		if err := s.RemoveInterface("eno1"); err == nil {
			t.Error("removing a missing interface succeeded")
		}
	})

	t.Run("names are sorted", func(t *testing.T) {
		s := newSys(t)
		for _, name := range []string{"eth1", "bond0", "eth0"} {
			if _, err := s.AddInterface(name); err != nil {
				t.Fatal(err)
			}
		}
		got := s.InterfaceNames()
		want := []string{"bond0", "eth0", "eth1"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("InterfaceNames() = %v, want %v", got, want)
		}
	})

	t.Run("nested mapping replaces the set", func(t *testing.T) {
		s := newSys(t)
		err := s.SetInterfaces(map[string]any{
			"eth0": map[string]any{
				"mac_address": "AA:BB:CC:DD:EE:01",
				"ip_address":  "10.0.0.10",
				"dns_name":    "node1.example.com",
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		ni := s.Interface("eth0")
		if ni == nil || ni.MACAddress() != "AA:BB:CC:DD:EE:01" {
			t.Fatalf("interface not built from mapping: %+v", ni)
		}
		err = s.SetInterfaces(map[string]any{
			"eth0": map[string]any{"speed": "fast"},
		})
		if err == nil {
			t.Error("unknown interface key accepted")
		}
	})

	t.Run("management needs addressing", func(t *testing.T) {
		s := newSys(t)
		if s.IsManagementSupported() {
			t.Error("system with no interfaces claims manageability")
		}
		ni, err := s.AddInterface("eth0")
		if err != nil {
			t.Fatal(err)
		}
		if s.IsManagementSupported() {
			t.Error("bare interface counts as manageable")
		}
		if err := ni.SetMACAddress("AA:BB:CC:DD:EE:02"); err != nil {
			t.Fatal(err)
		}
		if !s.IsManagementSupported() {
			t.Error("interface with MAC not counted as manageable")
		}
	})

	t.Run("virt bridge falls back to the system", func(t *testing.T) {
		s := newSys(t)
		if err := s.SetVirtBridge("br7"); err != nil {
			t.Fatal(err)
		}
		ni, err := s.AddInterface("eth0")
		if err != nil {
			t.Fatal(err)
		}
		got, err := ni.VirtBridge()
		if err != nil {
			t.Fatal(err)
		}
		if got != "br7" {
			t.Errorf("VirtBridge() = %q, want system value br7", got)
		}
		if err := ni.SetVirtBridge("virbr0"); err != nil {
			t.Fatal(err)
		}
		got, err = ni.VirtBridge()
		if err != nil {
			t.Fatal(err)
		}
		if got != "virbr0" {
			t.Errorf("VirtBridge() = %q, want explicit virbr0", got)
		}
	})
}
