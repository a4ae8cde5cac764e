package manager

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ycedres/cobbler/internal/config"
	"github.com/ycedres/cobbler/internal/domain"
)

const templateBody = `# cobbler: {{.CobblerServer}}
{{range $tag, $macs := .DHCPTags}}group "{{$tag}}" {
{{range $mac, $iface := $macs}}  host {{index $iface "name"}} { hardware ethernet {{$mac}}; }
{{end}}}
{{end}}`

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	s := config.DefaultSettings()
	s.ManageDHCPv4 = true
	s.RestartDHCP = false
	s.DHCPTemplateV4 = filepath.Join(dir, "dhcp.template")
	s.DHCPConfV4 = filepath.Join(dir, "dhcpd.conf")
	s.DHCPTemplateV6 = filepath.Join(dir, "dhcp6.template")
	s.DHCPConfV6 = filepath.Join(dir, "dhcpd6.conf")
	return s
}

func newEnv(t *testing.T) (*DHCP, *domain.Registry, *config.Settings) {
	t.Helper()
	s := testSettings(t)
	reg := domain.NewRegistry(s, nil, zerolog.Nop())
	return NewDHCP(s, reg, zerolog.Nop()), reg, s
}

func addTree(t *testing.T, reg *domain.Registry) (*domain.Distro, *domain.Profile) {
	t.Helper()
	d := domain.NewDistro(reg)
	if err := d.SetName("fc42"); err != nil {
		t.Fatal(err)
	}
	if err := d.SetKernel("/boot/vmlinuz"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(d); err != nil {
		t.Fatal(err)
	}
	p := domain.NewProfile(reg)
	if err := p.SetName("web"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetDistro("fc42"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(p); err != nil {
		t.Fatal(err)
	}
	return d, p
}

func addSystem(t *testing.T, reg *domain.Registry, name string) *domain.System {
	t.Helper()
	s := domain.NewSystem(reg)
	if err := s.SetName(name); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProfile("web"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(s); err != nil {
		t.Fatal(err)
	}
	return s
}

func addIface(t *testing.T, s *domain.System, name, mac, dns string) *domain.NetworkInterface {
	t.Helper()
	ni, err := s.AddInterface(name)
	if err != nil {
		t.Fatal(err)
	}
	if mac != "" {
		if err := ni.SetMACAddress(mac); err != nil {
			t.Fatal(err)
		}
	}
	if dns != "" {
		if err := ni.SetDNSName(dns); err != nil {
			t.Fatal(err)
		}
	}
	return ni
}

func tagsFor(t *testing.T, m *DHCP, sys *domain.System, distro *domain.Distro) Tags {
	t.Helper()
	blend, err := domain.Blend(sys)
	if err != nil {
		t.Fatal(err)
	}
	tags, err := m.genSystemConfig(sys, blend, distro)
	if err != nil {
		t.Fatal(err)
	}
	return tags
}

func TestGenSystemConfig(t *testing.T) {
	t.Run("system without addressing is skipped", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		sys := addSystem(t, reg, "node1")
		tags := tagsFor(t, m, sys, d)
		if len(tags) != 0 {
			t.Errorf("tags = %v, want none", tags)
		}
	})

	t.Run("eth0 carries the bare host name", func(t *testing.T) {
		m, reg, s := newEnv(t)
		d, _ := addTree(t, reg)
		sys := addSystem(t, reg, "node1")
		addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "node1.example.com")

		tags := tagsFor(t, m, sys, d)
		iface := tags["default"]["aa:bb:cc:dd:ee:01"]
		if iface == nil {
			t.Fatalf("no entry for eth0 MAC: %v", tags)
		}
		if iface["name"] != "node1.example.com" {
			t.Errorf("name = %v, want bare host name", iface["name"])
		}
		if iface["next_server_v4"] != s.NextServerV4 {
			t.Errorf("next_server_v4 = %v, want %v", iface["next_server_v4"], s.NextServerV4)
		}
		if iface["netboot_enabled"] != true {
			t.Errorf("netboot_enabled = %v, want true", iface["netboot_enabled"])
		}
	})

	t.Run("secondary interface appends the device name", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		sys := addSystem(t, reg, "node1")
		addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "node1.example.com")
		addIface(t, sys, "eth1", "aa:bb:cc:dd:ee:02", "node1.example.com")

		tags := tagsFor(t, m, sys, d)
		if got := tags["default"]["aa:bb:cc:dd:ee:02"]["name"]; got != "node1.example.com-eth1" {
			t.Errorf("name = %v, want node1.example.com-eth1", got)
		}
	})

	t.Run("nameless interfaces get generic names", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		sys := addSystem(t, reg, "node1")
		addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "")
		addIface(t, sys, "eth1", "aa:bb:cc:dd:ee:02", "")

		tags := tagsFor(t, m, sys, d)
		names := map[any]bool{
			tags["default"]["aa:bb:cc:dd:ee:01"]["name"]: true,
			tags["default"]["aa:bb:cc:dd:ee:02"]["name"]: true,
		}
		if !names["generic1"] || !names["generic2"] {
			t.Errorf("generic names = %v", names)
		}
	})

	t.Run("bond slaves take the master addressing", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		sys := addSystem(t, reg, "node1")

		bond := addIface(t, sys, "bond0", "", "bond.example.com")
		if err := bond.SetInterfaceType("bond"); err != nil {
			t.Fatal(err)
		}
		if err := bond.SetIPAddress("10.0.0.5"); err != nil {
			t.Fatal(err)
		}
		if err := bond.SetNetmask("255.255.255.0"); err != nil {
			t.Fatal(err)
		}
		for i, name := range []string{"eth0", "eth1"} {
			ni := addIface(t, sys, name, "aa:bb:cc:dd:ee:0"+string(rune('1'+i)), "")
			if err := ni.SetInterfaceType("bond_slave"); err != nil {
				t.Fatal(err)
			}
			if err := ni.SetInterfaceMaster("bond0"); err != nil {
				t.Fatal(err)
			}
		}

		tags := tagsFor(t, m, sys, d)
		first := tags["default"]["aa:bb:cc:dd:ee:01"]
		if first == nil {
			t.Fatalf("first slave missing: %v", tags)
		}
		if first["ip_address"] != "10.0.0.5" || first["netmask"] != "255.255.255.0" {
			t.Errorf("slave addressing = %v/%v, want master values", first["ip_address"], first["netmask"])
		}
		if first["name"] != "bond.example.com" {
			t.Errorf("name = %v, want master dns name", first["name"])
		}
		if _, ok := tags["default"]["aa:bb:cc:dd:ee:02"]; ok {
			t.Error("second slave kept its MAC entry, only the first should")
		}
	})

	t.Run("slave without master is dropped", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		sys := addSystem(t, reg, "node1")
		ni := addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "x.example.com")
		if err := ni.SetInterfaceType("bond_slave"); err != nil {
			t.Fatal(err)
		}
		if err := ni.SetInterfaceMaster("bond9"); err != nil {
			t.Fatal(err)
		}
		tags := tagsFor(t, m, sys, d)
		if len(tags["default"]) != 0 {
			t.Errorf("tags = %v, want no entries", tags)
		}
	})

	t.Run("power architecture selects its loader", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		if err := d.SetArch("ppc64le"); err != nil {
			t.Fatal(err)
		}
		sys := addSystem(t, reg, "node1")
		addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "node1.example.com")

		tags := tagsFor(t, m, sys, d)
		if got := tags["default"]["aa:bb:cc:dd:ee:01"]["filename"]; got != "grub/grub.ppc64le" {
			t.Errorf("filename = %v, want grub/grub.ppc64le", got)
		}
	})

	t.Run("aarch64 selects the efi loader", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		if err := d.SetArch("aarch64"); err != nil {
			t.Fatal(err)
		}
		sys := addSystem(t, reg, "node1")
		addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "node1.example.com")

		tags := tagsFor(t, m, sys, d)
		if got := tags["default"]["aa:bb:cc:dd:ee:01"]["filename"]; got != "grub/grubaa64.efi" {
			t.Errorf("filename = %v, want grub/grubaa64.efi", got)
		}
	})

	t.Run("esxi trees carry the mboot chain", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		if err := d.SetOSVersion("esxi70"); err != nil {
			t.Fatal(err)
		}
		sys := addSystem(t, reg, "node1")
		addIface(t, sys, "eth0", "AA:BB:CC:DD:EE:01", "node1.example.com")

		tags := tagsFor(t, m, sys, d)
		got := tags["default"]["AA:BB:CC:DD:EE:01"]["filename_esxi"]
		want := []string{"esxi/system", "01-aa-bb-cc-dd-ee-01", "mboot.efi"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("filename_esxi = %v, want %v", got, want)
		}
	})

	t.Run("static interface of a non-netboot system is skipped", func(t *testing.T) {
		m, reg, s := newEnv(t)
		d, _ := addTree(t, reg)
		sys := addSystem(t, reg, "node1")
		if err := sys.SetNetbootEnabled(false); err != nil {
			t.Fatal(err)
		}
		ni := addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "node1.example.com")
		if err := ni.SetStatic(true); err != nil {
			t.Fatal(err)
		}

		tags := tagsFor(t, m, sys, d)
		if len(tags["default"]) != 0 {
			t.Errorf("static non-netboot entry written: %v", tags)
		}

		s.AlwaysWriteDHCPEntries = true
		tags = tagsFor(t, m, sys, d)
		if _, ok := tags["default"]["aa:bb:cc:dd:ee:01"]; !ok {
			t.Error("always_write_dhcp_entries did not force the entry")
		}
	})

	t.Run("entries group under their dhcp tag", func(t *testing.T) {
		m, reg, _ := newEnv(t)
		d, _ := addTree(t, reg)
		sys := addSystem(t, reg, "node1")
		ni := addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "node1.example.com")
		if err := ni.SetDHCPTag("lab"); err != nil {
			t.Fatal(err)
		}

		tags := tagsFor(t, m, sys, d)
		if _, ok := tags["lab"]["aa:bb:cc:dd:ee:01"]; !ok {
			t.Errorf("entry missing from the lab tag: %v", tags)
		}
	})
}

func TestPXEConfigName(t *testing.T) {
	if got := pxeConfigName("AA:BB:CC:DD:EE:FF"); got != "01-aa-bb-cc-dd-ee-ff" {
		t.Errorf("pxeConfigName() = %q", got)
	}
}

func TestSync(t *testing.T) {
	m, reg, s := newEnv(t)
	if err := os.WriteFile(s.DHCPTemplateV4, []byte(templateBody), 0644); err != nil {
		t.Fatal(err)
	}
	addTree(t, reg)
	sys := addSystem(t, reg, "node1")
	addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "node1.example.com")

	if err := m.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	out, err := os.ReadFile(s.DHCPConfV4)
	if err != nil {
		t.Fatal(err)
	}
	conf := string(out)
	if !strings.Contains(conf, "host node1.example.com") {
		t.Errorf("rendered config missing host entry:\n%s", conf)
	}
	if !strings.Contains(conf, "hardware ethernet aa:bb:cc:dd:ee:01") {
		t.Errorf("rendered config missing MAC:\n%s", conf)
	}
	if _, err := os.Stat(s.DHCPConfV6); !os.IsNotExist(err) {
		t.Error("v6 config written while unmanaged")
	}
}

func TestSyncSingle(t *testing.T) {
	m, reg, s := newEnv(t)
	if err := os.WriteFile(s.DHCPTemplateV4, []byte(templateBody), 0644); err != nil {
		t.Fatal(err)
	}
	addTree(t, reg)
	sys := addSystem(t, reg, "node1")
	addIface(t, sys, "eth0", "aa:bb:cc:dd:ee:01", "node1.example.com")
	if err := m.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}

	sys2 := addSystem(t, reg, "node2")
	addIface(t, sys2, "eth0", "aa:bb:cc:dd:ee:02", "node2.example.com")
	if err := m.SyncSingle(context.Background(), sys2); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(s.DHCPConfV4)
	if err != nil {
		t.Fatal(err)
	}
	conf := string(out)
	for _, host := range []string{"node1.example.com", "node2.example.com"} {
		if !strings.Contains(conf, "host "+host) {
			t.Errorf("incremental sync lost host %s:\n%s", host, conf)
		}
	}
}

func TestWriteConfigsFailureIsolation(t *testing.T) {
	m, _, s := newEnv(t)
	s.ManageDHCPv6 = true
	// v4 template left missing, v6 valid
	if err := os.WriteFile(s.DHCPTemplateV6, []byte(templateBody), 0644); err != nil {
		t.Fatal(err)
	}

	data := &TemplateData{DHCPTags: Tags{"default": {}}}
	err := m.WriteConfigs(data)
	if err == nil || !strings.Contains(err.Error(), "v4") {
		t.Errorf("error = %v, want v4 failure", err)
	}
	if _, statErr := os.Stat(s.DHCPConfV6); statErr != nil {
		t.Error("v6 config not written despite v4 failure")
	}
}

func TestRestartService(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled restart is a no-op", func(t *testing.T) {
		m, _, s := newEnv(t)
		s.RestartDHCP = false
		s.DHCPRestartV4 = []string{"false"}
		if rc := m.RestartService(ctx); rc != 0 {
			t.Errorf("RestartService() = %d, want 0", rc)
		}
	})

	t.Run("failing command surfaces its status", func(t *testing.T) {
		m, _, s := newEnv(t)
		s.RestartDHCP = true
		s.DHCPRestartV4 = []string{"false"}
		if rc := m.RestartService(ctx); rc == 0 {
			t.Error("failing restart command reported success")
		}
	})

	t.Run("succeeding command reports zero", func(t *testing.T) {
		m, _, s := newEnv(t)
		s.RestartDHCP = true
		s.DHCPRestartV4 = []string{"true"}
		if rc := m.RestartService(ctx); rc != 0 {
			t.Errorf("RestartService() = %d, want 0", rc)
		}
	})
}

func TestSortedTagNames(t *testing.T) {
	data := &TemplateData{DHCPTags: Tags{"lab": {}, "default": {}, "dc2": {}}}
	got := data.SortedTagNames()
	want := []string{"dc2", "default", "lab"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedTagNames() = %v, want %v", got, want)
	}
}
