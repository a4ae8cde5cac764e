package domain

import (
	"testing"

	"github.com/rs/zerolog"
)

// stubSettings is a minimal in-memory Settings for tests. Tests mutate
// or delete fields directly to drive the resolution fallback paths.
type stubSettings struct {
	fields map[string]any
	cache  bool
}

func newStubSettings() *stubSettings {
	return &stubSettings{
		cache: true,
		fields: map[string]any{
			"server":               "192.168.1.1",
			"http_port":            80,
			"proxy":                "http://proxy.example.com:3128",
			"enable_ipxe":          true,
			"filename":             "",
			"next_server_v4":       "192.168.1.1",
			"next_server_v6":       "",
			"boot_loaders":         []string{"grub", "pxe", "ipxe"},
			"kernel_options":       map[string]any{"console": "ttyS0"},
			"kernel_options_post":  map[string]any{},
			"autoinstall_meta":     map[string]any{},
			"mgmt_classes":         []string{},
			"mgmt_parameters":      map[string]any{"from_cobbler": 1},
			"default_ownership":    []string{"admin"},
			"default_name_servers": []string{"10.0.0.53"},
			"default_virt_type":    "kvm",
			"default_virt_bridge":  "xenbr0",
		},
	}
}

func (s *stubSettings) Field(name string) (any, bool) {
	v, ok := s.fields[name]
	return v, ok
}

func (s *stubSettings) CacheEnabled() bool { return s.cache }

func (s *stubSettings) ToDict() map[string]any { return copyMap(s.fields) }

func newTestRegistry() (*Registry, *stubSettings) {
	st := newStubSettings()
	return NewRegistry(st, nil, zerolog.Nop()), st
}

func mustAddDistro(t *testing.T, reg *Registry, name string) *Distro {
	t.Helper()
	d := NewDistro(reg)
	if err := d.SetName(name); err != nil {
		t.Fatalf("set distro name: %v", err)
	}
	if err := d.SetKernel("/boot/vmlinuz"); err != nil {
		t.Fatalf("set kernel: %v", err)
	}
	if err := d.SetInitrd("/boot/initrd.img"); err != nil {
		t.Fatalf("set initrd: %v", err)
	}
	if err := reg.Add(d); err != nil {
		t.Fatalf("add distro %q: %v", name, err)
	}
	return d
}

func mustAddProfile(t *testing.T, reg *Registry, name, distro string) *Profile {
	t.Helper()
	p := NewProfile(reg)
	if err := p.SetName(name); err != nil {
		t.Fatalf("set profile name: %v", err)
	}
	if err := p.SetDistro(distro); err != nil {
		t.Fatalf("set distro: %v", err)
	}
	if err := reg.Add(p); err != nil {
		t.Fatalf("add profile %q: %v", name, err)
	}
	return p
}

func mustAddSystem(t *testing.T, reg *Registry, name, profile string) *System {
	t.Helper()
	s := NewSystem(reg)
	if err := s.SetName(name); err != nil {
		t.Fatalf("set system name: %v", err)
	}
	if err := s.SetProfile(profile); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if err := reg.Add(s); err != nil {
		t.Fatalf("add system %q: %v", name, err)
	}
	return s
}
