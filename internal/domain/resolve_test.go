package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolveScalar(t *testing.T) {
	t.Run("explicit value wins", func(t *testing.T) {
		reg, _ := newTestRegistry()
		mustAddDistro(t, reg, "fc42")
		p := mustAddProfile(t, reg, "web", "fc42")
		if err := p.SetServer("10.0.0.2"); err != nil {
			t.Fatal(err)
		}
		got, err := p.Server()
		if err != nil {
			t.Fatal(err)
		}
		if got != "10.0.0.2" {
			t.Errorf("Server() = %q, want %q", got, "10.0.0.2")
		}
	})

	t.Run("profile falls back to settings", func(t *testing.T) {
		reg, _ := newTestRegistry()
		mustAddDistro(t, reg, "fc42")
		p := mustAddProfile(t, reg, "web", "fc42")
		got, err := p.Server()
		if err != nil {
			t.Fatal(err)
		}
		if got != "192.168.1.1" {
			t.Errorf("Server() = %q, want settings value %q", got, "192.168.1.1")
		}
	})

	t.Run("system inherits from profile", func(t *testing.T) {
		reg, _ := newTestRegistry()
		mustAddDistro(t, reg, "fc42")
		p := mustAddProfile(t, reg, "web", "fc42")
		if err := p.SetServer("10.0.0.2"); err != nil {
			t.Fatal(err)
		}
		s := mustAddSystem(t, reg, "node1", "web")
		got, err := s.Server()
		if err != nil {
			t.Fatal(err)
		}
		if got != "10.0.0.2" {
			t.Errorf("Server() = %q, want profile value %q", got, "10.0.0.2")
		}
	})

	t.Run("subprofile inherits through parent profile", func(t *testing.T) {
		reg, _ := newTestRegistry()
		mustAddDistro(t, reg, "fc42")
		base := mustAddProfile(t, reg, "base", "fc42")
		if err := base.SetFilename("pxelinux.0"); err != nil {
			t.Fatal(err)
		}
		sub := mustAddProfile(t, reg, "sub", "fc42")
		if err := sub.SetParent("base"); err != nil {
			t.Fatal(err)
		}
		got, err := sub.Filename()
		if err != nil {
			t.Fatal(err)
		}
		if got != "pxelinux.0" {
			t.Errorf("Filename() = %q, want %q", got, "pxelinux.0")
		}
	})

	t.Run("default prefix settings lookup", func(t *testing.T) {
		reg, _ := newTestRegistry()
		mustAddDistro(t, reg, "fc42")
		p := mustAddProfile(t, reg, "web", "fc42")
		got, err := p.NameServers()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, []string{"10.0.0.53"}) {
			t.Errorf("NameServers() = %v, want default_name_servers value", got)
		}
	})

	t.Run("proxy resolves against plain proxy field", func(t *testing.T) {
		reg, _ := newTestRegistry()
		mustAddDistro(t, reg, "fc42")
		p := mustAddProfile(t, reg, "web", "fc42")
		got, err := p.Proxy()
		if err != nil {
			t.Fatal(err)
		}
		if got != "http://proxy.example.com:3128" {
			t.Errorf("Proxy() = %q, want settings proxy", got)
		}
	})

	t.Run("owners resolve against default ownership", func(t *testing.T) {
		reg, _ := newTestRegistry()
		d := mustAddDistro(t, reg, "fc42")
		got, err := d.Owners()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, []string{"admin"}) {
			t.Errorf("Owners() = %v, want [admin]", got)
		}
	})

	t.Run("unresolvable attribute reports resolution error", func(t *testing.T) {
		reg, st := newTestRegistry()
		delete(st.fields, "default_virt_bridge")
		mustAddDistro(t, reg, "fc42")
		p := mustAddProfile(t, reg, "web", "fc42")
		_, err := p.VirtBridge()
		var re *ResolutionError
		if !errors.As(err, &re) {
			t.Fatalf("VirtBridge() error = %v, want *ResolutionError", err)
		}
		if re.Attr != "virt_bridge" || re.ItemName != "web" {
			t.Errorf("resolution error = %+v, want attr virt_bridge on web", re)
		}
	})
}

func TestResolveDict(t *testing.T) {
	t.Run("settings seed the root of the chain", func(t *testing.T) {
		reg, _ := newTestRegistry()
		d := mustAddDistro(t, reg, "fc42")
		got, err := d.KernelOptions()
		if err != nil {
			t.Fatal(err)
		}
		if got["console"] != "ttyS0" {
			t.Errorf("KernelOptions() = %v, want settings console entry", got)
		}
	})

	t.Run("child entries overlay the parent", func(t *testing.T) {
		reg, _ := newTestRegistry()
		d := mustAddDistro(t, reg, "fc42")
		if err := d.SetKernelOptions("console=tty0 quiet"); err != nil {
			t.Fatal(err)
		}
		p := mustAddProfile(t, reg, "web", "fc42")
		if err := p.SetKernelOptions(map[string]any{"selinux": "0"}); err != nil {
			t.Fatal(err)
		}
		got, err := p.KernelOptions()
		if err != nil {
			t.Fatal(err)
		}
		if got["console"] != "tty0" {
			t.Errorf("console = %v, want distro override tty0", got["console"])
		}
		if _, ok := got["quiet"]; !ok {
			t.Error("quiet missing from merged options")
		}
		if got["selinux"] != "0" {
			t.Errorf("selinux = %v, want profile entry 0", got["selinux"])
		}
	})

	t.Run("delete marker removes an inherited key", func(t *testing.T) {
		reg, _ := newTestRegistry()
		mustAddDistro(t, reg, "fc42")
		mustAddProfile(t, reg, "web", "fc42")
		s := mustAddSystem(t, reg, "node1", "web")
		if err := s.SetKernelOptions(map[string]any{"console": DeleteMarker}); err != nil {
			t.Fatal(err)
		}
		got, err := s.KernelOptions()
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := got["console"]; ok {
			t.Errorf("console survived the delete marker: %v", got)
		}
	})

	t.Run("empty chain yields empty map", func(t *testing.T) {
		reg, st := newTestRegistry()
		delete(st.fields, "kernel_options_post")
		d := mustAddDistro(t, reg, "fc42")
		got, err := d.KernelOptionsPost()
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("KernelOptionsPost() = %v, want empty map", got)
		}
	})
}

func TestSettingsKey(t *testing.T) {
	cases := map[string]string{
		"proxy_url_int":  "proxy",
		"proxy_url_ext":  "proxy",
		"owners":         "default_ownership",
		"server":         "server",
		"kernel_options": "kernel_options",
	}
	for attr, want := range cases {
		if got := settingsKey(attr); got != want {
			t.Errorf("settingsKey(%q) = %q, want %q", attr, got, want)
		}
	}
}
