package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Server != "127.0.0.1" {
		t.Errorf("Server = %q", s.Server)
	}
	if !s.Cache || !s.RestartDHCP {
		t.Error("cache_enabled and restart_dhcp should default on")
	}
	if s.NextServerV4 != s.Server {
		t.Errorf("NextServerV4 = %q, want the server address", s.NextServerV4)
	}
	if len(s.BootLoaders) == 0 {
		t.Error("boot loaders default missing")
	}
	if s.DefaultVirtType != "kvm" || s.DefaultVirtBridge != "xenbr0" {
		t.Errorf("virt defaults = %q, %q", s.DefaultVirtType, s.DefaultVirtBridge)
	}
}

func TestLoadFromPath(t *testing.T) {
	t.Run("explicit values win over defaults", func(t *testing.T) {
		path := writeSettings(t, "server: 10.0.0.1\ncache_enabled: false\nlog_level: debug\n")
		s, loaded, err := LoadFromPath(path)
		if err != nil {
			t.Fatal(err)
		}
		if loaded != path {
			t.Errorf("loaded path = %q", loaded)
		}
		if s.Server != "10.0.0.1" || s.LogLevel != "debug" {
			t.Errorf("server/log = %q/%q", s.Server, s.LogLevel)
		}
		if s.Cache {
			t.Error("explicit cache_enabled: false ignored")
		}
		if s.NextServerV4 != "10.0.0.1" {
			t.Errorf("NextServerV4 = %q, want server fallback", s.NextServerV4)
		}
	})

	t.Run("absent booleans keep their on default", func(t *testing.T) {
		path := writeSettings(t, "server: 10.0.0.1\n")
		s, _, err := LoadFromPath(path)
		if err != nil {
			t.Fatal(err)
		}
		if !s.Cache || !s.RestartDHCP {
			t.Error("defaults lost for absent boolean keys")
		}
	})

	t.Run("unknown keys land in the overflow map", func(t *testing.T) {
		path := writeSettings(t, "server: 10.0.0.1\nsite_rack: b12\n")
		s, _, err := LoadFromPath(path)
		if err != nil {
			t.Fatal(err)
		}
		v, ok := s.Field("site_rack")
		if !ok || v != "b12" {
			t.Errorf("Field(site_rack) = %v, %v", v, ok)
		}
	})

	t.Run("unreadable file errors", func(t *testing.T) {
		if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestField(t *testing.T) {
	s := DefaultSettings()
	if v, ok := s.Field("server"); !ok || v != "127.0.0.1" {
		t.Errorf("Field(server) = %v, %v", v, ok)
	}
	if _, ok := s.Field("no_such_key"); ok {
		t.Error("missing key reported present")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.Server = "10.1.2.3"
	s.Extra = map[string]any{"site_rack": "b12"}
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	got, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Server != "10.1.2.3" {
		t.Errorf("Server = %q after round trip", got.Server)
	}
	if v, ok := got.Field("site_rack"); !ok || v != "b12" {
		t.Errorf("overflow key lost in round trip: %v, %v", v, ok)
	}
}

func TestFindSettingsPath(t *testing.T) {
	t.Run("env var wins", func(t *testing.T) {
		path := writeSettings(t, "server: 10.0.0.1\n")
		t.Setenv(EnvSettingsPath, path)
		if got := FindSettingsPath(); got != path {
			t.Errorf("FindSettingsPath() = %q, want %q", got, path)
		}
	})

	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv(EnvSettingsPath, "")
		t.Setenv("HOME", t.TempDir())
		xdg := t.TempDir()
		dir := filepath.Join(xdg, SettingsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		path := filepath.Join(dir, "settings.yaml")
		if err := os.WriteFile(path, []byte("server: 10.0.0.1\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		t.Setenv("XDG_CONFIG_HOME", xdg)
		if got := FindSettingsPath(); got != path {
			t.Errorf("FindSettingsPath() = %q, want %q", got, path)
		}
	})

	t.Run("home dot config", func(t *testing.T) {
		t.Setenv(EnvSettingsPath, "")
		t.Setenv("XDG_CONFIG_HOME", "")
		home := t.TempDir()
		dir := filepath.Join(home, ".config", SettingsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		path := filepath.Join(dir, "settings.yaml")
		if err := os.WriteFile(path, []byte("server: 10.0.0.1\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		t.Setenv("HOME", home)
		if got := FindSettingsPath(); got != path {
			t.Errorf("FindSettingsPath() = %q, want %q", got, path)
		}
	})
}
