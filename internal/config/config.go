// Package config loads and persists the application settings.
//
// The settings file is the root of the attribute inheritance chain:
// any item attribute left in the inherit state all the way up its
// parent chain resolves to a settings field. Unknown keys are kept in
// an overflow map so site-local settings survive a load/save round
// trip and stay reachable through Field.
//
// Settings file locations (priority order):
//  1. $COBBLER_SETTINGS
//  2. ./cobbler.yaml
//  3. /etc/cobbler/settings.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the parsed settings file.
type Settings struct {
	Version int `yaml:"version"`

	// Identity of this provisioning server.
	Server   string `yaml:"server"`
	HTTPPort int    `yaml:"http_port"`

	// Item attribute defaults, reached through inheritance fallback.
	Proxy              string         `yaml:"proxy"`
	EnableIPXE         bool           `yaml:"enable_ipxe"`
	Filename           string         `yaml:"filename"`
	BootLoaders        []string       `yaml:"boot_loaders"`
	MgmtClasses        []string       `yaml:"mgmt_classes"`
	MgmtParameters     map[string]any `yaml:"mgmt_parameters"`
	KernelOptions      map[string]any `yaml:"kernel_options"`
	KernelOptionsPost  map[string]any `yaml:"kernel_options_post"`
	AutoinstallMeta    map[string]any `yaml:"autoinstall_meta"`
	DefaultOwnership   []string       `yaml:"default_ownership"`
	DefaultNameServers []string       `yaml:"default_name_servers"`
	DefaultVirtType    string         `yaml:"default_virt_type"`
	DefaultVirtBridge  string         `yaml:"default_virt_bridge"`

	// Caching of item dictionaries.
	Cache bool `yaml:"cache_enabled"`

	// Item storage.
	DatabasePath string `yaml:"database_path"`

	// DHCP management.
	NextServerV4           string   `yaml:"next_server_v4"`
	NextServerV6           string   `yaml:"next_server_v6"`
	ManageDHCPv4           bool     `yaml:"manage_dhcp_v4"`
	ManageDHCPv6           bool     `yaml:"manage_dhcp_v6"`
	RestartDHCP            bool     `yaml:"restart_dhcp"`
	AlwaysWriteDHCPEntries bool     `yaml:"always_write_dhcp_entries"`
	DHCPTemplateV4         string   `yaml:"dhcp_template_v4"`
	DHCPTemplateV6         string   `yaml:"dhcp_template_v6"`
	DHCPConfV4             string   `yaml:"dhcp_conf_v4"`
	DHCPConfV6             string   `yaml:"dhcp_conf_v6"`
	DHCPRestartV4          []string `yaml:"dhcp_restart_v4"`
	DHCPRestartV6          []string `yaml:"dhcp_restart_v6"`

	LogLevel string `yaml:"log_level"`

	// Extra keeps site-local keys the struct does not model.
	Extra map[string]any `yaml:",inline"`
}

// Load finds and loads the settings file, or returns defaults if none
// is found.
func Load() (*Settings, string, error) {
	path := FindSettingsPath()
	if path == "" {
		return DefaultSettings(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads settings from a specific path.
func LoadFromPath(path string) (*Settings, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read settings: %w", err)
	}

	// Booleans that default to on are seeded before unmarshal so an
	// absent key keeps the default while an explicit false wins.
	s := Settings{Cache: true, RestartDHCP: true}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, path, fmt.Errorf("parse settings: %w", err)
	}

	s.applyDefaults()

	return &s, path, nil
}

// Save writes the settings to the specified path.
func (s *Settings) Save(path string) error {
	if err := EnsureSettingsDir(path); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultSettings returns sensible defaults for a new installation.
func DefaultSettings() *Settings {
	s := &Settings{Cache: true, RestartDHCP: true}
	s.applyDefaults()
	return s
}

// applyDefaults fills in missing values with defaults.
func (s *Settings) applyDefaults() {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Server == "" {
		s.Server = "127.0.0.1"
	}
	if s.HTTPPort == 0 {
		s.HTTPPort = 80
	}
	if s.BootLoaders == nil {
		s.BootLoaders = []string{"grub", "pxe", "ipxe"}
	}
	if s.MgmtClasses == nil {
		s.MgmtClasses = []string{}
	}
	if s.MgmtParameters == nil {
		s.MgmtParameters = map[string]any{"from_cobbler": 1}
	}
	if s.KernelOptions == nil {
		s.KernelOptions = map[string]any{}
	}
	if s.KernelOptionsPost == nil {
		s.KernelOptionsPost = map[string]any{}
	}
	if s.AutoinstallMeta == nil {
		s.AutoinstallMeta = map[string]any{}
	}
	if s.DefaultOwnership == nil {
		s.DefaultOwnership = []string{"admin"}
	}
	if s.DefaultNameServers == nil {
		s.DefaultNameServers = []string{}
	}
	if s.DefaultVirtType == "" {
		s.DefaultVirtType = "kvm"
	}
	if s.DefaultVirtBridge == "" {
		s.DefaultVirtBridge = "xenbr0"
	}
	if s.DatabasePath == "" {
		s.DatabasePath = "./cobbler.db"
	}
	if s.NextServerV4 == "" {
		s.NextServerV4 = s.Server
	}
	if s.DHCPTemplateV4 == "" {
		s.DHCPTemplateV4 = "/etc/cobbler/dhcp.template"
	}
	if s.DHCPTemplateV6 == "" {
		s.DHCPTemplateV6 = "/etc/cobbler/dhcp6.template"
	}
	if s.DHCPConfV4 == "" {
		s.DHCPConfV4 = "/etc/dhcpd.conf"
	}
	if s.DHCPConfV6 == "" {
		s.DHCPConfV6 = "/etc/dhcpd6.conf"
	}
	if s.DHCPRestartV4 == nil {
		s.DHCPRestartV4 = []string{"systemctl", "restart", "dhcpd"}
	}
	if s.DHCPRestartV6 == nil {
		s.DHCPRestartV6 = []string{"systemctl", "restart", "dhcpd6"}
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

// ToDict projects the settings into a plain attribute mapping, named
// fields first and the overflow keys on top.
func (s *Settings) ToDict() map[string]any {
	out := map[string]any{
		"version":                   s.Version,
		"server":                    s.Server,
		"http_port":                 s.HTTPPort,
		"proxy":                     s.Proxy,
		"enable_ipxe":               s.EnableIPXE,
		"filename":                  s.Filename,
		"boot_loaders":              s.BootLoaders,
		"mgmt_classes":              s.MgmtClasses,
		"mgmt_parameters":           s.MgmtParameters,
		"kernel_options":            s.KernelOptions,
		"kernel_options_post":       s.KernelOptionsPost,
		"autoinstall_meta":          s.AutoinstallMeta,
		"default_ownership":         s.DefaultOwnership,
		"default_name_servers":      s.DefaultNameServers,
		"default_virt_type":         s.DefaultVirtType,
		"default_virt_bridge":       s.DefaultVirtBridge,
		"cache_enabled":             s.Cache,
		"database_path":             s.DatabasePath,
		"next_server_v4":            s.NextServerV4,
		"next_server_v6":            s.NextServerV6,
		"manage_dhcp_v4":            s.ManageDHCPv4,
		"manage_dhcp_v6":            s.ManageDHCPv6,
		"restart_dhcp":              s.RestartDHCP,
		"always_write_dhcp_entries": s.AlwaysWriteDHCPEntries,
		"dhcp_template_v4":          s.DHCPTemplateV4,
		"dhcp_template_v6":          s.DHCPTemplateV6,
		"dhcp_conf_v4":              s.DHCPConfV4,
		"dhcp_conf_v6":              s.DHCPConfV6,
		"log_level":                 s.LogLevel,
	}
	for k, v := range s.Extra {
		out[k] = v
	}
	return out
}

// Field looks up a settings value by its attribute name. The second
// return is false when neither a named field nor an overflow key
// matches.
func (s *Settings) Field(name string) (any, bool) {
	v, ok := s.ToDict()[name]
	return v, ok
}

// CacheEnabled reports whether item dictionaries may be cached.
func (s *Settings) CacheEnabled() bool { return s.Cache }
