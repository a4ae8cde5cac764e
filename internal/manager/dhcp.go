// Package manager keeps external services in sync with the item
// registry. The DHCP manager renders the ISC dhcpd configuration from
// the registered systems and restarts the service.
package manager

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/ycedres/cobbler/internal/config"
	"github.com/ycedres/cobbler/internal/domain"
)

// Tags groups the generated host entries: dhcp tag, then MAC address,
// then the interface descriptor handed to the template.
type Tags map[string]map[string]map[string]any

// TemplateData is the namespace the DHCP templates render against.
type TemplateData struct {
	Date          string
	CobblerServer string
	NextServerV4  string
	NextServerV6  string
	DHCPTags      Tags
}

// DHCP generates and applies the ISC dhcpd configuration.
type DHCP struct {
	settings *config.Settings
	reg      *domain.Registry
	logger   zerolog.Logger

	// cached config so single-system syncs can add to the last full
	// generation instead of regenerating everything
	data            *TemplateData
	genericEntryCnt int
}

// NewDHCP constructs a DHCP manager over the registry.
func NewDHCP(settings *config.Settings, reg *domain.Registry, logger zerolog.Logger) *DHCP {
	return &DHCP{
		settings: settings,
		reg:      reg,
		logger:   logger.With().Str("manager", "dhcp").Logger(),
	}
}

// Sync regenerates the configuration from every registered system,
// writes the managed config files, and restarts the managed services.
func (m *DHCP) Sync(ctx context.Context) error {
	m.genericEntryCnt = 0
	data, err := m.genFullConfig()
	if err != nil {
		return err
	}
	m.data = data
	if err := m.WriteConfigs(m.data); err != nil {
		return err
	}
	return m.applyRestart(ctx)
}

// SyncSingle folds one system into the cached configuration and
// rewrites the config files. Cheaper than a full Sync when a single
// system was added or edited.
func (m *DHCP) SyncSingle(ctx context.Context, system *domain.System) error {
	blend, err := domain.Blend(system)
	if err != nil {
		return fmt.Errorf("blend system %q: %w", system.Name(), err)
	}
	var distro *domain.Distro
	if profile, ok := system.LogicalParent().(*domain.Profile); ok && profile != nil {
		distro = profile.Distro()
	}

	tags, err := m.genSystemConfig(system, blend, distro)
	if err != nil {
		return err
	}

	if m.data == nil {
		m.data = &TemplateData{
			CobblerServer: fmt.Sprintf("%s:%d", m.settings.Server, m.settings.HTTPPort),
			NextServerV4:  m.settings.NextServerV4,
			NextServerV6:  m.settings.NextServerV6,
			DHCPTags:      Tags{"default": {}},
		}
	}
	m.data.Date = time.Now().UTC().Format(time.ANSIC)
	mergeTags(m.data.DHCPTags, tags)

	if err := m.WriteConfigs(m.data); err != nil {
		return err
	}
	return m.applyRestart(ctx)
}

func (m *DHCP) applyRestart(ctx context.Context) error {
	if rc := m.RestartService(ctx); rc != 0 {
		return fmt.Errorf("dhcp service restart failed with status %d", rc)
	}
	return nil
}

// genFullConfig generates entries for all systems bound to a profile.
func (m *DHCP) genFullConfig() (*TemplateData, error) {
	tags := Tags{"default": {}}
	for _, it := range m.reg.Items(domain.TypeSystem).All() {
		system, ok := it.(*domain.System)
		if !ok {
			continue
		}
		profile, ok := system.LogicalParent().(*domain.Profile)
		if !ok || profile == nil {
			continue
		}
		distro := profile.Distro()

		blend, err := domain.Blend(system)
		if err != nil {
			return nil, fmt.Errorf("blend system %q: %w", system.Name(), err)
		}
		systemTags, err := m.genSystemConfig(system, blend, distro)
		if err != nil {
			return nil, err
		}
		mergeTags(tags, systemTags)
	}

	return &TemplateData{
		Date:          time.Now().UTC().Format(time.ANSIC),
		CobblerServer: fmt.Sprintf("%s:%d", m.settings.Server, m.settings.HTTPPort),
		NextServerV4:  m.settings.NextServerV4,
		NextServerV6:  m.settings.NextServerV6,
		DHCPTags:      tags,
	}, nil
}

// genSystemConfig generates the tag entries for a single system.
func (m *DHCP) genSystemConfig(system *domain.System, blend map[string]any, distro *domain.Distro) (Tags, error) {
	tags := Tags{"default": {}}
	if !system.IsManagementSupported() {
		m.logger.Debug().Str("system", system.Name()).
			Msg("skipped, a MAC, IPv4, or IPv6 address is required")
		return Tags{}, nil
	}

	interfaces := system.Interfaces()
	processedMasters := map[string]bool{}
	ignoreMACs := map[string]bool{}

	for _, ifaceName := range system.InterfaceNames() {
		ni := interfaces[ifaceName]
		iface := ni.ToDict()

		gateway := ni.IfGateway()
		if gateway == "" {
			gateway = system.Gateway()
		}
		iface["gateway"] = gateway

		mac := ni.MACAddress()
		var host, dhcpTag string
		if ni.InterfaceType().IsSlave() {
			master := interfaces[ni.InterfaceMaster()]
			if master == nil {
				// no DHCP entry without a master interface
				continue
			}
			masterName := ni.InterfaceMaster()
			// multiple slaves share the master's addressing, only the
			// first occurrence keeps its MAC entry
			compositeKey := system.Name() + "-" + masterName
			if processedMasters[compositeKey] {
				ignoreMACs[mac] = true
			} else {
				processedMasters[compositeKey] = true
			}
			iface["netmask"] = master.Netmask()
			ip := master.IPAddress()
			if ip == "" {
				ip = findIPAddr(system, masterName, false)
			}
			iface["ip_address"] = ip
			ipv6 := master.IPv6Address()
			if ipv6 == "" {
				ipv6 = findIPAddr(system, masterName, true)
			}
			iface["ipv6_address"] = ipv6
			host = master.DNSName()
			dhcpTag = master.DHCPTag()
		} else {
			host = ni.DNSName()
			dhcpTag = ni.DHCPTag()
		}

		if distro != nil {
			distroDict, err := domain.ToDict(distro, true)
			if err != nil {
				return nil, fmt.Errorf("distro %q: %w", distro.Name(), err)
			}
			iface["distro"] = distroDict
		}

		if mac == "" {
			m.logger.Warn().Str("system", system.Name()).Str("interface", ifaceName).
				Msg("no MAC address")
			continue
		}

		switch {
		case host != "" && ifaceName == "eth0":
			iface["name"] = host
		case host != "":
			iface["name"] = host + "-" + ifaceName
		default:
			m.genericEntryCnt++
			iface["name"] = fmt.Sprintf("generic%d", m.genericEntryCnt)
		}

		for _, key := range []string{
			"next_server_v6", "next_server_v4", "filename", "netboot_enabled",
			"hostname", "owners", "enable_ipxe", "name_servers", "mgmt_parameters",
		} {
			iface[key] = blend[key]
		}

		filename, _ := iface["filename"].(string)
		if distro != nil && strings.HasPrefix(distro.OSVersion(), "esxi") {
			iface["filename_esxi"] = []string{"esxi/system", pxeConfigName(mac), "mboot.efi"}
		} else if distro != nil && filename == "" {
			switch {
			case distro.Arch().IsPPC():
				iface["filename"] = "grub/grub.ppc64le"
			case distro.Arch() == domain.ArchAarch64:
				iface["filename"] = "grub/grubaa64.efi"
			}
		}

		if !m.settings.AlwaysWriteDHCPEntries && !system.NetbootEnabled() && ni.Static() {
			continue
		}

		if dhcpTag == "" {
			if t, ok := blend["dhcp_tag"].(string); ok && t != "" {
				dhcpTag = t
			} else {
				dhcpTag = "default"
			}
		}
		if tags[dhcpTag] == nil {
			tags[dhcpTag] = map[string]map[string]any{}
		}
		tags[dhcpTag][mac] = iface
	}

	for _, macs := range tags {
		for mac := range macs {
			if ignoreMACs[mac] {
				delete(macs, mac)
			}
		}
	}

	return tags, nil
}

// findIPAddr returns the address of the first sub-interface of prefix
// (prefix.0, prefix.1, ...) that carries one.
func findIPAddr(system *domain.System, prefix string, v6 bool) string {
	interfaces := system.Interfaces()
	for _, name := range system.InterfaceNames() {
		if !strings.HasPrefix(name, prefix+".") {
			continue
		}
		ni := interfaces[name]
		if v6 {
			if ni.IPv6Address() != "" {
				return ni.IPv6Address()
			}
		} else if ni.IPAddress() != "" {
			return ni.IPAddress()
		}
	}
	return ""
}

// pxeConfigName derives the per-machine PXE config filename from a MAC.
func pxeConfigName(mac string) string {
	return "01-" + strings.ReplaceAll(strings.ToLower(mac), ":", "-")
}

func mergeTags(dst, src Tags) {
	for tag, macs := range src {
		if dst[tag] == nil {
			dst[tag] = map[string]map[string]any{}
		}
		for mac, iface := range macs {
			dst[tag][mac] = iface
		}
	}
}

// WriteConfigs renders the managed config files. Each protocol version
// is attempted independently; a template failure on one does not stop
// the other.
func (m *DHCP) WriteConfigs(data *TemplateData) error {
	if data == nil {
		return fmt.Errorf("no config to write")
	}

	var failed []string
	if m.settings.ManageDHCPv4 {
		if err := m.writeConfig(data, m.settings.DHCPTemplateV4, m.settings.DHCPConfV4); err != nil {
			m.logger.Error().Err(err).Str("file", m.settings.DHCPConfV4).Msg("write dhcp v4 config")
			failed = append(failed, "v4")
		}
	}
	if m.settings.ManageDHCPv6 {
		if err := m.writeConfig(data, m.settings.DHCPTemplateV6, m.settings.DHCPConfV6); err != nil {
			m.logger.Error().Err(err).Str("file", m.settings.DHCPConfV6).Msg("write dhcp v6 config")
			failed = append(failed, "v6")
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("dhcp config write failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

func (m *DHCP) writeConfig(data *TemplateData, templateFile, settingsFile string) error {
	raw, err := os.ReadFile(templateFile)
	if err != nil {
		return fmt.Errorf("read dhcp template: %w", err)
	}

	tmpl, err := template.New(templateFile).Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse dhcp template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render dhcp template: %w", err)
	}

	m.logger.Info().Str("file", settingsFile).Msg("writing dhcp config")
	if err := os.WriteFile(settingsFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write dhcp config: %w", err)
	}
	return nil
}

// RestartService restarts the managed dhcpd services. Both versions are
// attempted even when the first fails; the exit statuses are OR'd so any
// failure surfaces.
func (m *DHCP) RestartService(ctx context.Context) int {
	if !m.settings.RestartDHCP {
		return 0
	}

	ret := 0
	if m.settings.ManageDHCPv4 {
		ret |= m.restartDHCP(ctx, m.settings.DHCPRestartV4)
	}
	if m.settings.ManageDHCPv6 {
		ret |= m.restartDHCP(ctx, m.settings.DHCPRestartV6)
	}
	return ret
}

func (m *DHCP) restartDHCP(ctx context.Context, command []string) int {
	if len(command) == 0 {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return 0
	}

	m.logger.Error().Err(err).Str("command", strings.Join(command, " ")).
		Str("output", string(bytes.TrimSpace(out))).Msg("dhcp service restart failed")
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

// SortedTagNames returns the tag names in stable order, for templates
// that want deterministic output.
func (d *TemplateData) SortedTagNames() []string {
	names := make([]string, 0, len(d.DHCPTags))
	for tag := range d.DHCPTags {
		names = append(names, tag)
	}
	sort.Strings(names)
	return names
}
