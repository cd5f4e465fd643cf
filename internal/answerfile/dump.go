package answerfile

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/hogwarts-cloud/hpcctl/internal/keyfile"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/samber/lo"
)

type entry struct {
	key   string
	value *string
}

type group struct {
	name    string
	entries []entry
}

func optional(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}

func text[T fmt.Stringer](value *T) *string {
	if value == nil {
		return nil
	}

	return lo.ToPtr((*value).String())
}

func number(value *uint) *string {
	if value == nil {
		return nil
	}

	return lo.ToPtr(strconv.FormatUint(uint64(*value), 10))
}

func addresses(values []netip.Addr) *string {
	if len(values) == 0 {
		return nil
	}

	return lo.ToPtr(strings.Join(lo.Map(values, func(addr netip.Addr, _ int) string {
		return addr.String()
	}), ", "))
}

// Write stores the answer file into keyFile using the grammar Read accepts.
func (a *AnswerFile) Write(keyFile *keyfile.KeyFile) error {
	groups := []group{
		{name: network.External.Section(), entries: a.External.entries()},
		{name: network.Management.Section(), entries: a.Management.entries()},
	}

	if a.Service != nil {
		groups = append(groups, group{name: network.Service.Section(), entries: a.Service.entries()})
	}

	if a.Application != nil {
		groups = append(groups, group{name: network.Application.Section(), entries: a.Application.entries()})
	}

	groups = append(groups,
		group{name: SectionInformation, entries: []entry{
			{key: "cluster_name", value: &a.Information.ClusterName},
			{key: "company_name", value: &a.Information.CompanyName},
			{key: "administrator_email", value: &a.Information.AdministratorEmail},
		}},
		group{name: SectionTime, entries: []entry{
			{key: "timezone", value: &a.Time.Timezone},
			{key: "timeserver", value: &a.Time.Timeserver},
			{key: "locale", value: &a.Time.Locale},
		}},
		group{name: SectionHostname, entries: []entry{
			{key: "hostname", value: &a.Hostname.Hostname},
			{key: "domain_name", value: &a.Hostname.DomainName},
		}},
		group{name: SectionSystem, entries: []entry{
			{key: "disk_image", value: &a.System.DiskImage},
			{key: "distro", value: text(&a.System.Distro)},
			{key: "version", value: &a.System.Version},
			{key: "kernel", value: optional(a.System.Kernel)},
		}},
	)

	groups = append(groups, a.Nodes.groups()...)
	groups = append(groups, a.postfixGroups()...)

	if a.OFED != nil {
		groups = append(groups, group{name: SectionOFED, entries: []entry{
			{key: "kind", value: text(&a.OFED.Kind)},
			{key: "version", value: &a.OFED.Version},
		}})
	}

	for _, g := range groups {
		for _, e := range g.entries {
			if e.value == nil {
				continue
			}

			if err := keyFile.Set(g.name, e.key, *e.value); err != nil {
				return err
			}
		}
	}

	return nil
}

// Save writes the answer file to path.
func (a *AnswerFile) Save(path string) error {
	keyFile := keyfile.New()

	if err := a.Write(keyFile); err != nil {
		return fmt.Errorf("failed to dump answer file: %w", err)
	}

	return keyFile.Save(path)
}

func (n *Network) entries() []entry {
	return []entry{
		{key: "interface", value: n.Interface},
		{key: "ip_address", value: text(n.IPAddress)},
		{key: "mac_address", value: n.MACAddress},
		{key: "subnet_mask", value: text(n.SubnetMask)},
		{key: "gateway", value: text(n.Gateway)},
		{key: "domain_name", value: n.DomainName},
		{key: "nameservers", value: addresses(n.Nameservers)},
	}
}

func (n *Node) entries() []entry {
	return []entry{
		{key: "prefix", value: n.Prefix},
		{key: "padding", value: number(n.Padding)},
		{key: "hostname", value: n.Hostname},
		{key: "node_root_password", value: n.RootPassword},
		{key: "mac_address", value: n.MACAddress},
		{key: "node_ip", value: text(n.NodeIP)},
		{key: "sockets", value: number(n.Sockets)},
		{key: "cores_per_socket", value: number(n.CoresPerSocket)},
		{key: "threads_per_core", value: number(n.ThreadsPerCore)},
		{key: "bmc_address", value: text(n.BMCAddress)},
		{key: "bmc_username", value: n.BMCUsername},
		{key: "bmc_password", value: n.BMCPassword},
		{key: "bmc_serialport", value: number(n.BMCSerialPort)},
		{key: "bmc_serialspeed", value: number(n.BMCSerialSpeed)},
	}
}

// groups keeps the "node.<N>" numbering of the loaded file.
func (n *Nodes) groups() []group {
	var groups []group

	if n.Generic != nil {
		groups = append(groups, group{name: SectionNode, entries: n.Generic.entries()})
	}

	for _, node := range n.Nodes {
		groups = append(groups, group{
			name:    fmt.Sprintf("%s.%d", SectionNode, node.Index),
			entries: node.entries(),
		})
	}

	return groups
}

func (a *AnswerFile) postfixGroups() []group {
	if a.Postfix == nil {
		return nil
	}

	groups := []group{{name: SectionPostfix, entries: []entry{
		{key: "profile", value: text(&a.Postfix.Profile)},
		{key: "destination", value: optional(strings.Join(a.Postfix.Destination, ", "))},
		{key: "smtpd_tls_cert_file", value: optional(a.Postfix.CertFile)},
		{key: "smtpd_tls_key_file", value: optional(a.Postfix.KeyFile)},
	}}}

	relay := a.Postfix.Relay
	if a.Postfix.Profile == models.Local || relay == nil {
		return groups
	}

	entries := []entry{
		{key: "server", value: &relay.Server},
		{key: "port", value: lo.ToPtr(strconv.Itoa(int(relay.Port)))},
	}

	if a.Postfix.Profile == models.SASL {
		entries = append(entries,
			entry{key: "username", value: &relay.Username},
			entry{key: "password", value: &relay.Password},
		)
	}

	return append(groups, group{name: a.Postfix.Profile.Section(), entries: entries})
}
