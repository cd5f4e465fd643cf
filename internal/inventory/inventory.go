// Package inventory renders a resolved cluster as YAML for review before
// installation. Secrets never leave the process in clear text.
package inventory

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/hogwarts-cloud/hpcctl/internal/connection"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const Redacted = "********"

type Inventory struct {
	Cluster  Cluster   `yaml:"cluster"`
	Networks []Network `yaml:"networks"`
	Headnode Server    `yaml:"headnode"`
	Nodes    []Server  `yaml:"nodes,omitempty"`
	Postfix  *Postfix  `yaml:"postfix,omitempty"`
	OFED     *OFED     `yaml:"ofed,omitempty"`
}

type Cluster struct {
	Name       string `yaml:"name"`
	Company    string `yaml:"company"`
	AdminEmail string `yaml:"admin_email"`
	Timezone   string `yaml:"timezone"`
	Timeserver string `yaml:"timeserver"`
	Locale     string `yaml:"locale"`
	DiskImage  string `yaml:"disk_image"`
	OS         string `yaml:"os"`
	Kernel     string `yaml:"kernel,omitempty"`
}

type Network struct {
	Profile     string   `yaml:"profile"`
	Type        string   `yaml:"type"`
	CIDR        string   `yaml:"cidr"`
	Gateway     string   `yaml:"gateway,omitempty"`
	DomainName  string   `yaml:"domain_name,omitempty"`
	Nameservers []string `yaml:"nameservers,omitempty"`
}

type Interface struct {
	Network string `yaml:"network"`
	Name    string `yaml:"name,omitempty"`
	Address string `yaml:"address,omitempty"`
	MAC     string `yaml:"mac,omitempty"`
	MTU     uint16 `yaml:"mtu"`
}

type BMC struct {
	Address     string `yaml:"address"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	SerialPort  uint   `yaml:"serial_port"`
	SerialSpeed uint   `yaml:"serial_speed"`
}

type Server struct {
	Hostname     string      `yaml:"hostname"`
	FQDN         string      `yaml:"fqdn"`
	RootPassword string      `yaml:"root_password,omitempty"`
	CPU          string      `yaml:"cpu,omitempty"`
	Interfaces   []Interface `yaml:"interfaces"`
	BMC          *BMC        `yaml:"bmc,omitempty"`
}

type Postfix struct {
	Profile     string   `yaml:"profile"`
	Destination []string `yaml:"destination,omitempty"`
	Relay       string   `yaml:"relay,omitempty"`
	Username    string   `yaml:"username,omitempty"`
	Password    string   `yaml:"password,omitempty"`
}

type OFED struct {
	Kind    string `yaml:"kind"`
	Version string `yaml:"version"`
}

func redact(secret string) string {
	return lo.Ternary(secret == "", "", Redacted)
}

// New builds the inventory view of cluster.
func New(cluster *models.Cluster) *Inventory {
	inv := &Inventory{
		Cluster: Cluster{
			Name:       cluster.Name,
			Company:    cluster.Company,
			AdminEmail: cluster.AdminEmail,
			Timezone:   cluster.Timezone,
			Timeserver: cluster.Timeserver,
			Locale:     cluster.Locale,
			DiskImage:  cluster.DiskImage,
			OS:         fmt.Sprintf("%s %s", cluster.OS.Distro, cluster.OS.Version()),
			Kernel:     cluster.OS.Kernel,
		},
		Networks: lo.Map(cluster.Networks.All(), func(n *network.Network, _ int) Network {
			return newNetwork(n)
		}),
		Headnode: newServer(&cluster.Headnode.Server),
	}

	for _, node := range cluster.Nodes {
		server := newServer(&node.Server)
		server.RootPassword = redact(node.RootPassword)
		server.CPU = fmt.Sprintf("%dx%dx%d", node.CPU.Sockets, node.CPU.CoresPerSocket, node.CPU.ThreadsPerCore)
		inv.Nodes = append(inv.Nodes, server)
	}

	if postfix := cluster.MailSystem; postfix != nil {
		inv.Postfix = &Postfix{
			Profile:     postfix.Profile.String(),
			Destination: postfix.Destination,
			Username:    postfix.Username,
			Password:    redact(postfix.Password),
		}

		if postfix.Profile != models.Local {
			inv.Postfix.Relay = postfix.RelayAddress()
		}
	}

	if cluster.OFED != nil {
		inv.OFED = &OFED{
			Kind:    cluster.OFED.Kind.String(),
			Version: cluster.OFED.Version,
		}
	}

	return inv
}

func newNetwork(n *network.Network) Network {
	view := Network{
		Profile:    n.Profile().String(),
		Type:       n.Type().String(),
		DomainName: n.DomainName(),
		Nameservers: lo.Map(n.Nameservers(), func(addr netip.Addr, _ int) string {
			return addr.String()
		}),
	}

	address, _ := n.Address()
	if prefix, err := n.Prefix(); err == nil {
		view.CIDR = fmt.Sprintf("%s/%d", address, prefix)
	}

	if gateway, ok := n.Gateway(); ok {
		view.Gateway = gateway.String()
	}

	return view
}

func newServer(server *models.Server) Server {
	view := Server{
		Hostname: server.Hostname(),
		FQDN:     server.FQDN(),
		Interfaces: lo.Map(server.Connections, func(c *connection.Connection, _ int) Interface {
			iface, _ := c.Interface()
			mac, _ := c.MAC()

			view := Interface{
				Network: c.Network().Profile().String(),
				Name:    iface,
				MAC:     mac,
				MTU:     c.MTU(),
			}

			if address, ok := c.Address(); ok {
				view.Address = address.String()
			}

			return view
		}),
	}

	if bmc := server.BMC; bmc != nil {
		view.BMC = &BMC{
			Address:     bmc.Address.String(),
			Username:    bmc.Username,
			Password:    redact(bmc.Password),
			SerialPort:  bmc.SerialPort,
			SerialSpeed: bmc.SerialSpeed,
		}
	}

	return view
}

// Render returns the YAML document of cluster.
func Render(cluster *models.Cluster) ([]byte, error) {
	data, err := yaml.Marshal(New(cluster))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inventory: %w", err)
	}

	return data, nil
}

// Write renders cluster into the file at path.
func Write(cluster *models.Cluster, path string) error {
	data, err := Render(cluster)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
