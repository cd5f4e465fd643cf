package resolver

import (
	"strings"

	"github.com/hogwarts-cloud/hpcctl/internal/answerfile"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/samber/lo"
)

// Export converts cluster into answer-file sections. Values that were
// inherited or fetched during resolution are written explicitly.
func Export(cluster *models.Cluster) (*answerfile.AnswerFile, error) {
	a := &answerfile.AnswerFile{
		Information: answerfile.Information{
			ClusterName:        cluster.Name,
			CompanyName:        cluster.Company,
			AdministratorEmail: cluster.AdminEmail,
		},
		Time: answerfile.Time{
			Timezone:   cluster.Timezone,
			Timeserver: cluster.Timeserver,
			Locale:     cluster.Locale,
		},
		Hostname: answerfile.Hostname{
			Hostname:   cluster.Headnode.Hostname(),
			DomainName: strings.TrimPrefix(cluster.Headnode.FQDN(), cluster.Headnode.Hostname()+"."),
		},
		System: answerfile.System{
			DiskImage: cluster.DiskImage,
			Distro:    cluster.OS.Distro,
			Version:   cluster.OS.Version(),
			Kernel:    cluster.OS.Kernel,
		},
	}

	for _, n := range cluster.Networks.All() {
		values, err := exportNetwork(cluster, n)
		if err != nil {
			return nil, err
		}

		switch n.Profile() {
		case network.External:
			a.External = values
		case network.Management:
			a.Management = values
		case network.Service:
			a.Service = &values
		case network.Application:
			a.Application = &values
		}
	}

	if t := cluster.Template; t != nil {
		a.Nodes.Generic = &answerfile.Node{
			Prefix:         t.Prefix,
			Padding:        t.Padding,
			NodeIP:         t.StartIP,
			RootPassword:   t.RootPassword,
			Sockets:        t.Sockets,
			CoresPerSocket: t.CoresPerSocket,
			ThreadsPerCore: t.ThreadsPerCore,
			BMCAddress:     t.BMCAddress,
			BMCUsername:    t.BMCUsername,
			BMCPassword:    t.BMCPassword,
			BMCSerialPort:  t.BMCSerialPort,
			BMCSerialSpeed: t.BMCSerialSpeed,
		}
	}

	for _, node := range cluster.Nodes {
		values, err := exportNode(node)
		if err != nil {
			return nil, err
		}
		a.Nodes.Nodes = append(a.Nodes.Nodes, values)
	}

	if postfix := cluster.MailSystem; postfix != nil {
		a.Postfix = &answerfile.Postfix{
			Profile:     postfix.Profile,
			Destination: postfix.Destination,
			CertFile:    postfix.CertFile,
			KeyFile:     postfix.KeyFile,
		}

		if postfix.Profile != models.Local {
			a.Postfix.Relay = &answerfile.Relay{
				Server:   postfix.Server,
				Port:     postfix.Port,
				Username: postfix.Username,
				Password: postfix.Password,
			}
		}
	}

	if cluster.OFED != nil {
		a.OFED = &answerfile.OFED{
			Kind:    cluster.OFED.Kind,
			Version: cluster.OFED.Version,
		}
	}

	return a, nil
}

func exportNetwork(cluster *models.Cluster, n *network.Network) (answerfile.Network, error) {
	c, err := cluster.Headnode.Connection(n.Profile())
	if err != nil {
		return answerfile.Network{}, err
	}

	values := answerfile.Network{
		Nameservers: n.Nameservers(),
	}

	if iface, ok := c.Interface(); ok {
		values.Interface = &iface
	}

	if address, ok := c.Address(); ok {
		values.IPAddress = &address
	}

	if mac, ok := c.MAC(); ok {
		values.MACAddress = &mac
	}

	if mask, ok := n.SubnetMask(); ok {
		values.SubnetMask = &mask
	}

	if gateway, ok := n.Gateway(); ok {
		values.Gateway = &gateway
	}

	if domainName := n.DomainName(); domainName != "" {
		values.DomainName = &domainName
	}

	if len(values.Nameservers) == 0 {
		values.Nameservers = nil
	}

	return values, nil
}

func exportNode(node *models.Node) (answerfile.Node, error) {
	c, err := node.Connection(network.Management)
	if err != nil {
		return answerfile.Node{}, err
	}

	values := answerfile.Node{
		Index:          node.Index,
		Hostname:       lo.ToPtr(node.Hostname()),
		RootPassword:   lo.ToPtr(node.RootPassword),
		Sockets:        lo.ToPtr(node.CPU.Sockets),
		CoresPerSocket: lo.ToPtr(node.CPU.CoresPerSocket),
		ThreadsPerCore: lo.ToPtr(node.CPU.ThreadsPerCore),
	}

	if mac, ok := c.MAC(); ok {
		values.MACAddress = &mac
	}

	if address, ok := c.Address(); ok {
		values.NodeIP = &address
	}

	if bmc := node.BMC; bmc != nil {
		values.BMCAddress = lo.ToPtr(bmc.Address)
		values.BMCUsername = lo.ToPtr(bmc.Username)
		values.BMCPassword = lo.ToPtr(bmc.Password)
		values.BMCSerialPort = lo.ToPtr(bmc.SerialPort)
		values.BMCSerialSpeed = lo.ToPtr(bmc.SerialSpeed)
	}

	return values, nil
}
