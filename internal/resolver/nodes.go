package resolver

import (
	"fmt"
	"net/netip"

	"github.com/hogwarts-cloud/hpcctl/internal/answerfile"
	"github.com/hogwarts-cloud/hpcctl/internal/connection"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/log"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/hogwarts-cloud/hpcctl/pkg/utils"
)

var (
	ErrAddressOutsideNetwork = fmt.Errorf("%w: address outside of the management network", errs.ErrValidation)
	ErrReservedAddress       = fmt.Errorf("%w: network or broadcast address", errs.ErrValidation)
	ErrAddressInUse          = fmt.Errorf("%w: address already in use", errs.ErrValidation)
	ErrMACInUse              = fmt.Errorf("%w: mac address already in use", errs.ErrValidation)
)

func (r *Resolver) fillNodes(cluster *models.Cluster, a *answerfile.AnswerFile) error {
	if generic := a.Nodes.Generic; generic != nil {
		cluster.Template = &models.NodeTemplate{
			Prefix:         generic.Prefix,
			Padding:        generic.Padding,
			StartIP:        generic.NodeIP,
			RootPassword:   generic.RootPassword,
			Sockets:        generic.Sockets,
			CoresPerSocket: generic.CoresPerSocket,
			ThreadsPerCore: generic.ThreadsPerCore,
			BMCAddress:     generic.BMCAddress,
			BMCUsername:    generic.BMCUsername,
			BMCPassword:    generic.BMCPassword,
			BMCSerialPort:  generic.BMCSerialPort,
			BMCSerialSpeed: generic.BMCSerialSpeed,
		}
	}

	if len(a.Nodes.Nodes) == 0 {
		return nil
	}

	management, managementID, err := cluster.Network(network.Management)
	if err != nil {
		return err
	}

	addresses := make(map[netip.Addr]string)
	macs := make(map[string]string)

	for _, c := range cluster.Headnode.Connections {
		if address, ok := c.Address(); ok {
			addresses[address] = cluster.Headnode.Hostname()
		}
		if mac, ok := c.MAC(); ok {
			macs[mac] = cluster.Headnode.Hostname()
		}
	}

	for _, values := range a.Nodes.Nodes {
		section := fmt.Sprintf("%s.%d", answerfile.SectionNode, values.Index)

		node, err := r.buildNode(cluster, section, values)
		if err != nil {
			return err
		}

		c, err := connection.New(cluster.Networks, managementID, r.host)
		if err != nil {
			return errs.At(section, "", err)
		}

		if err := c.SetMAC(*values.MACAddress); err != nil {
			return errs.At(section, "mac_address", err)
		}

		mac, _ := c.MAC()
		if owner, ok := macs[mac]; ok {
			return errs.Validation(section, "mac_address", fmt.Errorf("%w: %s by %s", ErrMACInUse, mac, owner))
		}

		address := *values.NodeIP
		if err := checkNodeAddress(management, address); err != nil {
			return errs.At(section, "node_ip", err)
		}

		if owner, ok := addresses[address]; ok {
			return errs.Validation(section, "node_ip", fmt.Errorf("%w: %s by %s", ErrAddressInUse, address, owner))
		}

		if err := c.SetAddress(address); err != nil {
			return errs.At(section, "node_ip", err)
		}

		node.AddConnection(c)

		if err := node.SetFQDN(node.Hostname() + "." + management.DomainName()); err != nil {
			return errs.At(section, "hostname", err)
		}

		if err := cluster.AddNode(node); err != nil {
			return errs.At(section, "hostname", err)
		}

		addresses[address] = node.Hostname()
		macs[mac] = node.Hostname()

		log.Debug("node resolved", "section", section, "hostname", node.Hostname(), "address", address)
	}

	return nil
}

// buildNode creates the node of an already coalesced "node.<N>" group.
func (r *Resolver) buildNode(cluster *models.Cluster, section string, values answerfile.Node) (*models.Node, error) {
	node := &models.Node{
		Index:        values.Index,
		RootPassword: *values.RootPassword,
	}

	if err := node.SetHostname(*values.Hostname); err != nil {
		return nil, errs.At(section, "hostname", err)
	}

	cpu, err := models.NewCPU(*values.Sockets, *values.CoresPerSocket, *values.ThreadsPerCore)
	if err != nil {
		return nil, errs.At(section, "sockets", err)
	}

	node.CPU = cpu
	node.OS = cluster.OS

	if values.HasBMC() {
		node.BMC = &models.BMC{
			Address:     *values.BMCAddress,
			Username:    *values.BMCUsername,
			Password:    *values.BMCPassword,
			SerialPort:  *values.BMCSerialPort,
			SerialSpeed: *values.BMCSerialSpeed,
			Kind:        models.IPMI,
		}
	}

	return node, nil
}

// checkNodeAddress accepts host addresses of the management network only.
func checkNodeAddress(management *network.Network, address netip.Addr) error {
	networkAddress, err := management.CalculateAddress(address)
	if err != nil {
		return err
	}

	if expected, _ := management.Address(); networkAddress != expected {
		return fmt.Errorf("%w: %s", ErrAddressOutsideNetwork, address)
	}

	mask, _ := management.SubnetMask()
	broadcast, err := broadcastAddress(networkAddress, mask)
	if err != nil {
		return err
	}

	if address == networkAddress || address == broadcast {
		return fmt.Errorf("%w: %s", ErrReservedAddress, address)
	}

	return nil
}

func broadcastAddress(networkAddress, mask netip.Addr) (netip.Addr, error) {
	value, err := utils.AddrToUint32(networkAddress)
	if err != nil {
		return netip.Addr{}, err
	}

	bits, err := utils.AddrToUint32(mask)
	if err != nil {
		return netip.Addr{}, err
	}

	return utils.Uint32ToAddr(value | ^bits), nil
}
