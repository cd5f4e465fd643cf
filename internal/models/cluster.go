package models

import (
	"fmt"
	"net/netip"

	"github.com/google/uuid"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/hogwarts-cloud/hpcctl/internal/validate"
	"github.com/samber/lo"
)

var ErrDuplicatedHostname = fmt.Errorf("%w: duplicated hostname", errs.ErrValidation)

type Cluster struct {
	Name       string
	Company    string
	AdminEmail string
	Timezone   string
	Timeserver string
	Locale     string
	DiskImage  string
	// OS is the image installed on the compute nodes.
	OS OS

	Networks *network.Registry
	Headnode *Headnode
	Nodes    []*Node
	Template *NodeTemplate

	MailSystem *Postfix
	OFED       *OFED
}

// NodeTemplate is the generic node group as given. Nil fields were not set.
type NodeTemplate struct {
	Prefix         *string
	Padding        *uint
	StartIP        *netip.Addr
	RootPassword   *string
	Sockets        *uint
	CoresPerSocket *uint
	ThreadsPerCore *uint
	BMCAddress     *netip.Addr
	BMCUsername    *string
	BMCPassword    *string
	BMCSerialPort  *uint
	BMCSerialSpeed *uint
}

func (c *Cluster) SetAdminEmail(email string) error {
	if err := validate.Email(email); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}

	c.AdminEmail = email
	return nil
}

// Network returns the network registered with profile and its ID.
func (c *Cluster) Network(profile network.Profile) (*network.Network, uuid.UUID, error) {
	id, err := c.Networks.ByProfile(profile)
	if err != nil {
		return nil, uuid.Nil, err
	}

	n, err := c.Networks.Get(id)
	if err != nil {
		return nil, uuid.Nil, err
	}

	return n, id, nil
}

// AddNode appends node, rejecting a hostname already used by the headnode or
// another node.
func (c *Cluster) AddNode(node *Node) error {
	hostnames := lo.Map(c.Nodes, func(n *Node, _ int) string {
		return n.Hostname()
	})
	if c.Headnode != nil {
		hostnames = append(hostnames, c.Headnode.Hostname())
	}

	if lo.Contains(hostnames, node.Hostname()) {
		return fmt.Errorf("%w: %s", ErrDuplicatedHostname, node.Hostname())
	}

	c.Nodes = append(c.Nodes, node)
	return nil
}

func NewCluster() *Cluster {
	return &Cluster{
		Networks: network.NewRegistry(),
		Headnode: &Headnode{},
	}
}
