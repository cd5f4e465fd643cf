package answerfile

import (
	"cmp"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/keyfile"
	"github.com/hogwarts-cloud/hpcctl/internal/log"
	"github.com/hogwarts-cloud/hpcctl/pkg/utils"
	"github.com/samber/lo"
)

var ErrDuplicatedNode = fmt.Errorf("%w: node declared twice", errs.ErrValidation)

// Node is either the generic template ("node") or a concrete "node.<N>"
// group. After loading, every concrete node carries all mandatory values.
type Node struct {
	Index int `mapstructure:"-"`

	Prefix  *string `mapstructure:"prefix"`
	Padding *uint   `mapstructure:"padding"`

	Hostname       *string     `mapstructure:"hostname"`
	RootPassword   *string     `mapstructure:"node_root_password"`
	MACAddress     *string     `mapstructure:"mac_address"`
	NodeIP         *netip.Addr `mapstructure:"node_ip"`
	Sockets        *uint       `mapstructure:"sockets"`
	CoresPerSocket *uint       `mapstructure:"cores_per_socket"`
	ThreadsPerCore *uint       `mapstructure:"threads_per_core"`

	BMCAddress     *netip.Addr `mapstructure:"bmc_address"`
	BMCUsername    *string     `mapstructure:"bmc_username"`
	BMCPassword    *string     `mapstructure:"bmc_password"`
	BMCSerialPort  *uint       `mapstructure:"bmc_serialport"`
	BMCSerialSpeed *uint       `mapstructure:"bmc_serialspeed"`
}

// HasBMC reports whether any BMC attribute is set.
func (n *Node) HasBMC() bool {
	return n.BMCAddress != nil || n.BMCUsername != nil || n.BMCPassword != nil ||
		n.BMCSerialPort != nil || n.BMCSerialSpeed != nil
}

type Nodes struct {
	Generic *Node
	Nodes   []Node
}

// load reads the generic template, then every "node.<N>" group in file order.
// Groups whose suffix is not a positive integer are skipped.
func (n *Nodes) load(keyFile *keyfile.KeyFile) error {
	if keyFile.HasGroup(SectionNode) {
		var generic Node
		if err := decodeGroup(keyFile, SectionNode, &generic); err != nil {
			return err
		}
		n.Generic = &generic
	}

	seen := make(map[int]string)

	for _, group := range keyFile.PrefixedGroups(SectionNode + ".") {
		index, ok := nodeIndex(group)
		if !ok {
			log.Debug("skipping node section", "section", group)
			continue
		}

		if previous, ok := seen[index]; ok {
			return errs.Validation(group, "", fmt.Errorf("%w: same index as %s", ErrDuplicatedNode, previous))
		}
		seen[index] = group

		node := Node{Index: index}
		if err := decodeGroup(keyFile, group, &node); err != nil {
			return err
		}

		if err := n.resolve(group, &node); err != nil {
			return err
		}

		n.Nodes = append(n.Nodes, node)
	}

	return nil
}

// resolve fills the attributes node omits from the generic template and
// materializes the hostname and address of the node.
func (n *Nodes) resolve(section string, node *Node) error {
	generic := lo.FromPtr(n.Generic)

	if !carries(node.Hostname) {
		hostname, err := materializeHostname(generic, node.Index)
		if err != nil {
			return err
		}
		node.Hostname = &hostname
	}

	if node.NodeIP == nil && generic.NodeIP != nil {
		address, err := utils.IncAddr(*generic.NodeIP, uint32(node.Index-1))
		if err != nil {
			return errs.Parse(SectionNode, "node_ip", err)
		}
		node.NodeIP = &address
	}

	if !carries(node.MACAddress) {
		return errs.Validation(section, "mac_address", ErrMissingAttribute)
	}

	err := cmp.Or(
		coalesce(&node.NodeIP, generic.NodeIP, section, "node_ip"),
		coalesce(&node.RootPassword, generic.RootPassword, section, "node_root_password"),
		coalesce(&node.Sockets, generic.Sockets, section, "sockets"),
		coalesce(&node.CoresPerSocket, generic.CoresPerSocket, section, "cores_per_socket"),
		coalesce(&node.ThreadsPerCore, generic.ThreadsPerCore, section, "threads_per_core"),
	)
	if err != nil {
		return err
	}

	if !node.HasBMC() && !generic.HasBMC() {
		return nil
	}

	return cmp.Or(
		coalesce(&node.BMCAddress, generic.BMCAddress, section, "bmc_address"),
		coalesce(&node.BMCUsername, generic.BMCUsername, section, "bmc_username"),
		coalesce(&node.BMCPassword, generic.BMCPassword, section, "bmc_password"),
		coalesce(&node.BMCSerialPort, generic.BMCSerialPort, section, "bmc_serialport"),
		coalesce(&node.BMCSerialSpeed, generic.BMCSerialSpeed, section, "bmc_serialspeed"),
	)
}

// coalesce keeps the specific value when it carries one, otherwise adopts a
// copy of the generic value. It fails when neither carries a value.
func coalesce[T comparable](value **T, generic *T, section, attribute string) error {
	if carries(*value) {
		return nil
	}

	if carries(generic) {
		adopted := *generic
		*value = &adopted
		return nil
	}

	return errs.Validation(section, attribute, ErrMissingAttribute)
}

// carries reports whether value holds something: set, and not an empty string.
func carries[T comparable](value *T) bool {
	if value == nil {
		return false
	}

	text, ok := any(*value).(string)
	return !ok || text != ""
}

func materializeHostname(generic Node, index int) (string, error) {
	if !carries(generic.Prefix) {
		return "", errs.Validation(SectionNode, "prefix", ErrMissingAttribute)
	}

	if generic.Padding == nil {
		return "", errs.Validation(SectionNode, "padding", ErrMissingAttribute)
	}

	return fmt.Sprintf("%s%0*d", *generic.Prefix, int(*generic.Padding), index), nil
}

func nodeIndex(group string) (int, bool) {
	suffix := strings.TrimPrefix(group, SectionNode+".")

	index, err := strconv.ParseUint(suffix, 10, 31)
	if err != nil || index == 0 {
		return 0, false
	}

	return int(index), true
}
