package connection

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/hoststack"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/hogwarts-cloud/hpcctl/pkg/utils"
	"github.com/samber/lo"
)

const (
	DefaultMTU    = 1500
	EthernetMTU   = 1280
	InfinibandMTU = 2044

	loopback = "lo"
)

var (
	ErrLoopbackInterface   = fmt.Errorf("%w: loopback interface is not allowed", errs.ErrValidation)
	ErrInterfaceNotFound   = fmt.Errorf("%w: interface", errs.ErrNotFound)
	ErrInvalidMAC          = fmt.Errorf("%w: invalid mac address", errs.ErrParse)
	ErrMulticastMAC        = fmt.Errorf("%w: multicast mac address is not allowed", errs.ErrValidation)
	ErrLocallyAdministered = fmt.Errorf("%w: locally administered mac address is not allowed", errs.ErrValidation)
	ErrZeroMAC             = fmt.Errorf("%w: all-zero mac address is not allowed", errs.ErrValidation)
	ErrBroadcastMAC        = fmt.Errorf("%w: broadcast mac address is not allowed", errs.ErrValidation)
	ErrUnspecifiedAddress  = fmt.Errorf("%w: unspecified address is not allowed", errs.ErrValidation)
	ErrMTUTooSmall         = fmt.Errorf("%w: mtu below the minimum for the network type", errs.ErrValidation)
)

// Connection binds one interface to a network held by a Registry. The network
// is resolved by ID on every access.
type Connection struct {
	registry  *network.Registry
	networkID uuid.UUID
	host      hoststack.Stack

	iface   string
	mac     string
	address netip.Addr
	mtu     uint16
}

func (c *Connection) NetworkID() uuid.UUID {
	return c.networkID
}

func (c *Connection) Network() *network.Network {
	// The ID was checked at construction and registries never drop networks.
	n, _ := c.registry.Get(c.networkID)
	return n
}

func (c *Connection) Interface() (string, bool) {
	return c.iface, c.iface != ""
}

func (c *Connection) SetInterface(iface string) error {
	if iface == loopback {
		return ErrLoopbackInterface
	}

	interfaces, err := FetchInterfaces(c.host)
	if err != nil {
		return err
	}

	if !slices.Contains(interfaces, iface) {
		return fmt.Errorf("%w: %s", ErrInterfaceNotFound, iface)
	}

	c.iface = iface
	return nil
}

func (c *Connection) MAC() (string, bool) {
	return c.mac, c.mac != ""
}

func (c *Connection) SetMAC(mac string) error {
	normalized, err := ParseMAC(mac)
	if err != nil {
		return err
	}

	c.mac = normalized
	return nil
}

func (c *Connection) Address() (netip.Addr, bool) {
	return c.address, c.address.IsValid()
}

func (c *Connection) SetAddress(address netip.Addr) error {
	if !address.IsValid() || address.IsUnspecified() {
		return ErrUnspecifiedAddress
	}

	c.address = address
	return nil
}

// IncrementAddress advances the connection address by n.
func (c *Connection) IncrementAddress(n uint32) error {
	if !c.address.IsValid() {
		return fmt.Errorf("failed to increment address: %w", ErrUnspecifiedAddress)
	}

	address, err := utils.IncAddr(c.address, n)
	if err != nil {
		return fmt.Errorf("%w: failed to increment address: %w", errs.ErrValidation, err)
	}

	return c.SetAddress(address)
}

func (c *Connection) MTU() uint16 {
	return c.mtu
}

func (c *Connection) SetMTU(mtu uint16) error {
	floor := lo.Ternary[uint16](c.Network().Type() == network.Infiniband, InfinibandMTU, EthernetMTU)
	if mtu < floor {
		return fmt.Errorf("%w: %d < %d", ErrMTUTooSmall, mtu, floor)
	}

	c.mtu = mtu
	return nil
}

// ParseMAC accepts "00:1a:2b:3c:4d:5e", "001a.2b3c.4d5e" and "001a2b3c4d5e"
// (any case) and returns the lower-case colon form of a globally administered
// unicast address.
func ParseMAC(mac string) (string, error) {
	var digits string

	switch {
	case len(mac) == 17 && strings.Count(mac, ":") == 5:
		for i := 2; i < len(mac); i += 3 {
			if mac[i] != ':' {
				return "", fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
			}
		}
		digits = strings.ReplaceAll(mac, ":", "")
	case len(mac) == 14 && mac[4] == '.' && mac[9] == '.':
		digits = strings.ReplaceAll(mac, ".", "")
	case len(mac) == 12:
		digits = mac
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}

	octets, err := hex.DecodeString(digits)
	if err != nil || len(octets) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}

	switch {
	case lo.EveryBy(octets, func(b byte) bool { return b == 0xff }):
		return "", ErrBroadcastMAC
	case octets[0]&0x01 != 0:
		return "", ErrMulticastMAC
	case octets[0]&0x02 != 0:
		return "", ErrLocallyAdministered
	case lo.EveryBy(octets, func(b byte) bool { return b == 0 }):
		return "", ErrZeroMAC
	}

	parts := lo.Map(octets, func(b byte, _ int) string {
		return hex.EncodeToString([]byte{b})
	})

	return strings.Join(parts, ":"), nil
}

func FetchInterfaces(host hoststack.Stack) ([]string, error) {
	interfaces, err := host.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interfaces: %w: %w", errs.ErrNotFound, err)
	}

	return lo.Without(interfaces, loopback), nil
}

func FetchAddress(host hoststack.Stack, iface string) (netip.Addr, error) {
	address, err := host.InterfaceAddress(iface)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to fetch address of %s: %w: %w", iface, errs.ErrNotFound, err)
	}

	return address, nil
}

// New binds a connection to the network registered under networkID.
func New(registry *network.Registry, networkID uuid.UUID, host hoststack.Stack) (*Connection, error) {
	if !registry.Contains(networkID) {
		return nil, fmt.Errorf("failed to create connection: %w: %s", network.ErrNetworkNotFound, networkID)
	}

	return &Connection{
		registry:  registry,
		networkID: networkID,
		host:      host,
		mtu:       DefaultMTU,
	}, nil
}
