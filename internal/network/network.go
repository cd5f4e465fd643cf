package network

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/hogwarts-cloud/hpcctl/internal/cidr"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/hoststack"
	"github.com/hogwarts-cloud/hpcctl/internal/validate"
	"github.com/hogwarts-cloud/hpcctl/pkg/utils"
)

const MaxVLAN = 4095

var (
	ErrUnspecifiedAddress = fmt.Errorf("%w: unspecified address is not allowed", errs.ErrValidation)
	ErrInvalidSubnetMask  = fmt.Errorf("%w: invalid subnet mask", errs.ErrValidation)
	ErrSubnetMaskNotSet   = fmt.Errorf("%w: subnet mask is not set", errs.ErrValidation)
	ErrVLANOutOfRange     = fmt.Errorf("%w: vlan must be between 0 and 4095", errs.ErrValidation)
	ErrInvalidDomainName  = fmt.Errorf("%w: invalid domain name", errs.ErrValidation)
	ErrUnknownProfile     = fmt.Errorf("%w: unknown network profile", errs.ErrParse)
	ErrUnknownType        = fmt.Errorf("%w: unknown network type", errs.ErrParse)
	ErrNetworkNotFound    = fmt.Errorf("%w: network", errs.ErrNotFound)
)

type Profile int

const (
	External Profile = iota
	Management
	Service
	Application
)

func (p Profile) String() string {
	switch p {
	case External:
		return "External"
	case Management:
		return "Management"
	case Service:
		return "Service"
	case Application:
		return "Application"
	}
	return ""
}

// Section is the answer-file group holding the profile's settings.
func (p Profile) Section() string {
	return "network_" + strings.ToLower(p.String())
}

func ParseProfile(value string) (Profile, error) {
	for _, profile := range []Profile{External, Management, Service, Application} {
		if strings.EqualFold(profile.String(), value) {
			return profile, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, value)
}

type Type int

const (
	Ethernet Type = iota
	Infiniband
)

func (t Type) String() string {
	switch t {
	case Ethernet:
		return "Ethernet"
	case Infiniband:
		return "Infiniband"
	}
	return ""
}

func ParseType(value string) (Type, error) {
	for _, kind := range []Type{Ethernet, Infiniband} {
		if strings.EqualFold(kind.String(), value) {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownType, value)
}

// Network is one logical network segment. Profile and type are fixed at
// construction; every setter validates its input and leaves the network
// untouched on error. Unset addresses are the zero netip.Addr.
type Network struct {
	profile     Profile
	kind        Type
	address     netip.Addr
	subnetMask  netip.Addr
	gateway     netip.Addr
	vlan        uint16
	domainName  string
	nameservers []netip.Addr
}

func (n *Network) Profile() Profile {
	return n.profile
}

func (n *Network) Type() Type {
	return n.kind
}

func (n *Network) Address() (netip.Addr, bool) {
	return n.address, n.address.IsValid()
}

func (n *Network) SetAddress(address netip.Addr) error {
	if err := checkSpecified(address); err != nil {
		return fmt.Errorf("failed to set network address: %w", err)
	}

	n.address = address
	return nil
}

func (n *Network) SubnetMask() (netip.Addr, bool) {
	return n.subnetMask, n.subnetMask.IsValid()
}

func (n *Network) SetSubnetMask(mask netip.Addr) error {
	if !cidr.Valid(mask) {
		return fmt.Errorf("%w: %s", ErrInvalidSubnetMask, mask)
	}

	n.subnetMask = mask
	return nil
}

// Prefix returns the CIDR prefix length of the subnet mask.
func (n *Network) Prefix() (int, error) {
	if !n.subnetMask.IsValid() {
		return 0, ErrSubnetMaskNotSet
	}

	prefix, _ := cidr.Prefix(n.subnetMask)
	return prefix, nil
}

// CalculateAddress returns the network address connectionAddress belongs to
// under the subnet mask.
func (n *Network) CalculateAddress(connectionAddress netip.Addr) (netip.Addr, error) {
	if !n.subnetMask.IsValid() {
		return netip.Addr{}, ErrSubnetMaskNotSet
	}

	address, err := utils.MaskAddr(connectionAddress, n.subnetMask)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: failed to calculate network address: %w", errs.ErrValidation, err)
	}

	return address, nil
}

func (n *Network) Gateway() (netip.Addr, bool) {
	return n.gateway, n.gateway.IsValid()
}

func (n *Network) SetGateway(gateway netip.Addr) error {
	if err := checkSpecified(gateway); err != nil {
		return fmt.Errorf("failed to set gateway: %w", err)
	}

	n.gateway = gateway
	return nil
}

func (n *Network) VLAN() uint16 {
	return n.vlan
}

func (n *Network) SetVLAN(vlan int) error {
	if vlan < 0 || vlan > MaxVLAN {
		return fmt.Errorf("%w: %d", ErrVLANOutOfRange, vlan)
	}

	n.vlan = uint16(vlan)
	return nil
}

func (n *Network) DomainName() string {
	return n.domainName
}

func (n *Network) SetDomainName(domainName string) error {
	ascii, err := validate.DomainName(domainName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDomainName, err)
	}

	n.domainName = ascii
	return nil
}

func (n *Network) Nameservers() []netip.Addr {
	return slices.Clone(n.nameservers)
}

func (n *Network) SetNameservers(nameservers []netip.Addr) error {
	for _, nameserver := range nameservers {
		if err := checkSpecified(nameserver); err != nil {
			return fmt.Errorf("failed to set nameserver: %w", err)
		}
	}

	n.nameservers = slices.Clone(nameservers)
	return nil
}

func FetchAddress(host hoststack.Stack, iface string) (netip.Addr, error) {
	address, err := host.InterfaceAddress(iface)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to fetch address of %s: %w: %w", iface, errs.ErrNotFound, err)
	}

	mask, err := host.InterfaceMask(iface)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to fetch subnet mask of %s: %w: %w", iface, errs.ErrNotFound, err)
	}

	network, err := utils.MaskAddr(address, mask)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to fetch address of %s: %w: %w", iface, errs.ErrNotFound, err)
	}

	return network, nil
}

func FetchSubnetMask(host hoststack.Stack, iface string) (netip.Addr, error) {
	mask, err := host.InterfaceMask(iface)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to fetch subnet mask of %s: %w: %w", iface, errs.ErrNotFound, err)
	}

	return mask, nil
}

func FetchGateway(host hoststack.Stack, iface string) (netip.Addr, error) {
	gateway, err := host.Gateway(iface)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to fetch gateway of %s: %w: %w", iface, errs.ErrNotFound, err)
	}

	return gateway, nil
}

func FetchDomainName(host hoststack.Stack) (string, error) {
	domainName, err := host.DomainName()
	if err != nil {
		return "", fmt.Errorf("failed to fetch domain name: %w: %w", errs.ErrNotFound, err)
	}

	return domainName, nil
}

func FetchNameservers(host hoststack.Stack) ([]netip.Addr, error) {
	nameservers, err := host.Nameservers()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nameservers: %w: %w", errs.ErrNotFound, err)
	}

	return nameservers, nil
}

func New(profile Profile, kind Type) *Network {
	return &Network{
		profile: profile,
		kind:    kind,
	}
}

func checkSpecified(address netip.Addr) error {
	if !address.IsValid() || address.IsUnspecified() {
		return ErrUnspecifiedAddress
	}

	return nil
}
