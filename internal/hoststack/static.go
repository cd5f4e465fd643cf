package hoststack

import (
	"fmt"
	"net/netip"
	"slices"
)

// Static answers from fixed values. It stands in for the live stack when the
// host must not be queried.
type Static struct {
	Ifaces         []string
	Addresses      map[string]netip.Addr
	Masks          map[string]netip.Addr
	Gateways       map[string]netip.Addr
	Domain         string
	NameserverList []netip.Addr
}

func (s *Static) Interfaces() ([]string, error) {
	return slices.Clone(s.Ifaces), nil
}

func (s *Static) InterfaceAddress(iface string) (netip.Addr, error) {
	addr, ok := s.Addresses[iface]
	if !ok {
		return netip.Addr{}, fmt.Errorf("interface %s: %w", iface, ErrNoIPv4Address)
	}

	return addr, nil
}

func (s *Static) InterfaceMask(iface string) (netip.Addr, error) {
	mask, ok := s.Masks[iface]
	if !ok {
		return netip.Addr{}, fmt.Errorf("interface %s: %w", iface, ErrNoIPv4Address)
	}

	return mask, nil
}

func (s *Static) Gateway(iface string) (netip.Addr, error) {
	gateway, ok := s.Gateways[iface]
	if !ok {
		return netip.Addr{}, ErrNoGateway
	}

	return gateway, nil
}

func (s *Static) DomainName() (string, error) {
	if s.Domain == "" {
		return "", ErrNoDomainName
	}

	return s.Domain, nil
}

func (s *Static) Nameservers() ([]netip.Addr, error) {
	if len(s.NameserverList) == 0 {
		return nil, ErrNoNameservers
	}

	return slices.Clone(s.NameserverList), nil
}
