package network

import (
	"net/netip"
	"testing"

	"github.com/google/uuid"
	"github.com/hogwarts-cloud/hpcctl/internal/cidr"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/hoststack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SetSubnetMask(t *testing.T) {
	for _, mask := range cidr.Masks() {
		network := New(Management, Ethernet)

		addr := netip.MustParseAddr(mask)
		require.NoError(t, network.SetSubnetMask(addr), mask)

		actual, ok := network.SubnetMask()
		assert.True(t, ok)
		assert.Equal(t, addr, actual)
	}

	invalid := []string{"255.255.255.1", "255.0.255.0", "10.0.0.1", "255.255.253.0", "::"}
	for _, mask := range invalid {
		network := New(Management, Ethernet)

		err := network.SetSubnetMask(netip.MustParseAddr(mask))
		assert.ErrorIs(t, err, ErrInvalidSubnetMask, mask)
		assert.ErrorIs(t, err, errs.ErrValidation, mask)

		_, ok := network.SubnetMask()
		assert.False(t, ok)
	}
}

func Test_CalculateAddress(t *testing.T) {
	testCases := []struct {
		name     string
		mask     string
		address  string
		expected string
	}{
		{name: "class c", mask: "255.255.255.0", address: "172.26.0.1", expected: "172.26.0.0"},
		{name: "slash 16", mask: "255.255.0.0", address: "172.26.255.254", expected: "172.26.0.0"},
		{name: "slash 30", mask: "255.255.255.252", address: "10.1.1.7", expected: "10.1.1.4"},
		{name: "host route", mask: "255.255.255.255", address: "10.1.1.7", expected: "10.1.1.7"},
		{name: "default route", mask: "0.0.0.0", address: "10.1.1.7", expected: "0.0.0.0"},
	}

	for _, tc := range testCases {
		network := New(External, Ethernet)
		require.NoError(t, network.SetSubnetMask(netip.MustParseAddr(tc.mask)))

		actual, err := network.CalculateAddress(netip.MustParseAddr(tc.address))
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.expected, actual.String(), tc.name)

		again, err := network.CalculateAddress(actual)
		require.NoError(t, err, tc.name)
		assert.Equal(t, actual, again, tc.name)
	}
}

func Test_CalculateAddressErrors(t *testing.T) {
	network := New(External, Ethernet)

	_, err := network.CalculateAddress(netip.MustParseAddr("10.0.0.1"))
	assert.ErrorIs(t, err, ErrSubnetMaskNotSet)

	require.NoError(t, network.SetSubnetMask(netip.MustParseAddr("255.255.255.0")))

	_, err = network.CalculateAddress(netip.MustParseAddr("fe80::1"))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func Test_Prefix(t *testing.T) {
	network := New(Service, Ethernet)

	_, err := network.Prefix()
	assert.ErrorIs(t, err, ErrSubnetMaskNotSet)

	require.NoError(t, network.SetSubnetMask(netip.MustParseAddr("255.255.240.0")))

	prefix, err := network.Prefix()
	require.NoError(t, err)
	assert.Equal(t, 20, prefix)
}

func Test_SetVLAN(t *testing.T) {
	testCases := []struct {
		vlan    int
		wantErr bool
	}{
		{vlan: 0},
		{vlan: 2000},
		{vlan: 4095},
		{vlan: 4096, wantErr: true},
		{vlan: -1, wantErr: true},
	}

	for _, tc := range testCases {
		network := New(Application, Infiniband)

		err := network.SetVLAN(tc.vlan)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrVLANOutOfRange)
			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.Equal(t, uint16(0), network.VLAN())
		} else {
			assert.NoError(t, err)
			assert.Equal(t, uint16(tc.vlan), network.VLAN())
		}
	}
}

func Test_UnspecifiedAddresses(t *testing.T) {
	network := New(External, Ethernet)

	assert.ErrorIs(t, network.SetAddress(netip.MustParseAddr("0.0.0.0")), ErrUnspecifiedAddress)
	assert.ErrorIs(t, network.SetAddress(netip.Addr{}), ErrUnspecifiedAddress)
	assert.ErrorIs(t, network.SetGateway(netip.MustParseAddr("0.0.0.0")), ErrUnspecifiedAddress)
	assert.ErrorIs(t, network.SetGateway(netip.MustParseAddr("::")), ErrUnspecifiedAddress)

	err := network.SetNameservers([]netip.Addr{
		netip.MustParseAddr("1.1.1.1"),
		netip.MustParseAddr("0.0.0.0"),
	})
	assert.ErrorIs(t, err, ErrUnspecifiedAddress)
	assert.Empty(t, network.Nameservers())

	_, ok := network.Address()
	assert.False(t, ok)
	_, ok = network.Gateway()
	assert.False(t, ok)

	require.NoError(t, network.SetAddress(netip.MustParseAddr("192.168.0.0")))
	require.NoError(t, network.SetGateway(netip.MustParseAddr("192.168.0.1")))

	gateway, ok := network.Gateway()
	assert.True(t, ok)
	assert.Equal(t, "192.168.0.1", gateway.String())
}

func Test_SetDomainName(t *testing.T) {
	network := New(Management, Ethernet)

	require.NoError(t, network.SetDomainName("cloyster.com"))
	assert.Equal(t, "cloyster.com", network.DomainName())

	err := network.SetDomainName("12345")
	assert.ErrorIs(t, err, ErrInvalidDomainName)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "cloyster.com", network.DomainName())
}

func Test_ProfileAndType(t *testing.T) {
	network := New(Application, Infiniband)
	assert.Equal(t, Application, network.Profile())
	assert.Equal(t, Infiniband, network.Type())
	assert.Equal(t, "network_application", Application.Section())
	assert.Equal(t, "network_external", External.Section())

	profile, err := ParseProfile("management")
	require.NoError(t, err)
	assert.Equal(t, Management, profile)

	_, err = ParseProfile("storage")
	assert.ErrorIs(t, err, errs.ErrParse)

	kind, err := ParseType("INFINIBAND")
	require.NoError(t, err)
	assert.Equal(t, Infiniband, kind)
}

func Test_Fetch(t *testing.T) {
	host := &hoststack.Static{
		Ifaces:         []string{"eth0"},
		Addresses:      map[string]netip.Addr{"eth0": netip.MustParseAddr("192.168.30.17")},
		Masks:          map[string]netip.Addr{"eth0": netip.MustParseAddr("255.255.255.0")},
		Gateways:       map[string]netip.Addr{"eth0": netip.MustParseAddr("192.168.30.1")},
		Domain:         "example.com",
		NameserverList: []netip.Addr{netip.MustParseAddr("1.1.1.1")},
	}

	address, err := FetchAddress(host, "eth0")
	require.NoError(t, err)
	assert.Equal(t, "192.168.30.0", address.String())

	mask, err := FetchSubnetMask(host, "eth0")
	require.NoError(t, err)
	assert.Equal(t, "255.255.255.0", mask.String())

	gateway, err := FetchGateway(host, "eth0")
	require.NoError(t, err)
	assert.Equal(t, "192.168.30.1", gateway.String())

	domain, err := FetchDomainName(host)
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)

	nameservers, err := FetchNameservers(host)
	require.NoError(t, err)
	assert.Len(t, nameservers, 1)

	_, err = FetchGateway(host, "eth1")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = FetchDomainName(&hoststack.Static{})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func Test_Registry(t *testing.T) {
	registry := NewRegistry()

	management := New(Management, Ethernet)
	external := New(External, Ethernet)

	managementID, err := registry.Add(management)
	require.NoError(t, err)
	externalID, err := registry.Add(external)
	require.NoError(t, err)

	assert.NotEqual(t, managementID, externalID)
	assert.Equal(t, []*Network{management, external}, registry.All())
	assert.Equal(t, 2, registry.Len())

	found, err := registry.Get(externalID)
	require.NoError(t, err)
	assert.Same(t, external, found)

	id, err := registry.ByProfile(Management)
	require.NoError(t, err)
	assert.Equal(t, managementID, id)

	_, err = registry.ByProfile(Service)
	assert.ErrorIs(t, err, ErrNetworkNotFound)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = registry.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNetworkNotFound)

	_, err = registry.Add(New(Management, Ethernet))
	assert.ErrorIs(t, err, ErrDuplicatedProfile)
}
