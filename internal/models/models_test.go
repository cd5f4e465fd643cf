package models

import (
	"net/netip"
	"testing"

	"github.com/hogwarts-cloud/hpcctl/internal/connection"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/hoststack"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewCPU(t *testing.T) {
	testCases := []struct {
		name           string
		sockets        uint
		coresPerSocket uint
		threadsPerCore uint
		cores          uint
		threads        uint
		wantErr        bool
	}{
		{name: "dual socket", sockets: 2, coresPerSocket: 16, threadsPerCore: 2, cores: 32, threads: 64},
		{name: "single", sockets: 1, coresPerSocket: 1, threadsPerCore: 1, cores: 1, threads: 1},
		{name: "zero sockets", sockets: 0, coresPerSocket: 16, threadsPerCore: 2, wantErr: true},
		{name: "zero threads per core", sockets: 2, coresPerSocket: 16, threadsPerCore: 0, wantErr: true},
		{name: "largest counts", sockets: MaxCPUCount, coresPerSocket: 1, threadsPerCore: 1, cores: MaxCPUCount, threads: MaxCPUCount},
		{name: "sockets out of range", sockets: MaxCPUCount + 1, coresPerSocket: 1, threadsPerCore: 1, wantErr: true},
		{name: "every count out of range", sockets: MaxCPUCount * 2, coresPerSocket: MaxCPUCount * 2, threadsPerCore: MaxCPUCount * 2, wantErr: true},
	}

	for _, tc := range testCases {
		cpu, err := NewCPU(tc.sockets, tc.coresPerSocket, tc.threadsPerCore)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTopology, tc.name)
			assert.ErrorIs(t, err, errs.ErrValidation, tc.name)
			continue
		}

		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.cores, cpu.Cores, tc.name)
		assert.Equal(t, tc.threads, cpu.Threads, tc.name)
	}
}

func Test_CPUValidate(t *testing.T) {
	cpu := CPU{Sockets: 2, Cores: 30, Threads: 60, CoresPerSocket: 16, ThreadsPerCore: 2}
	assert.ErrorIs(t, cpu.Validate(), ErrInvalidTopology)

	cpu = CPU{Sockets: 2, Cores: 32, Threads: 32, CoresPerSocket: 16, ThreadsPerCore: 2}
	assert.ErrorIs(t, cpu.Validate(), ErrInvalidTopology)

	cpu = CPU{Sockets: 2, Cores: 32, Threads: 64, CoresPerSocket: 16, ThreadsPerCore: 2}
	assert.NoError(t, cpu.Validate())

	cpu = CPU{Sockets: MaxCPUCount + 1, Cores: MaxCPUCount + 1, Threads: MaxCPUCount + 1, CoresPerSocket: 1, ThreadsPerCore: 1}
	assert.ErrorIs(t, cpu.Validate(), ErrInvalidTopology)
}

func Test_ServerNames(t *testing.T) {
	var server Server

	require.NoError(t, server.SetHostname("n01"))
	assert.Equal(t, "n01", server.Hostname())

	for _, hostname := range []string{"12345", "-abc", "abc-", ""} {
		err := server.SetHostname(hostname)
		assert.ErrorIs(t, err, errs.ErrValidation, hostname)
	}
	assert.Equal(t, "n01", server.Hostname())

	require.NoError(t, server.SetFQDN("n01.cluster.example.com"))
	assert.Equal(t, "n01.cluster.example.com", server.FQDN())
	assert.ErrorIs(t, server.SetFQDN("n01..example.com"), errs.ErrValidation)
}

func Test_ServerConnection(t *testing.T) {
	cluster := NewCluster()

	id, err := cluster.Networks.Add(network.New(network.Management, network.Ethernet))
	require.NoError(t, err)

	host := &hoststack.Static{Ifaces: []string{"eth0"}}
	c, err := connection.New(cluster.Networks, id, host)
	require.NoError(t, err)

	var server Server
	server.AddConnection(c)

	found, err := server.Connection(network.Management)
	require.NoError(t, err)
	assert.Same(t, c, found)

	_, err = server.Connection(network.External)
	assert.ErrorIs(t, err, ErrConnectionNotFound)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	n, foundID, err := cluster.Network(network.Management)
	require.NoError(t, err)
	assert.Equal(t, id, foundID)
	assert.Equal(t, network.Management, n.Profile())

	_, _, err = cluster.Network(network.Application)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func Test_AddNode(t *testing.T) {
	cluster := NewCluster()
	require.NoError(t, cluster.Headnode.SetHostname("head"))

	newNode := func(hostname string) *Node {
		node := &Node{}
		require.NoError(t, node.SetHostname(hostname))
		return node
	}

	require.NoError(t, cluster.AddNode(newNode("n01")))
	require.NoError(t, cluster.AddNode(newNode("n02")))

	assert.ErrorIs(t, cluster.AddNode(newNode("n01")), ErrDuplicatedHostname)
	assert.ErrorIs(t, cluster.AddNode(newNode("head")), ErrDuplicatedHostname)
	assert.Len(t, cluster.Nodes, 2)
}

func Test_SetAdminEmail(t *testing.T) {
	cluster := NewCluster()

	require.NoError(t, cluster.SetAdminEmail("admin@example.com"))
	assert.Equal(t, "admin@example.com", cluster.AdminEmail)

	assert.ErrorIs(t, cluster.SetAdminEmail("not an email"), errs.ErrValidation)
}

func Test_ParseDistro(t *testing.T) {
	testCases := []struct {
		value    string
		expected Distro
		wantErr  bool
	}{
		{value: "rhel", expected: RHEL},
		{value: "OL", expected: OL},
		{value: "rocky", expected: Rocky},
		{value: "almalinux", expected: AlmaLinux},
		{value: "debian", wantErr: true},
	}

	for _, tc := range testCases {
		distro, err := ParseDistro(tc.value)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnknownDistro, tc.value)
			assert.ErrorIs(t, err, errs.ErrParse, tc.value)
			continue
		}

		require.NoError(t, err, tc.value)
		assert.Equal(t, tc.expected, distro, tc.value)
	}
}

func Test_OSVersion(t *testing.T) {
	var os OS

	require.NoError(t, os.SetVersion("8.10"))
	assert.Equal(t, uint(8), os.MajorVersion)
	assert.Equal(t, uint(10), os.MinorVersion)
	assert.Equal(t, "8.10", os.Version())

	for _, version := range []string{"8", "8.x", "a.1", ""} {
		assert.ErrorIs(t, os.SetVersion(version), ErrInvalidVersion, version)
	}
}

func Test_Postfix(t *testing.T) {
	testCases := []struct {
		name    string
		postfix Postfix
		address string
		err     error
	}{
		{name: "local", postfix: Postfix{Profile: Local}},
		{
			name:    "relay",
			postfix: Postfix{Profile: Relay, Server: "smtp.example.com", Port: 25},
			address: "smtp.example.com:25",
		},
		{name: "relay without port", postfix: Postfix{Profile: Relay, Server: "smtp.example.com"}, err: ErrRelayNotSet},
		{
			name:    "sasl",
			postfix: Postfix{Profile: SASL, Server: "smtp.example.com", Port: 587, Username: "u", Password: "p"},
			address: "smtp.example.com:587",
		},
		{
			name:    "sasl without password",
			postfix: Postfix{Profile: SASL, Server: "smtp.example.com", Port: 587, Username: "u"},
			err:     ErrCredentialsNotSet,
		},
	}

	for _, tc := range testCases {
		err := tc.postfix.Validate()
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.name)
			continue
		}

		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.address, tc.postfix.RelayAddress(), tc.name)
	}

	profile, err := ParsePostfixProfile("sasl")
	require.NoError(t, err)
	assert.Equal(t, SASL, profile)
	assert.Equal(t, "postfix.sasl", profile.Section())

	_, err = ParsePostfixProfile("smarthost")
	assert.ErrorIs(t, err, ErrUnknownPostfixProfile)
}

func Test_ParseOFEDKind(t *testing.T) {
	kind, err := ParseOFEDKind("mellanox")
	require.NoError(t, err)
	assert.Equal(t, Mellanox, kind)
	assert.Equal(t, "Mellanox", kind.String())

	_, err = ParseOFEDKind("doca")
	assert.ErrorIs(t, err, ErrUnknownOFEDKind)
}

func Test_BMCKind(t *testing.T) {
	bmc := BMC{Address: netip.MustParseAddr("10.0.0.1"), SerialSpeed: DefaultSerialSpeed}
	assert.Equal(t, "IPMI", bmc.Kind.String())
}
