// Package hoststack answers read-only questions about the live host network
// stack. Its answers are only used as defaults when the answer file omits a
// value, so every lookup fails fast instead of retrying.
package hoststack

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/miekg/dns"
	"github.com/samber/lo"
)

const (
	DefaultRouteTable = "/proc/net/route"
	DefaultResolvConf = "/etc/resolv.conf"
)

var (
	ErrNoIPv4Address = errors.New("interface has no ipv4 address")
	ErrNoGateway     = errors.New("no default gateway for interface")
	ErrNoDomainName  = errors.New("no domain name configured")
	ErrNoNameservers = errors.New("no nameservers configured")
)

type Stack interface {
	Interfaces() ([]string, error)
	InterfaceAddress(iface string) (netip.Addr, error)
	InterfaceMask(iface string) (netip.Addr, error)
	Gateway(iface string) (netip.Addr, error)
	DomainName() (string, error)
	Nameservers() ([]netip.Addr, error)
}

type Config struct {
	RouteTable string
	ResolvConf string
}

type Live struct {
	routeTable string
	resolvConf string
}

func (l *Live) Interfaces() ([]string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	return lo.Map(interfaces, func(iface net.Interface, _ int) string {
		return iface.Name
	}), nil
}

func (l *Live) InterfaceAddress(iface string) (netip.Addr, error) {
	ipnet, err := interfaceIPv4(iface)
	if err != nil {
		return netip.Addr{}, err
	}

	addr, _ := netip.AddrFromSlice(ipnet.IP.To4())
	return addr, nil
}

func (l *Live) InterfaceMask(iface string) (netip.Addr, error) {
	ipnet, err := interfaceIPv4(iface)
	if err != nil {
		return netip.Addr{}, err
	}

	mask, _ := netip.AddrFromSlice(net.IP(ipnet.Mask).To4())
	return mask, nil
}

func (l *Live) Gateway(iface string) (netip.Addr, error) {
	file, err := os.Open(l.routeTable)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to open route table: %w", err)
	}
	defer func() { _ = file.Close() }()

	return parseDefaultGateway(bufio.NewScanner(file), iface)
}

func (l *Live) DomainName() (string, error) {
	config, err := dns.ClientConfigFromFile(l.resolvConf)
	if err != nil {
		return "", fmt.Errorf("failed to read resolver config: %w", err)
	}

	if len(config.Search) == 0 || config.Search[0] == "" {
		return "", ErrNoDomainName
	}

	return strings.TrimSuffix(config.Search[0], "."), nil
}

func (l *Live) Nameservers() ([]netip.Addr, error) {
	config, err := dns.ClientConfigFromFile(l.resolvConf)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolver config: %w", err)
	}

	nameservers := make([]netip.Addr, 0, len(config.Servers))
	for _, server := range config.Servers {
		addr, err := netip.ParseAddr(server)
		if err != nil {
			continue
		}
		nameservers = append(nameservers, addr)
	}

	if len(nameservers) == 0 {
		return nil, ErrNoNameservers
	}

	return nameservers, nil
}

func New(config Config) *Live {
	return &Live{
		routeTable: lo.Ternary(config.RouteTable != "", config.RouteTable, DefaultRouteTable),
		resolvConf: lo.Ternary(config.ResolvConf != "", config.ResolvConf, DefaultResolvConf),
	}
}

func interfaceIPv4(iface string) (*net.IPNet, error) {
	netIface, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("interface %s not found: %w", iface, err)
	}

	addrs, err := netIface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses of interface %s: %w", iface, err)
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
			return ipnet, nil
		}
	}

	return nil, ErrNoIPv4Address
}

// parseDefaultGateway reads the /proc/net/route layout, where addresses are
// little-endian hex words.
func parseDefaultGateway(scanner *bufio.Scanner, iface string) (netip.Addr, error) {
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[0] != iface || fields[1] != "00000000" {
			continue
		}

		value, err := strconv.ParseUint(fields[2], 16, 32)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("failed to parse gateway %q: %w", fields[2], err)
		}

		var octets [4]byte
		binary.LittleEndian.PutUint32(octets[:], uint32(value))

		return netip.AddrFrom4(octets), nil
	}

	if err := scanner.Err(); err != nil {
		return netip.Addr{}, fmt.Errorf("failed to read route table: %w", err)
	}

	return netip.Addr{}, ErrNoGateway
}
