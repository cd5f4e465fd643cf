package utils

import (
	"encoding/binary"
	"errors"
	"net/netip"
)

var ErrNotIPv4 = errors.New("address is not IPv4")

func AddrToUint32(addr netip.Addr) (uint32, error) {
	if !addr.Is4() {
		return 0, ErrNotIPv4
	}

	octets := addr.As4()
	return binary.BigEndian.Uint32(octets[:]), nil
}

func Uint32ToAddr(value uint32) netip.Addr {
	var octets [4]byte
	binary.BigEndian.PutUint32(octets[:], value)
	return netip.AddrFrom4(octets)
}

// MaskAddr returns addr AND mask.
func MaskAddr(addr, mask netip.Addr) (netip.Addr, error) {
	a, err := AddrToUint32(addr)
	if err != nil {
		return netip.Addr{}, err
	}

	m, err := AddrToUint32(mask)
	if err != nil {
		return netip.Addr{}, err
	}

	return Uint32ToAddr(a & m), nil
}

// IncAddr advances addr by n, wrapping like the underlying 32-bit counter.
func IncAddr(addr netip.Addr, n uint32) (netip.Addr, error) {
	value, err := AddrToUint32(addr)
	if err != nil {
		return netip.Addr{}, err
	}

	return Uint32ToAddr(value + n), nil
}
