// Package cidr maps the canonical dotted-decimal IPv4 subnet masks to their
// prefix lengths and back.
package cidr

import (
	"errors"
	"net/netip"
	"sort"
)

var ErrInvalidPrefix = errors.New("prefix length must be between 0 and 32")

var table = map[string]int{
	"0.0.0.0": 0, "128.0.0.0": 1, "192.0.0.0": 2, "224.0.0.0": 3,
	"240.0.0.0": 4, "248.0.0.0": 5, "252.0.0.0": 6, "254.0.0.0": 7,
	"255.0.0.0": 8, "255.128.0.0": 9, "255.192.0.0": 10, "255.224.0.0": 11,
	"255.240.0.0": 12, "255.248.0.0": 13, "255.252.0.0": 14, "255.254.0.0": 15,
	"255.255.0.0": 16, "255.255.128.0": 17, "255.255.192.0": 18, "255.255.224.0": 19,
	"255.255.240.0": 20, "255.255.248.0": 21, "255.255.252.0": 22, "255.255.254.0": 23,
	"255.255.255.0": 24, "255.255.255.128": 25, "255.255.255.192": 26, "255.255.255.224": 27,
	"255.255.255.240": 28, "255.255.255.248": 29, "255.255.255.252": 30, "255.255.255.254": 31,
	"255.255.255.255": 32,
}

var masks = func() [33]string {
	var out [33]string
	for mask, prefix := range table {
		out[prefix] = mask
	}
	return out
}()

// Prefix returns the prefix length of mask, and false if mask is not canonical.
func Prefix(mask netip.Addr) (int, bool) {
	if !mask.Is4() {
		return 0, false
	}

	prefix, ok := table[mask.String()]
	return prefix, ok
}

func Valid(mask netip.Addr) bool {
	_, ok := Prefix(mask)
	return ok
}

func Mask(prefix int) (netip.Addr, error) {
	if prefix < 0 || prefix > 32 {
		return netip.Addr{}, ErrInvalidPrefix
	}

	return netip.MustParseAddr(masks[prefix]), nil
}

// Masks lists the canonical masks ordered by prefix length.
func Masks() []string {
	out := make([]string, 0, len(table))
	for mask := range table {
		out = append(out, mask)
	}

	sort.Slice(out, func(i, j int) bool { return table[out[i]] < table[out[j]] })

	return out
}
