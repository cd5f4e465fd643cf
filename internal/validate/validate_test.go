package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Hostname(t *testing.T) {
	testCases := []struct {
		name     string
		hostname string
		wantErr  bool
		err      error
	}{
		{name: "happy path", hostname: "n01"},
		{name: "headnode", hostname: "cloyster-headnode"},
		{name: "empty", hostname: "", wantErr: true, err: ErrEmptyHostname},
		{name: "only digits", hostname: "12345", wantErr: true, err: ErrHostnameDigits},
		{name: "leading hyphen", hostname: "-abc", wantErr: true, err: ErrHostnameHyphen},
		{name: "trailing hyphen", hostname: "abc-", wantErr: true, err: ErrHostnameHyphen},
		{name: "invalid character", hostname: "aba&caba", wantErr: true, err: ErrInvalidHostname},
		{name: "dot is not allowed", hostname: "aba.caba", wantErr: true, err: ErrInvalidHostname},
		{name: "too big", hostname: strings.Repeat("a", 64), wantErr: true, err: ErrHostnameTooBig},
		{name: "max length", hostname: strings.Repeat("a", 63)},
	}

	for _, tc := range testCases {
		err := Hostname(tc.hostname)
		if tc.wantErr {
			assert.ErrorIs(t, err, tc.err, tc.name)
		} else {
			assert.Nil(t, err, tc.name)
		}
	}
}

func Test_FQDN(t *testing.T) {
	testCases := []struct {
		name    string
		fqdn    string
		wantErr bool
		err     error
	}{
		{name: "happy path", fqdn: "example.com"},
		{name: "subdomain", fqdn: "subdomain.example.com"},
		{name: "hyphenated", fqdn: "sub-domain.example.co.uk"},
		{name: "missing tld", fqdn: "example", wantErr: true, err: ErrInvalidFQDN},
		{name: "leading dot", fqdn: ".example.com", wantErr: true, err: ErrInvalidFQDN},
		{name: "trailing dot", fqdn: "example.com.", wantErr: true, err: ErrInvalidFQDN},
		{name: "double dot", fqdn: "example..com", wantErr: true, err: ErrInvalidFQDN},
		{name: "invalid character", fqdn: "example@com", wantErr: true, err: ErrInvalidFQDN},
		{name: "too long", fqdn: strings.Repeat("a", 256), wantErr: true, err: ErrFQDNTooBig},
	}

	for _, tc := range testCases {
		err := FQDN(tc.fqdn)
		if tc.wantErr {
			assert.ErrorIs(t, err, tc.err, tc.name)
		} else {
			assert.Nil(t, err, tc.name)
		}
	}
}

func Test_DomainName(t *testing.T) {
	testCases := []struct {
		name     string
		domain   string
		expected string
		wantErr  bool
		err      error
	}{
		{name: "happy path", domain: "cloyster.com", expected: "cloyster.com"},
		{name: "internal", domain: "cluster.internal", expected: "cluster.internal"},
		{name: "empty", domain: "", wantErr: true, err: ErrEmptyDomainName},
		{name: "leading hyphen", domain: "-cloyster.com", wantErr: true, err: ErrDomainNameHyphen},
		{name: "trailing hyphen", domain: "cloyster-", wantErr: true, err: ErrDomainNameHyphen},
		{name: "only digits", domain: "12345", wantErr: true, err: ErrDomainNameDigits},
		{name: "too big", domain: strings.Repeat("a", 256), wantErr: true, err: ErrDomainNameTooBig},
		{name: "empty label", domain: "example..com", wantErr: true, err: ErrDomainNameLabel},
		{name: "leading dot", domain: ".example.com", wantErr: true, err: ErrDomainNameLabel},
		{name: "trailing dot", domain: "example.com.", wantErr: true, err: ErrDomainNameLabel},
		{name: "label too big", domain: strings.Repeat("a", 64) + ".com", wantErr: true, err: ErrDomainNameLabel},
	}

	for _, tc := range testCases {
		actual, err := DomainName(tc.domain)
		if tc.wantErr {
			assert.ErrorIs(t, err, tc.err, tc.name)
		} else {
			assert.Nil(t, err, tc.name)
			assert.Equal(t, tc.expected, actual, tc.name)
		}
	}
}

func Test_Email(t *testing.T) {
	assert.Nil(t, Email("admin@admin.com"))
	assert.ErrorIs(t, Email("abacaba"), ErrInvalidEmail)
	assert.ErrorIs(t, Email("Admin <admin@admin.com>"), ErrInvalidEmail)
}
