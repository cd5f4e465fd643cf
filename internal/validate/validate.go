package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/idna"
)

const (
	MaxHostnameLength   = 63
	MaxFQDNLength       = 255
	MaxDomainNameLength = 255
)

var (
	ErrEmptyHostname     = errors.New("hostname is empty")
	ErrHostnameTooBig    = errors.New("hostname cannot be bigger than 63 characters")
	ErrHostnameHyphen    = errors.New("hostname cannot start or end with a hyphen")
	ErrHostnameDigits    = errors.New("hostname cannot contain only digits")
	ErrInvalidHostname   = errors.New("hostname can only have alphanumerics and hyphens")
	ErrFQDNTooBig        = errors.New("fqdn cannot be bigger than 255 characters")
	ErrInvalidFQDN       = errors.New("invalid fqdn format")
	ErrEmptyDomainName   = errors.New("domain name is empty")
	ErrDomainNameTooBig  = errors.New("domain name cannot be bigger than 255 characters")
	ErrDomainNameHyphen  = errors.New("domain name cannot start or end with a hyphen")
	ErrDomainNameDigits  = errors.New("domain name cannot contain only digits")
	ErrInvalidDomainName = errors.New("domain name can only have alphanumerics, dots and hyphens")
	ErrDomainNameLabel   = fmt.Errorf("%w: labels must have between 1 and 63 characters", ErrInvalidDomainName)
	ErrInvalidEmail      = errors.New("invalid email")
)

var (
	digitsRegexp     = regexp.MustCompile(`^[0-9]+$`)
	hostnameRegexp   = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	domainNameRegexp = regexp.MustCompile(`^[A-Za-z0-9.-]+$`)
	fqdnRegexp       = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)
)

func Hostname(hostname string) error {
	if hostname == "" {
		return ErrEmptyHostname
	}

	if len(hostname) > MaxHostnameLength {
		return ErrHostnameTooBig
	}

	if strings.HasPrefix(hostname, "-") || strings.HasSuffix(hostname, "-") {
		return ErrHostnameHyphen
	}

	if digitsRegexp.MatchString(hostname) {
		return ErrHostnameDigits
	}

	if !hostnameRegexp.MatchString(hostname) {
		return ErrInvalidHostname
	}

	return nil
}

func FQDN(fqdn string) error {
	if len(fqdn) > MaxFQDNLength {
		return ErrFQDNTooBig
	}

	if !fqdnRegexp.MatchString(fqdn) {
		return ErrInvalidFQDN
	}

	return nil
}

// DomainName validates domain and returns its ASCII form. Internationalized
// names are converted to punycode before the character checks.
func DomainName(domain string) (string, error) {
	if domain == "" {
		return "", ErrEmptyDomainName
	}

	if len(domain) > MaxDomainNameLength {
		return "", ErrDomainNameTooBig
	}

	if strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") {
		return "", ErrDomainNameHyphen
	}

	if lo.Contains(strings.Split(domain, "."), "") {
		return "", ErrDomainNameLabel
	}

	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", errors.Join(ErrInvalidDomainName, err)
	}

	if len(ascii) > MaxDomainNameLength {
		return "", ErrDomainNameTooBig
	}

	if lo.SomeBy(strings.Split(ascii, "."), func(label string) bool {
		return label == "" || len(label) > MaxHostnameLength
	}) {
		return "", ErrDomainNameLabel
	}

	if digitsRegexp.MatchString(ascii) {
		return "", ErrDomainNameDigits
	}

	if !domainNameRegexp.MatchString(ascii) {
		return "", ErrInvalidDomainName
	}

	return ascii, nil
}

func Email(email string) error {
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return ErrInvalidEmail
	}

	return nil
}
