package models

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/hogwarts-cloud/hpcctl/internal/errs"
)

var (
	ErrUnknownPostfixProfile = fmt.Errorf("%w: unknown postfix profile", errs.ErrParse)
	ErrRelayNotSet           = fmt.Errorf("%w: relay server and port are required", errs.ErrValidation)
	ErrCredentialsNotSet     = fmt.Errorf("%w: sasl username and password are required", errs.ErrValidation)
)

type PostfixProfile int

const (
	Local PostfixProfile = iota
	Relay
	SASL
)

func (p PostfixProfile) String() string {
	switch p {
	case Local:
		return "Local"
	case Relay:
		return "Relay"
	case SASL:
		return "SASL"
	}
	return ""
}

// Section is the answer-file group holding the profile's relay settings.
func (p PostfixProfile) Section() string {
	switch p {
	case Relay:
		return "postfix.relay"
	case SASL:
		return "postfix.sasl"
	}
	return ""
}

func ParsePostfixProfile(value string) (PostfixProfile, error) {
	for _, profile := range []PostfixProfile{Local, Relay, SASL} {
		if strings.EqualFold(profile.String(), value) {
			return profile, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownPostfixProfile, value)
}

func (p PostfixProfile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PostfixProfile) UnmarshalText(text []byte) error {
	value, err := ParsePostfixProfile(string(text))
	if err != nil {
		return err
	}

	*p = value
	return nil
}

type Postfix struct {
	Profile     PostfixProfile
	Destination []string
	Server      string
	Port        uint16
	Username    string
	Password    string
	CertFile    string
	KeyFile     string
}

func (p *Postfix) Validate() error {
	if p.Profile == Local {
		return nil
	}

	if p.Server == "" || p.Port == 0 {
		return fmt.Errorf("%w: profile %s", ErrRelayNotSet, p.Profile)
	}

	if p.Profile == SASL && (p.Username == "" || p.Password == "") {
		return ErrCredentialsNotSet
	}

	return nil
}

// RelayAddress is the host:port of the relay, empty for the Local profile.
func (p *Postfix) RelayAddress() string {
	if p.Profile == Local {
		return ""
	}

	return net.JoinHostPort(p.Server, strconv.Itoa(int(p.Port)))
}
