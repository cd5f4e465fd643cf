package models

import (
	"fmt"
	"strings"

	"github.com/hogwarts-cloud/hpcctl/internal/errs"
)

const DefaultOFEDVersion = "latest"

var ErrUnknownOFEDKind = fmt.Errorf("%w: unknown ofed kind", errs.ErrParse)

type OFEDKind int

const (
	Inbox OFEDKind = iota
	Mellanox
	Oracle
)

func (k OFEDKind) String() string {
	switch k {
	case Inbox:
		return "Inbox"
	case Mellanox:
		return "Mellanox"
	case Oracle:
		return "Oracle"
	}
	return ""
}

func ParseOFEDKind(value string) (OFEDKind, error) {
	for _, kind := range []OFEDKind{Inbox, Mellanox, Oracle} {
		if strings.EqualFold(kind.String(), value) {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownOFEDKind, value)
}

func (k OFEDKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *OFEDKind) UnmarshalText(text []byte) error {
	value, err := ParseOFEDKind(string(text))
	if err != nil {
		return err
	}

	*k = value
	return nil
}

type OFED struct {
	Kind    OFEDKind
	Version string
}
