package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hogwarts-cloud/hpcctl/internal/errs"
)

var (
	ErrUnknownDistro  = fmt.Errorf("%w: unknown distro", errs.ErrParse)
	ErrInvalidVersion = fmt.Errorf("%w: version must be <major>.<minor>", errs.ErrParse)
)

type Distro int

const (
	RHEL Distro = iota
	OL
	Rocky
	AlmaLinux
)

func (d Distro) String() string {
	switch d {
	case RHEL:
		return "RHEL"
	case OL:
		return "OL"
	case Rocky:
		return "Rocky"
	case AlmaLinux:
		return "AlmaLinux"
	}
	return ""
}

func ParseDistro(value string) (Distro, error) {
	for _, distro := range []Distro{RHEL, OL, Rocky, AlmaLinux} {
		if strings.EqualFold(distro.String(), value) {
			return distro, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownDistro, value)
}

func (d Distro) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Distro) UnmarshalText(text []byte) error {
	value, err := ParseDistro(string(text))
	if err != nil {
		return err
	}

	*d = value
	return nil
}

type OS struct {
	Distro       Distro
	MajorVersion uint
	MinorVersion uint
	Kernel       string
}

func (o OS) Version() string {
	return fmt.Sprintf("%d.%d", o.MajorVersion, o.MinorVersion)
}

func (o *OS) SetVersion(version string) error {
	major, minor, ok := strings.Cut(version, ".")
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	majorVersion, err := strconv.ParseUint(major, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	minorVersion, err := strconv.ParseUint(minor, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	o.MajorVersion = uint(majorVersion)
	o.MinorVersion = uint(minorVersion)
	return nil
}
