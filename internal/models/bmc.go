package models

import "net/netip"

const DefaultSerialSpeed = 115200

type BMCKind int

const (
	IPMI BMCKind = iota
)

func (k BMCKind) String() string {
	switch k {
	case IPMI:
		return "IPMI"
	}
	return ""
}

type BMC struct {
	Address     netip.Addr
	Username    string
	Password    string
	SerialPort  uint
	SerialSpeed uint
	Kind        BMCKind
}
