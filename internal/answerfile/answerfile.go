// Package answerfile maps the groups of an answer file onto typed sections.
// Optional keys that are absent stay nil so that "not provided" can be told
// apart from an explicitly empty value.
package answerfile

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/keyfile"
	"github.com/hogwarts-cloud/hpcctl/internal/log"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
)

const (
	SectionInformation = "information"
	SectionTime        = "time"
	SectionHostname    = "hostname"
	SectionSystem      = "system"
	SectionNode        = "node"
	SectionPostfix     = "postfix"
	SectionOFED        = "ofed"
)

var ErrMissingAttribute = fmt.Errorf("%w: missing mandatory attribute", errs.ErrValidation)

type Network struct {
	Interface   *string      `mapstructure:"interface"`
	IPAddress   *netip.Addr  `mapstructure:"ip_address"`
	MACAddress  *string      `mapstructure:"mac_address"`
	SubnetMask  *netip.Addr  `mapstructure:"subnet_mask"`
	Gateway     *netip.Addr  `mapstructure:"gateway"`
	DomainName  *string      `mapstructure:"domain_name"`
	Nameservers []netip.Addr `mapstructure:"nameservers"`
}

type Information struct {
	ClusterName        string `mapstructure:"cluster_name"`
	CompanyName        string `mapstructure:"company_name"`
	AdministratorEmail string `mapstructure:"administrator_email"`
}

type Time struct {
	Timezone   string `mapstructure:"timezone"`
	Timeserver string `mapstructure:"timeserver"`
	Locale     string `mapstructure:"locale"`
}

type Hostname struct {
	Hostname   string `mapstructure:"hostname"`
	DomainName string `mapstructure:"domain_name"`
}

type System struct {
	DiskImage string        `mapstructure:"disk_image"`
	Distro    models.Distro `mapstructure:"distro"`
	Version   string        `mapstructure:"version"`
	Kernel    string        `mapstructure:"kernel"`
}

type Postfix struct {
	Profile     models.PostfixProfile `mapstructure:"profile"`
	Destination []string              `mapstructure:"destination"`
	CertFile    string                `mapstructure:"smtpd_tls_cert_file"`
	KeyFile     string                `mapstructure:"smtpd_tls_key_file"`
	Relay       *Relay                `mapstructure:"-"`
}

// Relay holds the postfix.relay or postfix.sasl group. Credentials are only
// read for SASL.
type Relay struct {
	Server   string `mapstructure:"server"`
	Port     uint16 `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type OFED struct {
	Kind    models.OFEDKind `mapstructure:"kind"`
	Version string          `mapstructure:"version"`
}

type AnswerFile struct {
	External    Network
	Management  Network
	Service     *Network
	Application *Network
	Information Information
	Time        Time
	Hostname    Hostname
	System      System
	Nodes       Nodes
	Postfix     *Postfix
	OFED        *OFED
}

// Read loads every section of keyFile. The first malformed or missing value
// aborts the whole read.
func Read(keyFile *keyfile.KeyFile) (*AnswerFile, error) {
	a := &AnswerFile{}

	steps := []struct {
		name string
		load func(*keyfile.KeyFile) error
	}{
		{name: "networks", load: a.loadNetworks},
		{name: "information", load: a.loadInformation},
		{name: "time", load: a.loadTime},
		{name: "hostname", load: a.loadHostname},
		{name: "system", load: a.loadSystem},
		{name: "nodes", load: a.Nodes.load},
		{name: "postfix", load: a.loadPostfix},
		{name: "ofed", load: a.loadOFED},
	}

	for _, step := range steps {
		if err := step.load(keyFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", step.name, err)
		}
		log.Debug("answer file section loaded", "section", step.name)
	}

	return a, nil
}

func Load(path string) (*AnswerFile, error) {
	keyFile, err := keyfile.Load(path)
	if errors.Is(err, keyfile.ErrFileNotFound) {
		return nil, fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrParse, err)
	}

	return Read(keyFile)
}

func (a *AnswerFile) loadNetworks(keyFile *keyfile.KeyFile) error {
	if err := decodeGroup(keyFile, network.External.Section(), &a.External); err != nil {
		return err
	}

	if err := decodeGroup(keyFile, network.Management.Section(), &a.Management); err != nil {
		return err
	}

	for _, optional := range []struct {
		profile network.Profile
		target  **Network
	}{
		{profile: network.Service, target: &a.Service},
		{profile: network.Application, target: &a.Application},
	} {
		if !keyFile.HasGroup(optional.profile.Section()) {
			continue
		}

		var n Network
		if err := decodeGroup(keyFile, optional.profile.Section(), &n); err != nil {
			return err
		}
		*optional.target = &n
	}

	return nil
}

func (a *AnswerFile) loadInformation(keyFile *keyfile.KeyFile) error {
	if err := requireKeys(keyFile, SectionInformation, "cluster_name", "company_name", "administrator_email"); err != nil {
		return err
	}

	return decodeGroup(keyFile, SectionInformation, &a.Information)
}

func (a *AnswerFile) loadTime(keyFile *keyfile.KeyFile) error {
	if err := requireKeys(keyFile, SectionTime, "timezone", "timeserver", "locale"); err != nil {
		return err
	}

	return decodeGroup(keyFile, SectionTime, &a.Time)
}

func (a *AnswerFile) loadHostname(keyFile *keyfile.KeyFile) error {
	if err := requireKeys(keyFile, SectionHostname, "hostname", "domain_name"); err != nil {
		return err
	}

	return decodeGroup(keyFile, SectionHostname, &a.Hostname)
}

func (a *AnswerFile) loadSystem(keyFile *keyfile.KeyFile) error {
	if err := requireKeys(keyFile, SectionSystem, "disk_image", "distro", "version"); err != nil {
		return err
	}

	return decodeGroup(keyFile, SectionSystem, &a.System)
}

// loadPostfix reads the mail relay only when a postfix group exists.
func (a *AnswerFile) loadPostfix(keyFile *keyfile.KeyFile) error {
	if !keyFile.HasGroup(SectionPostfix) {
		return nil
	}

	if err := requireKeys(keyFile, SectionPostfix, "profile"); err != nil {
		return err
	}

	var postfix Postfix
	if err := decodeGroup(keyFile, SectionPostfix, &postfix); err != nil {
		return err
	}

	if section := postfix.Profile.Section(); section != "" {
		keys := []string{"server", "port"}
		if postfix.Profile == models.SASL {
			keys = append(keys, "username", "password")
		}

		if err := requireKeys(keyFile, section, keys...); err != nil {
			return err
		}

		var relay Relay
		if err := decodeGroup(keyFile, section, &relay); err != nil {
			return err
		}
		postfix.Relay = &relay
	}

	a.Postfix = &postfix
	return nil
}

// loadOFED enables OFED only when a kind is given.
func (a *AnswerFile) loadOFED(keyFile *keyfile.KeyFile) error {
	if keyFile.GetOr(SectionOFED, "kind", "") == "" {
		return nil
	}

	var ofed OFED
	if err := decodeGroup(keyFile, SectionOFED, &ofed); err != nil {
		return err
	}

	if ofed.Version == "" {
		ofed.Version = models.DefaultOFEDVersion
	}

	a.OFED = &ofed
	return nil
}

func requireKeys(keyFile *keyfile.KeyFile, group string, keys ...string) error {
	for _, key := range keys {
		if value, _ := keyFile.Get(group, key); value == "" {
			return errs.Validation(group, key, ErrMissingAttribute)
		}
	}

	return nil
}
