package resolver

import (
	"github.com/hogwarts-cloud/hpcctl/internal/answerfile"
	"github.com/hogwarts-cloud/hpcctl/internal/connection"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/log"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/samber/lo"
)

// source tells where a network value comes from when the answer file omits it.
type source int

const (
	optional source = iota
	required
	fetched
)

type policy struct {
	address     source
	subnetMask  source
	gateway     source
	domainName  source
	nameservers source
}

var policies = map[network.Profile]policy{
	network.External: {
		address:     fetched,
		subnetMask:  fetched,
		gateway:     optional,
		domainName:  fetched,
		nameservers: fetched,
	},
	network.Management: {
		address:     required,
		subnetMask:  required,
		gateway:     optional,
		domainName:  required,
		nameservers: fetched,
	},
	network.Service: {
		address:     required,
		subnetMask:  fetched,
		gateway:     fetched,
		domainName:  fetched,
		nameservers: fetched,
	},
	network.Application: {
		address:     required,
		subnetMask:  required,
		gateway:     required,
		domainName:  required,
		nameservers: required,
	},
}

func (r *Resolver) fillNetworks(cluster *models.Cluster, a *answerfile.AnswerFile) error {
	sections := []struct {
		profile network.Profile
		values  *answerfile.Network
	}{
		{profile: network.Management, values: &a.Management},
		{profile: network.External, values: &a.External},
		{profile: network.Service, values: a.Service},
		{profile: network.Application, values: a.Application},
	}

	for _, s := range sections {
		if s.values == nil {
			continue
		}

		if err := r.addNetwork(cluster, s.profile, *s.values); err != nil {
			return err
		}
	}

	return nil
}

// addNetwork registers the network of profile and connects the headnode to it.
func (r *Resolver) addNetwork(cluster *models.Cluster, profile network.Profile, values answerfile.Network) error {
	section := profile.Section()

	values, err := r.complete(profile, values)
	if err != nil {
		return err
	}

	n := network.New(profile, network.Ethernet)

	if err := n.SetSubnetMask(*values.SubnetMask); err != nil {
		return errs.At(section, "subnet_mask", err)
	}

	address, err := n.CalculateAddress(*values.IPAddress)
	if err != nil {
		return errs.At(section, "ip_address", err)
	}

	if err := n.SetAddress(address); err != nil {
		return errs.At(section, "ip_address", err)
	}

	if values.Gateway != nil {
		if err := n.SetGateway(*values.Gateway); err != nil {
			return errs.At(section, "gateway", err)
		}
	}

	if domainName := lo.FromPtr(values.DomainName); domainName != "" {
		if err := n.SetDomainName(domainName); err != nil {
			return errs.At(section, "domain_name", err)
		}
	}

	if err := n.SetNameservers(values.Nameservers); err != nil {
		return errs.At(section, "nameservers", err)
	}

	id, err := cluster.Networks.Add(n)
	if err != nil {
		return errs.At(section, "", err)
	}

	c, err := connection.New(cluster.Networks, id, r.host)
	if err != nil {
		return errs.At(section, "", err)
	}

	if err := c.SetInterface(*values.Interface); err != nil {
		return errs.At(section, "interface", err)
	}

	if err := c.SetAddress(*values.IPAddress); err != nil {
		return errs.At(section, "ip_address", err)
	}

	if mac := lo.FromPtr(values.MACAddress); mac != "" {
		if err := c.SetMAC(mac); err != nil {
			return errs.At(section, "mac_address", err)
		}
	}

	cluster.Headnode.AddConnection(c)

	log.Debug("network resolved",
		"profile", profile,
		"address", address,
		"interface", *values.Interface,
	)

	return nil
}

// complete fills the values the answer file omits according to the profile
// policy, failing on a missing mandatory value or an unanswered host query.
func (r *Resolver) complete(profile network.Profile, values answerfile.Network) (answerfile.Network, error) {
	section := profile.Section()
	p := policies[profile]

	iface := lo.FromPtr(values.Interface)
	if iface == "" {
		return values, errs.Validation(section, "interface", answerfile.ErrMissingAttribute)
	}

	fields := []struct {
		key     string
		source  source
		present bool
		fetch   func() error
	}{
		{
			key: "ip_address", source: p.address, present: values.IPAddress != nil,
			fetch: func() error {
				address, err := connection.FetchAddress(r.host, iface)
				values.IPAddress = &address
				return err
			},
		},
		{
			key: "subnet_mask", source: p.subnetMask, present: values.SubnetMask != nil,
			fetch: func() error {
				mask, err := network.FetchSubnetMask(r.host, iface)
				values.SubnetMask = &mask
				return err
			},
		},
		{
			key: "gateway", source: p.gateway, present: values.Gateway != nil,
			fetch: func() error {
				gateway, err := network.FetchGateway(r.host, iface)
				values.Gateway = &gateway
				return err
			},
		},
		{
			key: "domain_name", source: p.domainName, present: lo.FromPtr(values.DomainName) != "",
			fetch: func() error {
				domainName, err := network.FetchDomainName(r.host)
				values.DomainName = &domainName
				return err
			},
		},
		{
			key: "nameservers", source: p.nameservers, present: len(values.Nameservers) > 0,
			fetch: func() error {
				nameservers, err := network.FetchNameservers(r.host)
				values.Nameservers = nameservers
				return err
			},
		},
	}

	for _, field := range fields {
		if field.present {
			continue
		}

		switch field.source {
		case required:
			return values, errs.Validation(section, field.key, answerfile.ErrMissingAttribute)
		case fetched:
			if err := field.fetch(); err != nil {
				return values, errs.At(section, field.key, err)
			}
			log.Debug("using host default", "section", section, "key", field.key)
		}
	}

	return values, nil
}
