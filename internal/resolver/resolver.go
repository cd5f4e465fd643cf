package resolver

import (
	"fmt"

	"github.com/hogwarts-cloud/hpcctl/internal/answerfile"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/hoststack"
	"github.com/hogwarts-cloud/hpcctl/internal/log"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/samber/lo"
)

type Config struct {
	Host hoststack.Stack
}

// Resolver turns an answer file into a validated cluster model. The host
// stack only supplies defaults for values the answer file omits.
type Resolver struct {
	host hoststack.Stack
}

func (r *Resolver) Resolve(path string) (*models.Cluster, error) {
	log.Info("resolving answer file", "path", path)

	a, err := answerfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer file: %w", err)
	}

	return r.Build(a)
}

// Build creates the cluster described by a. Nothing is returned on error.
func (r *Resolver) Build(a *answerfile.AnswerFile) (*models.Cluster, error) {
	cluster := models.NewCluster()

	steps := []struct {
		name string
		fill func(*models.Cluster, *answerfile.AnswerFile) error
	}{
		{name: "information", fill: fillInformation},
		{name: "system", fill: fillSystem},
		{name: "headnode", fill: fillHeadnode},
		{name: "networks", fill: r.fillNetworks},
		{name: "nodes", fill: r.fillNodes},
		{name: "mail system", fill: fillMailSystem},
		{name: "ofed", fill: fillOFED},
	}

	for _, step := range steps {
		if err := step.fill(cluster, a); err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", step.name, err)
		}
		log.Debug("resolved", "step", step.name)
	}

	log.Info("answer file resolved",
		"cluster", cluster.Name,
		"networks", cluster.Networks.Len(),
		"nodes", len(cluster.Nodes),
	)

	return cluster, nil
}

// Dump writes cluster back as an answer file at path.
func (r *Resolver) Dump(cluster *models.Cluster, path string) error {
	a, err := Export(cluster)
	if err != nil {
		return fmt.Errorf("failed to export cluster: %w", err)
	}

	if err := a.Save(path); err != nil {
		return err
	}

	log.Info("answer file dumped", "path", path, "nodes", len(cluster.Nodes))
	return nil
}

func fillInformation(cluster *models.Cluster, a *answerfile.AnswerFile) error {
	cluster.Name = a.Information.ClusterName
	cluster.Company = a.Information.CompanyName

	if err := cluster.SetAdminEmail(a.Information.AdministratorEmail); err != nil {
		return errs.At(answerfile.SectionInformation, "administrator_email", err)
	}

	cluster.Timezone = a.Time.Timezone
	cluster.Timeserver = a.Time.Timeserver
	cluster.Locale = a.Time.Locale

	return nil
}

func fillSystem(cluster *models.Cluster, a *answerfile.AnswerFile) error {
	cluster.DiskImage = a.System.DiskImage
	cluster.OS.Distro = a.System.Distro
	cluster.OS.Kernel = a.System.Kernel

	if err := cluster.OS.SetVersion(a.System.Version); err != nil {
		return errs.At(answerfile.SectionSystem, "version", err)
	}

	return nil
}

func fillHeadnode(cluster *models.Cluster, a *answerfile.AnswerFile) error {
	headnode := cluster.Headnode

	if err := headnode.SetHostname(a.Hostname.Hostname); err != nil {
		return errs.At(answerfile.SectionHostname, "hostname", err)
	}

	fqdn := a.Hostname.Hostname + "." + a.Hostname.DomainName
	if err := headnode.SetFQDN(fqdn); err != nil {
		return errs.At(answerfile.SectionHostname, "domain_name", err)
	}

	return nil
}

func fillMailSystem(cluster *models.Cluster, a *answerfile.AnswerFile) error {
	if a.Postfix == nil {
		return nil
	}

	relay := lo.FromPtr(a.Postfix.Relay)
	postfix := &models.Postfix{
		Profile:     a.Postfix.Profile,
		Destination: a.Postfix.Destination,
		Server:      relay.Server,
		Port:        relay.Port,
		Username:    relay.Username,
		Password:    relay.Password,
		CertFile:    a.Postfix.CertFile,
		KeyFile:     a.Postfix.KeyFile,
	}

	if err := postfix.Validate(); err != nil {
		return errs.At(answerfile.SectionPostfix, "profile", err)
	}

	cluster.MailSystem = postfix
	return nil
}

func fillOFED(cluster *models.Cluster, a *answerfile.AnswerFile) error {
	if a.OFED == nil {
		return nil
	}

	cluster.OFED = &models.OFED{
		Kind:    a.OFED.Kind,
		Version: a.OFED.Version,
	}

	return nil
}

func New(config Config) *Resolver {
	return &Resolver{
		host: config.Host,
	}
}
