package models

import (
	"fmt"

	"github.com/hogwarts-cloud/hpcctl/internal/connection"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/network"
	"github.com/hogwarts-cloud/hpcctl/internal/validate"
	"github.com/samber/lo"
)

var ErrConnectionNotFound = fmt.Errorf("%w: connection", errs.ErrNotFound)

type Server struct {
	hostname string
	fqdn     string

	OS          OS
	CPU         CPU
	BMC         *BMC
	Connections []*connection.Connection
}

func (s *Server) Hostname() string {
	return s.hostname
}

func (s *Server) SetHostname(hostname string) error {
	if err := validate.Hostname(hostname); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}

	s.hostname = hostname
	return nil
}

func (s *Server) FQDN() string {
	return s.fqdn
}

func (s *Server) SetFQDN(fqdn string) error {
	if err := validate.FQDN(fqdn); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}

	s.fqdn = fqdn
	return nil
}

func (s *Server) AddConnection(c *connection.Connection) {
	s.Connections = append(s.Connections, c)
}

// Connection returns the connection to the network with profile.
func (s *Server) Connection(profile network.Profile) (*connection.Connection, error) {
	c, ok := lo.Find(s.Connections, func(c *connection.Connection) bool {
		return c.Network().Profile() == profile
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, profile)
	}

	return c, nil
}

type Headnode struct {
	Server
}

// Node is a compute node declared by a "node.<N>" group.
type Node struct {
	Server
	Index        int
	RootPassword string
}
