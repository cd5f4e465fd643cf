package network

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/samber/lo"
)

var ErrDuplicatedProfile = fmt.Errorf("%w: a network with this profile is already registered", errs.ErrValidation)

// Registry owns the cluster networks in insertion order. Connections refer to
// a network by its ID and resolve it through the registry, so a connection can
// never outlive the network it points to.
type Registry struct {
	ids      []uuid.UUID
	networks map[uuid.UUID]*Network
}

// Add registers network and returns its stable ID. A cluster has at most one
// network per profile.
func (r *Registry) Add(network *Network) (uuid.UUID, error) {
	if _, err := r.ByProfile(network.Profile()); err == nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrDuplicatedProfile, network.Profile())
	}

	id := uuid.New()
	r.ids = append(r.ids, id)
	r.networks[id] = network

	return id, nil
}

func (r *Registry) Get(id uuid.UUID) (*Network, error) {
	network, ok := r.networks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, id)
	}

	return network, nil
}

func (r *Registry) Contains(id uuid.UUID) bool {
	_, ok := r.networks[id]
	return ok
}

// ByProfile returns the ID of the network registered with profile.
func (r *Registry) ByProfile(profile Profile) (uuid.UUID, error) {
	id, ok := lo.Find(r.ids, func(id uuid.UUID) bool {
		return r.networks[id].Profile() == profile
	})
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, profile)
	}

	return id, nil
}

// All returns the networks in insertion order.
func (r *Registry) All() []*Network {
	return lo.Map(r.ids, func(id uuid.UUID, _ int) *Network {
		return r.networks[id]
	})
}

func (r *Registry) Len() int {
	return len(r.ids)
}

func NewRegistry() *Registry {
	return &Registry{
		networks: make(map[uuid.UUID]*Network),
	}
}
