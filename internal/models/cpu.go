package models

import (
	"fmt"

	"github.com/hogwarts-cloud/hpcctl/internal/errs"
)

// MaxCPUCount bounds each topology count so that their product never
// overflows.
const MaxCPUCount = 1 << 16

var ErrInvalidTopology = fmt.Errorf("%w: invalid cpu topology", errs.ErrValidation)

type CPU struct {
	Sockets        uint
	Cores          uint
	Threads        uint
	CoresPerSocket uint
	ThreadsPerCore uint
}

// Validate checks that no count is zero and that cores and threads are the
// exact products of the per-socket and per-core counts.
func (c CPU) Validate() error {
	if c.Sockets == 0 || c.Cores == 0 || c.Threads == 0 || c.CoresPerSocket == 0 || c.ThreadsPerCore == 0 {
		return fmt.Errorf("%w: counts must be positive", ErrInvalidTopology)
	}

	if err := checkCounts(c.Sockets, c.CoresPerSocket, c.ThreadsPerCore); err != nil {
		return err
	}

	if c.Sockets*c.CoresPerSocket != c.Cores {
		return fmt.Errorf("%w: %d sockets * %d cores per socket != %d cores",
			ErrInvalidTopology, c.Sockets, c.CoresPerSocket, c.Cores)
	}

	if c.Cores*c.ThreadsPerCore != c.Threads {
		return fmt.Errorf("%w: %d cores * %d threads per core != %d threads",
			ErrInvalidTopology, c.Cores, c.ThreadsPerCore, c.Threads)
	}

	return nil
}

func checkCounts(counts ...uint) error {
	for _, count := range counts {
		if count > MaxCPUCount {
			return fmt.Errorf("%w: count %d exceeds %d", ErrInvalidTopology, count, MaxCPUCount)
		}
	}

	return nil
}

func NewCPU(sockets, coresPerSocket, threadsPerCore uint) (CPU, error) {
	if err := checkCounts(sockets, coresPerSocket, threadsPerCore); err != nil {
		return CPU{}, err
	}

	cpu := CPU{
		Sockets:        sockets,
		Cores:          sockets * coresPerSocket,
		Threads:        sockets * coresPerSocket * threadsPerCore,
		CoresPerSocket: coresPerSocket,
		ThreadsPerCore: threadsPerCore,
	}

	if err := cpu.Validate(); err != nil {
		return CPU{}, err
	}

	return cpu, nil
}
