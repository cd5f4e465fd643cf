// Package mailrelay checks that the relay configured for postfix answers SMTP
// before the installation relies on it.
package mailrelay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/hogwarts-cloud/hpcctl/internal/log"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
)

const DefaultTimeout = 10 * time.Second

var (
	ErrNoRelay          = errors.New("mail system has no relay")
	ErrAuthNotSupported = errors.New("relay does not advertise AUTH")
)

type Config struct {
	Timeout   time.Duration
	LocalName string
}

type Prober struct {
	timeout   time.Duration
	localName string
}

// Probe connects to the relay of postfix and greets it. A SASL profile also
// requires the relay to offer authentication.
func (p *Prober) Probe(ctx context.Context, postfix *models.Postfix) error {
	if postfix == nil || postfix.Profile == models.Local {
		return ErrNoRelay
	}

	address := postfix.RelayAddress()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	client, err := smtp.NewClient(conn, postfix.Server)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to read greeting: %w", err)
	}
	defer client.Close()

	if err := client.Hello(p.localName); err != nil {
		return fmt.Errorf("failed to greet: %w", err)
	}

	if postfix.Profile == models.SASL {
		if ok, _ := client.Extension("AUTH"); !ok {
			return fmt.Errorf("%w: %s", ErrAuthNotSupported, address)
		}
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("failed to quit: %w", err)
	}

	log.Info("mail relay reachable", "relay", address, "profile", postfix.Profile)
	return nil
}

func New(config Config) *Prober {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	localName := config.LocalName
	if localName == "" {
		localName = "localhost"
	}

	return &Prober{
		timeout:   timeout,
		localName: localName,
	}
}
