package mailrelay

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve answers a single SMTP session on a local listener.
func serve(t *testing.T, extensions ...string) (string, uint16) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		fmt.Fprint(conn, "220 relay.test ESMTP\r\n")

		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}

			switch command := strings.ToUpper(strings.TrimSpace(line)); {
			case strings.HasPrefix(command, "EHLO"):
				if len(extensions) == 0 {
					fmt.Fprint(conn, "250 relay.test\r\n")
					continue
				}
				fmt.Fprint(conn, "250-relay.test\r\n")
				for i, extension := range extensions {
					separator := "-"
					if i == len(extensions)-1 {
						separator = " "
					}
					fmt.Fprintf(conn, "250%s%s\r\n", separator, extension)
				}
			case strings.HasPrefix(command, "QUIT"):
				fmt.Fprint(conn, "221 bye\r\n")
				return
			default:
				fmt.Fprint(conn, "502 not implemented\r\n")
			}
		}
	}()

	host, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)

	number, err := strconv.ParseUint(port, 10, 16)
	require.NoError(t, err)

	return host, uint16(number)
}

func Test_Probe(t *testing.T) {
	testCases := []struct {
		name       string
		profile    models.PostfixProfile
		extensions []string
		wantErr    bool
		err        error
	}{
		{name: "relay", profile: models.Relay},
		{name: "sasl with auth", profile: models.SASL, extensions: []string{"PIPELINING", "AUTH PLAIN LOGIN"}},
		{name: "sasl without auth", profile: models.SASL, extensions: []string{"PIPELINING"}, wantErr: true, err: ErrAuthNotSupported},
	}

	for _, tc := range testCases {
		host, port := serve(t, tc.extensions...)
		prober := New(Config{Timeout: 5 * time.Second})

		err := prober.Probe(context.Background(), &models.Postfix{
			Profile: tc.profile,
			Server:  host,
			Port:    port,
		})

		if tc.wantErr {
			assert.ErrorIs(t, err, tc.err, tc.name)
		} else {
			assert.NoError(t, err, tc.name)
		}
	}
}

func Test_ProbeNoRelay(t *testing.T) {
	prober := New(Config{})

	assert.ErrorIs(t, prober.Probe(context.Background(), nil), ErrNoRelay)
	assert.ErrorIs(t, prober.Probe(context.Background(), &models.Postfix{Profile: models.Local}), ErrNoRelay)
}

func Test_ProbeUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	address := listener.Addr().(*net.TCPAddr)
	require.NoError(t, listener.Close())

	prober := New(Config{Timeout: time.Second})
	err = prober.Probe(context.Background(), &models.Postfix{
		Profile: models.Relay,
		Server:  "127.0.0.1",
		Port:    uint16(address.Port),
	})
	assert.Error(t, err)
}

func Test_New(t *testing.T) {
	prober := New(Config{})

	assert.Equal(t, DefaultTimeout, prober.timeout)
	assert.Equal(t, "localhost", prober.localName)
}
