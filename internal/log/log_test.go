package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ConfigureWriter(t *testing.T) {
	t.Cleanup(func() { ConfigureWriter("info", "console", os.Stdout) })

	var buf bytes.Buffer
	ConfigureWriter("info", "json", &buf)

	Debug("hidden message")
	Info("network resolved", "profile", "Management")
	Error("node rejected", "section", "node.4")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "network resolved")
	assert.Contains(t, out, "Management")
	assert.Contains(t, out, "node.4")
}
