package command

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/yndnr/hcstate-go/internal/cli/connection/conductortest"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

// harness runs the CLI against a fake conductor with an isolated home
// directory and config file.
type harness struct {
	t          *testing.T
	server     *conductortest.Server
	configPath string
	stdin      io.Reader
	stdout     bytes.Buffer
	stderr     bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &harness{
		t:          t,
		server:     conductortest.New(t),
		configPath: filepath.Join(home, "cli.yaml"),
	}
}

// run executes one invocation with connection flags pointing at the fake
// conductor. Both interfaces share its port.
func (h *harness) run(args ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()

	port := strconv.Itoa(h.server.Port())
	full := []string{
		"hc-state",
		"--config", h.configPath,
		"--host", h.server.Host(),
		"--admin-port", port,
		"--app-port", port,
		"--timeout", "2s",
	}
	return h.runRaw(append(full[1:], args...)...)
}

// runRaw executes one invocation with only the given arguments and the
// harness config file.
func (h *harness) runRaw(args ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()

	app := NewApp(&h.stdout, &h.stderr)
	if h.stdin != nil {
		app.Reader = h.stdin
	}
	return app.Run(append([]string{"hc-state"}, args...))
}

func mustHash(t *testing.T, typ holohash.HashType, seed byte) holohash.HoloHash {
	t.Helper()
	h, err := holohash.Encode(typ, bytes.Repeat([]byte{seed}, holohash.CoreLength))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return h
}

func mustCell(t *testing.T, seed byte) holohash.CellID {
	t.Helper()
	return holohash.CellID{
		DnaHash:     mustHash(t, holohash.TypeDna, seed),
		AgentPubKey: mustHash(t, holohash.TypeAgent, seed+1),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}
