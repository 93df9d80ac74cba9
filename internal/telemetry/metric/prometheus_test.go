// Package metric provides Prometheus metrics for hc-state.
package metric

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.RPCRequests == nil || r.RPCDuration == nil || r.Connections == nil {
		t.Error("metric vectors should be initialized")
	}
}

func TestRegistry_ObserveRPC(t *testing.T) {
	r := NewRegistry()
	r.ObserveRPC("admin", "list_dnas", OutcomeOK, 5*time.Millisecond)
	r.ObserveRPC("admin", "list_dnas", OutcomeOK, 7*time.Millisecond)
	r.ObserveConnect("admin", OutcomeOK)

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	want := []string{
		`hc_state_rpc_requests_total{call="list_dnas",interface="admin",outcome="ok"} 2`,
		`hc_state_connections_total{interface="admin",outcome="ok"} 1`,
		`hc_state_rpc_duration_seconds_count{call="list_dnas",interface="admin"} 2`,
		`hc_state_build_info{`,
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	// Should not panic
	r.ObserveRPC("app", "app_info", OutcomeOK, time.Millisecond)
	r.ObserveConnect("app", OutcomeTransportErr)
}

func TestRegistry_WriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.ObserveRPC("app", "app_info", OutcomeConductorErr, time.Millisecond)

	path := filepath.Join(t.TempDir(), "hc_state.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `outcome="conductor_error"`) {
		t.Errorf("textfile missing outcome label:\n%s", data)
	}
}
