package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/hcstate-go/internal/cli/connection/conductortest"
	"github.com/yndnr/hcstate-go/internal/core/domain"
)

func TestConfig_URLs(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantAdmin string
		wantApp   string
	}{
		{
			name:      "defaults",
			cfg:       Config{AdminPort: DefaultAdminPort, AppPort: DefaultAppPort},
			wantAdmin: "ws://localhost:4444/",
			wantApp:   "ws://localhost:8888/",
		},
		{
			name:      "tls",
			cfg:       Config{Host: "conductor.example", AdminPort: 1, AppPort: 2, TLS: true},
			wantAdmin: "wss://conductor.example:1/",
			wantApp:   "wss://conductor.example:2/",
		},
		{
			name:      "ipv6",
			cfg:       Config{Host: "::1", AdminPort: 4444, AppPort: 8888},
			wantAdmin: "ws://[::1]:4444/",
			wantApp:   "ws://[::1]:8888/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.AdminURL(); got != tt.wantAdmin {
				t.Errorf("AdminURL() = %q, want %q", got, tt.wantAdmin)
			}
			if got := tt.cfg.AppURL(); got != tt.wantApp {
				t.Errorf("AppURL() = %q, want %q", got, tt.wantApp)
			}
		})
	}
}

func TestConfig_TLSConfig(t *testing.T) {
	cfg, err := Config{}.tlsConfig()
	if err != nil || cfg != nil {
		t.Errorf("tlsConfig() without TLS = %v, %v; want nil, nil", cfg, err)
	}

	cfg, err = Config{TLS: true}.tlsConfig()
	if err != nil || cfg == nil || cfg.RootCAs == nil {
		t.Errorf("tlsConfig() with TLS = %v, %v", cfg, err)
	}

	_, err = Config{TLS: true, CAFile: "/nonexistent/ca.pem"}.tlsConfig()
	if !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("tlsConfig() with missing CA error = %v, want ErrConfigInvalid", err)
	}
}

func TestNewManager(t *testing.T) {
	m := NewManager(Config{Host: "h"})
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.IsConnected() {
		t.Error("new manager should not be connected")
	}
	if m.Config().Host != "h" {
		t.Errorf("Config().Host = %q", m.Config().Host)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close() on unused manager error = %v", err)
	}
}

func TestManager_ReusesConnection(t *testing.T) {
	s := conductortest.New(t)
	s.Respond("list_dnas", "dnas_listed", [][]byte{})
	m := NewManager(testConfig(t, s))
	defer m.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		admin, err := m.Admin(ctx)
		if err != nil {
			t.Fatalf("Admin() error = %v", err)
		}
		if _, err := admin.ListDnas(ctx); err != nil {
			t.Fatalf("ListDnas() error = %v", err)
		}
	}

	if n := len(s.Origins()); n != 1 {
		t.Errorf("connections = %d, want 1", n)
	}
	if !m.IsConnected() {
		t.Error("IsConnected() = false with an open admin connection")
	}
}

func TestManager_RedialsDroppedConnection(t *testing.T) {
	s := conductortest.New(t)
	s.Respond("list_dnas", "dnas_listed", [][]byte{})
	s.DropAfter(1)
	m := NewManager(testConfig(t, s))
	defer m.Close()

	ctx := context.Background()
	call := func() error {
		admin, err := m.Admin(ctx)
		if err != nil {
			return err
		}
		_, err = admin.ListDnas(ctx)
		return err
	}

	if err := call(); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	if err := call(); err == nil {
		t.Fatal("call on a dropped connection succeeded")
	}
	if err := call(); err != nil {
		t.Fatalf("call after redial error = %v", err)
	}
	if n := len(s.Origins()); n != 2 {
		t.Errorf("connections = %d, want 2", n)
	}
}

func TestManager_Close(t *testing.T) {
	s := conductortest.New(t)
	m := NewManager(testConfig(t, s))

	ctx := context.Background()
	admin, err := m.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin() error = %v", err)
	}
	if _, err := m.App(ctx); err != nil {
		t.Fatalf("App() error = %v", err)
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if m.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
	if admin.Conn().Alive() {
		t.Error("admin connection still alive after Close")
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestManager_Reconfigure(t *testing.T) {
	a := conductortest.New(t)
	b := conductortest.New(t)
	a.Respond("list_dnas", "dnas_listed", [][]byte{})
	b.Respond("list_dnas", "dnas_listed", [][]byte{})

	m := NewManager(testConfig(t, a))
	defer m.Close()

	ctx := context.Background()
	admin, err := m.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin() error = %v", err)
	}
	if _, err := admin.ListDnas(ctx); err != nil {
		t.Fatalf("ListDnas() error = %v", err)
	}

	if err := m.Reconfigure(testConfig(t, b)); err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	admin, err = m.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin() after Reconfigure error = %v", err)
	}
	if _, err := admin.ListDnas(ctx); err != nil {
		t.Fatalf("ListDnas() after Reconfigure error = %v", err)
	}
	if len(b.Calls()) != 1 {
		t.Errorf("second conductor calls = %v, want one", b.Calls())
	}
}

func TestManager_CallContext(t *testing.T) {
	m := NewManager(Config{Timeout: time.Minute})
	ctx, cancel := m.CallContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("CallContext() has no deadline")
	}
	if until := time.Until(deadline); until <= 0 || until > time.Minute {
		t.Errorf("deadline in %v, want within a minute", until)
	}
}

func TestWithAdmin_ClosesOnError(t *testing.T) {
	s := conductortest.New(t)
	var conn *Conn
	wantErr := errors.New("boom")

	err := WithAdmin(context.Background(), testConfig(t, s), func(_ context.Context, a *AdminClient) error {
		conn = a.Conn()
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("WithAdmin() error = %v, want %v", err, wantErr)
	}
	if conn == nil || conn.Alive() {
		t.Error("WithAdmin() should close the connection when fn fails")
	}
}

func TestWithAdmin_DialError(t *testing.T) {
	called := false
	err := WithAdmin(context.Background(), Config{Host: "127.0.0.1", AdminPort: 1, Timeout: time.Second, Logger: quietLogger(t)},
		func(context.Context, *AdminClient) error {
			called = true
			return nil
		})
	if !errors.Is(err, domain.ErrConnectionFailed) {
		t.Errorf("WithAdmin() error = %v, want ErrConnectionFailed", err)
	}
	if called {
		t.Error("fn should not run when dialing fails")
	}
}
