package command

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/yndnr/hcstate-go/internal/cli/config"
	"github.com/yndnr/hcstate-go/internal/core/domain"
)

func TestConfigPath(t *testing.T) {
	h := newHarness(t)

	if err := h.runRaw("--config", h.configPath, "config", "path"); err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if strings.TrimSpace(h.stdout.String()) != h.configPath {
		t.Errorf("config path = %q, want %q", h.stdout.String(), h.configPath)
	}
}

func TestConfigInit(t *testing.T) {
	h := newHarness(t)

	if err := h.runRaw("--config", h.configPath, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "Wrote "+h.configPath) {
		t.Errorf("output = %q", h.stdout.String())
	}
	info, err := os.Stat(h.configPath)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	cfg, err := config.Load(h.configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AdminPort != 4444 || cfg.AppPort != 8888 {
		t.Errorf("ports = %d/%d, want defaults", cfg.AdminPort, cfg.AppPort)
	}

	err = h.runRaw("--config", h.configPath, "config", "init")
	if !errors.Is(err, domain.ErrConfigSave) {
		t.Errorf("second init error = %v, want ErrConfigSave", err)
	}
	if err := h.runRaw("--config", h.configPath, "config", "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestConfigSetShow(t *testing.T) {
	h := newHarness(t)

	if err := h.runRaw("--config", h.configPath, "config", "set", "admin_port", "5555"); err != nil {
		t.Fatalf("config set error = %v", err)
	}
	if err := h.runRaw("--config", h.configPath, "config", "set", "profiles.prod.host", "prod.example"); err != nil {
		t.Fatalf("config set profile error = %v", err)
	}

	if err := h.runRaw("--config", h.configPath, "config", "show"); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"admin_port: 5555", "host: prod.example", "timeout: 30s"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	h := newHarness(t)

	err := h.runRaw("--config", h.configPath, "config", "set", "no_such_key", "1")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("unknown key error = %v, want ErrInvalidArgument", err)
	}
	err = h.runRaw("--config", h.configPath, "config", "set", "admin_port")
	if !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("missing value error = %v, want ErrMissingArgument", err)
	}
	err = h.runRaw("--config", h.configPath, "config", "set", "admin_port", "0")
	if !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("out of range error = %v, want ErrConfigInvalid", err)
	}
	if _, statErr := os.Stat(h.configPath); statErr == nil {
		t.Error("failed sets should not create the config file")
	}
}

func TestConfigShow_RedactsTokens(t *testing.T) {
	h := newHarness(t)
	writeFile(t, h.configPath, "app_token: c2VjcmV0\nprofiles:\n  prod:\n    app_token: b3RoZXI=\n")

	for _, format := range []string{"yaml", "json"} {
		if err := h.runRaw("--config", h.configPath, "-o", format, "config", "show"); err != nil {
			t.Fatalf("config show -o %s error = %v", format, err)
		}
		out := h.stdout.String()
		if strings.Contains(out, "c2VjcmV0") || strings.Contains(out, "b3RoZXI=") {
			t.Errorf("-o %s leaks a token:\n%s", format, out)
		}
		if strings.Count(out, redacted) != 2 {
			t.Errorf("-o %s should redact both tokens:\n%s", format, out)
		}
	}
}
