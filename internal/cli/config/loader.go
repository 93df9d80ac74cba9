package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/internal/infra/confloader"
)

// EnvPrefix prefixes environment overrides, e.g. HCSTATE_ADMIN_PORT.
const EnvPrefix = confloader.DefaultEnvPrefix

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".hc-state", "cli.yaml")
}

// DefaultHistoryPath returns the default REPL history file path.
func DefaultHistoryPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".hc-state", "history")
}

// Load reads defaults, then the file at path, then HCSTATE_* environment
// variables. A missing file is not an error.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	defaults, err := toMap(Default())
	if err != nil {
		return nil, domain.ErrConfigLoad.Wrap(err)
	}

	cfg := &CLIConfig{}
	err = confloader.Load(cfg,
		confloader.Map("defaults", defaults),
		confloader.File(path),
		confloader.Env(EnvPrefix),
	)
	if err != nil {
		return nil, domain.ErrConfigLoad.WithDetails(err.Error()).WithCause(err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return cfg, nil
}

// Save writes cfg as YAML, readable only by the owner.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return domain.ErrConfigSave.Wrap(err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return domain.ErrConfigSave.Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, ".cli.yaml.*")
	if err != nil {
		return domain.ErrConfigSave.Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return domain.ErrConfigSave.Wrap(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domain.ErrConfigSave.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return domain.ErrConfigSave.Wrap(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return domain.ErrConfigSave.Wrap(err)
	}
	return nil
}

// Merge lays flag values over cfg. Keys use the koanf names ("admin_port",
// "profiles.local.host"); values may be strings, as they come from flags.
func Merge(cfg *CLIConfig, flags map[string]any) (*CLIConfig, error) {
	if len(flags) == 0 {
		out := *cfg
		return &out, nil
	}

	base, err := toMap(cfg)
	if err != nil {
		return nil, domain.ErrConfigInvalid.Wrap(err)
	}

	out := &CLIConfig{}
	if err := confloader.Load(out, confloader.Map("config", base), confloader.Map("flags", flags)); err != nil {
		return nil, domain.ErrConfigInvalid.Wrap(err)
	}
	if out.Profiles == nil {
		out.Profiles = make(map[string]Profile)
	}
	return out, nil
}

// Set assigns one key, validates the result and returns it.
func Set(cfg *CLIConfig, key, value string) (*CLIConfig, error) {
	if !IsKey(key) {
		return nil, domain.ErrInvalidArgument.WithDetailsf("unknown config key %q", key)
	}
	out, err := Merge(cfg, map[string]any{key: value})
	if err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// toMap converts cfg to the nested map form koanf loads, using the YAML
// field names.
func toMap(cfg *CLIConfig) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
