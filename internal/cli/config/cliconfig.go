// Package config defines the CLI configuration structure.
package config

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/internal/telemetry/logger"
)

// Output formats.
var outputFormats = []string{"table", "json", "yaml"}

// CLIConfig is the configuration for hc-state.
type CLIConfig struct {
	// Conductor endpoint
	Host      string `koanf:"host" yaml:"host"`
	AdminPort int    `koanf:"admin_port" yaml:"admin_port"`
	AppPort   int    `koanf:"app_port" yaml:"app_port"`
	Origin    string `koanf:"origin" yaml:"origin,omitempty"`

	// Transport security
	TLS        bool   `koanf:"tls" yaml:"tls"`
	CAFile     string `koanf:"ca_file" yaml:"ca_file,omitempty"`
	ClientCert string `koanf:"client_cert" yaml:"client_cert,omitempty"`
	ClientKey  string `koanf:"client_key" yaml:"client_key,omitempty"`
	AppToken   string `koanf:"app_token" yaml:"app_token,omitempty"` // base64

	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`

	// Presentation and diagnostics
	DefaultOutput string `koanf:"default_output" yaml:"default_output"` // table, json, yaml
	LogLevel      string `koanf:"log_level" yaml:"log_level"`
	HistoryFile   string `koanf:"history_file" yaml:"history_file,omitempty"`
	MetricsFile   string `koanf:"metrics_file" yaml:"metrics_file,omitempty"`

	// Named conductor endpoints; Profile selects one.
	Profile  string             `koanf:"profile" yaml:"profile,omitempty"`
	Profiles map[string]Profile `koanf:"profiles" yaml:"profiles,omitempty"`
}

// Profile overrides the endpoint settings of CLIConfig. Zero fields keep
// the top-level value.
type Profile struct {
	Host      string `koanf:"host" yaml:"host,omitempty"`
	AdminPort int    `koanf:"admin_port" yaml:"admin_port,omitempty"`
	AppPort   int    `koanf:"app_port" yaml:"app_port,omitempty"`
	Origin    string `koanf:"origin" yaml:"origin,omitempty"`
	TLS       bool   `koanf:"tls" yaml:"tls,omitempty"`
	CAFile    string `koanf:"ca_file" yaml:"ca_file,omitempty"`
	AppToken  string `koanf:"app_token" yaml:"app_token,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Host:          "localhost",
		AdminPort:     4444,
		AppPort:       8888,
		Timeout:       30 * time.Second,
		DefaultOutput: "table",
		LogLevel:      "warn",
		Profiles:      make(map[string]Profile),
	}
}

// Keys lists the settable top-level keys.
func Keys() []string {
	keys := []string{
		"host", "admin_port", "app_port", "origin",
		"tls", "ca_file", "client_cert", "client_key", "app_token",
		"timeout", "default_output", "log_level", "history_file", "metrics_file",
		"profile",
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key can be set with Set. Profile fields are
// addressed as profiles.<name>.<field>.
func IsKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	parts := strings.Split(key, ".")
	if len(parts) == 3 && parts[0] == "profiles" && parts[1] != "" {
		switch parts[2] {
		case "host", "admin_port", "app_port", "origin", "tls", "ca_file", "app_token":
			return true
		}
	}
	return false
}

// ApplyProfile returns a copy of c with the active profile's fields laid
// over the top-level ones. With no active profile the copy is unchanged.
func (c *CLIConfig) ApplyProfile() (*CLIConfig, error) {
	out := *c
	if c.Profile == "" {
		return &out, nil
	}
	p, ok := c.Profiles[c.Profile]
	if !ok {
		return nil, domain.ErrConfigInvalid.WithDetailsf("unknown profile %q", c.Profile)
	}

	if p.Host != "" {
		out.Host = p.Host
	}
	if p.AdminPort != 0 {
		out.AdminPort = p.AdminPort
	}
	if p.AppPort != 0 {
		out.AppPort = p.AppPort
	}
	if p.Origin != "" {
		out.Origin = p.Origin
	}
	if p.TLS {
		out.TLS = true
	}
	if p.CAFile != "" {
		out.CAFile = p.CAFile
	}
	if p.AppToken != "" {
		out.AppToken = p.AppToken
	}
	return &out, nil
}

// AppTokenBytes decodes the base64 app token. An empty token yields nil.
func (c *CLIConfig) AppTokenBytes() ([]byte, error) {
	if c.AppToken == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(c.AppToken)
	if err != nil {
		return nil, domain.ErrConfigInvalid.WithDetails("app_token is not base64").WithCause(err)
	}
	return b, nil
}

// Validate checks ports, formats and levels.
func (c *CLIConfig) Validate() error {
	if err := validatePort("admin_port", c.AdminPort); err != nil {
		return err
	}
	if err := validatePort("app_port", c.AppPort); err != nil {
		return err
	}
	for name, p := range c.Profiles {
		if p.AdminPort != 0 {
			if err := validatePort("profiles."+name+".admin_port", p.AdminPort); err != nil {
				return err
			}
		}
		if p.AppPort != 0 {
			if err := validatePort("profiles."+name+".app_port", p.AppPort); err != nil {
				return err
			}
		}
	}
	if c.Host == "" {
		return domain.ErrConfigInvalid.WithDetails("host is empty")
	}
	if c.Timeout <= 0 {
		return domain.ErrConfigInvalid.WithDetailsf("timeout must be positive, got %s", c.Timeout)
	}
	if !contains(outputFormats, c.DefaultOutput) {
		return domain.ErrConfigInvalid.WithDetailsf("default_output %q, want one of %s", c.DefaultOutput, strings.Join(outputFormats, ", "))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return domain.ErrConfigInvalid.WithDetailsf("log_level %q, want debug, info, warn or error", c.LogLevel)
	}
	if c.Profile != "" {
		if _, ok := c.Profiles[c.Profile]; !ok {
			return domain.ErrConfigInvalid.WithDetailsf("unknown profile %q", c.Profile)
		}
	}
	if _, err := c.AppTokenBytes(); err != nil {
		return err
	}
	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("%s %d out of range 1-65535", name, port))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
