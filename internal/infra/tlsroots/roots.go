package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCertsFound is returned when a CA path holds no PEM certificates.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found")

	// ErrIncompleteKeyPair is returned when only one half of a client key
	// pair is configured.
	ErrIncompleteKeyPair = errors.New("tlsroots: client cert and key must be set together")
)

// Options selects the trust material for a conductor connection.
type Options struct {
	// CAPath is a PEM file, or a directory of .pem/.crt files, trusted in
	// addition to the system roots.
	CAPath string

	CertFile string
	KeyFile  string
}

// ClientConfig returns a TLS 1.2+ client configuration for opts.
func ClientConfig(opts Options) (*tls.Config, error) {
	roots, err := Load(opts.CAPath)
	if err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
	}

	switch {
	case opts.CertFile == "" && opts.KeyFile == "":
	case opts.CertFile == "" || opts.KeyFile == "":
		return nil, ErrIncompleteKeyPair
	default:
		pair, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: load client key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}
	return cfg, nil
}

// Load returns the system roots extended with the certificates under
// caPath. An empty caPath yields the system roots alone; when those are
// unavailable an empty pool is used.
func Load(caPath string) (*x509.CertPool, error) {
	roots, err := x509.SystemCertPool()
	if err != nil || roots == nil {
		roots = x509.NewCertPool()
	}
	if caPath == "" {
		return roots, nil
	}

	info, err := os.Stat(caPath)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: %w", err)
	}
	files := []string{caPath}
	if info.IsDir() {
		if files, err = pemFiles(caPath); err != nil {
			return nil, err
		}
	}

	added := 0
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: %w", err)
		}
		if roots.AppendCertsFromPEM(data) {
			added++
		}
	}
	if added == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCertsFound, caPath)
	}
	return roots, nil
}

func pemFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pem", ".crt":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
