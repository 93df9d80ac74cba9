package connection

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/internal/infra/tlsroots"
	"github.com/yndnr/hcstate-go/internal/telemetry/logger"
	"github.com/yndnr/hcstate-go/internal/telemetry/metric"
)

// Defaults for a conductor on the local machine.
const (
	DefaultHost      = "localhost"
	DefaultAdminPort = 4444
	DefaultAppPort   = 8888
	DefaultTimeout   = 30 * time.Second
)

// Config describes how to reach a conductor.
type Config struct {
	Host      string
	AdminPort int
	AppPort   int
	Origin    string
	TLS       bool
	// CAFile is a PEM file or directory trusted on top of the system roots.
	CAFile string
	// ClientCert and ClientKey enable mutual TLS when both are set.
	ClientCert string
	ClientKey  string
	// AppToken is presented on every new app interface connection.
	AppToken []byte
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	Logger  logger.Logger
	Metrics *metric.Registry
}

// AdminURL returns the admin interface endpoint.
func (c Config) AdminURL() string {
	return c.url(c.AdminPort)
}

// AppURL returns the app interface endpoint.
func (c Config) AppURL() string {
	return c.url(c.AppPort)
}

func (c Config) url(port int) string {
	scheme := "ws"
	if c.TLS {
		scheme = "wss"
	}
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf("%s://%s/", scheme, net.JoinHostPort(host, strconv.Itoa(port)))
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) tlsConfig() (*tls.Config, error) {
	if !c.TLS {
		return nil, nil
	}
	cfg, err := tlsroots.ClientConfig(tlsroots.Options{
		CAPath:   c.CAFile,
		CertFile: c.ClientCert,
		KeyFile:  c.ClientKey,
	})
	if err != nil {
		return nil, domain.ErrConfigInvalid.Wrap(err)
	}
	return cfg, nil
}

// Manager owns the admin and app connections of one CLI session. Each
// connection is dialed on first use and reused until Close; one that the
// conductor dropped is redialed on the next call. A Manager is created
// and closed by its caller, never shared through package state.
type Manager struct {
	mu    sync.Mutex
	cfg   Config
	admin *Conn
	app   *Conn
}

// NewManager creates a connection manager.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Reconfigure replaces the configuration and closes open connections so
// the next call dials with the new settings.
func (m *Manager) Reconfigure(cfg Config) error {
	m.mu.Lock()
	m.cfg = cfg
	admin, app := m.admin, m.app
	m.admin, m.app = nil, nil
	m.mu.Unlock()
	return closeAll(admin, app)
}

// CallContext derives a context bounded by the request timeout.
func (m *Manager) CallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.Config().timeout())
}

// Admin returns a client for the admin interface, dialing if needed.
func (m *Manager) Admin(ctx context.Context) (*AdminClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.admin != nil && m.admin.Alive() {
		return NewAdminClient(m.admin), nil
	}
	conn, err := dialConfig(ctx, m.cfg, InterfaceAdmin)
	if err != nil {
		return nil, err
	}
	m.admin = conn
	return NewAdminClient(conn), nil
}

// App returns a client for the app interface, dialing and authenticating
// if needed.
func (m *Manager) App(ctx context.Context) (*AppClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.app != nil && m.app.Alive() {
		return NewAppClient(m.app), nil
	}
	conn, err := dialConfig(ctx, m.cfg, InterfaceApp)
	if err != nil {
		return nil, err
	}
	client := NewAppClient(conn)
	if len(m.cfg.AppToken) > 0 {
		if err := client.Authenticate(ctx, m.cfg.AppToken); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	m.app = conn
	return client, nil
}

// IsConnected reports whether any connection is open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.admin != nil && m.admin.Alive()) || (m.app != nil && m.app.Alive())
}

// Close closes both connections. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	admin, app := m.admin, m.app
	m.admin, m.app = nil, nil
	m.mu.Unlock()
	return closeAll(admin, app)
}

// WithAdmin dials the admin interface, runs fn, and closes the
// connection on every exit path.
func WithAdmin(ctx context.Context, cfg Config, fn func(context.Context, *AdminClient) error) error {
	conn, err := dialConfig(ctx, cfg, InterfaceAdmin)
	if err != nil {
		return err
	}
	defer conn.Close()

	callCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()
	return fn(callCtx, NewAdminClient(conn))
}

// WithApp dials and authenticates the app interface, runs fn, and closes
// the connection on every exit path.
func WithApp(ctx context.Context, cfg Config, fn func(context.Context, *AppClient) error) error {
	conn, err := dialConfig(ctx, cfg, InterfaceApp)
	if err != nil {
		return err
	}
	defer conn.Close()

	client := NewAppClient(conn)
	if len(cfg.AppToken) > 0 {
		if err := client.Authenticate(ctx, cfg.AppToken); err != nil {
			return err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()
	return fn(callCtx, client)
}

func dialConfig(ctx context.Context, cfg Config, iface string) (*Conn, error) {
	tlsCfg, err := cfg.tlsConfig()
	if err != nil {
		return nil, err
	}
	url := cfg.AdminURL()
	if iface == InterfaceApp {
		url = cfg.AppURL()
	}
	return Dial(ctx, DialOptions{
		URL:              url,
		Interface:        iface,
		Origin:           cfg.Origin,
		TLSConfig:        tlsCfg,
		HandshakeTimeout: cfg.timeout(),
		Logger:           cfg.Logger,
		Metrics:          cfg.Metrics,
	})
}

func closeAll(conns ...*Conn) error {
	var errs []error
	for _, c := range conns {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
