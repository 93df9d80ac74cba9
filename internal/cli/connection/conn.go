package connection

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/hcstate-go/internal/cli/connection/wire"
	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/internal/infra/buildinfo"
	"github.com/yndnr/hcstate-go/internal/telemetry/logger"
	"github.com/yndnr/hcstate-go/internal/telemetry/metric"
)

// Interface names, used in logs and metric labels.
const (
	InterfaceAdmin = "admin"
	InterfaceApp   = "app"
)

// DialOptions configures one WebSocket connection.
type DialOptions struct {
	// URL is the ws:// or wss:// endpoint.
	URL string
	// Interface is InterfaceAdmin or InterfaceApp.
	Interface string
	// Origin is sent on the upgrade request. Conductors reject
	// connections whose origin is not in the interface's allow list.
	Origin string
	// TLSConfig is used for wss:// URLs.
	TLSConfig *tls.Config
	// HandshakeTimeout bounds the upgrade. Zero means 10s.
	HandshakeTimeout time.Duration
	Logger           logger.Logger
	Metrics          *metric.Registry
}

// Conn is a single request/response WebSocket to a conductor interface.
// Requests may be issued from several goroutines; a reader goroutine
// routes each response to its caller by request id.
type Conn struct {
	iface   string
	url     string
	ws      *websocket.Conn
	logger  logger.Logger
	metrics *metric.Registry

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan reply
	readErr error

	closed    chan struct{}
	closeOnce sync.Once
	readDone  chan struct{}
}

type reply struct {
	data []byte
}

// Dial opens a connection and starts its reader.
func Dial(ctx context.Context, opts DialOptions) (*Conn, error) {
	log := opts.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log = log.With("interface", opts.Interface, "url", opts.URL)

	timeout := opts.HandshakeTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
		TLSClientConfig:  opts.TLSConfig,
	}

	header := http.Header{}
	header.Set("User-Agent", buildinfo.UserAgent())
	if opts.Origin != "" {
		header.Set("Origin", opts.Origin)
	}

	ws, resp, err := dialer.DialContext(ctx, opts.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		outcome := metric.OutcomeTransportErr
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = metric.OutcomeTimeout
		}
		opts.Metrics.ObserveConnect(opts.Interface, outcome)
		log.Debug("dial failed", "error", err)
		if resp != nil {
			return nil, domain.ErrConnectionFailed.WithDetailsf("%s: handshake rejected with %s", opts.URL, resp.Status).WithCause(err)
		}
		return nil, domain.ErrConnectionFailed.WithDetailsf("%s: %v", opts.URL, err).WithCause(err)
	}
	opts.Metrics.ObserveConnect(opts.Interface, metric.OutcomeOK)
	log.Debug("connected")

	c := &Conn{
		iface:    opts.Interface,
		url:      opts.URL,
		ws:       ws,
		logger:   log,
		metrics:  opts.Metrics,
		pending:  make(map[uint64]chan reply),
		closed:   make(chan struct{}),
		readDone: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Interface returns the interface name the connection was dialed for.
func (c *Conn) Interface() string {
	return c.iface
}

// URL returns the endpoint the connection was dialed to.
func (c *Conn) URL() string {
	return c.url
}

// Alive reports whether the connection can still carry requests.
func (c *Conn) Alive() bool {
	select {
	case <-c.closed:
		return false
	default:
		return true
	}
}

// Request sends call with args and waits for its result. It checks the
// result type against want and returns the still-encoded payload.
// Conductor-side failures come back as domain.ErrConductor.
func (c *Conn) Request(ctx context.Context, call string, args interface{}, want string) (wire.Raw, error) {
	start := time.Now()
	raw, outcome, err := c.roundTrip(ctx, call, args, want)
	c.metrics.ObserveRPC(c.iface, call, outcome, time.Since(start))

	log := logger.L(ctx).With("interface", c.iface, "call", call)
	if err != nil {
		log.Debug("request failed", "outcome", outcome, "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	log.Debug("request finished", "elapsed", time.Since(start), "bytes", len(raw))
	return raw, nil
}

func (c *Conn) roundTrip(ctx context.Context, call string, args interface{}, want string) (wire.Raw, string, error) {
	ch := make(chan reply, 1)

	c.mu.Lock()
	if c.readErr != nil {
		err := c.readErr
		c.mu.Unlock()
		return nil, metric.OutcomeTransportErr, err
	}
	if !c.Alive() {
		c.mu.Unlock()
		return nil, metric.OutcomeTransportErr, domain.ErrConnectionClosed
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()
	defer c.forget(id)

	frame, err := wire.EncodeRequest(id, call, args)
	if err != nil {
		return nil, metric.OutcomeTransportErr, domain.ErrInvalidArgument.Wrap(err)
	}
	if err := c.write(ctx, frame); err != nil {
		return nil, metric.OutcomeTransportErr, domain.ErrConnectionFailed.Wrap(err)
	}

	select {
	case r := <-ch:
		return c.unpack(call, want, r.data)
	case <-c.closed:
		c.mu.Lock()
		err := c.readErr
		c.mu.Unlock()
		if err == nil {
			err = domain.ErrConnectionClosed
		}
		return nil, metric.OutcomeTransportErr, err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, metric.OutcomeTimeout, domain.ErrTimeout.WithDetailsf("%s on %s interface", call, c.iface).WithCause(ctx.Err())
		}
		return nil, metric.OutcomeTransportErr, ctx.Err()
	}
}

func (c *Conn) unpack(call, want string, data []byte) (wire.Raw, string, error) {
	res, err := wire.DecodeResult(data)
	if err != nil {
		return nil, metric.OutcomeTransportErr, domain.ErrUnexpectedResponse.Wrap(err)
	}

	if res.Type == wire.ResultError {
		var ev wire.ErrorValue
		if err := wire.DecodeValue(res.Value, &ev); err != nil {
			return nil, metric.OutcomeConductorErr, domain.ErrConductor.WithDetailsf("%s: undecodable error payload", call)
		}
		return nil, metric.OutcomeConductorErr, domain.ErrConductor.WithDetailsf("%s: %s: %s", call, ev.Type, ev.Message())
	}

	if want != "" && res.Type != want {
		return nil, metric.OutcomeConductorErr, domain.ErrUnexpectedResponse.WithDetailsf("%s answered with %q, want %q", call, res.Type, want)
	}
	return res.Value, metric.OutcomeOK, nil
}

// Send writes a frame that expects no response.
func (c *Conn) Send(ctx context.Context, frame []byte) error {
	if err := c.write(ctx, frame); err != nil {
		return domain.ErrConnectionFailed.Wrap(err)
	}
	return nil
}

func (c *Conn) write(ctx context.Context, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	// A zero deadline clears any previous one.
	deadline, _ := ctx.Deadline()
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, frame)
}

func (c *Conn) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Conn) readLoop() {
	defer close(c.readDone)

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}

		env, err := wire.DecodeEnvelope(frame)
		if err != nil {
			c.logger.Warn("dropping undecodable frame", "error", err, "bytes", len(frame))
			continue
		}

		switch env.Type {
		case wire.TypeResponse:
			c.mu.Lock()
			ch, ok := c.pending[env.ID]
			c.mu.Unlock()
			if !ok {
				c.logger.Debug("response for unknown request", "id", env.ID)
				continue
			}
			select {
			case ch <- reply{data: env.Data}:
			default:
				c.logger.Debug("duplicate response", "id", env.ID)
			}
		case wire.TypeSignal:
			c.logger.Debug("ignoring signal", "bytes", len(env.Data))
		default:
			c.logger.Debug("ignoring frame", "type", env.Type)
		}
	}
}

// fail records why the reader stopped and wakes every waiting caller.
func (c *Conn) fail(err error) {
	c.mu.Lock()
	if c.readErr == nil {
		select {
		case <-c.closed:
			c.readErr = domain.ErrConnectionClosed
		default:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.readErr = domain.ErrConnectionClosed.WithDetails("closed by conductor")
			} else {
				c.readErr = domain.ErrConnectionFailed.Wrap(err)
			}
		}
	}
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.closed) })
}

// Close sends a close frame and releases the socket. It is safe to call
// more than once and after the conductor has dropped the connection.
func (c *Conn) Close() error {
	first := false
	c.closeOnce.Do(func() {
		first = true
		close(c.closed)
	})
	if first {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
	}

	err := c.ws.Close()
	<-c.readDone
	c.logger.Debug("closed")
	if !first {
		return nil
	}
	return err
}
