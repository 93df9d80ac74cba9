// Package conductortest runs an in-process conductor interface for tests.
//
// A Server answers msgpack requests over a WebSocket using handlers
// registered per call name, and records what it received.
package conductortest

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/hcstate-go/internal/cli/connection/wire"
)

// Handler answers one call. It returns the result type and payload, or an
// error that is sent back as a conductor error.
type Handler func(value interface{}) (result string, payload interface{}, err error)

// Error is a conductor-side failure returned from a Handler.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Message
}

// Request is a call the server received.
type Request struct {
	Call  string
	Value interface{}
}

// Server is a fake conductor interface.
type Server struct {
	t        testing.TB
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu        sync.Mutex
	handlers  map[string]Handler
	requests  []Request
	origins   []string
	tokens    [][]byte
	delay     time.Duration
	dropAfter int
}

// New starts a server and registers its shutdown with t.Cleanup.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		t:        t,
		handlers: make(map[string]Handler),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

// Handle registers h for call.
func (s *Server) Handle(call string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[call] = h
}

// Respond registers a handler that always answers with result and payload.
func (s *Server) Respond(call, result string, payload interface{}) {
	s.Handle(call, func(interface{}) (string, interface{}, error) {
		return result, payload, nil
	})
}

// Fail registers a handler that always answers with a conductor error.
func (s *Server) Fail(call, kind, message string) {
	s.Handle(call, func(interface{}) (string, interface{}, error) {
		return "", nil, &Error{Kind: kind, Message: message}
	})
}

// SetDelay makes the server wait before every response.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// DropAfter makes the server close each connection after n requests.
func (s *Server) DropAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropAfter = n
}

// URL returns the ws:// endpoint.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// Host returns the listening host.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.srv.Listener.Addr().String())
	return host
}

// Port returns the listening port.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.srv.Listener.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Calls returns the names of the calls received so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.requests))
	for i, r := range s.requests {
		names[i] = r.Call
	}
	return names
}

// Origins returns the Origin header of each accepted connection.
func (s *Server) Origins() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.origins...)
}

// Tokens returns the app tokens presented via authenticate.
func (s *Server) Tokens() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.tokens...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	s.mu.Lock()
	s.origins = append(s.origins, r.Header.Get("Origin"))
	s.mu.Unlock()

	served := 0
	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			return
		}
		env, err := wire.DecodeEnvelope(frame)
		if err != nil {
			s.t.Errorf("conductortest: %v", err)
			return
		}

		switch env.Type {
		case wire.TypeAuthenticate:
			var p wire.AuthenticatePayload
			if err := wire.Unmarshal(env.Data, &p); err != nil {
				s.t.Errorf("conductortest: decode authenticate: %v", err)
				return
			}
			s.mu.Lock()
			s.tokens = append(s.tokens, p.Token)
			s.mu.Unlock()
			continue
		case wire.TypeRequest:
		default:
			continue
		}

		call, err := wire.DecodeCall(env.Data)
		if err != nil {
			s.t.Errorf("conductortest: %v", err)
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{Call: call.Type, Value: call.Value})
		h := s.handlers[call.Type]
		delay, dropAfter := s.delay, s.dropAfter
		s.mu.Unlock()

		if dropAfter > 0 && served >= dropAfter {
			return
		}
		served++

		if delay > 0 {
			time.Sleep(delay)
		}

		resp, err := s.answer(env.ID, call, h)
		if err != nil {
			s.t.Errorf("conductortest: encode response: %v", err)
			return
		}
		if err := ws.WriteMessage(websocket.BinaryMessage, resp); err != nil {
			return
		}
	}
}

func (s *Server) answer(id uint64, call wire.Call, h Handler) ([]byte, error) {
	if h == nil {
		return wire.EncodeResponse(id, wire.ResultError, wire.ErrorValue{
			Type:  "internal_error",
			Value: "unhandled call " + call.Type,
		})
	}

	result, payload, err := h(call.Value)
	if err != nil {
		kind, msg := "internal_error", err.Error()
		if ce, ok := err.(*Error); ok {
			kind, msg = ce.Kind, ce.Message
		}
		return wire.EncodeResponse(id, wire.ResultError, wire.ErrorValue{Type: kind, Value: msg})
	}
	return wire.EncodeResponse(id, result, payload)
}
