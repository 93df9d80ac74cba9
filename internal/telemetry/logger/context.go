package logger

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

type scopeKey struct{}

// scope is what a context carries: the logger and the ID of the command
// line it belongs to.
type scope struct {
	log   Logger
	reqID string
}

func scopeOf(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l Logger) context.Context {
	s := scopeOf(ctx)
	s.log = l
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithRequestID returns a context tagged with id.
func WithRequestID(ctx context.Context, id string) context.Context {
	s := scopeOf(ctx)
	s.reqID = id
	return context.WithValue(ctx, scopeKey{}, s)
}

// RequestID returns the ID set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	return scopeOf(ctx).reqID
}

// FromContext returns the logger set by WithLogger, or a warn-level
// stderr logger.
func FromContext(ctx context.Context) Logger {
	if l := scopeOf(ctx).log; l != nil {
		return l
	}
	return fallback()
}

// L is FromContext tagged with the context's request_id.
func L(ctx context.Context) Logger {
	s := scopeOf(ctx)
	l := FromContext(ctx)
	if s.reqID != "" {
		l = l.With("request_id", s.reqID)
	}
	return l
}

// NewRequestID returns a ULID for one CLI invocation or REPL line, so a
// session's log lines sort by ID.
func NewRequestID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
