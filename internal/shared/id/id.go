// Package id provides centralized ID generation for the host bridge.
//
// IDs are ULIDs with a short type prefix so that log lines stay readable:
//   - sess_*: one shell session (a new one per spawn)
//   - surf_*: one attached front-end surface (a WebSocket connection)
//   - sub_*:  one listener subscription
//   - req_*:  one request / trace
//
// Entropy is monotonic, so IDs minted by one Generator sort in creation order
// even within the same millisecond.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies a shell session
type SessionID string

// SurfaceID identifies a front-end surface attached to the channel
type SurfaceID string

// SubscriptionID identifies a registered listener
type SubscriptionID string

// RequestID identifies a request
type RequestID string

const (
	SessionPrefix      = "sess"
	SurfacePrefix      = "surf"
	SubscriptionPrefix = "sub"
	RequestPrefix      = "req"
)

const separator = "_"

// Generator mints ULIDs. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

var shared = sync.OnceValue(func() *Generator { return NewGenerator() })

// Default returns the process-wide generator
func Default() *Generator {
	return shared()
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Next returns a new ULID
func (g *Generator) Next() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// Prefixed returns "<prefix>_<ulid>"
func (g *Generator) Prefixed(prefix string) string {
	return prefix + separator + g.Next().String()
}

// NewSessionID generates a new shell session ID
func NewSessionID() SessionID {
	return SessionID(Default().Prefixed(SessionPrefix))
}

// NewSurfaceID generates a new surface ID
func NewSurfaceID() SurfaceID {
	return SurfaceID(Default().Prefixed(SurfacePrefix))
}

// NewSubscriptionID generates a new subscription ID
func NewSubscriptionID() SubscriptionID {
	return SubscriptionID(Default().Prefixed(SubscriptionPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().Prefixed(RequestPrefix))
}

func (id SessionID) String() string      { return string(id) }
func (id SurfaceID) String() string      { return string(id) }
func (id SubscriptionID) String() string { return string(id) }
func (id RequestID) String() string      { return string(id) }
