package diameter

import (
	"fmt"
	"sync/atomic"

	"github.com/rzbill/radgw/pkg/id"
)

// Session is per-exchange state. The gateway is stateless across exchanges:
// a session is created when the outbound message is first built and must be
// destroyed exactly once, either on an error exit before dispatch or inside
// the answer callback.
type Session struct {
	sid       string
	destroyed atomic.Bool
}

var sessionIDs = id.NewGenerator()

// NewSession creates a session with an RFC 6733 style Session-Id:
// originHost;high;low.
func NewSession(originHost string) *Session {
	high, low := sessionIDs.Next().Parts()
	return &Session{sid: fmt.Sprintf("%s;%d;%d", originHost, high, low)}
}

// ID returns the Session-Id value.
func (s *Session) ID() string { return s.sid }

// Destroy releases the session. Destroying twice is a bug in the caller's
// ownership handling and reports an error.
func (s *Session) Destroy() error {
	if !s.destroyed.CompareAndSwap(false, true) {
		return fmt.Errorf("diameter: session %s destroyed twice", s.sid)
	}
	return nil
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool { return s.destroyed.Load() }
