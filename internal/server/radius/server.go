// Package radiusserver is the UDP front end: it parses inbound packets,
// resolves the sending peer against the client table, and hands work to the
// gateway. It also implements the gateway's Deliverer, signing answers with
// the peer's secret and writing them back to the source address of the
// request they answer.
package radiusserver

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/radius"
	logpkg "github.com/rzbill/radgw/pkg/log"
)

// Intake is the gateway surface the server feeds.
type Intake interface {
	Enqueue(m *radius.Message, cli *clients.Client) error
}

// Options configures the UDP server.
type Options struct {
	Clients *clients.Table
	Logger  logpkg.Logger
	// ReplyTTL bounds how long a source address is remembered for a request
	// whose exchange never produces an answer.
	ReplyTTL time.Duration
	// MaxAttributes rejects packets with more attributes, 0 for no limit.
	MaxAttributes int
}

type pendingReply struct {
	addr *net.UDPAddr
	at   time.Time
}

// Server reads RADIUS packets off a UDP socket.
type Server struct {
	intake Intake
	opts   Options
	log    logpkg.Logger

	mu      sync.Mutex
	conn    *net.UDPConn
	pending map[*radius.Message]pendingReply
}

// New builds a server. SetIntake must be called before ListenAndServe; the
// gateway in turn needs the server as its Deliverer, so wiring happens in
// two steps.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logpkg.NopLogger{}
	}
	if opts.ReplyTTL <= 0 {
		opts.ReplyTTL = 30 * time.Second
	}
	return &Server{
		opts:    opts,
		log:     opts.Logger.With(logpkg.Component("radius-server")),
		pending: make(map[*radius.Message]pendingReply),
	}
}

// SetIntake connects the server to the gateway.
func (s *Server) SetIntake(in Intake) { s.intake = in }

// ListenAndServe reads packets until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", ua)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go s.evictLoop(ctx)

	s.log.Info("listening", logpkg.Str("addr", conn.LocalAddr().String()))
	buf := make([]byte, radius.MaxPacketLen)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.handlePacket(buf[:n], peer)
	}
}

// LocalAddr returns the bound address, nil before ListenAndServe.
func (s *Server) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Close unblocks ListenAndServe.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *Server) handlePacket(pkt []byte, peer *net.UDPAddr) {
	m, err := radius.Parse(pkt)
	if err != nil {
		s.log.Debug("unparseable packet dropped",
			logpkg.Str("peer", peer.String()), logpkg.Err(err))
		return
	}
	if s.opts.MaxAttributes > 0 && len(m.Attributes) > s.opts.MaxAttributes {
		s.log.Info("packet exceeds attribute limit, dropped",
			logpkg.Str("peer", peer.String()),
			logpkg.Int("attributes", len(m.Attributes)))
		return
	}
	// Peers are registered by IP; the source port changes per retransmit
	// burst and is only used for the reply.
	cli, err := s.opts.Clients.Acquire(peer.IP.String())
	if err != nil {
		s.log.Info("packet from unknown peer dropped",
			logpkg.Str("peer", peer.String()))
		return
	}

	s.mu.Lock()
	s.pending[m] = pendingReply{addr: peer, at: time.Now()}
	s.mu.Unlock()

	if err := s.intake.Enqueue(m, cli); err != nil {
		s.log.Warn("intake rejected packet",
			logpkg.Str("peer", peer.String()), logpkg.Err(err))
		s.forget(m)
		cli.Release()
	}
}

// Deliver signs the answer with the peer's secret and sends it to the
// source address of the request it answers.
func (s *Server) Deliver(ans *radius.Message, orig *radius.Message, cli *clients.Client) error {
	s.mu.Lock()
	pr, ok := s.pending[orig]
	delete(s.pending, orig)
	conn := s.conn
	s.mu.Unlock()
	if !ok || conn == nil {
		s.log.Warn("no reply address for answer",
			logpkg.Str("client", cli.Addr()),
			logpkg.Int("identifier", int(orig.Identifier)))
		return nil
	}
	wire, err := radius.SignResponse(ans, orig.Authenticator, cli.Secret())
	if err != nil {
		return err
	}
	_, err = conn.WriteToUDP(wire, pr.addr)
	return err
}

func (s *Server) forget(m *radius.Message) {
	s.mu.Lock()
	delete(s.pending, m)
	s.mu.Unlock()
}

// evictLoop drops reply addresses for exchanges that ended without an
// answer; their entries would otherwise accumulate forever.
func (s *Server) evictLoop(ctx context.Context) {
	t := time.NewTicker(s.opts.ReplyTTL / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cutoff := time.Now().Add(-s.opts.ReplyTTL)
			s.mu.Lock()
			for m, pr := range s.pending {
				if pr.at.Before(cutoff) {
					delete(s.pending, m)
				}
			}
			s.mu.Unlock()
		}
	}
}
