package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/diameter"
	"github.com/rzbill/radgw/internal/journal"
	"github.com/rzbill/radgw/internal/radius"
	logpkg "github.com/rzbill/radgw/pkg/log"
)

// Authenticator validates message integrity against the client's shared
// state.
type Authenticator interface {
	Verify(m *radius.Message, cli *clients.Client) error
}

// DuplicateChecker reports whether a request is a retransmission. A
// duplicate ends the exchange without an answer.
type DuplicateChecker interface {
	Seen(ctx context.Context, cli *clients.Client, m *radius.Message, nowMs int64) (bool, error)
}

// OriginChecker validates that the message's claimed identity matches the
// client's connection identity.
type OriginChecker interface {
	Check(m *radius.Message, cli *clients.Client) error
}

// Translator is the plugin chain consulted for both directions of
// translation. TranslateRequest returns handled=true when a plugin consumed
// the request entirely; no answer is built in that case.
type Translator interface {
	TranslateRequest(m *radius.Message, sess *diameter.Session, out *diameter.Message, cli *clients.Client) (handled bool, err error)
	TranslateAnswer(orig *radius.Message, sess *diameter.Session, ans *diameter.Message, out *radius.Message, cli *clients.Client) error
}

// Validator performs structural/dictionary validation of outbound messages.
type Validator interface {
	Validate(m *diameter.Message) error
}

// AnswerCallback is invoked exactly once per successful dispatch, on a
// thread the messaging layer chooses. ans is nil on transport-level failure.
type AnswerCallback func(rec *CorrelationRecord, ans *diameter.Message)

// Dispatcher is the async send primitive of the target-protocol stack.
type Dispatcher interface {
	Dispatch(m *diameter.Message, cb AnswerCallback, rec *CorrelationRecord) error
}

// Deliverer transmits a finished answer back to the originating client.
type Deliverer interface {
	Deliver(ans *radius.Message, orig *radius.Message, cli *clients.Client) error
}

// Options configures a Gateway.
type Options struct {
	Workers          int
	QueueCapacity    int
	DrainOnShutdown  bool
	DrainTimeout     time.Duration
	OriginHost       string
	OriginRealm      string
	DestinationRealm string

	Logger     logpkg.Logger
	Auth       Authenticator
	Duplicates DuplicateChecker
	Origin     OriginChecker
	Chain      Translator
	Validator  Validator
	Dispatcher Dispatcher
	Deliverer  Deliverer
	Journal    *journal.Journal      // optional
	Registry   prometheus.Registerer // optional
}

// Gateway is the concurrent translation core: a bounded job queue drained by
// a fixed worker pool, with answers correlated back through the dispatcher's
// callback.
type Gateway struct {
	opts    Options
	log     logpkg.Logger
	queue   *Queue
	metrics *Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// clientAuth delegates to the client's own shared-secret verification.
type clientAuth struct{}

func (clientAuth) Verify(m *radius.Message, cli *clients.Client) error {
	return cli.VerifyAuthenticator(m)
}

// clientOrigin delegates to the client's identity consistency check.
type clientOrigin struct{}

func (clientOrigin) Check(m *radius.Message, cli *clients.Client) error {
	return cli.CheckOrigin(m)
}

// New validates options and builds a Gateway. Start must be called before
// items are processed.
func New(opts Options) (*Gateway, error) {
	if opts.Workers < 1 {
		return nil, errors.New("gateway: Workers must be >= 1")
	}
	if opts.QueueCapacity < 1 {
		return nil, errors.New("gateway: QueueCapacity must be >= 1")
	}
	if opts.Chain == nil {
		return nil, errors.New("gateway: Chain is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("gateway: Dispatcher is required")
	}
	if opts.Deliverer == nil {
		return nil, errors.New("gateway: Deliverer is required")
	}
	if opts.Duplicates == nil {
		return nil, errors.New("gateway: Duplicates is required")
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NopLogger{}
	}
	if opts.Auth == nil {
		opts.Auth = clientAuth{}
	}
	if opts.Origin == nil {
		opts.Origin = clientOrigin{}
	}
	if opts.Validator == nil {
		opts.Validator = diameter.Default()
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		opts:    opts,
		log:     opts.Logger.With(logpkg.Component("gateway")),
		queue:   NewQueue(opts.QueueCapacity),
		metrics: NewMetrics(opts.Registry),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start spawns the worker pool.
func (g *Gateway) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return errors.New("gateway: already started")
	}
	g.started = true
	for i := 0; i < g.opts.Workers; i++ {
		g.wg.Add(1)
		go g.worker(i)
	}
	g.log.Info("worker pool started",
		logpkg.Int("workers", g.opts.Workers),
		logpkg.Int("queue_capacity", g.opts.QueueCapacity))
	return nil
}

// Enqueue hands an inbound (message, client) pair to the worker pool. It
// never blocks; on error the caller keeps ownership of the message and the
// client reference. Safe to call concurrently from multiple receiver
// contexts.
func (g *Gateway) Enqueue(m *radius.Message, cli *clients.Client) error {
	if err := g.queue.Enqueue(WorkItem{Msg: m, Client: cli}); err != nil {
		g.metrics.QueueRejected.Inc()
		return err
	}
	g.metrics.QueueDepth.Set(float64(g.queue.Len()))
	return nil
}

// Stop shuts the pool down. Intake closes immediately; queued items are
// then either drained to completion (DrainOnShutdown, bounded by
// DrainTimeout) or discarded with their resources released. Answers still
// in flight at the dispatcher are handled by their callbacks regardless.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	if !g.started || g.stopped {
		g.mu.Unlock()
		return errors.New("gateway: not running")
	}
	g.stopped = true
	g.mu.Unlock()

	g.queue.Close()

	if g.opts.DrainOnShutdown {
		done := make(chan struct{})
		go func() { g.wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(g.opts.DrainTimeout):
			g.log.Warn("drain timeout reached, aborting remaining work",
				logpkg.Int("queued", g.queue.Len()))
			g.cancel()
			<-done
		case <-ctx.Done():
			g.cancel()
			<-done
		}
	} else {
		g.cancel()
		g.wg.Wait()
	}

	// Release whatever was still queued when workers exited.
	discarded := 0
	for {
		wi, ok := g.queue.TryDrain()
		if !ok {
			break
		}
		wi.Client.Release()
		g.journalOutcome(wi.Msg, wi.Client, journal.OutcomeDiscarded, 0, "shutdown")
		g.metrics.Exchanges.WithLabelValues("discarded").Inc()
		discarded++
	}
	if discarded > 0 {
		g.log.Info("discarded queued items at shutdown", logpkg.Int("count", discarded))
	}
	g.cancel()
	g.log.Info("worker pool stopped")
	return nil
}

// Stats is a point-in-time snapshot for the admin surface.
type Stats struct {
	Workers       int `json:"workers"`
	QueueDepth    int `json:"queueDepth"`
	QueueCapacity int `json:"queueCapacity"`
}

// Stats reports the pool and queue state.
func (g *Gateway) Stats() Stats {
	return Stats{
		Workers:       g.opts.Workers,
		QueueDepth:    g.queue.Len(),
		QueueCapacity: g.opts.QueueCapacity,
	}
}

// journalOutcome records a terminal state when a journal is configured.
func (g *Gateway) journalOutcome(m *radius.Message, cli *clients.Client, outcome journal.Outcome, violations int, detail string) {
	if g.opts.Journal == nil {
		return
	}
	e := journal.Entry{
		Outcome:    outcome,
		Violations: violations,
		Detail:     detail,
	}
	if m != nil {
		e.Command = uint8(m.Code)
		e.Identifier = m.Identifier
	}
	if cli != nil {
		e.Client = cli.Addr()
	}
	if _, err := g.opts.Journal.Append(context.Background(), e); err != nil {
		g.log.Warn("journal append failed", logpkg.Err(err))
	}
}
