package gateway

import (
	"fmt"
	"time"

	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/diameter"
	"github.com/rzbill/radgw/internal/journal"
	"github.com/rzbill/radgw/internal/radius"
	logpkg "github.com/rzbill/radgw/pkg/log"
)

// worker drains the queue until it is closed and empty or the gateway
// context is cancelled. A failed item never takes the worker down; the item
// is released and the loop continues.
func (g *Gateway) worker(n int) {
	defer g.wg.Done()
	wlog := g.log.With(logpkg.Int("worker", n))
	for {
		wi, ok := g.queue.Dequeue(g.ctx)
		if !ok {
			return
		}
		g.metrics.QueueDepth.Set(float64(g.queue.Len()))
		g.process(wlog, wi)
	}
}

// process runs one item through the request pipeline. Every exit path
// accounts for the client reference and, once created, the session.
func (g *Gateway) process(wlog logpkg.Logger, wi WorkItem) {
	m, cli := wi.Msg, wi.Client
	mlog := wlog.With(
		logpkg.Str("client", cli.Addr()),
		logpkg.Str("command", m.Code.String()),
		logpkg.Int("identifier", int(m.Identifier)))

	// Integrity first: an unauthenticated message is dropped before any
	// state is touched.
	if err := g.opts.Auth.Verify(m, cli); err != nil {
		mlog.Info("authenticator check failed, discarding", logpkg.Err(err))
		g.discard(m, cli, "authenticator check failed")
		return
	}

	// Retransmissions end here. The original exchange, if still in flight,
	// will answer; a fresh translation would create a second session for the
	// same request.
	dup, err := g.opts.Duplicates.Seen(g.ctx, cli, m, time.Now().UnixMilli())
	if err != nil {
		mlog.Warn("duplicate check unavailable, skipping item", logpkg.Err(err))
		g.metrics.ResourceFails.Inc()
		cli.Release()
		return
	}
	if dup {
		mlog.Debug("retransmission, ignoring")
		g.journalOutcome(m, cli, journal.OutcomeDuplicate, 0, "")
		g.metrics.Exchanges.WithLabelValues("duplicate").Inc()
		cli.Release()
		return
	}

	if err := g.opts.Origin.Check(m, cli); err != nil {
		mlog.Info("origin check failed, discarding", logpkg.Err(err))
		g.discard(m, cli, "origin check failed")
		return
	}

	out, err := g.newBaseRequest(m)
	if err != nil {
		mlog.Info("cannot translate command, discarding", logpkg.Err(err))
		g.discard(m, cli, err.Error())
		return
	}
	sess := diameter.NewSession(g.opts.OriginHost)
	out.AVPs = append([]*diameter.AVP{
		diameter.NewAVP(diameter.AVPSessionID, diameter.FlagMandatory, 0, []byte(sess.ID())),
	}, out.AVPs...)
	slog := mlog.With(logpkg.Str("session", sess.ID()))

	handled, err := g.opts.Chain.TranslateRequest(m, sess, out, cli)
	if err != nil {
		slog.Warn("translation failed, discarding", logpkg.Err(err))
		g.abort(m, cli, sess, "translation failed")
		return
	}
	if handled {
		// A plugin answered or swallowed the request locally. Nothing goes
		// out, nothing is awaited.
		slog.Debug("request handled by plugin chain")
		g.journalOutcome(m, cli, journal.OutcomeHandled, 0, "")
		g.metrics.Exchanges.WithLabelValues("handled").Inc()
		g.destroySession(slog, sess)
		cli.Release()
		return
	}

	if problems := g.completeness(slog, m, out); problems > 0 {
		slog.Warn("request translation incomplete, discarding",
			logpkg.Int("problems", problems))
		g.abort(m, cli, sess, "incomplete translation")
		return
	}

	rec := newCorrelationRecord(m, cli, sess)
	if err := g.opts.Dispatcher.Dispatch(out, g.handleAnswer, rec); err != nil {
		slog.Warn("dispatch failed, discarding", logpkg.Err(err))
		g.abort(m, cli, sess, "dispatch failed")
		return
	}
	g.metrics.InFlight.Inc()
	g.metrics.Exchanges.WithLabelValues("dispatched").Inc()
	g.journalOutcome(m, cli, journal.OutcomeDispatched, 0, "")
	slog.Debug("request dispatched", logpkg.Str("token", rec.Token.String()))
}

// newBaseRequest maps the inbound command onto an outbound request and
// pre-populates the AVPs every exchange carries.
func (g *Gateway) newBaseRequest(m *radius.Message) (*diameter.Message, error) {
	var out *diameter.Message
	switch m.Code {
	case radius.CodeAccessRequest:
		out = diameter.NewRequest(diameter.CmdAA, diameter.AppNASREQ)
		appID := []byte{0, 0, 0, byte(diameter.AppNASREQ)}
		out.Add(diameter.NewAVP(diameter.AVPAuthAppID, diameter.FlagMandatory, 0, appID))
	case radius.CodeAccountingRequest:
		out = diameter.NewRequest(diameter.CmdAccounting, diameter.AppAccounting)
	default:
		return nil, fmt.Errorf("gateway: no translation for command %s", m.Code)
	}
	out.Add(diameter.NewAVP(diameter.AVPOriginHost, diameter.FlagMandatory, 0, []byte(g.opts.OriginHost)))
	out.Add(diameter.NewAVP(diameter.AVPOriginRealm, diameter.FlagMandatory, 0, []byte(g.opts.OriginRealm)))
	out.Add(diameter.NewAVP(diameter.AVPDestRealm, diameter.FlagMandatory, 0, []byte(g.opts.DestinationRealm)))
	return out, nil
}

// completeness applies the strict outbound policy: the built message must
// pass dictionary validation and every inbound attribute must have been
// consumed by some plugin. Each problem is logged individually; the count
// decides the exchange's fate.
func (g *Gateway) completeness(slog logpkg.Logger, m *radius.Message, out *diameter.Message) int {
	problems := 0
	if err := g.opts.Validator.Validate(out); err != nil {
		slog.Warn("outbound message fails validation", logpkg.Err(err))
		problems++
	}
	for _, i := range m.Unconsumed() {
		slog.Warn("attribute not translated by any plugin",
			logpkg.Int("index", i),
			logpkg.Str("attribute", m.Attributes[i].Type.String()))
		problems++
	}
	return problems
}

// discard ends an exchange before a session exists.
func (g *Gateway) discard(m *radius.Message, cli *clients.Client, detail string) {
	g.journalOutcome(m, cli, journal.OutcomeDiscarded, 0, detail)
	g.metrics.Exchanges.WithLabelValues("discarded").Inc()
	cli.Release()
}

// abort ends an exchange after a session exists but before dispatch.
func (g *Gateway) abort(m *radius.Message, cli *clients.Client, sess *diameter.Session, detail string) {
	g.journalOutcome(m, cli, journal.OutcomeDiscarded, 0, detail)
	g.metrics.Exchanges.WithLabelValues("discarded").Inc()
	g.destroySession(g.log, sess)
	cli.Release()
}

func (g *Gateway) destroySession(l logpkg.Logger, sess *diameter.Session) {
	if err := sess.Destroy(); err != nil {
		l.Error("session ownership bug", logpkg.Err(err))
	}
}
