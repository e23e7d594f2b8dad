package gateway

import (
	"github.com/google/uuid"
	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/diameter"
	"github.com/rzbill/radgw/internal/journal"
	"github.com/rzbill/radgw/internal/radius"
	logpkg "github.com/rzbill/radgw/pkg/log"
)

// CorrelationRecord is the state carried from dispatch to the answer
// callback: the original request (for the identifier and authenticator the
// answer must echo), the client reference held across the exchange, and the
// session to tear down.
type CorrelationRecord struct {
	Token   uuid.UUID
	Req     *radius.Message
	Client  *clients.Client
	Session *diameter.Session
}

func newCorrelationRecord(req *radius.Message, cli *clients.Client, sess *diameter.Session) *CorrelationRecord {
	return &CorrelationRecord{Token: uuid.New(), Req: req, Client: cli, Session: sess}
}

// handleAnswer is the dispatcher callback. It runs on whatever goroutine the
// messaging layer chooses, concurrently with the worker pool, so it touches
// only the record and the gateway's thread-safe collaborators.
//
// Cleanup is unconditional: whatever translation or delivery does, the
// session is destroyed and the client reference released exactly once.
func (g *Gateway) handleAnswer(rec *CorrelationRecord, ans *diameter.Message) {
	alog := g.log.With(
		logpkg.Str("client", rec.Client.Addr()),
		logpkg.Str("session", rec.Session.ID()),
		logpkg.Str("token", rec.Token.String()))

	violations := 0
	defer func() {
		g.destroySession(alog, rec.Session)
		rec.Client.Release()
		g.journalOutcome(rec.Req, rec.Client, journal.OutcomeTerminated, violations, "")
		g.metrics.Exchanges.WithLabelValues("terminated").Inc()
		g.metrics.InFlight.Dec()
	}()

	if ans == nil {
		// Transport-level failure: the request timed out or the peer went
		// away. The client gets no answer and will retransmit.
		alog.Warn("exchange ended without an answer")
		return
	}
	alog = alog.With(logpkg.Str("command", diameter.CommandName(ans.Command)))

	out := radius.New(0, rec.Req.Identifier)
	if err := g.opts.Chain.TranslateAnswer(rec.Req, rec.Session, ans, out, rec.Client); err != nil {
		alog.Warn("answer translation failed, nothing delivered", logpkg.Err(err))
		return
	}
	if out.Code == 0 {
		// The chain decided no answer should go back, e.g. a server-initiated
		// message with no source-protocol equivalent.
		alog.Debug("answer suppressed by plugin chain")
		return
	}

	violations = g.auditMandatory(alog, ans)
	if violations > 0 {
		// The answer path stays lenient: losing AVPs the client never
		// understood beats eating an answer the user is waiting on.
		alog.Warn("answer delivered with untranslated mandatory avps",
			logpkg.Int("violations", violations))
		g.metrics.Violations.Add(float64(violations))
	}

	if err := g.opts.Deliverer.Deliver(out, rec.Req, rec.Client); err != nil {
		alog.Warn("answer delivery failed", logpkg.Err(err))
		return
	}
	alog.Debug("answer delivered", logpkg.Str("code", out.Code.String()))
}

// auditMandatory inspects the top-level AVPs no plugin took while
// translating the answer. Routing AVPs that legitimately remain in a
// relayed answer are exempt; anything else with the M bit is a violation,
// vendor AVPs unconditionally so.
func (g *Gateway) auditMandatory(alog logpkg.Logger, ans *diameter.Message) int {
	violations := 0
	for _, a := range ans.AVPs {
		if !a.Mandatory() {
			continue
		}
		if !a.Vendor() && (a.Code == diameter.AVPRouteRecord || a.Code == diameter.AVPProxyInfo) {
			continue
		}
		alog.Debug("mandatory avp not translated",
			logpkg.Int("avp", int(a.Code)),
			logpkg.Int("vendor", int(a.VendorID)))
		violations++
	}
	return violations
}
