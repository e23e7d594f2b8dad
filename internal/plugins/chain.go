// Package plugins holds the translation chain and the plugins that map
// source-protocol attributes onto target-protocol AVPs and back. Plugins run
// in registration order in both directions; a request-side plugin can claim
// an exchange entirely, in which case the chain stops and nothing is
// dispatched.
package plugins

import (
	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/diameter"
	"github.com/rzbill/radgw/internal/radius"
	logpkg "github.com/rzbill/radgw/pkg/log"
)

// Plugin translates one slice of the attribute space. TranslateRequest marks
// the attributes it understands as consumed on m and adds AVPs to out;
// TranslateAnswer takes the AVPs it understands off ans and adds attributes
// to out.
type Plugin interface {
	Name() string
	TranslateRequest(m *radius.Message, sess *diameter.Session, out *diameter.Message, cli *clients.Client) (handled bool, err error)
	TranslateAnswer(orig *radius.Message, sess *diameter.Session, ans *diameter.Message, out *radius.Message, cli *clients.Client) error
}

// Chain runs plugins in order.
type Chain struct {
	log     logpkg.Logger
	plugins []Plugin
}

// NewChain builds a chain. Order matters: drop-style plugins go first so
// later plugins never see the attributes they remove.
func NewChain(logger logpkg.Logger, ps ...Plugin) *Chain {
	if logger == nil {
		logger = logpkg.NopLogger{}
	}
	return &Chain{log: logger.With(logpkg.Component("plugins")), plugins: ps}
}

// TranslateRequest runs every plugin against the inbound message. The first
// plugin to claim the exchange stops the chain.
func (c *Chain) TranslateRequest(m *radius.Message, sess *diameter.Session, out *diameter.Message, cli *clients.Client) (bool, error) {
	for _, p := range c.plugins {
		handled, err := p.TranslateRequest(m, sess, out, cli)
		if err != nil {
			return false, err
		}
		if handled {
			c.log.Debug("request claimed by plugin", logpkg.Str("plugin", p.Name()))
			return true, nil
		}
	}
	return false, nil
}

// TranslateAnswer runs every plugin against the answer. All plugins run;
// each removes the AVPs it translates so the completeness audit only sees
// leftovers.
func (c *Chain) TranslateAnswer(orig *radius.Message, sess *diameter.Session, ans *diameter.Message, out *radius.Message, cli *clients.Client) error {
	for _, p := range c.plugins {
		if err := p.TranslateAnswer(orig, sess, ans, out, cli); err != nil {
			return err
		}
	}
	return nil
}
