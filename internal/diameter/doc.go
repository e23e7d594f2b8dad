// Package diameter implements the target-protocol message model: AVP trees
// with mandatory/vendor flags, per-command dictionary rules, and per-exchange
// sessions. Wire encoding belongs to the peer transport, not to this model.
package diameter
