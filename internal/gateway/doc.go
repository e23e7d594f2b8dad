// Package gateway implements the concurrent translation core: a bounded job
// queue drained by a fixed pool of workers, each running inbound messages
// through a pipeline of integrity, duplicate and origin checks, the plugin
// translation chain, and strict completeness validation before dispatching
// the result asynchronously. Answers come back on the dispatcher's threads
// and are translated leniently, delivered, and torn down by a correlation
// callback.
//
// The request path is strict (an incomplete translation is discarded, never
// sent half-translated) and the answer path is lenient (untranslated
// mandatory AVPs are logged and counted but the answer is delivered anyway).
package gateway
