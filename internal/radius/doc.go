// Package radius implements the source-protocol message model: a fixed
// header plus a linear array of typed attributes, the wire codec, and the
// RFC 2865/2866/2869 authenticator checks.
//
// Messages parsed off the wire keep their raw buffer so authenticators can
// be verified and duplicates detected. Translation consumes attributes one
// by one; Unconsumed reports what no plugin handled.
package radius
