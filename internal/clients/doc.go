// Package clients keeps the table of known source-protocol peers:
// reference-counted client handles, shared-secret authenticator checks,
// origin validation, and a Pebble-backed duplicate-detection cache.
//
// Reference counts are atomic because one client can have many exchanges in
// flight at once; every exit path of the gateway pipeline releases exactly
// one reference.
package clients
