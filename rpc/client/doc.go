// Package client implements the synchronous, one-connection-at-a-time
// client used to talk to a mapkv server: it caches one net.Conn, remembers
// the last endpoint dialed, validates key/value lengths before touching the
// network, and drops the cached connection on any I/O error so the next
// Send reconnects lazily.
//
// Client is not safe for concurrent use by multiple goroutines; callers
// serialize access themselves.
package client
