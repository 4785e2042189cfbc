// Package server implements mapkv's TCP acceptor: a buffered channel of
// accepted connections (the "reactor") drained by a fixed pool of worker
// goroutines running rpc/session.Session.Serve, plus a single timer
// goroutine that periodically prints stats.
package server
