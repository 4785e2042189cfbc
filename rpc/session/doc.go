// Package session implements the per-connection request/response loop:
// read a length-prefixed request, apply it to the store, write a
// length-prefixed response, repeat until the connection fails. A Session's
// lifetime is exactly the lifetime of the goroutine running Serve — there is
// no separate reference count to manage, the idiomatic Go rendition of
// "kept alive by its pending I/O."
package session
