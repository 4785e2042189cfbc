// Package rpc provides the network layer of mapkv: the binary wire codec,
// the connection-handling session state machine, the worker-pooled TCP
// server, and the client that speaks to it.
//
// The package is organized into subpackages:
//
//   - codec: encodes and decodes the binary Request/Response payloads.
//
//   - common: shared server/client configuration structs, the 8-byte frame
//     length reader/writer, and the leveled logger used throughout the rpc
//     layer.
//
//   - session: the per-connection read -> handle -> write state machine.
//
//   - server: the TCP acceptor, fixed worker pool and stats timer thread.
//
//   - client: the cached-connection client used to talk to a mapkv server.
package rpc
