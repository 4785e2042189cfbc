// Package store implements mapkv's persistence engine: a memory-mapped,
// crash-persistent hash index of unique string keys to string values,
// guarded by a mutex that is also honored across processes sharing the same
// storage file.
//
// A Store is opened once per process with Open and threaded explicitly
// through the rest of the application (an owned handle rather than a
// package-level singleton, see DESIGN.md).
//
// Key Components:
//
//   - Operation / Error: the shared wire vocabulary also used by rpc/codec.
//   - Store: the engine itself, exposing Ins, Upd, Del, Get and Size.
//   - the mmapTable type: header, directory and data-region access over the
//     growable memory-mapped backing file.
package store
