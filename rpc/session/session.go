package session

import (
	"errors"
	"io"
	"net"

	"github.com/mapkv/mapkv/lib/stats"
	"github.com/mapkv/mapkv/lib/store"
	"github.com/mapkv/mapkv/rpc/codec"
	"github.com/mapkv/mapkv/rpc/common"
)

// Session runs the read -> handle -> write loop for one connection against
// a shared Store and Stats. It holds no per-connection state beyond the
// net.Conn passed to Serve, so a single Session can be reused (or shared
// read-only, since it never mutates its own fields) across every connection
// a worker handles.
type Session struct {
	store  *store.Store
	stats  *stats.Stats
	logger *common.Logger
	// onFatal is invoked if the Store reports an I/O error (mapping or
	// remap failure); per the storage failure tier, this is unrecoverable
	// and the process is expected to restart.
	onFatal func(error)
}

// New creates a Session bound to s and st. onFatal is called, from whatever
// goroutine is running Serve, if the Store ever returns a non-nil error
// (see lib/store's Ins/Upd/Del/Get signatures). Server wires this to its own
// shutdown path.
func New(s *store.Store, st *stats.Stats, logger *common.Logger, onFatal func(error)) *Session {
	return &Session{store: s, stats: st, logger: logger, onFatal: onFatal}
}

// Serve runs the request loop for conn until a transport or decode error
// ends it, then closes conn. It blocks for the lifetime of the connection.
func (s *Session) Serve(conn net.Conn) {
	defer conn.Close()

	for {
		payload, err := common.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warnf("read frame: %v", err)
			}
			return
		}

		req, err := codec.DecodeRequest(payload)
		if err != nil {
			s.logger.Warnf("decode request: %v", err)
			return
		}

		resp := s.handle(req)

		respPayload, err := codec.EncodeResponse(resp)
		if err != nil {
			s.logger.Errorf("encode response: %v", err)
			return
		}
		if err := common.WriteFrame(conn, respPayload); err != nil {
			s.logger.Warnf("write frame: %v", err)
			return
		}
	}
}

// handle applies one decoded request to the store and updates stats. It
// never returns a Go error: a storage-layer failure is reported through
// onFatal instead, since by §7's failure model it is fatal to the whole
// process rather than scoped to one request.
func (s *Session) handle(req codec.Request) codec.Response {
	var (
		value  string
		result store.Error
		ioErr  error
	)

	switch req.Operation {
	case store.OpInsert:
		result, ioErr = s.store.Ins(req.Key, req.Value)
	case store.OpUpdate:
		result, ioErr = s.store.Upd(req.Key, req.Value)
	case store.OpDelete:
		result, ioErr = s.store.Del(req.Key)
	case store.OpGet:
		value, result, ioErr = s.store.Get(req.Key)
	default:
		result = store.ErrInvalidKeyLength // unreachable: codec already validated the operation byte
	}

	if ioErr != nil && s.onFatal != nil {
		s.onFatal(ioErr)
	}

	s.stats.Update(req.Operation, result)
	return codec.Response{Operation: req.Operation, Error: result, Value: value}
}
