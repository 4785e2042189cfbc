package server

import (
	"context"
	"errors"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/mapkv/mapkv/lib/stats"
	"github.com/mapkv/mapkv/lib/store"
	"github.com/mapkv/mapkv/rpc/common"
	"github.com/mapkv/mapkv/rpc/session"
)

// connQueueSize bounds how many accepted-but-not-yet-served connections can
// sit in the reactor channel before Accept blocks. Generous enough that a
// burst of connects doesn't stall the accept loop under normal load.
const connQueueSize = 256

// Server accepts TCP connections at a configured address and serves them
// against a shared Store, using a fixed worker pool and a single periodic
// stats-printing timer goroutine.
type Server struct {
	cfg    common.ServerConfig
	store  *store.Store
	stats  *stats.Stats
	logger *common.Logger

	workers int
}

// New creates a Server. store and stats are expected to already be open/
// initialized; Server does not own their lifecycle.
func New(cfg common.ServerConfig, st *store.Store, sts *stats.Stats, logger *common.Logger) *Server {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	return &Server{cfg: cfg, store: st, stats: sts, logger: logger, workers: workers}
}

// Run listens on the server's configured address and serves connections
// until ctx is canceled, at which point the listener is closed and Run
// returns once every worker goroutine has drained the reactor channel and
// returned. In-flight sessions are not interrupted mid-request: on cancel
// each open connection gets an immediate read deadline, so a session finishes
// the request it is handling, fails its next read and closes the connection.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}

	connCh := make(chan net.Conn, connQueueSize)
	sess := session.New(s.store, s.stats, s.logger, s.fatal)

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go func() {
			defer wg.Done()
			for conn := range connCh {
				stop := context.AfterFunc(ctx, func() { conn.SetReadDeadline(time.Now()) })
				sess.Serve(conn)
				stop()
			}
		}()
	}

	go s.runStatsTimer(ctx)

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		s.acceptLoop(ln, connCh)
	}()

	<-ctx.Done()
	ln.Close()
	<-acceptDone
	close(connCh)
	wg.Wait()
	return nil
}

// acceptLoop accepts connections and hands them to the reactor channel until
// the listener is closed. Accept errors are logged and never fatal, per the
// server's error-handling tier for transport issues.
func (s *Server) acceptLoop(ln net.Listener, connCh chan<- net.Conn) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if isClosed(err) {
				return
			}
			s.logger.Warnf("accept: %v", err)
			continue
		}
		connCh <- conn
	}
}

// runStatsTimer calls Stats.Print on a fixed period, re-arming itself from
// the previous absolute expiry rather than time.Now(), so the print cadence
// doesn't drift by the time spent printing.
func (s *Server) runStatsTimer(ctx context.Context) {
	interval := s.cfg.StatsInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	next := time.Now().Add(interval)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.logger.Infof("%s", s.stats.Print())
			next = next.Add(interval)
			timer.Reset(time.Until(next))
		}
	}
}

// fatal is handed to every Session as its onFatal callback. A storage-layer
// I/O error is unrecoverable, so this logs and terminates the process,
// matching the "mapping/I/O failure is fatal" rule.
func (s *Server) fatal(err error) {
	s.logger.Errorf("fatal storage error, exiting: %v", err)
	panic(err)
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
