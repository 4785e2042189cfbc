package stats

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	vmetrics "github.com/VictoriaMetrics/metrics"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/mapkv/mapkv/lib/store"
)

// Stats accumulates per-operation success/failure counters plus a running
// total-items-in-store gauge. It is safe for concurrent use: Update is
// called once per request from every session goroutine, while Print and
// WritePrometheus are typically called from a single periodic timer.
type Stats struct {
	registry metrics.Registry
	set      *vmetrics.Set

	successful [4]metrics.Counter
	failed     [4]metrics.Counter

	// totalItems is read by the VictoriaMetrics gauge callback registered in
	// New and by Print; it moves up or down as INSERT/DELETE succeed, so it
	// is modeled as a gauge rather than a monotonic counter.
	totalItems int64
}

// New creates a Stats seeded with the store's current item count, the same
// starting point the original database used for its own in-memory counter.
func New(initialItemCount uint32) *Stats {
	s := &Stats{
		registry: metrics.NewRegistry(),
		set:      vmetrics.NewSet(),
	}

	for op := store.OpInsert; op <= store.OpGet; op++ {
		s.successful[op] = metrics.NewCounter()
		s.failed[op] = metrics.NewCounter()
		s.registry.Register(metricName(op, "successful"), s.successful[op])
		s.registry.Register(metricName(op, "failed"), s.failed[op])
	}

	s.totalItems = int64(initialItemCount)
	s.set.NewGauge("mapkv_total_items", func() float64 {
		return float64(atomic.LoadInt64(&s.totalItems))
	})

	return s
}

func metricName(op store.Operation, outcome string) string {
	return fmt.Sprintf("mapkv.%s.%s", strings.ToLower(op.String()), outcome)
}

// Update records the outcome of one request. It mirrors the original
// database's bookkeeping exactly: every operation increments its
// successful or failed counter, and the total-items gauge only moves on a
// successful INSERT or DELETE.
func (s *Stats) Update(op store.Operation, err store.Error) {
	if int(op) >= len(s.successful) {
		return
	}
	if err == store.ErrNone {
		s.successful[op].Inc(1)
	} else {
		s.failed[op].Inc(1)
	}

	switch {
	case op == store.OpInsert && err == store.ErrNone:
		atomic.AddInt64(&s.totalItems, 1)
	case op == store.OpDelete && err == store.ErrNone:
		atomic.AddInt64(&s.totalItems, -1)
	}
}

// Print renders a human-readable snapshot in the same shape as the
// original's periodic log line: total item count followed by a
// successful/failed pair for every operation.
func (s *Stats) Print() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total items currently in Database: %d\n", atomic.LoadInt64(&s.totalItems))
	for op := store.OpInsert; op <= store.OpGet; op++ {
		fmt.Fprintf(&b, "Total %s attempts since server's start (successful/failed): %d/%d\n",
			op, s.successful[op].Count(), s.failed[op].Count())
	}
	return b.String()
}

// WritePrometheus exposes the total-item-count gauge (and anything else
// registered in the VictoriaMetrics set) in Prometheus text exposition
// format, for callers that want to scrape mapkv rather than read its logs.
func (s *Stats) WritePrometheus(w io.Writer) {
	s.set.WritePrometheus(w)
}
