// Package stats tracks per-operation success/failure counts and the live
// item count for a mapkv server, the same bookkeeping the original
// single-process database printed to its log on a fixed interval.
//
// Counting is split across two metrics libraries on purpose, each used for
// what it's best at: github.com/rcrowley/go-metrics backs the per-operation
// counters that only ever get read back out through Print, while
// github.com/VictoriaMetrics/metrics backs the total-item-count gauge in a
// Set owned by each Stats instance that can optionally be scraped over Prometheus'
// text exposition format (see Stats.WritePrometheus).
package stats
