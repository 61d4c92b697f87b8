package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/moviegraph/internal/platform/logger"
)

// Metrics holds the process counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests  *Series
	apiLatency   *Histogram
	apiInflight  *Series
	ingestChunks *Series
	ingestRows   *Series
	ingestTime   *Histogram
	dataQuality  *Series
	queries      *Series
	queryLatency *Histogram
	redisUp      *Series
	redisPing    *Series
}

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests:  NewCounter("mg_api_requests_total", "API requests by method/route/status.", "method", "route", "status"),
		apiLatency:   NewHistogram("mg_api_request_duration_seconds", "API latency by method/route/status.", latencyBuckets, "method", "route", "status"),
		apiInflight:  NewGauge("mg_api_inflight_requests", "In-flight API requests."),
		ingestChunks: NewCounter("mg_ingest_chunks_total", "Ingestion chunks by dataset/status.", "dataset", "status"),
		ingestRows:   NewCounter("mg_ingest_rows_total", "Ingested rows by dataset/outcome.", "dataset", "outcome"),
		ingestTime: NewHistogram(
			"mg_ingest_chunk_duration_seconds",
			"Chunk merge duration by dataset.",
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			"dataset",
		),
		dataQuality:  NewCounter("mg_data_quality_issues_total", "Data quality warnings by dataset/field.", "dataset", "field"),
		queries:      NewCounter("mg_queries_total", "Catalog queries by op/status.", "op", "status"),
		queryLatency: NewHistogram("mg_query_duration_seconds", "Catalog query latency by op.", latencyBuckets, "op"),
		redisUp:      NewGauge("mg_redis_up", "1 when the query cache answered the last ping."),
		redisPing:    NewGauge("mg_redis_ping_seconds", "Latency of the last cache ping."),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveIngestChunk(dataset, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.ingestChunks.Inc(dataset, status)
	m.ingestTime.Observe(dur.Seconds(), dataset)
}

func (m *Metrics) AddIngestRows(dataset string, merged, skipped int) {
	if m == nil {
		return
	}
	m.ingestRows.Add(float64(merged), dataset, "merged")
	m.ingestRows.Add(float64(skipped), dataset, "skipped")
}

func (m *Metrics) IncDataQuality(dataset, field string) {
	if m == nil {
		return
	}
	if field == "" {
		field = "row"
	}
	m.dataQuality.Inc(dataset, field)
}

func (m *Metrics) ObserveQuery(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.queries.Inc(op, status)
	m.queryLatency.Observe(dur.Seconds(), op)
}

// QueryCount reports how many op queries finished with status.
func (m *Metrics) QueryCount(op, status string) float64 {
	if m == nil {
		return 0
	}
	return m.queries.Value(op, status)
}

// StartRedisCollector pings rdb every interval until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *goredis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	type writer interface{ WritePrometheus(io.Writer) error }
	for _, s := range []writer{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.ingestChunks, m.ingestRows, m.ingestTime, m.dataQuality,
		m.queries, m.queryLatency, m.redisUp, m.redisPing,
	} {
		if err := s.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// StatusLabel renders an HTTP status code as a metric label.
func StatusLabel(code int) string { return strconv.Itoa(code) }
