package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

type seriesKind string

const (
	kindCounter seriesKind = "counter"
	kindGauge   seriesKind = "gauge"
)

// Series is a labeled counter or gauge rendered in the Prometheus text format.
type Series struct {
	name       string
	help       string
	kind       seriesKind
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func NewCounter(name, help string, labels ...string) *Series {
	return &Series{name: name, help: help, kind: kindCounter, labelNames: labels, values: map[string]float64{}}
}

func NewGauge(name, help string, labels ...string) *Series {
	return &Series{name: name, help: help, kind: kindGauge, labelNames: labels, values: map[string]float64{}}
}

func (s *Series) Inc(values ...string) { s.Add(1, values...) }

func (s *Series) Dec(values ...string) { s.Add(-1, values...) }

func (s *Series) Add(v float64, values ...string) {
	if s == nil {
		return
	}
	lbl := labelString(s.labelNames, values)
	s.mu.Lock()
	s.values[lbl] += v
	s.mu.Unlock()
}

func (s *Series) Set(v float64, values ...string) {
	if s == nil {
		return
	}
	lbl := labelString(s.labelNames, values)
	s.mu.Lock()
	s.values[lbl] = v
	s.mu.Unlock()
}

func (s *Series) Value(values ...string) float64 {
	if s == nil {
		return 0
	}
	lbl := labelString(s.labelNames, values)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[lbl]
}

func (s *Series) WritePrometheus(w io.Writer) error {
	if s == nil {
		return nil
	}
	if err := writeHeader(w, s.name, s.help, string(s.kind)); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range sortedKeys(s.values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", s.name, k, s.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type Histogram struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64
	mu         sync.RWMutex
	values     map[string]*histogram
}

type histogram struct {
	counts []uint64
	sum    float64
	total  uint64
}

func NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	return &Histogram{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *Histogram) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[lbl]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets))}
		h.values[lbl] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
}

func (h *Histogram) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.values))
	for k := range h.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), v.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), v.total); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n%s_count%s %d\n", h.name, k, v.sum, h.name, k, v.total); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, name, help, kind string) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, 0, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts = append(parts, name+"=\""+escapeLabel(val)+"\"")
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string { return labelEscaper.Replace(v) }

func withLe(labels string, le string) string {
	if labels == "" {
		return "{le=\"" + le + "\"}"
	}
	return strings.TrimSuffix(labels, "}") + ",le=\"" + le + "\"}"
}
