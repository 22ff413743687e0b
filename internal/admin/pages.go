package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pinterest/secor-admin/internal/buildinfo"
	"github.com/pinterest/secor-admin/internal/metrics"
	"github.com/pinterest/secor-admin/internal/stats"
)

type serverInfo struct {
	Name          string `json:"name"`
	BuildRevision string `json:"build_revision"`
	StartTime     string `json:"start_time"`
	UptimeMillis  int64  `json:"uptime_ms"`
}

// routes mounts the default pages and then the custom handlers. A custom
// handler replaces the default page registered on the same path. Every route
// is counted in secor_admin_requests_total.
func (s *Service) routes(custom HandlerRegistry) *http.ServeMux {
	pages := map[string]http.Handler{
		"/ping":             http.HandlerFunc(s.handlePing),
		"/health":           http.HandlerFunc(s.handleHealth),
		"/stats.json":       http.HandlerFunc(s.handleStatsJSON),
		"/stats.txt":        http.HandlerFunc(s.handleStatsText),
		"/server_info.json": http.HandlerFunc(s.handleServerInfo),
	}
	for path, h := range custom {
		if h != nil {
			pages[path] = h
		}
	}

	mux := http.NewServeMux()
	for path, h := range pages {
		mux.Handle(path, metrics.Instrument(path, h))
	}
	return mux
}

func (s *Service) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong\n"))
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK\n"))
}

func (s *Service) handleServerInfo(w http.ResponseWriter, _ *http.Request) {
	revision, ok := s.ns.Label(BuildRevisionLabel)
	if !ok {
		revision = buildinfo.DefaultRevision
	}
	writeJSON(w, http.StatusOK, serverInfo{
		Name:          s.name,
		BuildRevision: revision,
		StartTime:     s.started.UTC().Format(time.RFC3339),
		UptimeMillis:  time.Since(s.started).Milliseconds(),
	})
}

func (s *Service) handleStatsJSON(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleStatsText(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var b strings.Builder
	writeSection(&b, "counters", snap.Counters, func(v int64) string { return strconv.FormatInt(v, 10) })
	writeSection(&b, "gauges", snap.Gauges, func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) })
	writeSection(&b, "labels", snap.Labels, func(v string) string { return v })

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// snapshot returns the live stats, or the latched stats when the request
// carries ?period=<seconds> naming one of the service's intervals.
func (s *Service) snapshot(r *http.Request) (stats.Snapshot, error) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return stats.Filter(s.ns.Snapshot(), s.filters), nil
	}

	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return stats.Snapshot{}, fmt.Errorf("invalid period %q", raw)
	}
	period := time.Duration(secs) * time.Second
	if !slices.Contains(s.intervals, period) {
		return stats.Snapshot{}, fmt.Errorf("period %ds is not latched", secs)
	}

	snap, ok := s.ns.Latched(period)
	if !ok {
		snap = stats.Snapshot{
			Counters: map[string]int64{},
			Gauges:   map[string]float64{},
			Labels:   map[string]string{},
		}
	}
	return stats.Filter(snap, s.filters), nil
}

func writeSection[V any](b *strings.Builder, title string, values map[string]V, format func(V) string) {
	fmt.Fprintf(b, "%s:\n", title)
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(b, "  %s: %s\n", name, format(values[name]))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
