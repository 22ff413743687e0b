package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pinterest/secor-admin/internal/stats"
	"github.com/rs/zerolog"
)

func TestBuildHandlers_PrometheusEnabled(t *testing.T) {
	handlers := BuildHandlers(true, stats.NewNamespace(zerolog.Nop()).Gatherer())

	if len(handlers) != 1 {
		t.Fatalf("Expected exactly one handler, got %d", len(handlers))
	}
	if handlers[PrometheusPath] == nil {
		t.Errorf("Expected a handler at %s", PrometheusPath)
	}
}

func TestBuildHandlers_PrometheusDisabled(t *testing.T) {
	handlers := BuildHandlers(false, stats.NewNamespace(zerolog.Nop()).Gatherer())

	if len(handlers) != 0 {
		t.Errorf("Expected no handlers, got %d", len(handlers))
	}
}

func TestBuildHandlers_FreshRegistryEachCall(t *testing.T) {
	first := BuildHandlers(true, nil)
	second := BuildHandlers(true, nil)

	delete(first, PrometheusPath)
	if second[PrometheusPath] == nil {
		t.Error("Expected registries to be independent")
	}
}

func TestBuildHandlers_ServesExposition(t *testing.T) {
	ns := stats.NewNamespace(zerolog.Nop())
	ns.SetLabel(BuildRevisionLabel, "abc123")

	h := BuildHandlers(true, ns.Gatherer())[PrometheusPath]

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PrometheusPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `secor_label_info{key="secor.build_revision",value="abc123"} 1`) {
		t.Errorf("Expected the build revision label in the exposition, got:\n%s", body)
	}
}
