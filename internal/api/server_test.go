package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nodemesh/swimd/internal/app/router"
	"github.com/nodemesh/swimd/internal/infra/gossip"
	"github.com/nodemesh/swimd/internal/infra/observability"
)

func testRouter() *router.Router {
	return router.New(gossip.NewRegistry(nil), gossip.Config{
		PingPeriod:   20 * time.Millisecond,
		WitnessCount: 3,
	})
}

func TestHealthHandler(t *testing.T) {
	s := NewServer(testRouter(), nil, false, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestListNodesEmpty(t *testing.T) {
	s := NewServer(testRouter(), nil, false, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nodes", nil)

	s.Handler().ServeHTTP(rr, req)

	var views []nodeView
	if err := json.NewDecoder(rr.Body).Decode(&views); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("len(views) = %d, want 0 on a fresh router", len(views))
	}
}

func TestGetNodeUnknownReturns404(t *testing.T) {
	s := NewServer(testRouter(), nil, false, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nodes/99", nil)

	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHelloCreatesFromAndSendsRequest(t *testing.T) {
	rt := testRouter()
	s := NewServer(rt, nil, false, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/nodes/1/hello/2", nil)

	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	if len(rt.Hosts()) != 1 {
		t.Errorf("len(Hosts()) = %d, want 1 (from host created by hello)", len(rt.Hosts()))
	}
}

func TestHelloInvalidHostReturns400(t *testing.T) {
	s := NewServer(testRouter(), nil, false, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/nodes/not-a-number/hello/2", nil)

	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestMetricsRouteAbsentWhenDisabled(t *testing.T) {
	s := NewServer(testRouter(), nil, false, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when metrics are disabled", rr.Code)
	}
}

func TestTracesRouteReturnsEmptyListWithNoTracer(t *testing.T) {
	s := NewServer(testRouter(), nil, false, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/traces", nil)

	s.Handler().ServeHTTP(rr, req)

	var spans []observability.Span
	if err := json.NewDecoder(rr.Body).Decode(&spans); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(spans) != 0 {
		t.Errorf("len(spans) = %d, want 0 with no tracer attached", len(spans))
	}
}

func TestTracesRouteReportsRecordedSpans(t *testing.T) {
	tracer := observability.NewTracer(observability.TracerConfig{Enabled: true, MaxSpans: 10})
	span := tracer.StartSpan(context.Background(), "test.op", nil)
	tracer.EndSpan(span, nil)

	s := NewServer(testRouter(), tracer, false, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/traces", nil)

	s.Handler().ServeHTTP(rr, req)

	var spans []observability.Span
	if err := json.NewDecoder(rr.Body).Decode(&spans); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(spans) != 1 || spans[0].Operation != "test.op" {
		t.Errorf("spans = %v, want one span named test.op", spans)
	}
}

func TestMetricsRoutePresentWhenEnabled(t *testing.T) {
	scraped := false
	s := NewServer(testRouter(), nil, true, func() { scraped = true })
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !scraped {
		t.Error("beforeScrape hook was not called on a /metrics request")
	}
}
