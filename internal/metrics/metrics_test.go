package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RESPONDR/respondr/internal/models"
)

func TestCollectorRecordsHTTPMetrics(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	handlerInvoked := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerInvoked = true
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	})

	instrumented := collector.InstrumentHandler(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	instrumented.ServeHTTP(rr, req)

	if !handlerInvoked {
		t.Fatal("expected handler to be invoked")
	}

	if rr.Code != http.StatusAccepted {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}

	body := scrape(t, collector)
	if !strings.Contains(body, `respondr_http_requests_total{method="GET",path="/test",status="202"} 1`) {
		t.Fatalf("requests_total metric not recorded, body=%q", body)
	}
	if !strings.Contains(body, `respondr_http_request_duration_seconds_count{method="GET",path="/test",status="202"} 1`) {
		t.Fatalf("request_duration_seconds_count metric not recorded, body=%q", body)
	}
}

func TestCollectorRecordsDomainCounters(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	collector.RecordTriageDecision(models.ActionAutoDispatch)
	collector.RecordTriageDecision(models.ActionAutoDispatch)
	collector.RecordTriageDecision(models.ActionFlagForReview)
	collector.RecordCrowdAnomaly(models.AnomalyRapidIncrease)

	body := scrape(t, collector)
	if !strings.Contains(body, `respondr_triage_decisions_total{action="auto_dispatch"} 2`) {
		t.Fatalf("triage decisions not counted, body=%q", body)
	}
	if !strings.Contains(body, `respondr_triage_decisions_total{action="flag_for_review"} 1`) {
		t.Fatalf("flagged decisions not counted, body=%q", body)
	}
	if !strings.Contains(body, `respondr_crowd_anomalies_total{type="RAPID_INCREASE"} 1`) {
		t.Fatalf("crowd anomalies not counted, body=%q", body)
	}
}

func scrape(t *testing.T, collector *Collector) string {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	collector.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics handler to return 200, got %d", rr.Code)
	}
	return rr.Body.String()
}
