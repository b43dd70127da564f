package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveGeneration(t *testing.T) {
	m := New()
	m.ObserveGeneration(OutcomeSuccess, "", time.Second)
	m.ObserveGeneration(OutcomeFailure, "Timeout", 60*time.Second)
	m.ObserveGeneration(OutcomeUnsaved, "", 2*time.Second)

	if got := testutil.ToFloat64(m.Generations.WithLabelValues(OutcomeSuccess, "")); got != 1 {
		t.Errorf("success count = %v", got)
	}
	if got := testutil.ToFloat64(m.Generations.WithLabelValues(OutcomeFailure, "Timeout")); got != 1 {
		t.Errorf("timeout count = %v", got)
	}
	if got := testutil.ToFloat64(m.Appends); got != 1 {
		t.Errorf("appends = %v, want only successful saves", got)
	}
}

func TestHandlerExposesPrivateRegistry(t *testing.T) {
	m := New()
	m.Message("generate_plan")
	m.Connections.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`fitplan_ws_messages_total{type="generate_plan"} 1`,
		"fitplan_ws_connections 1",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	// A second instance must not see the first one's values.
	if got := testutil.ToFloat64(New().Connections); got != 0 {
		t.Errorf("fresh metrics gauge = %v", got)
	}
}
