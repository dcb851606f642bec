package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNew(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	if m.RequestsTotal == nil {
		t.Error("RequestsTotal not initialized")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration not initialized")
	}
	if m.LoginsTotal == nil {
		t.Error("LoginsTotal not initialized")
	}
	if m.LogoutsTotal == nil {
		t.Error("LogoutsTotal not initialized")
	}
	if m.UnauthorizedTotal == nil {
		t.Error("UnauthorizedTotal not initialized")
	}
	if m.Authenticated == nil {
		t.Error("Authenticated not initialized")
	}
}

func TestRecording(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LoginsTotal.WithLabelValues("success").Inc()
	if got := testutil.ToFloat64(m.LoginsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("LoginsTotal = %v, want 1", got)
	}

	m.Authenticated.Set(1)
	if got := testutil.ToFloat64(m.Authenticated); got != 1 {
		t.Errorf("Authenticated = %v, want 1", got)
	}

	m.RequestDuration.WithLabelValues("GET").Observe(0.05)
	m.RequestDuration.WithLabelValues("GET").Observe(0.2)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	var hist *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "worksphere_request_duration_seconds" {
			hist = mf
		}
	}
	if hist == nil {
		t.Fatal("request duration histogram not gathered")
	}
	if count := hist.GetMetric()[0].GetHistogram().GetSampleCount(); count != 2 {
		t.Errorf("histogram sample count = %d, want 2", count)
	}
}
