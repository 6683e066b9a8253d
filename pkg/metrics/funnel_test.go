package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestFunnelMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewFunnelMetrics(reg)

	metrics.IncTransition("Pendente", "Aguardando Pagamento")
	metrics.ObserveGroup("Pago", 4, nil)
	metrics.ObserveGroup("Cancelado", 0, errors.New("boom"))
	metrics.ObserveRedemption(nil)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "lead_status_transitions_total", "to", "Aguardando Pagamento"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_group_operations_total", "outcome", OutcomeFailure); err != nil {
		t.Fatalf("fetch group failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected group failure=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "bonus_redemptions_total", "outcome", OutcomeSuccess); err != nil {
		t.Fatalf("fetch redemptions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected redemptions=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "payment_group_leads")
	if mf == nil {
		t.Fatalf("payment_group_leads not registered")
	}
	hist := mf.GetMetric()[0].GetHistogram()
	if hist.GetSampleCount() != 1 || hist.GetSampleSum() != 4 {
		t.Fatalf("expected one sample of 4 leads, got count=%d sum=%f", hist.GetSampleCount(), hist.GetSampleSum())
	}
}

func TestNilFunnelMetricsIsSafe(t *testing.T) {
	var metrics *FunnelMetrics
	metrics.IncTransition("a", "b")
	metrics.ObserveGroup("Pago", 1, nil)
	metrics.ObserveRedemption(nil)

	NewFunnelMetrics(nil).IncTransition("", "")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
