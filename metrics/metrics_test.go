package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCollectorIncrementsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.PatchApplied()
	c.PatchApplied()
	c.PatchFailed()
	c.PatchSkipped()
	c.ObserveApplyDuration(50 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	byName := make(map[string]*dto.MetricFamily)
	for _, f := range families {
		byName[f.GetName()] = f
	}

	applied, ok := byName["gitam_patches_applied_total"]
	if !ok {
		t.Fatal("missing gitam_patches_applied_total")
	}
	var success, failure float64
	for _, m := range applied.Metric {
		for _, l := range m.Label {
			if l.GetName() == "result" {
				switch l.GetValue() {
				case "success":
					success = m.Counter.GetValue()
				case "failure":
					failure = m.Counter.GetValue()
				}
			}
		}
	}
	if success != 2 {
		t.Errorf("success count = %v, want 2", success)
	}
	if failure != 1 {
		t.Errorf("failure count = %v, want 1", failure)
	}

	skipped, ok := byName["gitam_patches_skipped_total"]
	if !ok || skipped.Metric[0].Counter.GetValue() != 1 {
		t.Errorf("skipped count wrong: %+v", skipped)
	}

	if _, ok := byName["gitam_apply_duration_seconds"]; !ok {
		t.Error("missing gitam_apply_duration_seconds")
	}
}
