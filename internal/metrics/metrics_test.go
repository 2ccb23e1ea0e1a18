package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"qgraph/internal/diag"
	"qgraph/internal/driver"
	"qgraph/internal/observ"
)

func sampleResult() *driver.Result {
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevWarning, diag.QntUnresolvedObserver, diag.Location{Method: "forward", Value: "y"}, "removed"))
	return &driver.Result{
		RunID: "run",
		Methods: []driver.MethodResult{
			{Method: "forward", Counts: driver.Counts{driver.CountPairs: 3, driver.CountObserversRemoved: 2}},
			{Method: "init", Counts: driver.Counts{driver.CountPairs: 1}},
		},
		Bag: bag,
	}
}

func TestRecord(t *testing.T) {
	r := NewRecorder()
	r.timeFunc = func() time.Time { return time.Unix(1700000000, 0) }
	r.Record("quantize", sampleResult())
	r.Record("quantize", sampleResult())

	if got := testutil.ToFloat64(r.runs.WithLabelValues("quantize")); got != 2 {
		t.Errorf("runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.methods.WithLabelValues("quantize")); got != 4 {
		t.Errorf("methods = %v, want 4", got)
	}
	if got := testutil.ToFloat64(r.edits.WithLabelValues("quantize", "forward", driver.CountPairs)); got != 6 {
		t.Errorf("forward pairs = %v, want 6", got)
	}
	if got := testutil.ToFloat64(r.diags.WithLabelValues("quantize", "warning", "QNT3001")); got != 2 {
		t.Errorf("diagnostics = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.lastRun.WithLabelValues("quantize")); got != 1700000000 {
		t.Errorf("last run = %v", got)
	}
}

func TestWriteFile(t *testing.T) {
	r := NewRecorder()
	r.Record("observe", &driver.Result{Methods: []driver.MethodResult{
		{Method: "forward", Counts: driver.Counts{driver.CountActivationObservers: 2}},
	}})
	timer := observ.NewTimer()
	timer.End(timer.Begin("observe", "forward"), "")
	r.RecordTimings(timer)

	path := filepath.Join(t.TempDir(), "qgraph.prom")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`qgraph_graph_edits_total{kind="observers_activation",method="forward",pass="observe"} 2`,
		`qgraph_phase_duration_seconds_count{phase="observe"} 1`,
		`qgraph_pass_runs_total{pass="observe"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Record("observe", sampleResult())
	r.RecordTimings(observ.NewTimer())
}
