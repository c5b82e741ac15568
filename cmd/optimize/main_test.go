package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/ecosim/config"
)

func TestOptimizerLogsAndSaves(t *testing.T) {
	dir := t.TempDir()
	params, err := NewParamVector().Select([]string{"disease"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	fe := NewFitnessEvaluator(params, 30, []int64{7}, config.Cfg())
	opt, err := newOptimizer(dir, params, fe, 2)
	if err != nil {
		t.Fatalf("newOptimizer: %v", err)
	}

	x := params.Normalize(params.DefaultVector())
	for i := 0; i < 2; i++ {
		if f := opt.objective(x); f > 0 {
			t.Errorf("fitness = %v, want non-positive", f)
		}
	}
	if opt.bestEvalNum != 1 || opt.bestParams == nil {
		t.Errorf("best eval = #%d, params %v", opt.bestEvalNum, opt.bestParams)
	}
	if err := opt.save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}
	opt.close()

	f, err := os.Open(filepath.Join(dir, "optimize_log.csv"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("log rows = %d, want header and 2 evaluations", len(rows))
	}
	header := rows[0]
	if want := 4 + 3 + 3 + params.Dim(); len(header) != want {
		t.Errorf("header has %d columns, want %d: %v", len(header), want, header)
	}
	if header[len(header)-1] != "symptom_drain" {
		t.Errorf("last column = %q, want symptom_drain", header[len(header)-1])
	}

	best, err := config.Load(filepath.Join(dir, "best_config.yaml"))
	if err != nil {
		t.Fatalf("Load best config: %v", err)
	}
	if best.Disease.SymptomDrain != config.Cfg().Disease.SymptomDrain {
		t.Errorf("best symptom drain = %v, want default %v", best.Disease.SymptomDrain, config.Cfg().Disease.SymptomDrain)
	}
	if _, err := os.Stat(filepath.Join(dir, "hall_of_fame.json")); err != nil {
		t.Errorf("hall of fame not saved: %v", err)
	}
}
