// Package main provides CMA-ES optimization for finding simulation parameters
// that keep all three kingdoms alive in a balanced ecosystem.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/traits"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int64("max-ticks", 216000, "Maximum simulation duration in ticks (cap)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	popSize := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	groups := flag.String("groups", "", "Comma-separated parameter groups to tune (empty = all)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	// Per-run population logs are noise here; keep warnings and errors.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *outputDir == "" {
		fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fatal("failed to create output directory", "error", err)
	}
	if err := config.Init(*configPath); err != nil {
		fatal("failed to load config", "error", err)
	}

	var selected []string
	if *groups != "" {
		selected = strings.Split(*groups, ",")
	}
	params, err := NewParamVector().Select(selected)
	if err != nil {
		fatal("invalid parameter groups", "error", err)
	}

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	opt, err := newOptimizer(*outputDir, params, NewFitnessEvaluator(params, *maxTicks, evalSeeds, config.Cfg()), *maxEvals)
	if err != nil {
		fatal("failed to create optimization log", "error", err)
	}
	defer opt.close()

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   *popSize,
	}
	if method.Population == 0 {
		method.Population = 4 + int(3*math.Log(float64(params.Dim())))
	}

	fmt.Printf("Tuning %d parameters in groups %s, population=%d, max_evals=%d\n",
		params.Dim(), strings.Join(params.Groups(), ","), method.Population, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d\n", *seeds, *maxTicks)

	result, err := optimize.Minimize(
		optimize.Problem{Func: opt.objective},
		params.Normalize(params.DefaultVector()),
		&optimize.Settings{FuncEvaluations: *maxEvals},
		method,
	)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if opt.bestParams == nil && result != nil {
		opt.bestParams = params.Clamp(params.Denormalize(result.X))
	}

	opt.summarize()
	if err := opt.save(*outputDir); err != nil {
		slog.Error("failed to save results", "error", err)
	}
}

// optimizer is the CMA-ES objective. It logs one CSV row per evaluation and
// remembers the best clamped parameters seen.
type optimizer struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	maxEvals  int
	dt        float64

	file *os.File
	log  *csv.Writer

	evals       int
	start       time.Time
	best        Evaluation
	bestParams  []float64
	bestEvalNum int
}

// The header depends on the selected parameters, so the log is written with
// encoding/csv rather than a tagged struct.
func newOptimizer(dir string, params *ParamVector, evaluator *FitnessEvaluator, maxEvals int) (*optimizer, error) {
	f, err := os.Create(filepath.Join(dir, "optimize_log.csv"))
	if err != nil {
		return nil, err
	}
	o := &optimizer{
		params:    params,
		evaluator: evaluator,
		maxEvals:  maxEvals,
		dt:        config.Cfg().Physics.DT,
		file:      f,
		log:       csv.NewWriter(f),
		start:     time.Now(),
		best:      Evaluation{Fitness: math.Inf(1)},
	}

	header := []string{"eval", "fitness", "quality", "survival_s"}
	for k := traits.Kingdom(0); k < traits.NumKingdoms; k++ {
		header = append(header, k.String())
	}
	for k := traits.Kingdom(0); k < traits.NumKingdoms; k++ {
		header = append(header, "collapsed_"+k.String())
	}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := o.log.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return o, nil
}

func (o *optimizer) objective(x []float64) float64 {
	values := o.params.Clamp(o.params.Denormalize(x))
	o.evaluator.Evaluate(values)
	ev := o.evaluator.LastEvaluation()
	o.evals++

	if ev.Fitness < o.best.Fitness {
		o.best = ev
		o.bestParams = values
		o.bestEvalNum = o.evals
	}
	o.record(ev, values)
	o.progress(ev)
	return ev.Fitness
}

func (o *optimizer) record(ev Evaluation, values []float64) {
	row := []string{
		strconv.Itoa(o.evals),
		strconv.FormatFloat(ev.Fitness, 'f', 2, 64),
		strconv.FormatFloat(ev.Quality, 'f', 4, 64),
		strconv.FormatFloat(ev.SurvivalTicks*o.dt, 'f', 1, 64),
	}
	for _, n := range ev.Kingdoms {
		row = append(row, strconv.FormatFloat(n, 'f', 1, 64))
	}
	for _, n := range ev.Collapsed {
		row = append(row, strconv.Itoa(n))
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := o.log.Write(row); err != nil {
		slog.Warn("failed to write optimization log", "error", err)
	}
	o.log.Flush()
}

func (o *optimizer) progress(ev Evaluation) {
	elapsed := time.Since(o.start)
	remaining := time.Duration(o.maxEvals-o.evals) * (elapsed / time.Duration(o.evals))

	fmt.Printf("Eval %d/%d: survived=%.0fs quality=%.2f plants=%.0f protists=%.0f animals=%.0f%s | best #%d | elapsed %s, ETA %s\n",
		o.evals, o.maxEvals, ev.SurvivalTicks*o.dt, ev.Quality,
		ev.Kingdoms[traits.KingdomPlant], ev.Kingdoms[traits.KingdomProtist], ev.Kingdoms[traits.KingdomAnimal],
		collapseNote(ev.Collapsed), o.bestEvalNum,
		formatDuration(elapsed), formatDuration(remaining))
}

// collapseNote lists the kingdoms that ended at least one seed's run.
func collapseNote(collapsed [traits.NumKingdoms]int) string {
	var parts []string
	for k, n := range collapsed {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", traits.Kingdom(k), n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " collapsed=" + strings.Join(parts, ",")
}

func (o *optimizer) summarize() {
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", o.evals, formatDuration(time.Since(o.start)))
	fmt.Printf("Best: eval #%d, survived=%.0fs quality=%.2f\n", o.bestEvalNum, o.best.SurvivalTicks*o.dt, o.best.Quality)
	if o.bestParams == nil {
		return
	}
	defaults := o.params.DefaultVector()
	for _, group := range o.params.Groups() {
		fmt.Printf("\n[%s]\n", group)
		for i, spec := range o.params.Specs {
			if spec.Group() == group {
				fmt.Printf("  %-22s %10.4f  (default %.4f)\n", spec.Name, o.bestParams[i], defaults[i])
			}
		}
	}
}

// save writes best_config.yaml and the best run's hall_of_fame.json.
func (o *optimizer) save(dir string) error {
	if o.bestParams == nil {
		return nil
	}
	cfg := config.Cfg().Clone()
	o.params.ApplyToConfig(cfg, o.bestParams)
	path := filepath.Join(dir, "best_config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", path)

	hof := o.evaluator.BestHallOfFame()
	if hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	path = filepath.Join(dir, "hall_of_fame.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	fmt.Printf("Hall of fame saved to: %s\n", path)
	return nil
}

func (o *optimizer) close() {
	o.log.Flush()
	o.file.Close()
}

// formatDuration formats a duration as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
