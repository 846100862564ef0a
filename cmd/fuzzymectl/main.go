package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"fuzzyme/internal/braid"
	"fuzzyme/internal/storage"
	fuzzyapi "fuzzyme/pkg/fuzzyme"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "eval":
		return runEval(ctx, args[1:])
	case "explain":
		return runExplain(ctx, args[1:])
	case "sens":
		return runSens(ctx, args[1:])
	case "profile":
		return runProfile(ctx, args[1:])
	case "save":
		return runSave(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "evaluations":
		return runEvaluations(ctx, args[1:])
	case "benchmark":
		return runBenchmark(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func addStoreFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "fuzzyme.db", "sqlite database path")
	return storeKind, dbPath
}

func addInputFlags(fs *flag.FlagSet) *inputFlags {
	best := braid.BestInputs()
	in := &inputFlags{}
	fs.Float64Var(&in.angle, "angle", best.BraidAngle, "braiding angle in degrees")
	fs.Float64Var(&in.yarnWidth, "yarn-width", best.YarnWidth, "yarn width in mm")
	fs.Float64Var(&in.rdRatio, "rd-ratio", best.RadiusDiameterRatio, "curvature radius over mandrel diameter")
	fs.Float64Var(&in.edgeRadius, "edge-radius", best.EdgeRadius, "smallest cross-section edge radius in mm")
	fs.Float64Var(&in.aspect, "aspect", best.AspectRatio, "cross-section aspect ratio")
	fs.Float64Var(&in.plies, "plies", best.PlyNum, "number of plies")
	fs.Float64Var(&in.patches, "patches", best.PatchNum, "number of patches")
	fs.StringVar(&in.configPath, "config", "", "TOML input file overriding the flags")
	return in
}

type inputFlags struct {
	angle, yarnWidth, rdRatio, edgeRadius, aspect, plies, patches float64
	configPath                                                    string
}

func (in *inputFlags) resolve() (braid.Inputs, error) {
	if in.configPath != "" {
		return loadInputs(in.configPath)
	}
	return braid.Inputs{
		BraidAngle:          in.angle,
		YarnWidth:           in.yarnWidth,
		RadiusDiameterRatio: in.rdRatio,
		EdgeRadius:          in.edgeRadius,
		AspectRatio:         in.aspect,
		PlyNum:              in.plies,
		PatchNum:            in.patches,
	}, nil
}

func newClient(storeKind, dbPath string, tolerance float64) (*fuzzyapi.Client, error) {
	return fuzzyapi.New(fuzzyapi.Options{
		StoreKind: storeKind,
		DBPath:    dbPath,
		Tolerance: tolerance,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	in := addInputFlags(fs)
	record := fs.Bool("record", false, "persist the evaluation")
	pipelineID := fs.String("pipeline", "", "pipeline id to record under")
	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs, err := in.resolve()
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Evaluate(ctx, fuzzyapi.EvaluateRequest{
		Inputs:     inputs,
		Record:     *record,
		PipelineID: *pipelineID,
	})
	if err != nil {
		return err
	}

	printSummary(summary)
	if summary.ID != "" {
		fmt.Printf("recorded id=%s\n", summary.ID)
	}
	return nil
}

func runExplain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("explain", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	in := addInputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs, err := in.resolve()
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Evaluate(ctx, fuzzyapi.EvaluateRequest{Inputs: inputs})
	if err != nil {
		return err
	}

	fmt.Println(summary.Sentence)
	if summary.Hint != "" {
		fmt.Println(summary.Hint)
	}
	return nil
}

func runSens(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sens", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	in := addInputFlags(fs)
	tolerance := fs.Float64("tolerance", braid.DefaultTolerance, "finite difference step")
	profilePath := fs.String("profile", "", "TOML profile file; uses its seeds instead of the input flags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *tolerance)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *profilePath != "" {
		prof, seeds, err := loadProfile(*profilePath)
		if err != nil {
			return err
		}
		summary, sens, err := client.ProfileSensitivity(ctx, prof, seeds)
		if err != nil {
			return err
		}
		fmt.Printf("effort=%.4f\n", summary.Value)
		for i, d := range sens {
			fmt.Printf("d(effort)/d(seed %d) = %+.6f\n", i, d)
		}
		return nil
	}

	inputs, err := in.resolve()
	if err != nil {
		return err
	}
	summary, grads, err := client.Sensitivity(ctx, inputs)
	if err != nil {
		return err
	}
	fmt.Printf("effort=%.4f\n", summary.Value)
	for _, g := range grads {
		fmt.Printf("d(effort)/d(%s) = %+.6f\n", g.Variable, g.Value)
	}
	return nil
}

func runProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	configPath := fs.String("config", "", "TOML profile file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("profile requires -config")
	}

	prof, _, err := loadProfile(*configPath)
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.EvaluateProfile(ctx, prof)
	if err != nil {
		return err
	}

	fmt.Printf("effort=%.4f sections=%d\n", summary.Value, len(summary.Sections))
	for i, s := range summary.Sections {
		fmt.Printf("section %d: effort=%.4f", i, s.Value)
		if s.Extrapolated {
			fmt.Printf(" (extrapolated)")
		}
		fmt.Printf(" %s", s.Sentence)
		if s.Hint != "" {
			fmt.Printf(" %s", s.Hint)
		}
		fmt.Println()
	}
	return nil
}

func runSave(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	id := fs.String("id", "", "pipeline id; generated when empty")
	name := fs.String("name", "", "pipeline name override")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	savedID, err := client.SavePipeline(ctx, *id, *name)
	if err != nil {
		return err
	}

	fmt.Printf("saved pipeline id=%s\n", savedID)
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	id := fs.String("id", "", "pipeline id (required)")
	asJSON := fs.Bool("json", false, "dump the full pipeline definition as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return usageError("show requires -id")
	}

	client, err := newClient(*storeKind, *dbPath, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	def, ok, err := client.LoadPipeline(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pipeline not found: %s", *id)
	}

	if *asJSON {
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("pipeline id=%s name=%s\n", def.ID, def.Name)
	for _, sub := range def.Subs {
		fmt.Printf("stage %s: inputs=%d rules=%d\n", sub.Name, len(sub.Inputs), len(sub.Rules))
	}
	fmt.Printf("stage %s: inputs=%d rules=%d\n", def.Main.Name, len(def.Main.Inputs), len(def.Main.Rules))
	fmt.Printf("bounds=%d\n", len(def.Bounds))
	return nil
}

func runEvaluations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluations", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	pipelineID := fs.String("pipeline", "", "pipeline id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pipelineID == "" {
		return usageError("evaluations requires -pipeline")
	}

	client, err := newClient(*storeKind, *dbPath, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	records, err := client.Evaluations(ctx, *pipelineID)
	if err != nil {
		return err
	}

	for _, rec := range records {
		fmt.Printf("%s %s effort=%.4f rule=%s variable=%s label=%s\n",
			rec.CreatedAtUTC, rec.ID, rec.Value, rec.Rule, rec.Variable, rec.Label)
	}
	fmt.Printf("%d evaluation(s)\n", len(records))
	return nil
}

func runBenchmark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	in := addInputFlags(fs)
	iterations := fs.Int("iterations", 10000, "timed evaluations")
	warmup := fs.Int("warmup", 100, "untimed evaluations before the run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs, err := in.resolve()
	if err != nil {
		return err
	}

	model, err := braid.New()
	if err != nil {
		return err
	}

	for i := 0; i < *warmup; i++ {
		if _, err := model.Evaluate(inputs); err != nil {
			return err
		}
	}

	hg := hdrhistogram.New(1, 50000, 5)
	for i := 0; i < *iterations; i++ {
		t0 := time.Now()
		if _, err := model.Evaluate(inputs); err != nil {
			return err
		}
		if err := hg.RecordValue(time.Since(t0).Microseconds()); err != nil {
			return err
		}
	}

	fmt.Printf("%d evaluations, latency in microseconds:\n", *iterations)
	fmt.Printf("min=%d mean=%.1f p50=%d p90=%d p99=%d max=%d\n",
		hg.Min(), hg.Mean(),
		hg.ValueAtQuantile(50), hg.ValueAtQuantile(90), hg.ValueAtQuantile(99),
		hg.Max())
	return nil
}

func printSummary(summary fuzzyapi.EvaluateSummary) {
	fmt.Printf("effort=%.4f", summary.Value)
	if summary.Extrapolated {
		fmt.Printf(" (extrapolated)")
	}
	fmt.Println()
	fmt.Println(summary.Sentence)
	if summary.Hint != "" {
		fmt.Println(summary.Hint)
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: fuzzymectl <init|eval|explain|sens|profile|save|show|evaluations|benchmark> [flags]", msg)
}
