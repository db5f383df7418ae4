package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"eikon/internal/storage"
	eikonapi "eikon/pkg/eikon"
)

const (
	artifactsDir = "runs"
	exportsDir   = "exports"
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
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "render":
		return runRender(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "eikon.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := eikonapi.New(eikonapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
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

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	targetPath := fs.String("target", "", "target image path (png or jpeg)")
	population := fs.Int("pop", 30, "population size")
	generations := fs.Int("gens", 100, "generation count")
	keepN := fs.Int("keep", 0, "survivors kept per generation (0 uses a third of the population)")
	maxAge := fs.Int("max-age", 10, "max age recorded in the environment")
	maxDim := fs.Int("max-dim", 100, "longest side the target is scaled down to")
	seed := fs.Int64("seed", 0, "rng seed (0 uses the current time)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "eikon.db", "sqlite database path")
	quiet := fs.Bool("quiet", false, "suppress per-generation progress output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if setFlags["target"] || req.TargetPath == "" {
		req.TargetPath = *targetPath
	}
	if setFlags["pop"] || req.Population == 0 {
		req.Population = *population
	}
	if setFlags["gens"] || req.Generations == 0 {
		req.Generations = *generations
	}
	if setFlags["keep"] {
		req.KeepN = *keepN
	}
	if setFlags["max-age"] || req.MaxAge == 0 {
		req.MaxAge = *maxAge
	}
	if setFlags["max-dim"] || req.MaxDim == 0 {
		req.MaxDim = *maxDim
	}
	if setFlags["seed"] {
		req.Seed = *seed
	}
	if req.TargetPath == "" {
		return errors.New("run requires --target or a config with target_path")
	}

	client, err := eikonapi.New(eikonapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	// Progress is for humans watching; skip it when stderr is piped.
	if !*quiet && isatty.IsTerminal(os.Stderr.Fd()) {
		req.Progress = func(generation int, bestFitness float64) {
			fmt.Fprintf(os.Stderr, "generation=%d best_distance=%s\n",
				generation, humanize.Commaf(bestFitness))
		}
	}

	started := time.Now()
	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run complete run_id=%s target=%dx%d gens=%d final_best_distance=%s polygons=%d genes=%d elapsed=%s\n",
		summary.RunID,
		summary.TargetWidth,
		summary.TargetHeight,
		len(summary.BestByGeneration),
		humanize.Commaf(summary.FinalBestFitness),
		summary.BestPolygons,
		summary.BestGenomeLen,
		time.Since(started).Round(time.Millisecond),
	)
	fmt.Printf("artifacts=%s\n", summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := eikonapi.New(eikonapi.Options{ArtifactsDir: artifactsDir, ExportsDir: exportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, eikonapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, item := range items {
		created := item.CreatedAtUTC
		if at, err := time.Parse(time.RFC3339Nano, item.CreatedAtUTC); err == nil {
			created = humanize.Time(at)
		}
		fmt.Printf("run_id=%s created=%s target=%s seed=%d pop=%d gens=%d final_best_distance=%s\n",
			item.RunID,
			created,
			item.TargetPath,
			item.Seed,
			item.Population,
			item.Generations,
			humanize.Commaf(item.FinalBestFitness),
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "eikon.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}

	client, err := eikonapi.New(eikonapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, eikonapi.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for i, best := range history {
		fmt.Printf("generation=%d best_distance=%s\n", i+1, humanize.Commaf(best))
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "eikon.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("diagnostics requires --run-id or --latest")
	}

	client, err := eikonapi.New(eikonapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, eikonapi.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("generation=%d best=%s mean=%s worst=%s mean_genes=%.1f mean_polygons=%.1f oldest_age=%d\n",
			d.Generation,
			humanize.Commaf(d.BestFitness),
			humanize.Commaf(d.MeanFitness),
			humanize.Commaf(d.WorstFitness),
			d.MeanGenomeLen,
			d.MeanPolygonCount,
			d.OldestAge,
		)
	}
	return nil
}

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "render the most recent run's best creature")
	width := fs.Int("width", 1024, "output width in pixels")
	height := fs.Int("height", 1024, "output height in pixels")
	outPath := fs.String("out", "best.png", "output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("render requires --run-id or --latest")
	}

	client, err := eikonapi.New(eikonapi.Options{ArtifactsDir: artifactsDir, ExportsDir: exportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Render(ctx, eikonapi.RenderRequest{
		RunID:   *runID,
		Latest:  *latest,
		Width:   *width,
		Height:  *height,
		OutPath: *outPath,
	})
	if err != nil {
		return err
	}

	size := "unknown"
	if info, err := os.Stat(summary.Path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	fmt.Printf("rendered run_id=%s size=%dx%d file=%s (%s)\n",
		summary.RunID, summary.Width, summary.Height, summary.Path, size)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := eikonapi.New(eikonapi.Options{ArtifactsDir: artifactsDir, ExportsDir: exportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, eikonapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", summary.RunID, summary.Directory)
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: eikonctl <init|run|runs|fitness|diagnostics|render|export> [flags]", msg)
}
