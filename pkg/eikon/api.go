// Package eikon approximates a target raster image with an evolved stack of
// translucent polygons. The Client wraps target loading, the evolution
// pipeline, persistence, and run artifacts behind one facade.
package eikon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"eikon/internal/evo"
	"eikon/internal/genotype"
	"eikon/internal/model"
	"eikon/internal/platform"
	"eikon/internal/render"
	"eikon/internal/stats"
	"eikon/internal/storage"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "eikon.db"
	defaultMaxDim       = 100
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
}

type Client struct {
	store   storage.Store
	session *platform.Session

	artifactsDir string
	exportsDir   string
}

type RunRequest struct {
	TargetPath  string
	Population  int
	Generations int
	KeepN       int
	MaxAge      int
	MaxDim      int
	Seed        int64

	// Progress, when set, observes each completed generation.
	Progress func(generation int, bestFitness float64)
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	TargetWidth      int
	TargetHeight     int
	BestByGeneration []float64
	FinalBestFitness float64
	BestPolygons     int
	BestGenomeLen    int
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	TargetPath       string
	Seed             int64
	Population       int
	Generations      int
	FinalBestFitness float64
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type RenderRequest struct {
	RunID   string
	Latest  bool
	Width   int
	Height  int
	OutPath string
}

type RenderSummary struct {
	RunID  string
	Path   string
	Width  int
	Height int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureSession()
	if err != nil {
		return err
	}
	return c.store.Init(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.TargetPath == "" {
		return RunSummary{}, errors.New("target path is required")
	}
	if req.Population <= 0 {
		req.Population = platform.DefaultPopulationSize
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.MaxDim <= 0 {
		req.MaxDim = defaultMaxDim
	}
	if req.MaxAge <= 0 {
		req.MaxAge = platform.DefaultMaxAge
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	keepN := req.KeepN
	if keepN <= 0 {
		keepN = evo.DefaultKeepN(req.Population)
	}
	if keepN <= 0 {
		return RunSummary{}, fmt.Errorf("population %d is too small to cull", req.Population)
	}

	file, err := os.Open(req.TargetPath)
	if err != nil {
		return RunSummary{}, fmt.Errorf("open target: %w", err)
	}
	target, err := render.DecodeTarget(file, req.MaxDim)
	closeErr := file.Close()
	if err != nil {
		return RunSummary{}, fmt.Errorf("decode target %s: %w", req.TargetPath, err)
	}
	if closeErr != nil {
		return RunSummary{}, closeErr
	}

	session, err := c.ensureSession()
	if err != nil {
		return RunSummary{}, err
	}

	var hook evo.Hook
	if req.Progress != nil {
		progress := req.Progress
		hook = func(p evo.Population) {
			progress(p.Generation, p.Members[0].Fitness)
		}
	}

	now := time.Now().UTC()
	result, err := session.RunEvolution(ctx, platform.EvolutionConfig{
		Target:         target,
		PopulationSize: req.Population,
		Generations:    req.Generations,
		KeepN:          keepN,
		MaxAge:         req.MaxAge,
		Seed:           req.Seed,
		Hook:           hook,
	})
	if err != nil {
		return RunSummary{}, err
	}

	bounds := target.Bounds()
	finalBest := result.BestByGeneration[len(result.BestByGeneration)-1]
	bestPolygons := len(genotype.Decode(result.Best.Genome))

	var bestPNG []byte
	if result.Best.Render != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, result.Best.Render); err != nil {
			return RunSummary{}, fmt.Errorf("encode best render: %w", err)
		}
		bestPNG = buf.Bytes()
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          result.RunID,
			TargetPath:     req.TargetPath,
			TargetWidth:    bounds.Dx(),
			TargetHeight:   bounds.Dy(),
			MaxDim:         req.MaxDim,
			PopulationSize: req.Population,
			Generations:    req.Generations,
			KeepN:          keepN,
			MaxAge:         req.MaxAge,
			Seed:           req.Seed,
		},
		BestByGeneration:      result.BestByGeneration,
		GenerationDiagnostics: result.Diagnostics,
		FinalBestFitness:      finalBest,
		Best: stats.BestCreature{
			ID:       result.Best.ID,
			Fitness:  result.Best.Fitness,
			Age:      result.Best.Age,
			Genome:   result.Best.Genome,
			Polygons: bestPolygons,
		},
		BestPNG: bestPNG,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.WriteFitnessSeries(runDir, result.BestByGeneration); err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:            result.RunID,
		TargetPath:       req.TargetPath,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		Seed:             req.Seed,
		FinalBestFitness: finalBest,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            result.RunID,
		ArtifactsDir:     filepath.Clean(runDir),
		TargetWidth:      bounds.Dx(),
		TargetHeight:     bounds.Dy(),
		BestByGeneration: append([]float64(nil), result.BestByGeneration...),
		FinalBestFitness: finalBest,
		BestPolygons:     bestPolygons,
		BestGenomeLen:    len(result.Best.Genome),
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			TargetPath:       e.TargetPath,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			FinalBestFitness: e.FinalBestFitness,
		})
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "fitness history")
	if err != nil {
		return nil, err
	}

	session, err := c.ensureSession()
	if err != nil {
		return nil, err
	}
	history, ok, err := session.FitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Fall back to run artifacts so history survives memory-backed runs.
		history, ok, err = stats.ReadFitnessSeries(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
		}
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "diagnostics")
	if err != nil {
		return nil, err
	}

	session, err := c.ensureSession()
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := session.Diagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	out := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(out, diagnostics)
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "export")
	if err != nil {
		return ExportSummary{}, err
	}

	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// Render rasterizes a run's best genome at an arbitrary resolution and
// writes it as PNG. Genomes are resolution independent, so the output can be
// far larger than the raster the run evolved against.
func (c *Client) Render(_ context.Context, req RenderRequest) (RenderSummary, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return RenderSummary{}, fmt.Errorf("render size must be positive, got %dx%d", req.Width, req.Height)
	}
	if req.OutPath == "" {
		return RenderSummary{}, errors.New("output path is required")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "render")
	if err != nil {
		return RenderSummary{}, err
	}

	best, ok, err := stats.ReadBestCreature(c.artifactsDir, runID)
	if err != nil {
		return RenderSummary{}, err
	}
	if !ok {
		return RenderSummary{}, fmt.Errorf("best creature not found for run id: %s", runID)
	}

	img, err := evo.RenderGenome(render.Vector{}, best.Genome, req.Width, req.Height)
	if err != nil {
		return RenderSummary{}, err
	}

	if dir := filepath.Dir(req.OutPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return RenderSummary{}, err
		}
	}
	file, err := os.Create(req.OutPath)
	if err != nil {
		return RenderSummary{}, err
	}
	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return RenderSummary{}, err
	}
	if err := file.Close(); err != nil {
		return RenderSummary{}, err
	}

	return RenderSummary{RunID: runID, Path: filepath.Clean(req.OutPath), Width: req.Width, Height: req.Height}, nil
}

func (c *Client) resolveRunID(runID string, latest bool, what string) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if latest {
		entries, err := stats.ListRunIndex(c.artifactsDir)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", errors.New("no runs available")
		}
		return entries[0].RunID, nil
	}
	if runID == "" {
		return "", fmt.Errorf("%s requires run id or latest", what)
	}
	return runID, nil
}

func (c *Client) ensureSession() (*platform.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	session, err := platform.NewSession(platform.Config{
		Store:      c.store,
		Rasterizer: render.Vector{},
	})
	if err != nil {
		return nil, err
	}
	c.session = session
	return c.session, nil
}
