// Package pipeline runs loaded datasets through k-core filtering, user
// sampling, and persistence. The ingestion layer stays single-threaded
// per dataset; the engine only parallelizes across datasets.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seqrec-group/ingest-cli/internal/dataset"
)

// Config holds the engine settings.
type Config struct {
	KCore          int
	SampleUserSize int
	MetaAvailable  bool
	Concurrency    int // max datasets processed at once
}

// Result summarizes one completed dataset run.
type Result struct {
	RunID        string
	Dataset      string
	Family       string
	Interactions int
	MetadataRows int
	OutDir       string
}

// Engine orchestrates pipeline runs over dataset directories.
type Engine struct {
	reg     *dataset.Registry
	catalog *Catalog // nil disables run recording
	cfg     Config
}

// NewEngine creates a pipeline engine.
func NewEngine(reg *dataset.Registry, catalog *Catalog, cfg Config) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Engine{reg: reg, catalog: catalog, cfg: cfg}
}

// Run processes each dataset directory. Directories run concurrently up
// to the configured limit; the first failure cancels the rest.
func (e *Engine) Run(ctx context.Context, dirs []string) ([]*Result, error) {
	log := zap.L().With(zap.String("component", "pipeline.engine"))
	log.Info("starting run", zap.Int("datasets", len(dirs)))

	results := make([]*Result, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			res, err := e.runOne(gctx, dir)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("run complete", zap.Int("datasets", len(dirs)))
	return results, nil
}

func (e *Engine) runOne(ctx context.Context, dir string) (*Result, error) {
	proc, err := e.reg.Resolve(dir, dataset.Options{
		MetaAvailable:  e.cfg.MetaAvailable,
		KCore:          e.cfg.KCore,
		SampleUserSize: e.cfg.SampleUserSize,
	})
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("dataset", proc.Name()), zap.String("family", proc.Family()))

	runID := uuid.New().String()
	if e.catalog != nil {
		runID, err = e.catalog.Start(ctx, proc.Name(), proc.Family())
		if err != nil {
			return nil, err
		}
	}

	started := time.Now().UTC()
	res, err := e.process(ctx, proc, dir, runID, started)
	if err != nil {
		log.Error("run failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		if e.catalog != nil {
			if logErr := e.catalog.Fail(ctx, runID, err.Error()); logErr != nil {
				log.Error("failed to record run failure", zap.Error(logErr))
			}
		}
		return nil, err
	}

	if e.catalog != nil {
		if err := e.catalog.Complete(ctx, runID, res.Interactions, res.MetadataRows); err != nil {
			log.Error("failed to record run completion", zap.Error(err))
		}
	}
	log.Info("run complete",
		zap.Int("interactions", res.Interactions),
		zap.Int("metadata_rows", res.MetadataRows),
		zap.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func (e *Engine) process(ctx context.Context, proc dataset.Processor, dir, runID string, started time.Time) (*Result, error) {
	interactions, meta, err := proc.Load(ctx)
	if err != nil {
		return nil, err
	}

	interactions, err = KCore(interactions, e.cfg.KCore)
	if err != nil {
		return nil, err
	}
	interactions, err = SampleUsers(interactions, e.cfg.SampleUserSize)
	if err != nil {
		return nil, err
	}

	out, err := procDir(dir)
	if err != nil {
		return nil, err
	}

	files := []string{"interactions.csv"}
	if err := WriteCSV(interactions, filepath.Join(out, "interactions.csv")); err != nil {
		return nil, err
	}

	metaRows := 0
	if meta != nil {
		metaRows = meta.Len()
		files = append(files, "item2title.csv")
		if err := WriteCSV(meta, filepath.Join(out, "item2title.csv")); err != nil {
			return nil, err
		}
	}

	manifest := &Manifest{
		RunID:          runID,
		Dataset:        proc.Name(),
		Family:         proc.Family(),
		Interactions:   interactions.Len(),
		MetadataRows:   metaRows,
		KCore:          e.cfg.KCore,
		SampleUserSize: e.cfg.SampleUserSize,
		Files:          files,
		StartedAt:      started,
		FinishedAt:     time.Now().UTC(),
	}
	if err := WriteManifest(manifest, filepath.Join(out, "manifest.yaml")); err != nil {
		return nil, err
	}

	return &Result{
		RunID:        runID,
		Dataset:      proc.Name(),
		Family:       proc.Family(),
		Interactions: interactions.Len(),
		MetadataRows: metaRows,
		OutDir:       out,
	}, nil
}
