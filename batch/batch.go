// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// Package batch corrects many independent DEM tiles concurrently. Each
// tile runs the whole breach pipeline on its own worker; a single
// coordinator collects completions, reports progress and performs every
// write, so stores never see concurrent saves.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/jblindsay/whitebox-tools-sub008/hydro"
	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

// Tile is one DEM and whatever its store needs to write it back.
type Tile struct {
	Elevations *structures.RectangularArrayFloat64
	// CellSizeX and CellSizeY feed the automatic increment; zero means 1.
	CellSizeX float64
	CellSizeY float64
	// Source is opaque to the coordinator and handed back to the store on save.
	Source any
	// Precision is the stored precision on load and the one to write on save.
	Precision hydro.Precision
	Metadata  []string
}

// TileStore loads and saves tiles. Load is called from worker goroutines;
// Save is only ever called from the coordinator.
type TileStore interface {
	Load(ctx context.Context, name string) (*Tile, error)
	Save(ctx context.Context, name string, tile *Tile) error
}

// Job names one tile to correct and where its result goes.
type Job struct {
	Input  string
	Output string
}

// Config is shared read-only by every worker.
type Config struct {
	// Workers bounds concurrent tiles; zero means runtime.NumCPU().
	Workers int
	Options hydro.Options
	// InputPrecision makes runs with an explicit increment keep each
	// tile's loaded precision instead of Options.Precision.
	InputPrecision bool
	Logger         *log.Logger
}

// TileReport describes one finished tile.
type TileReport struct {
	Job              Job
	UsedFallbackFill bool
	Stats            hydro.Stats
	Elapsed          time.Duration
}

// Summary is returned even when some tiles fail.
type Summary struct {
	RunID     string
	Completed []TileReport
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

type completion struct {
	job    Job
	tile   *Tile
	result *hydro.Result
	err    error
}

// Run corrects every job's tile. A failing tile is reported and skipped;
// the others still run. Cancelling ctx stops further dispatches while
// tiles already running finish and are saved. The returned error
// aggregates every tile failure and the cancellation, if any.
func Run(ctx context.Context, store TileStore, jobs []Job, cfg Config) (*Summary, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	l := cfg.Logger
	if l == nil {
		l = log.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	l = l.With("run", summary.RunID)
	l.Info("starting batch", "tiles", len(jobs), "workers", workers)

	var errs *multierror.Error
	done := make(chan completion)
	coordinated := make(chan struct{})
	go func() {
		defer close(coordinated)
		for c := range done {
			if c.err == nil {
				c.err = save(ctx, store, summary.RunID, c)
			}
			if c.err != nil {
				summary.Failed++
				errs = multierror.Append(errs, fmt.Errorf("tile %s: %w", c.job.Input, c.err))
				l.Error("tile failed", "input", c.job.Input, "err", c.err)
				continue
			}
			summary.Completed = append(summary.Completed, TileReport{
				Job:              c.job,
				UsedFallbackFill: c.result.UsedFallbackFill,
				Stats:            c.result.Stats,
				Elapsed:          c.result.Elapsed,
			})
			l.Info(fmt.Sprintf("tile %d of %d complete", len(summary.Completed)+summary.Failed, len(jobs)),
				"input", c.job.Input,
				"output", c.job.Output,
				"fallback", c.result.UsedFallbackFill)
		}
	}()

	var g errgroup.Group
	g.SetLimit(workers)
	dispatched := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		dispatched++
		job := job
		g.Go(func() error {
			done <- correct(ctx, store, job, cfg, l)
			return nil
		})
	}
	_ = g.Wait()
	close(done)
	<-coordinated

	summary.Skipped = len(jobs) - dispatched
	if err := ctx.Err(); err != nil && summary.Skipped > 0 {
		errs = multierror.Append(errs, fmt.Errorf("%d tiles not started: %w", summary.Skipped, err))
	}
	summary.Elapsed = time.Since(start)
	l.Info("batch finished",
		"completed", len(summary.Completed),
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Elapsed)
	return summary, errs.ErrorOrNil()
}

func correct(ctx context.Context, store TileStore, job Job, cfg Config, l *log.Logger) completion {
	c := completion{job: job}
	c.tile, c.err = store.Load(ctx, job.Input)
	if c.err != nil {
		return c
	}
	opts := cfg.Options
	if cfg.InputPrecision && !opts.AutoIncrement {
		opts.Precision = c.tile.Precision
	}
	if c.tile.CellSizeX > 0 {
		opts.CellSizeX = c.tile.CellSizeX
	}
	if c.tile.CellSizeY > 0 {
		opts.CellSizeY = c.tile.CellSizeY
	}
	if opts.Logger == nil {
		opts.Logger = l.With("tile", job.Input)
	}
	c.result, c.err = hydro.BreachOrFill(c.tile.Elevations, opts)
	return c
}

func save(ctx context.Context, store TileStore, runID string, c completion) error {
	out := &Tile{
		Elevations: c.result.Corrected,
		CellSizeX:  c.tile.CellSizeX,
		CellSizeY:  c.tile.CellSizeY,
		Source:     c.tile.Source,
		Precision:  c.result.Precision,
	}
	out.Metadata = append(out.Metadata, c.tile.Metadata...)
	out.Metadata = append(out.Metadata, c.result.Metadata...)
	out.Metadata = append(out.Metadata,
		fmt.Sprintf("Input file: %s", c.job.Input),
		fmt.Sprintf("Batch run: %s", runID))
	return store.Save(ctx, c.job.Output, out)
}
