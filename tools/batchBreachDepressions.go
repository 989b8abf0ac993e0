// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package tools

import (
	"context"
	"fmt"

	"github.com/jblindsay/whitebox-tools-sub008/batch"
	"github.com/jblindsay/whitebox-tools-sub008/config"
	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

// BatchBreachDepressions breaches every tile listed in a TOML job file.
type BatchBreachDepressions struct {
	job         *config.Job
	toolManager *PluginToolManager
}

func (this *BatchBreachDepressions) GetName() string {
	s := "BatchBreachDepressions"
	return getFormattedToolName(s)
}

func (this *BatchBreachDepressions) GetDescription() string {
	s := "Breaches depressions in many DEM tiles concurrently"
	return getFormattedToolDescription(s)
}

func (this *BatchBreachDepressions) GetHelpDocumentation() string {
	ret := "This tool runs BreachDepressions on every tile listed in a TOML job file. " +
		"The job file sets the number of workers, the breaching options in a [breach] table " +
		"and one [[tiles]] entry with an input and an output for each DEM. " +
		"A tile that cannot be read or corrected is reported and the remaining tiles are still processed."
	return ret
}

func (this *BatchBreachDepressions) SetToolManager(tm *PluginToolManager) {
	this.toolManager = tm
}

func (this *BatchBreachDepressions) GetArgDescriptions() [][]string {
	ret := structures.Create2dStringArray(1, 3)
	ret[0][0] = "JobFile"
	ret[0][1] = "string"
	ret[0][2] = "The TOML job file listing the tiles"
	return ret
}

func (this *BatchBreachDepressions) ParseArguments(args []string) error {
	if err := requireArgs(args, 1, this.GetName()); err != nil {
		return err
	}
	job, err := config.Load(this.toolManager.resolvePath(args[0]))
	if err != nil {
		return err
	}
	this.job = job
	return nil
}

func (this *BatchBreachDepressions) Run(ctx context.Context) error {
	opts, err := this.job.Options()
	if err != nil {
		return err
	}
	l := this.toolManager.Logger.With("tool", this.GetName())
	summary, err := batch.Run(ctx, batch.RasterStore{}, this.job.Jobs(), batch.Config{
		Workers:        this.job.Workers,
		Options:        opts,
		InputPrecision: this.job.InputPrecision(),
		Logger:         l,
	})
	if summary != nil {
		fallback := 0
		for _, r := range summary.Completed {
			if r.UsedFallbackFill {
				fallback++
			}
		}
		l.Info(fmt.Sprintf("%d tiles corrected, %d failed, %d not started", len(summary.Completed), summary.Failed, summary.Skipped),
			"filled", fallback,
			"elapsed", summary.Elapsed)
	}
	return err
}
