// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// This file was originally created by John Lindsay<jlindsay@uoguelph.ca>,
// Feb. 2015.

package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/jblindsay/whitebox-tools-sub008/geospatialfiles/raster"
	"github.com/jblindsay/whitebox-tools-sub008/hydro"
	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

type FillDepressions struct {
	inputFile   string
	outputFile  string
	fixFlats    bool
	toolManager *PluginToolManager
}

func (this *FillDepressions) GetName() string {
	s := "FillDepressions"
	return getFormattedToolName(s)
}

func (this *FillDepressions) GetDescription() string {
	s := "Removes depressions in DEMs using filling"
	return getFormattedToolDescription(s)
}

func (this *FillDepressions) GetHelpDocumentation() string {
	ret := "This tool is used to remove the sinks (i.e. topographic depressions and flat areas) from digital elevation models (DEMs) using an efficient depression filling method. Note that the BreachDepressions tool is the preferred method of creating a depressionless DEM."
	return ret
}

func (this *FillDepressions) SetToolManager(tm *PluginToolManager) {
	this.toolManager = tm
}

func (this *FillDepressions) GetArgDescriptions() [][]string {
	numArgs := 3
	ret := structures.Create2dStringArray(numArgs, 3)

	ret[0][0] = "InputDEM"
	ret[0][1] = "string"
	ret[0][2] = "The input DEM name, with directory and file extension"

	ret[1][0] = "OutputFile"
	ret[1][1] = "string"
	ret[1][2] = "The output filename, with directory and file extension"

	ret[2][0] = "FixFlats"
	ret[2][1] = "bool"
	ret[2][2] = "Should the resulting flat areas be fixed?"

	return ret
}

func (this *FillDepressions) ParseArguments(args []string) error {
	if err := requireArgs(args, 2, this.GetName()); err != nil {
		return err
	}
	var err error
	if this.inputFile, err = this.toolManager.inputFileArg(args[0]); err != nil {
		return err
	}
	if this.outputFile, err = this.toolManager.outputFileArg(args[1]); err != nil {
		return err
	}
	this.fixFlats, err = boolArg(optionalArg(args, 2), "fix flats")
	return err
}

func (this *FillDepressions) Run(ctx context.Context) error {
	start := time.Now()
	l := this.toolManager.Logger.With("tool", this.GetName())

	l.Info("Reading DEM data...", "input", this.inputFile)
	dem, rin, err := raster.ReadArray(this.inputFile)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	opts := hydro.DefaultOptions()
	opts.LeaveFlats = !this.fixFlats
	opts.CellSizeX = rin.GetCellSizeX()
	opts.CellSizeY = rin.GetCellSizeY()
	opts.Logger = l
	res, err := hydro.FillDepressions(dem, opts)
	if err != nil {
		return err
	}

	l.Info("Saving DEM data...", "output", this.outputFile)
	if err = writeCorrected(this.outputFile, res, rin, this.inputFile); err != nil {
		return err
	}
	l.Info(fmt.Sprintf("Elapsed time (excluding file I/O): %s", res.Elapsed))
	l.Info(fmt.Sprintf("Elapsed time (total): %s", time.Since(start)))
	l.Info("Filling summary", "cells raised", res.Stats.CellsRaised, "fix flats", this.fixFlats)
	return nil
}
