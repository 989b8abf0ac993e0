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

	"github.com/jblindsay/whitebox-tools-sub008/batch"
	"github.com/jblindsay/whitebox-tools-sub008/geospatialfiles/raster"
	"github.com/jblindsay/whitebox-tools-sub008/hydro"
	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

type BreachDepressions struct {
	inputFile   string
	outputFile  string
	options     hydro.Options

	// with an explicit increment and no precision the input's is kept
	inputPrecision bool
	toolManager    *PluginToolManager
}

func (this *BreachDepressions) GetName() string {
	s := "BreachDepressions"
	return getFormattedToolName(s)
}

func (this *BreachDepressions) GetDescription() string {
	s := "Removes depressions in DEMs using selective breaching"
	return getFormattedToolDescription(s)
}

func (this *BreachDepressions) GetHelpDocumentation() string {
	ret := "This tool is used to remove the sinks (i.e. topographic depressions and flat areas) from digital elevation models (DEMs) using a highly efficient and flexible breaching, or carving, method. " +
		"Each pit is drained by lowering the cells along the shortest descending path to a lower cell. " +
		"When MaxDepth or MaxLength are given, pits that would need a deeper or longer channel are filled instead."
	return ret
}

func (this *BreachDepressions) SetToolManager(tm *PluginToolManager) {
	this.toolManager = tm
}

// Can be called to gather a listing of the arguments required to run this tool.
func (this *BreachDepressions) GetArgDescriptions() [][]string {
	numArgs := 8
	ret := structures.Create2dStringArray(numArgs, 3)

	ret[0][0] = "InputDEM"
	ret[0][1] = "string"
	ret[0][2] = "The input DEM name with file extension"

	ret[1][0] = "OutputFile"
	ret[1][1] = "string"
	ret[1][2] = "The output filename with file extension"

	ret[2][0] = "MaxDepth"
	ret[2][1] = "float64"
	ret[2][2] = "The maximum breach channel depth (-1 to ignore)"

	ret[3][0] = "MaxLength"
	ret[3][1] = "float64"
	ret[3][2] = "The maximum length of a breach channel in cells (-1 to ignore)"

	ret[4][0] = "FillSingleCellPits"
	ret[4][1] = "bool"
	ret[4][2] = "Raise single-cell pits before breaching?"

	ret[5][0] = "FlatIncrement"
	ret[5][1] = "float64"
	ret[5][2] = "Elevation increment between cells (auto to derive it)"

	ret[6][0] = "LeaveFlats"
	ret[6][1] = "bool"
	ret[6][2] = "Leave flat areas level instead of draining them?"

	ret[7][0] = "Precision"
	ret[7][1] = "string"
	ret[7][2] = "Output precision, wide or narrow (default: the input's)"

	return ret
}

// ParseArguments reads the positional arguments. Only the input and
// output files are required.
func (this *BreachDepressions) ParseArguments(args []string) error {
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

	opts := hydro.DefaultOptions()
	if opts.MaxDepth, err = boundArg(optionalArg(args, 2), "max depth"); err != nil {
		return err
	}
	if opts.MaxLength, err = boundArg(optionalArg(args, 3), "max length"); err != nil {
		return err
	}
	if opts.FillSingleCellPits, err = boolArg(optionalArg(args, 4), "fill single-cell pits"); err != nil {
		return err
	}
	if opts.AutoIncrement, opts.FlatIncrement, err = incrementArg(optionalArg(args, 5)); err != nil {
		return err
	}
	if opts.LeaveFlats, err = boolArg(optionalArg(args, 6), "leave flats"); err != nil {
		return err
	}
	if opts.Precision, err = hydro.ParsePrecision(optionalArg(args, 7)); err != nil {
		return err
	}
	if err = opts.Validate(); err != nil {
		return err
	}
	this.options = opts
	this.inputPrecision = optionalArg(args, 7) == "" && !opts.AutoIncrement
	return nil
}

func (this *BreachDepressions) Run(ctx context.Context) error {
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

	opts := this.options
	opts.CellSizeX = rin.GetCellSizeX()
	opts.CellSizeY = rin.GetCellSizeY()
	opts.Logger = l
	if this.inputPrecision {
		opts.Precision = batch.PrecisionOf(rin)
	}
	res, err := hydro.BreachOrFill(dem, opts)
	if err != nil {
		return err
	}

	l.Info("Saving DEM data...", "output", this.outputFile)
	if err = writeCorrected(this.outputFile, res, rin, this.inputFile); err != nil {
		return err
	}

	l.Info(fmt.Sprintf("Elapsed time (excluding file I/O): %s", res.Elapsed))
	l.Info(fmt.Sprintf("Elapsed time (total): %s", time.Since(start)))
	l.Info("Breaching summary",
		"pits breached", res.Stats.PitsBreached,
		"flats drained", res.Stats.FlatsDrained,
		"pits raised", res.Stats.PitsRaised,
		"cells lowered", res.Stats.CellsLowered,
		"increment", res.Increment)
	if res.UsedFallbackFill {
		l.Info(fmt.Sprintf("Num. of unbreached pits: %v (%f%% of total)",
			res.Stats.PitsUnresolved,
			100.0*float64(res.Stats.PitsUnresolved)/float64(max(res.Stats.ValidCells, 1))))
	}
	return nil
}

// writeCorrected saves a corrected surface with the georeferencing of
// the input raster. Narrow results are stored as 32-bit floats.
func writeCorrected(fileName string, res *hydro.Result, like *raster.Raster, inputFile string) error {
	dataType := raster.DT_FLOAT64
	if res.Precision == hydro.PrecisionNarrow {
		dataType = raster.DT_FLOAT32
	}
	metadata := []string{
		fmt.Sprintf("Created on %s", time.Now().Local()),
		fmt.Sprintf("Input file: %s", inputFile),
	}
	metadata = append(metadata, res.Metadata...)
	_, err := raster.WriteArray(fileName, res.Corrected, like, dataType, metadata...)
	return err
}
