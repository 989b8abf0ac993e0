// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// Package config loads TOML batch job files:
//
//	workers = 4
//
//	[breach]
//	max_depth = 10.0
//	max_length = 100
//	flat_increment = 0.001
//	fill_single_cell_pits = true
//	leave_flats = false
//	precision = "wide"
//
//	[[tiles]]
//	input = "tile_01.dep"
//	output = "tile_01_breached.dep"
//
// Omitted or negative constraints mean unconstrained; an omitted
// flat_increment means the increment is derived from each tile. With an
// explicit flat_increment and no precision, each tile keeps the
// precision it is stored at.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jblindsay/whitebox-tools-sub008/batch"
	"github.com/jblindsay/whitebox-tools-sub008/hydro"
)

var ErrInvalidJob = errors.New("invalid batch job")

type Breach struct {
	MaxDepth           *float64 `toml:"max_depth"`
	MaxLength          *float64 `toml:"max_length"`
	FlatIncrement      *float64 `toml:"flat_increment"`
	FillSingleCellPits bool     `toml:"fill_single_cell_pits"`
	LeaveFlats         bool     `toml:"leave_flats"`
	Precision          string   `toml:"precision"`
}

type Tile struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
}

// Job is a parsed batch file.
type Job struct {
	Workers int    `toml:"workers"`
	Breach  Breach `toml:"breach"`
	Tiles   []Tile `toml:"tiles"`

	// Dir is the directory of the file the job was loaded from.
	Dir string `toml:"-"`
}

// Load parses the job file at path. Unknown keys are rejected and
// relative tile paths are resolved against the file's directory.
func Load(path string) (*Job, error) {
	var job Job
	md, err := toml.DecodeFile(path, &job)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys %s: %w", path, strings.Join(keys, ", "), ErrInvalidJob)
	}
	job.Dir = filepath.Dir(path)
	if err = job.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range job.Tiles {
		job.Tiles[i].Input = job.resolve(job.Tiles[i].Input)
		job.Tiles[i].Output = job.resolve(job.Tiles[i].Output)
	}
	return &job, nil
}

func (j *Job) validate() error {
	if j.Workers < 0 {
		return fmt.Errorf("workers = %d: %w", j.Workers, ErrInvalidJob)
	}
	if len(j.Tiles) == 0 {
		return fmt.Errorf("no tiles: %w", ErrInvalidJob)
	}
	for i, t := range j.Tiles {
		if t.Input == "" || t.Output == "" {
			return fmt.Errorf("tile %d needs both input and output: %w", i+1, ErrInvalidJob)
		}
	}
	if _, err := j.Options(); err != nil {
		return err
	}
	return nil
}

func (j *Job) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(j.Dir, p)
}

// Options converts the [breach] table into validated engine options.
func (j *Job) Options() (hydro.Options, error) {
	opts := hydro.DefaultOptions()
	if v := j.Breach.MaxDepth; v != nil && *v >= 0 {
		opts.MaxDepth = *v
	}
	if v := j.Breach.MaxLength; v != nil && *v >= 0 {
		opts.MaxLength = *v
	}
	if v := j.Breach.FlatIncrement; v != nil {
		opts.AutoIncrement = false
		opts.FlatIncrement = *v
	}
	opts.FillSingleCellPits = j.Breach.FillSingleCellPits
	opts.LeaveFlats = j.Breach.LeaveFlats
	p, err := hydro.ParsePrecision(strings.ToLower(j.Breach.Precision))
	if err != nil {
		return opts, err
	}
	opts.Precision = p
	return opts, opts.Validate()
}

// InputPrecision reports whether tiles keep their stored precision,
// which is the case when the job names no precision.
func (j *Job) InputPrecision() bool {
	return j.Breach.Precision == ""
}

// Jobs lists the tiles as batch jobs.
func (j *Job) Jobs() []batch.Job {
	jobs := make([]batch.Job, len(j.Tiles))
	for i, t := range j.Tiles {
		jobs[i] = batch.Job{Input: t.Input, Output: t.Output}
	}
	return jobs
}
