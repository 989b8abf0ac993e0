// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package tools

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jblindsay/whitebox-tools-sub008/geospatialfiles/raster"
)

const notSpecified = "not specified"

// optionalArg returns the trimmed i-th argument, or "" when it is absent
// or reads "not specified".
func optionalArg(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	s := strings.TrimSpace(args[i])
	if strings.EqualFold(s, notSpecified) {
		return ""
	}
	return s
}

func requireArgs(args []string, n int, toolName string) error {
	if len(args) < n {
		return fmt.Errorf("%s needs at least %d arguments, got %d: %w", toolName, n, len(args), ArgumentError)
	}
	return nil
}

// inputFileArg resolves an input raster and checks that it exists.
func (ptm *PluginToolManager) inputFileArg(arg string) (string, error) {
	fileName := ptm.resolvePath(arg)
	if fileName == "" {
		return "", fmt.Errorf("missing input file: %w", ArgumentError)
	}
	if _, err := os.Stat(fileName); err != nil {
		return "", fmt.Errorf("%s: %w", fileName, raster.FileDoesNotExistError)
	}
	return fileName, nil
}

// outputFileArg resolves an output raster, writing Whitebox rasters when
// the extension is not recognised.
func (ptm *PluginToolManager) outputFileArg(arg string) (string, error) {
	fileName := ptm.resolvePath(arg)
	if fileName == "" {
		return "", fmt.Errorf("missing output file: %w", ArgumentError)
	}
	if !raster.IsSupportedRasterFileExtension(fileName) {
		fileName += ".dep"
	}
	return fileName, nil
}

// boundArg parses a breach constraint. Empty or negative means +Inf.
func boundArg(s, name string) (float64, error) {
	if s == "" {
		return math.Inf(1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, s, ArgumentError)
	}
	if v < 0 {
		return math.Inf(1), nil
	}
	return v, nil
}

func boolArg(s, name string) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s %q: %w", name, s, ArgumentError)
	}
	return v, nil
}

// incrementArg parses the flat increment. Empty or "auto" selects the
// automatic increment; any number is left for Options.Validate to check.
func incrementArg(s string) (auto bool, inc float64, err error) {
	if s == "" || strings.EqualFold(s, "auto") {
		return true, 0, nil
	}
	inc, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return false, 0, fmt.Errorf("flat increment %q: %w", s, ArgumentError)
	}
	return false, inc, nil
}
