package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jblindsay/whitebox-tools-sub008/geospatialfiles/raster"
	"github.com/jblindsay/whitebox-tools-sub008/structures"
	"github.com/jblindsay/whitebox-tools-sub008/tools"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestSplitToolArgs(t *testing.T) {
	assert.Nil(t, splitToolArgs("  "))
	assert.Equal(t, []string{"in.dep", "out.dep", "10", "", "false"}, splitToolArgs(`in.dep; out.dep;10;;"false"`))
	assert.Equal(t, []string{"a.dep", "b.dep", "not specified"}, splitToolArgs("a.dep,b.dep,not specified"))
}

func TestListToolsCommand(t *testing.T) {
	out, err := execute(t, "listtools")
	require.NoError(t, err)
	assert.Contains(t, out, "The following 3 tools are available:")
	assert.Contains(t, out, "BreachDepressions")
	assert.Contains(t, out, "FillDepressions")
}

func TestRasterFormatsCommand(t *testing.T) {
	out, err := execute(t, "rasterformats")
	require.NoError(t, err)
	assert.Equal(t, "ArcGisAsciiRaster .asc, .txt\nWhiteboxRaster .dep, .tas\n", out)
}

func TestToolHelpAndArgs(t *testing.T) {
	out, err := execute(t, "toolargs", "BreachDepressions")
	require.NoError(t, err)
	assert.Contains(t, out, "MaxDepth")

	_, err = execute(t, "toolhelp", "NoSuchTool")
	assert.ErrorIs(t, err, tools.UnrecognizedToolError)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	values := [][]float64{
		{10, 10, 8, 10, 10},
		{10, 10, 10, 10, 10},
		{10, 10, 2, 10, 10},
		{10, 10, 10, 10, 10},
		{10, 10, 10, 10, 10},
	}
	arr, err := structures.NewRectangularArrayFloat64FromRows(values, -32768)
	require.NoError(t, err)
	_, err = raster.WriteArray(filepath.Join(dir, "in.dep"), arr, nil, raster.DT_FLOAT64)
	require.NoError(t, err)

	out, err := execute(t, "--cwd", dir, "run", "BreachDepressions", "--args", "in.dep;out.dep;-1;-1;false;0.01")
	require.NoError(t, err)
	assert.Contains(t, out, "* BreachDepressions *")

	got, _, err := raster.ReadArray(filepath.Join(dir, "out.dep"))
	require.NoError(t, err)
	assert.InDelta(t, 2-0.02, got.Value(0, 2), 1e-12)
}

func TestRunCommandRejectsMissingDirectory(t *testing.T) {
	_, err := execute(t, "--cwd", filepath.Join(t.TempDir(), "nope"), "listtools")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "go-spatial version "+version+"\n", out)
}
