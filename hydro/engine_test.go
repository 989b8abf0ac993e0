package hydro_test

import (
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jblindsay/whitebox-tools-sub008/hydro"
	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

const nodata = -32768.0

func quietOptions(inc float64) hydro.Options {
	opts := hydro.DefaultOptions()
	opts.AutoIncrement = false
	opts.FlatIncrement = inc
	opts.Logger = log.New(io.Discard)
	return opts
}

func newGrid(t *testing.T, values [][]float64) *structures.RectangularArrayFloat64 {
	t.Helper()
	g, err := structures.NewRectangularArrayFloat64FromRows(values, nodata)
	require.NoError(t, err)
	return g
}

func constantGrid(rows, columns int, z float64) [][]float64 {
	values := make([][]float64, rows)
	for r := range values {
		values[r] = make([]float64, columns)
		for c := range values[r] {
			values[r][c] = z
		}
	}
	return values
}

func randomGrid(rng *rand.Rand, rows, columns int, nodataFraction float64) [][]float64 {
	values := make([][]float64, rows)
	for r := range values {
		values[r] = make([]float64, columns)
		for c := range values[r] {
			if rng.Float64() < nodataFraction {
				values[r][c] = nodata
				continue
			}
			values[r][c] = math.Round(rng.Float64()*1000) / 10
		}
	}
	return values
}

// isOutlet reports whether (row, col) is on the grid edge or touches nodata.
func isOutlet(g *structures.RectangularArrayFloat64, row, col int) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if !g.InBounds(row+dr, col+dc) || g.Value(row+dr, col+dc) == nodata {
				return true
			}
		}
	}
	return false
}

// assertDrains follows the flow directions from every valid cell and checks
// that the path never climbs and ends at an outlet.
func assertDrains(t *testing.T, input *structures.RectangularArrayFloat64, res *hydro.Result) {
	t.Helper()
	out := res.Corrected
	limit := out.GetRows() * out.GetColumns()
	for row := 0; row < out.GetRows(); row++ {
		for col := 0; col < out.GetColumns(); col++ {
			if out.Value(row, col) == nodata {
				continue
			}
			r, c := row, col
			for steps := 0; ; steps++ {
				require.Less(t, steps, limit, "flow path from (%d, %d) does not terminate", row, col)
				dir := res.FlowDir.Value(r, c)
				if dir == hydro.NoFlow {
					break
				}
				dr, dc := hydro.Offset(dir)
				require.NotEqual(t, nodata, out.Value(r+dr, c+dc), "flow from (%d, %d) into nodata", r, c)
				require.LessOrEqual(t, out.Value(r+dr, c+dc), out.Value(r, c),
					"flow path from (%d, %d) climbs at (%d, %d)", row, col, r, c)
				r, c = r+dr, c+dc
			}
			require.True(t, isOutlet(input, r, c), "flow path from (%d, %d) ends at (%d, %d), which is not an outlet", row, col, r, c)
		}
	}
}

func TestBreachSinglePitFlatRim(t *testing.T) {
	values := constantGrid(5, 5, 10)
	values[2][2] = 2
	values[0][2] = 8
	input := newGrid(t, values)
	const inc = 0.001

	res, err := hydro.BreachOrFill(input, quietOptions(inc))
	require.NoError(t, err)
	assert.False(t, res.UsedFallbackFill)
	assert.Equal(t, 1, res.Stats.PitsBreached)

	onPath := map[[2]int]bool{{2, 2}: true}
	r, c := 2, 2
	for {
		dir := res.FlowDir.Value(r, c)
		if dir == hydro.NoFlow {
			break
		}
		dr, dc := hydro.Offset(dir)
		assert.LessOrEqual(t, res.Corrected.Value(r+dr, c+dc), res.Corrected.Value(r, c)-inc+1e-9)
		r, c = r+dr, c+dc
		onPath[[2]int{r, c}] = true
	}
	assert.Equal(t, [2]int{0, 2}, [2]int{r, c}, "channel must end at the low edge cell")
	assert.Equal(t, 2.0, res.Corrected.Value(2, 2), "the pit itself is not moved")

	// off the channel only flat cells move, and by no more than one increment
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			if onPath[[2]int{row, col}] {
				continue
			}
			z, out := input.Value(row, col), res.Corrected.Value(row, col)
			assert.LessOrEqual(t, out, z, "cell (%d, %d) raised", row, col)
			assert.GreaterOrEqual(t, out, z-inc-1e-9, "cell (%d, %d) cut too deep", row, col)
		}
	}
	assert.Equal(t, 10.0, res.Corrected.Value(1, 1))
	assertDrains(t, input, res)
}

func TestEqualNeighbourIsCarved(t *testing.T) {
	values := constantGrid(5, 5, 10)
	values[0][2] = 9
	input := newGrid(t, values)
	const inc = 0.01

	res, err := hydro.BreachOrFill(input, quietOptions(inc))
	require.NoError(t, err)
	assert.Zero(t, res.Stats.PitsBreached)
	assert.Positive(t, res.Stats.FlatsDrained)
	assert.Positive(t, res.Stats.CellsLowered)
	assert.Equal(t, 10.0, res.Corrected.Value(2, 2))

	out := res.Corrected
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			dir := res.FlowDir.Value(row, col)
			if dir == hydro.NoFlow {
				continue
			}
			dr, dc := hydro.Offset(dir)
			assert.LessOrEqual(t, out.Value(row+dr, col+dc), out.Value(row, col)-inc+1e-9,
				"(%d, %d) does not descend by an increment", row, col)
		}
	}
	assertDrains(t, input, res)

	opts := quietOptions(inc)
	opts.LeaveFlats = true
	res, err = hydro.BreachOrFill(input, opts)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.FlatsDrained)
	assert.Equal(t, input.Data(), res.Corrected.Data(), "level flats already drain")
}

func TestInteriorNodataHoleIsAnOutlet(t *testing.T) {
	values := constantGrid(6, 6, 10)
	for r := 1; r <= 4; r++ {
		for c := 1; c <= 4; c++ {
			values[r][c] = 5
		}
	}
	for r := 2; r <= 3; r++ {
		for c := 2; c <= 3; c++ {
			values[r][c] = nodata
		}
	}
	input := newGrid(t, values)

	res, err := hydro.BreachOrFill(input, quietOptions(0.01))
	require.NoError(t, err)

	assert.Zero(t, res.Stats.PitsBreached)
	assert.Zero(t, res.Stats.CellsLowered)
	assert.Equal(t, 4, res.Stats.NodataCells)
	assert.Equal(t, 32, res.Stats.ValidCells)
	assert.Equal(t, input.Data(), res.Corrected.Data(), "a basin draining into nodata needs no correction")
	for r := 1; r <= 4; r++ {
		for c := 1; c <= 4; c++ {
			assert.Equal(t, hydro.NoFlow, res.FlowDir.Value(r, c), "(%d, %d) is nodata or borders it", r, c)
		}
	}
	assert.Equal(t, 32, res.Stats.Outlets)
	assertDrains(t, input, res)
}

func TestConstrainedDeepPitIsFilled(t *testing.T) {
	values := constantGrid(5, 5, 50)
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 3; c++ {
			values[r][c] = 60
		}
	}
	values[2][2] = 10
	input := newGrid(t, values)
	const inc = 0.01

	opts := quietOptions(inc)
	opts.MaxDepth = 10
	res, err := hydro.BreachOrFill(input, opts)
	require.NoError(t, err)

	assert.True(t, res.UsedFallbackFill)
	assert.Equal(t, 1, res.Stats.PitsUnresolved)
	assert.Zero(t, res.Stats.PitsBreached)
	assert.Zero(t, res.Stats.CellsLowered, "a rejected channel must not be carved")

	dir := res.FlowDir.Value(2, 2)
	require.NotEqual(t, hydro.NoFlow, dir)
	dr, dc := hydro.Offset(dir)
	downstream := res.Corrected.Value(2+dr, 2+dc)
	assert.Equal(t, 60.0, downstream)
	assert.InDelta(t, downstream+inc, res.Corrected.Value(2, 2), 1e-9)
	assertDrains(t, input, res)
}

func TestConstrainedShallowPitIsBreached(t *testing.T) {
	values := constantGrid(5, 5, 50)
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 3; c++ {
			values[r][c] = 60
		}
	}
	values[2][2] = 55
	input := newGrid(t, values)

	opts := quietOptions(0.01)
	opts.MaxDepth = 10
	opts.MaxLength = 5
	res, err := hydro.BreachOrFill(input, opts)
	require.NoError(t, err)

	assert.False(t, res.UsedFallbackFill)
	assert.Equal(t, 1, res.Stats.PitsBreached)
	assert.InDelta(t, 5.01, res.Stats.MaxChannelDepth, 1e-9)
	// the carved cell and the edge cell it stops at
	assert.Equal(t, 2.0, res.Stats.MaxChannelLength)
	assertDrains(t, input, res)
}

func TestConstrainedLengthLimit(t *testing.T) {
	// the pit sits three cells from the nearest outlet
	values := constantGrid(7, 7, 20)
	values[3][3] = 1
	input := newGrid(t, values)

	opts := quietOptions(0.01)
	opts.MaxLength = 1
	res, err := hydro.BreachOrFill(input, opts)
	require.NoError(t, err)
	assert.True(t, res.UsedFallbackFill)
	assert.Equal(t, 1, res.Stats.PitsUnresolved)
	assertDrains(t, input, res)
	assert.Greater(t, res.Corrected.Value(3, 3), 20.0)
}

func TestSingleCellPitIsRaisedFirst(t *testing.T) {
	values := constantGrid(7, 7, 10)
	values[3][3] = -90
	input := newGrid(t, values)
	const inc = 0.01

	opts := quietOptions(inc)
	opts.FillSingleCellPits = true
	res, err := hydro.BreachOrFill(input, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.PitsRaised)
	assert.InDelta(t, 10-inc, res.Corrected.Value(3, 3), 1e-9)
	minVal, _ := res.Corrected.MinMax()
	assert.Greater(t, minVal, 10-5*inc, "the breach must stay shallow")
	assertDrains(t, input, res)

	opts.FillSingleCellPits = false
	res, err = hydro.BreachOrFill(input, opts)
	require.NoError(t, err)
	minVal, _ = res.Corrected.MinMax()
	assert.Less(t, minVal, -90.0, "without preprocessing the trench reaches the pit floor")
}

func TestRandomSurfacesDrain(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		input := newGrid(t, randomGrid(rng, 25, 30, 0.05))

		res, err := hydro.BreachOrFill(input, quietOptions(0.001))
		require.NoError(t, err)
		assert.False(t, res.UsedFallbackFill)
		assertDrains(t, input, res)

		for j, z := range input.Data() {
			out := res.Corrected.Data()[j]
			if z == nodata {
				assert.Equal(t, nodata, out, "nodata must be preserved")
				continue
			}
			assert.NotEqual(t, nodata, out)
			assert.LessOrEqual(t, out, z, "breaching only lowers cells")
		}
	}
}

func TestRandomSurfacesConstrained(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 10; i++ {
		input := newGrid(t, randomGrid(rng, 25, 25, 0.03))

		opts := quietOptions(0.001)
		opts.MaxDepth = 15
		opts.MaxLength = 4
		res, err := hydro.BreachOrFill(input, opts)
		require.NoError(t, err)
		assertDrains(t, input, res)

		for j, z := range input.Data() {
			assert.Equal(t, z == nodata, res.Corrected.Data()[j] == nodata)
		}
	}
}

func TestSecondPassIsStable(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const inc = 0.001
	input := newGrid(t, randomGrid(rng, 30, 30, 0.02))

	first, err := hydro.BreachOrFill(input, quietOptions(inc))
	require.NoError(t, err)
	second, err := hydro.BreachOrFill(first.Corrected, quietOptions(inc))
	require.NoError(t, err)

	assert.Zero(t, second.Stats.PitsBreached)
	for j, z := range first.Corrected.Data() {
		assert.InDelta(t, z, second.Corrected.Data()[j], inc+1e-9)
	}
}

func TestInputIsNotModified(t *testing.T) {
	values := constantGrid(5, 5, 10)
	values[2][2] = 2
	input := newGrid(t, values)
	before := input.Clone()

	_, err := hydro.BreachOrFill(input, quietOptions(0.01))
	require.NoError(t, err)
	assert.Equal(t, before.Data(), input.Data())
}

func TestNaNNodata(t *testing.T) {
	values := constantGrid(5, 5, 10)
	values[2][2] = 2
	values[0][0] = math.NaN()
	input, err := structures.NewRectangularArrayFloat64FromRows(values, math.NaN())
	require.NoError(t, err)

	res, err := hydro.BreachOrFill(input, quietOptions(0.01))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.NodataCells)
	assert.True(t, math.IsNaN(res.Corrected.Value(0, 0)))
	assert.Equal(t, 1, res.Stats.PitsBreached)
}

func TestAllNodataGrid(t *testing.T) {
	input := newGrid(t, constantGrid(4, 4, nodata))

	res, err := hydro.BreachOrFill(input, quietOptions(0.01))
	require.NoError(t, err)
	assert.Zero(t, res.Stats.ValidCells)
	assert.Equal(t, input.Data(), res.Corrected.Data())
}

func TestNarrowPrecision(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	input := newGrid(t, randomGrid(rng, 20, 20, 0))

	opts := quietOptions(0.001)
	opts.Precision = hydro.PrecisionNarrow
	res, err := hydro.BreachOrFill(input, opts)
	require.NoError(t, err)
	assert.Equal(t, hydro.PrecisionNarrow, res.Precision)
	for _, z := range res.Corrected.Data() {
		assert.Equal(t, float64(float32(z)), z)
	}
}

func TestFlatsDrainByDefault(t *testing.T) {
	input := newGrid(t, constantGrid(5, 5, 10))
	const inc = 0.01

	res, err := hydro.BreachOrFill(input, quietOptions(inc))
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Corrected.Value(2, 2))
	dr, dc := hydro.Offset(res.FlowDir.Value(2, 2))
	assert.InDelta(t, 10-inc, res.Corrected.Value(2+dr, 2+dc), 1e-9)
	assert.False(t, res.UsedFallbackFill)
	assertDrains(t, input, res)

	opts := quietOptions(inc)
	opts.LeaveFlats = true
	res, err = hydro.BreachOrFill(input, opts)
	require.NoError(t, err)
	assert.Equal(t, input.Data(), res.Corrected.Data(), "flats are left level on request")
}

func TestNaNValueIsNodata(t *testing.T) {
	values := constantGrid(5, 5, 10)
	values[2][2] = 2
	values[1][1] = math.NaN()
	input := newGrid(t, values)

	res, err := hydro.BreachOrFill(input, quietOptions(0.01))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.NodataCells)
	assert.Equal(t, 24, res.Stats.ValidCells)
	assert.Equal(t, nodata, res.Corrected.Value(1, 1), "NaN is written back as the nodata value")
	assert.Equal(t, hydro.NoFlow, res.FlowDir.Value(2, 2), "the pit borders the hole")
	assert.Equal(t, 2.0, res.Corrected.Value(2, 2))
	for _, z := range res.Corrected.Data() {
		assert.False(t, math.IsNaN(z))
	}
	assertDrains(t, res.Corrected, res)
}

func TestBreachOrFillRejectsBadInput(t *testing.T) {
	_, err := hydro.BreachOrFill(nil, hydro.DefaultOptions())
	assert.ErrorIs(t, err, hydro.ErrNilGrid)

	_, err = hydro.BreachOrFill(structures.NewRectangularArrayFloat64(0, 3, nodata), hydro.DefaultOptions())
	assert.ErrorIs(t, err, hydro.ErrEmptyGrid)

	grid := newGrid(t, constantGrid(3, 3, 1))
	opts := hydro.DefaultOptions()
	opts.Precision = hydro.PrecisionNarrow
	_, err = hydro.BreachOrFill(grid, opts)
	assert.ErrorIs(t, err, hydro.ErrNarrowAutoIncrement)
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*hydro.Options)
		want   error
	}{
		{"defaults", func(o *hydro.Options) {}, nil},
		{"zero depth", func(o *hydro.Options) { o.MaxDepth = 0 }, hydro.ErrInvalidConstraint},
		{"negative length", func(o *hydro.Options) { o.MaxLength = -3 }, hydro.ErrInvalidConstraint},
		{"NaN depth", func(o *hydro.Options) { o.MaxDepth = math.NaN() }, hydro.ErrInvalidConstraint},
		{"zero increment", func(o *hydro.Options) { o.AutoIncrement = false }, hydro.ErrInvalidIncrement},
		{"infinite increment", func(o *hydro.Options) {
			o.AutoIncrement = false
			o.FlatIncrement = math.Inf(1)
		}, hydro.ErrInvalidIncrement},
		{"narrow with auto increment", func(o *hydro.Options) { o.Precision = hydro.PrecisionNarrow }, hydro.ErrNarrowAutoIncrement},
		{"narrow with explicit increment", func(o *hydro.Options) {
			o.Precision = hydro.PrecisionNarrow
			o.AutoIncrement = false
			o.FlatIncrement = 0.01
		}, nil},
		{"unknown precision", func(o *hydro.Options) {
			o.Precision = hydro.Precision(9)
			o.AutoIncrement = false
			o.FlatIncrement = 0.01
		}, hydro.ErrInvalidPrecision},
		{"zero cell size", func(o *hydro.Options) { o.CellSizeY = 0 }, hydro.ErrInvalidCellSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := hydro.DefaultOptions()
			tc.modify(&opts)
			err := opts.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestConstrained(t *testing.T) {
	opts := hydro.DefaultOptions()
	assert.False(t, opts.Constrained())
	opts.MaxLength = 100
	assert.True(t, opts.Constrained())
}

func TestParsePrecision(t *testing.T) {
	p, err := hydro.ParsePrecision("float32")
	require.NoError(t, err)
	assert.Equal(t, hydro.PrecisionNarrow, p)

	p, err = hydro.ParsePrecision("")
	require.NoError(t, err)
	assert.Equal(t, hydro.PrecisionWide, p)

	_, err = hydro.ParsePrecision("half")
	assert.ErrorIs(t, err, hydro.ErrInvalidPrecision)
	assert.Equal(t, "narrow", hydro.PrecisionNarrow.String())
}

func TestAutoIncrement(t *testing.T) {
	values := constantGrid(3, 3, 100)
	values[1][1] = 350
	values[0][0] = nodata
	grid := newGrid(t, values)

	assert.InDelta(t, 2e-6, hydro.AutoIncrement(grid, 1, 1), 1e-15)
	assert.InDelta(t, 43e-6, hydro.AutoIncrement(grid, 30, 30), 1e-15)

	flat := newGrid(t, constantGrid(3, 3, 100))
	assert.InDelta(t, 2e-8, hydro.AutoIncrement(flat, 1, 1), 1e-18)
}

func TestFillDepressions(t *testing.T) {
	values := constantGrid(5, 5, 10)
	values[2][2] = 2
	values[0][2] = 8
	input := newGrid(t, values)
	const inc = 0.01

	res, err := hydro.FillDepressions(input, quietOptions(inc))
	require.NoError(t, err)
	assert.InDelta(t, 10+inc, res.Corrected.Value(2, 2), 1e-9)
	for j, z := range input.Data() {
		assert.GreaterOrEqual(t, res.Corrected.Data()[j], z, "filling only raises cells")
	}
	assertDrains(t, input, res)

	opts := quietOptions(inc)
	opts.LeaveFlats = true
	res, err = hydro.FillDepressions(input, opts)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Corrected.Value(2, 2))
	assert.Equal(t, 1, res.Stats.CellsRaised)
	assertDrains(t, input, res)
}
