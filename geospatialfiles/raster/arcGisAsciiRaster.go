// Copyright 2014 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// This file was originally created by John Lindsay<jlindsay@uoguelph.ca>,
// Nov. 2014.

package raster

import (
	"bufio"
	"math"
	"os"
	"strconv"
	"strings"
)

// Used to manipulate an ArcGIS ASCII raster file.
type arcGisAsciiRaster struct {
	fileName     string
	data         []float64
	header       arcGisAsciiRasterHeader
	minimumValue float64
	maximumValue float64
	config       *RasterConfig
}

type arcGisAsciiRasterHeader struct {
	rows           int
	columns        int
	numCells       int
	nodata         float64
	cellSize       float64
	north          float64
	south          float64
	east           float64
	west           float64
	cellCornerMode bool
}

func (r *arcGisAsciiRaster) InitializeRaster(fileName string,
	rows int, columns int, north float64, south float64,
	east float64, west float64, config *RasterConfig) error {

	r.config = config
	r.config.RasterFormat = RT_ArcGisAsciiRaster
	r.header.columns = columns
	r.header.rows = rows
	r.header.numCells = rows * columns
	r.header.north = north
	r.header.south = south
	r.header.east = east
	r.header.west = west
	r.header.cellCornerMode = true
	r.header.cellSize = (east - west) / float64(r.header.columns)
	r.header.nodata = config.NoDataValue

	r.fileName = fileName
	if err := removeIfExists(r.fileName); err != nil {
		return err
	}

	r.data = make([]float64, r.header.numCells)
	if config.InitialValue != 0 {
		for i := range r.data {
			r.data[i] = config.InitialValue
		}
	}

	r.minimumValue = math.MaxFloat64
	r.maximumValue = -math.MaxFloat64
	return nil
}

// Retrieve the file name of this ArcGIS ASCII raster file.
func (r *arcGisAsciiRaster) FileName() string {
	return r.fileName
}

// Set the file name of this ArcGIS ASCII raster file and read it.
func (r *arcGisAsciiRaster) SetFileName(value string) error {
	r.config = NewDefaultRasterConfig()
	r.config.RasterFormat = RT_ArcGisAsciiRaster
	r.config.DataType = DT_FLOAT64
	r.fileName = value
	if _, err := os.Stat(r.fileName); err != nil {
		return causef(FileDoesNotExistError, err, "%s", r.fileName)
	}
	if err := r.ReadFile(); err != nil {
		return err
	}
	r.minimumValue = math.MaxFloat64
	r.maximumValue = -math.MaxFloat64
	return nil
}

// Retrieve the RasterType of this Raster.
func (r *arcGisAsciiRaster) RasterType() RasterType {
	return RT_ArcGisAsciiRaster
}

func (r *arcGisAsciiRaster) Rows() int {
	return r.header.rows
}

func (r *arcGisAsciiRaster) Columns() int {
	return r.header.columns
}

func (r *arcGisAsciiRaster) North() float64 {
	return r.header.north
}

func (r *arcGisAsciiRaster) South() float64 {
	return r.header.south
}

func (r *arcGisAsciiRaster) East() float64 {
	return r.header.east
}

func (r *arcGisAsciiRaster) West() float64 {
	return r.header.west
}

// Retrieve the raster's minimum value
func (r *arcGisAsciiRaster) MinimumValue() float64 {
	if r.minimumValue == math.MaxFloat64 {
		r.minimumValue, r.maximumValue = findMinAndMaxVals(r.data, r.header.nodata)
	}
	return r.minimumValue
}

// Retrieve the raster's maximum value
func (r *arcGisAsciiRaster) MaximumValue() float64 {
	if r.maximumValue == -math.MaxFloat64 {
		r.minimumValue, r.maximumValue = findMinAndMaxVals(r.data, r.header.nodata)
	}
	return r.maximumValue
}

func (r *arcGisAsciiRaster) SetRasterConfig(value *RasterConfig) {
	r.config = value
}

func (r *arcGisAsciiRaster) GetRasterConfig() *RasterConfig {
	return r.config
}

func (r *arcGisAsciiRaster) NoData() float64 {
	return r.header.nodata
}

// This file format does not support metadata.
func (r *arcGisAsciiRaster) MetadataEntries() []string {
	return nil
}

// This file format does not support metadata; entries are dropped.
func (r *arcGisAsciiRaster) AddMetadataEntry(value string) {}

func (r *arcGisAsciiRaster) Data() []float64 {
	return r.data
}

func (r *arcGisAsciiRaster) SetData(values []float64) error {
	if r.header.numCells == 0 {
		r.header.numCells = r.header.rows * r.header.columns
	}
	if len(values) != r.header.numCells {
		return wrapf(DataSetError, "%d values for %d cells", len(values), r.header.numCells)
	}
	r.data = values
	r.minimumValue = math.MaxFloat64
	r.maximumValue = -math.MaxFloat64
	return nil
}

func (r *arcGisAsciiRaster) Value(index int) float64 {
	return r.data[index]
}

func (r *arcGisAsciiRaster) SetValue(index int, value float64) {
	r.data[index] = value
}

// Save the file
func (r *arcGisAsciiRaster) Save() error {
	if err := removeIfExists(r.fileName); err != nil {
		return err
	}
	f, err := os.Create(r.fileName)
	if err != nil {
		return causef(FileWritingError, err, "%s", r.fileName)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	formatFloat := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	w.WriteString("NCOLS         " + strconv.Itoa(r.header.columns) + "\n")
	w.WriteString("NROWS         " + strconv.Itoa(r.header.rows) + "\n")
	if r.header.cellCornerMode {
		w.WriteString("XLLCORNER     " + formatFloat(r.header.west) + "\n")
		w.WriteString("YLLCORNER     " + formatFloat(r.header.south) + "\n")
	} else {
		w.WriteString("XLLCENTER     " + formatFloat(r.header.west+r.header.cellSize/2.0) + "\n")
		w.WriteString("YLLCENTER     " + formatFloat(r.header.south+r.header.cellSize/2.0) + "\n")
	}
	w.WriteString("CELLSIZE      " + formatFloat(r.header.cellSize) + "\n")
	w.WriteString("NODATA_VALUE  " + formatFloat(r.header.nodata) + "\n")

	precision := 64
	if r.config.DataType == DT_FLOAT32 {
		precision = 32
	}
	cellNum := 0
	for row := 0; row < r.header.rows; row++ {
		for col := 0; col < r.header.columns; col++ {
			if col > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(strconv.FormatFloat(r.data[cellNum], 'g', -1, precision))
			cellNum++
		}
		w.WriteByte('\n')
	}
	if err = w.Flush(); err != nil {
		return causef(FileWritingError, err, "%s", r.fileName)
	}
	return nil
}

// Reads the file
func (r *arcGisAsciiRaster) ReadFile() error {
	if r.fileName == "" {
		return FileReadingError
	}

	var xllcenter, yllcenter, xllcorner, yllcorner float64
	cornerMode := false

	f, err := os.Open(r.fileName)
	if err != nil {
		return causef(FileOpeningError, err, "%s", r.fileName)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNum := 0
	cellNum := 0
	parseHeader := func(str string) (float64, error) {
		s := strings.Fields(str)
		if len(s) < 2 {
			return 0, wrapf(FileIsNotProperlyFormated, "%s: header line %d", r.fileName, lineNum)
		}
		v, err := strconv.ParseFloat(s[len(s)-1], 64)
		if err != nil {
			return 0, causef(FileIsNotProperlyFormated, err, "%s: header line %d", r.fileName, lineNum)
		}
		return v, nil
	}
	for scanner.Scan() {
		str := strings.ToLower(scanner.Text())
		lineNum++
		if lineNum <= 6 {
			v, err := parseHeader(str)
			if err != nil {
				return err
			}
			switch {
			case strings.Contains(str, "ncols"):
				r.header.columns = int(v)
			case strings.Contains(str, "nrows"):
				r.header.rows = int(v)
			case strings.Contains(str, "nodata"):
				r.header.nodata = v
			case strings.Contains(str, "cellsize"):
				r.header.cellSize = v
			case strings.Contains(str, "xllcenter"):
				xllcenter = v
			case strings.Contains(str, "yllcenter"):
				yllcenter = v
			case strings.Contains(str, "xllcorner"):
				xllcorner = v
				cornerMode = true
			case strings.Contains(str, "yllcorner"):
				yllcorner = v
				cornerMode = true
			}
			if lineNum == 6 {
				if r.header.rows <= 0 || r.header.columns <= 0 {
					return wrapf(FileIsNotProperlyFormated, "%s: %dx%d grid", r.fileName, r.header.rows, r.header.columns)
				}
				r.header.numCells = r.header.columns * r.header.rows
				r.data = make([]float64, r.header.numCells)
			}
			continue
		}
		for _, v := range strings.Fields(str) {
			if cellNum >= r.header.numCells {
				return wrapf(FileIsNotProperlyFormated, "%s: more than %d values", r.fileName, r.header.numCells)
			}
			if r.data[cellNum], err = strconv.ParseFloat(v, 64); err != nil {
				return causef(FileIsNotProperlyFormated, err, "%s: line %d", r.fileName, lineNum)
			}
			cellNum++
		}
	}
	if err = scanner.Err(); err != nil {
		return causef(FileReadingError, err, "%s", r.fileName)
	}
	if cellNum != r.header.numCells || r.header.numCells == 0 {
		return wrapf(FileIsNotProperlyFormated, "%s: %d values for %d cells", r.fileName, cellNum, r.header.numCells)
	}

	if cornerMode {
		r.header.cellCornerMode = true
		r.header.west = xllcorner
		r.header.south = yllcorner
	} else {
		r.header.cellCornerMode = false
		r.header.west = xllcenter - (0.5 * r.header.cellSize)
		r.header.south = yllcenter - (0.5 * r.header.cellSize)
	}
	r.header.east = r.header.west + float64(r.header.columns)*r.header.cellSize
	r.header.north = r.header.south + float64(r.header.rows)*r.header.cellSize
	return nil
}

func findMinAndMaxVals(data []float64, nodata float64) (minVal float64, maxVal float64) {
	minVal = math.MaxFloat64
	maxVal = -math.MaxFloat64
	for _, v := range data {
		if v == nodata || math.IsNaN(v) {
			continue
		}
		if v > maxVal {
			maxVal = v
		}
		if v < minVal {
			minVal = v
		}
	}
	return minVal, maxVal
}

func removeIfExists(fileName string) error {
	if _, err := os.Stat(fileName); err == nil {
		if err = os.Remove(fileName); err != nil {
			return causef(FileDeletingError, err, "%s", fileName)
		}
	}
	return nil
}
