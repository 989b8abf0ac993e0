// Copyright 2014 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// This file was originally created by John Lindsay<jlindsay@uoguelph.ca>,
// Nov. 2014.

// Package raster provides support for reading and creating the raster
// formats that DEMs are exchanged in: ArcGIS ASCII grids and Whitebox
// .dep/.tas pairs.
package raster

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"strings"

	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

type rasterData interface {
	InitializeRaster(fileName string,
		rows int, columns int, north float64, south float64,
		east float64, west float64, config *RasterConfig) error
	FileName() string
	SetFileName(value string) error
	Rows() int
	Columns() int
	North() float64
	South() float64
	East() float64
	West() float64
	MinimumValue() float64
	MaximumValue() float64
	RasterType() RasterType
	NoData() float64
	Value(index int) float64
	SetValue(index int, value float64)
	Data() []float64
	SetData(values []float64) error
	Save() error
	MetadataEntries() []string
	AddMetadataEntry(value string)
	SetRasterConfig(value *RasterConfig)
	GetRasterConfig() *RasterConfig
}

type Raster struct {
	Rows, Columns            int
	NumberofCells            int
	North, South, East, West float64
	NoDataValue              float64
	FileName                 string
	FileExtension            string
	RasterFormat             RasterType
	ByteOrder                binary.ByteOrder
	rd                       rasterData
	reflectAtBoundaries      bool
}

type RasterConfig struct {
	NoDataValue               float64
	InitialValue              float64
	RasterFormat              RasterType
	ByteOrder                 binary.ByteOrder
	MetadataEntries           []string
	CoordinateRefSystemWKT    string
	NumberOfBands             int
	PhotometricInterpretation int
	DataType                  int
	PaletteNonlinearity       float64
	ZUnits                    string
	XYUnits                   string
	PreferredPalette          string
	DisplayMinimum            float64
	DisplayMaximum            float64
	ReflectAtBoundaries       bool
	PixelIsArea               bool
}

func NewDefaultRasterConfig() *RasterConfig {
	var rc RasterConfig
	rc.NoDataValue = -32768.0
	rc.InitialValue = -32768.0
	rc.RasterFormat = RT_UnknownRaster
	rc.ByteOrder = binary.LittleEndian
	rc.NumberOfBands = 1
	rc.PaletteNonlinearity = 1.0
	rc.ZUnits = "not specified"
	rc.XYUnits = "not specified"
	rc.PreferredPalette = "not specified"
	rc.DisplayMinimum = math.MaxFloat64
	rc.DisplayMaximum = -math.MaxFloat64
	rc.PixelIsArea = true
	rc.DataType = DT_FLOAT32
	return &rc
}

// Data Type
const (
	DT_INT8 = iota
	DT_INT16
	DT_FLOAT32
	DT_FLOAT64
)

func newRasterData(rt RasterType) (rasterData, error) {
	switch rt {
	case RT_ArcGisAsciiRaster:
		return new(arcGisAsciiRaster), nil
	case RT_WhiteboxRaster:
		return new(whiteboxRaster), nil
	}
	return nil, wrapf(UnsupportedRasterFormatError, "%v", rt)
}

// CreateNewRaster creates an in-memory raster that is written to fileName
// on Save. Any existing file of that name is removed.
func CreateNewRaster(fileName string, rows int, columns int, north float64,
	south float64, east float64, west float64, config ...*RasterConfig) (*Raster, error) {

	var myConfig *RasterConfig
	if len(config) == 0 {
		myConfig = NewDefaultRasterConfig()
	} else {
		// only the last config is used
		myConfig = config[len(config)-1]
	}
	if rows <= 0 || columns <= 0 {
		return nil, wrapf(RasterInitializationError, "%s: %dx%d", fileName, rows, columns)
	}

	r := &Raster{FileName: fileName, FileExtension: strings.ToLower(filepath.Ext(fileName))}
	rasterType := myConfig.RasterFormat
	if rasterType == RT_UnknownRaster {
		var err error
		if rasterType, err = DetermineRasterFormat(fileName); err != nil {
			return nil, err
		}
	}
	r.RasterFormat = rasterType

	rd, err := newRasterData(rasterType)
	if err != nil {
		return nil, err
	}
	if err = rd.InitializeRaster(fileName, rows, columns, north, south, east, west, myConfig); err != nil {
		return nil, causef(RasterInitializationError, err, "%s", fileName)
	}
	r.rd = rd
	r.reflectAtBoundaries = myConfig.ReflectAtBoundaries
	setVariablesFromRasterData(r, r.rd)

	return r, nil
}

// CreateRasterFromFile reads an existing raster. The format comes from
// the file extension unless the config names one.
func CreateRasterFromFile(fileName string, config ...RasterConfig) (*Raster, error) {
	r := &Raster{FileName: fileName, FileExtension: strings.ToLower(filepath.Ext(fileName))}

	rt := RT_UnknownRaster
	if len(config) > 0 {
		rt = config[len(config)-1].RasterFormat
	}
	if rt == RT_UnknownRaster {
		var err error
		if rt, err = DetermineRasterFormat(fileName); err != nil {
			return nil, err
		}
	}
	r.RasterFormat = rt

	rd, err := newRasterData(rt)
	if err != nil {
		return nil, err
	}
	if err = rd.SetFileName(fileName); err != nil {
		return nil, err
	}
	r.rd = rd
	setVariablesFromRasterData(r, r.rd)

	return r, nil
}

// Retrives an individual pixel value in the grid.
func (r *Raster) Value(row, column int) float64 {
	if column >= 0 && column < r.Columns && row >= 0 && row < r.Rows {
		return r.rd.Value(row*r.Columns + column)
	}
	if !r.reflectAtBoundaries {
		return r.rd.NoData()
	}

	// reflected at the edges
	if row < 0 {
		row = -row - 1
	}
	if row >= r.Rows {
		row = r.Rows - (row - r.Rows) - 1
	}
	if column < 0 {
		column = -column - 1
	}
	if column >= r.Columns {
		column = r.Columns - (column - r.Columns) - 1
	}
	if column >= 0 && column < r.Columns && row >= 0 && row < r.Rows {
		return r.Value(row, column)
	}
	// too far off grid to be reflected
	return r.rd.NoData()
}

// Sets an individual pixel value in the grid.
func (r *Raster) SetValue(row, column int, value float64) {
	if column >= 0 && column < r.Columns && row >= 0 && row < r.Rows {
		r.rd.SetValue(row*r.Columns+column, value)
	}
}

// Returns the data as a slice of float64 values in row-major order.
func (r *Raster) Data() []float64 {
	return r.rd.Data()
}

// Sets the data from a slice of float64 values
func (r *Raster) SetData(values []float64) error {
	return r.rd.SetData(values)
}

func (r *Raster) Save() error {
	return r.rd.Save()
}

// Sets the raster config
func (r *Raster) SetRasterConfig(value *RasterConfig) {
	r.rd.SetRasterConfig(value)
	r.reflectAtBoundaries = value.ReflectAtBoundaries
}

// Gets the raster config
func (r *Raster) GetRasterConfig() *RasterConfig {
	return r.rd.GetRasterConfig()
}

func (r *Raster) GetMetadataEntries() []string {
	return r.rd.MetadataEntries()
}

func (r *Raster) AddMetadataEntry(value string) {
	r.rd.AddMetadataEntry(value)
}

func (r *Raster) GetMinimumValue() float64 {
	return r.rd.MinimumValue()
}

func (r *Raster) GetMaximumValue() float64 {
	return r.rd.MaximumValue()
}

func (r *Raster) GetCellSizeX() (cellSizeX float64) {
	if r.rd.GetRasterConfig().PixelIsArea {
		cellSizeX = (r.East - r.West) / (float64(r.Columns))
	} else {
		cellSizeX = (r.East - r.West) / (float64(r.Columns - 1))
	}
	return cellSizeX
}

func (r *Raster) GetCellSizeY() (cellSizeY float64) {
	if r.rd.GetRasterConfig().PixelIsArea {
		cellSizeY = (r.North - r.South) / (float64(r.Rows))
	} else {
		cellSizeY = (r.North - r.South) / (float64(r.Rows - 1))
	}
	return cellSizeY
}

// ToArray copies the grid into a rectangular array carrying the same nodata value.
func (r *Raster) ToArray() *structures.RectangularArrayFloat64 {
	arr := structures.NewRectangularArrayFloat64(r.Rows, r.Columns, r.NoDataValue)
	copy(arr.Data(), r.rd.Data())
	return arr
}

// ReadArray reads fileName and returns its grid as an array, along with
// the raster for its georeferencing.
func ReadArray(fileName string) (*structures.RectangularArrayFloat64, *Raster, error) {
	r, err := CreateRasterFromFile(fileName)
	if err != nil {
		return nil, nil, err
	}
	return r.ToArray(), r, nil
}

// WriteArray saves arr to fileName. The extent, projection and units are
// copied from like; without one the grid is given unit cells with its
// origin at zero. Metadata entries are appended in order.
func WriteArray(fileName string, arr *structures.RectangularArrayFloat64, like *Raster,
	dataType int, metadata ...string) (*Raster, error) {

	config := NewDefaultRasterConfig()
	config.NoDataValue = arr.GetNodata()
	config.InitialValue = arr.GetNodata()
	config.DataType = dataType
	north, south := float64(arr.GetRows()), 0.0
	east, west := float64(arr.GetColumns()), 0.0
	if like != nil {
		north, south, east, west = like.North, like.South, like.East, like.West
		src := like.GetRasterConfig()
		config.CoordinateRefSystemWKT = src.CoordinateRefSystemWKT
		config.ZUnits = src.ZUnits
		config.XYUnits = src.XYUnits
		config.PreferredPalette = src.PreferredPalette
		config.PixelIsArea = src.PixelIsArea
	}

	out, err := CreateNewRaster(fileName, arr.GetRows(), arr.GetColumns(),
		north, south, east, west, config)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(arr.Data()))
	copy(values, arr.Data())
	if err = out.SetData(values); err != nil {
		return nil, err
	}
	for _, entry := range metadata {
		out.AddMetadataEntry(entry)
	}
	if err = out.Save(); err != nil {
		return nil, err
	}
	return out, nil
}

// set's the Raster's public variables based on a RasterData
func setVariablesFromRasterData(r *Raster, rd rasterData) {
	r.Columns = rd.Columns()
	r.Rows = rd.Rows()
	r.North = rd.North()
	r.South = rd.South()
	r.East = rd.East()
	r.West = rd.West()
	r.ByteOrder = rd.GetRasterConfig().ByteOrder
	r.NoDataValue = rd.NoData()
	r.NumberofCells = r.Rows * r.Columns
}
