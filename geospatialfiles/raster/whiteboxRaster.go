// Copyright 2014 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// This file was originally created by John Lindsay<jlindsay@uoguelph.ca>,
// Nov. 2014.

package raster

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Used to manipulate a Whitebox raster, a text header (.dep) next to a
// binary data file (.tas).
type whiteboxRaster struct {
	dataFile     string
	data         []float64
	header       whiteboxRasterHeader
	minimumValue float64
	maximumValue float64
	config       *RasterConfig
}

type whiteboxRasterHeader struct {
	fileName string
	rows     int
	columns  int
	numCells int
	nodata   float64
	north    float64
	south    float64
	east     float64
	west     float64
}

func (r *whiteboxRaster) setFileNames(fileName string) error {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	switch strings.ToLower(ext) {
	case ".tas":
		r.dataFile = fileName
		r.header.fileName = base + ".dep"
	case ".dep":
		r.header.fileName = fileName
		r.dataFile = base + ".tas"
	default:
		return wrapf(UnsupportedRasterFormatError, "%s", fileName)
	}
	return nil
}

func (r *whiteboxRaster) InitializeRaster(fileName string,
	rows int, columns int, north float64, south float64,
	east float64, west float64, config *RasterConfig) error {

	r.config = config
	r.config.RasterFormat = RT_WhiteboxRaster
	if r.config.ByteOrder == nil {
		r.config.ByteOrder = binary.LittleEndian
	}
	r.header.columns = columns
	r.header.rows = rows
	r.header.numCells = rows * columns
	r.header.north = north
	r.header.south = south
	r.header.east = east
	r.header.west = west
	r.header.nodata = config.NoDataValue

	if err := r.setFileNames(fileName); err != nil {
		return err
	}
	if err := r.deleteFiles(); err != nil {
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

// Retrieve the data file name (.tas) of this Whitebox raster file.
func (r *whiteboxRaster) FileName() string {
	return r.dataFile
}

// Set the file name of this Whitebox raster and read it. Either the .dep
// or the .tas name may be given.
func (r *whiteboxRaster) SetFileName(value string) error {
	r.config = NewDefaultRasterConfig()
	r.config.RasterFormat = RT_WhiteboxRaster
	if err := r.setFileNames(value); err != nil {
		return err
	}
	if _, err := os.Stat(r.header.fileName); err != nil {
		return causef(FileDoesNotExistError, err, "%s", r.header.fileName)
	}
	if err := r.ReadFile(); err != nil {
		return err
	}
	r.minimumValue = math.MaxFloat64
	r.maximumValue = -math.MaxFloat64
	return nil
}

// Retrieve the RasterType of this Raster.
func (r *whiteboxRaster) RasterType() RasterType {
	return RT_WhiteboxRaster
}

func (r *whiteboxRaster) Rows() int {
	return r.header.rows
}

func (r *whiteboxRaster) Columns() int {
	return r.header.columns
}

func (r *whiteboxRaster) North() float64 {
	return r.header.north
}

func (r *whiteboxRaster) South() float64 {
	return r.header.south
}

func (r *whiteboxRaster) East() float64 {
	return r.header.east
}

func (r *whiteboxRaster) West() float64 {
	return r.header.west
}

// Retrieve the raster's minimum value
func (r *whiteboxRaster) MinimumValue() float64 {
	if r.minimumValue == math.MaxFloat64 {
		r.minimumValue, r.maximumValue = findMinAndMaxVals(r.data, r.header.nodata)
	}
	return r.minimumValue
}

// Retrieve the raster's maximum value
func (r *whiteboxRaster) MaximumValue() float64 {
	if r.maximumValue == -math.MaxFloat64 {
		r.minimumValue, r.maximumValue = findMinAndMaxVals(r.data, r.header.nodata)
	}
	return r.maximumValue
}

func (r *whiteboxRaster) SetRasterConfig(value *RasterConfig) {
	r.config = value
}

func (r *whiteboxRaster) GetRasterConfig() *RasterConfig {
	return r.config
}

func (r *whiteboxRaster) NoData() float64 {
	return r.header.nodata
}

// Retrieves the metadata for this raster
func (r *whiteboxRaster) MetadataEntries() []string {
	return r.config.MetadataEntries
}

// Adds a metadata entry to this raster. Blank entries are ignored.
func (r *whiteboxRaster) AddMetadataEntry(value string) {
	if len(strings.TrimSpace(value)) == 0 {
		return
	}
	r.config.MetadataEntries = append(r.config.MetadataEntries, value)
}

func (r *whiteboxRaster) Data() []float64 {
	return r.data
}

func (r *whiteboxRaster) SetData(values []float64) error {
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

func (r *whiteboxRaster) Value(index int) float64 {
	return r.data[index]
}

func (r *whiteboxRaster) SetValue(index int, value float64) {
	r.data[index] = value
}

// Save writes the header and then the data file.
func (r *whiteboxRaster) Save() error {
	if err := r.deleteFiles(); err != nil {
		return err
	}
	if err := r.writeHeaderFile(); err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	var err error
	switch r.config.DataType {
	case DT_FLOAT64:
		err = binary.Write(buf, r.config.ByteOrder, r.data)
	case DT_FLOAT32:
		out := make([]float32, len(r.data))
		for i := 0; i < len(r.data); i++ {
			out[i] = float32(r.data[i])
		}
		err = binary.Write(buf, r.config.ByteOrder, out)
	case DT_INT16:
		out := make([]int16, len(r.data))
		for i := 0; i < len(r.data); i++ {
			out[i] = int16(r.data[i])
		}
		err = binary.Write(buf, r.config.ByteOrder, out)
	case DT_INT8:
		out := make([]int8, len(r.data))
		for i := 0; i < len(r.data); i++ {
			out[i] = int8(r.data[i])
		}
		err = binary.Write(buf, r.config.ByteOrder, out)
	default:
		return wrapf(FileWritingError, "%s: unknown data type %d", r.dataFile, r.config.DataType)
	}
	if err != nil {
		return causef(FileWritingError, err, "%s", r.dataFile)
	}
	if err = os.WriteFile(r.dataFile, buf.Bytes(), 0o644); err != nil {
		return causef(FileWritingError, err, "%s", r.dataFile)
	}
	return nil
}

// Reads the file
func (r *whiteboxRaster) ReadFile() error {
	if err := r.readHeaderFile(); err != nil {
		return err
	}

	bytedata, err := os.ReadFile(r.dataFile)
	if err != nil {
		return causef(FileReadingError, err, "%s", r.dataFile)
	}
	buf := bytes.NewReader(bytedata)
	r.header.numCells = r.header.columns * r.header.rows
	r.data = make([]float64, r.header.numCells)
	switch r.config.DataType {
	case DT_FLOAT64:
		err = binary.Read(buf, r.config.ByteOrder, &r.data)
	case DT_FLOAT32:
		nativeData := make([]float32, r.header.numCells)
		if err = binary.Read(buf, r.config.ByteOrder, &nativeData); err == nil {
			for i, value := range nativeData {
				r.data[i] = float64(value)
			}
		}
	case DT_INT16:
		nativeData := make([]int16, r.header.numCells)
		if err = binary.Read(buf, r.config.ByteOrder, &nativeData); err == nil {
			for i, value := range nativeData {
				r.data[i] = float64(value)
			}
		}
	case DT_INT8:
		nativeData := make([]int8, r.header.numCells)
		if err = binary.Read(buf, r.config.ByteOrder, &nativeData); err == nil {
			for i, value := range nativeData {
				r.data[i] = float64(value)
			}
		}
	default:
		return wrapf(FileReadingError, "%s: unknown data type", r.header.fileName)
	}
	if err != nil {
		return causef(FileIsNotProperlyFormated, err, "%s", r.dataFile)
	}
	return nil
}

func (r *whiteboxRaster) readHeaderFile() error {
	if r.header.fileName == "" {
		return wrapf(FileReadingError, "Whitebox GAT raster header file not set properly")
	}
	content, err := os.ReadFile(r.header.fileName)
	if err != nil {
		return causef(FileReadingError, err, "%s", r.header.fileName)
	}
	parseFloat := func(s string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, causef(FileIsNotProperlyFormated, err, "%s", r.header.fileName)
		}
		return v, nil
	}
	parseInt := func(s string) (int, error) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, causef(FileIsNotProperlyFormated, err, "%s", r.header.fileName)
		}
		return v, nil
	}

	str := strings.Replace(string(content), "\r\n", "\n", -1)
	lines := strings.Split(str, "\n")
	for _, line := range lines {
		key, value, found := strings.Cut(line, "\t")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(key), ":"))
		switch key {
		case "min":
			r.minimumValue, err = parseFloat(value)
		case "max":
			r.maximumValue, err = parseFloat(value)
		case "display min":
			r.config.DisplayMinimum, err = parseFloat(value)
		case "display max":
			r.config.DisplayMaximum, err = parseFloat(value)
		case "north":
			r.header.north, err = parseFloat(value)
		case "south":
			r.header.south, err = parseFloat(value)
		case "east":
			r.header.east, err = parseFloat(value)
		case "west":
			r.header.west, err = parseFloat(value)
		case "cols":
			r.header.columns, err = parseInt(value)
		case "rows":
			r.header.rows, err = parseInt(value)
		case "stacks":
			r.config.NumberOfBands, err = parseInt(value)
		case "data type":
			dt := strings.ToLower(strings.TrimSpace(value))
			switch {
			case strings.Contains(dt, "double"):
				r.config.DataType = DT_FLOAT64
			case strings.Contains(dt, "float"):
				r.config.DataType = DT_FLOAT32
			case strings.Contains(dt, "int"):
				r.config.DataType = DT_INT16
			default: // byte
				r.config.DataType = DT_INT8
			}
		case "data scale":
			switch strings.ToLower(strings.TrimSpace(value)) {
			case "categorical":
				r.config.PhotometricInterpretation = 1
			case "boolean", "bool":
				r.config.PhotometricInterpretation = 2
			case "rgb":
				r.config.PhotometricInterpretation = 3
			default: // continuous
				r.config.PhotometricInterpretation = 0
			}
		case "z units":
			r.config.ZUnits = strings.ToLower(strings.TrimSpace(value))
		case "xy units":
			r.config.XYUnits = strings.ToLower(strings.TrimSpace(value))
		case "projection":
			r.config.CoordinateRefSystemWKT = value
		case "preferred palette":
			r.config.PreferredPalette = strings.ToLower(strings.TrimSpace(value))
		case "palette nonlinearity":
			r.config.PaletteNonlinearity, err = parseFloat(value)
		case "byte order":
			if strings.Contains(strings.ToUpper(value), "LITTLE_ENDIAN") {
				r.config.ByteOrder = binary.LittleEndian
			} else {
				r.config.ByteOrder = binary.BigEndian
			}
		case "nodata":
			r.header.nodata, err = parseFloat(value)
			r.config.NoDataValue = r.header.nodata
		case "metadata entry":
			r.AddMetadataEntry(strings.Replace(strings.TrimSpace(value), ";", ":", -1))
		}
		if err != nil {
			return err
		}
	}

	if r.header.rows <= 0 || r.header.columns <= 0 {
		return wrapf(FileIsNotProperlyFormated, "%s: %dx%d grid", r.header.fileName, r.header.rows, r.header.columns)
	}
	r.header.numCells = r.header.rows * r.header.columns
	return nil
}

func (r *whiteboxRaster) writeHeaderFile() error {
	f, err := os.Create(r.header.fileName)
	if err != nil {
		return causef(FileWritingError, err, "%s", r.header.fileName)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	formatFloat := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	writeEntry := func(key, value string) {
		w.WriteString(key + ":\t" + value + "\n")
	}

	r.minimumValue, r.maximumValue = findMinAndMaxVals(r.data, r.header.nodata)

	writeEntry("Min", formatFloat(r.minimumValue))
	writeEntry("Max", formatFloat(r.maximumValue))
	writeEntry("North", formatFloat(r.header.north))
	writeEntry("South", formatFloat(r.header.south))
	writeEntry("East", formatFloat(r.header.east))
	writeEntry("West", formatFloat(r.header.west))
	writeEntry("Cols", strconv.Itoa(r.header.columns))
	writeEntry("Rows", strconv.Itoa(r.header.rows))
	writeEntry("Stacks", strconv.Itoa(r.config.NumberOfBands))
	switch r.config.DataType {
	case DT_FLOAT64:
		writeEntry("Data Type", "DOUBLE")
	case DT_INT16:
		writeEntry("Data Type", "INTEGER")
	case DT_INT8:
		writeEntry("Data Type", "BYTE")
	default:
		writeEntry("Data Type", "FLOAT")
	}
	writeEntry("Z Units", r.config.ZUnits)
	writeEntry("XY Units", r.config.XYUnits)
	if r.config.CoordinateRefSystemWKT == "" {
		r.config.CoordinateRefSystemWKT = "not specified"
	}
	writeEntry("Projection", r.config.CoordinateRefSystemWKT)
	switch r.config.PhotometricInterpretation {
	case 1:
		writeEntry("Data Scale", "categorical")
	case 2:
		writeEntry("Data Scale", "boolean")
	case 3:
		writeEntry("Data Scale", "rgb")
	default:
		writeEntry("Data Scale", "continuous")
	}
	if r.config.DisplayMinimum == math.MaxFloat64 {
		r.config.DisplayMinimum = r.minimumValue
	}
	writeEntry("Display Min", formatFloat(r.config.DisplayMinimum))
	if r.config.DisplayMaximum == -math.MaxFloat64 {
		r.config.DisplayMaximum = r.maximumValue
	}
	writeEntry("Display Max", formatFloat(r.config.DisplayMaximum))
	if r.config.PreferredPalette == "not specified" {
		r.config.PreferredPalette = "grey.pal"
	}
	writeEntry("Preferred Palette", r.config.PreferredPalette)
	writeEntry("NoData", formatFloat(r.header.nodata))
	if r.config.ByteOrder == binary.LittleEndian {
		writeEntry("Byte Order", "LITTLE_ENDIAN")
	} else {
		writeEntry("Byte Order", "BIG_ENDIAN")
	}
	writeEntry("Palette Nonlinearity", formatFloat(r.config.PaletteNonlinearity))
	for _, value := range r.config.MetadataEntries {
		if len(strings.TrimSpace(value)) > 0 {
			writeEntry("Metadata Entry", strings.Replace(value, ":", ";", -1))
		}
	}

	if err = w.Flush(); err != nil {
		return causef(FileWritingError, err, "%s", r.header.fileName)
	}
	return nil
}

func (r *whiteboxRaster) deleteFiles() error {
	if err := removeIfExists(r.header.fileName); err != nil {
		return err
	}
	return removeIfExists(r.dataFile)
}
