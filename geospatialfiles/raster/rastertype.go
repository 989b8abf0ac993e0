// Copyright 2014 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// Originally created by John Lindsay<jlindsay@uoguelph.ca>, Nov. 2014.

package raster

import (
	"path/filepath"
	"strings"
)

// RasterType is used to specify a data format of a raster file
type RasterType int

// Integer constants used to specify each of the supported raster formats
const (
	RT_UnknownRaster RasterType = iota
	RT_ArcGisAsciiRaster
	RT_WhiteboxRaster
)

var rasterTypeList = []string{
	"UnknownRaster",
	"ArcGisAsciiRaster",
	"WhiteboxRaster",
}

var rasterExtensionList = [][]string{
	{".*"},
	{".asc", ".txt"},
	{".dep", ".tas"},
}

// String returns the English name of the RasterType ("ArcGisAsciiRaster", "WhiteboxRaster", ...).
func (rt RasterType) String() string {
	if rt < 0 || int(rt) >= len(rasterTypeList) {
		return rasterTypeList[RT_UnknownRaster]
	}
	return rasterTypeList[rt]
}

// Returns a list of the file extensions associated with a particular raster format.
func (rt RasterType) GetExtensions() []string {
	if rt < 0 || int(rt) >= len(rasterExtensionList) {
		return rasterExtensionList[RT_UnknownRaster]
	}
	return rasterExtensionList[rt]
}

func IsSupportedRasterFileExtension(fileName string) bool {
	rt, err := DetermineRasterFormat(fileName)
	return err == nil && rt != RT_UnknownRaster
}

// Attempts to determine the raster format from the filename.
func DetermineRasterFormat(fileName string) (RasterType, error) {
	fileExtension := strings.ToLower(filepath.Ext(fileName))
	for i := int(RT_UnknownRaster) + 1; i < len(rasterExtensionList); i++ {
		for _, ext := range rasterExtensionList[i] {
			if fileExtension == ext {
				return RasterType(i), nil
			}
		}
	}
	return RT_UnknownRaster, wrapf(UnsupportedRasterFormatError, "%q", fileName)
}

// ListAllSupportedRasterFormats returns the names of every format that can be read and written.
func ListAllSupportedRasterFormats() []string {
	return rasterTypeList[1:]
}

func GetMapOfFormatsAndExtensions() map[string][]string {
	m := make(map[string][]string)
	for i := int(RT_UnknownRaster) + 1; i < len(rasterTypeList); i++ {
		m[rasterTypeList[i]] = rasterExtensionList[i]
	}
	return m
}
