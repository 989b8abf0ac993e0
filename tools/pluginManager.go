// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// This file was originally created by John Lindsay<jlindsay@uoguelph.ca>,
// Feb. 2015.

// Package tools wraps the depression-removal engine as named tools that
// are run with positional arguments.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

var UnrecognizedToolError = errors.New("Unrecognized tool name. Type 'listtools' for a list of available tools.")
var ArgumentError = errors.New("Invalid tool arguments.")

type PluginToolManager struct {
	workingDirectory string
	mapOfPluginTools map[string]PluginTool
	Logger           *log.Logger
	Out              io.Writer
}

// NewPluginToolManager registers every tool. A nil logger means log.Default().
func NewPluginToolManager(logger *log.Logger) *PluginToolManager {
	if logger == nil {
		logger = log.Default()
	}
	ptm := &PluginToolManager{Logger: logger, Out: os.Stdout}
	ptm.InitializeTools()
	return ptm
}

func (ptm *PluginToolManager) InitializeTools() {
	ptm.mapOfPluginTools = make(map[string]PluginTool)
	for _, tool := range []PluginTool{
		new(BreachDepressions),
		new(FillDepressions),
		new(BatchBreachDepressions),
	} {
		ptm.mapOfPluginTools[strings.ToLower(tool.GetName())] = tool
	}
}

// GetListOfTools returns the registered tools sorted by name.
func (ptm *PluginToolManager) GetListOfTools() []PluginTool {
	ret := make(PluginToolList, 0, len(ptm.mapOfPluginTools))
	for _, val := range ptm.mapOfPluginTools {
		ret = append(ret, val)
	}
	sort.Sort(ret)
	return ret
}

func (ptm *PluginToolManager) lookup(toolName string) (PluginTool, error) {
	name := strings.ToLower(getFormattedToolName(toolName))
	if tool, ok := ptm.mapOfPluginTools[name]; ok {
		return tool, nil
	}
	return nil, fmt.Errorf("%q: %w", toolName, UnrecognizedToolError)
}

// RunWithArguments parses args for the named tool and runs it.
func (ptm *PluginToolManager) RunWithArguments(ctx context.Context, toolName string, args []string) error {
	tool, err := ptm.lookup(toolName)
	if err != nil {
		return err
	}
	fmt.Fprintln(ptm.output(), GetHeaderText(tool.GetName()))
	tool.SetToolManager(ptm)
	if err = tool.ParseArguments(args); err != nil {
		return err
	}
	return tool.Run(ctx)
}

// GetToolArgDescriptions returns one aligned line per argument.
func (ptm *PluginToolManager) GetToolArgDescriptions(toolName string) ([]string, error) {
	trailingSpaces := func(s string, maxLen int) string {
		return s + strings.Repeat(" ", maxLen-len(s)+1)
	}

	tool, err := ptm.lookup(toolName)
	if err != nil {
		return nil, err
	}
	descEntries := tool.GetArgDescriptions()
	lenToolName := 0
	lenDataType := 0
	for _, val := range descEntries {
		if len(val[0]) > lenToolName {
			lenToolName = len(val[0])
		}
		if len(val[1]) > lenDataType {
			lenDataType = len(val[1])
		}
	}
	lenToolName += 2
	lenDataType += 2

	ret := make([]string, len(descEntries))
	for i, val := range descEntries {
		ret[i] = trailingSpaces(val[0], lenToolName) + trailingSpaces(val[1], lenDataType) + val[2]
	}
	return ret, nil
}

func (ptm *PluginToolManager) GetToolHelp(toolName string) (string, error) {
	tool, err := ptm.lookup(toolName)
	if err != nil {
		return "", err
	}
	return tool.GetHelpDocumentation(), nil
}

func (ptm *PluginToolManager) SetWorkingDirectory(wd string) {
	ptm.workingDirectory = wd
}

func (ptm *PluginToolManager) GetWorkingDirectory() string {
	return ptm.workingDirectory
}

// resolvePath places bare file names in the working directory.
func (ptm *PluginToolManager) resolvePath(fileName string) string {
	fileName = strings.TrimSpace(fileName)
	if ptm.workingDirectory == "" || filepath.IsAbs(fileName) || strings.ContainsRune(fileName, os.PathSeparator) {
		return fileName
	}
	return filepath.Join(ptm.workingDirectory, fileName)
}

func (ptm *PluginToolManager) output() io.Writer {
	if ptm.Out == nil {
		return io.Discard
	}
	return ptm.Out
}

type PluginTool interface {
	GetName() string
	GetDescription() string
	GetHelpDocumentation() string
	GetArgDescriptions() [][]string
	ParseArguments([]string) error
	Run(ctx context.Context) error
	SetToolManager(*PluginToolManager)
}

type PluginToolList []PluginTool

func (ptl PluginToolList) Len() int { return len(ptl) }

func (ptl PluginToolList) Less(i, j int) bool {
	return ptl[i].GetName() < ptl[j].GetName()
}

func (ptl PluginToolList) Swap(i, j int) {
	ptl[i], ptl[j] = ptl[j], ptl[i]
}

func GetHeaderText(str string) string {
	border := strings.Repeat("*", len(str)+4)
	return border + "\n* " + str + " *\n" + border
}

var maxToolNameLength = 25

func getFormattedToolName(s string) string {
	l := len(s)
	if l > maxToolNameLength {
		l = maxToolNameLength
	}
	return strings.TrimSpace(s[:l])
}

var maxToolDescriptionLength = 55

func getFormattedToolDescription(s string) string {
	l := len(s)
	if l > maxToolDescriptionLength {
		l = maxToolDescriptionLength
	}
	return strings.TrimSpace(s[:l])
}
