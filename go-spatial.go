// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// Command go-spatial removes depressions from digital elevation models.
//
//	go-spatial run BreachDepressions --args "in.dep;out.dep;10;-1;false"
//	go-spatial batch job.toml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jblindsay/whitebox-tools-sub008/geospatialfiles/raster"
	"github.com/jblindsay/whitebox-tools-sub008/tools"
)

var version = "0.2.0"

var buildstamp = "no build stamp provided"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool
	var cwd string
	logger := log.NewWithOptions(stderr, log.Options{ReportTimestamp: true})
	toolManager := tools.NewPluginToolManager(logger)
	toolManager.Out = stdout

	root := &cobra.Command{
		Use:           "go-spatial",
		Short:         "GoSpatial removes topographic depressions from DEMs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetLevel(log.InfoLevel)
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
			if cwd == "" {
				return nil
			}
			info, err := os.Stat(cwd)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", cwd)
			}
			toolManager.SetWorkingDirectory(cwd)
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf("go-spatial %s\nbuilt: %s\n", version, buildstamp))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&cwd, "cwd", "", "working directory for bare file names")

	root.AddCommand(
		runCommand(toolManager),
		listToolsCommand(toolManager),
		toolHelpCommand(toolManager),
		toolArgsCommand(toolManager),
		rasterFormatsCommand(),
		batchCommand(toolManager),
		versionCommand(),
	)
	return root
}

func runCommand(toolManager *tools.PluginToolManager) *cobra.Command {
	var toolArgs string
	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Run a tool with positional arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toolManager.RunWithArguments(cmd.Context(), args[0], splitToolArgs(toolArgs))
		},
	}
	cmd.Flags().StringVar(&toolArgs, "args", "", "tool arguments, delimited by semicolons or commas")
	return cmd
}

// splitToolArgs splits on semicolons, or on commas when there are none.
// Empty fields are kept so later arguments keep their positions.
func splitToolArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	sep := ";"
	if !strings.Contains(s, sep) {
		sep = ","
	}
	fields := strings.Split(s, sep)
	for i := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(fields[i]), `"'`)
	}
	return fields
}

func listToolsCommand(toolManager *tools.PluginToolManager) *cobra.Command {
	return &cobra.Command{
		Use:   "listtools",
		Short: "List all available tools",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			list := toolManager.GetListOfTools()
			fmt.Fprintf(out, "The following %d tools are available:\n", len(list))
			for _, tool := range list {
				fmt.Fprintf(out, "%-25s %s\n", tool.GetName(), tool.GetDescription())
			}
		},
	}
}

func toolHelpCommand(toolManager *tools.PluginToolManager) *cobra.Command {
	return &cobra.Command{
		Use:   "toolhelp <tool>",
		Short: "Print the help documentation for a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			help, err := toolManager.GetToolHelp(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), help)
			return nil
		},
	}
}

func toolArgsCommand(toolManager *tools.PluginToolManager) *cobra.Command {
	return &cobra.Command{
		Use:   "toolargs <tool>",
		Short: "Print the arguments of a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := toolManager.GetToolArgDescriptions(args[0])
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func rasterFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rasterformats",
		Short: "List the supported raster formats and their extensions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			m := raster.GetMapOfFormatsAndExtensions()
			names := make([]string, 0, len(m))
			for name := range m {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, strings.Join(m[name], ", "))
			}
		},
	}
}

func batchCommand(toolManager *tools.PluginToolManager) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <job.toml>",
		Short: "Breach every tile listed in a TOML job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toolManager.RunWithArguments(cmd.Context(), "BatchBreachDepressions", args)
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "go-spatial version %s\n", version)
		},
	}
}
