// Copyright 2026 The Dubug Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd wires spec.md §6's flag surface onto a cobra root
// command, the way the teacher's cmd package wires gcsfuse's mount
// flags: bind once in init(), unmarshal from viper in initConfig, and
// let RunE drive the actual work.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dubug-project/dubug/cfg"
	"github.com/dubug-project/dubug/internal/coordinator"
	"github.com/dubug-project/dubug/internal/fspath"
	"github.com/dubug-project/dubug/internal/logger"
	"github.com/dubug-project/dubug/internal/nameresolve"
	"github.com/dubug-project/dubug/internal/peer"
	"github.com/dubug-project/dubug/internal/priority"
	"github.com/dubug-project/dubug/internal/telemetry"
	"github.com/dubug-project/dubug/internal/usagetree"
	"github.com/dubug-project/dubug/internal/workqueue"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes per spec.md §6.
const (
	ExitSuccess = 0
	ExitInval   = 22 // EINVAL
	ExitNoMem   = 12 // ENOMEM
	ExitError   = 1
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error
	Config        cfg.Config
	showVersion   bool

	// version is set at build time via -ldflags.
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "dubug [flags] path...",
	Short: "Report disk usage broken down by user and group",
	Long:  `dubug walks one or more directory trees and reports disk usage tallied by owning user and group, optionally splitting the work across cooperating peers.`,
	Args:  cobra.MinimumNArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintln(os.Stdout, version)
			return nil
		}
		if len(args) == 0 {
			return cobra.MinimumNArgs(1)(cmd, args)
		}
		if bindErr != nil {
			return withExitCode(bindErr, ExitInval)
		}
		if configFileErr != nil {
			return withExitCode(configFileErr, ExitInval)
		}
		if unmarshalErr != nil {
			return withExitCode(unmarshalErr, ExitInval)
		}
		return run(cmd.Context(), args)
	},
}

// exitCodeErr lets Execute recover the spec-mandated exit code without
// every call site threading an int alongside its error.
type exitCodeErr struct {
	err  error
	code int
}

func (e *exitCodeErr) Error() string { return e.err.Error() }
func (e *exitCodeErr) Unwrap() error { return e.err }

func withExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &exitCodeErr{err: err, code: code}
}

func run(ctx context.Context, args []string) error {
	priority.LowerMaximally()

	level := logger.LevelForVerbosity(Config.Verbosity())

	var group *peer.Group
	if Config.PeersFile != "" {
		top, err := peer.LoadTopology(Config.PeersFile)
		if err != nil {
			return withExitCode(err, ExitInval)
		}
		g, err := peer.Join(top, Config.Rank)
		if err != nil {
			return withExitCode(fmt.Errorf("joining peer group: %w", err), ExitError)
		}
		defer g.Close()
		group = g
	}

	logOpts := logger.Options{Format: Config.LogFormat, Level: level, LogFile: Config.LogFile}
	if group != nil {
		logOpts.Rank = group.Rank
		logOpts.RunID = group.RunID
	}
	if err := logger.Init(logOpts); err != nil {
		return withExitCode(err, ExitError)
	}
	defer logger.Close()

	if Config.MetricsAddr != "" && (group == nil || group.Rank == 0) {
		shutdown, err := telemetry.Serve(Config.MetricsAddr)
		if err != nil {
			logger.Warnf("not serving metrics: %v", err)
		} else {
			defer shutdown(ctx)
		}
	}

	policy, err := seedPolicy(Config.WorkQueueSize)
	if err != nil {
		return withExitCode(err, ExitInval)
	}
	opts := coordinator.Options{
		Param:      workQueueParameter(Config.Parameter),
		SeedPolicy: policy,
		Splitter:   splitter(Config.WorkQueueSplit),

		HumanReadable: Config.HumanReadable,
		Numeric:       Config.Numeric,
		Unsorted:      Config.Unsorted,
		UIDNameFn:     nameresolve.User,
		GIDNameFn:     nameresolve.Group,
	}
	summaryParam := usagetree.Parameter(opts.Param)

	var firstErr error
	for _, a := range args {
		res, err := coordinator.Scan(fspath.New(a), group, opts)
		if err != nil {
			logger.Errorf("scanning %s: %v", a, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if res == nil {
			// Non-root peers have nothing of their own to present.
			continue
		}
		if Config.WorkQueueSummary {
			fmt.Fprintf(os.Stdout, "%s\n", a)
		}
		coordinator.Present(os.Stdout, res, opts, summaryParam)
	}
	if firstErr != nil {
		return withExitCode(firstErr, ExitError)
	}
	return nil
}

func workQueueParameter(s string) workqueue.Parameter {
	switch s {
	case "st_size":
		return workqueue.ParamSize
	case "st_blocks":
		return workqueue.ParamBlocks
	default:
		return workqueue.ParamActual
	}
}

func seedPolicy(raw string) (workqueue.SeedPolicy, error) {
	kind, n, err := cfg.ParseWorkQueueSize(raw)
	if err != nil {
		return workqueue.SeedPolicy{}, err
	}
	if kind == "depth" {
		if n == 0 {
			n = 1
		}
		return workqueue.SeedPolicy{Kind: workqueue.ByPathDepth, N: n}, nil
	}
	return workqueue.SeedPolicy{Kind: workqueue.ByPathCount, N: n}, nil
}

func splitter(s string) coordinator.Splitter {
	switch s {
	case "strided":
		return coordinator.SplitStrided
	case "randomized":
		return coordinator.SplitRandomized
	default:
		return coordinator.SplitContiguous
	}
}

// Execute runs the root command and maps a returned error onto the
// exit codes spec.md §6 mandates.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		os.Exit(ExitSuccess)
	}
	fmt.Fprintln(os.Stderr, err)
	var ec *exitCodeErr
	if errors.As(err, &ec) {
		os.Exit(ec.code)
	}
	os.Exit(ExitError)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "path to a YAML config file")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "print the version and exit")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&Config)
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&Config)
}
