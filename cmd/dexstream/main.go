// Copyright 2019 dfuse Platform Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dexstream-io/dexstream"
	"github.com/dexstream-io/dexstream/config"
	"github.com/dexstream-io/dexstream/corecast"
	"github.com/spf13/cobra"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "dexstream",
		Short:   "Console consumer for a streaming DEX data feed",
		Version: version,
		Args:    cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "dexstream.yaml", "Path to the YAML configuration file")

	return cmd
}

func run(configPath string) error {
	logging.InstantiateLoggers()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	req, err := cfg.Request()
	if err != nil {
		return err
	}

	conn, err := corecast.Dial(cfg.Server.Address, cfg.Server.Insecure)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", cfg.Server.Address, err)
	}
	defer conn.Close()

	client := corecast.NewClient(conn, corecast.WithToken(cfg.Server.Authorization))

	handler := dexstream.FilteredHandler(
		printHandler(os.Stdout),
		dexstream.NewTradeSideFilter(req.TradeFilter()),
	)

	supervisor := dexstream.NewSupervisor(
		client.SourceFactory(context.Background()),
		handler,
		dexstream.WithReconnectPolicy(cfg.ReconnectPolicy()),
		dexstream.WithReportInterval(cfg.ReportEvery.Std()),
	)

	if err := supervisor.Start(req); err != nil {
		return err
	}
	zlog.Info("streaming started",
		zap.String("endpoint", cfg.Server.Address),
		zap.String("stream_type", cfg.Stream.Type),
	)

	signals := make(chan os.Signal, 8)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range signals {
		if sig == syscall.SIGHUP {
			reload(supervisor, configPath)
			continue
		}

		zlog.Info("signal received, shutting down", zap.String("signal", sig.String()))
		supervisor.Stop()
		return nil
	}
	return nil
}

// reload applies the configuration file again. Any failure leaves the
// current stream running untouched; an overlapping reload is dropped.
func reload(supervisor *dexstream.Supervisor, configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		zlog.Warn("config reload failed, keeping previous configuration", zap.Error(err))
		return
	}
	req, err := cfg.Request()
	if err != nil {
		zlog.Warn("config reload failed, keeping previous configuration", zap.Error(err))
		return
	}

	if err := supervisor.Reconfigure(req); err != nil {
		if errors.Is(err, dexstream.ErrReloadInFlight) {
			zlog.Info("a reload is already in flight, dropping this one")
			return
		}
		zlog.Warn("reconfigure failed, supervisor keeps retrying the new subscription", zap.Error(err))
	}
}
