// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/streams/api"
	"github.com/vechain/streams/cmd/streams/httpserver"
	"github.com/vechain/streams/engine"
	"github.com/vechain/streams/log"
	"github.com/vechain/streams/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

const clockCheckInterval = 10 * time.Minute

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Streams",
		Usage:     "Epoch based reward streams ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags:     flags,
		Action:    defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func defaultAction(ctx *cli.Context) error {
	if path := ctx.String(configFlag.Name); path != "" {
		if err := applyConfigFile(ctx, path); err != nil {
			return err
		}
	}

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("exited") }()

	exitCtx, cancel := handleExitSignal()
	defer cancel()

	// metrics must be switched on before any meter is created
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	dataDir := "Memory"
	if !ctx.Bool(inMemoryFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
	}

	store, err := openStore(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); store.Close() }()

	events, err := openEventDB(ctx, dataDir)
	if err != nil {
		return err
	}
	if events != nil {
		defer func() { logger.Info("closing event database..."); events.Close() }()
	}

	eng, err := engine.New(store, events, clockwork.NewRealClock(), engine.Config{
		EpochDuration: ctx.Uint64(epochDurationFlag.Name),
		CallGasLimit:  ctx.Uint64(callGasLimitFlag.Name),
	})
	if err != nil {
		return err
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(eng, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		AllowWrites:          ctx.Bool(apiAllowWritesFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})

	defer closeSubs()

	apiURL, srvCloser, err := startAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	printStartupMessage(eng, dataDir, ctx.String(dbEngineFlag.Name), apiURL, metricsURL, adminURL)

	group, groupCtx := errgroup.WithContext(exitCtx)
	group.Go(func() error {
		return watchClock(groupCtx, ctx.String(ntpHostFlag.Name), clockCheckInterval)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
