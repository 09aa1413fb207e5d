// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/streams/thor"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML file whose keys mirror the command line flags",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger and event databases",
	}
	inMemoryFlag = cli.BoolFlag{
		Name:  "in-memory",
		Usage: "keep everything in memory, for test & dev",
	}
	dbEngineFlag = cli.StringFlag{
		Name:  "db-engine",
		Value: "leveldb",
		Usage: "ledger database engine (leveldb|pebble)",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 512,
		Usage: "megabytes of ram allocated to the ledger database cache",
	}
	disableEventsFlag = cli.BoolFlag{
		Name:  "disable-events",
		Usage: "do not keep the event history",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8670",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiAllowWritesFlag = cli.BoolFlag{
		Name:  "api-allow-writes",
		Usage: "accept mutating calls through the API (no signature checks, test & dev only)",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events API",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "log API requests slower than this many milliseconds (0 disables)",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log API requests answered with 5xx",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables the admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	epochDurationFlag = cli.Uint64Flag{
		Name:  "epoch-duration",
		Value: thor.MinEpochDuration,
		Usage: "epoch length in seconds, fixed when the ledger is created",
	}
	callGasLimitFlag = cli.Uint64Flag{
		Name:  "call-gas-limit",
		Value: thor.DefaultCallGasLimit,
		Usage: "gas limit of a single call",
	}
	ntpHostFlag = cli.StringFlag{
		Name:  "ntp-host",
		Value: "pool.ntp.org",
		Usage: "NTP server to check the local clock against (empty disables)",
	}

	flags = []cli.Flag{
		configFlag,
		dataDirFlag,
		inMemoryFlag,
		dbEngineFlag,
		cacheFlag,
		disableEventsFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiAllowWritesFlag,
		apiTimeoutFlag,
		apiEventsLimitFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		enableAPILogsFlag,
		pprofFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
		verbosityFlag,
		jsonLogsFlag,
		epochDurationFlag,
		callGasLimitFlag,
		ntpHostFlag,
	}
)
