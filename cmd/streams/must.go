// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/streams/co"
	"github.com/vechain/streams/engine"
	"github.com/vechain/streams/eventdb"
	"github.com/vechain/streams/kv"
	"github.com/vechain/streams/lvldb"
	"github.com/vechain/streams/pebbledb"
)

func makeDataDir(ctx *cli.Context) (string, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return "", errors.New("unable to infer default data dir, use --data-dir to specify")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dir)
	}
	return dir, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

// openStore opens the ledger database with the engine picked by --db-engine.
func openStore(ctx *cli.Context, dataDir string) (kv.StoreCloser, error) {
	kind := ctx.String(dbEngineFlag.Name)
	if ctx.Bool(inMemoryFlag.Name) {
		switch kind {
		case "leveldb":
			return lvldb.NewMem()
		case "pebble":
			return pebbledb.NewMem()
		}
		return nil, fmt.Errorf("unknown db engine %q", kind)
	}

	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	fdCache := suggestFDCache()
	logger.Debug("ledger database cache", "MB", cacheMB, "fd", fdCache)

	switch kind {
	case "leveldb":
		dir := filepath.Join(dataDir, "ledger.db")
		db, err := lvldb.New(dir, lvldb.Options{
			CacheSize:              cacheMB,
			OpenFilesCacheCapacity: fdCache,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "open ledger database [%v]", dir)
		}
		return db, nil
	case "pebble":
		dir := filepath.Join(dataDir, "ledger.pebble")
		db, err := pebbledb.Open(dir, pebbledb.Options{
			CacheSize:    cacheMB,
			MaxOpenFiles: fdCache,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "open ledger database [%v]", dir)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown db engine %q", kind)
}

// openEventDB returns nil when the event history is disabled.
func openEventDB(ctx *cli.Context, dataDir string) (*eventdb.EventDB, error) {
	if ctx.Bool(disableEventsFlag.Name) {
		return nil, nil
	}
	if ctx.Bool(inMemoryFlag.Name) {
		return eventdb.NewMem()
	}
	dir := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", dir)
	}
	return db, nil
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func(), error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func printStartupMessage(eng *engine.Engine, dataDir, dbEngine, apiURL, metricsURL, adminURL string) {
	epoch := func(v engine.Variant) string {
		info, err := eng.Epoch(v, nil)
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("#%v duration %vs", info.Current, info.Duration)
	}
	if metricsURL == "" {
		metricsURL = "Disabled"
	}
	if adminURL == "" {
		adminURL = "Disabled"
	}

	fmt.Printf(`Starting %v
    Ledger       [ #%v @%v ]
    Staking      [ %v ]
    Tracking     [ %v ]
    Data dir     [ %v %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		"Streams "+fullVersion(),
		eng.Runtime().Number(), eng.Runtime().Clock().Now().UTC().Format(time.RFC3339),
		epoch(engine.Staking),
		epoch(engine.Tracking),
		dataDir, dbEngine,
		apiURL,
		metricsURL,
		adminURL,
	)
}
