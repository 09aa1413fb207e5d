// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator endpoints: log verbosity and request logging.
package admin

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/streams/api/restutil"
	"github.com/vechain/streams/log"
)

var logger = log.WithContext("pkg", "admin")

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

type LogLevel struct {
	Level string `json:"level"`
}

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("GET /admin/loglevel").
		HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			return restutil.WriteJSON(w, LogLevel{log.LevelString(logLevel.Level())})
		}))
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("POST /admin/loglevel").
		HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			var req LogLevel
			if err := restutil.ParseJSON(r.Body, &req); err != nil {
				return restutil.BadRequest(errors.WithMessage(err, "body"))
			}
			lvl, ok := levels[strings.ToLower(req.Level)]
			if !ok {
				return restutil.BadRequest(errors.New("invalid verbosity level"))
			}
			logLevel.Set(lvl)
			logger.Info("log level updated", "level", req.Level)
			return restutil.WriteJSON(w, LogLevel{log.LevelString(logLevel.Level())})
		}))

	sub.Path("/apilogs").
		Methods(http.MethodGet).
		Name("GET /admin/apilogs").
		HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			return restutil.WriteJSON(w, LogStatus{apiLogs.Load()})
		}))
	sub.Path("/apilogs").
		Methods(http.MethodPost).
		Name("POST /admin/apilogs").
		HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			var req LogStatus
			if err := restutil.ParseJSON(r.Body, &req); err != nil {
				return restutil.BadRequest(errors.WithMessage(err, "body"))
			}
			apiLogs.Store(req.Enabled)
			logger.Info("api logs updated", "enabled", req.Enabled)
			return restutil.WriteJSON(w, LogStatus{apiLogs.Load()})
		}))

	return handlers.CompressHandler(router).ServeHTTP
}
