// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/streams/api/events"
	"github.com/vechain/streams/api/middleware"
	"github.com/vechain/streams/api/operators"
	"github.com/vechain/streams/api/restutil"
	"github.com/vechain/streams/api/streams"
	"github.com/vechain/streams/api/subscriptions"
	"github.com/vechain/streams/api/tokens"
	"github.com/vechain/streams/engine"
	"github.com/vechain/streams/log"
	"github.com/vechain/streams/metrics"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	AllowWrites          bool
	EventsLimit          uint64
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New return api router and a function releasing the subscriptions it serves.
func New(eng *engine.Engine, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	streams.New(eng, opts.AllowWrites).
		Mount(router, "/streams")
	tokens.New(eng, opts.AllowWrites).
		Mount(router, "/tokens")
	operators.New(eng, opts.AllowWrites).
		Mount(router, "/operators")
	if eng.Events() != nil {
		events.New(eng, opts.EventsLimit).
			Mount(router, "/events")
	}
	subs := subscriptions.New(eng, origins)
	subs.Mount(router, "/subscriptions")
	router.Path("/node/status").
		Methods(http.MethodGet).
		Name("GET /node/status").
		HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			rt := eng.Runtime()
			return restutil.WriteJSON(w, restutil.M{
				"number":      rt.Number(),
				"time":        rt.Clock().Now().Unix(),
				"allowWrites": opts.AllowWrites,
			})
		}))

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics && !metrics.NoOp() {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = new(atomic.Bool)
	}
	handler = middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
