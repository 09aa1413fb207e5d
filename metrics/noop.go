// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// discard is both the registry and every meter it hands out. It is active
// until InitializePrometheusMetrics swaps in a real registry.
type discard struct{}

var discarded = &discard{}

func defaultNoopMetrics() Metrics { return discarded }

func (*discard) GetOrCreateHistogramMeter(string, []int64) HistogramMeter { return discarded }

func (*discard) GetOrCreateHistogramVecMeter(string, []string, []int64) HistogramVecMeter {
	return discarded
}

func (*discard) GetOrCreateCountMeter(string) CountMeter { return discarded }

func (*discard) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return discarded }

func (*discard) GetOrCreateGaugeMeter(string) GaugeMeter { return discarded }

func (*discard) GetOrCreateGaugeVecMeter(string, []string) GaugeVecMeter { return discarded }

// GetOrCreateHandler answers 404 since nothing is collected.
func (*discard) GetOrCreateHandler() http.Handler { return http.NotFoundHandler() }

func (*discard) Add(int64)                                  {}
func (*discard) Set(int64)                                  {}
func (*discard) Observe(int64)                              {}
func (*discard) AddWithLabel(int64, map[string]string)      {}
func (*discard) SetWithLabel(int64, map[string]string)      {}
func (*discard) ObserveWithLabels(int64, map[string]string) {}
