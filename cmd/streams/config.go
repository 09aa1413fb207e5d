// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

// loadConfigFile reads a flat YAML document keyed by flag name.
func loadConfigFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	known := make(map[string]bool, len(flags))
	for _, f := range flags {
		known[f.GetName()] = true
	}

	values := make(map[string]string, len(raw))
	for key, val := range raw {
		if !known[key] || key == configFlag.Name {
			return nil, fmt.Errorf("config: unknown key %q", key)
		}
		switch v := val.(type) {
		case string, bool, int, int64, uint64, float64:
			values[key] = fmt.Sprint(v)
		case nil:
		default:
			return nil, fmt.Errorf("config: key %q must be a scalar", key)
		}
	}
	return values, nil
}

// applyConfigFile overlays values from the config file onto flags not given on the command line.
func applyConfigFile(ctx *cli.Context, path string) error {
	values, err := loadConfigFile(path)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if ctx.IsSet(key) {
			continue
		}
		if err := ctx.Set(key, values[key]); err != nil {
			return errors.Wrapf(err, "config: key %q", key)
		}
	}
	return nil
}
