// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"math"
	"net/url"

	"github.com/spezifisch/artgc/gc"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var errInvalidBudget = errors.New("budget must be a number")

// maxBudgetMB bounds budgets so their byte count fits into uint64.
const maxBudgetMB = float64(math.MaxUint64 / gc.MB)

func setConfigDefaults() {
	viper.SetDefault("gc.cache-size-mb", 200)
	viper.SetDefault("gc.non-cache-size-mb", 0)
	viper.SetDefault("gc.show-stats", false)
	viper.SetDefault("gc.interval", "0s")
	viper.SetDefault("gallery.dir", ".")
	viper.SetDefault("gallery.album-count", 50)
	viper.SetDefault("gallery.cover-size", 0)
}

// readConfig loads the config file. Without an explicit file a missing
// config is fine and the defaults apply.
func readConfig(configFile *string) error {
	setConfigDefaults()

	if configFile != nil && *configFile != "" {
		// use custom config file
		viper.SetConfigFile(*configFile)
	} else {
		// lookup default dirs
		viper.SetConfigName("artgc")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/artgc")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("Config file error: %s\n", err)
		}
	}

	if viper.IsSet("server.host") {
		for _, prop := range []string{"auth.username", "auth.password"} {
			if !viper.IsSet(prop) {
				return fmt.Errorf("Config property %s is required with server.host\n", prop)
			}
		}
	}
	return nil
}

// parseServerArg takes a server URL with optional credentials into the
// viper config.
func parseServerArg(arg string) error {
	u, err := url.Parse(arg)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid server format %q; must be a valid URL", arg)
	}
	// If credentials were provided
	if len(u.User.Username()) > 0 {
		viper.Set("auth.username", u.User.Username())
		if p, s := u.User.Password(); s {
			viper.Set("auth.password", p)
		}
	}
	// Blank out the credentials so we can use the URL formatting
	u.User = nil
	viper.Set("server.host", u.String())
	return nil
}

// gcConfig turns the MB budgets from the config into a collector config.
// Negative budgets count as 0.
func gcConfig() (gc.Config, error) {
	cacheBudget, err := budgetBytes("gc.cache-size-mb")
	if err != nil {
		return gc.Config{}, err
	}
	nonCacheBudget, err := budgetBytes("gc.non-cache-size-mb")
	if err != nil {
		return gc.Config{}, err
	}
	return gc.Config{
		CacheBudget:    cacheBudget,
		NonCacheBudget: nonCacheBudget,
		ShowStats:      viper.GetBool("gc.show-stats"),
	}, nil
}

func budgetBytes(key string) (uint64, error) {
	raw := viper.Get(key)
	mb, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(mb) || math.IsInf(mb, 0) {
		return 0, fmt.Errorf("%w: %s = %v", errInvalidBudget, key, raw)
	}
	if mb <= 0 {
		return 0, nil
	}
	if mb >= maxBudgetMB {
		return 0, fmt.Errorf("%w: %s = %v is too large", errInvalidBudget, key, raw)
	}
	return uint64(math.Round(mb * gc.MB)), nil
}
