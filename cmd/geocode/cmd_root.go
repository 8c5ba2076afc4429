// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wneessen/go-geocode"
	"github.com/wneessen/go-geocode/provider/nominatim"
)

var (
	version = "dev"

	confPath string
	verbose  bool

	conf *config
	log  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "geocode",
	Short:         "Geocode addresses and coordinates using OpenStreetMap Nominatim",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if confPath != "" {
			conf, err = newConfigFromFile(filepath.Dir(confPath), filepath.Base(confPath))
		} else {
			conf, err = newConfig()
		}
		if err != nil {
			return err
		}
		level := conf.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&confPath, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(searchCmd, reverseCmd, bulkCmd)
}

// newCoder builds the configured geocoder with the cache decorator on
// top.
func newCoder() (geocode.Geocoder, error) {
	coder, err := nominatim.New(nominatim.Options{
		Options: geocode.Options{
			Scheme:    conf.Scheme,
			Timeout:   conf.Timeout,
			ProxyURL:  conf.Proxy,
			UserAgent: conf.UserAgent,
			Logger:    log,
		},
		Domain:   conf.Nominatim.Domain,
		Language: conf.languageTag,
	})
	if err != nil {
		return nil, err
	}
	return geocode.NewCachedGeocoder(coder, conf.Cache.HitTTL, conf.Cache.MissTTL), nil
}
