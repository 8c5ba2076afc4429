// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/kkyr/fig"
	"golang.org/x/text/language"

	"github.com/wneessen/go-geocode"
)

const configEnv = "GEOCODE"

// config represents the command line client's configuration structure.
type config struct {
	// Allowed values: http, https
	Scheme    string        `fig:"scheme" default:"https"`
	Timeout   time.Duration `fig:"timeout" default:"10s"`
	UserAgent string        `fig:"user_agent"`
	Proxy     string        `fig:"proxy"`
	Language  string        `fig:"language"`
	LogLevel  slog.Level    `fig:"loglevel" default:"0"`

	Nominatim struct {
		Domain string `fig:"domain" default:"nominatim.openstreetmap.org"`
	} `fig:"nominatim"`

	RateLimit struct {
		MinDelay   time.Duration `fig:"min_delay" default:"1s"`
		MaxRetries int           `fig:"max_retries" default:"2"`
		ErrorWait  time.Duration `fig:"error_wait" default:"5s"`
	} `fig:"ratelimit"`

	Cache struct {
		HitTTL  time.Duration `fig:"hit_ttl" default:"24h"`
		MissTTL time.Duration `fig:"miss_ttl" default:"1h"`
	} `fig:"cache"`

	// languageTag is the parsed form of Language, filled by Validate.
	languageTag language.Tag
}

func newConfigFromFile(path, file string) (*config, error) {
	conf := new(config)
	if _, err := os.Stat(filepath.Join(path, file)); err != nil {
		return conf, fmt.Errorf("failed to read config: %w", err)
	}
	if err := fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}
	return conf, conf.Validate()
}

func newConfig() (*config, error) {
	conf := new(config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}
	return conf, conf.Validate()
}

func (c *config) Validate() error {
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("invalid scheme: %s", c.Scheme)
	}
	if c.UserAgent == "" {
		c.UserAgent = "go-geocode-cli/" + geocode.Version
	}
	if c.Language == "" {
		if tag, err := locale.Detect(); err == nil {
			c.languageTag = tag
		}
		return nil
	}
	tag, err := language.Parse(c.Language)
	if err != nil {
		return fmt.Errorf("invalid language: %s", c.Language)
	}
	c.languageTag = tag
	return nil
}
