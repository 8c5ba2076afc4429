// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package adapter

import (
	"context"
	"log/slog"
	"net/http"
)

// Plain is the fallback adapter. It keeps no connections alive, performs
// no retries and opens one connection per call, speaking HTTP/1.1 only.
type Plain struct {
	client *http.Client
	logger *slog.Logger
}

// NewPlain returns a new Plain adapter.
func NewPlain(cfg Config) (*Plain, error) {
	proxy, err := proxyFunc(cfg.Proxies)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{
		Proxy:             proxy,
		TLSClientConfig:   cloneTLS(cfg.TLSConfig),
		DisableKeepAlives: true,
		ForceAttemptHTTP2: false,
	}
	return &Plain{
		client: &http.Client{Transport: transport},
		logger: loggerOrDefault(cfg.Logger),
	}, nil
}

func (p *Plain) GetText(ctx context.Context, url string, params Params) (string, error) {
	return fetch(ctx, p.client, url, params, p.logger)
}

func (p *Plain) GetJSON(ctx context.Context, url string, params Params, target any) error {
	text, err := p.GetText(ctx, url, params)
	if err != nil {
		return err
	}
	return decodeJSON(text, target)
}

func (p *Plain) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
