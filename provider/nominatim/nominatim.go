// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package nominatim is a geocoder for OpenStreetMap Nominatim servers.
//
// Nominatim's usage policy requires each application to provide its own
// User-Agent, see
// https://operations.osmfoundation.org/policies/nominatim/. Set
// Options.UserAgent accordingly.
package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/text/language"

	"github.com/wneessen/go-geocode"
)

// DefaultDomain is the public OpenStreetMap Nominatim instance.
const DefaultDomain = "nominatim.openstreetmap.org"

const name = "nominatim"

// Options configures a Nominatim geocoder. The embedded geocode.Options
// carry the transport settings shared by all providers.
type Options struct {
	geocode.Options

	// Domain selects the Nominatim instance to talk to, for self-hosted
	// or localized servers. Empty means DefaultDomain.
	Domain string
	// Language is sent as the accept-language parameter. The zero tag
	// leaves the parameter out, letting the server pick.
	Language language.Tag
}

// Nominatim is a geocode.Geocoder backed by a Nominatim server.
type Nominatim struct {
	client     *geocode.Client
	lang       language.Tag
	searchURL  string
	reverseURL string
}

type searchResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// New returns a new Nominatim geocoder.
func New(opts Options) (*Nominatim, error) {
	client, err := geocode.New(opts.Options)
	if err != nil {
		return nil, err
	}
	domain := opts.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	return &Nominatim{
		client:     client,
		lang:       opts.Language,
		searchURL:  client.Scheme() + "://" + domain + "/search",
		reverseURL: client.Scheme() + "://" + domain + "/reverse",
	}, nil
}

func (n *Nominatim) Name() string {
	return name
}

// Close releases the underlying transport's connections.
func (n *Nominatim) Close() error {
	return n.client.Close()
}

// Geocode resolves a free-text query to a location. A nil location with
// a nil error means the server found no match.
func (n *Nominatim) Geocode(ctx context.Context, query string) (*geocode.Location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if n.lang != language.Und {
		params.Set("accept-language", n.lang.String())
	}

	var results []searchResult
	if err := n.client.CallGeocoder(ctx, n.searchURL+"?"+params.Encode(), &results, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch address details from Nominatim API: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return newLocation(results[0].DisplayName, results[0].APILat, results[0].APILon, results[0])
}

// Reverse resolves coordinates to the nearest address. A nil location
// with a nil error means the server could not geocode the point.
func (n *Nominatim) Reverse(ctx context.Context, point geocode.Point) (*geocode.Location, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	params.Set("format", "jsonv2")
	if n.lang != language.Und {
		params.Set("accept-language", n.lang.String())
	}

	var result reverseResult
	if err := n.client.CallGeocoder(ctx, n.reverseURL+"?"+params.Encode(), &result, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}
	if result.Error != "" {
		// Nominatim reports "Unable to geocode" with status 200.
		return nil, nil
	}
	return newLocation(result.DisplayName, result.APILat, result.APILon, result)
}

func newLocation(displayName, lat, lon string, raw any) (*geocode.Location, error) {
	location := &geocode.Location{Name: displayName, Raw: raw}
	var err error
	if location.Latitude, err = strconv.ParseFloat(lat, 64); err != nil {
		return nil, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	if location.Longitude, err = strconv.ParseFloat(lon, 64); err != nil {
		return nil, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}
	return location, nil
}
