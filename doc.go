// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode provides a uniform client core for third-party
// geocoding and reverse-geocoding web services.
//
// The Client type is the request pipeline shared by all provider
// implementations: it builds the request through a pluggable transport
// adapter (see the adapter subpackage) and translates every failure into
// the shared error taxonomy (see the geoerr subpackage). Provider
// packages such as provider/nominatim are thin consumers of this core.
//
// For bulk workloads, wrap a provider call in a ratelimit.Limiter to add
// inter-call pacing and bounded retries, and optionally in a
// CachedGeocoder to avoid re-querying known places.
package geocode
