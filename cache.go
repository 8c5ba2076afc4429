// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// coordPrecision is the precision used to quantize coordinates for the
// reverse cache (0.01 degrees ≈ 1.1 km)
const coordPrecision = 1e-2

type cacheKey struct {
	Provider string
	Query    string
	LatQ     int32
	LonQ     int32
}

type cacheEntry struct {
	Location *Location
	Expiry   time.Time
}

// CachedGeocoder wraps a Geocoder with a TTL'd in-memory cache. Forward
// lookups are keyed by the normalized query string, reverse lookups by
// quantized coordinates. Results that found a place and results that
// found none can carry different TTLs, so transient "not found"
// responses expire faster. It is safe for concurrent use.
type CachedGeocoder struct {
	coder   Geocoder
	ttlHit  time.Duration
	ttlMiss time.Duration
	clock   clockwork.Clock

	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
}

// NewCachedGeocoder returns a caching decorator around coder.
func NewCachedGeocoder(coder Geocoder, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		coder:   coder,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		clock:   clockwork.NewRealClock(),
		cache:   make(map[cacheKey]cacheEntry),
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Geocode(ctx context.Context, query string) (*Location, error) {
	key := cacheKey{Provider: c.coder.Name(), Query: strings.ToLower(strings.TrimSpace(query))}
	if location, ok := c.lookup(key); ok {
		return location, nil
	}
	location, err := c.coder.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}
	c.store(key, location)
	return location, nil
}

func (c *CachedGeocoder) Reverse(ctx context.Context, point Point) (*Location, error) {
	key := newCoordKey(c.coder.Name(), point.Latitude, point.Longitude)
	if location, ok := c.lookup(key); ok {
		return location, nil
	}
	location, err := c.coder.Reverse(ctx, point)
	if err != nil {
		return nil, err
	}
	c.store(key, location)
	return location, nil
}

func (c *CachedGeocoder) lookup(key cacheKey) (*Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || c.clock.Now().After(entry.Expiry) {
		return nil, false
	}
	if entry.Location == nil {
		return nil, true
	}
	hit := *entry.Location
	hit.CacheHit = true
	return &hit, true
}

func (c *CachedGeocoder) store(key cacheKey, location *Location) {
	ttl := c.ttlHit
	if location == nil {
		ttl = c.ttlMiss
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{Location: location, Expiry: c.clock.Now().Add(ttl)}
}

func newCoordKey(provider string, lat, lon float64) cacheKey {
	return cacheKey{
		Provider: provider,
		LatQ:     int32(math.Round(lat / coordPrecision)),
		LonQ:     int32(math.Round(lon / coordPrecision)),
	}
}
