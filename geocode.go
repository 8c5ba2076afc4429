// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import "context"

// Point is a geographic coordinate pair with an optional altitude in
// meters.
type Point struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// Location is the normalized result of a geocoding or reverse-geocoding
// call, common to all providers.
type Location struct {
	// Name is the display name or formatted address of the place.
	Name      string
	Latitude  float64
	Longitude float64
	Altitude  float64
	// Raw holds the provider's decoded response payload for callers that
	// need fields outside the common set.
	Raw any
	// CacheHit is set by CachedGeocoder when the result was served from
	// the cache.
	CacheHit bool
}

// Point returns the location's coordinates.
func (l *Location) Point() Point {
	return Point{Latitude: l.Latitude, Longitude: l.Longitude, Altitude: l.Altitude}
}

// Geocoder is implemented by every provider. A nil *Location with a nil
// error means the service answered but found no match.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) (*Location, error)
	Reverse(ctx context.Context, point Point) (*Location, error)
}
