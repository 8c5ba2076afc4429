// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wneessen/go-geocode/geoerr"
)

// Format templates used by the point helpers. The {lat}/{lon}
// placeholders are replaced with the coordinate values.
const (
	DefaultPointFormat       = "{lat},{lon}"
	DefaultBoundingBoxFormat = "{lat0},{lon0},{lat1},{lon1}"
)

// CoercePointToString normalizes a coordinate pair given as a Point, a
// 2- or 3-element float slice or array, or a delimited string into a
// formatted coordinate string. An empty format means
// DefaultPointFormat. Input that cannot be interpreted as coordinates,
// such as a free-text address passed where a coordinate pair was
// expected, results in a geoerr.ErrQuery error.
func CoercePointToString(point any, format string) (string, error) {
	p, err := coercePoint(point)
	if err != nil {
		return "", err
	}
	if format == "" {
		format = DefaultPointFormat
	}
	replacer := strings.NewReplacer(
		"{lat}", formatCoordinate(p.Latitude),
		"{lon}", formatCoordinate(p.Longitude),
	)
	return replacer.Replace(format), nil
}

// FormatBoundingBox normalizes exactly two coordinate corners into a
// formatted bounding-box string. The corners are reordered so that
// {lat0}/{lon0} is the south-west corner and {lat1}/{lon1} the
// north-east one. An empty format means DefaultBoundingBoxFormat.
func FormatBoundingBox(corners []any, format string) (string, error) {
	if len(corners) != 2 {
		return "", fmt.Errorf("%w: a bounding box requires exactly two corner points, got %d",
			geoerr.ErrQuery, len(corners))
	}
	first, err := coercePoint(corners[0])
	if err != nil {
		return "", err
	}
	second, err := coercePoint(corners[1])
	if err != nil {
		return "", err
	}
	if format == "" {
		format = DefaultBoundingBoxFormat
	}
	replacer := strings.NewReplacer(
		"{lat0}", formatCoordinate(min(first.Latitude, second.Latitude)),
		"{lon0}", formatCoordinate(min(first.Longitude, second.Longitude)),
		"{lat1}", formatCoordinate(max(first.Latitude, second.Latitude)),
		"{lon1}", formatCoordinate(max(first.Longitude, second.Longitude)),
	)
	return replacer.Replace(format), nil
}

// ParsePoint parses a delimited coordinate string like "52.51,13.39",
// "52.51 13.39" or "52.51;13.39;34.5" into a Point.
func ParsePoint(s string) (Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) != 2 && len(fields) != 3 {
		return Point{}, fmt.Errorf("%w: expected a coordinate pair, got %q", geoerr.ErrQuery, s)
	}
	var point Point
	var err error
	if point.Latitude, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return Point{}, fmt.Errorf("%w: cannot parse latitude from %q", geoerr.ErrQuery, s)
	}
	if point.Longitude, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return Point{}, fmt.Errorf("%w: cannot parse longitude from %q", geoerr.ErrQuery, s)
	}
	if len(fields) == 3 {
		if point.Altitude, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return Point{}, fmt.Errorf("%w: cannot parse altitude from %q", geoerr.ErrQuery, s)
		}
	}
	return point, validatePoint(point)
}

func coercePoint(point any) (Point, error) {
	switch v := point.(type) {
	case Point:
		return v, validatePoint(v)
	case *Point:
		if v == nil {
			return Point{}, fmt.Errorf("%w: nil point", geoerr.ErrQuery)
		}
		return *v, validatePoint(*v)
	case [2]float64:
		p := Point{Latitude: v[0], Longitude: v[1]}
		return p, validatePoint(p)
	case [3]float64:
		p := Point{Latitude: v[0], Longitude: v[1], Altitude: v[2]}
		return p, validatePoint(p)
	case []float64:
		if len(v) != 2 && len(v) != 3 {
			return Point{}, fmt.Errorf("%w: expected 2 or 3 coordinate values, got %d", geoerr.ErrQuery, len(v))
		}
		p := Point{Latitude: v[0], Longitude: v[1]}
		if len(v) == 3 {
			p.Altitude = v[2]
		}
		return p, validatePoint(p)
	case string:
		return ParsePoint(v)
	default:
		return Point{}, fmt.Errorf("%w: cannot interpret %T as a coordinate pair", geoerr.ErrQuery, point)
	}
}

func validatePoint(p Point) error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", geoerr.ErrQuery, p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", geoerr.ErrQuery, p.Longitude)
	}
	return nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
