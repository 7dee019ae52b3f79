// Package geo parses the CSDL geo literal shapes (box, radius, polygon) into
// orb geometries so malformed coordinates are rejected before they are written.
package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Geo operator names.
const (
	OperatorBox     = "geo_box"
	OperatorRadius  = "geo_radius"
	OperatorPolygon = "geo_polygon"
)

var ErrInvalidLiteral = errors.New("invalid geo literal")

// Shape is a parsed geo literal. Radius is only set for geo_radius.
type Shape struct {
	Operator string
	Geometry orb.Geometry
	Radius   float64
}

// IsGeoOperator reports whether op takes a geo literal.
func IsGeoOperator(op string) bool {
	return op == OperatorBox || op == OperatorRadius || op == OperatorPolygon
}

// Parse parses literal for the given geo operator. Coordinates are written as
// "lat,lon" and separated by ':'. For operators that are not geo operators Parse
// returns a nil shape and no error.
func Parse(operator, literal string) (*Shape, error) {
	if !IsGeoOperator(operator) {
		return nil, nil
	}
	parts := strings.Split(literal, ":")
	switch operator {
	case OperatorRadius:
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %s expects lat,lon:radius", ErrInvalidLiteral, operator)
		}
		center, err := parsePoint(parts[0])
		if err != nil {
			return nil, err
		}
		radius, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || radius <= 0 {
			return nil, fmt.Errorf("%w: radius %q must be a positive number", ErrInvalidLiteral, parts[1])
		}
		return &Shape{Operator: operator, Geometry: center, Radius: radius}, nil

	case OperatorBox:
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %s expects lat,lon:lat,lon", ErrInvalidLiteral, operator)
		}
		a, err := parsePoint(parts[0])
		if err != nil {
			return nil, err
		}
		b, err := parsePoint(parts[1])
		if err != nil {
			return nil, err
		}
		return &Shape{Operator: operator, Geometry: orb.MultiPoint{a, b}.Bound()}, nil

	default:
		if len(parts) < 3 {
			return nil, fmt.Errorf("%w: %s needs at least 3 vertices", ErrInvalidLiteral, operator)
		}
		ring := make(orb.Ring, 0, len(parts)+1)
		for _, p := range parts {
			pt, err := parsePoint(p)
			if err != nil {
				return nil, err
			}
			ring = append(ring, pt)
		}
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		return &Shape{Operator: operator, Geometry: orb.Polygon{ring}}, nil
	}
}

// parsePoint parses "lat,lon" into an orb.Point, which stores lon first.
func parsePoint(s string) (orb.Point, error) {
	coords := strings.Split(s, ",")
	if len(coords) != 2 {
		return orb.Point{}, fmt.Errorf("%w: point %q must be lat,lon", ErrInvalidLiteral, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return orb.Point{}, fmt.Errorf("%w: latitude %q out of range", ErrInvalidLiteral, coords[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
	if err != nil || lon < -180 || lon > 180 {
		return orb.Point{}, fmt.Errorf("%w: longitude %q out of range", ErrInvalidLiteral, coords[1])
	}
	return orb.Point{lon, lat}, nil
}
