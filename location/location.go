// Package location turns the browser's geolocation fix into coordinates
// for a clock request.
package location

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNoFix means the client did not deliver a usable position.
var ErrNoFix = errors.New("no GPS fix")

type Coordinates struct {
	Latitude  float64
	Longitude float64
	// Accuracy in metres as reported by the device, 0 when unknown.
	Accuracy float64
}

// FromForm parses the latitude/longitude/accuracy form values. Empty,
// unparseable, out-of-range and exact 0,0 positions are rejected.
func FromForm(lat, lon, accuracy string) (Coordinates, error) {
	la, err := parse(lat)
	if err != nil {
		return Coordinates{}, ErrNoFix
	}
	lo, err := parse(lon)
	if err != nil {
		return Coordinates{}, ErrNoFix
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return Coordinates{}, ErrNoFix
	}
	if la == 0 && lo == 0 {
		return Coordinates{}, ErrNoFix
	}

	c := Coordinates{Latitude: la, Longitude: lo}
	if acc, err := parse(accuracy); err == nil && acc > 0 {
		c.Accuracy = acc
	}
	return c, nil
}

func parse(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrNoFix
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNoFix
	}
	return v, nil
}
