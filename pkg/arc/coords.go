package arc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kass/capital-routes/pkg/models"
)

// Coordinate field names reported in CoordinateError
const (
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
)

var (
	errEmpty      = eris.New("empty value")
	errNotFinite  = eris.New("not a finite number")
	errOutOfRange = eris.New("out of range")
)

// CoordinateError reports a latitude or longitude that cannot be used
type CoordinateError struct {
	Field string
	Value string
	Err   error
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *CoordinateError) Unwrap() error {
	return e.Err
}

// ParseLocation converts decimal-string coordinates into a Location
func ParseLocation(lon, lat string) (models.Location, error) {
	lonVal, err := parseCoordinate(FieldLongitude, lon, 180)
	if err != nil {
		return models.Location{}, err
	}
	latVal, err := parseCoordinate(FieldLatitude, lat, 90)
	if err != nil {
		return models.Location{}, err
	}
	return models.Location{Lat: latVal, Lon: lonVal}, nil
}

// CapitalLocation parses the coordinates of a capital record
func CapitalLocation(c models.Capital) (models.Location, error) {
	return ParseLocation(c.Longitude, c.Latitude)
}

// Validate checks that a numeric location is finite and within range.
// Longitudes outside [-180, 180] are accepted and wrapped later.
func Validate(loc models.Location) error {
	if math.IsNaN(loc.Lon) || math.IsInf(loc.Lon, 0) {
		return &CoordinateError{Field: FieldLongitude, Value: formatFloat(loc.Lon), Err: errNotFinite}
	}
	if math.IsNaN(loc.Lat) || math.IsInf(loc.Lat, 0) {
		return &CoordinateError{Field: FieldLatitude, Value: formatFloat(loc.Lat), Err: errNotFinite}
	}
	if loc.Lat < -90 || loc.Lat > 90 {
		return &CoordinateError{Field: FieldLatitude, Value: formatFloat(loc.Lat), Err: errOutOfRange}
	}
	return nil
}

func parseCoordinate(field, value string, limit float64) (float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, &CoordinateError{Field: field, Value: value, Err: errEmpty}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &CoordinateError{Field: field, Value: value, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &CoordinateError{Field: field, Value: value, Err: errNotFinite}
	}
	if v < -limit || v > limit {
		return 0, &CoordinateError{Field: field, Value: value, Err: errOutOfRange}
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
