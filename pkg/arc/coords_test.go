package arc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/capital-routes/pkg/models"
)

func TestParseLocation(t *testing.T) {
	testCases := []struct {
		name      string
		lon, lat  string
		expected  models.Location
		failField string
	}{
		{name: "decimal strings", lon: "-2.100000", lat: "49.18333333333333", expected: models.Location{Lat: 49.18333333333333, Lon: -2.1}},
		{name: "surrounding spaces", lon: " 24.9 ", lat: "60.2\n", expected: models.Location{Lat: 60.2, Lon: 24.9}},
		{name: "integers", lon: "0", lat: "-90", expected: models.Location{Lat: -90, Lon: 0}},
		{name: "empty longitude", lon: "", lat: "10", failField: FieldLongitude},
		{name: "non numeric latitude", lon: "10", lat: "north", failField: FieldLatitude},
		{name: "NaN longitude", lon: "NaN", lat: "10", failField: FieldLongitude},
		{name: "infinite latitude", lon: "10", lat: "Inf", failField: FieldLatitude},
		{name: "latitude out of range", lon: "10", lat: "91", failField: FieldLatitude},
		{name: "longitude out of range", lon: "-180.5", lat: "0", failField: FieldLongitude},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			loc, err := ParseLocation(tc.lon, tc.lat)
			if tc.failField == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, loc)
				return
			}

			var coordErr *CoordinateError
			require.True(t, errors.As(err, &coordErr), "expected CoordinateError, got %v", err)
			assert.Equal(t, tc.failField, coordErr.Field)
			assert.Contains(t, err.Error(), tc.failField)
		})
	}
}

func TestCapitalLocation(t *testing.T) {
	loc, err := CapitalLocation(models.Capital{Name: "Amman", Longitude: "35.933333", Latitude: "31.95"})
	require.NoError(t, err)
	assert.Equal(t, models.Location{Lat: 31.95, Lon: 35.933333}, loc)

	_, err = CapitalLocation(models.Capital{Name: "Nowhere", Longitude: "x", Latitude: "0"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(models.Location{Lat: 45, Lon: 190}))
	assert.Error(t, Validate(models.Location{Lat: -90.1, Lon: 0}))
}
