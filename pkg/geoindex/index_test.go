package geoindex

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/capital-routes/pkg/models"
)

func testCapitals() []models.Capital {
	return []models.Capital{
		{Name: "Helsinki", CountryName: "Finland", Longitude: "24.933333", Latitude: "60.166667"},
		{Name: "Tallinn", CountryName: "Estonia", Longitude: "24.716667", Latitude: "59.433333"},
		{Name: "Stockholm", CountryName: "Sweden", Longitude: "18.05", Latitude: "59.333333"},
		{Name: "Oslo", CountryName: "Norway", Longitude: "10.75", Latitude: "59.916667"},
		{Name: "Tokyo", CountryName: "Japan", Longitude: "139.75", Latitude: "35.683333"},
		{Name: "Suva", CountryName: "Fiji", Longitude: "178.416667", Latitude: "-18.133333"},
		{Name: "Apia", CountryName: "Samoa", Longitude: "-171.766667", Latitude: "-13.816667"},
		{Name: "N/A", CountryName: "Antarctica", Longitude: "", Latitude: "0"},
	}
}

func names(capitals []models.Capital) []string {
	out := make([]string, len(capitals))
	for i, c := range capitals {
		out[i] = c.Name
	}
	return out
}

func TestNew(t *testing.T) {
	index := New(testCapitals())
	assert.NotNil(t, index)
	assert.Equal(t, 8, index.Len())
	assert.Equal(t, 7, index.SpatialLen()) // the record without longitude is only name-indexed

	empty := New(nil)
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.Nearest(models.Location{Lat: 0, Lon: 0}, 3))
}

func TestLookupRoundTrip(t *testing.T) {
	records := testCapitals()
	index := New(records)

	for _, r := range records {
		got, ok := index.Lookup(r.Name)
		require.True(t, ok, "missing %s", r.Name)
		assert.Equal(t, r, got)
	}
}

func TestLookupNotFound(t *testing.T) {
	index := New(testCapitals())

	_, ok := index.Lookup("Atlantis")
	assert.False(t, ok)

	_, ok = index.Lookup("")
	assert.False(t, ok)
}

func TestDuplicateNames(t *testing.T) {
	records := []models.Capital{
		{Name: "Georgetown", CountryName: "Guyana", Longitude: "-58.15", Latitude: "6.8"},
		{Name: "Georgetown", CountryName: "Cayman Islands", Longitude: "-81.383333", Latitude: "19.3"},
	}
	index := New(records)

	got, ok := index.Lookup("Georgetown")
	require.True(t, ok)
	assert.Equal(t, "Cayman Islands", got.CountryName)
	assert.Equal(t, records, index.Records())
}

func TestRecordsAreCopied(t *testing.T) {
	records := testCapitals()
	index := New(records)

	records[0].Name = "Mutated"
	out := index.Records()
	assert.Equal(t, "Helsinki", out[0].Name)

	out[1].Name = "Mutated"
	assert.Equal(t, "Tallinn", index.Records()[1].Name)
}

func TestReset(t *testing.T) {
	index := New(testCapitals())
	index.Reset([]models.Capital{{Name: "Tokyo", CountryName: "Japan", Longitude: "139.75", Latitude: "35.683333"}})

	assert.Equal(t, 1, index.Len())
	_, ok := index.Lookup("Helsinki")
	assert.False(t, ok)
	assert.Equal(t, []string{"Tokyo"}, names(index.Nearest(models.Location{Lat: 60, Lon: 25}, 3)))
}

func TestNearest(t *testing.T) {
	index := New(testCapitals())

	results := index.Nearest(models.Location{Lat: 60.17, Lon: 24.94}, 3)
	assert.Equal(t, []string{"Helsinki", "Tallinn", "Stockholm"}, names(results))

	assert.Nil(t, index.Nearest(models.Location{Lat: 0, Lon: 0}, 0))
	assert.Len(t, index.Nearest(models.Location{Lat: 0, Lon: 0}, 100), 7)
}

func TestNearestAcrossAntimeridian(t *testing.T) {
	index := New([]models.Capital{
		{Name: "Suva", CountryName: "Fiji", Longitude: "178.4", Latitude: "-18.1"},
		{Name: "East1", CountryName: "East", Longitude: "-170", Latitude: "-18.1"},
		{Name: "East2", CountryName: "East", Longitude: "-165", Latitude: "-18.1"},
		{Name: "East3", CountryName: "East", Longitude: "-160", Latitude: "-18.1"},
	})

	results := index.Nearest(models.Location{Lat: -18.1, Lon: -179.9}, 1)
	assert.Equal(t, []string{"Suva"}, names(results))

	results = index.Nearest(models.Location{Lat: -18.1, Lon: 179.9}, 2)
	assert.Equal(t, []string{"Suva", "East1"}, names(results))
}

func TestWithinRadius(t *testing.T) {
	index := New(testCapitals())
	helsinki := models.Location{Lat: 60.166667, Lon: 24.933333}

	testCases := []struct {
		name     string
		radius   float64
		expected []string
	}{
		{"10km radius", 10, []string{"Helsinki"}},
		{"100km radius", 100, []string{"Helsinki", "Tallinn"}},
		{"500km radius", 500, []string{"Helsinki", "Tallinn", "Stockholm"}},
		{"1000km radius", 1000, []string{"Helsinki", "Tallinn", "Stockholm", "Oslo"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := index.WithinRadius(helsinki, tc.radius)
			assert.NoError(t, err)
			assert.ElementsMatch(t, tc.expected, names(results))
		})
	}

	_, err := index.WithinRadius(helsinki, -1)
	assert.Error(t, err)
}

func TestWithinRadiusAcrossAntimeridian(t *testing.T) {
	index := New(testCapitals())
	suva := models.Location{Lat: -18.133333, Lon: 178.416667}

	results, err := index.WithinRadius(suva, 1200)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Suva", "Apia"}, names(results))
}

func TestWithinBox(t *testing.T) {
	index := New(testCapitals())

	nordics := models.BoundingBox{
		BottomLeft: models.Location{Lat: 59.0, Lon: 15.0},
		TopRight:   models.Location{Lat: 61.0, Lon: 30.0},
	}
	results, err := index.WithinBox(nordics)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Helsinki", "Tallinn", "Stockholm"}, names(results))

	_, err = index.WithinBox(models.BoundingBox{
		BottomLeft: models.Location{Lat: 10, Lon: 10},
		TopRight:   models.Location{Lat: 0, Lon: 0},
	})
	assert.Error(t, err)
}

func TestWithinBoxAcrossAntimeridian(t *testing.T) {
	index := New(testCapitals())

	testCases := []struct {
		name     string
		box      models.BoundingBox
		expected []string
	}{
		{
			"spills west",
			models.BoundingBox{
				BottomLeft: models.Location{Lat: -25, Lon: -190},
				TopRight:   models.Location{Lat: -10, Lon: -170},
			},
			[]string{"Suva", "Apia"},
		},
		{
			"spills east",
			models.BoundingBox{
				BottomLeft: models.Location{Lat: -25, Lon: 175},
				TopRight:   models.Location{Lat: -10, Lon: 190},
			},
			[]string{"Suva", "Apia"},
		},
		{
			"inside range",
			models.BoundingBox{
				BottomLeft: models.Location{Lat: -25, Lon: 175},
				TopRight:   models.Location{Lat: -10, Lon: 180},
			},
			[]string{"Suva"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := index.WithinBox(tc.box)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.expected, names(results))
		})
	}
}

func TestPersistence(t *testing.T) {
	index1 := New(testCapitals())

	tempFile := filepath.Join(t.TempDir(), "capitals.gob")
	require.NoError(t, index1.SaveToFile(tempFile))

	index2, err := Load(tempFile)
	require.NoError(t, err)

	assert.Equal(t, index1.Len(), index2.Len())
	assert.Equal(t, index1.SpatialLen(), index2.SpatialLen())
	assert.Equal(t, index1.Records(), index2.Records())

	_, err = Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestConcurrentQueries(t *testing.T) {
	index := New(generateCapitals(2000))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			center := models.Location{Lat: r.Float64()*160 - 80, Lon: r.Float64()*360 - 180}

			switch r.Intn(3) {
			case 0:
				_, ok := index.Lookup(fmt.Sprintf("capital_%d", r.Intn(2000)))
				assert.True(t, ok)
			case 1:
				_, err := index.WithinRadius(center, r.Float64()*1000+10)
				assert.NoError(t, err)
			case 2:
				assert.NotEmpty(t, index.Nearest(center, r.Intn(10)+1))
			}
		}(int64(i))
	}
	wg.Wait()
}

// Helper function to generate random capitals
func generateCapitals(n int) []models.Capital {
	r := rand.New(rand.NewSource(1))
	out := make([]models.Capital, n)
	for i := 0; i < n; i++ {
		out[i] = models.Capital{
			Name:        fmt.Sprintf("capital_%d", i),
			CountryName: fmt.Sprintf("country_%d", i),
			Longitude:   fmt.Sprintf("%.6f", r.Float64()*360-180),
			Latitude:    fmt.Sprintf("%.6f", r.Float64()*180-90),
		}
	}
	return out
}

func BenchmarkNew(b *testing.B) {
	for _, size := range []int{250, 10000} {
		b.Run(fmt.Sprintf("%d_capitals", size), func(b *testing.B) {
			records := generateCapitals(size)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = New(records)
			}
		})
	}
}

func BenchmarkLookup(b *testing.B) {
	index := New(generateCapitals(250))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = index.Lookup("capital_125")
	}
}

func BenchmarkNearest(b *testing.B) {
	index := New(generateCapitals(10000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = index.Nearest(models.Location{Lat: 37.5, Lon: -112.5}, 10)
	}
}
