package postgis

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/kass/capital-routes/pkg/models"
)

// SRID of every stored geometry
const SRID = 4326

// EncodePoint converts a location to EWKB bytes with SRID 4326
func EncodePoint(loc models.Location) ([]byte, error) {
	p := geom.NewPointFlat(geom.XY, []float64{loc.Lon, loc.Lat}).SetSRID(SRID)
	data, err := ewkb.Marshal(p, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgis: encode point")
	}
	return data, nil
}

// EncodeLineString converts a route path to EWKB bytes with SRID 4326
func EncodeLineString(path orb.LineString) ([]byte, error) {
	if len(path) < 2 {
		return nil, eris.Errorf("postgis: linestring needs 2 points, got %d", len(path))
	}
	flat := make([]float64, 0, 2*len(path))
	for _, p := range path {
		flat = append(flat, p.Lon(), p.Lat())
	}
	ls := geom.NewLineStringFlat(geom.XY, flat).SetSRID(SRID)
	data, err := ewkb.Marshal(ls, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgis: encode linestring")
	}
	return data, nil
}

// DecodePoint parses EWKB point bytes as returned by ST_AsEWKB
func DecodePoint(data []byte) (models.Location, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return models.Location{}, eris.Wrap(err, "postgis: decode point")
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return models.Location{}, eris.Errorf("postgis: expected point, got %T", g)
	}
	return models.Location{Lat: p.Y(), Lon: p.X()}, nil
}
