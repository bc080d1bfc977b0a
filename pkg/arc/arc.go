// Package arc computes great-circle paths and geodesic distances between
// geographic coordinates.
package arc

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/kass/capital-routes/pkg/models"
)

const (
	// EarthRadiusKm is the mean Earth radius used for all distances
	EarthRadiusKm = 6371.0

	// DefaultPointCount is the number of points generated along each arc
	DefaultPointCount = 500

	// MinPointCount is the smallest point count that still describes a line
	MinPointCount = 2

	coincidentEpsilon = 1e-12 // radians
	orthogonalEpsilon = 1e-9
)

// ErrPointCount is returned when fewer than MinPointCount points are requested
var ErrPointCount = eris.New("arc: point count must be at least 2")

// Geometry is a great-circle path plus its length
type Geometry struct {
	Path       orb.LineString
	DistanceKm float64
}

// Generator computes arcs with a point count fixed for the whole run
type Generator struct {
	pointCount int
}

// NewGenerator returns a generator producing pointCount points per arc
func NewGenerator(pointCount int) (*Generator, error) {
	if pointCount < MinPointCount {
		return nil, ErrPointCount
	}
	return &Generator{pointCount: pointCount}, nil
}

// PointCount returns the number of points per arc
func (g *Generator) PointCount() int {
	return g.pointCount
}

// Arc computes the great-circle geometry between origin and dest
func (g *Generator) Arc(origin, dest models.Location) (Geometry, error) {
	return Compute(origin, dest, g.pointCount)
}

// Compute interpolates pointCount points along the great circle from origin
// to dest. The first point is origin and the last is dest. Coincident inputs
// yield pointCount copies of origin. Antipodal inputs have no unique
// geodesic; the path heading north from origin is used (or towards
// longitude 0 when origin is a pole).
func Compute(origin, dest models.Location, pointCount int) (Geometry, error) {
	if pointCount < MinPointCount {
		return Geometry{}, ErrPointCount
	}
	if err := Validate(origin); err != nil {
		return Geometry{}, eris.Wrap(err, "arc: origin")
	}
	if err := Validate(dest); err != nil {
		return Geometry{}, eris.Wrap(err, "arc: destination")
	}

	start := orb.Point{WrapLongitude(origin.Lon), origin.Lat}
	end := orb.Point{WrapLongitude(dest.Lon), dest.Lat}
	path := make(orb.LineString, pointCount)

	a := toVec(origin)
	b := toVec(dest)
	omega := math.Atan2(a.cross(b).norm(), a.dot(b))

	if omega < coincidentEpsilon {
		for i := range path {
			path[i] = start
		}
		return Geometry{Path: path, DistanceKm: 0}, nil
	}

	// u is the unit tangent at a pointing along the great circle towards b
	u := b.sub(a.scale(a.dot(b)))
	if omega > math.Pi/2 && u.norm() < orthogonalEpsilon {
		u = northOf(a)
	}
	u = u.scale(1 / u.norm())

	last := pointCount - 1
	for i := 1; i < last; i++ {
		t := omega * float64(i) / float64(last)
		path[i] = a.scale(math.Cos(t)).add(u.scale(math.Sin(t))).point()
	}
	path[0] = start
	path[last] = end

	return Geometry{Path: path, DistanceKm: Distance(origin, dest)}, nil
}

// Distance calculates the Haversine distance between two points in kilometers
func Distance(a, b models.Location) float64 {
	lat1Rad := a.Lat * math.Pi / 180.0
	lon1Rad := a.Lon * math.Pi / 180.0
	lat2Rad := b.Lat * math.Pi / 180.0
	lon2Rad := b.Lon * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push h just past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// InitialBearing returns the forward azimuth from a to b in degrees [0, 360)
func InitialBearing(a, b models.Location) float64 {
	phi1 := a.Lat * math.Pi / 180.0
	phi2 := b.Lat * math.Pi / 180.0
	dLon := (b.Lon - a.Lon) * math.Pi / 180.0

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180.0 / math.Pi
	return math.Mod(deg+360, 360)
}

// WrapLongitude maps any longitude into [-180, 180]
func WrapLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	return math.Remainder(lon, 360)
}

type vec3 [3]float64

func toVec(loc models.Location) vec3 {
	phi := loc.Lat * math.Pi / 180.0
	lambda := loc.Lon * math.Pi / 180.0
	return vec3{
		math.Cos(phi) * math.Cos(lambda),
		math.Cos(phi) * math.Sin(lambda),
		math.Sin(phi),
	}
}

func (v vec3) point() orb.Point {
	lat := math.Atan2(v[2], math.Hypot(v[0], v[1])) * 180.0 / math.Pi
	lon := math.Atan2(v[1], v[0]) * 180.0 / math.Pi
	return orb.Point{lon, lat}
}

func (v vec3) dot(w vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

func (v vec3) cross(w vec3) vec3 {
	return vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

func (v vec3) add(w vec3) vec3 {
	return vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

func (v vec3) sub(w vec3) vec3 {
	return vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

func (v vec3) scale(s float64) vec3 {
	return vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (v vec3) norm() float64 {
	return math.Sqrt(v.dot(v))
}

// northOf returns a tangent at a pointing to the north pole, or towards
// longitude 0 when a is itself a pole
func northOf(a vec3) vec3 {
	ref := vec3{0, 0, 1}
	t := ref.sub(a.scale(a.dot(ref)))
	if t.norm() < orthogonalEpsilon {
		ref = vec3{1, 0, 0}
		t = ref.sub(a.scale(a.dot(ref)))
	}
	return t
}
