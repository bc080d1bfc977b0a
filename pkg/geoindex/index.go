// Package geoindex provides the name-keyed capital lookup and an R-Tree over
// the capitals whose coordinates parse, for nearest and area queries.
package geoindex

import (
	"math"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/models"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialCapital wraps a capital to implement rtreego.Spatial
type spatialCapital struct {
	capital  models.Capital
	location models.Location
	rect     *rtreego.Rect
}

var _ rtreego.Spatial = (*spatialCapital)(nil)

func (sc *spatialCapital) Bounds() *rtreego.Rect {
	return sc.rect
}

// Index is a read-mostly capital index. Lookups by name are O(1); spatial
// queries go through the R-Tree.
type Index struct {
	mu      sync.RWMutex
	records []models.Capital
	byName  map[string]models.Capital
	tree    *rtreego.Rtree
	spatial int
	log     *zap.Logger
}

// New builds an index over records. Every record is reachable by name, last
// one winning on duplicates; records whose coordinates do not parse are left
// out of the spatial tree only.
func New(records []models.Capital) *Index {
	g := &Index{log: zap.L().Named("geoindex")}
	g.Reset(records)
	return g
}

// Reset replaces the whole content of the index
func (g *Index) Reset(records []models.Capital) {
	byName := make(map[string]models.Capital, len(records))
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	spatial := 0

	for _, c := range records {
		byName[c.Name] = c

		loc, err := arc.CapitalLocation(c)
		if err != nil {
			g.log.Debug("capital left out of spatial index", zap.String("capital", c.Name), zap.Error(err))
			continue
		}
		p := rtreego.Point{loc.Lat, loc.Lon}
		tree.Insert(&spatialCapital{capital: c, location: loc, rect: p.ToRect(tolerance)})
		spatial++
	}

	owned := make([]models.Capital, len(records))
	copy(owned, records)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = owned
	g.byName = byName
	g.tree = tree
	g.spatial = spatial
}

// Lookup returns the capital with the given name
func (g *Index) Lookup(name string) (models.Capital, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, ok := g.byName[name]
	return c, ok
}

// Records returns every source record in source order
func (g *Index) Records() []models.Capital {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]models.Capital, len(g.records))
	copy(out, g.records)
	return out
}

// Len returns the number of source records
func (g *Index) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.records)
}

// SpatialLen returns the number of capitals in the spatial tree
func (g *Index) SpatialLen() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.spatial
}

// Nearest returns up to k capitals closest to loc by great-circle distance
func (g *Index) Nearest(loc models.Location, k int) []models.Capital {
	if k <= 0 {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	// planar neighbours are only candidates: degrees of longitude shrink
	// towards the poles and the tree does not wrap at the antimeridian, so
	// ask for more, also from the query shifted by a full turn, and re-rank
	seen := make(map[*spatialCapital]struct{})
	var candidates []*spatialCapital
	for _, shift := range []float64{0, 360, -360} {
		results := g.tree.NearestNeighbors(k*2, rtreego.Point{loc.Lat, loc.Lon + shift})
		for _, r := range results {
			sc, ok := r.(*spatialCapital)
			if !ok || sc == nil {
				continue
			}
			if _, dup := seen[sc]; dup {
				continue
			}
			seen[sc] = struct{}{}
			candidates = append(candidates, sc)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return arc.Distance(loc, candidates[i].location) < arc.Distance(loc, candidates[j].location)
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]models.Capital, len(candidates))
	for i, sc := range candidates {
		out[i] = sc.capital
	}
	return out
}

// WithinRadius returns the capitals within radiusKm of center
func (g *Index) WithinRadius(center models.Location, radiusKm float64) ([]models.Capital, error) {
	// Convert radius to degrees of latitude, widened for longitude
	if radiusKm < 0 {
		return nil, eris.Errorf("geoindex: negative radius %.2f", radiusKm)
	}
	deg := math.Max(tolerance, (radiusKm/arc.EarthRadiusKm)*(180/math.Pi))
	lonDeg := 180.0
	if c := math.Cos(center.Lat * math.Pi / 180); c > 1e-6 {
		lonDeg = math.Min(180, deg/c)
	}

	box := models.BoundingBox{
		BottomLeft: models.Location{Lat: math.Max(-90, center.Lat-deg), Lon: center.Lon - lonDeg},
		TopRight:   models.Location{Lat: math.Min(90, center.Lat+deg), Lon: center.Lon + lonDeg},
	}
	candidates, err := g.searchWrapped(box)
	if err != nil {
		return nil, err
	}

	out := make([]models.Capital, 0, len(candidates))
	for _, sc := range candidates {
		if arc.Distance(center, sc.location) <= radiusKm {
			out = append(out, sc.capital)
		}
	}
	return out, nil
}

// WithinBox returns the capitals inside box. Longitudes beyond +/-180 select
// the capitals on the other side of the antimeridian.
func (g *Index) WithinBox(box models.BoundingBox) ([]models.Capital, error) {
	candidates, err := g.searchWrapped(box)
	if err != nil {
		return nil, err
	}

	out := make([]models.Capital, 0, len(candidates))
	for _, sc := range candidates {
		if containsWrapped(box, sc.location) {
			out = append(out, sc.capital)
		}
	}
	return out, nil
}

func containsWrapped(box models.BoundingBox, loc models.Location) bool {
	for _, shift := range []float64{0, 360, -360} {
		if box.Contains(models.Location{Lat: loc.Lat, Lon: loc.Lon + shift}) {
			return true
		}
	}
	return false
}

// searchWrapped also searches the part of box that spills over the
// antimeridian
func (g *Index) searchWrapped(box models.BoundingBox) ([]*spatialCapital, error) {
	boxes := []models.BoundingBox{box}
	if box.BottomLeft.Lon < -180 {
		boxes = append(boxes, shiftLon(box, 360))
	}
	if box.TopRight.Lon > 180 {
		boxes = append(boxes, shiftLon(box, -360))
	}

	seen := make(map[*spatialCapital]struct{})
	var out []*spatialCapital
	for _, b := range boxes {
		found, err := g.search(b)
		if err != nil {
			return nil, err
		}
		for _, sc := range found {
			if _, dup := seen[sc]; dup {
				continue
			}
			seen[sc] = struct{}{}
			out = append(out, sc)
		}
	}
	return out, nil
}

func shiftLon(box models.BoundingBox, by float64) models.BoundingBox {
	box.BottomLeft.Lon += by
	box.TopRight.Lon += by
	return box
}

func (g *Index) search(box models.BoundingBox) ([]*spatialCapital, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	bottomLeft := rtreego.Point{box.BottomLeft.Lat, box.BottomLeft.Lon}
	size := []float64{
		box.TopRight.Lat - box.BottomLeft.Lat,
		box.TopRight.Lon - box.BottomLeft.Lon,
	}
	bounds, err := rtreego.NewRect(bottomLeft, size)
	if err != nil {
		return nil, eris.Wrap(err, "geoindex: invalid bounding box")
	}

	results := g.tree.SearchIntersect(bounds)
	out := make([]*spatialCapital, 0, len(results))
	for _, r := range results {
		if sc, ok := r.(*spatialCapital); ok && sc != nil {
			out = append(out, sc)
		}
	}
	return out, nil
}
