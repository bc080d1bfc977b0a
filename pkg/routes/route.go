package routes

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/style"
)

// Route is one styled great-circle line from the origin to a destination
type Route struct {
	Origin      string
	Destination string
	Path        orb.LineString
	DistanceKm  float64
	Category    style.Category
	style.Style
}

func newRoute(origin, destination string, g arc.Geometry, theme style.Theme) Route {
	r := Route{
		Origin:      origin,
		Destination: destination,
		Path:        g.Path,
		DistanceKm:  g.DistanceKm,
	}
	r.restyle(theme)
	return r
}

// restyle derives category and style from the stored distance only
func (r *Route) restyle(theme style.Theme) {
	r.Category = style.Classify(r.DistanceKm)
	r.Style, _ = style.For(r.Category, theme)
}

// Collection holds the routes from one origin to every other capital, in
// dataset order
type Collection struct {
	Origin string
	Theme  style.Theme
	Routes []Route
}

// Len returns the number of routes
func (c *Collection) Len() int {
	return len(c.Routes)
}

// Find returns the route to destination
func (c *Collection) Find(destination string) (Route, bool) {
	for _, r := range c.Routes {
		if r.Destination == destination {
			return r, true
		}
	}
	return Route{}, false
}

// CountByCategory tallies the routes per distance category
func (c *Collection) CountByCategory() map[style.Category]int {
	counts := make(map[style.Category]int, len(style.Categories))
	for _, r := range c.Routes {
		counts[r.Category]++
	}
	return counts
}

func (c *Collection) restyle(theme style.Theme) {
	c.Theme = theme
	for i := range c.Routes {
		c.Routes[i].restyle(theme)
	}
}

// FeatureOption adjusts the GeoJSON rendering of a collection
type FeatureOption func(*featureConfig)

type featureConfig struct {
	highlight style.Category
}

// WithHighlight adds an opacity property that dims every category but c
func WithHighlight(c style.Category) FeatureOption {
	return func(fc *featureConfig) {
		fc.highlight = c
	}
}

// FeatureCollection renders the routes as LineString features carrying
// origin, destination, distance, category, color and lineWidth properties
func (c *Collection) FeatureCollection(opts ...FeatureOption) *geojson.FeatureCollection {
	var cfg featureConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	fc := geojson.NewFeatureCollection()
	for i, r := range c.Routes {
		f := geojson.NewFeature(r.Path)
		f.ID = i
		f.Properties["origin"] = r.Origin
		f.Properties["destination"] = r.Destination
		f.Properties["distance"] = r.DistanceKm
		f.Properties["category"] = string(r.Category)
		f.Properties["color"] = r.Color
		f.Properties["lineWidth"] = r.LineWidth
		if cfg.highlight != "" {
			f.Properties["opacity"] = style.Opacity(r.Category, cfg.highlight)
		}
		fc.Append(f)
	}
	return fc
}

// Summary is a one-line description of a route, e.g. for popups
func (r Route) Summary() string {
	return fmt.Sprintf("Distance %s - %s: %.0f km", r.Origin, r.Destination, r.DistanceKm)
}
