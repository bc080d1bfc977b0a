// Package routes assembles the styled great-circle routes from a selected
// origin capital to every other capital.
//
// A Dataset is not safe for concurrent use; callers serialize SetOrigin,
// Restyle and RoutesFromOrigin.
package routes

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/geoindex"
	"github.com/kass/capital-routes/pkg/models"
	"github.com/kass/capital-routes/pkg/style"
)

// DefaultOrigin is the capital selected when none is configured
const DefaultOrigin = "Helsinki"

// Roles reported in RecordError
const (
	RoleOrigin      = "origin"
	RoleDestination = "destination"
	RoleMarker      = "marker"
)

// RecordError attributes a coordinate failure to a capital
type RecordError struct {
	Capital string
	Role    string
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s capital %q: %v", e.Role, e.Capital, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Option configures a Dataset
type Option func(*Dataset)

// WithTheme sets the initial theme
func WithTheme(t style.Theme) Option {
	return func(d *Dataset) {
		d.theme = t
	}
}

// WithOrigin sets the initial origin capital
func WithOrigin(name string) Option {
	return func(d *Dataset) {
		d.origin = name
	}
}

// WithPointCount sets the number of points of every arc
func WithPointCount(n int) Option {
	return func(d *Dataset) {
		d.pointCount = n
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(d *Dataset) {
		d.log = l
	}
}

// Dataset owns the capital index, the selected origin and theme, and the
// last computed route collection
type Dataset struct {
	index      *geoindex.Index
	generator  *arc.Generator
	pointCount int
	origin     string
	theme      style.Theme
	current    *Collection
	currentErr error
	log        *zap.Logger
}

// New builds a dataset over records
func New(records []models.Capital, opts ...Option) (*Dataset, error) {
	return NewFromIndex(geoindex.New(records), opts...)
}

// NewFromIndex builds a dataset over an existing index
func NewFromIndex(index *geoindex.Index, opts ...Option) (*Dataset, error) {
	d := &Dataset{
		index:      index,
		pointCount: arc.DefaultPointCount,
		origin:     DefaultOrigin,
		theme:      style.DefaultTheme,
		log:        zap.L(),
	}
	for _, opt := range opts {
		opt(d)
	}

	gen, err := arc.NewGenerator(d.pointCount)
	if err != nil {
		return nil, err
	}
	d.generator = gen
	d.theme = d.resolveTheme(d.theme)
	return d, nil
}

// Index returns the capital index
func (d *Dataset) Index() *geoindex.Index {
	return d.index
}

// Reload replaces every record and drops the computed routes
func (d *Dataset) Reload(records []models.Capital) {
	d.index.Reset(records)
	d.current, d.currentErr = nil, nil
}

// Origin returns the selected origin capital name
func (d *Dataset) Origin() string {
	return d.origin
}

// Theme returns the theme routes are styled with
func (d *Dataset) Theme() style.Theme {
	return d.theme
}

// PointCount returns the number of points of every arc
func (d *Dataset) PointCount() int {
	return d.generator.PointCount()
}

// SetOrigin selects a new origin and reports whether it changed. The
// computed routes stay untouched when it did not.
func (d *Dataset) SetOrigin(name string) bool {
	if name == d.origin {
		return false
	}
	d.origin = name
	d.current, d.currentErr = nil, nil
	return true
}

// OriginLocation returns the coordinates of the selected origin
func (d *Dataset) OriginLocation() (models.Location, bool) {
	c, ok := d.index.Lookup(d.origin)
	if !ok {
		return models.Location{}, false
	}
	loc, err := arc.CapitalLocation(c)
	if err != nil {
		return models.Location{}, false
	}
	return loc, true
}

// RoutesFromOrigin computes a fresh route for every capital other than the
// origin. An unknown origin yields an empty collection and no error.
// Capitals with malformed coordinates are skipped and reported as
// RecordErrors combined in the returned error, next to the routes that
// could be built.
func (d *Dataset) RoutesFromOrigin() (*Collection, error) {
	coll := &Collection{Origin: d.origin, Theme: d.theme, Routes: []Route{}}
	d.current, d.currentErr = coll, nil

	origin, ok := d.index.Lookup(d.origin)
	if !ok {
		d.log.Warn("origin capital not found", zap.String("origin", d.origin))
		return coll, nil
	}

	from, err := arc.CapitalLocation(origin)
	if err != nil {
		d.currentErr = &RecordError{Capital: origin.Name, Role: RoleOrigin, Err: err}
		return coll, d.currentErr
	}

	records := d.index.Records()
	coll.Routes = make([]Route, 0, len(records))

	var errs error
	for _, dest := range records {
		if dest.Name == d.origin {
			continue
		}
		to, err := arc.CapitalLocation(dest)
		if err != nil {
			errs = multierr.Append(errs, &RecordError{Capital: dest.Name, Role: RoleDestination, Err: err})
			continue
		}
		g, err := d.generator.Arc(from, to)
		if err != nil {
			errs = multierr.Append(errs, &RecordError{Capital: dest.Name, Role: RoleDestination, Err: err})
			continue
		}
		coll.Routes = append(coll.Routes, newRoute(origin.Name, dest.Name, g, d.theme))
	}

	if errs != nil {
		d.log.Warn("capitals skipped",
			zap.String("origin", d.origin),
			zap.Int("skipped", len(multierr.Errors(errs))),
			zap.Error(errs),
		)
	}
	d.log.Debug("routes computed",
		zap.String("origin", d.origin),
		zap.Int("routes", coll.Len()),
		zap.Int("points", d.generator.PointCount()),
	)
	d.currentErr = errs
	return coll, errs
}

// Collection returns the last computed collection together with the record
// errors of that computation, computing it first when the origin changed
// since
func (d *Dataset) Collection() (*Collection, error) {
	if d.current != nil {
		return d.current, d.currentErr
	}
	return d.RoutesFromOrigin()
}

// Restyle switches the theme and re-derives category, color and line width
// of the current routes from their stored distances. Geometry is never
// recomputed.
func (d *Dataset) Restyle(t style.Theme) {
	d.theme = d.resolveTheme(t)
	if d.current != nil {
		d.current.restyle(d.theme)
	}
}

// CapitalPoints renders every capital as a Point feature with name and
// description properties. Capitals with malformed coordinates are left out
// and reported in the returned error.
func (d *Dataset) CapitalPoints() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()

	var errs error
	for _, c := range d.index.Records() {
		loc, err := arc.CapitalLocation(c)
		if err != nil {
			errs = multierr.Append(errs, &RecordError{Capital: c.Name, Role: RoleMarker, Err: err})
			continue
		}
		f := geojson.NewFeature(orb.Point{loc.Lon, loc.Lat})
		f.Properties["name"] = c.Name
		f.Properties["description"] = "Capital of " + c.CountryName
		fc.Append(f)
	}
	return fc, errs
}

func (d *Dataset) resolveTheme(t style.Theme) style.Theme {
	resolved, ok := t.Resolve()
	if !ok {
		d.log.Warn("unknown theme, using default",
			zap.String("theme", string(t)),
			zap.String("default", string(resolved)),
		)
	}
	return resolved
}
