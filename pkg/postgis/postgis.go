// Package postgis exports capitals and route collections to PostgreSQL with
// PostGIS geometries.
package postgis

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/models"
	"github.com/kass/capital-routes/pkg/routes"
)

// Store writes to a PostGIS database
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open connects to the database at dsn
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgis: open database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "postgis: ping database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return NewStore(db), nil
}

// NewStore wraps an open database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, log: zap.L().Named("postgis")}
}

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS capitals (
		name TEXT NOT NULL,
		country TEXT NOT NULL,
		location GEOMETRY(POINT, 4326) NOT NULL,
		PRIMARY KEY (name, country)
	)`,
	`CREATE TABLE IF NOT EXISTS capital_routes (
		id BIGSERIAL PRIMARY KEY,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		category TEXT NOT NULL,
		color TEXT NOT NULL,
		line_width DOUBLE PRECISION NOT NULL,
		path GEOMETRY(LINESTRING, 4326) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_capital_routes_origin ON capital_routes (origin)`,
	`CREATE INDEX IF NOT EXISTS idx_capitals_location ON capitals USING GIST(location)`,
	`CREATE INDEX IF NOT EXISTS idx_capital_routes_path ON capital_routes USING GIST(path)`,
}

// InitSchema creates the tables and spatial indexes when missing
func (s *Store) InitSchema(ctx context.Context) error {
	for _, query := range schema {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return eris.Wrapf(err, "postgis: execute %q", firstLine(query))
		}
	}
	return nil
}

const upsertCapital = `INSERT INTO capitals (name, country, location)
	VALUES ($1, $2, ST_GeomFromEWKB($3))
	ON CONFLICT (name, country) DO UPDATE SET location = EXCLUDED.location`

// SaveCapitals upserts every capital whose coordinates parse and returns how
// many were written. Skipped records are reported in the error while the
// written ones are still committed.
func (s *Store) SaveCapitals(ctx context.Context, capitals []models.Capital) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "postgis: begin transaction")
	}

	stmt, err := tx.PrepareContext(ctx, upsertCapital)
	if err != nil {
		_ = tx.Rollback()
		return 0, eris.Wrap(err, "postgis: prepare capital insert")
	}
	defer stmt.Close()

	var (
		written int
		skipped error
	)
	for _, c := range capitals {
		loc, err := arc.CapitalLocation(c)
		if err != nil {
			skipped = multierr.Append(skipped, &routes.RecordError{Capital: c.Name, Role: routes.RoleMarker, Err: err})
			continue
		}
		data, err := EncodePoint(loc)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, c.Name, c.CountryName, data); err != nil {
			_ = tx.Rollback()
			return 0, eris.Wrapf(err, "postgis: insert capital %s", c.Name)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "postgis: commit capitals")
	}

	s.log.Info("capitals exported", zap.Int("written", written), zap.Int("skipped", len(multierr.Errors(skipped))))
	return written, skipped
}

const insertRoute = `INSERT INTO capital_routes
	(origin, destination, distance_km, category, color, line_width, path)
	VALUES ($1, $2, $3, $4, $5, $6, ST_GeomFromEWKB($7))`

// SaveRoutes replaces every stored route of the collection's origin with the
// routes of coll, in a single transaction
func (s *Store) SaveRoutes(ctx context.Context, coll *routes.Collection) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "postgis: begin transaction")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM capital_routes WHERE origin = $1`, coll.Origin); err != nil {
		_ = tx.Rollback()
		return eris.Wrapf(err, "postgis: clear routes of %s", coll.Origin)
	}

	stmt, err := tx.PrepareContext(ctx, insertRoute)
	if err != nil {
		_ = tx.Rollback()
		return eris.Wrap(err, "postgis: prepare route insert")
	}
	defer stmt.Close()

	for _, r := range coll.Routes {
		data, err := EncodeLineString(r.Path)
		if err != nil {
			_ = tx.Rollback()
			return eris.Wrapf(err, "postgis: route %s - %s", r.Origin, r.Destination)
		}
		_, err = stmt.ExecContext(ctx,
			r.Origin, r.Destination, r.DistanceKm,
			string(r.Category), r.Color, r.LineWidth, data,
		)
		if err != nil {
			_ = tx.Rollback()
			return eris.Wrapf(err, "postgis: insert route %s - %s", r.Origin, r.Destination)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "postgis: commit routes")
	}

	s.log.Info("routes exported",
		zap.String("origin", coll.Origin),
		zap.Int("routes", coll.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// StoredCapital is a capital row read back from the database
type StoredCapital struct {
	Name     string
	Country  string
	Location models.Location
}

// QueryBox returns the stored capitals inside box
func (s *Store) QueryBox(ctx context.Context, box models.BoundingBox) ([]StoredCapital, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, country, ST_AsEWKB(location)
		FROM capitals
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY name`,
		box.BottomLeft.Lon, box.BottomLeft.Lat,
		box.TopRight.Lon, box.TopRight.Lat)
	if err != nil {
		return nil, eris.Wrap(err, "postgis: query box")
	}
	defer rows.Close()

	var results []StoredCapital
	for rows.Next() {
		var (
			c    StoredCapital
			data []byte
		)
		if err := rows.Scan(&c.Name, &c.Country, &data); err != nil {
			return nil, eris.Wrap(err, "postgis: scan capital")
		}
		if c.Location, err = DecodePoint(data); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgis: iterate capitals")
	}
	return results, nil
}

// CountRoutes returns the number of stored routes leaving origin
func (s *Store) CountRoutes(ctx context.Context, origin string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM capital_routes WHERE origin = $1`, origin).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "postgis: count routes")
	}
	return count, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func firstLine(query string) string {
	for i, r := range query {
		if r == '\n' {
			return query[:i]
		}
	}
	return query
}
