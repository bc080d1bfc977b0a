package postgis

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/capital-routes/pkg/models"
	"github.com/kass/capital-routes/pkg/routes"
	"github.com/kass/capital-routes/pkg/style"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func testCollection() *routes.Collection {
	return &routes.Collection{
		Origin: "Helsinki",
		Theme:  style.Dark,
		Routes: []routes.Route{
			{
				Origin:      "Helsinki",
				Destination: "Tallinn",
				Path:        orb.LineString{{24.9, 60.2}, {24.8, 59.8}, {24.7, 59.4}},
				DistanceKm:  82.5,
				Category:    style.Short,
				Style:       style.Style{Color: "#c41497", LineWidth: 2},
			},
			{
				Origin:      "Helsinki",
				Destination: "Tokyo",
				Path:        orb.LineString{{24.9, 60.2}, {90, 70}, {139.7, 35.7}},
				DistanceKm:  7815,
				Category:    style.UpperMedium,
				Style:       style.Style{Color: "#486af3", LineWidth: 1},
			},
		},
	}
}

func TestEncodeDecodePoint(t *testing.T) {
	loc := models.Location{Lat: 60.2, Lon: 24.9}
	data, err := EncodePoint(loc)
	require.NoError(t, err)

	got, err := DecodePoint(data)
	require.NoError(t, err)
	assert.Equal(t, loc, got)

	_, err = DecodePoint([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestEncodeLineString(t *testing.T) {
	data, err := EncodeLineString(orb.LineString{{0, 0}, {1, 1}})
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = DecodePoint(data)
	assert.Error(t, err, "a linestring is not a point")

	_, err = EncodeLineString(orb.LineString{{0, 0}})
	assert.Error(t, err)
}

func TestInitSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS postgis").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS capitals").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS capital_routes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_capital_routes_origin").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_capitals_location").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_capital_routes_path").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchemaError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE EXTENSION").WillReturnError(errors.New("permission denied"))

	err := store.InitSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRoutes(t *testing.T) {
	store, mock := newMockStore(t)
	coll := testCollection()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM capital_routes WHERE origin").
		WithArgs("Helsinki").
		WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare("INSERT INTO capital_routes")
	prep.ExpectExec().
		WithArgs("Helsinki", "Tallinn", 82.5, "SHORT", "#c41497", 2.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("Helsinki", "Tokyo", 7815.0, "UPPER_MEDIUM", "#486af3", 1.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveRoutes(context.Background(), coll))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRoutesRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM capital_routes").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO capital_routes")
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.SaveRoutes(context.Background(), testCollection())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tallinn")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCapitals(t *testing.T) {
	store, mock := newMockStore(t)
	capitals := []models.Capital{
		{Name: "Helsinki", CountryName: "Finland", Longitude: "24.9", Latitude: "60.2"},
		{Name: "Nowhere", CountryName: "None", Longitude: "", Latitude: "1"},
		{Name: "Tokyo", CountryName: "Japan", Longitude: "139.7", Latitude: "35.7"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO capitals")
	prep.ExpectExec().WithArgs("Helsinki", "Finland", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("Tokyo", "Japan", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	written, err := store.SaveCapitals(context.Background(), capitals)
	assert.Equal(t, 2, written)

	var rerr *routes.RecordError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "Nowhere", rerr.Capital)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryBox(t *testing.T) {
	store, mock := newMockStore(t)

	helsinki, err := EncodePoint(models.Location{Lat: 60.2, Lon: 24.9})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"name", "country", "location"}).
		AddRow("Helsinki", "Finland", helsinki)
	mock.ExpectQuery("SELECT name, country, ST_AsEWKB").
		WithArgs(15.0, 59.0, 30.0, 61.0).
		WillReturnRows(rows)

	got, err := store.QueryBox(context.Background(), models.BoundingBox{
		BottomLeft: models.Location{Lat: 59, Lon: 15},
		TopRight:   models.Location{Lat: 61, Lon: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, []StoredCapital{
		{Name: "Helsinki", Country: "Finland", Location: models.Location{Lat: 60.2, Lon: 24.9}},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRoutes(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("Helsinki").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(244)))

	count, err := store.CountRoutes(context.Background(), "Helsinki")
	require.NoError(t, err)
	assert.Equal(t, int64(244), count)
}

func TestClose(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectClose()
	assert.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
