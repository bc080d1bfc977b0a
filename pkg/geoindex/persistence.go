package geoindex

import (
	"encoding/gob"
	"os"

	"github.com/rotisserie/eris"

	"github.com/kass/capital-routes/pkg/models"
)

// IndexData represents the serializable form of the index
type IndexData struct {
	Records []models.Capital `json:"records"`
	Count   int              `json:"count"`
}

// SaveToFile saves the source records to a binary snapshot file
func (g *Index) SaveToFile(filename string) error {
	data := IndexData{Records: g.Records()}
	data.Count = len(data.Records)

	file, err := os.Create(filename)
	if err != nil {
		return eris.Wrapf(err, "geoindex: create snapshot %s", filename)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return eris.Wrap(err, "geoindex: encode snapshot")
	}
	return file.Sync()
}

// LoadFromFile rebuilds the index from a snapshot written by SaveToFile
func (g *Index) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return eris.Wrapf(err, "geoindex: open snapshot %s", filename)
	}
	defer file.Close()

	var data IndexData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return eris.Wrap(err, "geoindex: decode snapshot")
	}
	if data.Count != len(data.Records) {
		return eris.Errorf("geoindex: snapshot holds %d records, header says %d", len(data.Records), data.Count)
	}

	g.Reset(data.Records)
	return nil
}

// Load reads a snapshot into a new index
func Load(filename string) (*Index, error) {
	g := New(nil)
	if err := g.LoadFromFile(filename); err != nil {
		return nil, err
	}
	return g, nil
}
