package models

// Location represents a geographic location with latitude and longitude
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Location
	TopRight   Location
}

// Contains reports whether loc lies inside the box, edges included
func (b BoundingBox) Contains(loc Location) bool {
	return loc.Lat >= b.BottomLeft.Lat && loc.Lat <= b.TopRight.Lat &&
		loc.Lon >= b.BottomLeft.Lon && loc.Lon <= b.TopRight.Lon
}

// RawCapital is one entry of the capital dataset as served upstream.
// Coordinates arrive as decimal strings.
type RawCapital struct {
	CountryName      string `json:"CountryName"`
	CapitalName      string `json:"CapitalName"`
	CapitalLatitude  string `json:"CapitalLatitude"`
	CapitalLongitude string `json:"CapitalLongitude"`
	CountryCode      string `json:"CountryCode,omitempty"`
	ContinentName    string `json:"ContinentName,omitempty"`
}

// Capital represents a capital city record. Longitude and Latitude keep the
// source text; they are parsed only when geometry is computed.
type Capital struct {
	Name        string `json:"name"`
	CountryName string `json:"country"`
	Longitude   string `json:"longitude"`
	Latitude    string `json:"latitude"`
}

// Capital converts the wire shape into a record
func (r RawCapital) Capital() Capital {
	return Capital{
		Name:        r.CapitalName,
		CountryName: r.CountryName,
		Longitude:   r.CapitalLongitude,
		Latitude:    r.CapitalLatitude,
	}
}

// CapitalsFromRaw converts a decoded dataset, preserving order
func CapitalsFromRaw(raw []RawCapital) []Capital {
	out := make([]Capital, len(raw))
	for i, r := range raw {
		out[i] = r.Capital()
	}
	return out
}
