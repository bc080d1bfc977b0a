package style

import "fmt"

// LegendEntry describes one category for a map legend
type LegendEntry struct {
	Category  Category `json:"category"`
	MinKm     float64  `json:"minKm"`
	MaxKm     float64  `json:"maxKm,omitempty"` // zero means unbounded
	Color     string   `json:"color"`
	LineWidth float64  `json:"lineWidth"`
}

// Label renders the distance range of the entry, e.g. "3000 - 5000 km"
func (e LegendEntry) Label() string {
	if e.MaxKm == 0 {
		return fmt.Sprintf("> %.0f km", e.MinKm)
	}
	return fmt.Sprintf("%.0f - %.0f km", e.MinKm, e.MaxKm)
}

// Legend returns the categories in descending order with their distance
// ranges and styles under theme
func Legend(t Theme) []LegendEntry {
	entries := make([]LegendEntry, 0, len(Categories))
	for i, c := range Categories {
		s, _ := For(c, t)
		entry := LegendEntry{
			Category:  c,
			MinKm:     minDistanceKm[c],
			Color:     s.Color,
			LineWidth: s.LineWidth,
		}
		if i > 0 {
			entry.MaxKm = minDistanceKm[Categories[i-1]]
		}
		entries = append(entries, entry)
	}
	return entries
}
