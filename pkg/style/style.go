// Package style maps route distances to categories and the colors and line
// widths used to draw them under each map theme.
package style

import (
	"math"
	"strings"
)

// Category is a bucket of geodesic distance
type Category string

// Distance categories
const (
	Long        Category = "LONG"
	UpperMedium Category = "UPPER_MEDIUM"
	LowerMedium Category = "LOWER_MEDIUM"
	Short       Category = "SHORT"
)

// Theme identifies a map theme
type Theme string

// Known themes
const (
	Light Theme = "light"
	Dark  Theme = "dark"

	// DefaultTheme is used when no theme or an unknown theme is given
	DefaultTheme = Dark
)

// Map style ids of the themes, as understood by the tile provider
const (
	LightMapStyle = "mapbox/light-v10"
	DarkMapStyle  = "anhnguyen6281/ck7ir19ij3qoo1inr3qhnowy5"
)

// Line opacities for category highlighting
const (
	DefaultOpacity       = 1.0
	UnhighlightedOpacity = 0.1
)

// Style is the visual attributes of a route line
type Style struct {
	Color     string  `json:"color"`
	LineWidth float64 `json:"lineWidth"`
}

// Categories lists all categories in descending threshold order
var Categories = []Category{Long, UpperMedium, LowerMedium, Short}

// Themes lists the known themes
var Themes = []Theme{Light, Dark}

var minDistanceKm = map[Category]float64{
	Long:        10000,
	UpperMedium: 5000,
	LowerMedium: 3000,
	Short:       0,
}

var lineWidth = map[Category]float64{
	Long:        0.7,
	UpperMedium: 1,
	LowerMedium: 1.5,
	Short:       2,
}

var colors = map[Category]map[Theme]string{
	Long:        {Light: "#D84315", Dark: "#ffab40"},
	UpperMedium: {Light: "#1A237E", Dark: "#486af3"},
	LowerMedium: {Light: "#00BFA5", Dark: "#00BFA5"},
	Short:       {Light: "#c41497", Dark: "#c41497"},
}

var mapStyles = map[Theme]string{
	Light: LightMapStyle,
	Dark:  DarkMapStyle,
}

// Classify returns the category of a distance in kilometers. Thresholds are
// checked from the longest down; anything below every threshold, including
// negative and NaN input, is Short.
func Classify(distanceKm float64) Category {
	if math.IsNaN(distanceKm) {
		return Short
	}
	for _, c := range Categories {
		if distanceKm >= minDistanceKm[c] {
			return c
		}
	}
	return Short
}

// MinDistance returns the lower bound of a category in kilometers
func MinDistance(c Category) float64 {
	return minDistanceKm[c]
}

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	_, ok := mapStyles[t]
	return ok
}

// MapStyle returns the tile provider style id of the theme
func (t Theme) MapStyle() string {
	if s, ok := mapStyles[t]; ok {
		return s
	}
	return mapStyles[DefaultTheme]
}

// Resolve returns t when known and DefaultTheme otherwise
func (t Theme) Resolve() (Theme, bool) {
	if t.Valid() {
		return t, true
	}
	return DefaultTheme, false
}

// ParseTheme accepts a theme id or a map style id, case-insensitively.
// Unknown input resolves to DefaultTheme with ok == false.
func ParseTheme(s string) (Theme, bool) {
	s = strings.TrimSpace(s)
	for _, t := range Themes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, mapStyles[t]) {
			return t, true
		}
	}
	return DefaultTheme, false
}

// For returns the style of a category under a theme. An unknown theme falls
// back to DefaultTheme and ok is false; an unknown category is styled as
// Short.
func For(c Category, t Theme) (Style, bool) {
	resolved, ok := t.Resolve()
	if _, known := lineWidth[c]; !known {
		c = Short
	}
	return Style{
		Color:     colors[c][resolved],
		LineWidth: lineWidth[c],
	}, ok
}

// Opacity returns the line opacity of a category while highlighted is
// emphasized. An empty highlight shows every category at full opacity.
func Opacity(c, highlighted Category) float64 {
	if highlighted == "" || c == highlighted {
		return DefaultOpacity
	}
	return UnhighlightedOpacity
}

// ParseCategory accepts a category id such as "upper_medium", case-insensitively
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}
