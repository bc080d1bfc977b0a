package style

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		km       float64
		expected Category
	}{
		{"zero", 0, Short},
		{"short", 1000, Short},
		{"just below lower medium", 2999.999, Short},
		{"lower medium threshold", 3000, LowerMedium},
		{"lower medium", 3500, LowerMedium},
		{"just below upper medium", 4999.999, LowerMedium},
		{"upper medium threshold", 5000, UpperMedium},
		{"upper medium", 7000, UpperMedium},
		{"just below long", 9999.999, UpperMedium},
		{"long threshold", 10000, Long},
		{"long", 12000, Long},
		{"half circumference", 20015, Long},
		{"very large", math.MaxFloat64, Long},
		{"infinite", math.Inf(1), Long},
		{"negative", -1, Short},
		{"NaN", math.NaN(), Short},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.km))
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	rank := map[Category]int{Short: 0, LowerMedium: 1, UpperMedium: 2, Long: 3}
	prev := Classify(0)
	for km := 0.0; km <= 25000; km += 7.5 {
		c := Classify(km)
		assert.GreaterOrEqual(t, rank[c], rank[prev], "category dropped at %.1f km", km)
		prev = c
	}
}

func TestFor(t *testing.T) {
	tests := []struct {
		category Category
		theme    Theme
		expected Style
	}{
		{Short, Dark, Style{Color: "#c41497", LineWidth: 2}},
		{Long, Dark, Style{Color: "#ffab40", LineWidth: 0.7}},
		{LowerMedium, Dark, Style{Color: "#00BFA5", LineWidth: 1.5}},
		{UpperMedium, Dark, Style{Color: "#486af3", LineWidth: 1}},
		{LowerMedium, Light, Style{Color: "#00BFA5", LineWidth: 1.5}},
		{Long, Light, Style{Color: "#D84315", LineWidth: 0.7}},
		{UpperMedium, Light, Style{Color: "#1A237E", LineWidth: 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+string(tt.theme), func(t *testing.T) {
			s, ok := For(tt.category, tt.theme)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestForEveryCombination(t *testing.T) {
	for _, c := range Categories {
		for _, th := range Themes {
			s, ok := For(c, th)
			assert.True(t, ok)
			assert.NotEmpty(t, s.Color, "%s/%s has no color", c, th)
			assert.Greater(t, s.LineWidth, 0.0)
		}
	}
}

func TestForUnknownTheme(t *testing.T) {
	got, ok := For(Long, Theme("sepia"))
	assert.False(t, ok)

	want, _ := For(Long, DefaultTheme)
	assert.Equal(t, want, got)
}

func TestForUnknownCategory(t *testing.T) {
	got, _ := For(Category("MEDIUM"), Light)
	want, _ := For(Short, Light)
	assert.Equal(t, want, got)
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in       string
		expected Theme
		ok       bool
	}{
		{"light", Light, true},
		{"DARK", Dark, true},
		{" light ", Light, true},
		{LightMapStyle, Light, true},
		{DarkMapStyle, Dark, true},
		{"", DefaultTheme, false},
		{"username/test_theme", DefaultTheme, false},
	}

	for _, tt := range tests {
		got, ok := ParseTheme(tt.in)
		assert.Equal(t, tt.expected, got, "input %q", tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
	}
}

func TestThemeMapStyle(t *testing.T) {
	assert.Equal(t, LightMapStyle, Light.MapStyle())
	assert.Equal(t, DarkMapStyle, Dark.MapStyle())
	assert.Equal(t, DarkMapStyle, Theme("unknown").MapStyle())
}

func TestOpacity(t *testing.T) {
	assert.Equal(t, DefaultOpacity, Opacity(Long, ""))
	assert.Equal(t, DefaultOpacity, Opacity(Short, Short))
	assert.Equal(t, UnhighlightedOpacity, Opacity(Long, Short))
}

func TestLegend(t *testing.T) {
	legend := Legend(Light)
	assert.Len(t, legend, 4)

	assert.Equal(t, Long, legend[0].Category)
	assert.Equal(t, 10000.0, legend[0].MinKm)
	assert.Equal(t, 0.0, legend[0].MaxKm)
	assert.Equal(t, "> 10000 km", legend[0].Label())

	assert.Equal(t, LowerMedium, legend[2].Category)
	assert.Equal(t, "3000 - 5000 km", legend[2].Label())
	assert.Equal(t, "#00BFA5", legend[2].Color)

	assert.Equal(t, Short, legend[3].Category)
	assert.Equal(t, "0 - 3000 km", legend[3].Label())

	for i, entry := range Legend(Theme("bogus")) {
		assert.Equal(t, Legend(Dark)[i], entry)
	}
}

func TestParseCategory(t *testing.T) {
	testCases := []struct {
		input    string
		expected Category
		ok       bool
	}{
		{"LONG", Long, true},
		{"upper_medium", UpperMedium, true},
		{" Lower_Medium ", LowerMedium, true},
		{"short", Short, true},
		{"medium", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := ParseCategory(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}
