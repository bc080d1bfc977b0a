package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/routes"
	"github.com/kass/capital-routes/pkg/style"
)

const maxNearest = 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	origin := s.dataset.Origin()
	theme := s.dataset.Theme()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"capitals": s.dataset.Index().Len(),
		"origin":   origin,
		"theme":    theme,
	})
}

func (s *Server) handleCapitals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fc, err := s.dataset.CapitalPoints()
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("capitals left off the map", zap.Error(err))
	}
	writeGeoJSON(w, fc)
}

// handleRoutes switches origin and theme as requested, recomputing arcs only
// when the origin changed
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var featureOpts []routes.FeatureOption
	if h := q.Get("highlight"); h != "" {
		c, ok := style.ParseCategory(h)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid 'highlight' parameter")
			return
		}
		featureOpts = append(featureOpts, routes.WithHighlight(c))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if origin := q.Get("origin"); origin != "" {
		s.dataset.SetOrigin(origin)
	}
	if t := q.Get("theme"); t != "" {
		theme, ok := style.ParseTheme(t)
		if !ok {
			s.log.Warn("unknown theme requested, using default", zap.String("theme", t))
		}
		if theme != s.dataset.Theme() {
			s.dataset.Restyle(theme)
			if s.opts.OnThemeChange != nil {
				s.opts.OnThemeChange(theme)
			}
		}
	}

	coll, err := s.dataset.Collection()
	if err != nil {
		s.log.Warn("routes incomplete", zap.String("origin", coll.Origin), zap.Error(err))
	}

	w.Header().Set("X-Route-Origin", coll.Origin)
	w.Header().Set("X-Route-Theme", string(coll.Theme))
	w.Header().Set("X-Map-Style", coll.Theme.MapStyle())
	writeGeoJSON(w, coll.FeatureCollection(featureOpts...))
}

type legendEntry struct {
	style.LegendEntry
	Label string `json:"label"`
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	var theme style.Theme
	if t := r.URL.Query().Get("theme"); t != "" {
		theme, _ = style.ParseTheme(t)
	} else {
		s.mu.Lock()
		theme = s.dataset.Theme()
		s.mu.Unlock()
	}

	entries := style.Legend(theme)
	out := make([]legendEntry, len(entries))
	for i, e := range entries {
		out[i] = legendEntry{LegendEntry: e, Label: e.Label()}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"theme":    theme,
		"mapStyle": theme.MapStyle(),
		"entries":  out,
	})
}

type nearestCapital struct {
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	DistanceKm float64 `json:"distanceKm"`
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	loc, err := arc.ParseLocation(q.Get("lon"), q.Get("lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	k := 1
	if ks := q.Get("k"); ks != "" {
		k, err = strconv.Atoi(ks)
		if err != nil || k < 1 || k > maxNearest {
			writeError(w, http.StatusBadRequest, "invalid 'k' parameter")
			return
		}
	}

	found := s.dataset.Index().Nearest(loc, k)
	out := make([]nearestCapital, 0, len(found))
	for _, c := range found {
		cl, err := arc.CapitalLocation(c)
		if err != nil {
			continue
		}
		out = append(out, nearestCapital{
			Name:       c.Name,
			Country:    c.CountryName,
			Longitude:  cl.Lon,
			Latitude:   cl.Lat,
			DistanceKm: arc.Distance(loc, cl),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeGeoJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode geojson")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
