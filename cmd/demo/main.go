package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/internal/config"
	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/geoindex"
	"github.com/kass/capital-routes/pkg/loader"
	"github.com/kass/capital-routes/pkg/models"
	"github.com/kass/capital-routes/pkg/routes"
	"github.com/kass/capital-routes/pkg/style"
)

const (
	originRows = 14
	routeRows  = 14
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

type stage int

const (
	stageLoading stage = iota
	stageReady
	stageFailed
)

type model struct {
	stage    stage
	spinner  spinner.Model
	progress progress.Model

	cfg      *config.Config
	dataset  *routes.Dataset
	coll     *routes.Collection
	origins  []string
	cursor   int
	selected int

	highlight style.Category
	loadTime  time.Duration
	status    string
	err       error
	width     int
}

type loadedMsg struct {
	dataset  *routes.Dataset
	duration time.Duration
}

type failedMsg struct{ err error }

func initialModel(cfg *config.Config) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	p.Width = 30

	return model{
		stage:    stageLoading,
		spinner:  s,
		progress: p,
		cfg:      cfg,
		width:    100,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadDataset(m.cfg))
}

// loadDataset fetches the capitals and computes the routes of the configured
// origin in the background
func loadDataset(cfg *config.Config) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Data.TimeoutSecs)*time.Second)
		defer cancel()

		capitals, err := loader.New(loader.Options{}).Load(ctx, cfg.Data.Source)
		if err != nil {
			return failedMsg{err}
		}

		configured, _ := style.ParseTheme(cfg.Routes.Theme)
		theme, _ := config.LoadTheme(cfg.Routes.StateFile, configured)

		dataset, err := routes.NewFromIndex(geoindex.New(capitals),
			routes.WithOrigin(cfg.Routes.Origin),
			routes.WithTheme(theme),
			routes.WithPointCount(cfg.Routes.PointCount),
		)
		if err != nil {
			return failedMsg{err}
		}
		if _, err := dataset.Collection(); err != nil {
			zap.L().Warn("routes incomplete", zap.Error(err))
		}
		return loadedMsg{dataset: dataset, duration: time.Since(start)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.stage != stageLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case failedMsg:
		m.stage = stageFailed
		m.err = msg.err
		return m, nil

	case loadedMsg:
		m.stage = stageReady
		m.dataset = msg.dataset
		m.loadTime = msg.duration
		m.origins = originNames(msg.dataset.Index())
		for i, name := range m.origins {
			if name == msg.dataset.Origin() {
				m.cursor, m.selected = i, i
			}
		}
		m.coll, _ = msg.dataset.Collection()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		if m.stage != stageReady {
			return m, nil
		}
		return m.handleKey(msg.String()), nil
	}

	return m, nil
}

func (m model) handleKey(key string) model {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.origins)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.origins) == 0 {
			break
		}
		m.selected = m.cursor
		m.dataset.SetOrigin(m.origins[m.cursor])
		coll, err := m.dataset.Collection()
		m.coll = coll
		m.status = fmt.Sprintf("%d routes from %s", coll.Len(), coll.Origin)
		if err != nil {
			m.status += fmt.Sprintf(" (%d records skipped)", len(multierr.Errors(err)))
		}
	case "t":
		next := style.Light
		if m.dataset.Theme() == style.Light {
			next = style.Dark
		}
		m.dataset.Restyle(next)
		m.coll, _ = m.dataset.Collection()
		m.status = "theme " + string(next)
		if err := config.SaveTheme(m.cfg.Routes.StateFile, next); err != nil {
			m.status = errorStyle.Render("theme not saved: " + err.Error())
		}
	case "h":
		m.highlight = nextHighlight(m.highlight)
		if m.highlight == "" {
			m.status = "highlight off"
		} else {
			m.status = "highlight " + string(m.highlight)
		}
	}
	return m
}

// nextHighlight cycles through every category and back to none
func nextHighlight(c style.Category) style.Category {
	if c == "" {
		return style.Categories[0]
	}
	for i, cat := range style.Categories {
		if cat == c && i+1 < len(style.Categories) {
			return style.Categories[i+1]
		}
	}
	return ""
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Capital Routes"))
	b.WriteString("\n")

	switch m.stage {
	case stageLoading:
		b.WriteString(m.spinner.View() + " Loading capitals from " + m.cfg.Data.Source + "...\n")
	case stageFailed:
		b.WriteString(errorStyle.Render("Failed to load capitals: "+m.err.Error()) + "\n")
	case stageReady:
		left := boxStyle.Render(m.renderOrigins())
		right := boxStyle.Render(m.renderRoutes())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(m.renderLegend()))
		b.WriteString("\n")
		if m.status != "" {
			b.WriteString(dimStyle.Render(m.status) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ move • enter select origin • t toggle theme • h highlight • q quit"))
	return b.String()
}

func (m model) renderOrigins() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Origins (%d)", len(m.origins))))
	b.WriteString("\n")

	start := m.cursor - originRows/2
	if start > len(m.origins)-originRows {
		start = len(m.origins) - originRows
	}
	if start < 0 {
		start = 0
	}
	for i := start; i < len(m.origins) && i < start+originRows; i++ {
		line := "  " + m.origins[i]
		switch {
		case i == m.cursor:
			line = selectedStyle.Render("> " + m.origins[i])
		case i == m.selected:
			line = statStyle.Render("* " + m.origins[i])
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// renderRoutes lists the closest destinations of the current collection,
// colored by their route style
func (m model) renderRoutes() string {
	var b strings.Builder
	if m.coll == nil || m.coll.Len() == 0 {
		b.WriteString(subtitleStyle.Render("No routes"))
		return b.String()
	}
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Routes from %s (%s theme)", m.coll.Origin, m.coll.Theme)))
	b.WriteString("\n")

	sorted := make([]routes.Route, len(m.coll.Routes))
	copy(sorted, m.coll.Routes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DistanceKm < sorted[j].DistanceKm })

	for i, r := range sorted {
		if i == routeRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(sorted)-routeRows)) + "\n")
			break
		}
		bearing := arc.InitialBearing(toLocation(r.Path[0]), toLocation(r.Path[len(r.Path)-1]))
		line := fmt.Sprintf("%-24s %8.0f km  %5.1f°  %s",
			truncate(r.Destination, 24), r.DistanceKm, bearing, r.Category)
		b.WriteString(m.routeStyle(r.Category, r.Color).Render(line) + "\n")
	}
	return b.String()
}

func (m model) renderLegend() string {
	counts := m.coll.CountByCategory()
	total := m.coll.Len()

	var b strings.Builder
	for _, e := range style.Legend(m.dataset.Theme()) {
		share := 0.0
		if total > 0 {
			share = float64(counts[e.Category]) / float64(total)
		}
		label := fmt.Sprintf("%-13s %-16s %4d ", e.Category, e.Label(), counts[e.Category])
		b.WriteString(m.routeStyle(e.Category, e.Color).Render(label))
		b.WriteString(m.progress.ViewAs(share))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("loaded in %v • %d points per arc", m.loadTime, m.dataset.PointCount())))
	return b.String()
}

// routeStyle renders faded categories dimmed the way the map fades them
func (m model) routeStyle(c style.Category, color string) lipgloss.Style {
	if style.Opacity(c, m.highlight) < style.DefaultOpacity {
		return dimStyle.Faint(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func originNames(index *geoindex.Index) []string {
	var names []string
	for _, c := range index.Records() {
		if _, err := arc.CapitalLocation(c); err == nil {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}

func toLocation(p orb.Point) models.Location {
	return models.Location{Lat: p.Lat(), Lon: p.Lon()}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func main() {
	configPath := flag.String("config", "", "Config file (default ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
