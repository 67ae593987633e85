// Package tui renders the live tracking dashboard. It reads the store
// through read-only snapshots on its own refresh tick and never mutates
// accounting state directly; all control actions go through the loop.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/lapse/internal/config"
	"github.com/sadopc/lapse/internal/store"
	"github.com/sadopc/lapse/internal/track"
)

// Dashboard is the root Bubble Tea model for `lapse track --live`.
type Dashboard struct {
	store *store.Store
	cfg   *config.Config
	loop  *track.Loop

	width  int
	height int

	snap     snapshotMsg
	showHelp bool
	help     help.Model
	chart    barchart.Model
}

// New builds the dashboard over an already-started loop.
func New(st *store.Store, cfg *config.Config, loop *track.Loop) Dashboard {
	h := help.New()
	h.ShowAll = false
	return Dashboard{
		store: st,
		cfg:   cfg,
		loop:  loop,
		help:  h,
		chart: barchart.New(50, 10),
	}
}

func (d Dashboard) Init() tea.Cmd {
	return tea.Batch(tickCmd(), d.refresh())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh snapshots the store off the UI goroutine.
func (d Dashboard) refresh() tea.Cmd {
	return func() tea.Msg {
		day := d.store.Today()

		snap := snapshotMsg{
			day:      map[string]float64{},
			total:    day.TotalSeconds(),
			progress: store.GoalProgress(day, d.cfg.Goals),
			score:    store.ProductivityScore(day, d.cfg.ProductiveCategories),
		}
		for category, bucket := range day {
			snap.day[category] = bucket.TotalSeconds
		}
		streaks := d.store.Streaks()
		snap.current = streaks.Current
		snap.longest = streaks.Longest
		return snap
	}
}

func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		d.help.Width = msg.Width
		d.buildChart()
		return d, nil

	case snapshotMsg:
		d.snap = msg
		d.buildChart()
		return d, nil

	case tickMsg:
		return d, tea.Batch(tickCmd(), d.refresh())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return d, tea.Quit
		case key.Matches(msg, keys.Pause):
			if d.loop.State() == track.Paused {
				d.loop.Resume()
			} else {
				d.loop.Pause()
			}
			return d, nil
		case key.Matches(msg, keys.Focus):
			d.loop.SetFocusMode(!d.loop.FocusMode())
			return d, nil
		case key.Matches(msg, keys.Project):
			d.loop.SetProject("")
			return d, nil
		case key.Matches(msg, keys.Help):
			d.showHelp = !d.showHelp
			d.help.ShowAll = d.showHelp
			return d, nil
		}
	}
	return d, nil
}

func (d Dashboard) View() string {
	if d.width == 0 {
		return "Loading..."
	}

	w := d.width - 4
	header := headerStyle.Render(
		lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("lapse") +
			mutedStyle.Render("  live tracking"),
	)

	panels := lipgloss.JoinVertical(lipgloss.Left,
		d.renderActivity(w),
		d.renderToday(w),
		d.renderStreaks(w),
	)

	footer := footerStyle.Render(d.help.View(keys))
	return lipgloss.JoinVertical(lipgloss.Left, header, panels, footer)
}

func (d Dashboard) renderActivity(w int) string {
	state := d.loop.State()
	app, since := d.loop.Current()

	var rows []string
	rows = append(rows, titleStyle.Render("Current Activity"))

	switch {
	case state == track.Paused:
		rows = append(rows, warningStyle.Render("⏸  paused"))
	case app == "":
		rows = append(rows, mutedStyle.Render("idle"))
	default:
		elapsed := time.Since(since)
		rows = append(rows,
			highlightStyle.Render(truncateLine(app, w-8)),
			fmt.Sprintf("%s %s", mutedStyle.Render("category:"), d.store.Classify(app)),
			fmt.Sprintf("%s %s", mutedStyle.Render("duration:"), formatDuration(elapsed)),
		)
	}

	if p := d.loop.Project(); p != "" {
		rows = append(rows, fmt.Sprintf("%s %s", mutedStyle.Render("project:"), p))
	}
	if d.loop.FocusMode() {
		rows = append(rows, successStyle.Render("● focus mode"))
	}
	if d.loop.Degraded() {
		rows = append(rows, errorStyle.Render("! probes failing, tracking degraded"))
	}

	session := time.Since(d.loop.SessionStart())
	rows = append(rows, mutedStyle.Render("session: "+formatDuration(session)))

	style := panelStyle
	if state == track.RunningActive {
		style = activePanelStyle
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (d Dashboard) renderToday(w int) string {
	var rows []string
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatHours(d.snap.total))
	score := mutedStyle.Render(fmt.Sprintf("productive %.0f%%", d.snap.score))
	rows = append(rows, fmt.Sprintf("%s  %s  %s", title, total, score))

	if len(d.snap.day) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing tracked yet"))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	rows = append(rows, d.chart.View())

	for _, category := range sortedCategories(d.snap.day) {
		line := fmt.Sprintf("  %-15s %s", category, formatHours(d.snap.day[category]))
		if pct, ok := d.snap.progress[category]; ok {
			goal := d.cfg.Goals[category]
			line += mutedStyle.Render(fmt.Sprintf("  (%.0f%% of %gh goal)", pct, goal))
		}
		rows = append(rows, line)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d Dashboard) renderStreaks(w int) string {
	if d.snap.current == 0 && d.snap.longest == 0 {
		return ""
	}
	content := fmt.Sprintf("%s  current %d days  ·  longest %d days",
		titleStyle.Render("Streak"), d.snap.current, d.snap.longest)
	return panelStyle.Width(w).Render(content)
}

func (d *Dashboard) buildChart() {
	chartWidth := d.width - 10
	if chartWidth < 20 {
		chartWidth = 20
	}
	d.chart = barchart.New(chartWidth, 8)

	var bars []barchart.BarData
	for i, category := range sortedCategories(d.snap.day) {
		style := lipgloss.NewStyle().Foreground(chartColors[i%len(chartColors)])
		bars = append(bars, barchart.BarData{
			Label: truncateLine(category, 8),
			Values: []barchart.BarValue{{
				Name:  category,
				Value: d.snap.day[category] / 3600,
				Style: style,
			}},
		})
	}
	d.chart.PushAll(bars)
	d.chart.Draw()
}

// sortedCategories orders categories by tracked time, descending.
func sortedCategories(day map[string]float64) []string {
	categories := make([]string, 0, len(day))
	for c := range day {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if day[categories[i]] != day[categories[j]] {
			return day[categories[i]] > day[categories[j]]
		}
		return categories[i] < categories[j]
	})
	return categories
}

func truncateLine(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
