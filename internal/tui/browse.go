// Package tui implements the interactive game browser.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gtrack/internal/cli"
	"gtrack/internal/query"
)

// Browse runs an interactive table over the given report rows.
func Browse(rows []query.Row) error {
	m := newBrowseModel(rows)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type browseModel struct {
	table table.Model
	count int
}

func newBrowseModel(rows []query.Row) browseModel {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Game", Width: 32},
		{Title: "Playtime", Width: 10},
		{Title: "First played", Width: 12},
		{Title: "Last played", Width: 12},
	}

	trows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		first, last := "", ""
		if !r.FirstPlayed.IsZero() {
			first = r.FirstPlayed.Local().Format("2006-01-02")
		}
		if !r.LastPlayed.IsZero() {
			last = r.LastPlayed.Local().Format("2006-01-02")
		}
		trows = append(trows, table.Row{
			fmt.Sprintf("%d", r.GameID),
			cli.Truncate(r.DisplayName, 32),
			cli.FormatPlaytime(r.Playtime),
			first,
			last,
		})
	}

	height := len(trows)
	if height > 20 {
		height = 20
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(trows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(cli.ColorAccent).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cli.ColorBorder).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(cli.ColorText).
		Background(cli.ColorBorder)
	t.SetStyles(styles)

	return browseModel{table: t, count: len(trows)}
}

// Init implements tea.Model.
func (m browseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h := msg.Height - 4
		if h < 3 {
			h = 3
		}
		if h > m.count {
			h = m.count
		}
		m.table.SetHeight(h)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m browseModel) View() string {
	help := lipgloss.NewStyle().Foreground(cli.ColorMuted).
		Render("  j/k move · q quit")
	return "\n" + m.table.View() + "\n" + help + "\n"
}
