package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/roadnet/pkg/geo"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// ComponentListModel - Interactive component selection
// =============================================================================

// ComponentListModel is the bubbletea model for interactive component selection.
type ComponentListModel struct {
	Components []componentInfo
	Cursor     int
	Selected   *componentInfo
	Height     int
	Offset     int
}

// NewComponentListModel creates a component list with the cursor on the
// largest component.
func NewComponentListModel(infos []componentInfo) ComponentListModel {
	m := ComponentListModel{Components: infos, Height: 15}
	for i, info := range infos {
		if info.Largest {
			m.Cursor = i
		}
	}
	m.scroll()
	return m
}

func (m ComponentListModel) Init() tea.Cmd {
	return nil
}

func (m ComponentListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Components)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = len(m.Components) - 1
		case "enter":
			if len(m.Components) == 0 {
				return m, tea.Quit
			}
			info := m.Components[m.Cursor]
			m.Selected = &info
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *ComponentListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ComponentListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Component"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ simplify  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Components) {
		end = len(m.Components)
	}
	b.WriteString(componentTable(m.Components[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Components))))

	return b.String()
}

// componentTable renders infos as a table. cursor is the highlighted row,
// or -1 for none.
func componentTable(infos []componentInfo, cursor int) string {
	rows := make([][]string, 0, len(infos))
	for i, info := range infos {
		mark := "  "
		if i == cursor {
			mark = "▸ "
		}
		largest := ""
		if info.Largest {
			largest = "✓"
		}
		rows = append(rows, []string{
			mark,
			strconv.Itoa(info.Index),
			strconv.Itoa(info.Nodes),
			strconv.Itoa(info.Edges),
			info.Root,
			formatExtent(info.Bounds),
			largest,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Nodes", "Edges", "First node", "Extent", "Largest").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			base := lipgloss.NewStyle()
			if row < 0 || row >= len(infos) {
				return base
			}
			switch {
			case row == cursor:
				return base.Foreground(colorCyan).Bold(true)
			case infos[row].Largest:
				return base.Foreground(colorGreen)
			case infos[row].Edges == 0:
				return base.Foreground(colorDim)
			}
			return base
		})

	return t.Render()
}

// formatExtent prints the width and height of b in kilometers.
func formatExtent(b geo.Bounds) string {
	if b == (geo.Bounds{}) {
		return "—"
	}
	w := geo.Distance(geo.Position{Lat: b.MinLat, Lon: b.MinLon}, geo.Position{Lat: b.MinLat, Lon: b.MaxLon})
	h := geo.Distance(geo.Position{Lat: b.MinLat, Lon: b.MinLon}, geo.Position{Lat: b.MaxLat, Lon: b.MinLon})
	return fmt.Sprintf("%.2f × %.2f km", w, h)
}
