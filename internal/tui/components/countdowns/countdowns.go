package countdowns

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/countdown"
	"github.com/julianstephens/seasonal/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	leftStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(24).
			Align(lipgloss.Center)

	selectedStyle = leftStyle.
			BorderForeground(lipgloss.Color("205"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// TickMsg re-evaluates the countdowns once a second.
type TickMsg time.Time

// RestartMsg asks the parent to restart a countdown.
type RestartMsg struct {
	Key string
}

func Tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type KeyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Restart key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
	}
}

type Model struct {
	keys     KeyMap
	statuses []models.CountdownStatus
	selected int
	width    int
	height   int
}

func New() Model {
	return Model{keys: DefaultKeyMap()}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) SetStatuses(statuses []models.CountdownStatus) {
	m.statuses = statuses
	if m.selected >= len(statuses) {
		m.selected = 0
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Prev):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(keyMsg, m.keys.Next):
		if m.selected < len(m.statuses)-1 {
			m.selected++
		}
	case key.Matches(keyMsg, m.keys.Restart):
		if m.selected < len(m.statuses) {
			k := m.statuses[m.selected].Countdown.Key
			return m, func() tea.Msg { return RestartMsg{Key: k} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.statuses) == 0 {
		return mutedStyle.Render("No countdowns configured.")
	}

	blocks := make([]string, 0, len(m.statuses))
	for i, st := range m.statuses {
		box := leftStyle
		if i == m.selected {
			box = selectedStyle
		}
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render(st.Countdown.Title),
			box.Render(countdown.FormatLeft(st.Left)),
			mutedStyle.Render(fmt.Sprintf("every %d days · since %s",
				st.Countdown.CycleDays, st.Start.Local().Format(constants.DateFormat))),
		))
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, joinGap(blocks)...)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func joinGap(blocks []string) []string {
	out := make([]string, 0, 2*len(blocks))
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "    ")
		}
		out = append(out, b)
	}
	return out
}
