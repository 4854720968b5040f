package calendar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/syncer"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Strikethrough(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	pageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	currentPageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)
)

// ToggleMsg asks the parent to toggle the selected entry.
type ToggleMsg struct {
	EntryID string
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
	}
}

// Model renders one page of a day as a list of channel cards.
type Model struct {
	keys       KeyMap
	day        int
	page       int
	totalPages int
	cards      []syncer.ChannelCard
	cursor     int
	width      int
	height     int
}

func New() Model {
	return Model{keys: DefaultKeyMap(), day: 1, page: 1, totalPages: 1}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetPage replaces the shown cards. The cursor is kept when it still points
// at a card.
func (m *Model) SetPage(day, page, totalPages int, cards []syncer.ChannelCard) {
	if day != m.day || page != m.page {
		m.cursor = 0
	}
	m.day, m.page, m.totalPages = day, page, totalPages
	m.cards = cards
	if m.cursor >= len(cards) {
		m.cursor = max(len(cards)-1, 0)
	}
}

func (m Model) Selected() (syncer.ChannelCard, bool) {
	if m.cursor < 0 || m.cursor >= len(m.cards) {
		return syncer.ChannelCard{}, false
	}
	return m.cards[m.cursor], true
}

func (m Model) Cursor() int { return m.cursor }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		if card, ok := m.Selected(); ok {
			return m, func() tea.Msg { return ToggleMsg{EntryID: card.Entry.ID} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	season := schedule.SeasonForDay(m.day)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Day %d", m.day)))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  %s · Season %d", schedule.FormatDayDate(m.day), season.SeasonNumber)))
	b.WriteString("\n")
	b.WriteString(m.pageStrip())
	b.WriteString("\n\n")

	if len(m.cards) == 0 {
		b.WriteString(labelStyle.Render("No channels on this page."))
		return b.String()
	}
	for i, card := range m.cards {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("▸ ")
		}
		mark, name := "○", cardStyle.Render(card.Name)
		if card.Entry.Completed {
			mark, name = doneStyle.Render("✓"), doneStyle.Render(card.Name)
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", cursor, mark, name, labelStyle.Render(card.Entry.ID))
	}
	return b.String()
}

func (m Model) pageStrip() string {
	parts := []string{pageStyle.Render(fmt.Sprintf("Page %d/%d ", m.page, m.totalPages))}
	for _, p := range schedule.PageNumbers(m.page, m.totalPages) {
		switch {
		case p == schedule.Ellipsis:
			parts = append(parts, pageStyle.Render("…"))
		case p == m.page:
			parts = append(parts, currentPageStyle.Render(fmt.Sprintf("[%d]", p)))
		default:
			parts = append(parts, pageStyle.Render(fmt.Sprintf("%d", p)))
		}
	}
	return strings.Join(parts, " ")
}
