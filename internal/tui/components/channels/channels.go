package channels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/schedule"
)

type EditSuffixMsg struct {
	Index  int
	Suffix string
}

type ClearSuffixMsg struct {
	Index int
}

type Item struct {
	Index  int
	Suffix string
}

func (i Item) Title() string {
	return schedule.ChannelName(i.Index, map[int]string{i.Index: i.Suffix})
}

func (i Item) Description() string {
	desc := fmt.Sprintf("Season %d", schedule.SeasonOfChannelNumber(i.Index+1))
	if i.Suffix == "" {
		desc += " | no suffix"
	}
	return desc
}

func (i Item) FilterValue() string {
	return schedule.BaseChannelName(i.Index) + " " + i.Suffix
}

type KeyMap struct {
	Edit   key.Binding
	Clear  key.Binding
	Filter key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit suffix"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear suffix"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle suffix filter"),
		),
	}
}

// Model lists every channel for the suffix editor. The list's own "/"
// filter searches names and suffixes; f narrows by suffix presence.
type Model struct {
	list     list.Model
	keys     KeyMap
	mode     schedule.ChannelFilter
	suffixes map[int]string
}

func New(suffixes map[int]string, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Channels"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Edit, keys.Clear, keys.Filter}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Edit, keys.Clear, keys.Filter}
	}

	m := Model{list: l, keys: keys, mode: schedule.FilterAll}
	m.SetSuffixes(suffixes)
	return m
}

// SetSuffixes rebuilds the items for the current suffix filter.
func (m *Model) SetSuffixes(suffixes map[int]string) {
	m.suffixes = suffixes
	all := make([]int, constants.TotalChannels)
	for i := range all {
		all[i] = i
	}
	indexes := schedule.FilterChannels(all, suffixes, m.mode, "")
	items := make([]list.Item, len(indexes))
	for i, idx := range indexes {
		items[i] = Item{Index: idx, Suffix: suffixes[idx]}
	}
	m.list.SetItems(items)
}

func (m Model) Mode() schedule.ChannelFilter { return m.mode }

func (m Model) Filtering() bool { return m.list.FilterState() == list.Filtering }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditSuffixMsg(i) }
			}
		case key.Matches(msg, m.keys.Clear):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Suffix != "" {
				return m, func() tea.Msg { return ClearSuffixMsg{Index: i.Index} }
			}
		case key.Matches(msg, m.keys.Filter):
			m.mode = nextMode(m.mode)
			m.SetSuffixes(m.suffixes)
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func nextMode(mode schedule.ChannelFilter) schedule.ChannelFilter {
	switch mode {
	case schedule.FilterAll:
		return schedule.FilterWithSuffix
	case schedule.FilterWithSuffix:
		return schedule.FilterNoSuffix
	}
	return schedule.FilterAll
}

func (m Model) View() string {
	header := "Showing: " + strings.ReplaceAll(string(m.mode), "-", " ")
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return header + "\n\n  No channels match.\n  Press 'f' to change the filter."
	}
	return header + "\n" + m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height-1)
}
