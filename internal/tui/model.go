package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/seasonal/internal/countdown"
	"github.com/julianstephens/seasonal/internal/syncer"
	"github.com/julianstephens/seasonal/internal/tui/components/calendar"
	"github.com/julianstephens/seasonal/internal/tui/components/channels"
	"github.com/julianstephens/seasonal/internal/tui/components/countdowns"
)

type SessionState int

const (
	StateCalendar SessionState = iota
	StateChannels
	StateCountdowns
	StateGoTo
	StateEditSuffix
)

// tabCount is the number of top-level tabs; states past it are overlays.
const tabCount = 3

type GoToFormModel struct {
	Day string
}

type SuffixFormModel struct {
	Index  int
	Suffix string
}

// changedMsg reports that a session changed locally or remotely.
type changedMsg struct{}

type toggledMsg struct {
	result syncer.ToggleResult
	err    error
}

type Model struct {
	ws            *syncer.Workspace
	tracker       *countdown.Tracker
	changes       chan struct{}
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	calendar      calendar.Model
	channels      channels.Model
	countdowns    countdowns.Model
	form          *huh.Form
	goToForm      *GoToFormModel
	suffixForm    *SuffixFormModel
	notice        string
	errMsg        string
	quitting      bool
	width         int
	height        int
}

// NewModel builds the calendar over an open workspace. tracker may be nil,
// which hides the countdown tab content.
func NewModel(ws *syncer.Workspace, tracker *countdown.Tracker) Model {
	m := Model{
		ws:         ws,
		tracker:    tracker,
		changes:    make(chan struct{}, 1),
		state:      StateCalendar,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		calendar:   calendar.New(),
		channels:   channels.New(ws.Settings.Suffixes(), 0, 0),
		countdowns: countdowns.New(),
	}

	signal := func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	}
	ws.Schedule.OnChange(signal)
	ws.Navigation.OnChange(signal)
	ws.Settings.OnChange(signal)

	m.refresh()
	m.refreshCountdowns()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateCalendar:
		keys = append(keys, m.keys.Toggle, m.keys.PrevPage, m.keys.NextPage, m.keys.PrevDay, m.keys.NextDay, m.keys.GoTo)
	case StateChannels:
		keys = append(keys, m.keys.Edit, m.keys.Clear, m.keys.Filter, m.keys.Search)
	case StateCountdowns:
		keys = append(keys, m.keys.Restart)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateCalendar:
		navigation = append(navigation, m.keys.PrevPage, m.keys.NextPage, m.keys.PrevDay, m.keys.NextDay, m.keys.GoTo)
		actions = []key.Binding{m.keys.Toggle}
	case StateChannels:
		actions = []key.Binding{m.keys.Edit, m.keys.Clear, m.keys.Filter, m.keys.Search}
	case StateCountdowns:
		actions = []key.Binding{m.keys.Restart}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), countdowns.Tick())
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func (m Model) toggle(entryID string) tea.Cmd {
	ws := m.ws
	return func() tea.Msg {
		res, err := ws.Schedule.Toggle(context.Background(), entryID)
		return toggledMsg{result: res, err: err}
	}
}

// refresh re-reads the sessions into the components.
func (m *Model) refresh() {
	nav := m.ws.Navigation
	day, page := nav.Day(), nav.Page()
	cards, err := m.ws.Page(day, page)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.calendar.SetPage(day, page, nav.TotalPages(), cards)
	m.channels.SetSuffixes(m.ws.Settings.Suffixes())
}

func (m *Model) refreshCountdowns() {
	if m.tracker == nil {
		return
	}
	statuses, err := m.tracker.All(context.Background())
	if err != nil {
		m.errMsg = fmt.Sprintf("Countdowns unavailable: %v", err)
		return
	}
	m.countdowns.SetStatuses(statuses)
}
