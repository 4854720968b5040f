package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/tui/components/calendar"
	"github.com/julianstephens/seasonal/internal/tui/components/channels"
	"github.com/julianstephens/seasonal/internal/tui/components/countdowns"
)

const (
	headerHeight    = 4
	suffixCharLimit = 64
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.calendar.SetSize(msg.Width, msg.Height-headerHeight)
		m.channels.SetSize(msg.Width, msg.Height-headerHeight)
		m.countdowns.SetSize(msg.Width, msg.Height-headerHeight)
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case toggledMsg:
		m.handleToggled(msg)
		m.refresh()
		return m, nil

	case countdowns.TickMsg:
		m.refreshCountdowns()
		return m, countdowns.Tick()
	}

	if m.state == StateGoTo || m.state == StateEditSuffix {
		return m, m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calendar.ToggleMsg:
		m.clearMessages()
		return m, m.toggle(msg.EntryID)

	case channels.EditSuffixMsg:
		return m, m.openSuffixForm(msg.Index, msg.Suffix)

	case channels.ClearSuffixMsg:
		if err := m.ws.Settings.UpdateChannelSuffix(msg.Index, ""); err != nil {
			m.errMsg = err.Error()
		} else {
			m.notice = fmt.Sprintf("Cleared suffix of %s", schedule.BaseChannelName(msg.Index))
		}
		m.refresh()
		return m, nil

	case countdowns.RestartMsg:
		if m.tracker == nil {
			return m, nil
		}
		st, err := m.tracker.Restart(context.Background(), msg.Key)
		if err != nil {
			m.errMsg = err.Error()
		} else {
			m.notice = fmt.Sprintf("%s restarted", st.Countdown.Title)
		}
		m.refreshCountdowns()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Typing into the channel search must not trigger global keys.
	if m.state == StateChannels && m.channels.Filtering() && msg.String() != "ctrl+c" {
		var cmd tea.Cmd
		m.channels, cmd = m.channels.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.state = (m.state + 1) % tabCount
		m.clearMessages()
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = (m.state - 1 + tabCount) % tabCount
		m.clearMessages()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case StateCalendar:
		if handled := m.handleCalendarKey(msg); handled {
			return m, m.formInit()
		}
		m.calendar, cmd = m.calendar.Update(msg)
	case StateChannels:
		m.channels, cmd = m.channels.Update(msg)
	case StateCountdowns:
		m.countdowns, cmd = m.countdowns.Update(msg)
	}
	return m, cmd
}

// handleCalendarKey applies day and page navigation. Moves past the first or
// last day or page do nothing.
func (m *Model) handleCalendarKey(msg tea.KeyMsg) bool {
	nav := m.ws.Navigation
	switch {
	case key.Matches(msg, m.keys.PrevPage):
		nav.PreviousPage()
	case key.Matches(msg, m.keys.NextPage):
		nav.NextPage()
	case key.Matches(msg, m.keys.PrevDay):
		nav.PreviousDay()
	case key.Matches(msg, m.keys.NextDay):
		nav.NextDay()
	case key.Matches(msg, m.keys.GoTo):
		m.openGoToForm()
		return true
	default:
		return false
	}
	m.clearMessages()
	m.refresh()
	return true
}

func (m *Model) handleToggled(msg toggledMsg) {
	if msg.err != nil {
		m.errMsg = "Failed to save: " + msg.err.Error()
		return
	}
	res := msg.result
	switch {
	case res.EntryID == "":
	case !res.Completed:
		m.notice = fmt.Sprintf("%s marked pending", res.EntryID)
	case len(res.Updated) > 1:
		m.notice = fmt.Sprintf("%s completed, with %d earlier day(s)", res.EntryID, len(res.Updated)-1)
	default:
		m.notice = fmt.Sprintf("%s completed", res.EntryID)
	}
}

func (m *Model) clearMessages() {
	m.notice = ""
	m.errMsg = ""
}

// formInit starts the form opened by a key handler, if any.
func (m *Model) formInit() tea.Cmd {
	if m.form == nil || (m.state != StateGoTo && m.state != StateEditSuffix) {
		return nil
	}
	return m.form.Init()
}

func (m *Model) openGoToForm() {
	m.goToForm = &GoToFormModel{Day: strconv.Itoa(m.ws.Navigation.Day())}
	m.form = NewGoToForm(m.goToForm)
	m.previousState = m.state
	m.state = StateGoTo
}

func (m *Model) openSuffixForm(index int, suffix string) tea.Cmd {
	m.suffixForm = &SuffixFormModel{Index: index, Suffix: suffix}
	m.form = NewSuffixForm(m.suffixForm)
	m.previousState = m.state
	m.state = StateEditSuffix
	return m.form.Init()
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		m.form = nil
		return nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.applyForm()
		m.state = m.previousState
		m.form = nil
		m.refresh()
	case huh.StateAborted:
		m.state = m.previousState
		m.form = nil
	}
	return cmd
}

func (m *Model) applyForm() {
	m.clearMessages()
	switch m.state {
	case StateGoTo:
		day, err := strconv.Atoi(strings.TrimSpace(m.goToForm.Day))
		if err == nil {
			err = m.ws.Navigation.GoToDay(day)
		}
		if err != nil {
			m.errMsg = err.Error()
		}
	case StateEditSuffix:
		f := m.suffixForm
		if err := m.ws.Settings.UpdateChannelSuffix(f.Index, f.Suffix); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.notice = "Renamed to " + m.ws.Settings.ChannelName(f.Index)
	}
}

func NewGoToForm(f *GoToFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Go to day").
				Description(fmt.Sprintf("1-%d", constants.TotalDays)).
				Value(&f.Day).
				Validate(func(s string) error {
					day, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("enter a day number")
					}
					return schedule.ValidateDay(day)
				}),
		),
	)
}

func NewSuffixForm(f *SuffixFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Suffix for "+schedule.BaseChannelName(f.Index)).
				Placeholder("leave empty to clear").
				CharLimit(suffixCharLimit).
				Value(&f.Suffix).
				DescriptionFunc(func() string {
					return "Preview: " + schedule.ChannelName(f.Index, map[int]string{f.Index: strings.TrimSpace(f.Suffix)})
				}, &f.Suffix),
		),
	)
}
