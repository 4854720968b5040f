package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var tabTitles = []string{"Calendar", "Channels", "Countdowns"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateCalendar:
		content = docStyle.Render(m.calendar.View())
	case StateChannels:
		content = docStyle.Render(m.channels.View())
	case StateCountdowns:
		content = m.viewCountdowns()
	case StateGoTo, StateEditSuffix:
		content = docStyle.Render(m.form.View())
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewStatus(),
		content,
		m.help.View(m),
	)
	return ui
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= tabCount {
		active = m.previousState
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	stats := m.ws.Schedule.Stats()
	tabs = append(tabs, statsStyle.Render(fmt.Sprintf("%d/%d done (%d%%)",
		stats.CompletedEntries, stats.TotalEntries, stats.PercentCompleted)))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render("⚠ " + m.errMsg)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

func (m Model) viewCountdowns() string {
	if m.tracker == nil {
		return docStyle.Render("Countdowns are unavailable.")
	}
	return m.countdowns.View()
}
