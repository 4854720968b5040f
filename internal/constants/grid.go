package constants

import "time"

// Grid dimensions. Every season owns a contiguous block of days and its own
// block of channels; nothing else about the grid is stored.
const (
	TotalSeasons      = 12
	DaysPerSeason     = 40
	ChannelsPerSeason = 84

	TotalDays     = TotalSeasons * DaysPerSeason
	TotalChannels = TotalSeasons * ChannelsPerSeason
	TotalEntries  = TotalDays * ChannelsPerSeason

	// ChannelsPerPage is how many channel cards one calendar page shows
	ChannelsPerPage = 12
	// MaxVisiblePages caps the page-number strip before ellipses kick in
	MaxVisiblePages = 7
)

// ScheduleStartDate is the calendar date of day 1.
var ScheduleStartDate = time.Date(2025, time.November, 8, 0, 0, 0, 0, time.Local)

// Document layout in the backing store.
const (
	ScheduleCollection   = "schedules"
	SeasonDocumentPrefix = "season-"

	NavigationCollection = "userPreferences"
	SettingsCollection   = "userSettings"
	DefaultUserID        = "default-user"
)

// Sync timings
const (
	DefaultDebounceWindow = 500 * time.Millisecond
	DefaultPollInterval   = time.Second
	WatchThrottleDelay    = 100 * time.Millisecond
	WatchBufferSize       = 64

	// PostgresNotifyChannel is the LISTEN/NOTIFY channel fed by the documents trigger
	PostgresNotifyChannel = "seasonal_documents"
)
