package models

import "time"

// ScheduleEntry is the completion record for one (day, channel) pair.
// Only Completed ever changes after the grid is generated.
type ScheduleEntry struct {
	ID        string `json:"id"`        // "{channelName}-day{day}", e.g. "C1-day5"
	ChannelID string `json:"channelId"` // base channel name, e.g. "C1"
	Date      string `json:"date"`      // stringified day number, e.g. "5"
	Completed bool   `json:"completed"`
}

// Season is derived from a day number and never stored.
type Season struct {
	SeasonNumber      int `json:"seasonNumber"`      // 1-12
	StartDay          int `json:"startDay"`          // 1-480
	EndDay            int `json:"endDay"`            // 1-480
	StartChannelIndex int `json:"startChannelIndex"` // C1 = 0, C85 = 84, ...
	EndChannelIndex   int `json:"endChannelIndex"`   // C84 = 83, C168 = 167, ...
}

// SeasonDocument is the storage shard holding every entry of one season.
type SeasonDocument struct {
	SeasonNumber int             `json:"seasonNumber"`
	Entries      []ScheduleEntry `json:"entries"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Origin       string          `json:"origin,omitempty"` // session that wrote the document
}

// ScheduleStats summarizes completion across the loaded grid.
type ScheduleStats struct {
	TotalDays        int `json:"totalDays"`
	TotalChannels    int `json:"totalChannels"`
	CompletedEntries int `json:"completedEntries"`
	TotalEntries     int `json:"totalEntries"`
	PercentCompleted int `json:"percentCompleted"`
}
