package models

import "time"

// NavigationPrefs is the persisted calendar position. Both fields are 1-based.
type NavigationPrefs struct {
	CurrentDay  int       `json:"currentDay"`
	CurrentPage int       `json:"currentPage"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Origin      string    `json:"origin,omitempty"`
}

// DefaultNavigationPrefs is the position used when nothing has been stored yet.
func DefaultNavigationPrefs() NavigationPrefs {
	return NavigationPrefs{CurrentDay: 1, CurrentPage: 1}
}

// UserSettings holds per-channel customization.
type UserSettings struct {
	ChannelSuffixes map[int]string `json:"channelSuffixes"` // channel index -> suffix, e.g. {0: "Boom Bap"}
	UpdatedAt       time.Time      `json:"updatedAt"`
	Origin          string         `json:"origin,omitempty"`
}

// Clone returns a copy whose suffix map can be mutated independently.
func (s UserSettings) Clone() UserSettings {
	out := s
	out.ChannelSuffixes = make(map[int]string, len(s.ChannelSuffixes))
	for k, v := range s.ChannelSuffixes {
		out.ChannelSuffixes[k] = v
	}
	return out
}
