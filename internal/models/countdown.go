package models

import "time"

// Countdown describes a repeating reminder cycle.
type Countdown struct {
	Key       string `yaml:"key" json:"key"` // local state key holding the cycle start
	Title     string `yaml:"title" json:"title"`
	CycleDays int    `yaml:"cycle_days" json:"cycleDays"`
}

// TimeLeft is the remaining time until a countdown resets.
type TimeLeft struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// CountdownStatus is a countdown evaluated at a point in time.
type CountdownStatus struct {
	Countdown Countdown `json:"countdown"`
	Start     time.Time `json:"start"`
	Left      TimeLeft  `json:"left"`
	Cycle     int       `json:"cycle"` // completed cycles since Start
	Reset     bool      `json:"reset"` // the start moved to now during this evaluation
}
