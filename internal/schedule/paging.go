package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/models"
)

var ErrPageOutOfRange = errors.New("page out of range")

// Ellipsis marks a gap in the list returned by PageNumbers.
const Ellipsis = -1

// TotalPages is the number of channel pages a day is split into.
func TotalPages(perPage int) int {
	if perPage <= 0 {
		perPage = constants.ChannelsPerPage
	}
	return (constants.ChannelsPerSeason + perPage - 1) / perPage
}

// ValidatePage reports whether page is a valid 1-based page number.
func ValidatePage(page, perPage int) error {
	total := TotalPages(perPage)
	if page < 1 || page > total {
		return fmt.Errorf("%w: %d (valid: 1-%d)", ErrPageOutOfRange, page, total)
	}
	return nil
}

// ChannelIndexesForDay lists the global channel indexes scheduled on a day.
func ChannelIndexesForDay(day int) []int {
	s := SeasonForDay(day)
	out := make([]int, 0, constants.ChannelsPerSeason)
	for i := s.StartChannelIndex; i <= s.EndChannelIndex; i++ {
		out = append(out, i)
	}
	return out
}

// ChannelIndexesForPage returns the slice of a day's channels shown on a page.
func ChannelIndexesForPage(day, page, perPage int) []int {
	if perPage <= 0 {
		perPage = constants.ChannelsPerPage
	}
	all := ChannelIndexesForDay(day)
	start := (page - 1) * perPage
	if start < 0 || start >= len(all) {
		return nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// PageNumbers returns the page numbers to display around current, with
// Ellipsis standing in for skipped ranges.
func PageNumbers(current, total int) []int {
	maxVisible := constants.MaxVisiblePages
	var pages []int

	switch {
	case total <= maxVisible:
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
	case current <= 4:
		for i := 1; i <= 5; i++ {
			pages = append(pages, i)
		}
		pages = append(pages, Ellipsis, total)
	case current >= total-3:
		pages = append(pages, 1, Ellipsis)
		for i := total - 4; i <= total; i++ {
			pages = append(pages, i)
		}
	default:
		pages = append(pages, 1, Ellipsis)
		for i := current - 1; i <= current+1; i++ {
			pages = append(pages, i)
		}
		pages = append(pages, Ellipsis, total)
	}

	return pages
}

// EntriesForDay filters entries down to one day.
func EntriesForDay(entries []models.ScheduleEntry, day int) []models.ScheduleEntry {
	var out []models.ScheduleEntry
	for _, e := range entries {
		if EntryDay(e) == day {
			out = append(out, e)
		}
	}
	return out
}

// EntriesForChannel filters entries down to one channel.
func EntriesForChannel(entries []models.ScheduleEntry, channelID string) []models.ScheduleEntry {
	var out []models.ScheduleEntry
	for _, e := range entries {
		if e.ChannelID == channelID {
			out = append(out, e)
		}
	}
	return out
}

// ChannelFilter selects channels by whether they carry a suffix.
type ChannelFilter string

const (
	FilterAll        ChannelFilter = "all"
	FilterWithSuffix ChannelFilter = "with-suffix"
	FilterNoSuffix   ChannelFilter = "no-suffix"
)

// FilterChannels narrows channel indexes by suffix presence and a search term
// matched against the base name and the suffix, case-insensitively.
func FilterChannels(indexes []int, suffixes map[int]string, mode ChannelFilter, search string) []int {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []int
	for _, idx := range indexes {
		suffix := suffixes[idx]
		switch mode {
		case FilterWithSuffix:
			if suffix == "" {
				continue
			}
		case FilterNoSuffix:
			if suffix != "" {
				continue
			}
		}
		if search != "" {
			name := strings.ToLower(BaseChannelName(idx))
			if !strings.Contains(name, search) && !strings.Contains(strings.ToLower(suffix), search) {
				continue
			}
		}
		out = append(out, idx)
	}
	return out
}
