package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/models"
)

var (
	ErrDayOutOfRange     = errors.New("day out of range")
	ErrChannelOutOfRange = errors.New("channel index out of range")
	ErrInvalidEntryID    = errors.New("invalid entry id")
)

var (
	entryIDPattern = regexp.MustCompile(`^C(\d+)-day(\d+)$`)
	// channelPrefix is all sharding needs; the day part is not checked.
	channelPrefix = regexp.MustCompile(`^C(\d+)-`)
)

// ValidateDay reports whether day lies inside the grid.
func ValidateDay(day int) error {
	if day < 1 || day > constants.TotalDays {
		return fmt.Errorf("%w: %d (valid: 1-%d)", ErrDayOutOfRange, day, constants.TotalDays)
	}
	return nil
}

// ValidateChannelIndex reports whether a 0-based channel index lies inside the grid.
func ValidateChannelIndex(index int) error {
	if index < 0 || index >= constants.TotalChannels {
		return fmt.Errorf("%w: %d (valid: 0-%d)", ErrChannelOutOfRange, index, constants.TotalChannels-1)
	}
	return nil
}

// SeasonForDay derives the season a day belongs to. The result is undefined for
// days outside the grid; call ValidateDay first.
func SeasonForDay(day int) models.Season {
	seasonNumber := (day + constants.DaysPerSeason - 1) / constants.DaysPerSeason
	return SeasonByNumber(seasonNumber)
}

// SeasonByNumber returns the day and channel ranges of a 1-based season.
func SeasonByNumber(n int) models.Season {
	return models.Season{
		SeasonNumber:      n,
		StartDay:          (n-1)*constants.DaysPerSeason + 1,
		EndDay:            n * constants.DaysPerSeason,
		StartChannelIndex: (n - 1) * constants.ChannelsPerSeason,
		EndChannelIndex:   n*constants.ChannelsPerSeason - 1,
	}
}

// BaseChannelName returns "C{index+1}".
func BaseChannelName(index int) string {
	return "C" + strconv.Itoa(index+1)
}

// ChannelName returns the display name of a channel, with its suffix appended
// when one is registered and non-empty. suffixes may be nil.
func ChannelName(index int, suffixes map[int]string) string {
	base := BaseChannelName(index)
	if suffix := suffixes[index]; suffix != "" {
		return base + " - " + suffix
	}
	return base
}

// SeasonOfChannelNumber maps a 1-based channel number to the season that owns it.
// Storage is sharded on this value.
func SeasonOfChannelNumber(channelNumber int) int {
	return (channelNumber-1)/constants.ChannelsPerSeason + 1
}

// EntryID builds the identifier of the entry for a channel on a day.
func EntryID(channelIndex, day int) string {
	return BaseChannelName(channelIndex) + "-day" + strconv.Itoa(day)
}

// ParseEntryID splits "C{n}-day{d}" into its channel number and day.
func ParseEntryID(id string) (channelNumber, day int, err error) {
	m := entryIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidEntryID, id)
	}
	channelNumber, err = strconv.Atoi(m[1])
	if err != nil || channelNumber < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidEntryID, id)
	}
	day, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidEntryID, id)
	}
	return channelNumber, day, nil
}

// SeasonOfEntryID returns the storage season of an entry from its "C{n}-"
// prefix. Ids without one land in season 1. The result can lie outside the
// grid for channel numbers past the last season; see ValidSeason.
func SeasonOfEntryID(id string) int {
	m := channelPrefix.FindStringSubmatch(id)
	if m == nil {
		return 1
	}
	channelNumber, err := strconv.Atoi(m[1])
	if err != nil || channelNumber < 1 {
		return 1
	}
	return SeasonOfChannelNumber(channelNumber)
}

// ValidSeason reports whether n names one of the grid's seasons.
func ValidSeason(n int) bool {
	return n >= 1 && n <= constants.TotalSeasons
}

// EntryDay returns the day number stored on an entry, or 0 if it is malformed.
func EntryDay(e models.ScheduleEntry) int {
	day, err := strconv.Atoi(e.Date)
	if err != nil {
		return 0
	}
	return day
}
