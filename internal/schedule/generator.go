package schedule

import (
	"strconv"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/models"
)

// Generate builds the full entry grid, season by season, day by day, channel by
// channel, with every entry pending. It has no side effects and returns the
// same grid on every call; it is only meant to seed an empty store.
func Generate() []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0, constants.TotalEntries)

	for season := 1; season <= constants.TotalSeasons; season++ {
		s := SeasonByNumber(season)
		for day := s.StartDay; day <= s.EndDay; day++ {
			date := strconv.Itoa(day)
			for channelIndex := s.StartChannelIndex; channelIndex <= s.EndChannelIndex; channelIndex++ {
				name := BaseChannelName(channelIndex)
				entries = append(entries, models.ScheduleEntry{
					ID:        name + "-day" + date,
					ChannelID: name,
					Date:      date,
					Completed: false,
				})
			}
		}
	}

	return entries
}

// GenerateSeason builds only the entries of one season.
func GenerateSeason(seasonNumber int) []models.ScheduleEntry {
	s := SeasonByNumber(seasonNumber)
	entries := make([]models.ScheduleEntry, 0, constants.DaysPerSeason*constants.ChannelsPerSeason)
	for day := s.StartDay; day <= s.EndDay; day++ {
		for channelIndex := s.StartChannelIndex; channelIndex <= s.EndChannelIndex; channelIndex++ {
			entries = append(entries, models.ScheduleEntry{
				ID:        EntryID(channelIndex, day),
				ChannelID: BaseChannelName(channelIndex),
				Date:      strconv.Itoa(day),
			})
		}
	}
	return entries
}

// GroupBySeason partitions entries by the season derived from their id.
func GroupBySeason(entries []models.ScheduleEntry) map[int][]models.ScheduleEntry {
	groups := make(map[int][]models.ScheduleEntry)
	for _, e := range entries {
		season := SeasonOfEntryID(e.ID)
		groups[season] = append(groups[season], e)
	}
	return groups
}
