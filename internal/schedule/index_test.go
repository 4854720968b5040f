package schedule

import (
	"errors"
	"fmt"
	"testing"

	"github.com/julianstephens/seasonal/internal/constants"
)

func TestSeasonForDay_ContainsDay(t *testing.T) {
	for day := 1; day <= constants.TotalDays; day++ {
		s := SeasonForDay(day)
		if day < s.StartDay || day > s.EndDay {
			t.Fatalf("SeasonForDay(%d) = [%d, %d], day not inside", day, s.StartDay, s.EndDay)
		}
		if s.EndDay-s.StartDay+1 != constants.DaysPerSeason {
			t.Fatalf("SeasonForDay(%d) spans %d days, want %d", day, s.EndDay-s.StartDay+1, constants.DaysPerSeason)
		}
	}
}

func TestSeasonForDay_Boundaries(t *testing.T) {
	for n := 1; n <= constants.TotalSeasons; n++ {
		last := n * constants.DaysPerSeason
		first := last - constants.DaysPerSeason + 1
		if got := SeasonForDay(last).SeasonNumber; got != n {
			t.Errorf("SeasonForDay(%d).SeasonNumber = %d, want %d", last, got, n)
		}
		if got := SeasonForDay(first).SeasonNumber; got != n {
			t.Errorf("SeasonForDay(%d).SeasonNumber = %d, want %d", first, got, n)
		}
	}
}

func TestSeasonForDay_ChannelRangesDoNotOverlap(t *testing.T) {
	prevEnd := -1
	for n := 1; n <= constants.TotalSeasons; n++ {
		s := SeasonByNumber(n)
		if s.StartChannelIndex != prevEnd+1 {
			t.Errorf("season %d starts at channel %d, want %d", n, s.StartChannelIndex, prevEnd+1)
		}
		if s.EndChannelIndex-s.StartChannelIndex+1 != constants.ChannelsPerSeason {
			t.Errorf("season %d has %d channels", n, s.EndChannelIndex-s.StartChannelIndex+1)
		}
		prevEnd = s.EndChannelIndex
	}
	if prevEnd != constants.TotalChannels-1 {
		t.Errorf("last channel index = %d, want %d", prevEnd, constants.TotalChannels-1)
	}
}

func TestChannelName(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		suffixes map[int]string
		want     string
	}{
		{"first channel", 0, nil, "C1"},
		{"last channel of season 1", 83, nil, "C84"},
		{"first channel of season 2", 84, nil, "C85"},
		{"with suffix", 0, map[int]string{0: "Boom Bap"}, "C1 - Boom Bap"},
		{"empty suffix suppressed", 0, map[int]string{0: ""}, "C1"},
		{"suffix for another channel", 1, map[int]string{0: "Boom Bap"}, "C2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChannelName(tt.index, tt.suffixes); got != tt.want {
				t.Errorf("ChannelName(%d, %v) = %q, want %q", tt.index, tt.suffixes, got, tt.want)
			}
		})
	}
}

func TestSeasonOfChannelNumber_AgreesWithSeasonForDay(t *testing.T) {
	for day := 1; day <= constants.TotalDays; day++ {
		s := SeasonForDay(day)
		for idx := s.StartChannelIndex; idx <= s.EndChannelIndex; idx++ {
			if got := SeasonOfChannelNumber(idx + 1); got != s.SeasonNumber {
				t.Fatalf("SeasonOfChannelNumber(%d) = %d, SeasonForDay(%d) = %d", idx+1, got, day, s.SeasonNumber)
			}
		}
	}
}

func TestSeasonOfEntryID_IgnoresDay(t *testing.T) {
	for _, n := range []int{1, 84, 85, 168, 169, 1008} {
		want := (n-1)/constants.ChannelsPerSeason + 1
		for _, d := range []int{1, 40, 41, 480, 9999} {
			id := fmt.Sprintf("C%d-day%d", n, d)
			if got := SeasonOfEntryID(id); got != want {
				t.Errorf("SeasonOfEntryID(%q) = %d, want %d", id, got, want)
			}
		}
	}
}

func TestSeasonOfEntryID_MalformedFallsBackToFirstSeason(t *testing.T) {
	for _, id := range []string{"", "garbage", "C-day1", "X5-day2"} {
		if got := SeasonOfEntryID(id); got != 1 {
			t.Errorf("SeasonOfEntryID(%q) = %d, want 1", id, got)
		}
	}
}

func TestParseEntryID(t *testing.T) {
	n, d, err := ParseEntryID("C85-day41")
	if err != nil {
		t.Fatalf("ParseEntryID() error = %v", err)
	}
	if n != 85 || d != 41 {
		t.Errorf("ParseEntryID() = (%d, %d), want (85, 41)", n, d)
	}

	if _, _, err := ParseEntryID("C0-day1"); !errors.Is(err, ErrInvalidEntryID) {
		t.Errorf("ParseEntryID(C0-day1) error = %v, want ErrInvalidEntryID", err)
	}
}

func TestValidateDay(t *testing.T) {
	for _, day := range []int{1, 240, constants.TotalDays} {
		if err := ValidateDay(day); err != nil {
			t.Errorf("ValidateDay(%d) = %v, want nil", day, err)
		}
	}
	for _, day := range []int{0, -1, constants.TotalDays + 1} {
		if err := ValidateDay(day); !errors.Is(err, ErrDayOutOfRange) {
			t.Errorf("ValidateDay(%d) = %v, want ErrDayOutOfRange", day, err)
		}
	}
}

func TestValidateChannelIndex(t *testing.T) {
	if err := ValidateChannelIndex(0); err != nil {
		t.Errorf("ValidateChannelIndex(0) = %v", err)
	}
	if err := ValidateChannelIndex(constants.TotalChannels); !errors.Is(err, ErrChannelOutOfRange) {
		t.Errorf("ValidateChannelIndex(%d) = %v, want ErrChannelOutOfRange", constants.TotalChannels, err)
	}
}

func TestSeasonOfEntryID_ShardsOnChannelPrefix(t *testing.T) {
	tests := map[string]int{
		"C90-x":       2,
		"C85-":        2,
		"C1-anything": 1,
		"C1008-day":   12,
		"C2000-day1":  24,
	}
	for id, want := range tests {
		if got := SeasonOfEntryID(id); got != want {
			t.Errorf("SeasonOfEntryID(%q) = %d, want %d", id, got, want)
		}
	}
}

func TestValidSeason(t *testing.T) {
	for n, want := range map[int]bool{0: false, 1: true, 12: true, 13: false, 24: false} {
		if got := ValidSeason(n); got != want {
			t.Errorf("ValidSeason(%d) = %v, want %v", n, got, want)
		}
	}
}
