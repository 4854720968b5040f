package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/seasonal/internal/schedule"
)

// ParseChannel accepts a channel as "C97" or "97" and returns its 0-based
// index.
func ParseChannel(s string) (int, error) {
	raw := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "C")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid channel %q: use a channel name like C97", s)
	}
	index := n - 1
	if err := schedule.ValidateChannelIndex(index); err != nil {
		return 0, err
	}
	return index, nil
}
