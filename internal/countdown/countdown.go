package countdown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/models"
)

var ErrUnknownCountdown = errors.New("unknown countdown")

const day = 24 * time.Hour

// Defaults are the two reminder cycles the calendar ships with.
func Defaults() []models.Countdown {
	return []models.Countdown{
		{Key: constants.CountdownHaircutKey, Title: constants.CountdownHaircutTitle, CycleDays: constants.CountdownHaircutCycleDays},
		{Key: constants.CountdownTherapyKey, Title: constants.CountdownTherapyTitle, CycleDays: constants.CountdownTherapyCycleDays},
	}
}

// Remaining computes the time left in the current cycle of a countdown that
// started at start. reset is true when no time is left, in which case left is
// a full cycle and the caller should move the start to now.
func Remaining(now, start time.Time, cycleDays int) (left models.TimeLeft, cycle int, reset bool) {
	cycleLen := time.Duration(cycleDays) * day
	if cycleLen <= 0 {
		return models.TimeLeft{}, 0, true
	}

	elapsed := now.Sub(start)
	cycle = int(elapsed / cycleLen)
	if elapsed < 0 && elapsed%cycleLen != 0 {
		cycle-- // floor, not truncation
	}
	nextReset := start.Add(time.Duration(cycle+1) * cycleLen)
	diff := nextReset.Sub(now)
	if diff <= 0 {
		return models.TimeLeft{Days: cycleDays}, cycle, true
	}

	return models.TimeLeft{
		Days:    int(diff / day),
		Hours:   int(diff/time.Hour) % 24,
		Minutes: int(diff/time.Minute) % 60,
		Seconds: int(diff/time.Second) % 60,
	}, cycle, false
}

// FormatLeft renders time left as "3d 04h 12m 09s".
func FormatLeft(left models.TimeLeft) string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", left.Days, left.Hours, left.Minutes, left.Seconds)
}

// Notifier delivers a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Tracker evaluates countdowns against their locally stored start instants.
type Tracker struct {
	state      *LocalState
	countdowns []models.Countdown
	notifier   Notifier
	now        func() time.Time
	log        *log.Logger
}

type Option func(*Tracker)

// WithNotifier sends a notification whenever a countdown starts a new cycle.
func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(state *LocalState, countdowns []models.Countdown, opts ...Option) *Tracker {
	if len(countdowns) == 0 {
		countdowns = Defaults()
	}
	t := &Tracker{
		state:      state,
		countdowns: countdowns,
		now:        time.Now,
		log:        logger.With("component", "countdown"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Countdowns() []models.Countdown {
	return append([]models.Countdown(nil), t.countdowns...)
}

func (t *Tracker) find(key string) (models.Countdown, error) {
	for _, c := range t.countdowns {
		if c.Key == key {
			return c, nil
		}
	}
	return models.Countdown{}, fmt.Errorf("%w: %s", ErrUnknownCountdown, key)
}

// All evaluates every countdown in definition order.
func (t *Tracker) All(ctx context.Context) ([]models.CountdownStatus, error) {
	out := make([]models.CountdownStatus, 0, len(t.countdowns))
	for _, c := range t.countdowns {
		st, err := t.evaluate(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (t *Tracker) Status(ctx context.Context, key string) (models.CountdownStatus, error) {
	c, err := t.find(key)
	if err != nil {
		return models.CountdownStatus{}, err
	}
	return t.evaluate(ctx, c)
}

// Restart moves the start of a countdown to now.
func (t *Tracker) Restart(ctx context.Context, key string) (models.CountdownStatus, error) {
	c, err := t.find(key)
	if err != nil {
		return models.CountdownStatus{}, err
	}
	now := t.now()
	if err := t.setStart(c, now); err != nil {
		return models.CountdownStatus{}, err
	}
	t.log.Info("Countdown restarted", "countdown", c.Key)
	return models.CountdownStatus{
		Countdown: c,
		Start:     now,
		Left:      models.TimeLeft{Days: c.CycleDays},
		Reset:     true,
	}, nil
}

func (t *Tracker) evaluate(ctx context.Context, c models.Countdown) (models.CountdownStatus, error) {
	now := t.now()
	start, err := t.start(c, now)
	if err != nil {
		return models.CountdownStatus{}, err
	}

	left, cycle, reset := Remaining(now, start, c.CycleDays)
	if reset {
		start, cycle = now, 0
		if err := t.setStart(c, now); err != nil {
			return models.CountdownStatus{}, err
		}
		t.log.Debug("Countdown cycle elapsed, start reset", "countdown", c.Key)
		t.announce(ctx, c)
	} else if t.advanced(c, cycle) {
		t.announce(ctx, c)
	}

	return models.CountdownStatus{
		Countdown: c,
		Start:     start,
		Left:      left,
		Cycle:     cycle,
		Reset:     reset,
	}, nil
}

// start returns the stored start instant, creating it at now on first read.
func (t *Tracker) start(c models.Countdown, now time.Time) (time.Time, error) {
	raw, ok, err := t.state.Get(c.Key)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		if start, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return start, nil
		}
		t.log.Warn("Unreadable countdown start, restarting", "countdown", c.Key, "value", raw)
	}
	if err := t.setStart(c, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

func (t *Tracker) setStart(c models.Countdown, at time.Time) error {
	if err := t.state.Set(c.Key, at.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return t.state.Set(cycleKey(c), "0")
}

func cycleKey(c models.Countdown) string { return c.Key + ".cycle" }

// advanced records cycle as seen and reports whether it is newer than the
// last cycle this machine observed.
func (t *Tracker) advanced(c models.Countdown, cycle int) bool {
	raw, ok, err := t.state.Get(cycleKey(c))
	if err != nil {
		t.log.Warn("Failed to read countdown cycle", "countdown", c.Key, "error", err)
		return false
	}
	seen, _ := strconv.Atoi(raw)
	if ok && cycle <= seen {
		return false
	}
	if err := t.state.Set(cycleKey(c), strconv.Itoa(cycle)); err != nil {
		t.log.Warn("Failed to record countdown cycle", "countdown", c.Key, "error", err)
	}
	return ok
}

func (t *Tracker) announce(ctx context.Context, c models.Countdown) {
	if t.notifier == nil {
		return
	}
	text := fmt.Sprintf("%s: a new %d-day cycle has started", c.Title, c.CycleDays)
	if err := t.notifier.Notify(ctx, text); err != nil {
		t.log.Warn("Failed to send countdown notification", "countdown", c.Key, "error", err)
	}
}
