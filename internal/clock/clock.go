package clock

import (
	"errors"
	"math"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// Clock is the single source of "now" for every engine.
type Clock interface {
	Now() time.Time
}

// System reports wall time in a fixed location.
type System struct {
	Loc *time.Location
}

func (s System) Now() time.Time {
	if s.Loc == nil {
		return time.Now()
	}
	return time.Now().In(s.Loc)
}

// Virtual overrides the calendar date of a base clock. While an override is
// set, Now returns that date at 12:00 in the base clock's location.
type Virtual struct {
	base Clock

	mu   sync.RWMutex
	date string
}

func NewVirtual(base Clock) *Virtual {
	return &Virtual{base: base}
}

func (v *Virtual) Now() time.Time {
	now := v.base.Now()

	v.mu.RLock()
	date := v.date
	v.mu.RUnlock()

	if date == "" {
		return now
	}
	day, err := ParseDayIn(date, now.Location())
	if err != nil {
		return now
	}
	return day.Add(12 * time.Hour)
}

// Set installs an override date. An empty string clears it.
func (v *Virtual) Set(date string) error {
	if date != "" {
		if _, err := ParseDay(date); err != nil {
			return err
		}
	}
	v.mu.Lock()
	v.date = date
	v.mu.Unlock()
	return nil
}

func (v *Virtual) Clear() {
	v.mu.Lock()
	v.date = ""
	v.mu.Unlock()
}

// Override returns the active override date, or "" when wall time is used.
func (v *Virtual) Override() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.date
}

// Fixed always returns the same instant. Used by tests and CLI tooling.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// DateKey formats t as YYYY-MM-DD in t's own location.
func DateKey(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDay parses a YYYY-MM-DD key as UTC midnight.
func ParseDay(key string) (time.Time, error) {
	return ParseDayIn(key, time.UTC)
}

func ParseDayIn(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, key, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ValidDay reports whether key is a real calendar date in YYYY-MM-DD form.
func ValidDay(key string) bool {
	_, err := ParseDay(key)
	return err == nil
}

// AddDays shifts a day key by n calendar days. Invalid keys are returned as is.
func AddDays(key string, n int) string {
	t, err := ParseDay(key)
	if err != nil {
		return key
	}
	return DateKey(t.AddDate(0, 0, n))
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b string) int {
	ta, err := ParseDay(a)
	if err != nil {
		return 0
	}
	tb, err := ParseDay(b)
	if err != nil {
		return 0
	}
	return int(math.Round(tb.Sub(ta).Hours() / 24))
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
