package tracker

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Storage is the key-value collaborator the tracker persists through.
type Storage interface {
	Load(key string, dst any) (bool, error)
	Save(key string, v any) error
	Remove(key string) error
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags and reports failures as a *ValidationError.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fromValidator(err)
	}
	return nil
}

// Alert is raised at the start of a new day for goals that need attention.
type Alert struct {
	GoalID string
	Title  string
	Kind   AlertKind
}

type AlertKind string

const (
	AlertFrozen   AlertKind = "frozen"
	AlertCritical AlertKind = "critical"
)

// Tracker owns the goal and journal collections. Every public method takes
// the lock, runs Tick, then performs its work, so operations never overlap.
type Tracker struct {
	mu    sync.Mutex
	store Storage
	clock clock.Clock
	log   *zap.SugaredLogger

	goals     []models.Goal
	entries   []models.JournalEntry
	lastReset string

	onDayStart func([]Alert)
}

func New(store Storage, clk clock.Clock, log *zap.SugaredLogger) *Tracker {
	return &Tracker{
		store:   store,
		clock:   clk,
		log:     log,
		goals:   []models.Goal{},
		entries: []models.JournalEntry{},
	}
}

// OnDayStart registers a hook called once per new day with the goals that
// froze or turned critical. The hook runs under the tracker lock and must not
// call back into the tracker.
func (t *Tracker) OnDayStart(fn func([]Alert)) {
	t.mu.Lock()
	t.onDayStart = fn
	t.mu.Unlock()
}

// Load replaces in-memory state with what storage holds. Absent or corrupt
// values load as empty collections.
func (t *Tracker) Load() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.goals = []models.Goal{}
	if _, err := t.store.Load(database.KeyGoals, &t.goals); err != nil {
		t.log.Warnw("Goals unreadable, starting empty", "error", err)
		t.goals = []models.Goal{}
	}
	if t.goals == nil {
		t.goals = []models.Goal{}
	}

	t.entries = []models.JournalEntry{}
	if _, err := t.store.Load(database.KeyJournal, &t.entries); err != nil {
		t.log.Warnw("Journal unreadable, starting empty", "error", err)
		t.entries = []models.JournalEntry{}
	}
	if t.entries == nil {
		t.entries = []models.JournalEntry{}
	}

	t.lastReset = ""
	if _, err := t.store.Load(database.KeyLastResetDate, &t.lastReset); err != nil {
		t.lastReset = ""
	}

	t.migrate()
	t.dropInvalidGoals()

	t.log.Infow("Tracker loaded", "goals", len(t.goals), "entries", len(t.entries))
}

// Tick applies any pending day rollover and activations.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()
}

// Goals returns a copy of every goal, newest first.
func (t *Tracker) Goals() []models.Goal {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()
	return cloneGoals(t.goals)
}

func (t *Tracker) Goal(id string) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	i := t.indexOf(id)
	if i < 0 {
		return models.Goal{}, ErrGoalNotFound
	}
	return t.goals[i].Clone(), nil
}

// View is a consistent copy of tracker state for read-only analytics.
type View struct {
	Goals   []models.Goal
	Entries []models.JournalEntry
	Now     time.Time
}

func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()
	return View{
		Goals:   cloneGoals(t.goals),
		Entries: cloneEntries(t.entries),
		Now:     t.clock.Now(),
	}
}

// Now is the tracker's current time, virtual date included.
func (t *Tracker) Now() time.Time {
	return t.clock.Now()
}

func (t *Tracker) today() (time.Time, string) {
	now := t.clock.Now()
	return now, clock.DateKey(now)
}

func (t *Tracker) indexOf(id string) int {
	for i := range t.goals {
		if t.goals[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) entryIndex(id string) int {
	for i := range t.entries {
		if t.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// saveGoals persists goals and refreshes today's journal snapshots.
// Persistence is best effort; in-memory state stays authoritative.
func (t *Tracker) saveGoals() {
	if err := t.store.Save(database.KeyGoals, t.goals); err != nil {
		t.log.Errorw("Failed to persist goals", "error", err)
	}
	if t.refreshTodaySnapshots() {
		t.saveEntries()
	}
}

func (t *Tracker) saveEntries() {
	if err := t.store.Save(database.KeyJournal, t.entries); err != nil {
		t.log.Errorw("Failed to persist journal", "error", err)
	}
}

func cloneGoals(in []models.Goal) []models.Goal {
	out := make([]models.Goal, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneEntries(in []models.JournalEntry) []models.JournalEntry {
	out := make([]models.JournalEntry, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
