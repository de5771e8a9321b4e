package tracker

import (
	"strings"

	"github.com/arnold/lifesync-api/internal/models"
	"github.com/google/uuid"
)

// AddEntry prepends a journal entry dated now and stamps it with the current
// goal snapshots.
func (t *Tracker) AddEntry(req models.CreateEntryRequest) (models.JournalEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	verr := &ValidationError{}
	if err := validate.Struct(req); err != nil {
		verr = fromValidator(err)
	}
	if strings.TrimSpace(req.Content) == "" {
		verr.add("content", "is required")
	}
	if err := verr.orNil(); err != nil {
		return models.JournalEntry{}, err
	}

	now, _ := t.today()
	e := models.JournalEntry{
		ID:      uuid.NewString(),
		Date:    now,
		Content: req.Content,
		Tags:    normalizeTags(req.Tags),
		Media:   append([]models.Media{}, req.Media...),
	}
	if req.Wellness != nil {
		w := *req.Wellness
		e.Wellness = &w
	}

	t.entries = append([]models.JournalEntry{e}, t.entries...)
	if t.entries[0].GoalSnapshots == nil {
		t.entries[0].GoalSnapshots = t.captureSnapshots()
	}
	t.saveEntries()
	t.log.Infow("Journal entry added", "entry", e.ID, "report", e.Wellness != nil)

	return t.entries[0].Clone(), nil
}

// EditEntry replaces content and/or tags. The entry keeps its date and
// snapshots.
func (t *Tracker) EditEntry(id string, req models.UpdateEntryRequest) (models.JournalEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	if err := Validate(req); err != nil {
		return models.JournalEntry{}, err
	}
	i := t.entryIndex(id)
	if i < 0 {
		return models.JournalEntry{}, ErrEntryNotFound
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return models.JournalEntry{}, &ValidationError{Fields: map[string]string{"content": "is required"}}
		}
		t.entries[i].Content = *req.Content
	}
	if req.Tags != nil {
		t.entries[i].Tags = normalizeTags(req.Tags)
	}

	t.saveEntries()
	return t.entries[i].Clone(), nil
}

func (t *Tracker) RemoveTag(id, tag string) (models.JournalEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	i := t.entryIndex(id)
	if i < 0 {
		return models.JournalEntry{}, ErrEntryNotFound
	}
	kept := t.entries[i].Tags[:0]
	for _, existing := range t.entries[i].Tags {
		if existing != tag {
			kept = append(kept, existing)
		}
	}
	t.entries[i].Tags = kept

	t.saveEntries()
	return t.entries[i].Clone(), nil
}

func (t *Tracker) DeleteEntry(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	i := t.entryIndex(id)
	if i < 0 {
		return ErrEntryNotFound
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	t.saveEntries()
	t.log.Infow("Journal entry deleted", "entry", id)
	return nil
}

// Entries returns the journal newest first, narrowed by f.
func (t *Tracker) Entries(f models.EntryFilter) []models.JournalEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []models.JournalEntry{}
	for i := range t.entries {
		e := &t.entries[i]
		if search != "" && !matchesSearch(e, search) {
			continue
		}
		if f.Tag != "" && !e.HasTag(f.Tag) {
			continue
		}
		switch f.Kind {
		case models.EntriesReports:
			if e.Wellness == nil {
				continue
			}
		case models.EntriesNotes:
			if e.Wellness != nil {
				continue
			}
		}
		out = append(out, e.Clone())
	}
	return out
}

// Tags lists every distinct tag in first-seen order.
func (t *Tracker) Tags() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	seen := map[string]bool{}
	out := []string{}
	for _, e := range t.entries {
		for _, tag := range e.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}

func matchesSearch(e *models.JournalEntry, search string) bool {
	if strings.Contains(strings.ToLower(e.Content), search) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func normalizeTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
