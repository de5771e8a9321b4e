package tracker

import (
	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/models"
)

// Goal type names written by data version 3 and earlier.
var legacyGoalTypes = map[string]models.GoalType{
	"Кількісна": models.GoalQuantitative,
	"Чек-ліст":  models.GoalChecklist,
	"Планована": models.GoalScheduled,
}

// migrate brings stored goals up to the current data version. It runs with
// the lock held.
func (t *Tracker) migrate() {
	var version string
	if _, err := t.store.Load(database.KeyDataVersion, &version); err != nil {
		version = ""
	}
	if version == models.DataVersion {
		return
	}

	migrated := 0
	for i := range t.goals {
		if typ, ok := legacyGoalTypes[string(t.goals[i].Type)]; ok {
			t.goals[i].Type = typ
			migrated++
		}
	}
	if migrated > 0 {
		if err := t.store.Save(database.KeyGoals, t.goals); err != nil {
			t.log.Errorw("Failed to persist migrated goals", "error", err)
			return
		}
	}
	if err := t.store.Save(database.KeyDataVersion, models.DataVersion); err != nil {
		t.log.Errorw("Failed to persist data version", "error", err)
		return
	}
	t.log.Infow("Data migrated", "from", version, "to", models.DataVersion, "goals", migrated)
}

// dropInvalidGoals removes goals whose type or status is still unknown after
// migration. It runs with the lock held.
func (t *Tracker) dropInvalidGoals() {
	kept := t.goals[:0]
	for _, g := range t.goals {
		if !g.Type.IsValid() || !g.Status.IsValid() {
			t.log.Warnw("Dropping goal with unknown type or status",
				"goal", g.ID, "type", g.Type, "status", g.Status)
			continue
		}
		kept = append(kept, g)
	}
	if len(kept) == len(t.goals) {
		return
	}
	t.goals = kept
	if err := t.store.Save(database.KeyGoals, t.goals); err != nil {
		t.log.Errorw("Failed to persist goals", "error", err)
	}
}
