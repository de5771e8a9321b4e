package models

import (
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
)

type WellnessMetrics struct {
	Mood          int `json:"mood" validate:"min=1,max=10"`
	Energy        int `json:"energy" validate:"min=1,max=10"`
	Stress        int `json:"stress" validate:"min=1,max=10"`
	Sleep         int `json:"sleep" validate:"min=1,max=10"`
	Concentration int `json:"concentration" validate:"min=1,max=10"`
}

type Media struct {
	Type string `json:"type" validate:"required,oneof=image audio video"`
	URL  string `json:"url" validate:"required"`
}

// GoalSnapshot freezes one goal's state as of a journal day.
type GoalSnapshot struct {
	GoalID        string     `json:"goalId"`
	Title         string     `json:"title"`
	Current       float64    `json:"current"`
	Target        float64    `json:"target"`
	DailyProgress float64    `json:"dailyProgress"`
	DailyTarget   float64    `json:"dailyTarget"`
	IsCompleted   bool       `json:"isCompleted"`
	IsDailyDone   bool       `json:"isDailyDone"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

type JournalEntry struct {
	ID            string           `json:"id"`
	Date          time.Time        `json:"date"`
	Content       string           `json:"content"`
	Tags          []string         `json:"tags"`
	Wellness      *WellnessMetrics `json:"wellness,omitempty"`
	GoalSnapshots []GoalSnapshot   `json:"goalSnapshots,omitempty"`
	Media         []Media          `json:"media"`
}

// Day is the entry's calendar day in loc.
func (e *JournalEntry) Day(loc *time.Location) string {
	return clock.DateKey(e.Date.In(loc))
}

func (e *JournalEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (e JournalEntry) Clone() JournalEntry {
	out := e
	if e.Tags != nil {
		out.Tags = make([]string, len(e.Tags))
		copy(out.Tags, e.Tags)
	}
	if e.Media != nil {
		out.Media = make([]Media, len(e.Media))
		copy(out.Media, e.Media)
	}
	if e.Wellness != nil {
		w := *e.Wellness
		out.Wellness = &w
	}
	if e.GoalSnapshots != nil {
		out.GoalSnapshots = make([]GoalSnapshot, len(e.GoalSnapshots))
		for i, s := range e.GoalSnapshots {
			out.GoalSnapshots[i] = s
			if s.CompletedAt != nil {
				at := *s.CompletedAt
				out.GoalSnapshots[i].CompletedAt = &at
			}
		}
	}
	return out
}

type CreateEntryRequest struct {
	Content  string           `json:"content" validate:"required"`
	Tags     []string         `json:"tags" validate:"dive,required,max=50"`
	Wellness *WellnessMetrics `json:"wellness"`
	Media    []Media          `json:"media" validate:"dive"`
}

type UpdateEntryRequest struct {
	Content *string  `json:"content"`
	Tags    []string `json:"tags" validate:"omitempty,dive,required,max=50"`
}

type EntryKind string

const (
	EntriesAll     EntryKind = "all"
	EntriesReports EntryKind = "reports"
	EntriesNotes   EntryKind = "notes"
)

// EntryFilter narrows a journal listing. Reports are entries carrying
// wellness metrics; notes are the rest.
type EntryFilter struct {
	Search string    `json:"search" query:"search"`
	Tag    string    `json:"tag" query:"tag"`
	Kind   EntryKind `json:"type" query:"type" validate:"omitempty,oneof=all reports notes"`
}

type GenerateEntryRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}
