package task

import "time"

// Priority is the user-assigned importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Category buckets tasks for display and analytics.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryFitness  Category = "fitness"
	CategoryLearning Category = "learning"
	CategorySocial   Category = "social"
	CategoryCreative Category = "creative"
	CategoryHealth   Category = "health"
)

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryFitness,
	CategoryLearning,
	CategorySocial,
	CategoryCreative,
	CategoryHealth,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Task is the persistent schedule entry.
//
// ScheduledTime and EndTime are wall-clock "HH:MM" values with no date
// component. ScheduledDate ("YYYY-MM-DD") is the day the start falls on;
// a cross-day task's effective end is on the following date.
//
// Started may be true independently of Completed/Failed, but Completed and
// Failed are mutually exclusive terminal flags. Once either is set the
// engine reports that status unconditionally.
type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	ScheduledTime string    `json:"scheduledTime"`
	EndTime       string    `json:"endTime"`
	ScheduledDate string    `json:"scheduledDate"`
	Priority      Priority  `json:"priority"`
	Category      Category  `json:"category"`
	Started       bool      `json:"started"`
	Completed     bool      `json:"completed"`
	Failed        bool      `json:"failed"`
	NotifiedStart bool      `json:"notifiedStart"`
	NotifiedEnd   bool      `json:"notifiedEnd"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Terminal reports whether the task has reached an absorbing state.
func (t *Task) Terminal() bool {
	return t.Completed || t.Failed
}

// Draft holds the user-supplied fields of a task before validation.
// The store assigns ID, CreatedAt and UpdatedAt; lifecycle flags always
// start false regardless of what the caller put in the form.
type Draft struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	ScheduledTime string   `json:"scheduledTime"`
	EndTime       string   `json:"endTime"`
	ScheduledDate string   `json:"scheduledDate,omitempty"`
	Priority      Priority `json:"priority"`
	Category      Category `json:"category"`
}

// Patch is a partial update applied by Store.Update. Nil fields are left
// untouched. The boolean pointers exist so "set started=true" can be told
// apart from "don't change started".
type Patch struct {
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	ScheduledTime *string   `json:"scheduledTime,omitempty"`
	EndTime       *string   `json:"endTime,omitempty"`
	ScheduledDate *string   `json:"scheduledDate,omitempty"`
	Priority      *Priority `json:"priority,omitempty"`
	Category      *Category `json:"category,omitempty"`
	Started       *bool     `json:"started,omitempty"`
	Completed     *bool     `json:"completed,omitempty"`
	Failed        *bool     `json:"failed,omitempty"`
	NotifiedStart *bool     `json:"notifiedStart,omitempty"`
	NotifiedEnd   *bool     `json:"notifiedEnd,omitempty"`
}

// boolPtr is a convenience for building patches.
func boolPtr(b bool) *bool { return &b }

// StartPatch marks a task as started.
func StartPatch() Patch { return Patch{Started: boolPtr(true)} }

// CompletePatch marks a task as completed.
func CompletePatch() Patch { return Patch{Completed: boolPtr(true)} }

// FailPatch marks a task as failed. This is the engine's auto-fail
// write-back as well as the shape of an explicit user fail.
func FailPatch() Patch { return Patch{Failed: boolPtr(true)} }

// NotifiedStartPatch records that the start reminder fired.
func NotifiedStartPatch() Patch { return Patch{NotifiedStart: boolPtr(true)} }

// NotifiedEndPatch records that the end reminder fired.
func NotifiedEndPatch() Patch { return Patch{NotifiedEnd: boolPtr(true)} }

// Apply merges the patch into a copy of t and returns it. It does not bump
// UpdatedAt; that is the store's job at persist time.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ScheduledTime != nil {
		t.ScheduledTime = *p.ScheduledTime
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
	}
	if p.ScheduledDate != nil {
		t.ScheduledDate = *p.ScheduledDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Started != nil {
		t.Started = *p.Started
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Failed != nil {
		t.Failed = *p.Failed
	}
	if p.NotifiedStart != nil {
		t.NotifiedStart = *p.NotifiedStart
	}
	if p.NotifiedEnd != nil {
		t.NotifiedEnd = *p.NotifiedEnd
	}
	return t
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}
