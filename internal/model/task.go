package model

import (
	"regexp"
	"strings"
	"time"
)

// Status is the column a task currently sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the three board columns.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Next returns the column to the right of s, or s itself for the last column.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s && i+1 < len(Statuses) {
			return Statuses[i+1]
		}
	}
	return s
}

// Prev returns the column to the left of s, or s itself for the first column.
func (s Status) Prev() Status {
	for i, st := range Statuses {
		if st == s && i > 0 {
			return Statuses[i-1]
		}
	}
	return s
}

// Label is the column heading shown on boards.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

var idPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// IsValidID reports whether id has the store's identifier format: 24 hex characters.
// Anything else is a temporary, client-only identifier.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}

// CanonicalID returns id in the lowercase form the store writes. Identifiers
// compare case-insensitively.
func CanonicalID(id string) string {
	return strings.ToLower(id)
}

// Seed values for a freshly created task.
const (
	NewTaskTitle       = "Nowe zadanie"
	NewTaskDescription = "Kliknij Edit, aby zmienić opis zadania"
)

type Task struct {
	ID             string    `json:"id" gorm:"type:char(24);primaryKey"`
	Title          string    `json:"title" gorm:"not null"`
	Description    string    `json:"description"`
	Status         Status    `json:"status" gorm:"type:varchar(16);not null"`
	BoardID        string    `json:"boardId" gorm:"type:char(24);not null;index:idx_tasks_board_author"`
	AuthorUsername string    `json:"authorUsername" gorm:"not null;index:idx_tasks_board_author"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// NewTask returns the template used when a user adds a task to a board.
func NewTask(boardID, authorUsername string) Task {
	return Task{
		Title:          NewTaskTitle,
		Description:    NewTaskDescription,
		Status:         StatusTodo,
		BoardID:        boardID,
		AuthorUsername: authorUsername,
	}
}

// Validate checks the fields required to persist a task.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" || t.Status == "" || t.BoardID == "" || t.AuthorUsername == "" {
		return ErrMissingFields
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// TaskPatch carries the fields of a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

func (p TaskPatch) Validate() error {
	if p.Title == nil && p.Description == nil && p.Status == nil {
		return ErrEmptyPatch
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Apply writes the non-nil patch fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// Fields returns the patch as column/field name to value, keyed by the given names.
func (p TaskPatch) Fields(title, description, status string) map[string]interface{} {
	fields := make(map[string]interface{}, 3)
	if p.Title != nil {
		fields[title] = *p.Title
	}
	if p.Description != nil {
		fields[description] = *p.Description
	}
	if p.Status != nil {
		fields[status] = string(*p.Status)
	}
	return fields
}

// StatusPatch builds a patch that only moves a task.
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}

// ContentPatch builds a patch that only edits the title and description.
func ContentPatch(title, description string) TaskPatch {
	return TaskPatch{Title: &title, Description: &description}
}
