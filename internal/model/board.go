package model

import (
	"strings"
	"time"
)

const DefaultBoardTitle = "Untitled Board"

type Board struct {
	ID             string    `json:"id" gorm:"type:char(24);primaryKey"`
	Title          string    `json:"title" gorm:"not null"`
	AuthorUsername string    `json:"authorUsername" gorm:"not null;index:idx_boards_author_created"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime;index:idx_boards_author_created"`
}

// BoardTitle falls back to the default title for empty input.
func BoardTitle(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return DefaultBoardTitle
}

// SeedTasks returns the demonstration tasks placed on every new board, one per column in column order.
func SeedTasks(boardID, authorUsername string) []Task {
	return []Task{
		{
			Title:          "Przykładowe zadanie 1",
			Description:    "To jest Twoje pierwsze przykładowe zadanie.",
			Status:         StatusTodo,
			BoardID:        boardID,
			AuthorUsername: authorUsername,
		},
		{
			Title:          "Przykładowe zadanie 2",
			Description:    "Spróbuj przeciągnąć to zadanie do sekcji W trakcie!",
			Status:         StatusInProgress,
			BoardID:        boardID,
			AuthorUsername: authorUsername,
		},
		{
			Title:          "Przykładowe zadanie 3",
			Description:    "Oto ukończone zadanie.",
			Status:         StatusDone,
			BoardID:        boardID,
			AuthorUsername: authorUsername,
		},
	}
}
