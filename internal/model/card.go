package model

import (
	"strings"
	"time"
)

// Card is a positioned note attached to a board, removed together with it.
type Card struct {
	ID             string    `json:"id" gorm:"type:char(24);primaryKey"`
	BoardID        string    `json:"boardId" gorm:"type:char(24);not null;index:idx_cards_board_author"`
	AuthorUsername string    `json:"authorUsername" gorm:"not null;index:idx_cards_board_author"`
	Title          string    `json:"title" gorm:"not null"`
	Content        string    `json:"content"`
	Position       int       `json:"position" gorm:"not null"`
	Status         Status    `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (c *Card) Validate() error {
	if strings.TrimSpace(c.Title) == "" || c.BoardID == "" || c.AuthorUsername == "" {
		return ErrMissingFields
	}
	if c.Status == "" {
		c.Status = StatusTodo
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// CardPatch carries the mutable card fields. Board and owner never change.
type CardPatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Position *int    `json:"position,omitempty"`
	Status   *Status `json:"status,omitempty"`
}

func (p CardPatch) Validate() error {
	if p.Title == nil && p.Content == nil && p.Position == nil && p.Status == nil {
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
