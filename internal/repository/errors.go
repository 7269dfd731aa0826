package repository

import "errors"

// Common repository errors
var (
	// ErrBoardNotFound is returned when a board is not found
	ErrBoardNotFound = errors.New("board not found")

	// ErrCardNotFound is returned when a card is not found
	ErrCardNotFound = errors.New("card not found")

	// ErrTaskNotFound is returned when no task matches the id and owner
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateAuthor is returned when a username or email is already taken
	ErrDuplicateAuthor = errors.New("author already exists")
)
