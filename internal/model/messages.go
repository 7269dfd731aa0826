package model

// Messages shown to the user after a task action fails.
const (
	MsgCreateFailed = "Nie udało się utworzyć zadania. Spróbuj ponownie."
	MsgMoveFailed   = "Nie udało się zaktualizować statusu zadania. Spróbuj ponownie."
	MsgEditFailed   = "Nie udało się zaktualizować zadania. Spróbuj ponownie."
	MsgDeleteFailed = "Nie udało się usunąć zadania. Spróbuj ponownie."
)
