package entity

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusXWon       Status = "X_WON"
	StatusOWon       Status = "O_WON"
	StatusDraw       Status = "DRAW"
)

func (that Status) IsTerminal() bool {
	return that == StatusXWon || that == StatusOWon || that == StatusDraw
}

// WonBy maps a winning mark to its status.
func WonBy(mark Mark) Status {
	if mark == PlayerX {
		return StatusXWon
	}

	return StatusOWon
}

// Snapshot is the externally visible state of one game.
type Snapshot struct {
	ID             string `json:"gameId"`
	Board          Grid   `json:"board"`
	Status         Status `json:"status"`
	CurrentPlayer  Mark   `json:"currentPlayer"`
	StartingPlayer Mark   `json:"startingPlayer"`
	PlayerXPresent bool   `json:"playerXPresent"`
	PlayerOPresent bool   `json:"playerOPresent"`
	PlayerXReady   bool   `json:"playerXReady"`
	PlayerOReady   bool   `json:"playerOReady"`
	AIMode         bool   `json:"aiMode"`
	Error          string `json:"error,omitempty"`
}
