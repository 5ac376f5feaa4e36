package entity

type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

const BoardSize = 3

// IsPlayer reports whether the mark is one of the two sides.
func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other side. EmptyCell has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// Grid is a row-major copy of the board. Being an array, it is copied on assignment.
type Grid [BoardSize][BoardSize]Mark

func (that *Grid) IsFull() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

type Board struct {
	cells Grid
}

func NewBoard() *Board {
	return &Board{}
}

// Place writes mark into an empty in-range cell. It never overwrites a placed mark.
func (that *Board) Place(row, col int, mark Mark) bool {
	if !InBounds(row, col) || !mark.IsPlayer() {
		return false
	}

	if that.cells[row][col] != EmptyCell {
		return false
	}

	that.cells[row][col] = mark

	return true
}

func (that *Board) IsFull() bool {
	return that.cells.IsFull()
}

func (that *Board) Snapshot() Grid {
	return that.cells
}

// ParseMark reads a side from its wire form. The empty string is EmptyCell.
func ParseMark(s string) (Mark, bool) {
	switch mark := Mark(s); mark {
	case EmptyCell, PlayerX, PlayerO:
		return mark, true
	default:
		return EmptyCell, false
	}
}
