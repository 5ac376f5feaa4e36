package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
)

type cell struct {
	row, col int
}

// WinLines lists the three rows, three columns and two diagonals in evaluation order.
var WinLines = [8][3]cell{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Evaluate reports the status of a grid. It panics if both sides own a complete
// line, which no sequence of legal moves can produce.
func Evaluate(grid entity.Grid) entity.Status {
	winner := entity.EmptyCell

	for _, line := range WinLines {
		a := grid[line[0].row][line[0].col]
		b := grid[line[1].row][line[1].col]
		c := grid[line[2].row][line[2].col]

		if a == entity.EmptyCell || a != b || b != c {
			continue
		}

		if winner != entity.EmptyCell && winner != a {
			panic(fmt.Sprintf("tictactoe: both sides hold a complete line: %v", grid))
		}

		winner = a
	}

	if winner != entity.EmptyCell {
		return entity.WonBy(winner)
	}

	if grid.IsFull() {
		return entity.StatusDraw
	}

	return entity.StatusInProgress
}
