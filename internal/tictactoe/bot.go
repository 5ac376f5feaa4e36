package tictactoe

import "github.com/rocketscienceinc/tictactoe-live/internal/entity"

const winScore = 10

// BestMove searches the full game tree and returns the optimal cell for side.
// Ties go to the first cell in row-major order. ok is false when the grid is full.
//
// The grid is received by value, so concurrent callers never share search state.
func BestMove(grid entity.Grid, side entity.Mark) (row, col int, ok bool) {
	bestScore := 0

	for r := range entity.BoardSize {
		for c := range entity.BoardSize {
			if grid[r][c] != entity.EmptyCell {
				continue
			}

			grid[r][c] = side
			score := minimax(&grid, side, side.Opponent(), 0)
			grid[r][c] = entity.EmptyCell

			if !ok || score > bestScore {
				bestScore, row, col, ok = score, r, c, true
			}
		}
	}

	return row, col, ok
}

// minimax scores the position for self with toMove about to play at the given depth.
func minimax(grid *entity.Grid, self, toMove entity.Mark, depth int) int {
	switch Evaluate(*grid) {
	case entity.WonBy(self):
		return winScore - depth
	case entity.WonBy(self.Opponent()):
		return depth - winScore
	case entity.StatusDraw:
		return 0
	}

	maximizing := toMove == self
	best := 0
	first := true

	for r := range entity.BoardSize {
		for c := range entity.BoardSize {
			if grid[r][c] != entity.EmptyCell {
				continue
			}

			grid[r][c] = toMove
			score := minimax(grid, self, toMove.Opponent(), depth+1)
			grid[r][c] = entity.EmptyCell

			if first || (maximizing && score > best) || (!maximizing && score < best) {
				best, first = score, false
			}
		}
	}

	return best
}
