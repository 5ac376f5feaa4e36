package game

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
)

func countMarks(grid entity.Grid, mark entity.Mark) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell == mark {
				count++
			}
		}
	}

	return count
}

func newJoinedSession(t *testing.T) *Session {
	t.Helper()

	session := NewSession("123", false)
	require.Equal(t, RolePlayer, session.Join("alice", entity.PlayerX))
	require.Equal(t, RolePlayer, session.Join("bob", entity.PlayerO))

	return session
}

func TestNewSession(t *testing.T) {
	// Given: a new multiplayer session
	session := NewSession("123", false)

	// Then: it starts in progress with X to move
	expected := entity.Snapshot{
		ID:             "123",
		Status:         entity.StatusInProgress,
		CurrentPlayer:  entity.PlayerX,
		StartingPlayer: entity.PlayerX,
	}

	assert.Equal(t, expected, session.Snapshot())
}

func TestSession_Join(t *testing.T) {
	t.Run("Binds a free side and marks it present", func(t *testing.T) {
		session := NewSession("123", false)

		role := session.Join("alice", entity.PlayerX)

		assert.Equal(t, RolePlayer, role)
		assert.True(t, session.Snapshot().PlayerXPresent)
		assert.False(t, session.IsSpectator("alice"))
	})

	t.Run("Rejoining with the same identity keeps the binding", func(t *testing.T) {
		session := NewSession("123", false)
		require.Equal(t, RolePlayer, session.Join("alice", entity.PlayerX))

		assert.Equal(t, RolePlayer, session.Join("alice", entity.PlayerX))
	})

	t.Run("A taken side makes the caller a spectator but stays present", func(t *testing.T) {
		// Given: alice holds X
		session := NewSession("123", false)
		require.Equal(t, RolePlayer, session.Join("alice", entity.PlayerX))

		// When: carol asks for X
		role := session.Join("carol", entity.PlayerX)

		// Then: carol watches and the binding is unchanged
		assert.Equal(t, RoleSpectator, role)
		assert.True(t, session.IsSpectator("carol"))
		assert.False(t, session.IsSpectator("alice"))
		assert.True(t, session.Snapshot().PlayerXPresent)
	})

	t.Run("An empty side is a spectator request", func(t *testing.T) {
		session := NewSession("123", false)

		assert.Equal(t, RoleSpectator, session.Join("alice", entity.EmptyCell))
		assert.False(t, session.Snapshot().PlayerXPresent)
		assert.False(t, session.Snapshot().PlayerOPresent)
	})

	t.Run("The computer's side cannot be claimed", func(t *testing.T) {
		session := NewSession("123", true)

		assert.Equal(t, RoleSpectator, session.Join("alice", BotPlayer))
		assert.True(t, session.IsSpectator("alice"))
	})
}

func TestSession_IsSpectator(t *testing.T) {
	t.Run("Everyone is a spectator before any binding", func(t *testing.T) {
		session := NewSession("123", false)

		assert.True(t, session.IsSpectator("alice"))
		assert.True(t, session.IsSpectator(""))
	})

	t.Run("Unknown identities are spectators once both sides are bound", func(t *testing.T) {
		session := newJoinedSession(t)

		assert.True(t, session.IsSpectator("carol"))
		assert.False(t, session.IsSpectator("alice"))
		assert.False(t, session.IsSpectator("bob"))
	})
}

func TestSession_Move(t *testing.T) {
	t.Run("Two participants alternate", func(t *testing.T) {
		// Given: alice as X and bob as O
		session := newJoinedSession(t)

		// When: alice plays (0, 0)
		ok := session.Move(0, 0, entity.PlayerX, "alice")

		// Then: the mark is placed and it is O's turn
		require.True(t, ok)
		snapshot := session.Snapshot()
		assert.Equal(t, entity.PlayerX, snapshot.Board[0][0])
		assert.Equal(t, entity.PlayerO, snapshot.CurrentPlayer)

		// When: bob plays the same cell
		ok = session.Move(0, 0, entity.PlayerO, "bob")

		// Then: the move is rejected and nothing changes
		assert.False(t, ok)
		assert.Equal(t, snapshot, session.Snapshot())
	})

	t.Run("Rejects a move out of turn", func(t *testing.T) {
		session := newJoinedSession(t)
		before := session.Snapshot()

		assert.False(t, session.Move(1, 1, entity.PlayerO, "bob"))
		assert.Equal(t, before, session.Snapshot())
	})

	t.Run("Rejects a caller playing the other side", func(t *testing.T) {
		session := newJoinedSession(t)

		assert.False(t, session.Move(1, 1, entity.PlayerX, "bob"))
	})

	t.Run("Rejects a spectator", func(t *testing.T) {
		session := newJoinedSession(t)

		assert.False(t, session.Move(1, 1, entity.PlayerX, "carol"))
		assert.Equal(t, entity.EmptyCell, session.Snapshot().Board[1][1])
	})

	t.Run("Rejects out of range cells", func(t *testing.T) {
		session := newJoinedSession(t)
		before := session.Snapshot()

		assert.False(t, session.Move(3, 0, entity.PlayerX, "alice"))
		assert.False(t, session.Move(0, -1, entity.PlayerX, "alice"))
		assert.Equal(t, before, session.Snapshot())
	})

	t.Run("Waits for both sides by default", func(t *testing.T) {
		session := NewSession("123", false)
		require.Equal(t, RolePlayer, session.Join("alice", entity.PlayerX))

		assert.False(t, session.CanAcceptMoveFrom("alice", entity.PlayerX))
		assert.False(t, session.Move(0, 0, entity.PlayerX, "alice"))
	})

	t.Run("Spectators cannot move once both sides are bound", func(t *testing.T) {
		// Given: alice as X and bob as O
		session := newJoinedSession(t)
		before := session.Snapshot()
		require.True(t, session.IsSpectator(""))

		// When: an anonymous caller plays with and without a declared side
		withSide := session.Move(1, 1, entity.PlayerX, "")
		withoutSide := session.Move(0, 0, entity.EmptyCell, "")

		// Then: both moves fail and the board is unchanged
		assert.False(t, withSide)
		assert.False(t, withoutSide)
		assert.False(t, session.CanAcceptMoveFrom("", entity.PlayerX))
		assert.False(t, session.Move(2, 2, entity.PlayerX, "carol"))
		assert.Equal(t, before, session.Snapshot())
	})

	t.Run("Unjoined sessions play under the legacy policy", func(t *testing.T) {
		session := NewSession("123", false, WithPresencePolicy(AllowUnjoined))

		assert.True(t, session.Move(0, 0, entity.PlayerX, ""))
		assert.True(t, session.Move(1, 1, entity.EmptyCell, ""))

		// one side present, the other absent
		session.Join("alice", entity.PlayerX)
		assert.False(t, session.Move(2, 2, entity.PlayerX, "alice"))
	})

	t.Run("A winning move ends the game and keeps the turn", func(t *testing.T) {
		// Given: X one move away from the top row
		session := newJoinedSession(t)
		require.True(t, session.Move(0, 0, entity.PlayerX, "alice"))
		require.True(t, session.Move(1, 0, entity.PlayerO, "bob"))
		require.True(t, session.Move(0, 1, entity.PlayerX, "alice"))
		require.True(t, session.Move(1, 1, entity.PlayerO, "bob"))

		// When: X completes the row
		require.True(t, session.Move(0, 2, entity.PlayerX, "alice"))

		// Then: X has won, the turn stays with X and no more moves are accepted
		snapshot := session.Snapshot()
		assert.Equal(t, entity.StatusXWon, snapshot.Status)
		assert.Equal(t, entity.PlayerX, snapshot.CurrentPlayer)
		assert.False(t, session.Move(2, 2, entity.PlayerO, "bob"))
		assert.False(t, session.Move(2, 2, entity.PlayerX, "alice"))
	})

	t.Run("A full board without a line is a draw", func(t *testing.T) {
		session := newJoinedSession(t)
		moves := [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 0}, {2, 2}}
		callers := map[entity.Mark]string{entity.PlayerX: "alice", entity.PlayerO: "bob"}

		for _, m := range moves {
			turn := session.Snapshot().CurrentPlayer
			require.True(t, session.Move(m[0], m[1], turn, callers[turn]))
		}

		assert.Equal(t, entity.StatusDraw, session.Snapshot().Status)
	})
}

func TestSession_MoveAgainstComputer(t *testing.T) {
	t.Run("The computer answers immediately", func(t *testing.T) {
		// Given: an AI session
		session := NewSession("123", true)

		// When: the human takes the centre
		ok := session.Move(1, 1, entity.PlayerX, "alice")

		// Then: exactly one O appears and it is X's turn again
		require.True(t, ok)
		snapshot := session.Snapshot()
		assert.Equal(t, entity.PlayerX, snapshot.Board[1][1])
		assert.Equal(t, 1, countMarks(snapshot.Board, entity.PlayerO))
		assert.Equal(t, entity.PlayerX, snapshot.CurrentPlayer)
		assert.Equal(t, entity.StatusInProgress, snapshot.Status)
	})

	t.Run("The computer never loses", func(t *testing.T) {
		session := NewSession("123", true)

		// naive human: always the first free cell
		for session.Snapshot().Status == entity.StatusInProgress {
			grid := session.Snapshot().Board
			placed := false
			for r := range entity.BoardSize {
				for c := range entity.BoardSize {
					if !placed && grid[r][c] == entity.EmptyCell {
						require.True(t, session.Move(r, c, entity.PlayerX, "alice"))
						placed = true
					}
				}
			}
		}

		assert.NotEqual(t, entity.StatusXWon, session.Snapshot().Status)
	})

	t.Run("Accepts moves without any join", func(t *testing.T) {
		session := NewSession("123", true)

		assert.True(t, session.CanAcceptMoveFrom("", entity.EmptyCell))
		assert.True(t, session.Move(0, 0, entity.EmptyCell, ""))
	})

	t.Run("Still rejects a declared side that is not on turn", func(t *testing.T) {
		session := NewSession("123", true)

		assert.False(t, session.Move(0, 0, BotPlayer, "alice"))
	})
}

func TestSession_Rematch(t *testing.T) {
	t.Run("Resets once both sides are ready and swaps the opener", func(t *testing.T) {
		// Given: a session with a move on the board
		session := newJoinedSession(t)
		require.True(t, session.Move(0, 0, entity.PlayerX, "alice"))

		// When: only X is ready
		session.SetReadyForRematch(entity.PlayerX)

		// Then: nothing is reset yet
		snapshot := session.Snapshot()
		assert.True(t, snapshot.PlayerXReady)
		assert.False(t, snapshot.PlayerOReady)
		assert.Equal(t, entity.PlayerX, snapshot.Board[0][0])

		// When: O is ready too
		session.SetReadyForRematch(entity.PlayerO)

		// Then: a fresh board with O opening
		snapshot = session.Snapshot()
		assert.Equal(t, entity.Grid{}, snapshot.Board)
		assert.Equal(t, entity.StatusInProgress, snapshot.Status)
		assert.Equal(t, entity.PlayerO, snapshot.StartingPlayer)
		assert.Equal(t, entity.PlayerO, snapshot.CurrentPlayer)
		assert.False(t, snapshot.PlayerXReady)
		assert.False(t, snapshot.PlayerOReady)
	})

	t.Run("Two resets restore the original opener", func(t *testing.T) {
		session := newJoinedSession(t)

		session.ResetForRematch()
		assert.Equal(t, entity.PlayerO, session.Snapshot().StartingPlayer)

		session.ResetForRematch()
		assert.Equal(t, entity.PlayerX, session.Snapshot().StartingPlayer)
		assert.Equal(t, entity.PlayerX, session.Snapshot().CurrentPlayer)
	})

	t.Run("A finished game can be replayed", func(t *testing.T) {
		session := newJoinedSession(t)
		for _, m := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}} {
			turn := session.Snapshot().CurrentPlayer
			caller := map[entity.Mark]string{entity.PlayerX: "alice", entity.PlayerO: "bob"}[turn]
			require.True(t, session.Move(m[0], m[1], turn, caller))
		}
		require.Equal(t, entity.StatusXWon, session.Snapshot().Status)

		session.SetReadyForRematch(entity.PlayerX)
		session.SetReadyForRematch(entity.PlayerO)

		assert.True(t, session.Move(2, 2, entity.PlayerO, "bob"))
	})

	t.Run("The computer is always ready and opens when it is its turn", func(t *testing.T) {
		session := NewSession("123", true)
		require.True(t, session.Move(1, 1, entity.PlayerX, "alice"))

		// When: the human asks for a rematch
		session.SetReadyForRematch(entity.PlayerX)

		// Then: the board resets with the computer's opening already played
		snapshot := session.Snapshot()
		assert.Equal(t, BotPlayer, snapshot.StartingPlayer)
		assert.Equal(t, entity.PlayerX, snapshot.CurrentPlayer)
		assert.Equal(t, 1, countMarks(snapshot.Board, BotPlayer))
		assert.Equal(t, 0, countMarks(snapshot.Board, entity.PlayerX))
	})

	t.Run("Ignores an invalid side", func(t *testing.T) {
		session := newJoinedSession(t)

		session.SetReadyForRematch(entity.EmptyCell)

		snapshot := session.Snapshot()
		assert.False(t, snapshot.PlayerXReady)
		assert.False(t, snapshot.PlayerOReady)
	})
}

func TestSession_ConcurrentMoves(t *testing.T) {
	// Given: both participants hammering the same session
	session := NewSession("123", false, WithPresencePolicy(AllowUnjoined))

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)

	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cell := i % (entity.BoardSize * entity.BoardSize)
			side := []entity.Mark{entity.PlayerX, entity.PlayerO}[i%2]
			if session.Move(cell/entity.BoardSize, cell%entity.BoardSize, side, "") {
				accepted.Add(1)
			}
		}()
	}

	wg.Wait()

	// Then: every accepted move is on the board and the sides never played twice in a row
	snapshot := session.Snapshot()
	crosses := countMarks(snapshot.Board, entity.PlayerX)
	noughts := countMarks(snapshot.Board, entity.PlayerO)

	assert.Equal(t, int(accepted.Load()), crosses+noughts)
	assert.Contains(t, []int{0, 1}, crosses-noughts)
}
