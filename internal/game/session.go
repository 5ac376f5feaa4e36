package game

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
	"github.com/rocketscienceinc/tictactoe-live/internal/tictactoe"
)

// BotPlayer is the side the computer opponent always plays.
const BotPlayer = entity.PlayerO

type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// PresencePolicy decides whether a multiplayer session may accept moves.
type PresencePolicy func(xPresent, oPresent bool) bool

// RequireBothPresent accepts moves only once both sides have joined.
func RequireBothPresent(xPresent, oPresent bool) bool {
	return xPresent && oPresent
}

// AllowUnjoined also accepts moves while neither side has joined, so a session
// driven purely through the REST API can be played without joins.
func AllowUnjoined(xPresent, oPresent bool) bool {
	return xPresent == oPresent
}

type Option func(*Session)

func WithPresencePolicy(policy PresencePolicy) Option {
	return func(that *Session) {
		that.presence = policy
	}
}

// Session is one game. All exported methods are safe for concurrent use and
// each runs as a single atomic step.
type Session struct {
	mu sync.Mutex

	id       string
	aiMode   bool
	presence PresencePolicy

	board        *entity.Board
	turn         entity.Mark
	startingTurn entity.Mark
	status       entity.Status

	players map[entity.Mark]string
	present map[entity.Mark]bool
	ready   map[entity.Mark]bool
}

func NewSession(id string, aiMode bool, opts ...Option) *Session {
	session := &Session{
		id:           id,
		aiMode:       aiMode,
		presence:     RequireBothPresent,
		board:        entity.NewBoard(),
		turn:         entity.PlayerX,
		startingTurn: entity.PlayerX,
		status:       entity.StatusInProgress,
		players:      make(map[entity.Mark]string, 2),
		present:      make(map[entity.Mark]bool, 2),
		ready:        make(map[entity.Mark]bool, 2),
	}

	for _, opt := range opts {
		opt(session)
	}

	// the computer is seated from the start
	if aiMode {
		session.present[BotPlayer] = true
	}

	return session
}

func (that *Session) ID() string {
	return that.id
}

func (that *Session) AIMode() bool {
	return that.aiMode
}

// Join binds callerID to side when the side is free or already held by the same
// caller. Anyone else becomes a spectator. The side is marked present either way.
func (that *Session) Join(callerID string, side entity.Mark) Role {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !side.IsPlayer() {
		return RoleSpectator
	}

	that.present[side] = true

	if callerID == "" || (that.aiMode && side == BotPlayer) {
		return RoleSpectator
	}

	switch bound, ok := that.players[side]; {
	case !ok:
		that.players[side] = callerID
		return RolePlayer
	case bound == callerID:
		return RolePlayer
	default:
		return RoleSpectator
	}
}

// IsSpectator reports whether callerID holds neither side.
func (that *Session) IsSpectator(callerID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.isSpectator(callerID)
}

func (that *Session) isSpectator(callerID string) bool {
	_, ok := that.sideOf(callerID)
	return !ok
}

func (that *Session) sideOf(callerID string) (entity.Mark, bool) {
	if callerID == "" {
		return entity.EmptyCell, false
	}

	for side, bound := range that.players {
		if bound == callerID {
			return side, true
		}
	}

	return entity.EmptyCell, false
}

// CanAcceptMoveFrom reports whether a move declared for side by callerID may be
// played now. An empty side means the caller did not declare one. Spectators
// are refused once any side is bound.
func (that *Session) CanAcceptMoveFrom(callerID string, side entity.Mark) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.canAcceptMoveFrom(callerID, side)
}

func (that *Session) canAcceptMoveFrom(callerID string, side entity.Mark) bool {
	if that.aiMode {
		return true
	}

	if !that.presence(that.present[entity.PlayerX], that.present[entity.PlayerO]) {
		return false
	}

	if side != entity.EmptyCell && side != that.turn {
		return false
	}

	// anonymous callers may only drive a session nobody has claimed
	if callerID == "" {
		return len(that.players) == 0
	}

	bound, ok := that.sideOf(callerID)
	if !ok {
		return false
	}

	return side == entity.EmptyCell || bound == side
}

// Move plays the current side's mark on (row, col). In AI mode the computer
// answers within the same call. The result only reflects the caller's placement.
func (that *Session) Move(row, col int, side entity.Mark, callerID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status.IsTerminal() {
		return false
	}

	if side != entity.EmptyCell && side != that.turn {
		return false
	}

	if !that.canAcceptMoveFrom(callerID, side) {
		return false
	}

	if !that.makeTurn(row, col) {
		return false
	}

	that.playBotTurn()

	return true
}

// makeTurn places the current mark and advances the turn unless the game ended.
func (that *Session) makeTurn(row, col int) bool {
	if !that.board.Place(row, col, that.turn) {
		return false
	}

	that.status = tictactoe.Evaluate(that.board.Snapshot())
	if that.status == entity.StatusInProgress {
		that.turn = that.turn.Opponent()
	}

	return true
}

// playBotTurn makes at most one computer move, so human and computer alternate.
func (that *Session) playBotTurn() {
	if !that.aiMode || that.status != entity.StatusInProgress || that.turn != BotPlayer {
		return
	}

	row, col, ok := tictactoe.BestMove(that.board.Snapshot(), BotPlayer)
	if !ok {
		return
	}

	that.makeTurn(row, col)
}

// SetReadyForRematch marks side as ready. Once both sides are ready the board
// is reset and both flags are cleared. The computer is always ready.
func (that *Session) SetReadyForRematch(side entity.Mark) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !side.IsPlayer() {
		return
	}

	that.ready[side] = true
	if that.aiMode {
		that.ready[BotPlayer] = true
	}

	if that.ready[entity.PlayerX] && that.ready[entity.PlayerO] {
		that.resetForRematch()
	}
}

// ResetForRematch clears the board and hands the opening move to the other side.
func (that *Session) ResetForRematch() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.resetForRematch()
}

func (that *Session) resetForRematch() {
	that.board = entity.NewBoard()
	that.startingTurn = that.startingTurn.Opponent()
	that.turn = that.startingTurn
	that.status = entity.StatusInProgress

	clear(that.ready)

	that.playBotTurn()
}

func (that *Session) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.Snapshot{
		ID:             that.id,
		Board:          that.board.Snapshot(),
		Status:         that.status,
		CurrentPlayer:  that.turn,
		StartingPlayer: that.startingTurn,
		PlayerXPresent: that.present[entity.PlayerX],
		PlayerOPresent: that.present[entity.PlayerO],
		PlayerXReady:   that.ready[entity.PlayerX],
		PlayerOReady:   that.ready[entity.PlayerO],
		AIMode:         that.aiMode,
	}
}
