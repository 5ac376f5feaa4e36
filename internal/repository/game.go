package repository

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-live/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-live/internal/game"
)

type GameRepository interface {
	Create(id string, aiMode bool) (*game.Session, error)
	GetByID(id string) (*game.Session, error)
	DeleteByID(id string)
	Count() int
}

// memGames keeps every live session in process memory. The table lock only
// guards the map; each session serializes its own state.
type memGames struct {
	mu    sync.RWMutex
	games map[string]*game.Session
	opts  []game.Option
}

// NewGameRepository returns an empty registry. opts are applied to every session it creates.
func NewGameRepository(opts ...game.Option) GameRepository {
	return &memGames{
		games: make(map[string]*game.Session),
		opts:  opts,
	}
}

func (that *memGames) Create(id string, aiMode bool) (*game.Session, error) {
	session := game.NewSession(id, aiMode, that.opts...)

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; ok {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrDuplicateSession, id)
	}

	that.games[id] = session

	return session, nil
}

func (that *memGames) GetByID(id string) (*game.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrNotFound, id)
	}

	return session, nil
}

func (that *memGames) DeleteByID(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, id)
}

func (that *memGames) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games)
}
