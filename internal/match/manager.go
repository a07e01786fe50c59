package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andrewkomo/moon-chess/internal/game"
	"github.com/andrewkomo/moon-chess/internal/notation"
	"github.com/andrewkomo/moon-chess/internal/rules"
)

// ErrExists is returned by Create when the requested ID is taken.
var ErrExists = errors.New("game already exists")

// Repository persists game records.
type Repository interface {
	Get(id string) (*game.Game, error)
	Put(g *game.Game) error
	List() ([]string, error)
}

// Config configures a Manager.
type Config struct {
	Logger zerolog.Logger

	// Now returns the current time, default time.Now.
	Now func() time.Time

	// Clock defaults for games created without explicit values.
	TimeBank time.Duration
	Bonus    time.Duration
}

// Manager runs every operation on a game as one load, mutate, save cycle
// while holding that game's lock, so no two operations on the same record
// ever interleave.
type Manager struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time

	timeBank time.Duration
	bonus    time.Duration

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	subsMu sync.Mutex
	subs   map[string]map[*Subscription]struct{}
}

// NewManager returns a manager backed by repo.
func NewManager(cfg Config, repo Repository) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TimeBank <= 0 {
		cfg.TimeBank = game.DefaultTimeBank
	}
	if cfg.Bonus <= 0 {
		cfg.Bonus = game.DefaultBonus
	}
	return &Manager{
		repo:     repo,
		log:      cfg.Logger.With().Str("component", "match").Logger(),
		now:      cfg.Now,
		timeBank: cfg.TimeBank,
		bonus:    cfg.Bonus,
		locks:    make(map[string]*sync.Mutex),
		subs:     make(map[string]map[*Subscription]struct{}),
	}
}

func (m *Manager) lock(id string) func() {
	m.locksMu.Lock()
	mu, ok := m.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		m.locks[id] = mu
	}
	m.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Create sets up and stores a new game. ID and Name are generated when
// empty; zero clock options take the manager defaults.
func (m *Manager) Create(ctx context.Context, opts game.Options) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Name == "" {
		opts.Name = petname.Generate(2, "-")
	}
	for _, d := range []*time.Duration{&opts.WhiteTime, &opts.BlackTime} {
		if *d <= 0 {
			*d = m.timeBank
		}
	}
	for _, d := range []*time.Duration{&opts.WhiteBonus, &opts.BlackBonus} {
		if *d <= 0 {
			*d = m.bonus
		}
	}

	g, err := game.New(opts, m.now())
	if err != nil {
		return nil, err
	}

	unlock := m.lock(g.ID)
	defer unlock()
	if _, err := m.repo.Get(g.ID); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, g.ID)
	}
	if err := m.repo.Put(g); err != nil {
		return nil, fmt.Errorf("save game: %w", err)
	}

	m.log.Info().
		Str("game", g.ID).
		Str("name", g.Name).
		Str("white", g.White).
		Str("black", g.Black).
		Msg("game created")
	m.publish(Event{Kind: EventCreated, Game: clone(g)})
	return g, nil
}

// Get loads a game.
func (m *Manager) Get(ctx context.Context, id string) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.repo.Get(id)
}

// List returns all game IDs.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.repo.List()
}

// Move submits a packed move.
func (m *Manager) Move(ctx context.Context, id string, mv rules.Move) (*game.Game, game.Result, error) {
	return m.update(ctx, id, EventMove, func(g *game.Game, now time.Time) (game.Result, error) {
		return g.Play(mv, now)
	})
}

// MoveUCI resolves a coordinate move such as "e7e8q" against the current
// position and submits it.
func (m *Manager) MoveUCI(ctx context.Context, id, uci string) (*game.Game, game.Result, error) {
	return m.submit(ctx, id, func(s *rules.GameState) (rules.Move, error) {
		return rules.ParseUCI(s, uci)
	})
}

// MoveSAN resolves a Standard Algebraic Notation move against the current
// position and submits it.
func (m *Manager) MoveSAN(ctx context.Context, id, san string) (*game.Game, game.Result, error) {
	return m.submit(ctx, id, func(s *rules.GameState) (rules.Move, error) {
		return notation.ParseSAN(s, san)
	})
}

// submit resolves a move under the game's lock so the notation is read
// against the position it will be played in.
func (m *Manager) submit(ctx context.Context, id string, resolve func(*rules.GameState) (rules.Move, error)) (*game.Game, game.Result, error) {
	return m.update(ctx, id, EventMove, func(g *game.Game, now time.Time) (game.Result, error) {
		if g.Result.IsTerminal() {
			return g.Result, game.ErrGameOver
		}
		mv, err := resolve(&g.State)
		if err != nil {
			return game.Invalid, fmt.Errorf("%w: %v", game.ErrInvalidMove, err)
		}
		return g.Play(mv, now)
	})
}

// Resign concedes the game for color c.
func (m *Manager) Resign(ctx context.Context, id string, c rules.Color) (*game.Game, game.Result, error) {
	return m.update(ctx, id, EventResign, func(g *game.Game, _ time.Time) (game.Result, error) {
		return g.Resign(c)
	})
}

// UpdateDraw sets or withdraws color c's draw offer.
func (m *Manager) UpdateDraw(ctx context.Context, id string, c rules.Color, offering bool) (*game.Game, game.Result, error) {
	return m.update(ctx, id, EventDraw, func(g *game.Game, _ time.Time) (game.Result, error) {
		return g.UpdateDraw(c, offering)
	})
}

// ClaimTimeout checks the clock of the side to move.
func (m *Manager) ClaimTimeout(ctx context.Context, id string) (*game.Game, game.Result, error) {
	return m.update(ctx, id, EventTimeout, func(g *game.Game, now time.Time) (game.Result, error) {
		return g.ClaimTimeout(now)
	})
}

// update runs fn on a freshly loaded record under the game's lock and saves
// the record unless fn rejected the operation.
func (m *Manager) update(ctx context.Context, id string, kind EventKind, fn func(*game.Game, time.Time) (game.Result, error)) (*game.Game, game.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, game.Invalid, err
	}
	unlock := m.lock(id)
	defer unlock()

	g, err := m.repo.Get(id)
	if err != nil {
		return nil, game.Invalid, err
	}
	wasTerminal := g.Result.IsTerminal()

	res, err := fn(g, m.now())
	log := m.log.With().Str("game", id).Str("op", string(kind)).Logger()
	if err != nil {
		if errors.Is(err, game.ErrInvalidMove) || errors.Is(err, game.ErrGameOver) {
			log.Debug().Err(err).Msg("operation rejected")
		}
		return g, res, err
	}

	if err := m.repo.Put(g); err != nil {
		log.Error().Err(err).Msg("save game")
		return nil, game.Invalid, fmt.Errorf("save game: %w", err)
	}

	if kind == EventMove {
		log.Debug().Int("moves", g.NumMoves).Str("result", res.String()).Msg("move accepted")
	}
	if !wasTerminal && g.Result.IsTerminal() {
		log.Info().Str("result", g.Result.String()).Int("moves", g.NumMoves).Msg("game concluded")
	}
	m.publish(Event{Kind: kind, Game: clone(g)})
	return g, res, nil
}

func clone(g *game.Game) *game.Game {
	c := *g
	c.Moves = append([]rules.Move(nil), g.Moves...)
	return &c
}
