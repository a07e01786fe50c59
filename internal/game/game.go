package game

import (
	"fmt"
	"time"

	"github.com/andrewkomo/moon-chess/internal/rules"
)

// Default clock settings applied by New when an option is zero.
const (
	DefaultTimeBank = 10 * time.Minute
	DefaultBonus    = 5 * time.Second
)

// Options configures a new game.
type Options struct {
	ID   string
	Name string

	White string
	Black string

	WhiteTime  time.Duration
	BlackTime  time.Duration
	WhiteBonus time.Duration
	BlackBonus time.Duration

	// FEN sets a custom starting position. Empty means the standard one.
	FEN string
}

// Game is the persisted record of one game. It is not safe for concurrent
// use; the host serializes every call against a record.
type Game struct {
	ID   string
	Name string

	White string
	Black string

	Start         rules.GameState
	StartFullMove int
	State         rules.GameState
	NumMoves      int
	Result        Result

	WhiteDrawOffer bool
	BlackDrawOffer bool

	WhiteTime  time.Duration
	BlackTime  time.Duration
	WhiteBonus time.Duration
	BlackBonus time.Duration

	Created  time.Time
	LastMove time.Time

	History History
	Moves   []rules.Move
}

// New sets up a game at its starting position with history entry 0 recorded
// and the clock started at now.
func New(opts Options, now time.Time) (*Game, error) {
	start := rules.NewGameState()
	fullMove := 1
	if opts.FEN != "" {
		var err error
		start, fullMove, err = rules.ParseFEN(opts.FEN)
		if err != nil {
			return nil, fmt.Errorf("starting position: %w", err)
		}
	}

	g := &Game{
		ID:            opts.ID,
		Name:          opts.Name,
		White:         opts.White,
		Black:         opts.Black,
		Start:         start,
		StartFullMove: fullMove,
		State:         start,
		WhiteTime:     withDefault(opts.WhiteTime, DefaultTimeBank),
		BlackTime:     withDefault(opts.BlackTime, DefaultTimeBank),
		WhiteBonus:    withDefault(opts.WhiteBonus, DefaultBonus),
		BlackBonus:    withDefault(opts.BlackBonus, DefaultBonus),
		Created:       now,
		LastMove:      now,
	}
	g.History.Append(SnapshotOf(&g.State))
	return g, nil
}

func withDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Play submits one move at time now.
//
// If the side to move has already run out of time the move is not applied
// and the game ends on time; the elapsed time and bonus are still booked to
// that side's bank and LastMove is left as it was. If the move would exceed
// the history capacity the game ends DrawMaxMoves. A rejected move returns Invalid with
// ErrInvalidMove and leaves the record unchanged.
func (g *Game) Play(m rules.Move, now time.Time) (Result, error) {
	if g.Result.IsTerminal() {
		return g.Result, ErrGameOver
	}

	mover := g.State.SideToMove()
	if g.flagged(mover, now) {
		// The late move is still charged to the flagged side's bank.
		g.charge(mover, now)
		g.Result = TimeoutResult(mover, &g.State)
		return g.Result, nil
	}
	if g.NumMoves+1 >= HistoryCapacity-1 {
		g.NumMoves++
		g.Result = DrawMaxMoves
		return g.Result, nil
	}

	res := Advance(&g.State, m, &g.History)
	if res == Invalid {
		return Invalid, ErrInvalidMove
	}

	g.NumMoves++
	g.Moves = append(g.Moves, m)

	g.charge(mover, now)
	g.LastMove = now

	g.Result = res
	return res, nil
}

// Resign concedes the game for color c.
func (g *Game) Resign(c rules.Color) (Result, error) {
	if g.Result.IsTerminal() {
		return g.Result, ErrGameOver
	}
	g.Result = resignationBy(c)
	return g.Result, nil
}

// UpdateDraw records whether color c currently offers a draw. The game is
// drawn by agreement as soon as both sides are offering.
func (g *Game) UpdateDraw(c rules.Color, offering bool) (Result, error) {
	if g.Result.IsTerminal() {
		return g.Result, ErrGameOver
	}
	if c == rules.White {
		g.WhiteDrawOffer = offering
	} else {
		g.BlackDrawOffer = offering
	}
	if g.WhiteDrawOffer && g.BlackDrawOffer {
		g.Result = DrawAgreement
	}
	return g.Result, nil
}

// ClaimTimeout ends the game if the side to move has exceeded its time bank
// at now. Otherwise it is a no-op and returns Active.
func (g *Game) ClaimTimeout(now time.Time) (Result, error) {
	if g.Result.IsTerminal() {
		return g.Result, ErrGameOver
	}
	mover := g.State.SideToMove()
	if g.flagged(mover, now) {
		g.Result = TimeoutResult(mover, &g.State)
	}
	return g.Result, nil
}

// TimeLeft returns the remaining bank of color c at now. Only the side to
// move is running down.
func (g *Game) TimeLeft(c rules.Color, now time.Time) time.Duration {
	bank, _ := g.clock(c)
	left := *bank
	if !g.Result.IsTerminal() && c == g.State.SideToMove() {
		left -= g.elapsed(now)
	}
	if left < 0 {
		return 0
	}
	return left
}

// FullMove returns the full-move number of the current position.
func (g *Game) FullMove() int {
	plies := g.NumMoves
	if !g.Start.WhiteToMove {
		plies++
	}
	return g.StartFullMove + plies/2
}

// FEN renders the current position.
func (g *Game) FEN() string {
	return rules.FormatFEN(&g.State, g.FullMove())
}

func (g *Game) flagged(c rules.Color, now time.Time) bool {
	bank, _ := g.clock(c)
	return g.elapsed(now) > *bank
}

// charge debits the time since the last move from c's bank and credits the
// per-move bonus.
func (g *Game) charge(c rules.Color, now time.Time) {
	bank, bonus := g.clock(c)
	*bank = *bank - g.elapsed(now) + bonus
}

func (g *Game) elapsed(now time.Time) time.Duration {
	d := now.Sub(g.LastMove)
	if d < 0 {
		return 0
	}
	return d
}

func (g *Game) clock(c rules.Color) (bank *time.Duration, bonus time.Duration) {
	if c == rules.White {
		return &g.WhiteTime, g.WhiteBonus
	}
	return &g.BlackTime, g.BlackBonus
}
