package notation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/freeeve/pgn/v3"

	"github.com/andrewkomo/moon-chess/internal/game"
)

// Replayed is the outcome of running one recorded game through the engine.
type Replayed struct {
	Index int
	Tags  map[string]string
	Game  *game.Game

	// Plies is the number of moves the engine accepted.
	Plies int
	// Unplayed counts recorded moves left after the engine concluded the game.
	Unplayed int
	// Err is set when a recorded move could not be converted or was rejected.
	Err error
}

// Recorded returns the result token from the game's Result tag.
func (r *Replayed) Recorded() string {
	if v, ok := r.Tags["Result"]; ok {
		return v
	}
	return "*"
}

// Agrees reports whether the engine's conclusion matches the recorded result.
// An engine result of Active agrees with any recorded result, since recorded
// games usually end by resignation or on the clock.
func (r *Replayed) Agrees() bool {
	if r.Err != nil {
		return false
	}
	if r.Game.Result == game.Active {
		return true
	}
	return r.Game.Result.PGN() == r.Recorded()
}

// replayEpoch is the fixed clock used for replays; recorded games carry no
// move times so every move is played at the same instant.
var replayEpoch = time.Unix(0, 0).UTC()

// ReplayGame plays moves through a fresh untimed game.
func ReplayGame(index int, tags map[string]string, moves []pgn.Mv) Replayed {
	r := Replayed{Index: index, Tags: tags}
	g, err := game.New(game.Options{
		Name:      tags["Event"],
		White:     tags["White"],
		Black:     tags["Black"],
		WhiteTime: math.MaxInt64,
		BlackTime: math.MaxInt64,
		FEN:       tags["FEN"],
	}, replayEpoch)
	if err != nil {
		r.Err = err
		return r
	}
	g.WhiteBonus, g.BlackBonus = 0, 0
	r.Game = g

	for i, mv := range moves {
		if g.Result.IsTerminal() {
			r.Unplayed = len(moves) - i
			break
		}
		m, err := FromMv(&g.State, mv)
		if err != nil {
			r.Err = fmt.Errorf("ply %d: %w", i+1, err)
			break
		}
		if _, err := g.Play(m, replayEpoch); err != nil {
			r.Err = fmt.Errorf("ply %d %s: %w", i+1, m.ToUCI(), err)
			break
		}
		r.Plies++
	}
	return r
}

// ReplayFile streams every game in a PGN file (plain or .zst) through the
// engine and calls fn with each outcome. Returning an error from fn stops
// the replay.
func ReplayFile(ctx context.Context, path string, fn func(Replayed) error) error {
	parser := pgn.Games(path)

	index := 0
	for g := range parser.Games {
		if err := ctx.Err(); err != nil {
			parser.Stop()
			return err
		}
		index++
		if err := fn(ReplayGame(index, g.Tags, g.Moves)); err != nil {
			parser.Stop()
			return err
		}
	}
	return parser.Err()
}
