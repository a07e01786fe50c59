package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/andrewkomo/moon-chess/internal/game"
	"github.com/andrewkomo/moon-chess/internal/match"
	"github.com/andrewkomo/moon-chess/internal/notation"
	"github.com/andrewkomo/moon-chess/internal/rules"
	"github.com/andrewkomo/moon-chess/internal/store"
)

// GameResponse is the JSON view of a game.
type GameResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	White string `json:"white,omitempty"`
	Black string `json:"black,omitempty"`

	FEN      string `json:"fen"`
	Status   string `json:"status"` // result name, "active" while in progress
	Result   string `json:"result"` // PGN token: 1-0, 0-1, 1/2-1/2 or *
	Winner   string `json:"winner,omitempty"`
	ToMove   string `json:"to_move"`
	InCheck  bool   `json:"in_check"`
	NumMoves int    `json:"num_moves"`
	FullMove int    `json:"full_move"`

	WhiteTimeMs  int64 `json:"white_time_ms"`
	BlackTimeMs  int64 `json:"black_time_ms"`
	WhiteBonusMs int64 `json:"white_bonus_ms"`
	BlackBonusMs int64 `json:"black_bonus_ms"`

	WhiteDrawOffer bool `json:"white_draw_offer"`
	BlackDrawOffer bool `json:"black_draw_offer"`

	Moves []MoveResponse `json:"moves"`

	Created  time.Time `json:"created"`
	LastMove time.Time `json:"last_move"`
}

// MoveResponse is one played move.
type MoveResponse struct {
	Code uint16 `json:"code"`
	UCI  string `json:"uci"`
	SAN  string `json:"san,omitempty"`
}

// MoveResult is returned by the move, resign, draw and timeout endpoints.
type MoveResult struct {
	Outcome string        `json:"outcome"`
	Game    *GameResponse `json:"game"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ToGameResponse renders g with clocks evaluated at now.
func ToGameResponse(g *game.Game, now time.Time) *GameResponse {
	mover := g.State.SideToMove()
	resp := &GameResponse{
		ID:             g.ID,
		Name:           g.Name,
		White:          g.White,
		Black:          g.Black,
		FEN:            g.FEN(),
		Status:         g.Result.String(),
		Result:         g.Result.PGN(),
		ToMove:         mover.String(),
		InCheck:        rules.IsCheck(mover, &g.State),
		NumMoves:       g.NumMoves,
		FullMove:       g.FullMove(),
		WhiteTimeMs:    g.TimeLeft(rules.White, now).Milliseconds(),
		BlackTimeMs:    g.TimeLeft(rules.Black, now).Milliseconds(),
		WhiteBonusMs:   g.WhiteBonus.Milliseconds(),
		BlackBonusMs:   g.BlackBonus.Milliseconds(),
		WhiteDrawOffer: g.WhiteDrawOffer,
		BlackDrawOffer: g.BlackDrawOffer,
		Moves:          make([]MoveResponse, 0, len(g.Moves)),
		Created:        g.Created,
		LastMove:       g.LastMove,
	}
	if c, ok := g.Result.Winner(); ok {
		resp.Winner = c.String()
	}

	// SAN is best effort; a record that cannot be replayed still lists UCI.
	sans, err := notation.MoveText(g)
	if err != nil || len(sans) != len(g.Moves) {
		sans = nil
	}
	for i, m := range g.Moves {
		mr := MoveResponse{Code: uint16(m), UCI: m.ToUCI()}
		if sans != nil {
			mr.SAN = sans[i]
		}
		resp.Moves = append(resp.Moves, mr)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrGameOver), errors.Is(err, match.ErrExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
