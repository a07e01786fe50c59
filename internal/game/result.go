package game

import "github.com/andrewkomo/moon-chess/internal/rules"

// Result is the status of a game. Active is the only non-terminal value;
// Invalid is returned for a rejected move and is never stored on a record.
type Result uint8

const (
	Active Result = iota
	Invalid
	WhiteWinCheckmate
	WhiteWinResignation
	WhiteWinTimeout
	BlackWinCheckmate
	BlackWinResignation
	BlackWinTimeout
	DrawStalemate
	DrawInsufficientMaterial
	DrawFiftyMoves
	DrawAgreement
	DrawMaxMoves
	DrawRepetition
)

var resultNames = [...]string{
	Active:                   "active",
	Invalid:                  "invalid",
	WhiteWinCheckmate:        "white_win_checkmate",
	WhiteWinResignation:      "white_win_resignation",
	WhiteWinTimeout:          "white_win_timeout",
	BlackWinCheckmate:        "black_win_checkmate",
	BlackWinResignation:      "black_win_resignation",
	BlackWinTimeout:          "black_win_timeout",
	DrawStalemate:            "draw_stalemate",
	DrawInsufficientMaterial: "draw_insufficient_material",
	DrawFiftyMoves:           "draw_fifty_moves",
	DrawAgreement:            "draw_agreement",
	DrawMaxMoves:             "draw_max_moves",
	DrawRepetition:           "draw_repetition",
}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

// Valid reports whether r is a known result value.
func (r Result) Valid() bool {
	return int(r) < len(resultNames)
}

// IsTerminal reports whether r concludes the game.
func (r Result) IsTerminal() bool {
	return r != Active && r != Invalid && r.Valid()
}

// IsDraw reports whether r is one of the drawn outcomes.
func (r Result) IsDraw() bool {
	return r >= DrawStalemate && r <= DrawRepetition
}

// Winner returns the winning color for a decisive result.
func (r Result) Winner() (rules.Color, bool) {
	switch r {
	case WhiteWinCheckmate, WhiteWinResignation, WhiteWinTimeout:
		return rules.White, true
	case BlackWinCheckmate, BlackWinResignation, BlackWinTimeout:
		return rules.Black, true
	}
	return rules.White, false
}

// PGN returns the result token used in PGN headers and movetext.
func (r Result) PGN() string {
	if w, ok := r.Winner(); ok {
		if w == rules.White {
			return "1-0"
		}
		return "0-1"
	}
	if r.IsDraw() {
		return "1/2-1/2"
	}
	return "*"
}

func checkmateBy(c rules.Color) Result {
	if c == rules.White {
		return WhiteWinCheckmate
	}
	return BlackWinCheckmate
}

func resignationBy(loser rules.Color) Result {
	if loser == rules.White {
		return BlackWinResignation
	}
	return WhiteWinResignation
}

func timeoutBy(flagged rules.Color) Result {
	if flagged == rules.White {
		return BlackWinTimeout
	}
	return WhiteWinTimeout
}
