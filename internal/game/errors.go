package game

import "errors"

var (
	// ErrInvalidMove is returned when a submitted move is rejected. The game
	// is left unchanged and the caller may resubmit.
	ErrInvalidMove = errors.New("invalid move")
	// ErrGameOver is returned by any mutating call after the game concluded.
	ErrGameOver = errors.New("game already over")
)
