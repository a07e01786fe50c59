// Package rules is the chess rules core: the packed move codec, the board
// and game state, the check detector, the move validator/executor and the
// terminal-state tests (mobility, insufficient material, bare king).
//
// Coordinates are (rank, col) pairs in 0-7 with rank 0 being white's back
// rank and col 0 the a-file. Square indices are rank*8 + col.
//
// Everything here is synchronous and allocation-light; a GameState is a
// plain value and the executor speculates on copies, so a rejected move
// never leaves a partially applied position behind.
package rules
