package game

import "github.com/andrewkomo/moon-chess/internal/rules"

// HistoryCapacity bounds the positions one game can record. Entry 0 is the
// starting position, so a game holds at most HistoryCapacity-2 moves before
// it is drawn by the move cap.
const HistoryCapacity = 256

// Snapshot identifies one recorded position. Digest is compared first; Key
// confirms a match so that a digest collision never counts as a repetition.
type Snapshot struct {
	Digest uint64
	Key    rules.PositionKey
}

// SnapshotOf fingerprints s.
func SnapshotOf(s *rules.GameState) Snapshot {
	return Snapshot{Digest: s.Digest(), Key: s.Key()}
}

// History is a fixed-capacity position log. It never wraps or grows: Append
// fails once full and the caller must end the game.
type History struct {
	entries [HistoryCapacity]Snapshot
	n       int
}

// Len returns the number of recorded positions.
func (h *History) Len() int {
	return h.n
}

// At returns the i-th recorded position.
func (h *History) At(i int) Snapshot {
	return h.entries[i]
}

// Append records snap. It returns false if the history is full.
func (h *History) Append(snap Snapshot) bool {
	if h.n >= HistoryCapacity {
		return false
	}
	h.entries[h.n] = snap
	h.n++
	return true
}

// Occurrences counts earlier recordings of snap.
func (h *History) Occurrences(snap Snapshot) int {
	count := 0
	for i := 0; i < h.n; i++ {
		e := &h.entries[i]
		if e.Digest == snap.Digest && e.Key == snap.Key {
			count++
		}
	}
	return count
}

// Snapshots returns a copy of the recorded positions in order.
func (h *History) Snapshots() []Snapshot {
	out := make([]Snapshot, h.n)
	copy(out, h.entries[:h.n])
	return out
}

// Reset clears the history.
func (h *History) Reset() {
	*h = History{}
}
