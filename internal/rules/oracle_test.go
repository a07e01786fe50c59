package rules

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/notnil/chess"
)

// legalMoves enumerates every encodable move from the side to move's pieces
// and keeps the ones Apply accepts.
func legalMoves(s *GameState) []Move {
	var out []Move
	mover := s.SideToMove()
	for fr := 0; fr < 8; fr++ {
		for fc := 0; fc < 8; fc++ {
			if !s.Board.owns(fr, fc, mover) {
				continue
			}
			p := s.Board.Pieces[fr][fc]
			intents := []Piece{p}
			if p == Pawn {
				intents = []Piece{Pawn, PawnToRook, PawnToKnight, PawnToBishop, PawnToQueen}
			}
			for tr := 0; tr < 8; tr++ {
				for tc := 0; tc < 8; tc++ {
					for _, intent := range intents {
						m := EncodeMove(intent, fr, fc, tr, tc)
						scratch := *s
						if Apply(m, &scratch) {
							out = append(out, m)
						}
					}
				}
			}
		}
	}
	return out
}

func oracleUCI(m *chess.Move) string {
	uci := m.S1().String() + m.S2().String()
	switch m.Promo() {
	case chess.Queen:
		uci += "q"
	case chess.Rook:
		uci += "r"
	case chess.Bishop:
		uci += "b"
	case chess.Knight:
		uci += "n"
	}
	return uci
}

func TestApply_MatchesOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(20240601))
	const games, maxPlies = 40, 160

	for gi := 0; gi < games; gi++ {
		g := chess.NewGame()
		s := NewGameState()
		for ply := 0; ply < maxPlies && g.Outcome() == chess.NoOutcome; ply++ {
			valid := g.ValidMoves()

			want := make([]string, 0, len(valid))
			byUCI := make(map[string]*chess.Move, len(valid))
			nonCastling := false
			for _, vm := range valid {
				u := oracleUCI(vm)
				want = append(want, u)
				byUCI[u] = vm
				if !vm.HasTag(chess.KingSideCastle) && !vm.HasTag(chess.QueenSideCastle) {
					nonCastling = true
				}
			}
			ours := legalMoves(&s)
			got := make([]string, 0, len(ours))
			for _, m := range ours {
				got = append(got, m.ToUCI())
			}
			slices.Sort(want)
			slices.Sort(got)
			if !slices.Equal(got, want) {
				t.Fatalf("game %d ply %d %s:\n got  %v\n want %v", gi, ply, FormatFEN(&s, 1), got, want)
			}
			if HasLegalMove(&s) != nonCastling {
				t.Fatalf("game %d ply %d %s: HasLegalMove = %v, want %v", gi, ply, FormatFEN(&s, 1), !nonCastling, nonCastling)
			}
			if len(ours) == 0 {
				break
			}

			m := ours[rng.Intn(len(ours))]
			mover := s.SideToMove()
			if !Apply(m, &s) {
				t.Fatalf("game %d ply %d: enumerated move %v rejected", gi, ply, m)
			}
			if IsCheck(mover, &s) {
				t.Fatalf("game %d ply %d: %v left the mover in check", gi, ply, m)
			}
			if err := g.Move(byUCI[m.ToUCI()]); err != nil {
				t.Fatalf("game %d ply %d: oracle rejected %v: %v", gi, ply, m, err)
			}
		}

		if g.Method() == chess.Checkmate || g.Method() == chess.Stalemate {
			if HasLegalMove(&s) {
				t.Errorf("game %d ended by %v but HasLegalMove is true", gi, g.Method())
			}
			if inCheck := IsCheck(s.SideToMove(), &s); inCheck != (g.Method() == chess.Checkmate) {
				t.Errorf("game %d ended by %v but IsCheck = %v", gi, g.Method(), inCheck)
			}
		}
	}
}
