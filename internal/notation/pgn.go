package notation

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andrewkomo/moon-chess/internal/game"
	"github.com/andrewkomo/moon-chess/internal/rules"
)

const lineWidth = 80

// MoveText replays the moves of g from its starting position and returns
// them in SAN.
func MoveText(g *game.Game) ([]string, error) {
	s := g.Start
	out := make([]string, 0, len(g.Moves))
	for i, m := range g.Moves {
		san, err := SAN(&s, m)
		if err != nil {
			return nil, fmt.Errorf("ply %d: %w", i+1, err)
		}
		rules.Apply(m, &s)
		out = append(out, san)
	}
	return out, nil
}

// WritePGN writes g as a single PGN game.
func WritePGN(w io.Writer, g *game.Game) error {
	sans, err := MoveText(g)
	if err != nil {
		return err
	}

	var sb strings.Builder
	tag := func(name, value string) {
		fmt.Fprintf(&sb, "[%s %s]\n", name, strconv.Quote(value))
	}
	tag("Event", eventName(g))
	tag("Site", "moon-chess")
	tag("Date", g.Created.UTC().Format("2006.01.02"))
	tag("Round", "-")
	tag("White", orUnknown(g.White))
	tag("Black", orUnknown(g.Black))
	tag("Result", g.Result.PGN())
	if g.ID != "" {
		tag("GameId", g.ID)
	}
	if g.Start != rules.NewGameState() || g.StartFullMove != 1 {
		tag("SetUp", "1")
		tag("FEN", rules.FormatFEN(&g.Start, g.StartFullMove))
	}
	if g.Result.IsTerminal() {
		tag("Termination", g.Result.String())
	}
	sb.WriteByte('\n')

	var tokens []string
	fullMove := g.StartFullMove
	whiteToMove := g.Start.WhiteToMove
	for i, san := range sans {
		switch {
		case whiteToMove:
			tokens = append(tokens, strconv.Itoa(fullMove)+".")
		case i == 0:
			tokens = append(tokens, strconv.Itoa(fullMove)+"...")
		}
		tokens = append(tokens, san)
		if !whiteToMove {
			fullMove++
		}
		whiteToMove = !whiteToMove
	}
	tokens = append(tokens, g.Result.PGN())

	width := 0
	for i, tok := range tokens {
		if i > 0 {
			if width+1+len(tok) > lineWidth {
				sb.WriteByte('\n')
				width = 0
			} else {
				sb.WriteByte(' ')
				width++
			}
		}
		sb.WriteString(tok)
		width += len(tok)
	}
	sb.WriteString("\n\n")

	_, err = io.WriteString(w, sb.String())
	return err
}

func eventName(g *game.Game) string {
	if g.Name != "" {
		return g.Name
	}
	return "Casual game"
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
