package notation

import (
	"bufio"
	"io"

	"github.com/fatih/color"

	"github.com/andrewkomo/moon-chess/internal/rules"
)

type palette struct {
	square [2][2]*color.Color // [light][piece color]
}

func newPalette() *palette {
	p := &palette{}
	for light, bg := range [2]color.Attribute{color.BgGreen, color.BgYellow} {
		p.square[light][rules.White] = color.New(color.FgHiWhite, color.Bold, bg)
		p.square[light][rules.Black] = color.New(color.FgBlack, color.Bold, bg)
		for _, c := range p.square[light] {
			c.EnableColor()
		}
	}
	return p
}

// Diagram writes s as an 8x8 board with white at the bottom, ranks on the
// left and files below. Plain output shows black pieces in lower case and
// empty squares as dots; colored output uses ANSI square backgrounds.
func Diagram(w io.Writer, s *rules.GameState, colored bool) error {
	var pal *palette
	if colored {
		pal = newPalette()
	}
	bw := bufio.NewWriter(w)
	for rank := 7; rank >= 0; rank-- {
		bw.WriteByte(byte('1' + rank))
		bw.WriteByte(' ')
		for col := 0; col < 8; col++ {
			p, c := s.Board.At(rank, col)
			if pal == nil {
				ch := byte('.')
				if p != rules.Empty {
					ch = p.String()[0]
					if c == rules.Black {
						ch |= 0x20
					}
				}
				bw.WriteByte(ch)
				if col < 7 {
					bw.WriteByte(' ')
				}
				continue
			}
			glyph := "   "
			if p != rules.Empty {
				glyph = " " + p.String()[:1] + " "
			}
			light := (rank+col)%2 == 1
			idx := 0
			if light {
				idx = 1
			}
			bw.WriteString(pal.square[idx][c].Sprint(glyph))
		}
		bw.WriteByte('\n')
	}
	if pal == nil {
		bw.WriteString("  a b c d e f g h\n")
	} else {
		bw.WriteString("   a  b  c  d  e  f  g  h\n")
	}
	return bw.Flush()
}
