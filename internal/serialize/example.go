// Package serialize turns a solved maze into the canonical dataset line.
// The token stream is the wire format consumed by downstream training code;
// any change to token order or spelling is a format break.
package serialize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/lamim/mazeforge/pkg/models"
)

// exampleLine is the JSON envelope around the token stream.
type exampleLine struct {
	Text string `json:"text"`
}

// Example renders one newline-terminated dataset line for a maze and its
// solver output. Token order: the query header, walls row-major, the
// reasoning trace in emission order, the plan, and the closing "end".
func Example(spec *models.MazeSpec, res *models.SearchResult) ([]byte, error) {
	var b strings.Builder

	b.WriteString("query start ")
	writeInt(&b, spec.Start.X)
	b.WriteByte(' ')
	writeInt(&b, spec.Start.Y)
	b.WriteString(" goal ")
	writeInt(&b, spec.Goal.X)
	b.WriteByte(' ')
	writeInt(&b, spec.Goal.Y)

	g := spec.Grid
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			if g.At(x, y) == models.Wall {
				b.WriteString(" wall ")
				writeInt(&b, x)
				b.WriteByte(' ')
				writeInt(&b, y)
			}
		}
	}

	b.WriteString(" reasoning")
	for _, ev := range res.Reasoning {
		b.WriteByte(' ')
		b.WriteString(ev.Tag)
		b.WriteByte(' ')
		writeInt(&b, ev.X)
		b.WriteByte(' ')
		writeInt(&b, ev.Y)
		b.WriteString(" c")
		writeInt(&b, ev.G)
		b.WriteString(" c")
		writeInt(&b, ev.H)
	}

	b.WriteString(" solution")
	for _, c := range res.Plan {
		b.WriteString(" plan ")
		writeInt(&b, c.X)
		b.WriteByte(' ')
		writeInt(&b, c.Y)
	}

	b.WriteString(" end")

	data, err := json.Marshal(exampleLine{Text: b.String()})
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeInt(b *strings.Builder, v int) {
	b.WriteString(strconv.Itoa(v))
}
