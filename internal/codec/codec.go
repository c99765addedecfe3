// Package codec implements the fixed binary encoding of a maze spec used to
// move mazes between the producer and the solver workers. The buffer is
// opaque bytes to the transport layer and is handed over by move, never
// cloned.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/lamim/mazeforge/pkg/models"
)

// HeaderSize is the fixed prefix: six little-endian uint32 words holding
// rows, cols, startX, startY, goalX, goalY.
const HeaderSize = 24

// Encode serializes a maze spec into a contiguous buffer: the 24-byte header
// followed by rows*cols grid bytes in row-major order.
func Encode(spec *models.MazeSpec) []byte {
	g := spec.Grid
	buf := make([]byte, HeaderSize+len(g.Cells))
	binary.LittleEndian.PutUint32(buf[0:], uint32(g.Rows))
	binary.LittleEndian.PutUint32(buf[4:], uint32(g.Cols))
	binary.LittleEndian.PutUint32(buf[8:], uint32(spec.Start.X))
	binary.LittleEndian.PutUint32(buf[12:], uint32(spec.Start.Y))
	binary.LittleEndian.PutUint32(buf[16:], uint32(spec.Goal.X))
	binary.LittleEndian.PutUint32(buf[20:], uint32(spec.Goal.Y))
	copy(buf[HeaderSize:], g.Cells)
	return buf
}

// Decode reconstructs a maze spec from an encoded buffer. The grid cells are
// copied out of the buffer so the caller may release it afterwards.
func Decode(buf []byte) (*models.MazeSpec, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("encoded spec too short: %d bytes", len(buf))
	}
	rows := int(binary.LittleEndian.Uint32(buf[0:]))
	cols := int(binary.LittleEndian.Uint32(buf[4:]))
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("encoded spec has invalid dimensions %dx%d", rows, cols)
	}
	if want := HeaderSize + rows*cols; len(buf) != want {
		return nil, fmt.Errorf("encoded spec length mismatch: got %d bytes, want %d", len(buf), want)
	}

	grid := models.NewGrid(rows, cols)
	copy(grid.Cells, buf[HeaderSize:])

	return &models.MazeSpec{
		Grid: grid,
		Start: models.Cell{
			X: int(binary.LittleEndian.Uint32(buf[8:])),
			Y: int(binary.LittleEndian.Uint32(buf[12:])),
		},
		Goal: models.Cell{
			X: int(binary.LittleEndian.Uint32(buf[16:])),
			Y: int(binary.LittleEndian.Uint32(buf[20:])),
		},
	}, nil
}
