package solver

import (
	"math"

	"github.com/lamim/mazeforge/pkg/models"
)

// neighborOrder is the fixed expansion order. Several byte-level properties
// of the output stream depend on it; do not reorder.
var neighborOrder = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

const unreached = math.MaxInt32

// Solve runs A* from start to goal and records the reasoning trace. The open
// set is an unordered list scanned linearly; on equal fScore the entry with
// the smallest list index wins. That tie-break is observable in the emitted
// trace, which is why a heap is not used here.
func Solve(grid *models.Grid, start, goal models.Cell, h Heuristic) *models.SearchResult {
	n := grid.Rows * grid.Cols
	gScore := make([]int32, n)
	fScore := make([]int32, n)
	for i := range gScore {
		gScore[i] = unreached
		fScore[i] = unreached
	}
	cameFrom := make([]int32, n)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	closed := make([]bool, n)

	idx := func(c models.Cell) int { return c.Y*grid.Cols + c.X }

	startIdx := idx(start)
	gScore[startIdx] = 0
	fScore[startIdx] = int32(h(start.X, start.Y, goal.X, goal.Y))

	open := []models.Cell{start}
	var events []models.ReasoningEvent
	found := false

	for len(open) > 0 {
		best := 0
		bestF := fScore[idx(open[0])]
		for i := 1; i < len(open); i++ {
			if f := fScore[idx(open[i])]; f < bestF {
				best = i
				bestF = f
			}
		}
		current := open[best]
		open = append(open[:best], open[best+1:]...)
		curIdx := idx(current)

		events = append(events, models.ReasoningEvent{
			Tag: models.EventClose,
			X:   current.X,
			Y:   current.Y,
			G:   int(gScore[curIdx]),
			H:   h(current.X, current.Y, goal.X, goal.Y),
		})

		if current == goal {
			found = true
			break
		}
		closed[curIdx] = true

		for _, d := range neighborOrder {
			nx, ny := current.X+d[0], current.Y+d[1]
			if !grid.InBounds(nx, ny) || grid.At(nx, ny) == models.Wall {
				continue
			}
			nIdx := ny*grid.Cols + nx
			if closed[nIdx] {
				continue
			}
			tentative := gScore[curIdx] + 1
			if tentative >= gScore[nIdx] {
				continue
			}
			cameFrom[nIdx] = int32(curIdx)
			gScore[nIdx] = tentative
			hn := h(nx, ny, goal.X, goal.Y)
			fScore[nIdx] = tentative + int32(hn)
			if !contains(open, nx, ny) {
				open = append(open, models.Cell{X: nx, Y: ny})
			}
			// An improvement is recorded even when the neighbor is already
			// queued, so a cell can appear in several create events.
			events = append(events, models.ReasoningEvent{
				Tag: models.EventCreate,
				X:   nx,
				Y:   ny,
				G:   int(tentative),
				H:   hn,
			})
		}
	}

	result := &models.SearchResult{Reasoning: events}
	if !found {
		return result
	}

	var reversed []models.Cell
	cur := idx(goal)
	for cameFrom[cur] != -1 {
		reversed = append(reversed, models.Cell{X: cur % grid.Cols, Y: cur / grid.Cols})
		cur = int(cameFrom[cur])
	}
	plan := make([]models.Cell, 0, len(reversed)+1)
	plan = append(plan, start)
	for i := len(reversed) - 1; i >= 0; i-- {
		plan = append(plan, reversed[i])
	}
	result.Plan = plan
	return result
}

func contains(open []models.Cell, x, y int) bool {
	for _, c := range open {
		if c.X == x && c.Y == y {
			return true
		}
	}
	return false
}
