package tasks

import (
	"math"
	"slices"
)

// KmPerDegree converts a planar distance in degrees to kilometres.
const KmPerDegree = 111.32

// ViewContext is the client state a board view depends on.
type ViewContext struct {
	// Dismissed holds the ids hidden on this device.
	Dismissed map[string]struct{}
	// Origin is the viewer's position, nil when unknown.
	Origin *Location
}

// IsDismissed reports whether id is hidden in this context.
func (c ViewContext) IsDismissed(id string) bool {
	_, ok := c.Dismissed[id]
	return ok
}

// DistanceKm returns the approximate distance between the viewer and the
// task. ok is false when either position is unknown.
func (c ViewContext) DistanceKm(t Task) (km float64, ok bool) {
	if c.Origin == nil {
		return 0, false
	}
	loc, err := ParseLocation(t.Location)
	if err != nil || loc == nil {
		return 0, false
	}

	dLat := c.Origin.Lat - loc.Lat
	dLng := c.Origin.Lng - loc.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) * KmPerDegree, true
}

// Views is the board split into open and completed tasks.
type Views struct {
	Todo []Task `json:"todo"`
	Done []Task `json:"done"`
}

// DeriveViews partitions tasks into open and completed lists, drops the
// dismissed ones and orders both newest first. tasks is expected in store
// (insertion) order; tasks created at the same instant come out with the
// later-inserted one first. The input slice is not modified.
func DeriveViews(tasks []Task, ctx ViewContext) Views {
	views := Views{
		Todo: make([]Task, 0, len(tasks)),
		Done: make([]Task, 0),
	}

	// Walk backwards so the stable sort below leaves equal timestamps in
	// reverse insertion order.
	for i := len(tasks) - 1; i >= 0; i-- {
		t := tasks[i]
		if ctx.IsDismissed(t.ID) {
			continue
		}
		if t.Completed {
			views.Done = append(views.Done, t)
		} else {
			views.Todo = append(views.Todo, t)
		}
	}

	slices.SortStableFunc(views.Todo, newestFirst)
	slices.SortStableFunc(views.Done, newestFirst)
	return views
}

func newestFirst(a, b Task) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}
