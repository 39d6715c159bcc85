package ui

type zoneKind int

const (
	zoneCell zoneKind = iota
	zoneSave
	zoneReset
)

// zone is a clickable rectangle, one line tall, in screen coordinates.
type zone struct {
	kind zoneKind
	task int
	unit int
	x    int
	y    int
	w    int
}

// layout records where the last rendered view placed clickable elements.
type layout struct {
	zones []zone
}

// hit returns the zone under screen position (x, y).
func (l layout) hit(x, y int) (zone, bool) {
	for _, z := range l.zones {
		if y == z.y && x >= z.x && x < z.x+z.w {
			return z, true
		}
	}
	return zone{}, false
}
