package geom

import "math"

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add offsets a cell.
func (c Cell) Add(dx, dy int) Cell { return Cell{X: c.X + dx, Y: c.Y + dy} }

// GridIndex quantizes world positions into cells of a fixed size. Many points
// map to the same cell.
type GridIndex struct {
	CellWidth  float64
	CellHeight float64
}

// NewGridIndex returns a grid index, falling back to one world unit for
// non-positive sizes.
func NewGridIndex(cellWidth, cellHeight float64) GridIndex {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 1
	}
	return GridIndex{CellWidth: cellWidth, CellHeight: cellHeight}
}

// CellOf returns floor(p / cellSize) on both axes.
func (g GridIndex) CellOf(p Vec2) Cell {
	return Cell{
		X: int(math.Floor(p.X / g.CellWidth)),
		Y: int(math.Floor(p.Y / g.CellHeight)),
	}
}

// Center returns the world-space centre of a cell.
func (g GridIndex) Center(c Cell) Vec2 {
	return Vec2{
		X: (float64(c.X) + 0.5) * g.CellWidth,
		Y: (float64(c.Y) + 0.5) * g.CellHeight,
	}
}

// Corners returns the four points inset from the cell centre by the given
// fraction of the half cell. inset 0.8 puts the points 10% of a cell inside
// each edge.
func (g GridIndex) Corners(c Cell, inset float64) [4]Vec2 {
	center := g.Center(c)
	hx := g.CellWidth * 0.5 * inset
	hy := g.CellHeight * 0.5 * inset
	return [4]Vec2{
		{X: center.X - hx, Y: center.Y - hy},
		{X: center.X + hx, Y: center.Y - hy},
		{X: center.X - hx, Y: center.Y + hy},
		{X: center.X + hx, Y: center.Y + hy},
	}
}
