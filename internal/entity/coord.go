package entity

import "fmt"

// Coord addresses a cell of the cube.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns the cell reached by taking steps along direction d.
func (that Coord) Add(d Coord, steps int) Coord {
	return Coord{
		X: that.X + d.X*steps,
		Y: that.Y + d.Y*steps,
		Z: that.Z + d.Z*steps,
	}
}

func (that Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", that.X, that.Y, that.Z)
}

// WinningLine is the run of exactly Size cells that ended the game.
type WinningLine struct {
	Winner Mark  `json:"winner"`
	Start  Coord `json:"start"`
	End    Coord `json:"end"`
}
