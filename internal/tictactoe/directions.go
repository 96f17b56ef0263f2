package tictactoe

import "github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"

// Directions holds one vector per line orientation through a cube: the three
// axes, the six face diagonals and the four space diagonals. Each vector's
// first non-zero component is positive, so no line is counted twice.
var Directions = [13]entity.Coord{
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},

	{X: 1, Y: 1, Z: 0},
	{X: 1, Y: -1, Z: 0},
	{X: 1, Y: 0, Z: 1},
	{X: 1, Y: 0, Z: -1},
	{X: 0, Y: 1, Z: 1},
	{X: 0, Y: 1, Z: -1},

	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
}
