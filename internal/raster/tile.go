package raster

// TileWidth and TileHeight are the fixed dimensions, in pixels, of the
// coverage-accumulation unit the rasterizer operates on.
const (
	TileWidth  = 4
	TileHeight = 4
)

// Tile is an atomic unit covering a TileWidth x TileHeight pixel region.
// It references one line segment and carries that line's signed winding
// contribution across the tile's top edge.
type Tile struct {
	X       uint16
	Y       uint16
	LineIdx uint32
	Winding int8
}

// sentinelTile marks the end of a tile sequence.
var sentinelTile = Tile{X: 0xFFFF, Y: 0xFFFF}

// IsSentinel reports whether t is the tile-sequence terminator.
func (t Tile) IsSentinel() bool {
	return t.X == 0xFFFF && t.Y == 0xFFFF
}

// SameLoc reports whether t and o reference the same (x, y) tile
// location (multiple tiles, from different lines, may share a location).
func (t Tile) SameLoc(o Tile) bool {
	return t.X == o.X && t.Y == o.Y
}

// SameRow reports whether t and o are in the same tile row.
func (t Tile) SameRow(o Tile) bool {
	return t.Y == o.Y
}

// PrevLoc reports whether o is the tile immediately to the right of t in
// the same row, i.e. no strip break is needed between them.
func (t Tile) PrevLoc(o Tile) bool {
	return t.Y == o.Y && t.X+1 == o.X
}

// LineSegment is a flattened line endpoint pair in pixel coordinates.
type LineSegment struct {
	P0X, P0Y float32
	P1X, P1Y float32
}
