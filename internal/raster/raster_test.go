package raster

import (
	"bytes"
	"testing"

	"github.com/gogpu/striprast/internal/gamma"
)

// buildSquareTiles constructs the tile/line input for a single
// axis-aligned rectangle path, sorted by (tile_y, tile_x) as Rasterize
// requires.
func buildSquareTiles(x0, y0, x1, y1 float32) ([]Tile, []LineSegment) {
	// Four edges, clockwise in a y-down coordinate system:
	// top (left->right, contributes nothing horizontal... not used),
	// right (top->bottom), bottom (right->left), left (bottom->top).
	lines := []LineSegment{
		{P0X: x1, P0Y: y0, P1X: x1, P1Y: y1}, // right edge, downward
		{P0X: x0, P0Y: y1, P1X: x0, P1Y: y0}, // left edge, upward
	}

	tx0 := int(x0) / TileWidth
	tx1 := (int(x1) - 1) / TileWidth
	ty0 := int(y0) / TileHeight
	ty1 := (int(y1) - 1) / TileHeight

	var tiles []Tile
	for ty := ty0; ty <= ty1; ty++ {
		// left edge upward contributes winding +1
		tiles = append(tiles, Tile{X: uint16(tx0), Y: uint16(ty), LineIdx: 1, Winding: 1})
		// right edge contributes winding -1 (downward decrements by
		// convention sign=(p0y-p1y).signum(); for downward p0y<p1y, sign=-1)
		tiles = append(tiles, Tile{X: uint16(tx1), Y: uint16(ty), LineIdx: 0, Winding: -1})
	}
	return tiles, lines
}

func TestRasterizeEmptyInput(t *testing.T) {
	r := New()
	strips, alpha, err := r.Rasterize(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strips != nil || alpha != nil {
		t.Fatalf("expected nil output for empty input, got strips=%v alpha=%v", strips, alpha)
	}
}

func TestRasterizeMonotonicAlphaIndex(t *testing.T) {
	tiles, lines := buildSquareTiles(8, 8, 16, 16)
	r := New()
	strips, _, err := r.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	var prev uint32
	for i, s := range strips {
		if s.AlphaIdx() < prev {
			t.Fatalf("strip %d: alpha_idx %d < previous %d", i, s.AlphaIdx(), prev)
		}
		prev = s.AlphaIdx()
	}
}

func TestRasterizeCoverageBounds(t *testing.T) {
	tiles, lines := buildSquareTiles(8, 8, 16, 16)
	r := New()
	_, alpha, err := r.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	for i, b := range alpha {
		if b > 255 {
			t.Fatalf("alpha[%d] = %d exceeds byte range", i, b)
		}
	}
}

func TestRasterizeRowEndsInSentinel(t *testing.T) {
	tiles, lines := buildSquareTiles(8, 8, 16, 16)
	r := New()
	strips, _, err := r.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if len(strips) == 0 {
		t.Fatal("expected at least one strip")
	}

	rows := map[uint16]int{}
	for _, s := range strips {
		if s.IsSentinel() {
			rows[s.Y]++
		}
	}
	for y, count := range rows {
		if count != 1 {
			t.Errorf("row %d: expected exactly one sentinel strip, got %d", y, count)
		}
	}
}

func TestRasterizeEvenOddVsNonZero(t *testing.T) {
	tiles, lines := buildSquareTiles(8, 8, 16, 16)

	rNZ := New(WithFillRule(NonZero))
	_, alphaNZ, err := rNZ.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("NonZero Rasterize failed: %v", err)
	}

	rEO := New(WithFillRule(EvenOdd))
	_, alphaEO, err := rEO.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("EvenOdd Rasterize failed: %v", err)
	}

	if len(alphaNZ) != len(alphaEO) {
		t.Fatalf("expected matching alpha buffer lengths for a simple closed path, got %d vs %d", len(alphaNZ), len(alphaEO))
	}
}

func TestStripPackingRoundTrip(t *testing.T) {
	s := NewStrip(4, 8, 12345, true)
	if s.AlphaIdx() != 12345 {
		t.Errorf("AlphaIdx() = %d, want 12345", s.AlphaIdx())
	}
	if !s.FillGap() {
		t.Error("FillGap() = false, want true")
	}

	s.SetAlphaIdx(99)
	if s.AlphaIdx() != 99 {
		t.Errorf("after SetAlphaIdx: AlphaIdx() = %d, want 99", s.AlphaIdx())
	}
	if !s.FillGap() {
		t.Error("SetAlphaIdx must not clear fill_gap")
	}

	s.SetFillGap(false)
	if s.FillGap() {
		t.Error("SetFillGap(false) did not clear the flag")
	}
	if s.AlphaIdx() != 99 {
		t.Error("SetFillGap must not disturb alpha_idx")
	}
}

func TestStripAlphaIdxOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for alpha_idx colliding with fill_gap bit")
		}
	}()
	NewStrip(0, 0, 1<<31, false)
}

// reverseDirection builds the tile/line input for a path traversed in
// the opposite direction: every line's endpoints swap and every tile's
// winding contribution negates.
func reverseDirection(tiles []Tile, lines []LineSegment) ([]Tile, []LineSegment) {
	revLines := make([]LineSegment, len(lines))
	for i, l := range lines {
		revLines[i] = LineSegment{P0X: l.P1X, P0Y: l.P1Y, P1X: l.P0X, P1Y: l.P0Y}
	}
	revTiles := make([]Tile, len(tiles))
	for i, tl := range tiles {
		revTiles[i] = Tile{X: tl.X, Y: tl.Y, LineIdx: tl.LineIdx, Winding: -tl.Winding}
	}
	return revTiles, revLines
}

func TestRasterizeSymmetryUnderDirectionReversal(t *testing.T) {
	tiles, lines := buildSquareTiles(8, 8, 16, 16)
	revTiles, revLines := reverseDirection(tiles, lines)

	_, alphaFwdNZ, err := New(WithFillRule(NonZero)).Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("forward NonZero Rasterize failed: %v", err)
	}
	_, alphaRevNZ, err := New(WithFillRule(NonZero)).Rasterize(revTiles, revLines)
	if err != nil {
		t.Fatalf("reversed NonZero Rasterize failed: %v", err)
	}
	if !bytes.Equal(alphaFwdNZ, alphaRevNZ) {
		t.Fatalf("NonZero coverage for a closed path must match exactly under direction reversal")
	}

	_, alphaFwdEO, err := New(WithFillRule(EvenOdd)).Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("forward EvenOdd Rasterize failed: %v", err)
	}
	_, alphaRevEO, err := New(WithFillRule(EvenOdd)).Rasterize(revTiles, revLines)
	if err != nil {
		t.Fatalf("reversed EvenOdd Rasterize failed: %v", err)
	}
	if !bytes.Equal(alphaFwdEO, alphaRevEO) {
		t.Fatalf("EvenOdd coverage must be strictly identical under direction reversal")
	}
}

func TestRasterizeWithPoolReusesBuffers(t *testing.T) {
	pool := NewPool()
	r := New(WithPool(pool))
	tiles, lines := buildSquareTiles(8, 8, 16, 16)

	strips1, alpha1, err := r.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("first Rasterize failed: %v", err)
	}
	capStrips1, capAlpha1 := cap(strips1), cap(alpha1)
	r.Release(strips1, alpha1)

	strips2, alpha2, err := r.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("second Rasterize failed: %v", err)
	}
	if cap(strips2) != capStrips1 {
		t.Errorf("second call strip buffer cap = %d, want reused cap %d", cap(strips2), capStrips1)
	}
	if cap(alpha2) != capAlpha1 {
		t.Errorf("second call alpha buffer cap = %d, want reused cap %d", cap(alpha2), capAlpha1)
	}
}

func TestGammaAppliedToCoverage(t *testing.T) {
	tiles, lines := buildSquareTiles(8, 8, 16, 16)

	plain := New()
	_, alphaPlain, err := plain.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	c := gamma.New(128)
	corrected := New(WithGamma(c))
	_, alphaCorrected, err := corrected.Rasterize(tiles, lines)
	if err != nil {
		t.Fatalf("Rasterize with gamma failed: %v", err)
	}

	if len(alphaPlain) != len(alphaCorrected) {
		t.Fatalf("gamma correction must not change alpha buffer length")
	}
	for i, v := range alphaPlain {
		if want := c.Correct(v); alphaCorrected[i] != want {
			t.Fatalf("alpha[%d] = %d, want Correct(%d) = %d", i, alphaCorrected[i], v, want)
		}
	}
}
