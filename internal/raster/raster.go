// Package raster implements the strip-coverage rasterizer: it converts
// tile-sorted line segments into sparse strips and a packed alpha
// buffer using a fractional-area-coverage algorithm.
package raster

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/striprast/internal/gamma"
	"github.com/gogpu/striprast/internal/wide"
)

// FillRule selects how accumulated winding is converted to coverage.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

var (
	// ErrAlphaOverflow is returned when alpha_idx would exceed 2^31,
	// beyond the scene complexity this rasterizer supports.
	ErrAlphaOverflow = errors.New("raster: alpha index exceeds 2^31")
	// ErrInvalidStripInput is raised only under debug assertions, when
	// the tile sequence violates the column-count invariant.
	ErrInvalidStripInput = errors.New("raster: tile sequence is unsorted or missing sentinel")
)

// debugAssertions gates the column-count invariant check, which is
// costly enough to skip outside of tests and development builds.
var debugAssertions = false

// SetDebugAssertions enables or disables debug-time invariant checks.
// Disabled by default; undefined behavior (no check at all) in release
// use is the expected configuration.
func SetDebugAssertions(enabled bool) { debugAssertions = enabled }

const maxAlphaIdx = 1 << 31

type options struct {
	fillRule          FillRule
	aliasingThreshold *uint8
	gammaCorrector    *gamma.Corrector
	logger            *slog.Logger
	pool              *Pool
}

// Option configures a Rasterizer.
type Option func(*options)

// WithFillRule sets the fill rule used to convert winding into coverage.
func WithFillRule(r FillRule) Option {
	return func(o *options) { o.fillRule = r }
}

// WithAliasingThreshold snaps coverage bytes to 0 or 255 depending on
// whether they meet the threshold.
func WithAliasingThreshold(t uint8) Option {
	return func(o *options) { th := t; o.aliasingThreshold = &th }
}

// WithGamma applies a gamma corrector to every coverage byte before it
// is appended to the alpha buffer.
func WithGamma(c *gamma.Corrector) Option {
	return func(o *options) { o.gammaCorrector = c }
}

// WithLogger overrides the rasterizer's logger. Defaults to a handler
// that discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPool draws Rasterize's output strip and alpha buffers from p
// instead of allocating fresh ones on every call. Callers that render
// many scenes in a loop should pass the same Pool to every Rasterizer
// and call Release once each result has been consumed.
func WithPool(p *Pool) Option {
	return func(o *options) { o.pool = p }
}

// Rasterizer converts tile sequences into sparse strips and an alpha
// buffer. It owns no per-call state beyond its configured options and
// is safe to reuse across calls from a single goroutine.
type Rasterizer struct {
	opts options
}

// New creates a Rasterizer with the given options. Default fill rule is
// NonZero, with no aliasing threshold and no gamma correction.
func New(opts ...Option) *Rasterizer {
	r := &Rasterizer{opts: options{
		fillRule: NonZero,
		logger:   slog.New(slog.DiscardHandler),
	}}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// Release returns strips and alpha, previously produced by Rasterize,
// to the Rasterizer's configured Pool for reuse by a later call. It is
// a no-op when no Pool was set via WithPool.
func (r *Rasterizer) Release(strips []Strip, alpha []byte) {
	if r.opts.pool == nil {
		return
	}
	r.opts.pool.PutStrips(strips)
	r.opts.pool.PutAlpha(alpha)
}

// Rasterize consumes tiles (sorted by (tile_y, tile_x), ascending
// sequence order as secondary key) and their referenced lines, and
// produces the strip sequence plus the appended alpha-buffer bytes.
//
// tiles must not itself contain the terminal sentinel; Rasterize
// appends it internally. lines must have at least one entry whenever
// tiles is non-empty.
func (r *Rasterizer) Rasterize(tiles []Tile, lines []LineSegment) ([]Strip, []byte, error) {
	if len(tiles) == 0 {
		return nil, nil, nil
	}

	rule := r.opts.fillRule
	shouldFill := func(winding int32) bool {
		if rule == EvenOdd {
			return winding%2 != 0
		}
		return winding != 0
	}

	var stripBuf []Strip
	var alphaBuf []byte
	if r.opts.pool != nil {
		stripBuf = r.opts.pool.GetStrips(len(tiles))
		alphaBuf = r.opts.pool.GetAlpha(len(tiles) * TileWidth * TileHeight)
	}

	var windingDelta int32
	prevTile := tiles[0]

	var locationWinding [TileWidth]wide.F32x4
	var accumulatedWinding wide.F32x4

	strip := NewStrip(prevTile.X*TileWidth, prevTile.Y*TileHeight, uint32(len(alphaBuf)), false)

	total := len(tiles) + 1 // + sentinel
	for tileIdx := 0; tileIdx < total; tileIdx++ {
		tile := sentinelTile
		if tileIdx < len(tiles) {
			tile = tiles[tileIdx]
		}

		line := lines[tile.LineIdx]
		tileLeftX := float32(tile.X) * TileWidth
		tileTopY := float32(tile.Y) * TileHeight
		p0x := line.P0X - tileLeftX
		p0y := line.P0Y - tileTopY
		p1x := line.P1X - tileLeftX
		p1y := line.P1Y - tileTopY

		if !prevTile.SameLoc(tile) {
			flushLocation(rule, &locationWinding)

			var u8vals [TileWidth * TileHeight]uint8
			for x := 0; x < TileWidth; x++ {
				for y := 0; y < TileHeight; y++ {
					u8vals[x*TileHeight+y] = f32ToU8(locationWinding[x][y])
				}
			}

			if th := r.opts.aliasingThreshold; th != nil {
				for i, v := range u8vals {
					if v >= *th {
						u8vals[i] = 255
					} else {
						u8vals[i] = 0
					}
				}
			}

			if c := r.opts.gammaCorrector; c != nil {
				for i, v := range u8vals {
					u8vals[i] = c.Correct(v)
				}
			}

			alphaBuf = append(alphaBuf, u8vals[:]...)

			for x := range locationWinding {
				locationWinding[x] = accumulatedWinding
			}
		}

		if !prevTile.SameLoc(tile) && !prevTile.PrevLoc(tile) {
			if debugAssertions {
				expectedCols := uint32(prevTile.X+1)*TileWidth - uint32(strip.X)
				actualCols := (uint32(len(alphaBuf)) - strip.AlphaIdx()) / TileHeight
				if expectedCols != actualCols {
					return stripBuf, alphaBuf, fmt.Errorf("%w: expected %d columns, wrote %d", ErrInvalidStripInput, expectedCols, actualCols)
				}
			}
			stripBuf = append(stripBuf, strip)

			isSentinel := tileIdx == len(tiles)
			if !prevTile.SameRow(tile) {
				if windingDelta != 0 || isSentinel {
					if uint32(len(alphaBuf)) >= maxAlphaIdx {
						return stripBuf, alphaBuf, fmt.Errorf("%w: %d", ErrAlphaOverflow, len(alphaBuf))
					}
					stripBuf = append(stripBuf, NewStrip(0xFFFF, prevTile.Y*TileHeight, uint32(len(alphaBuf)), shouldFill(windingDelta)))
				}

				windingDelta = 0
				accumulatedWinding = wide.SplatF32(0)
				for x := range locationWinding {
					locationWinding[x] = accumulatedWinding
				}
			}

			if isSentinel {
				break
			}

			if uint32(len(alphaBuf)) >= maxAlphaIdx {
				return stripBuf, alphaBuf, fmt.Errorf("%w: %d", ErrAlphaOverflow, len(alphaBuf))
			}
			strip = NewStrip(tile.X*TileWidth, tile.Y*TileHeight, uint32(len(alphaBuf)), shouldFill(windingDelta))
			accumulatedWinding = wide.SplatF32(float32(windingDelta))
		}
		prevTile = tile

		if p0y == p1y {
			continue
		}

		sign := signum(p0y - p1y)

		var lineTopY, lineTopX, lineBottomY, lineBottomX float32
		if p0y < p1y {
			lineTopY, lineTopX, lineBottomY, lineBottomX = p0y, p0x, p1y, p1x
		} else {
			lineTopY, lineTopX, lineBottomY, lineBottomX = p1y, p1x, p0y, p0x
		}

		var lineLeftX, lineLeftY, lineRightX float32
		if p0x < p1x {
			lineLeftX, lineLeftY, lineRightX = p0x, p0y, p1x
		} else {
			lineLeftX, lineLeftY, lineRightX = p1x, p1y, p0x
		}

		ySlope := (lineBottomY - lineTopY) / (lineBottomX - lineTopX)
		xSlope := 1.0 / ySlope

		windingDelta += int32(tile.Winding)

		if tile.X == 0 && lineLeftX < 0 {
			var ymin, ymax float32
			if line.P0X == line.P1X {
				ymin, ymax = lineTopY, lineBottomY
			} else {
				lineViewportLeftY := clampF(lineTopY-lineTopX*ySlope, lineTopY, lineBottomY)
				ymin = minF(lineLeftY, lineViewportLeftY)
				ymax = maxF(lineLeftY, lineViewportLeftY)
			}

			yminV := wide.SplatF32(ymin)
			ymaxV := wide.SplatF32(ymax)
			pxTopY := wide.F32x4{0, 1, 2, 3}
			pxBottomY := pxTopY.Add(wide.SplatF32(1))
			yminC := pxTopY.Max(yminV)
			ymaxC := pxBottomY.Min(ymaxV)
			h := ymaxC.Sub(yminC).Max(wide.SplatF32(0))
			signV := wide.SplatF32(sign)
			accumulatedWinding = accumulatedWinding.Add(h.Mul(signV))
			for x := range locationWinding {
				locationWinding[x] = locationWinding[x].Add(h.Mul(signV))
			}

			if lineRightX < 0 {
				continue
			}
		}

		lineTopYV := wide.SplatF32(lineTopY)
		lineBottomYV := wide.SplatF32(lineBottomY)
		yIdx := wide.F32x4{0, 1, 2, 3}
		pxTopY := yIdx
		pxBottomY := yIdx.Add(wide.SplatF32(1))

		yminV := lineTopYV.Max(pxTopY)
		ymaxV := lineBottomYV.Min(pxBottomY)

		acc := wide.SplatF32(0)
		signV := wide.SplatF32(sign)

		for xIdx := 0; xIdx < TileWidth; xIdx++ {
			xIdxS := wide.SplatF32(float32(xIdx))
			pxLeftX := xIdxS
			pxRightX := xIdxS.Add(wide.SplatF32(1))

			linePxLeftY := pxLeftX.Sub(wide.SplatF32(lineTopX)).Mul(wide.SplatF32(ySlope)).Add(lineTopYV).Max(yminV).Min(ymaxV)
			linePxRightY := pxRightX.Sub(wide.SplatF32(lineTopX)).Mul(wide.SplatF32(ySlope)).Add(lineTopYV).Max(yminV).Min(ymaxV)

			linePxLeftYX := linePxLeftY.Sub(lineTopYV).Mul(wide.SplatF32(xSlope)).Add(wide.SplatF32(lineTopX))
			linePxRightYX := linePxRightY.Sub(lineTopYV).Mul(wide.SplatF32(xSlope)).Add(wide.SplatF32(lineTopX))

			h := linePxRightY.Sub(linePxLeftY).Abs()

			inner := pxRightX.Mul(wide.SplatF32(2)).Sub(linePxRightYX).Sub(linePxLeftYX)
			area := h.Mul(inner).Mul(wide.SplatF32(0.5))

			locationWinding[xIdx] = locationWinding[xIdx].Add(area.Mul(signV).Add(acc))
			acc = h.Mul(signV).Add(acc)
		}

		accumulatedWinding = accumulatedWinding.Add(acc)
	}

	r.opts.logger.Debug("rasterize complete", "strips", len(stripBuf), "alpha_bytes", len(alphaBuf))

	return stripBuf, alphaBuf, nil
}

// flushLocation converts the current location's fractional winding into
// coverage values in place, per the configured fill rule.
func flushLocation(rule FillRule, locationWinding *[TileWidth]wide.F32x4) {
	switch rule {
	case NonZero:
		for x := 0; x < TileWidth; x++ {
			area := locationWinding[x]
			coverage := area.Abs()
			mulled := coverage.Mul(wide.SplatF32(255)).Add(wide.SplatF32(0.5))
			locationWinding[x] = mulled.Min(wide.SplatF32(255))
		}
	case EvenOdd:
		for x := 0; x < TileWidth; x++ {
			area := locationWinding[x]
			im1 := floor4(area.Mul(wide.SplatF32(0.5)).Add(wide.SplatF32(0.5)))
			coverage := wide.SplatF32(-2.0).Mul(im1).Add(area).Abs()
			mulled := wide.SplatF32(255).Mul(coverage).Add(wide.SplatF32(0.5))
			locationWinding[x] = mulled.Min(wide.SplatF32(255))
		}
	}
}

func floor4(v wide.F32x4) wide.F32x4 {
	var out wide.F32x4
	for i := range v {
		out[i] = float32(math.Floor(float64(v[i])))
	}
	return out
}

func signum(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// f32ToU8 converts an accumulated coverage value (expected in [0,255])
// to a byte via truncation, matching the rounding already folded into
// the fill-rule conversion (+0.5 before the final min/clamp).
func f32ToU8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
