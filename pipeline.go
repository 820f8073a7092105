package striprast

import (
	"github.com/gogpu/striprast/internal/gamma"
	"github.com/gogpu/striprast/internal/raster"
	"github.com/gogpu/striprast/internal/schedule"
)

// Re-exported types from the rasterizer, gamma and scheduler packages.
// The wide-tile scene types of internal/wtile are not re-exported.
type (
	// FillRule selects how accumulated winding is converted to coverage.
	FillRule = raster.FillRule
	// Tile is one 4x4 region of a tile-sorted rasterizer input.
	Tile = raster.Tile
	// LineSegment is a single edge referenced by one or more Tiles.
	LineSegment = raster.LineSegment
	// Strip is one packed sparse-strip output record.
	Strip = raster.Strip
	// GammaCorrector applies perceptual gamma correction to coverage bytes.
	GammaCorrector = gamma.Corrector
	// RendererDelegate issues the render passes a Scheduler describes.
	RendererDelegate = schedule.RendererDelegate
	// GpuStrip is the bit-exact instanced vertex record sent to the GPU.
	GpuStrip = schedule.GpuStrip
	// LoadOp selects whether a render pass preserves or discards a
	// render target's existing contents.
	LoadOp = schedule.LoadOp
)

const (
	NonZero = raster.NonZero
	EvenOdd = raster.EvenOdd

	LoadOpLoad  = schedule.LoadOpLoad
	LoadOpClear = schedule.LoadOpClear
)

// RasterizerOption configures a Rasterizer built by NewRasterizer.
type RasterizerOption = raster.Option

var (
	// WithFillRule sets the fill rule used to convert winding into coverage.
	WithFillRule = raster.WithFillRule
	// WithAliasingThreshold snaps coverage bytes to 0 or 255.
	WithAliasingThreshold = raster.WithAliasingThreshold
	// WithGamma applies a gamma corrector to every coverage byte.
	WithGamma = raster.WithGamma
)

// NewRasterizer builds a strip-coverage rasterizer, wiring the package
// logger in through Logger() unless overridden by a later option.
func NewRasterizer(opts ...RasterizerOption) *raster.Rasterizer {
	all := append([]RasterizerOption{raster.WithLogger(Logger())}, opts...)
	return raster.New(all...)
}

// NewGammaCorrector builds a gamma corrector for the given background
// luminance (0-255).
func NewGammaCorrector(luminance uint8) *GammaCorrector {
	return gamma.New(luminance)
}

// SchedulerOption configures a Scheduler built by NewScheduler.
type SchedulerOption = schedule.Option

// WithSchedulerLogger overrides the scheduler's logger.
var WithSchedulerLogger = schedule.WithLogger

// NewScheduler builds a slot scheduler targeting delegate, with
// slotsPerTexture slots in each of the two intermediate clip textures.
// The package logger from Logger() is wired in unless overridden by a
// later option.
func NewScheduler(delegate RendererDelegate, slotsPerTexture int, opts ...SchedulerOption) *schedule.Scheduler {
	all := append([]SchedulerOption{schedule.WithLogger(Logger())}, opts...)
	return schedule.New(delegate, slotsPerTexture, all...)
}
