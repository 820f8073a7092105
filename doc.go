// Package striprast implements a hybrid CPU/GPU 2D vector-graphics
// rasterizer built around a sparse-strip intermediate representation.
//
// # Overview
//
// Paths are flattened into line segments, rasterized into compact sparse
// strips (a run-length-like encoding of anti-aliased coverage), gamma
// corrected, scheduled across a bounded number of GPU clip-texture slots,
// and finally encoded into a tightly packed instance buffer consumed by a
// GPU draw call.
//
// # Pipeline
//
//	segments -> strips (internal/raster) -> gamma (internal/gamma) ->
//	wide tiles (internal/wtile) -> schedule (internal/schedule) -> GpuStrip
//
// # Architecture
//
// The library is organized into:
//   - internal/wide: fixed-width float32 lanes for the strip rasterizer
//   - internal/raster: line segments, tiles, strip generation
//   - internal/gamma: perceptual gamma correction of coverage alpha
//   - internal/wtile: wide-tile command lists (Fill, AlphaFill, clip push/pop)
//   - internal/schedule: slot allocation and round scheduling for clip textures
//
// # Coordinate System
//
// Uses standard computer graphics coordinates: origin (0,0) at top-left, X
// increases right, Y increases down.
package striprast
