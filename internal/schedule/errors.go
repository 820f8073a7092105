package schedule

import "errors"

var (
	// ErrSlotExhausted is returned when the scheduler cannot allocate a
	// slot and has no pending round left to flush. Callers are expected
	// to configure slotsPerTexture >= the scene's maximum nested clip
	// depth.
	ErrSlotExhausted = errors.New("schedule: no free slot and no pending round to flush")
	// ErrZeroAlphaInFill is raised, under debug assertions, when a Fill
	// or AlphaFill carries a premultiplied color with zero alpha --
	// zero alpha is reserved for clip-sampling encodings.
	ErrZeroAlphaInFill = errors.New("schedule: Fill/AlphaFill carries zero-alpha premultiplied color")
)

// debugAssertions gates the zero-alpha-in-fill check, matching the
// rasterizer's debug-only invariant-checking policy.
var debugAssertions = false

// SetDebugAssertions enables or disables debug-time invariant checks.
func SetDebugAssertions(enabled bool) { debugAssertions = enabled }
