// Package schedule implements the two-texture, round-based scheduler
// that assigns clip/blend draws to render passes while bounding
// intermediate memory, and the strip encoder that remaps command
// coordinates into GPU strip instances.
package schedule

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/striprast/internal/wtile"
)

// LoadOp selects whether a render pass preserves or discards a render
// target's existing contents.
type LoadOp uint8

const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
)

// RendererDelegate is the external collaborator that owns the GPU
// textures and issues the render passes the scheduler describes.
// Texture allocation and alpha-buffer upload are the delegate's
// responsibility and must be complete before RenderScene is called.
type RendererDelegate interface {
	ClearSlots(textureIx int, slotIndices []uint32)
	DrawStrips(strips []GpuStrip, targetIx int, loadOp LoadOp)
}

// sentinelSlot marks the stack element representing the final render
// target, which owns no clip-texture slot.
const sentinelSlot = ^uint32(0)

// tileEl is one element of a wide tile's clip-layer stack: the slot
// holding the layer's accumulated pixels, and the earliest round in
// which those pixels are observable.
type tileEl struct {
	slotIx uint32
	round  int
}

// draw is one render target's accumulated strip list within a round.
type draw struct {
	strips []GpuStrip
}

// round is the scheduler's atomic quantum: up to three render passes
// (even clip texture, odd clip texture, final target) plus the slots to
// free, per texture, once the round's draws have executed.
type round struct {
	draws [3]draw
	free  [2][]uint32
}

// Scheduler assigns wide-tile command lists to rounds and renders them
// through a RendererDelegate using only two fixed-size intermediate
// clip textures.
type Scheduler struct {
	delegate    RendererDelegate
	totalSlots  int
	round       int
	free        [2][]uint32
	clear       [2][]uint32
	roundsQueue []*round
	logger      *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's logger. Defaults to a handler
// that discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Scheduler with slotsPerTexture slots in each of the two
// intermediate clip textures.
func New(delegate RendererDelegate, slotsPerTexture int, opts ...Option) *Scheduler {
	s := &Scheduler{
		delegate:   delegate,
		totalSlots: slotsPerTexture,
		logger:     slog.New(slog.DiscardHandler),
	}
	s.resetPools()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) resetPools() {
	s.free[0] = makeRange(s.totalSlots)
	s.free[1] = makeRange(s.totalSlots)
	s.clear[0] = nil
	s.clear[1] = nil
	s.roundsQueue = []*round{{}}
	s.round = 0
}

func makeRange(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

// FreeSlots reports how many slots are currently available in the given
// clip texture (0 or 1). Useful for tests and instrumentation.
func (s *Scheduler) FreeSlots(textureIx int) int {
	return len(s.free[textureIx])
}

// RenderScene schedules and renders every wide tile of scene, iterating
// row-major (top to bottom, left to right), then flushes every
// remaining round.
func (s *Scheduler) RenderScene(scene *wtile.Scene) error {
	for rowIdx, row := range scene.Tiles {
		wideY := uint16(rowIdx * wtile.H)
		for colIdx := range row {
			wideX := uint16(colIdx * wtile.WideW)
			if err := s.doWideTile(wideX, wideY, &row[colIdx]); err != nil {
				return err
			}
		}
	}

	for len(s.roundsQueue) > 0 {
		s.flush()
	}

	if debugAssertions {
		if len(s.free[0]) != s.totalSlots || len(s.free[1]) != s.totalSlots {
			return fmt.Errorf("schedule: slot conservation violated at end of scene")
		}
		if len(s.clear[0]) != 0 || len(s.clear[1]) != 0 {
			return fmt.Errorf("schedule: dirty slots remain at end of scene")
		}
	}

	s.round = 0
	return nil
}

func (s *Scheduler) doWideTile(wideX, wideY uint16, wt *wtile.WideTile) error {
	stack := []tileEl{{slotIx: sentinelSlot, round: s.round}}

	if wtile.HasNonZeroAlpha(wt.BackgroundRGBA) {
		d := s.drawMut(s.round, 1)
		d.strips = append(d.strips, GpuStrip{
			X: wideX, Y: wideY,
			Width: wtile.WideW,
			RGBA:  wt.BackgroundRGBA,
		})
	}

	for _, cmd := range wt.Cmds {
		clipDepth := len(stack)
		var err error
		stack, err = s.doCmd(stack, wideX, wideY, clipDepth, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

// doCmd applies one wide-tile command, possibly growing or shrinking
// stack (PushBuf/PopBuf), and returns the updated stack.
func (s *Scheduler) doCmd(stack []tileEl, wideX, wideY uint16, clipDepth int, cmd wtile.Cmd) ([]tileEl, error) {
	switch cmd.Kind {
	case wtile.CmdFill, wtile.CmdAlphaFill:
		solid, ok := cmd.Paint.(wtile.Solid)
		if !ok {
			return stack, wtile.ErrUnsupportedPaint
		}
		if debugAssertions && !wtile.HasNonZeroAlpha(solid.RGBA) {
			return stack, ErrZeroAlphaInFill
		}

		el := stack[len(stack)-1]
		x, y := encodeOrigin(clipDepth, wideX, wideY, cmd.X, el.slotIx)
		gs := GpuStrip{X: x, Y: y, Width: cmd.Width, RGBA: solid.RGBA}
		if cmd.Kind == wtile.CmdAlphaFill {
			gs.DenseWidth = cmd.Width
			gs.Col = cmd.AlphaIdx / wtile.H
		}

		d := s.drawMut(el.round, clipDepth)
		d.strips = append(d.strips, gs)
		return stack, nil

	case wtile.CmdPushBuf:
		ix := clipDepth % 2
		for len(s.free[ix]) == 0 {
			if len(s.roundsQueue) == 0 {
				return stack, ErrSlotExhausted
			}
			s.flush()
		}
		slot := s.popFree(ix)
		s.clear[ix] = append(s.clear[ix], slot)
		stack = append(stack, tileEl{slotIx: slot, round: s.round})
		return stack, nil

	case wtile.CmdPopBuf:
		tos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nosIdx := len(stack) - 1

		targetRound := s.popRoundTarget(clipDepth, tos.round, stack[nosIdx].round)
		if targetRound > stack[nosIdx].round {
			stack[nosIdx].round = targetRound
		}

		s.ensureRound(targetRound)
		freeIx := 1 - clipDepth%2
		rel := targetRound - s.round
		s.roundsQueue[rel].free[freeIx] = append(s.roundsQueue[rel].free[freeIx], tos.slotIx)
		return stack, nil

	case wtile.CmdClipFill, wtile.CmdClipStrip:
		tos := stack[clipDepth-1]
		nos := stack[clipDepth-2]

		targetRound := s.popRoundTarget(clipDepth, tos.round, nos.round)

		x, y := encodeOrigin(clipDepth-1, wideX, wideY, cmd.X, nos.slotIx)
		gs := GpuStrip{X: x, Y: y, Width: cmd.Width, RGBA: tos.slotIx}
		if cmd.Kind == wtile.CmdClipStrip {
			gs.DenseWidth = cmd.Width
			gs.Col = cmd.AlphaIdx / wtile.H
		}

		d := s.drawMut(targetRound, clipDepth-1)
		d.strips = append(d.strips, gs)
		return stack, nil

	default:
		return stack, fmt.Errorf("schedule: unknown command kind %v", cmd.Kind)
	}
}

// popRoundTarget computes the round in which a layer's contents read
// back by PopBuf/ClipFill/ClipStrip must be observed: the "next round"
// rule requires deferring to a later round whenever the read reaches
// into a slot written in the same render target this round (even
// clip depth deeper than the first real layer).
func (s *Scheduler) popRoundTarget(clipDepth, tosRound, nosRound int) int {
	nextRound := clipDepth%2 == 0 && clipDepth > 2
	base := tosRound
	if nextRound {
		base++
	}
	if base > nosRound {
		return base
	}
	return nosRound
}

// encodeOrigin remaps a command's local x coordinate into the strip's
// absolute origin: for the final target (depth 1) it's offset by the
// wide tile's position; for an intermediate slot (depth >= 2) it's the
// slot's row within its clip texture.
func encodeOrigin(clipDepth int, wideX, wideY, cmdX uint16, slotIx uint32) (x, y uint16) {
	if clipDepth == 1 {
		return wideX + cmdX, wideY
	}
	return cmdX, uint16(slotIx) * wtile.H
}

// drawMut returns the draw list for the render pass targeted by
// clipDepth, in the round at elRound (clamped to the current round),
// growing the rounds queue as needed.
func (s *Scheduler) drawMut(elRound, clipDepth int) *draw {
	ix := targetForDepth(clipDepth)
	relRound := elRound - s.round
	if relRound < 0 {
		relRound = 0
	}
	for len(s.roundsQueue) <= relRound {
		s.roundsQueue = append(s.roundsQueue, &round{})
	}
	return &s.roundsQueue[relRound].draws[ix]
}

// targetForDepth implements the depth-parity targeting rule: depth 1
// draws to the final target; deeper depths ping-pong between the two
// intermediate clip textures.
func targetForDepth(clipDepth int) int {
	if clipDepth == 1 {
		return 2
	}
	return 1 - clipDepth%2
}

// ensureRound grows the rounds queue so that index (absoluteRound -
// s.round) is valid.
func (s *Scheduler) ensureRound(absoluteRound int) {
	rel := absoluteRound - s.round
	for len(s.roundsQueue) <= rel {
		s.roundsQueue = append(s.roundsQueue, &round{})
	}
}

func (s *Scheduler) popFree(ix int) uint32 {
	n := len(s.free[ix])
	v := s.free[ix][n-1]
	s.free[ix] = s.free[ix][:n-1]
	return v
}

// flush pops the head round and issues its non-empty render passes in
// fixed order: clip texture 0, then 1, then the final target. A clip
// texture whose slots are all free or dirty is cleared wholesale by its
// pass's load op; otherwise a ClearSlots call for its dirty slots
// precedes that texture's pass.
func (s *Scheduler) flush() {
	if len(s.roundsQueue) == 0 {
		return
	}
	r := s.roundsQueue[0]
	s.roundsQueue = s.roundsQueue[1:]

	for i := 0; i < 3; i++ {
		d := r.draws[i]
		if len(d.strips) == 0 {
			continue
		}

		var loadOp LoadOp
		if i == 2 {
			loadOp = LoadOpLoad
		} else if len(s.clear[i])+len(s.free[i]) == s.totalSlots {
			s.clear[i] = s.clear[i][:0]
			loadOp = LoadOpClear
		} else {
			s.delegate.ClearSlots(i, s.clear[i])
			s.clear[i] = s.clear[i][:0]
			loadOp = LoadOpLoad
		}

		s.delegate.DrawStrips(d.strips, i, loadOp)
	}

	// Return this round's queued frees to both textures' pools. The
	// source this is grounded on only restores texture 0 here; this
	// specification's slot-conservation invariant requires both, so
	// both are restored -- see DESIGN.md.
	s.free[0] = append(s.free[0], r.free[0]...)
	s.free[1] = append(s.free[1], r.free[1]...)

	s.round++
	s.logger.Debug("flushed round", "round", s.round-1, "free0", len(s.free[0]), "free1", len(s.free[1]))
}
