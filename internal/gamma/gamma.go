// Package gamma implements perceptual gamma correction of rasterizer
// coverage alpha against a known background luminance.
package gamma

import "math"

// anchorLuminances are the luminance values at which a full gamma LUT is
// precomputed. Intermediate luminances are linearly interpolated between
// the two nearest anchors.
var anchorLuminances = [8]uint8{0, 36, 72, 109, 145, 182, 218, 255}

// anchorLUTs holds one 256-entry coverage LUT per entry of
// anchorLuminances, built once at package init from the canonical
// sRGB<->linear blend-and-back-solve formula.
var anchorLUTs [8][256]uint8

func init() {
	for i, lum := range anchorLuminances {
		anchorLUTs[i] = buildLUT(lum)
	}
}

// buildLUT computes the ground-truth gamma-corrected alpha for every
// coverage value at the given background luminance.
func buildLUT(luminance uint8) [256]uint8 {
	var lut [256]uint8
	for alpha := 0; alpha <= 255; alpha++ {
		lut[alpha] = groundTruth(luminance, uint8(alpha))
	}
	return lut
}

// groundTruth computes the gamma-corrected alpha directly, without any
// LUT interpolation: sRGB->linear on src and dst, blend in linear space,
// sRGB-convert the blend, then back-solve for the effective alpha
// assuming the pre-blend destination color as the baseline.
func groundTruth(luminance uint8, alpha uint8) uint8 {
	if alpha == 0 {
		return 0
	}
	if alpha == 255 {
		return 255
	}

	src := float64(luminance) / 255.0
	dst := 1.0 - src
	a := float64(alpha) / 255.0

	diff := src - dst
	if math.Abs(diff) < 0.004 {
		return alpha
	}

	linSrc := srgbToLinear(src)
	linDst := srgbToLinear(dst)
	linBlend := linSrc*a + linDst*(1.0-a)
	srgbBlend := linearToSRGB(linBlend)
	corrected := (srgbBlend - dst) / diff

	corrected = clamp01(corrected)
	return uint8(corrected*255.0 + 0.5)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func srgbToLinear(x float64) float64 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return math.Pow((x+0.055)/1.055, 2.4)
}

func linearToSRGB(x float64) float64 {
	if x <= 0.0031308 {
		return x * 12.92
	}
	return 1.055*math.Pow(x, 1.0/2.4) - 0.055
}

// Corrector is a 256-entry coverage LUT built for a specific background
// luminance. It is updated in place, with no allocation, when the
// luminance changes.
type Corrector struct {
	lut              [256]uint8
	currentLuminance uint8
}

// New creates a gamma corrector for the given background luminance.
func New(luminance uint8) *Corrector {
	c := &Corrector{currentLuminance: luminance}
	c.updateLUT(luminance)
	return c
}

// UpdateIfNeeded rebuilds the LUT if luminance differs from the
// corrector's current luminance. It is a no-op, and allocates nothing,
// when luminance is unchanged.
func (c *Corrector) UpdateIfNeeded(luminance uint8) {
	if c.currentLuminance == luminance {
		return
	}
	c.updateLUT(luminance)
	c.currentLuminance = luminance
}

func (c *Corrector) updateLUT(luminance uint8) {
	loIdx := findAnchorIndex(luminance)
	hiIdx := loIdx + 1
	if hiIdx > 7 {
		hiIdx = 7
	}
	loLum := anchorLuminances[loIdx]
	hiLum := anchorLuminances[hiIdx]

	loLUT := &anchorLUTs[loIdx]
	hiLUT := &anchorLUTs[hiIdx]

	if loLum == hiLum {
		c.lut = *loLUT
		return
	}

	t := uint16(luminance-loLum) * 255 / uint16(hiLum-loLum)
	for i := 0; i < 256; i++ {
		loVal := uint16(loLUT[i])
		hiVal := uint16(hiLUT[i])
		c.lut[i] = uint8((loVal*(255-t) + hiVal*t + 127) / 255)
	}
}

// findAnchorIndex locates the anchor LUT index for a given luminance
// using fixed-point arithmetic: floor((L*7+6)/255) computed as
// ((L*7+6) * 0x8081) >> 23, exact for all L in [0,255].
func findAnchorIndex(luminance uint8) int {
	return int((uint32(luminance)*7 + 6) * 0x8081 >> 23)
}

// Correct maps a coverage alpha through the corrector's LUT.
func (c *Corrector) Correct(alpha uint8) uint8 {
	return c.lut[alpha]
}
