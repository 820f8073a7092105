// Package wide provides fixed-width float32 lanes for SIMD-style
// accumulation in the strip rasterizer.
package wide

import "math"

// F32x4 represents 4 float32 values for SIMD-style operations, one per
// row of a 4x4 tile. Designed for Go compiler auto-vectorization with
// fixed-size arrays.
type F32x4 [4]float32

// SplatF32 creates F32x4 with all elements set to n.
func SplatF32(n float32) F32x4 {
	return F32x4{n, n, n, n}
}

// Add performs element-wise addition.
func (v F32x4) Add(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

// Sub performs element-wise subtraction.
func (v F32x4) Sub(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] - other[i]
	}
	return result
}

// Mul performs element-wise multiplication.
func (v F32x4) Mul(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] * other[i]
	}
	return result
}

// Div performs element-wise division.
func (v F32x4) Div(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] / other[i]
	}
	return result
}

// Sqrt computes the square root of each element.
func (v F32x4) Sqrt() F32x4 {
	var result F32x4
	for i := range v {
		result[i] = float32(math.Sqrt(float64(v[i])))
	}
	return result
}

// Abs computes the absolute value of each element.
func (v F32x4) Abs() F32x4 {
	var result F32x4
	for i := range v {
		result[i] = float32(math.Abs(float64(v[i])))
	}
	return result
}

// Clamp clamps each element to [minVal, maxVal].
func (v F32x4) Clamp(minVal, maxVal float32) F32x4 {
	var result F32x4
	for i := range v {
		switch {
		case v[i] < minVal:
			result[i] = minVal
		case v[i] > maxVal:
			result[i] = maxVal
		default:
			result[i] = v[i]
		}
	}
	return result
}

// Lerp performs linear interpolation: v + (other - v) * t.
func (v F32x4) Lerp(other F32x4, t F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] + (other[i]-v[i])*t[i]
	}
	return result
}

// Min performs element-wise minimum.
func (v F32x4) Min(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		if v[i] < other[i] {
			result[i] = v[i]
		} else {
			result[i] = other[i]
		}
	}
	return result
}

// Max performs element-wise maximum.
func (v F32x4) Max(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		if v[i] > other[i] {
			result[i] = v[i]
		} else {
			result[i] = other[i]
		}
	}
	return result
}

// IsNaN reports, per-lane, whether the value is NaN.
func (v F32x4) IsNaN() [4]bool {
	var result [4]bool
	for i := range v {
		result[i] = math.IsNaN(float64(v[i]))
	}
	return result
}
