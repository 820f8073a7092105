package schedule

import "encoding/binary"

// GpuStripSize is the bit-exact, little-endian, tightly packed size of
// one GpuStrip instance record.
const GpuStripSize = 16

// GpuStrip is the instanced vertex record sent to the GPU.
type GpuStrip struct {
	X, Y              uint16
	Width, DenseWidth uint16
	Col               uint32
	// RGBA is premultiplied sRGB for color draws. For clip-sampling
	// draws it is overloaded to carry the source slot index; rgba == 0
	// never collides with this since zero alpha is reserved and never
	// emitted for a real fill.
	RGBA uint32
}

// Encode appends the bit-exact wire encoding of g to dst and returns the
// extended slice.
func (g GpuStrip) Encode(dst []byte) []byte {
	var buf [GpuStripSize]byte
	binary.LittleEndian.PutUint16(buf[0:2], g.X)
	binary.LittleEndian.PutUint16(buf[2:4], g.Y)
	binary.LittleEndian.PutUint16(buf[4:6], g.Width)
	binary.LittleEndian.PutUint16(buf[6:8], g.DenseWidth)
	binary.LittleEndian.PutUint32(buf[8:12], g.Col)
	binary.LittleEndian.PutUint32(buf[12:16], g.RGBA)
	return append(dst, buf[:]...)
}
