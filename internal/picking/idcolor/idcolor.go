// Package idcolor maps object ids to flat RGB colors and back. The low 24
// bits of an id are packed little-endian by channel: byte 0 in red, byte 1 in
// green, byte 2 in blue. Alpha is never consulted.
package idcolor

import (
	"errors"
	"fmt"

	"github.com/Faultbox/objpick/internal/scene"
)

// BytesPerPixel is the size of one RGBA8 readback pixel.
const BytesPerPixel = 4

// ErrOutOfRange is returned for ids that do not fit in 24 bits.
var ErrOutOfRange = errors.New("idcolor: id does not fit in 24 bits")

// EncodeBytes returns the RGB bytes for id.
func EncodeBytes(id scene.ID) ([3]byte, error) {
	if id > scene.MaxID {
		return [3]byte{}, fmt.Errorf("%w: %d", ErrOutOfRange, id)
	}
	return [3]byte{byte(id), byte(id >> 8), byte(id >> 16)}, nil
}

// Encode returns id as a normalized color suitable for a per-draw uniform.
func Encode(id scene.ID) ([3]float32, error) {
	b, err := EncodeBytes(id)
	if err != nil {
		return [3]float32{}, err
	}
	return [3]float32{
		float32(b[0]) / 255,
		float32(b[1]) / 255,
		float32(b[2]) / 255,
	}, nil
}

// Decode reconstructs the id stored in an RGBA8 pixel.
func Decode(r, g, b, _ byte) scene.ID {
	return scene.ID(r) | scene.ID(g)<<8 | scene.ID(b)<<16
}

// DecodePixel decodes the first pixel of an RGBA8 buffer.
func DecodePixel(px []byte) scene.ID {
	if len(px) < BytesPerPixel {
		return scene.None
	}
	return Decode(px[0], px[1], px[2], px[3])
}

// DecodeRegion decodes every RGBA8 pixel in pixels and adds the nonzero ids
// to set. Trailing bytes that do not form a whole pixel are ignored.
func DecodeRegion(pixels []byte, set scene.IDSet) {
	for i := 0; i+BytesPerPixel <= len(pixels); i += BytesPerPixel {
		if id := Decode(pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]); id != scene.None {
			set.Add(id)
		}
	}
}
