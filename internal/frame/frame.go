// Package frame holds the in-memory image of an RGBW LED ring.
package frame

import "fmt"

// ChannelsPerElement is the number of bytes one element occupies on the wire.
const ChannelsPerElement = 4

// Element is one LED of the ring.
type Element struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
	White uint8 `json:"white"`
}

// Black is the all-off element.
var Black = Element{}

// String formats the element as "r,g,b,w".
func (e Element) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", e.Red, e.Green, e.Blue, e.White)
}

// Frame is a fixed-length sequence of elements, index 0 first on the wire.
type Frame []Element

// New returns a frame of n black elements.
func New(n int) Frame {
	if n < 0 {
		n = 0
	}
	return make(Frame, n)
}

// Len returns the number of elements.
func (f Frame) Len() int { return len(f) }

// Fill sets every element to e.
func (f Frame) Fill(e Element) {
	for i := range f {
		f[i] = e
	}
}

// Clear sets every element to black.
func (f Frame) Clear() {
	f.Fill(Black)
}

// Set writes e at index i modulo the frame length. Negative indexes wrap from
// the end. Set on an empty frame is a no-op.
func (f Frame) Set(i int, e Element) {
	n := len(f)
	if n == 0 {
		return
	}
	i %= n
	if i < 0 {
		i += n
	}
	f[i] = e
}

// Uniform reports whether every element equals e.
func (f Frame) Uniform(e Element) bool {
	for _, el := range f {
		if el != e {
			return false
		}
	}
	return true
}

// Equal reports whether both frames have the same length and elements.
func (f Frame) Equal(other Frame) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// Bytes serializes the frame as R,G,B,W per element.
func (f Frame) Bytes() []byte {
	buf := make([]byte, 0, len(f)*ChannelsPerElement)
	for _, e := range f {
		buf = append(buf, e.Red, e.Green, e.Blue, e.White)
	}
	return buf
}
