// Package colorx decodes "#rrggbb" color strings and applies linear dimming.
package colorx

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidColor is returned for anything other than '#' followed by six
// hexadecimal digits.
var ErrInvalidColor = errors.New("invalid color: want #rrggbb")

// Brightness bounds of the level property.
const (
	MinLevel = 0
	MaxLevel = 100
)

// RGB is a decoded color. The decoder never produces a white channel;
// callers that drive RGBW hardware set it themselves.
type RGB struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

// Black is the fallback for strings that fail to parse.
var Black = RGB{}

// Hex formats the color as a lower-case "#rrggbb" string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)
}

// ParseHex parses a 7-character "#rrggbb" string. Both digit cases are accepted.
func ParseHex(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var channels [3]uint8
	for i := range channels {
		pair := s[1+2*i : 3+2*i]
		v, err := strconv.ParseUint(pair, 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		channels[i] = uint8(v)
	}

	return RGB{Red: channels[0], Green: channels[1], Blue: channels[2]}, nil
}

// ClampLevel clamps a brightness level to [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	return min(max(level, MinLevel), MaxLevel)
}

// Scale returns the dimming factor for a brightness level, in [0, 1].
// Out-of-range levels are clamped first.
func Scale(level int) float64 {
	return float64(ClampLevel(level)) / 100.0
}

// Dim scales every channel by the level's factor. The product is truncated
// once; already dimmed colors must not be passed back in.
func Dim(c RGB, level int) RGB {
	scale := Scale(level)
	return RGB{
		Red:   uint8(float64(c.Red) * scale),
		Green: uint8(float64(c.Green) * scale),
		Blue:  uint8(float64(c.Blue) * scale),
	}
}

// Decode parses s and dims it by level. Strings that fail to parse decode to
// Black so a bad remote write turns the ring off instead of leaving it stale.
func Decode(s string, level int) RGB {
	c, err := ParseHex(s)
	if err != nil {
		return Black
	}
	return Dim(c, level)
}

// Valid reports whether s is a well-formed "#rrggbb" string.
func Valid(s string) bool {
	_, err := ParseHex(s)
	return err == nil
}
