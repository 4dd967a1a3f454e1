package quizdoc

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is an explicit foreground color.
type RGB struct {
	R, G, B uint8
}

// Red is the correct-answer color.
var Red = RGB{R: 255, G: 0, B: 0}

func (c RGB) String() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHexColor parses "FF0000", "#ff0000" or "#f00". It returns false for
// "auto" and anything else that is not a hex color.
func ParseHexColor(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}
