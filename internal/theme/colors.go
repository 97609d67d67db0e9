package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// HexToColor converts a hex color string (#RRGGBB or #RGB) to tcell.Color
func HexToColor(hexColor string) tcell.Color {
	c, err := parseHex(hexColor)
	if err != nil {
		return tcell.ColorDefault
	}
	return toTcell(c)
}

func parseHex(hexColor string) (colorful.Color, error) {
	hexColor = strings.TrimPrefix(hexColor, "#")
	if len(hexColor) == 3 {
		hexColor = string([]byte{hexColor[0], hexColor[0], hexColor[1], hexColor[1], hexColor[2], hexColor[2]})
	}
	return colorful.Hex("#" + hexColor)
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// ParseColor accepts #RRGGBB, #RGB, rgb(r,g,b) or a color name known to the
// terminal library ("red", "navy").
func ParseColor(colorStr string) (tcell.Color, error) {
	colorStr = strings.TrimSpace(colorStr)

	switch {
	case strings.HasPrefix(colorStr, "#"):
		c, err := parseHex(colorStr)
		if err != nil {
			return tcell.ColorDefault, fmt.Errorf("invalid hex color %q: %w", colorStr, err)
		}
		return toTcell(c), nil

	case strings.HasPrefix(colorStr, "rgb(") && strings.HasSuffix(colorStr, ")"):
		parts := strings.Split(colorStr[len("rgb("):len(colorStr)-1], ",")
		if len(parts) != 3 {
			return tcell.ColorDefault, fmt.Errorf("invalid rgb color %q", colorStr)
		}
		var rgb [3]int32
		for i, part := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || v < 0 || v > 255 {
				return tcell.ColorDefault, fmt.Errorf("invalid rgb component %q", part)
			}
			rgb[i] = int32(v)
		}
		return tcell.NewRGBColor(rgb[0], rgb[1], rgb[2]), nil
	}

	if c, ok := tcell.ColorNames[strings.ToLower(colorStr)]; ok {
		return c, nil
	}
	return tcell.ColorDefault, fmt.Errorf("unknown color %q", colorStr)
}

// Blend mixes a toward b by t (0 keeps a, 1 gives b) in Lab space. Used to
// dim completed items against the background. Non-RGB colors are returned
// unchanged.
func Blend(a, b tcell.Color, t float64) tcell.Color {
	if !a.Valid() || !b.Valid() {
		return a
	}
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	if ar < 0 || br < 0 {
		return a
	}
	ca := colorful.Color{R: float64(ar) / 255, G: float64(ag) / 255, B: float64(ab) / 255}
	cb := colorful.Color{R: float64(br) / 255, G: float64(bg) / 255, B: float64(bb) / 255}
	return toTcell(ca.BlendLab(cb, t))
}
