package render

import "image/color"

// Style defines the chart colors. It is an explicit value passed to each
// renderer rather than shared global state, so concurrent renders cannot race
// on styling.
type Style struct {
	Background color.Color // figure and axes background
	Foreground color.Color // text and axis lines
	Grid       color.Color // grid lines
	Line       color.Color // histogram trace
}

// DefaultStyle returns the dark theme: black background, white text, gray
// grid, red trace.
func DefaultStyle() Style {
	return Style{
		Background: color.Black,
		Foreground: color.White,
		Grid:       color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
		Line:       color.RGBA{R: 0xff, A: 0xff},
	}
}
