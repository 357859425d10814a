package tui

import "sort"

// brailleCanvas is a text-cell drawing buffer. Every terminal cell carries a
// 2x4 grid of dots, so a w x h cell canvas exposes a 2w x 4h pixel grid.
type brailleCanvas struct {
	w, h  int // in cells
	cells [][]uint8
}

func newBrailleCanvas(w, h int) *brailleCanvas {
	cells := make([][]uint8, h)
	for i := range cells {
		cells[i] = make([]uint8, w)
	}
	return &brailleCanvas{w: w, h: h, cells: cells}
}

// set turns on the dot at pixel coordinates. Out-of-range pixels are dropped.
func (c *brailleCanvas) set(px, py int) {
	if px < 0 || py < 0 {
		return
	}
	cx, rx := px/2, px%2
	cy, ry := py/4, py%4
	if cx >= c.w || cy >= c.h {
		return
	}
	// Braille dot numbering: dots 1-3 and 7 fill the left column, 4-6 and 8
	// the right.
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	c.cells[cy][cx] |= bit
}

// line draws with Bresenham on the pixel grid.
func (c *brailleCanvas) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// marker draws a small plus so single positions stand out from line dots.
func (c *brailleCanvas) marker(px, py int) {
	c.set(px, py)
	c.set(px-1, py)
	c.set(px+1, py)
	c.set(px, py-1)
	c.set(px, py+1)
}

// fill paints the interior of a polygon given as pixel-coordinate rings,
// scanline by scanline with the even-odd rule. Crossings are counted over
// every ring, so interior rings come out as holes.
func (c *brailleCanvas) fill(rings [][][2]int) {
	maxY := c.h * 4
	for py := 0; py < maxY; py++ {
		var xs []int
		for _, ring := range rings {
			n := len(ring)
			if n < 3 {
				continue
			}
			for i := 0; i < n; i++ {
				a, b := ring[i], ring[(i+1)%n]
				if a[1] == b[1] {
					continue
				}
				if (py >= a[1] && py < b[1]) || (py >= b[1] && py < a[1]) {
					t := float64(py-a[1]) / float64(b[1]-a[1])
					xs = append(xs, a[0]+int(t*float64(b[0]-a[0])))
				}
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for px := max(0, xs[i]); px <= xs[i+1]; px++ {
				c.set(px, py)
			}
		}
	}
}

// lines renders the canvas, one string per cell row. Empty cells are spaces
// rather than blank braille so terminals with patterned fonts stay clean.
func (c *brailleCanvas) lines() []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		row := make([]rune, c.w)
		for x := 0; x < c.w; x++ {
			if mask := c.cells[y][x]; mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
