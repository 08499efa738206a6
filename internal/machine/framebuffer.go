package machine

// Framebuffer is the 64x32 monochrome display memory, one byte per pixel,
// row-major. A pixel is lit when its value is 1.
type Framebuffer [ScreenWidth * ScreenHeight]byte

// Pixel returns whether the pixel at the given position is lit. Coordinates
// wrap around the screen edges.
func (fb *Framebuffer) Pixel(x, y int) bool {
	return fb[fb.index(x, y)] != 0
}

// Toggle flips the pixel at the given position and returns whether a lit
// pixel was turned off. Coordinates wrap around the screen edges.
func (fb *Framebuffer) Toggle(x, y int) bool {
	i := fb.index(x, y)
	erased := fb[i] != 0
	fb[i] ^= 1
	return erased
}

// Lit returns the number of lit pixels.
func (fb *Framebuffer) Lit() int {
	var n int
	for _, p := range fb {
		if p != 0 {
			n++
		}
	}
	return n
}

func (fb *Framebuffer) index(x, y int) int {
	x %= ScreenWidth
	if x < 0 {
		x += ScreenWidth
	}
	y %= ScreenHeight
	if y < 0 {
		y += ScreenHeight
	}
	return y*ScreenWidth + x
}
