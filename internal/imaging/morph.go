package imaging

// Close applies morphological closing (dilation followed by erosion) to m
// with a ksize x ksize rectangular structuring element anchored at
// (ksize/2, ksize/2). Pixels outside the mask never contribute. A ksize of 1
// or less returns a copy of m.
//
// Closing fills gaps narrower than the element, reconnecting edge fragments
// that the detector split apart.
func Close(m *EdgeMask, ksize int) *EdgeMask {
	if ksize <= 1 {
		out := NewEdgeMask(m.Width, m.Height)
		copy(out.Pix, m.Pix)
		return out
	}
	return Erode(Dilate(m, ksize), ksize)
}

// Dilate sets every pixel whose structuring-element neighbourhood contains an
// edge pixel.
func Dilate(m *EdgeMask, ksize int) *EdgeMask {
	return rectFilter(m, ksize, true)
}

// Erode keeps only pixels whose whole in-bounds neighbourhood is edge.
func Erode(m *EdgeMask, ksize int) *EdgeMask {
	return rectFilter(m, ksize, false)
}

// rectFilter runs a rectangular max (dilate) or min (erode) filter as two
// separable passes. The element spans offsets [-a, ksize-1-a] on each axis,
// a = ksize/2.
func rectFilter(m *EdgeMask, ksize int, dilate bool) *EdgeMask {
	if ksize < 1 {
		ksize = 1
	}
	lo := -(ksize / 2)
	hi := ksize - 1 - ksize/2
	w, h := m.Width, m.Height

	pass := func(src []uint8, horizontal bool) []uint8 {
		dst := make([]uint8, len(src))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var v uint8
				if !dilate {
					v = 255
				}
				for d := lo; d <= hi; d++ {
					nx, ny := x, y
					if horizontal {
						nx += d
					} else {
						ny += d
					}
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					s := src[ny*w+nx]
					if dilate && s > v || !dilate && s < v {
						v = s
					}
				}
				dst[y*w+x] = v
			}
		}
		return dst
	}

	out := NewEdgeMask(w, h)
	out.Pix = pass(pass(m.Pix, true), false)
	return out
}
