package imaging

import (
	"image"
	"math"
)

const histBins = 256

// CLAHE applies contrast limited adaptive histogram equalization to src.
//
// The image is split into a tiles x tiles grid. Each tile gets its own
// equalization lookup table built from a histogram whose bins are clipped at
// clipLimit times the uniform bin height; the clipped excess is spread evenly
// over all bins. Every output pixel blends the lookup tables of the four
// nearest tile centers bilinearly, so tile borders leave no seams.
func CLAHE(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	src = anchorGray(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if tiles < 1 {
		tiles = 1
	}

	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles
	tilesX := (w + tileW - 1) / tileW
	tilesY := (h + tileH - 1) / tileH

	luts := make([][histBins]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			r := image.Rect(tx*tileW, ty*tileH, (tx+1)*tileW, (ty+1)*tileH).Intersect(image.Rect(0, 0, w, h))
			luts[ty*tilesX+tx] = tileLUT(src, r, clipLimit)
		}
	}

	invW := 1 / float64(tileW)
	invH := 1 / float64(tileH)
	for y := 0; y < h; y++ {
		tyf := float64(y)*invH - 0.5
		ty1 := int(math.Floor(tyf))
		ya := tyf - float64(ty1)
		ty2 := min(ty1+1, tilesY-1)
		ty1 = max(ty1, 0)

		for x := 0; x < w; x++ {
			txf := float64(x)*invW - 0.5
			tx1 := int(math.Floor(txf))
			xa := txf - float64(tx1)
			tx2 := min(tx1+1, tilesX-1)
			tx1 = max(tx1, 0)

			v := src.Pix[y*src.Stride+x]
			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bot := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			out.Pix[y*out.Stride+x] = clampUint8(math.Round(top*(1-ya) + bot*ya))
		}
	}
	return out
}

// tileLUT builds the clipped equalization table for one tile.
func tileLUT(src *image.Gray, r image.Rectangle, clipLimit float64) [histBins]uint8 {
	var hist [histBins]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := src.Pix[y*src.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[row[x]]++
		}
	}

	area := r.Dx() * r.Dy()
	if clipLimit > 0 {
		limit := max(int(clipLimit*float64(area)/histBins), 1)
		excess := 0
		for i := range hist {
			if hist[i] > limit {
				excess += hist[i] - limit
				hist[i] = limit
			}
		}

		batch := excess / histBins
		residual := excess - batch*histBins
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := max(histBins/residual, 1)
			for i := 0; i < histBins && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	var lut [histBins]uint8
	scale := float64(histBins-1) / float64(area)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = clampUint8(math.Round(float64(sum) * scale))
	}
	return lut
}

func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// anchorGray returns src unchanged when its origin is (0,0), and otherwise a
// copy translated to the origin.
func anchorGray(src *image.Gray) *image.Gray {
	if src.Rect.Min == (image.Point{}) {
		return src
	}
	out := image.NewGray(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
	for y := 0; y < out.Rect.Dy(); y++ {
		copy(out.Pix[y*out.Stride:], src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):][:out.Rect.Dx()])
	}
	return out
}
