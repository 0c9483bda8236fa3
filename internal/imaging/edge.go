package imaging

import (
	"image"
	"math"
)

// tan(22.5°), the boundary between the horizontal and diagonal sectors of
// the gradient direction.
const tan22 = 0.41421356237309503

// Canny performs Canny edge detection on a grayscale image and returns the
// edge pixels as a mask.
//
// Parameters:
//   - src: Grayscale source, typically already smoothed.
//   - low: Hysteresis low threshold (0-255 gradient scale). Pixels with a
//     gradient at or below it are never edges.
//   - high: Hysteresis high threshold. Pixels above it are always edges.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators with replicated borders,
//     magnitude = |Gx| + |Gy|
//
//  2. Non-maximum suppression: each pixel is compared with its two neighbours
//     along the gradient direction, quantized to horizontal, vertical or one
//     of the two diagonals, and kept only if it is a local maximum
//
//  3. Hysteresis thresholding:
//     - Maxima above high are strong edges (always kept)
//     - Maxima above low are weak edges, kept only when 8-connected to a
//     strong edge through other kept pixels
//     - Everything else is discarded
func Canny(src *image.Gray, low, high float64) *EdgeMask {
	src = anchorGray(src)
	width := src.Rect.Dx()
	height := src.Rect.Dy()
	mask := NewEdgeMask(width, height)
	if width == 0 || height == 0 {
		return mask
	}
	if low > high {
		low, high = high, low
	}

	at := func(x, y int) float64 {
		return float64(src.Pix[clamp(y, 0, height-1)*src.Stride+clamp(x, 0, width-1)])
	}

	gradX := make([]float64, width*height)
	gradY := make([]float64, width*height)
	magnitude := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			i := y*width + x
			gradX[i] = gx
			gradY[i] = gy
			magnitude[i] = math.Abs(gx) + math.Abs(gy)
		}
	}

	mag := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	// Non-maximum suppression and double threshold.
	const (
		none = iota
		weak
		strong
	)
	state := make([]uint8, width*height)
	var stack []int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := magnitude[i]
			if m <= low {
				continue
			}

			ax := math.Abs(gradX[i])
			ay := math.Abs(gradY[i])
			var isMax bool
			switch {
			case ay < tan22*ax:
				isMax = m > mag(x-1, y) && m >= mag(x+1, y)
			case ay*tan22 > ax:
				isMax = m > mag(x, y-1) && m >= mag(x, y+1)
			default:
				s := 1
				if (gradX[i] < 0) != (gradY[i] < 0) {
					s = -1
				}
				isMax = m > mag(x-s, y-1) && m > mag(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if m > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	// Edge tracking by hysteresis.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		mask.Pix[i] = 255

		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	return mask
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
