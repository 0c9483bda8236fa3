package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// PreprocessOptions configures the raster-to-mask stage.
type PreprocessOptions struct {
	// Blur is the Gaussian kernel size. Odd, >= 1; 1 disables smoothing.
	Blur int

	// CannyLow and CannyHigh are the hysteresis thresholds on the 0-255
	// gradient scale.
	CannyLow  float64
	CannyHigh float64

	// MorphKernel is the closing structuring element size.
	MorphKernel int

	// ClipLimit and TileGrid configure local contrast equalization.
	ClipLimit float64
	TileGrid  int
}

// Preprocess turns a color raster into a binary edge mask of the same size.
//
// # Algorithm
//
//  1. Grayscale conversion (ITU-R BT.601 luma)
//  2. Gaussian smoothing with a Blur x Blur kernel
//  3. Contrast limited adaptive histogram equalization
//  4. Canny edge detection with CannyLow/CannyHigh hysteresis
//  5. Morphological closing with a MorphKernel x MorphKernel rectangle, which
//     bridges one or two pixel gaps in traced boundaries
func Preprocess(img image.Image, opts PreprocessOptions) *EdgeMask {
	gray := toGray(imaging.Grayscale(img))
	gray = GaussianBlur(gray, opts.Blur)
	gray = CLAHE(gray, opts.ClipLimit, opts.TileGrid)
	mask := Canny(gray, opts.CannyLow, opts.CannyHigh)
	return Close(mask, opts.MorphKernel)
}

// GaussianBlur smooths src with a ksize x ksize Gaussian kernel. The standard
// deviation is derived from the kernel size:
//
//	sigma = 0.3*((ksize-1)*0.5 - 1) + 0.8
//
// Border pixels are extended. A ksize of 1 or less returns a copy of src.
func GaussianBlur(src *image.Gray, ksize int) *image.Gray {
	src = anchorGray(src)
	if ksize <= 1 {
		out := image.NewGray(src.Rect)
		copy(out.Pix, src.Pix)
		return out
	}

	sigma := 0.3*((float64(ksize)-1)*0.5-1) + 0.8
	weights := make([]float64, ksize)
	center := float64(ksize-1) / 2
	var sum float64
	for i := range weights {
		d := float64(i) - center
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}

	k := convolution.NewKernel(ksize, ksize)
	for y := 0; y < ksize; y++ {
		for x := 0; x < ksize; x++ {
			k.Matrix[y*ksize+x] = weights[x] * weights[y]
		}
	}

	rgba := convolution.Convolve(src, k, &convolution.Options{Wrap: false, KeepAlpha: true})
	return toGray(rgba)
}

// toGray copies the red channel of img into a Gray image anchored at (0,0).
// Callers pass images whose channels are already equal.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < b.Dx(); x++ {
				out.Pix[y*out.Stride+x] = row[x*4]
			}
		}
	case *image.RGBA:
		for y := 0; y < b.Dy(); y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < b.Dx(); x++ {
				out.Pix[y*out.Stride+x] = row[x*4]
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				r, _, _, _ := img.At(x+b.Min.X, y+b.Min.Y).RGBA()
				out.Pix[y*out.Stride+x] = uint8(r >> 8)
			}
		}
	}
	return out
}
