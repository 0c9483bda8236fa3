// Package imaging turns plan documents into binary edge masks.
//
// It covers the first two pipeline stages: decoding a payload into a single
// opaque raster, and preprocessing that raster into an EdgeMask ready for
// contour tracing. All operations use a coordinate system where (0,0) is at
// the top-left corner, X increases rightward, and Y increases downward.
//
// # Decoding
//
// Decoder.Decode accepts raster images (PNG, JPEG, GIF, BMP, TIFF, WebP) and
// PDF documents. Documents are validated with pdfcpu and the first page is
// rasterized at 600 DPI by a Rasterizer, by default poppler's pdftoppm. Pages
// beyond the first are ignored. Every raster is flattened onto white so later
// stages see plain RGB.
//
// Decoding failures are reported as *DecodeError and are never retried.
//
// # Preprocessing
//
// Preprocess chains grayscale conversion, Gaussian smoothing, CLAHE, Canny
// edge detection and morphological closing. Each step is also exported for
// callers that need only part of the chain.
//
// # Thread Safety
//
// Operations are stateless and can be called concurrently on different
// images. Nothing in this package keeps state between calls.
package imaging
