// Package cvdetect implements vision.Detector on top of OpenCV.
package cvdetect

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"mcp-meal-score/internal/vision"
)

// Options tunes contour extraction.
type Options struct {
	CannyLow       float32
	CannyHigh      float32
	BlurKernel     int
	MinContourSide int     // contours with a smaller bounding box are ignored for aspect ratios
	MinRectArea    float64 // fraction of the image area a rectangle must cover
}

// DefaultOptions mirrors the thresholds used for board/edge detection.
func DefaultOptions() Options {
	return Options{
		CannyLow:       50,
		CannyHigh:      150,
		BlurKernel:     5,
		MinContourSide: 8,
		MinRectArea:    0.01,
	}
}

// Detector finds external contours and quadrilaterals with gocv.
type Detector struct {
	opts Options
}

// New creates a Detector.
func New(opts Options) *Detector {
	if opts.BlurKernel%2 == 0 {
		opts.BlurKernel++
	}
	return &Detector{opts: opts}
}

// Detect runs gray conversion, blur, Canny and contour extraction.
func (d *Detector) Detect(ctx context.Context, b *vision.PixelBuffer) (vision.Detection, error) {
	if err := ctx.Err(); err != nil {
		return vision.Detection{}, err
	}
	if !b.Valid() {
		return vision.Detection{}, fmt.Errorf("invalid pixel buffer")
	}

	mat, err := gocv.NewMatFromBytes(b.Height, b.Width, gocv.MatTypeCV8UC4, b.Pix[:b.Width*b.Height*4])
	if err != nil {
		return vision.Detection{}, fmt.Errorf("failed to create mat: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := d.opts.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, d.opts.CannyLow, d.opts.CannyHigh)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	imgArea := float64(b.Width * b.Height)
	det := vision.Detection{EdgeCount: contours.Size()}

	for i := 0; i < contours.Size(); i++ {
		if err := ctx.Err(); err != nil {
			return vision.Detection{}, err
		}
		contour := contours.At(i)

		rect := gocv.BoundingRect(contour)
		if rect.Dx() >= d.opts.MinContourSide && rect.Dy() >= d.opts.MinContourSide {
			det.AspectRatios = append(det.AspectRatios, float64(rect.Dx())/float64(rect.Dy()))
		}

		if gocv.ContourArea(contour) < imgArea*d.opts.MinRectArea {
			continue
		}
		epsilon := 0.02 * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		if approx.Size() == 4 {
			det.RectangleCount++
		}
		approx.Close()
	}

	return det, nil
}
