package vision

// DefaultSamplingStride is the pixel step used in both axes.
const DefaultSamplingStride = 20

// ColorSample is one sampled pixel with channels normalized to [0,1].
type ColorSample struct {
	R, G, B float64
}

// SamplePixels reads every stride-th pixel in both axes, row-major, starting
// at (0,0). A stride below 1 is treated as 1. Invalid buffers yield no samples.
func SamplePixels(b *PixelBuffer, stride int) []ColorSample {
	if !b.Valid() {
		return nil
	}
	if stride < 1 {
		stride = 1
	}

	cols := (b.Width + stride - 1) / stride
	rows := (b.Height + stride - 1) / stride
	samples := make([]ColorSample, 0, cols*rows)

	for y := 0; y < b.Height; y += stride {
		for x := 0; x < b.Width; x += stride {
			i := (y*b.Width + x) * 4
			samples = append(samples, ColorSample{
				R: float64(b.Pix[i]) / 255,
				G: float64(b.Pix[i+1]) / 255,
				B: float64(b.Pix[i+2]) / 255,
			})
		}
	}
	return samples
}
