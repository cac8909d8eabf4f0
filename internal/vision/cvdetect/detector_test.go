package cvdetect

import (
	"context"
	"math"
	"testing"

	"mcp-meal-score/internal/vision"
)

func TestDetectRectangle(t *testing.T) {
	b := vision.NewPixelBuffer(200, 160)
	b.Fill(0, 0, 0)
	for y := 40; y < 90; y++ {
		for x := 50; x < 150; x++ {
			b.Set(x, y, 255, 255, 255, 255)
		}
	}

	det, err := New(DefaultOptions()).Detect(context.Background(), b)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.EdgeCount < 1 {
		t.Fatalf("expected at least one contour, got %+v", det)
	}
	if det.RectangleCount < 1 {
		t.Errorf("expected a rectangle, got %+v", det)
	}

	found := false
	for _, ar := range det.AspectRatios {
		if math.Abs(ar-2.0) < 0.15 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a 2:1 bounding box, got %v", det.AspectRatios)
	}

	signal := vision.NewStructuralSignal(det, nil)
	if !signal.HasRectangles || !signal.IsHomogeneous {
		t.Errorf("unexpected signal %+v", signal)
	}
}

func TestDetectBlankImage(t *testing.T) {
	b := vision.NewPixelBuffer(64, 64)
	b.Fill(120, 120, 120)

	det, err := New(DefaultOptions()).Detect(context.Background(), b)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.EdgeCount != 0 || det.RectangleCount != 0 || len(det.AspectRatios) != 0 {
		t.Errorf("blank image should have no structure, got %+v", det)
	}
}

func TestDetectRejectsInvalidInput(t *testing.T) {
	d := New(DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Detect(ctx, vision.NewPixelBuffer(8, 8)); err == nil {
		t.Error("expected error for cancelled context")
	}
	if _, err := d.Detect(context.Background(), vision.NewPixelBuffer(0, 0)); err == nil {
		t.Error("expected error for empty buffer")
	}
}
